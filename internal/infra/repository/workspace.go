package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/retracehq/retrace/internal/domain"
	"github.com/retracehq/retrace/internal/infra/database/models"
)

type WorkspaceRepository struct {
	db *gorm.DB
}

func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

func (r *WorkspaceRepository) Create(ctx context.Context, ws domain.Workspace) error {
	row := models.Workspace{
		ID:         ws.ID,
		Name:       ws.Name,
		IsArchived: ws.IsArchived,
	}
	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.WrapError(domain.KindWorkspaceAlreadyExists, "workspace name already taken", err)
		}
		return domain.WrapError(domain.KindOperationFailed, "failed to create workspace", err)
	}
	return nil
}

func (r *WorkspaceRepository) Get(ctx context.Context, id string) (domain.Workspace, error) {
	var row models.Workspace
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Workspace{}, domain.ErrWorkspaceNotFound
		}
		return domain.Workspace{}, domain.WrapError(domain.KindOperationFailed, "failed to load workspace", err)
	}
	return workspaceFromRow(row), nil
}

func (r *WorkspaceRepository) GetByName(ctx context.Context, name string) (domain.Workspace, error) {
	var row models.Workspace
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Workspace{}, domain.ErrWorkspaceNotFound
		}
		return domain.Workspace{}, domain.WrapError(domain.KindOperationFailed, "failed to load workspace", err)
	}
	return workspaceFromRow(row), nil
}

func (r *WorkspaceRepository) List(ctx context.Context) ([]domain.Workspace, error) {
	var rows []models.Workspace
	err := r.db.WithContext(ctx).
		Order("c_date asc").
		Find(&rows).Error
	if err != nil {
		return nil, domain.WrapError(domain.KindOperationFailed, "failed to list workspaces", err)
	}
	result := make([]domain.Workspace, 0, len(rows))
	for _, row := range rows {
		result = append(result, workspaceFromRow(row))
	}
	return result, nil
}

func (r *WorkspaceRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Workspace{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, domain.WrapError(domain.KindOperationFailed, "failed to check workspace", err)
	}
	return count > 0, nil
}

func (r *WorkspaceRepository) Update(ctx context.Context, ws domain.Workspace) error {
	err := r.db.WithContext(ctx).
		Model(&models.Workspace{}).
		Where("id = ?", ws.ID).
		Updates(map[string]any{
			"name":        ws.Name,
			"is_archived": ws.IsArchived,
			"m_date":      time.Now(),
		}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.WrapError(domain.KindWorkspaceAlreadyExists, "workspace name already taken", err)
		}
		return domain.WrapError(domain.KindOperationFailed, "failed to update workspace", err)
	}
	return nil
}

// Delete removes the workspace row. Origin records, line signatures, and
// access tokens go with it through the cascade constraints.
func (r *WorkspaceRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Workspace{}, "id = ?", id)
	if result.Error != nil {
		return domain.WrapError(domain.KindOperationFailed, "failed to delete workspace", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrWorkspaceNotFound
	}
	return nil
}

func workspaceFromRow(row models.Workspace) domain.Workspace {
	return domain.Workspace{
		ID:         row.ID,
		Name:       row.Name,
		IsArchived: row.IsArchived,
		CreatedAt:  row.CDate,
		UpdatedAt:  row.MDate,
	}
}

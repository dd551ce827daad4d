package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/retracehq/retrace/internal/domain"
)

type WorkspaceUsecase struct {
	repo WorkspaceRepository
}

func NewWorkspaceUsecase(repo WorkspaceRepository) *WorkspaceUsecase {
	return &WorkspaceUsecase{repo: repo}
}

func (uc *WorkspaceUsecase) Create(ctx context.Context, name string) (domain.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Workspace{}, domain.NewError(domain.KindValidation, "workspace name must not be empty")
	}

	ws := domain.Workspace{
		ID:   uuid.NewString(),
		Name: name,
	}
	if err := uc.repo.Create(ctx, ws); err != nil {
		return domain.Workspace{}, err
	}
	return uc.repo.Get(ctx, ws.ID)
}

func (uc *WorkspaceUsecase) Get(ctx context.Context, id string) (domain.Workspace, error) {
	return uc.repo.Get(ctx, id)
}

func (uc *WorkspaceUsecase) GetByName(ctx context.Context, name string) (domain.Workspace, error) {
	return uc.repo.GetByName(ctx, name)
}

func (uc *WorkspaceUsecase) List(ctx context.Context) ([]domain.Workspace, error) {
	return uc.repo.List(ctx)
}

// Rename re-checks name uniqueness through the unique index; the repository
// surfaces duplicates as KindWorkspaceAlreadyExists.
func (uc *WorkspaceUsecase) Rename(ctx context.Context, id, name string) (domain.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Workspace{}, domain.NewError(domain.KindValidation, "workspace name must not be empty")
	}

	ws, err := uc.repo.Get(ctx, id)
	if err != nil {
		return domain.Workspace{}, err
	}
	ws.Name = name
	if err := uc.repo.Update(ctx, ws); err != nil {
		return domain.Workspace{}, err
	}
	return uc.repo.Get(ctx, id)
}

func (uc *WorkspaceUsecase) SetArchived(ctx context.Context, id string, archived bool) (domain.Workspace, error) {
	ws, err := uc.repo.Get(ctx, id)
	if err != nil {
		return domain.Workspace{}, err
	}
	ws.IsArchived = archived
	if err := uc.repo.Update(ctx, ws); err != nil {
		return domain.Workspace{}, err
	}
	return uc.repo.Get(ctx, id)
}

// Delete cascades to origin records, line signatures, and access tokens.
func (uc *WorkspaceUsecase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

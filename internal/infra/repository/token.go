package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/retracehq/retrace/internal/domain"
	"github.com/retracehq/retrace/internal/infra/database/models"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, token domain.AccessToken, tokenHash string) error {
	row := models.AccessToken{
		ID:          token.ID,
		WorkspaceID: token.WorkspaceID,
		TokenHash:   tokenHash,
		Prefix:      token.Prefix,
		Description: token.Description,
		ExpiresAt:   token.ExpiresAt,
	}
	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		return domain.WrapError(domain.KindOperationFailed, "failed to create access token", err)
	}
	return nil
}

func (r *TokenRepository) GetByHash(ctx context.Context, tokenHash string) (domain.AccessToken, error) {
	var row models.AccessToken
	err := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AccessToken{}, domain.ErrTokenNotFound
		}
		return domain.AccessToken{}, domain.WrapError(domain.KindOperationFailed, "failed to load access token", err)
	}
	return tokenFromRow(row), nil
}

func (r *TokenRepository) List(ctx context.Context, workspaceID string) ([]domain.AccessToken, error) {
	var rows []models.AccessToken
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("c_date asc").
		Find(&rows).Error
	if err != nil {
		return nil, domain.WrapError(domain.KindOperationFailed, "failed to list access tokens", err)
	}
	tokens := make([]domain.AccessToken, 0, len(rows))
	for _, row := range rows {
		tokens = append(tokens, tokenFromRow(row))
	}
	return tokens, nil
}

// Revoke flags the token and returns its stored hash so callers can drop any
// cached auth entry.
func (r *TokenRepository) Revoke(ctx context.Context, workspaceID, tokenID string) (string, error) {
	var row models.AccessToken
	err := r.db.WithContext(ctx).
		Where("id = ? AND workspace_id = ?", tokenID, workspaceID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrTokenNotFound
		}
		return "", domain.WrapError(domain.KindOperationFailed, "failed to load access token", err)
	}

	err = r.db.WithContext(ctx).
		Model(&models.AccessToken{}).
		Where("id = ?", tokenID).
		Update("is_revoked", true).Error
	if err != nil {
		return "", domain.WrapError(domain.KindOperationFailed, "failed to revoke access token", err)
	}
	return row.TokenHash, nil
}

// TouchLastUsed is best effort; a failed update must not fail the request.
func (r *TokenRepository) TouchLastUsed(ctx context.Context, tokenID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.AccessToken{}).
		Where("id = ?", tokenID).
		Update("last_used_at", at).Error
}

func tokenFromRow(row models.AccessToken) domain.AccessToken {
	return domain.AccessToken{
		ID:          row.ID,
		WorkspaceID: row.WorkspaceID,
		Prefix:      row.Prefix,
		Description: row.Description,
		CreatedAt:   row.CDate,
		LastUsedAt:  row.LastUsedAt,
		ExpiresAt:   row.ExpiresAt,
		IsRevoked:   row.IsRevoked,
	}
}

package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/retracehq/retrace/internal/domain"
)

// TokenPrefixLen is how many leading characters of the raw token are kept in
// clear for identification in listings.
const TokenPrefixLen = 8

type TokenUsecase struct {
	tokens      TokenRepository
	workspaces  WorkspaceRepository
	invalidator AuthInvalidator
}

func NewTokenUsecase(tokens TokenRepository, workspaces WorkspaceRepository, invalidator AuthInvalidator) *TokenUsecase {
	return &TokenUsecase{
		tokens:      tokens,
		workspaces:  workspaces,
		invalidator: invalidator,
	}
}

// IssuedToken carries the raw token value exactly once.
type IssuedToken struct {
	Token    domain.AccessToken
	RawValue string
}

// Issue mints an opaque workspace-scoped bearer token. Only the SHA-256 hash
// of the raw value is persisted.
func (uc *TokenUsecase) Issue(ctx context.Context, workspaceID, description string, expiresAt *time.Time) (IssuedToken, error) {
	if _, err := uc.workspaces.Get(ctx, workspaceID); err != nil {
		return IssuedToken{}, err
	}

	raw, err := generateTokenValue()
	if err != nil {
		return IssuedToken{}, domain.WrapError(domain.KindOperationFailed, "failed to generate token", err)
	}

	token := domain.AccessToken{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		Prefix:      raw[:TokenPrefixLen],
		Description: description,
		ExpiresAt:   expiresAt,
	}
	if err := uc.tokens.Create(ctx, token, domain.HashToken(raw)); err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: token, RawValue: raw}, nil
}

func (uc *TokenUsecase) List(ctx context.Context, workspaceID string) ([]domain.AccessToken, error) {
	if _, err := uc.workspaces.Get(ctx, workspaceID); err != nil {
		return nil, err
	}
	return uc.tokens.List(ctx, workspaceID)
}

func (uc *TokenUsecase) Revoke(ctx context.Context, workspaceID, tokenID string) error {
	hash, err := uc.tokens.Revoke(ctx, workspaceID, tokenID)
	if err != nil {
		return err
	}
	if uc.invalidator != nil {
		uc.invalidator.Invalidate(ctx, hash)
	}
	return nil
}

func generateTokenValue() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "rt_" + hex.EncodeToString(buf), nil
}

package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/retracehq/retrace/internal/domain"
	"github.com/retracehq/retrace/internal/infra/cache"
)

var tracer = otel.Tracer("auth")

const authCacheTTL = 60 * time.Second

// TokenStore is the slice of token persistence the auth path needs.
type TokenStore interface {
	GetByHash(ctx context.Context, tokenHash string) (domain.AccessToken, error)
	TouchLastUsed(ctx context.Context, tokenID string, at time.Time) error
}

type AuthService struct {
	store TokenStore
	cache cache.Cache
	now   func() time.Time
}

func NewAuthService(store TokenStore, authCache cache.Cache) *AuthService {
	return &AuthService{
		store: store,
		cache: authCache,
		now:   time.Now,
	}
}

// Authenticate resolves a raw bearer value and checks that it may act on the
// given workspace. Revoked and expired tokens are distinct failures so the
// client can decide whether a retry makes sense (it never does); a valid
// token scoped to another workspace is TokenForbidden, never empty data.
func (s *AuthService) Authenticate(ctx context.Context, rawToken, workspaceID string) (domain.AccessToken, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Authenticate")
	defer span.End()

	tokenHash := domain.HashToken(rawToken)

	token, cached := s.lookupCached(ctx, tokenHash)
	if !cached {
		var err error
		token, err = s.store.GetByHash(ctx, tokenHash)
		if err != nil {
			span.RecordError(errors.Wrap(err, "token lookup failed"))
			return domain.AccessToken{}, err
		}
		s.storeCached(ctx, tokenHash, token)
	}

	if err := token.Usable(s.now()); err != nil {
		span.RecordError(err)
		return domain.AccessToken{}, err
	}

	if token.WorkspaceID != workspaceID {
		err := domain.ErrTokenForbidden
		span.RecordError(err)
		return domain.AccessToken{}, err
	}

	// Best effort; losing a lastUsedAt update is fine.
	_ = s.store.TouchLastUsed(ctx, token.ID, s.now())

	return token, nil
}

// Invalidate drops the cached entry for a token hash after revocation.
func (s *AuthService) Invalidate(ctx context.Context, tokenHash string) {
	if s.cache != nil {
		s.cache.Delete(ctx, authCacheKey(tokenHash))
	}
}

func (s *AuthService) lookupCached(ctx context.Context, tokenHash string) (domain.AccessToken, bool) {
	if s.cache == nil {
		return domain.AccessToken{}, false
	}
	payload, found := s.cache.Get(ctx, authCacheKey(tokenHash))
	if !found {
		return domain.AccessToken{}, false
	}
	var token domain.AccessToken
	if err := json.Unmarshal([]byte(payload), &token); err != nil {
		return domain.AccessToken{}, false
	}
	return token, true
}

func (s *AuthService) storeCached(ctx context.Context, tokenHash string, token domain.AccessToken) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(token)
	if err != nil {
		return
	}
	s.cache.Set(ctx, authCacheKey(tokenHash), string(payload), authCacheTTL)
}

func authCacheKey(tokenHash string) string {
	return "retrace:auth:" + tokenHash
}

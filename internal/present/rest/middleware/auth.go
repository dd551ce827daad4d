package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/retracehq/retrace/internal/domain"
	"github.com/retracehq/retrace/internal/present/rest/presenter"
	"github.com/retracehq/retrace/internal/service"
)

var tracer = otel.Tracer("auth")

// TokenCtxKey holds the authenticated domain.AccessToken in the request
// context once RequireWorkspaceToken has passed.
const TokenCtxKey = "retrace-accessToken"

// TokenFromContext returns the token stashed by RequireWorkspaceToken.
func TokenFromContext(ctx context.Context) (domain.AccessToken, bool) {
	token, ok := ctx.Value(TokenCtxKey).(domain.AccessToken)
	return token, ok
}

type AuthMiddleware struct {
	auth     *service.AuthService
	adminKey string
}

func NewAuthMiddleware(auth *service.AuthService, adminKey string) *AuthMiddleware {
	return &AuthMiddleware{
		auth:     auth,
		adminKey: adminKey,
	}
}

// RequireWorkspaceToken authenticates the bearer token against the :id path
// workspace. Missing or malformed credentials are 401; a valid token scoped
// to a different workspace is 403, never an empty result set.
func (m *AuthMiddleware) RequireWorkspaceToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.RequireWorkspaceToken")
		defer span.End()

		workspaceID := c.Param("id")

		raw, ok := bearerToken(c)
		if !ok {
			return presenter.Unauthorized(c, "missing bearer token")
		}

		token, err := m.auth.Authenticate(ctx, raw, workspaceID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrTokenForbidden):
				return presenter.Forbidden(c, "token not valid for this workspace")
			case errors.Is(err, domain.ErrTokenExpired):
				return presenter.Unauthorized(c, "token expired")
			case errors.Is(err, domain.ErrTokenRevoked):
				return presenter.Unauthorized(c, "token revoked")
			case errors.Is(err, domain.ErrTokenNotFound):
				return presenter.Unauthorized(c, "invalid token")
			default:
				return presenter.InternalError(c, err)
			}
		}

		span.SetAttributes(attribute.String("WorkspaceId", workspaceID))
		ctx = context.WithValue(ctx, TokenCtxKey, token) //nolint:staticcheck // echo convention, string key is namespaced
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// RequireAdminKey guards the management surface when an admin key is
// configured. Without one the surface stays open (single-operator setups).
func (m *AuthMiddleware) RequireAdminKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.adminKey == "" {
			return next(c)
		}
		raw, ok := bearerToken(c)
		if !ok || raw != m.adminKey {
			return presenter.Unauthorized(c, "admin key required")
		}
		return next(c)
	}
}

func bearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	split := strings.Split(authHeader, " ")
	if len(split) != 2 || split[0] != "Bearer" {
		return "", false
	}
	return split[1], true
}

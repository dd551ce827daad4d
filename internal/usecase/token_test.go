package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/retracehq/retrace/internal/domain"
)

type mockTokenRepo struct {
	tokens map[string]domain.AccessToken // keyed by hash
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{tokens: map[string]domain.AccessToken{}}
}

func (m *mockTokenRepo) Create(ctx context.Context, token domain.AccessToken, tokenHash string) error {
	token.CreatedAt = time.Now()
	m.tokens[tokenHash] = token
	return nil
}

func (m *mockTokenRepo) List(ctx context.Context, workspaceID string) ([]domain.AccessToken, error) {
	var result []domain.AccessToken
	for _, token := range m.tokens {
		if token.WorkspaceID == workspaceID {
			result = append(result, token)
		}
	}
	return result, nil
}

func (m *mockTokenRepo) Revoke(ctx context.Context, workspaceID, tokenID string) (string, error) {
	for hash, token := range m.tokens {
		if token.ID == tokenID && token.WorkspaceID == workspaceID {
			token.IsRevoked = true
			m.tokens[hash] = token
			return hash, nil
		}
	}
	return "", domain.ErrTokenNotFound
}

type mockInvalidator struct {
	dropped []string
}

func (m *mockInvalidator) Invalidate(ctx context.Context, tokenHash string) {
	m.dropped = append(m.dropped, tokenHash)
}

func TestTokenIssue(t *testing.T) {
	tokens := newMockTokenRepo()
	uc := NewTokenUsecase(tokens, newMockWorkspaceRepo("ws1"), nil)

	issued, err := uc.Issue(context.Background(), "ws1", "ci token", nil)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if !strings.HasPrefix(issued.RawValue, "rt_") {
		t.Fatalf("unexpected token value %q", issued.RawValue)
	}
	if issued.Token.Prefix != issued.RawValue[:TokenPrefixLen] {
		t.Fatalf("prefix mismatch: %s vs %s", issued.Token.Prefix, issued.RawValue)
	}

	stored, ok := tokens.tokens[domain.HashToken(issued.RawValue)]
	if !ok {
		t.Fatalf("token not stored under its hash")
	}
	if stored.WorkspaceID != "ws1" || stored.Description != "ci token" {
		t.Fatalf("unexpected stored token %+v", stored)
	}
}

func TestTokenIssueUnknownWorkspace(t *testing.T) {
	uc := NewTokenUsecase(newMockTokenRepo(), newMockWorkspaceRepo(), nil)

	if _, err := uc.Issue(context.Background(), "missing", "", nil); !errors.Is(err, domain.ErrWorkspaceNotFound) {
		t.Fatalf("expected WorkspaceNotFound, got %v", err)
	}
}

func TestTokenRevokeInvalidatesCache(t *testing.T) {
	tokens := newMockTokenRepo()
	invalidator := &mockInvalidator{}
	uc := NewTokenUsecase(tokens, newMockWorkspaceRepo("ws1"), invalidator)

	issued, err := uc.Issue(context.Background(), "ws1", "", nil)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if err := uc.Revoke(context.Background(), "ws1", issued.Token.ID); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}

	hash := domain.HashToken(issued.RawValue)
	if len(invalidator.dropped) != 1 || invalidator.dropped[0] != hash {
		t.Fatalf("expected cache invalidation for %s, got %v", hash, invalidator.dropped)
	}
	if !tokens.tokens[hash].IsRevoked {
		t.Fatalf("token not flagged revoked")
	}

	if err := uc.Revoke(context.Background(), "ws1", "nope"); !errors.Is(err, domain.ErrTokenNotFound) {
		t.Fatalf("expected TokenNotFound, got %v", err)
	}
}

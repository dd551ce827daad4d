package usecase

import (
	"context"
	"time"

	"github.com/retracehq/retrace"
	"github.com/retracehq/retrace/internal/domain"
	"github.com/retracehq/retrace/internal/infra/repository"
)

// WorkspaceRepository defines persistence for workspaces.
type WorkspaceRepository interface {
	Create(ctx context.Context, ws domain.Workspace) error
	Get(ctx context.Context, id string) (domain.Workspace, error)
	GetByName(ctx context.Context, name string) (domain.Workspace, error)
	List(ctx context.Context) ([]domain.Workspace, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, ws domain.Workspace) error
	Delete(ctx context.Context, id string) error
}

// RecordRepository defines storage operations for origin records and their
// line signatures.
type RecordRepository interface {
	InsertBatch(ctx context.Context, workspaceID string, entries []retrace.OriginRecord) ([]repository.StoredRecord, error)
	ListSignatures(ctx context.Context, workspaceID string) ([]retrace.SignatureEntry, error)
}

// TokenRepository defines persistence for workspace-scoped access tokens.
type TokenRepository interface {
	Create(ctx context.Context, token domain.AccessToken, tokenHash string) error
	List(ctx context.Context, workspaceID string) ([]domain.AccessToken, error)
	Revoke(ctx context.Context, workspaceID, tokenID string) (string, error)
}

// EventPublisher fans out record-stored events to realtime subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event retrace.RecordEvent) error
}

// AuthInvalidator drops a cached auth entry after revocation.
type AuthInvalidator interface {
	Invalidate(ctx context.Context, tokenHash string)
}

// Clock lets tests pin time.
type Clock func() time.Time

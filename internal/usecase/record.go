package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/retracehq/retrace"
)

type RecordUsecase struct {
	records    RecordRepository
	workspaces WorkspaceRepository
	publisher  EventPublisher
}

func NewRecordUsecase(records RecordRepository, workspaces WorkspaceRepository, publisher EventPublisher) *RecordUsecase {
	return &RecordUsecase{
		records:    records,
		workspaces: workspaces,
		publisher:  publisher,
	}
}

// Record stores a batch of origin records. An unknown workspace is a silent
// no-op reported as success: client instrumentation keeps shipping against a
// stale workspace id and must never fail hard for it. Empty batches are also
// a success with no writes.
func (uc *RecordUsecase) Record(ctx context.Context, workspaceID string, entries []retrace.OriginRecord) (retrace.RecordResponse, error) {
	if len(entries) == 0 {
		return retrace.RecordResponse{OK: true, Message: "no entries"}, nil
	}

	exists, err := uc.workspaces.Exists(ctx, workspaceID)
	if err != nil {
		return retrace.RecordResponse{}, err
	}
	if !exists {
		return retrace.RecordResponse{OK: true, Message: "workspace not found, entries skipped"}, nil
	}

	stored, err := uc.records.InsertBatch(ctx, workspaceID, entries)
	if err != nil {
		return retrace.RecordResponse{}, err
	}

	if uc.publisher != nil {
		now := time.Now().UnixMilli()
		for _, rec := range stored {
			event := retrace.RecordEvent{
				WorkspaceID: workspaceID,
				RecordID:    rec.ID,
				Path:        rec.Path,
				Lines:       rec.Lines,
				RecordedAt:  now,
			}
			if err := uc.publisher.Publish(ctx, event); err != nil {
				slog.WarnContext(ctx, "failed to publish record event",
					slog.String("workspaceId", workspaceID),
					slog.String("error", err.Error()),
					slog.String("module", "record"),
				)
			}
		}
	}

	return retrace.RecordResponse{OK: true, Message: "recorded"}, nil
}

// ListSignatures returns all stored signatures of a workspace enriched with
// their originating file path. A workspace without records yields an empty
// list, not an error; an unknown workspace is an error because the retrieval
// side must distinguish 404 from "nothing recorded yet".
func (uc *RecordUsecase) ListSignatures(ctx context.Context, workspaceID string) ([]retrace.SignatureEntry, error) {
	if _, err := uc.workspaces.Get(ctx, workspaceID); err != nil {
		return nil, err
	}
	return uc.records.ListSignatures(ctx, workspaceID)
}

package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/retracehq/retrace/internal/domain"
)

func TestWorkspaceCreateAndRename(t *testing.T) {
	repo := newMockWorkspaceRepo()
	uc := NewWorkspaceUsecase(repo)

	ws, err := uc.Create(context.Background(), "proj")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if ws.ID == "" || ws.Name != "proj" {
		t.Fatalf("unexpected workspace %+v", ws)
	}

	if _, err := uc.Create(context.Background(), "proj"); !errors.Is(err, domain.ErrWorkspaceAlreadyExists) {
		t.Fatalf("expected WorkspaceAlreadyExists, got %v", err)
	}

	renamed, err := uc.Rename(context.Background(), ws.ID, "proj2")
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if renamed.Name != "proj2" {
		t.Fatalf("expected renamed workspace, got %+v", renamed)
	}
}

func TestWorkspaceCreateEmptyName(t *testing.T) {
	uc := NewWorkspaceUsecase(newMockWorkspaceRepo())

	if _, err := uc.Create(context.Background(), "   "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWorkspaceArchiveAndDelete(t *testing.T) {
	repo := newMockWorkspaceRepo("ws1")
	uc := NewWorkspaceUsecase(repo)

	ws, err := uc.SetArchived(context.Background(), "ws1", true)
	if err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	if !ws.IsArchived {
		t.Fatalf("expected archived workspace")
	}

	if err := uc.Delete(context.Background(), "ws1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := uc.Delete(context.Background(), "ws1"); !errors.Is(err, domain.ErrWorkspaceNotFound) {
		t.Fatalf("expected WorkspaceNotFound, got %v", err)
	}
}

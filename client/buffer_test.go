package client

import (
	"testing"

	"github.com/retracehq/retrace"
)

func record(path string) retrace.OriginRecord {
	return retrace.OriginRecord{Path: path, Cors: retrace.CorsFor("line")}
}

func TestBufferDropsNewestWhenFull(t *testing.T) {
	b := NewBuffer(3)

	for _, path := range []string{"a.go", "b.go", "c.go"} {
		if !b.Enqueue(record(path)) {
			t.Fatalf("enqueue %s rejected before capacity", path)
		}
	}
	if b.Enqueue(record("d.go")) {
		t.Fatalf("expected enqueue past capacity to be rejected")
	}
	if b.Size() != 3 {
		t.Fatalf("size = %d, want 3", b.Size())
	}

	got := b.Dequeue(10)
	if len(got) != 3 {
		t.Fatalf("dequeued %d records, want 3", len(got))
	}
	for i, want := range []string{"a.go", "b.go", "c.go"} {
		if got[i].Path != want {
			t.Fatalf("record %d path = %s, want %s", i, got[i].Path, want)
		}
	}
}

func TestBufferWrapsAround(t *testing.T) {
	b := NewBuffer(2)

	b.Enqueue(record("a.go"))
	b.Enqueue(record("b.go"))
	b.Dequeue(1)
	if !b.Enqueue(record("c.go")) {
		t.Fatalf("enqueue after dequeue rejected")
	}

	got := b.Dequeue(2)
	if len(got) != 2 || got[0].Path != "b.go" || got[1].Path != "c.go" {
		t.Fatalf("unexpected order after wrap: %+v", got)
	}
	if b.Size() != 0 {
		t.Fatalf("size = %d, want 0", b.Size())
	}
}

func TestBufferPartialDequeue(t *testing.T) {
	b := NewBuffer(4)
	b.Enqueue(record("a.go"))

	if got := b.Dequeue(3); len(got) != 1 {
		t.Fatalf("dequeued %d records, want 1", len(got))
	}
	if got := b.Dequeue(3); got != nil {
		t.Fatalf("expected nil from empty buffer, got %+v", got)
	}
}

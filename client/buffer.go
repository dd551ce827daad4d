package client

import "github.com/retracehq/retrace"

// Buffer is a fixed-capacity FIFO ring over a preallocated array. When full
// it refuses new entries instead of evicting old ones, so the oldest pending
// records always ship first. Not safe for concurrent use; the Recorder
// serializes access.
type Buffer struct {
	items []retrace.OriginRecord
	head  int
	count int
}

func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{items: make([]retrace.OriginRecord, capacity)}
}

// Enqueue appends a record at the tail. Returns false when the buffer is
// full and the record was dropped.
func (b *Buffer) Enqueue(record retrace.OriginRecord) bool {
	if b.count == len(b.items) {
		return false
	}
	tail := (b.head + b.count) % len(b.items)
	b.items[tail] = record
	b.count++
	return true
}

// Dequeue removes and returns up to n records in insertion order.
func (b *Buffer) Dequeue(n int) []retrace.OriginRecord {
	if n > b.count {
		n = b.count
	}
	if n <= 0 {
		return nil
	}
	out := make([]retrace.OriginRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, b.items[b.head])
		b.items[b.head] = retrace.OriginRecord{}
		b.head = (b.head + 1) % len(b.items)
		b.count--
	}
	return out
}

func (b *Buffer) Size() int {
	return b.count
}

func (b *Buffer) Capacity() int {
	return len(b.items)
}

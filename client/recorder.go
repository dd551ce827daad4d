package client

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/retracehq/retrace"
)

const (
	defaultCapacity       = 1024
	defaultBatchSize      = 20
	defaultFlushInterval  = 10 * time.Second
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = time.Second
)

// API is the slice of the Client the recorder needs.
type API interface {
	Record(ctx context.Context, workspaceID string, entries []retrace.OriginRecord) (retrace.RecordResponse, error)
}

type RecorderOptions struct {
	WorkspaceID    string
	GeneratedBy    string // default attribution when Track gets none
	Capacity       int
	BatchSize      int
	FlushInterval  time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	Logger         *slog.Logger
}

// Recorder accumulates origin records in a bounded buffer and ships them in
// batches, either when enough pile up or on a timer. Tracking never blocks
// the caller on network I/O and never propagates delivery errors; failures
// are logged and, past the retry budget, dropped.
type Recorder struct {
	api  API
	opts RecorderOptions
	log  *slog.Logger

	mu       sync.Mutex
	buf      *Buffer
	flushing bool

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewRecorder(api API, opts RecorderOptions) *Recorder {
	if opts.Capacity <= 0 {
		opts.Capacity = defaultCapacity
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = defaultFlushInterval
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = defaultRetryBaseDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := &Recorder{
		api:  api,
		opts: opts,
		log:  opts.Logger.With("workspace", opts.WorkspaceID),
		buf:  NewBuffer(opts.Capacity),
		done: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.flushLoop()

	return r
}

// Track derives signatures for one authored code unit and queues them for
// delivery. Entries with an empty path or empty code are rejected up front;
// a full buffer drops the new entry. Returns whether the entry was queued.
func (r *Recorder) Track(path, language, code, generatedBy string) bool {
	if strings.TrimSpace(path) == "" || code == "" {
		r.log.Debug("skipping invalid track call", "path", path)
		return false
	}
	if generatedBy == "" {
		generatedBy = r.opts.GeneratedBy
	}

	record := retrace.OriginRecord{
		Path:        path,
		Language:    language,
		Timestamp:   time.Now().UnixMilli(),
		GeneratedBy: generatedBy,
		Cors:        retrace.CorsFor(code),
	}

	r.mu.Lock()
	queued := r.buf.Enqueue(record)
	size := r.buf.Size()
	r.mu.Unlock()

	if !queued {
		r.log.Warn("record buffer full, dropping entry", "path", path)
		return false
	}

	if size >= r.opts.BatchSize {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.Flush(context.Background())
		}()
	}
	return true
}

// Flush drains the buffer batch by batch. Only one flush runs at a time;
// concurrent calls return immediately.
func (r *Recorder) Flush(ctx context.Context) {
	r.mu.Lock()
	if r.flushing {
		r.mu.Unlock()
		return
	}
	r.flushing = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.flushing = false
		r.mu.Unlock()
	}()

	for {
		r.mu.Lock()
		batch := r.buf.Dequeue(r.opts.BatchSize)
		r.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		if !r.deliver(ctx, batch) {
			return
		}
	}
}

// deliver sends one batch, retrying transient failures with linear backoff.
// Shutdown does not cut retries short: the final flush keeps the full retry
// budget, only ctx cancellation aborts it. Returns false when flushing should
// stop, either because the batch was dropped or the context ended.
func (r *Recorder) deliver(ctx context.Context, batch []retrace.OriginRecord) bool {
	for attempt := 1; ; attempt++ {
		_, err := r.api.Record(ctx, r.opts.WorkspaceID, batch)
		if err == nil {
			r.log.Debug("flushed record batch", "entries", len(batch))
			return true
		}
		if IsTerminal(err) {
			r.log.Error("dropping record batch, request rejected", "entries", len(batch), "error", err)
			return false
		}
		if attempt >= r.opts.MaxRetries {
			r.log.Error("dropping record batch, retries exhausted", "entries", len(batch), "attempts", attempt, "error", err)
			return false
		}

		delay := r.opts.RetryBaseDelay * time.Duration(attempt)
		r.log.Warn("record batch failed, retrying", "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			r.log.Error("dropping record batch, flush canceled", "entries", len(batch), "error", ctx.Err())
			return false
		}
	}
}

func (r *Recorder) flushLoop() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			pending := r.buf.Size()
			r.mu.Unlock()
			if pending > 0 {
				r.Flush(context.Background())
			}
		case <-r.done:
			return
		}
	}
}

// Pending reports how many records are waiting for delivery.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Size()
}

// Close stops the background loop and makes a final delivery attempt for
// anything still buffered.
func (r *Recorder) Close(ctx context.Context) {
	r.closeOnce.Do(func() {
		close(r.done)
	})
	r.wg.Wait()
	r.Flush(ctx)
}

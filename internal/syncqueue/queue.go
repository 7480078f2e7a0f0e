package syncqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrRetryExhausted is reported (not fatal) when an entry failed every attempt
// of a flush cycle. The entry stays queued for the next trigger.
var ErrRetryExhausted = errors.New("retry attempts exhausted")

type Options struct {
	// MaxRetries is the per-entry attempt cap within one flush cycle.
	MaxRetries int

	// BackoffBase is multiplied by the attempt number between retries.
	BackoffBase time.Duration

	// FlushInterval drives the periodic safety-net flush, independent of
	// connectivity-change delivery reliability.
	FlushInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxRetries:    3,
		BackoffBase:   2 * time.Second,
		FlushInterval: 15 * time.Minute,
	}
}

// Queue buffers remote writes locally while disconnected and replays them
// when connectivity returns. An entry is flagged synced only after a
// confirmed remote commit; exhausted entries remain queued.
type Queue struct {
	buffer LocalBuffer
	remote RemoteStore
	opts   Options

	// flushMu makes flush single-flight: a request arriving mid-flush is a
	// no-op, the periodic trigger picks up anything it missed.
	flushMu sync.Mutex

	mu         sync.Mutex
	lastSyncAt time.Time
}

func NewQueue(buffer LocalBuffer, remote RemoteStore, opts Options) *Queue {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultOptions().MaxRetries
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultOptions().FlushInterval
	}
	return &Queue{buffer: buffer, remote: remote, opts: opts}
}

// Enqueue durably appends a write. It always succeeds locally (short of the
// local buffer itself failing) and returns immediately.
func (q *Queue) Enqueue(collection, docID string, payload json.RawMessage) error {
	entry := QueuedWrite{
		ID:         uuid.New(),
		Collection: collection,
		DocID:      docID,
		Payload:    payload,
		CreatedAt:  time.Now(),
	}
	if err := q.buffer.Put(entry); err != nil {
		return fmt.Errorf("buffer write: %w", err)
	}
	return nil
}

// Write attempts the remote commit directly and falls back to the queue when
// the remote is unreachable. Callers treat a queued write as success.
func (q *Queue) Write(ctx context.Context, collection, docID string, payload json.RawMessage) error {
	if err := q.remote.Set(ctx, collection, docID, payload); err != nil {
		log.Printf("[syncqueue] remote write failed for %s/%s, queueing: %v", collection, docID, err)
		return q.Enqueue(collection, docID, payload)
	}
	q.markSynced()
	return nil
}

// Flush replays all unsynced entries. Single-flight: a concurrent call
// returns immediately. The unsynced set is snapshotted at flush start, so
// entries enqueued mid-flush wait for the next trigger.
func (q *Queue) Flush(ctx context.Context) error {
	if !q.flushMu.TryLock() {
		return nil
	}
	defer q.flushMu.Unlock()

	entries, err := q.buffer.Values()
	if err != nil {
		return fmt.Errorf("buffer read: %w", err)
	}

	var exhausted int
	for _, entry := range entries {
		if entry.Synced {
			continue
		}
		if err := q.flushEntry(ctx, entry); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			// One failed entry must not block the rest of the batch.
			exhausted++
		}
	}

	if exhausted > 0 {
		log.Printf("[syncqueue] flush left %d entries queued: %v", exhausted, ErrRetryExhausted)
	}
	return nil
}

// flushEntry commits one entry with bounded retries and linear-times-attempt
// backoff (base 2s: 2s, 4s, 6s).
func (q *Queue) flushEntry(ctx context.Context, entry QueuedWrite) error {
	for attempt := 1; attempt <= q.opts.MaxRetries; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, q.opts.BackoffBase*time.Duration(attempt-1)); err != nil {
				return err
			}
		}

		err := q.remote.Set(ctx, entry.Collection, entry.DocID, json.RawMessage(entry.Payload))
		entry.AttemptCount++
		if err == nil {
			entry.Synced = true
			entry.LastError = ""
			if putErr := q.buffer.Put(entry); putErr != nil {
				log.Printf("[syncqueue] failed to flag entry %s synced: %v", entry.ID, putErr)
			}
			q.markSynced()
			return nil
		}

		entry.LastError = err.Error()
		if putErr := q.buffer.Put(entry); putErr != nil {
			log.Printf("[syncqueue] failed to record attempt for entry %s: %v", entry.ID, putErr)
		}
	}
	return ErrRetryExhausted
}

// NotifyOnline is the edge-triggered flush on an offline-to-online transition.
func (q *Queue) NotifyOnline(ctx context.Context) {
	go func() {
		if err := q.Flush(ctx); err != nil {
			log.Printf("[syncqueue] online-edge flush: %v", err)
		}
	}()
}

// Run drives the periodic safety-net flush until ctx is cancelled. An
// in-flight flush is allowed to finish; only new triggers stop.
func (q *Queue) Run(ctx context.Context) {
	ticker := time.NewTicker(q.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[syncqueue] periodic flush stopped")
			return
		case <-ticker.C:
			if err := q.Flush(context.WithoutCancel(ctx)); err != nil {
				log.Printf("[syncqueue] periodic flush: %v", err)
			}
		}
	}
}

// PendingCount reports unsynced entries; feeds the tracking status surface.
func (q *Queue) PendingCount() int {
	entries, err := q.buffer.Values()
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.Synced {
			n++
		}
	}
	return n
}

// LastSyncAt is the time of the most recent confirmed remote commit.
func (q *Queue) LastSyncAt() time.Time {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastSyncAt
}

func (q *Queue) markSynced() {
	q.mu.Lock()
	q.lastSyncAt = time.Now()
	q.mu.Unlock()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

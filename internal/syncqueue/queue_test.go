package syncqueue_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/FieldPulse/FP-Attendance/internal/syncqueue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote scripts per-call outcomes: each Set consumes the next result in
// the failures queue (true = fail); an empty queue means success.
type fakeRemote struct {
	mu       sync.Mutex
	failures []bool
	sets     []string // "collection/docID" per successful commit
	inFlight chan struct{}
	release  chan struct{}
}

func (f *fakeRemote) Set(_ context.Context, collection, docID string, _ json.RawMessage) error {
	if f.inFlight != nil {
		f.inFlight <- struct{}{}
		<-f.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	fail := false
	if len(f.failures) > 0 {
		fail = f.failures[0]
		f.failures = f.failures[1:]
	}
	if fail {
		return syncqueue.ErrRemoteUnavailable
	}
	f.sets = append(f.sets, collection+"/"+docID)
	return nil
}

func (f *fakeRemote) Get(context.Context, string, string) (json.RawMessage, error) {
	return nil, syncqueue.ErrDocNotFound
}

func (f *fakeRemote) Delete(context.Context, string, string) error { return nil }

func (f *fakeRemote) Query(context.Context, string, map[string]any) ([]json.RawMessage, error) {
	return nil, nil
}

func newTestQueue(remote *fakeRemote) (*syncqueue.Queue, *syncqueue.MemoryBuffer) {
	buffer := syncqueue.NewMemoryBuffer()
	q := syncqueue.NewQueue(buffer, remote, syncqueue.Options{
		MaxRetries:    3,
		BackoffBase:   0, // no sleeping in tests
		FlushInterval: time.Hour,
	})
	return q, buffer
}

func unsynced(t *testing.T, buffer *syncqueue.MemoryBuffer) []syncqueue.QueuedWrite {
	t.Helper()
	entries, err := buffer.Values()
	require.NoError(t, err)
	var out []syncqueue.QueuedWrite
	for _, e := range entries {
		if !e.Synced {
			out = append(out, e)
		}
	}
	return out
}

func TestEnqueueFlushRoundTrip(t *testing.T) {
	remote := &fakeRemote{}
	q, buffer := newTestQueue(remote)

	require.NoError(t, q.Enqueue("attendance", "rec-1", json.RawMessage(`{"status":"checked_in"}`)))
	assert.Equal(t, 1, q.PendingCount())

	require.NoError(t, q.Flush(context.Background()))

	assert.Equal(t, []string{"attendance/rec-1"}, remote.sets, "exactly one commit")
	assert.Empty(t, unsynced(t, buffer))
	assert.Equal(t, 0, q.PendingCount())
	assert.False(t, q.LastSyncAt().IsZero())

	// A second flush must not re-send the synced entry.
	require.NoError(t, q.Flush(context.Background()))
	assert.Len(t, remote.sets, 1)
}

func TestFlushFailureKeepsEntryQueued(t *testing.T) {
	// All three attempts of the cycle fail.
	remote := &fakeRemote{failures: []bool{true, true, true}}
	q, buffer := newTestQueue(remote)

	require.NoError(t, q.Enqueue("attendance", "rec-1", json.RawMessage(`{}`)))
	require.NoError(t, q.Flush(context.Background()), "exhausted retries are reported, not returned")

	remaining := unsynced(t, buffer)
	require.Len(t, remaining, 1)
	assert.Equal(t, 3, remaining[0].AttemptCount, "three attempts then stop for this cycle")
	assert.NotEmpty(t, remaining[0].LastError)
	assert.Empty(t, remote.sets)

	// Next flush cycle retries and succeeds.
	require.NoError(t, q.Flush(context.Background()))
	assert.Equal(t, []string{"attendance/rec-1"}, remote.sets)
	assert.Empty(t, unsynced(t, buffer))
}

func TestFlushRecoversOnSecondAttempt(t *testing.T) {
	remote := &fakeRemote{failures: []bool{true, false}}
	q, buffer := newTestQueue(remote)

	require.NoError(t, q.Enqueue("attendance", "rec-1", json.RawMessage(`{}`)))
	require.NoError(t, q.Flush(context.Background()))

	assert.Len(t, remote.sets, 1)
	entries, err := buffer.Values()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Synced)
	assert.Equal(t, 2, entries[0].AttemptCount)
}

func TestFailedEntryDoesNotBlockBatch(t *testing.T) {
	// First entry burns its three attempts; second entry succeeds.
	remote := &fakeRemote{failures: []bool{true, true, true, false}}
	q, buffer := newTestQueue(remote)

	require.NoError(t, q.Enqueue("attendance", "bad", json.RawMessage(`{}`)))
	require.NoError(t, q.Enqueue("attendance", "good", json.RawMessage(`{}`)))
	require.NoError(t, q.Flush(context.Background()))

	assert.Equal(t, []string{"attendance/good"}, remote.sets)
	remaining := unsynced(t, buffer)
	require.Len(t, remaining, 1)
	assert.Equal(t, "bad", remaining[0].DocID)
}

func TestWriteFallsBackToQueue(t *testing.T) {
	remote := &fakeRemote{failures: []bool{true}}
	q, _ := newTestQueue(remote)

	require.NoError(t, q.Write(context.Background(), "attendance", "rec-1", json.RawMessage(`{}`)),
		"a queued fallback counts as success for the caller")
	assert.Equal(t, 1, q.PendingCount())

	require.NoError(t, q.Write(context.Background(), "attendance", "rec-2", json.RawMessage(`{}`)))
	assert.Equal(t, 1, q.PendingCount(), "direct write must not enqueue")
}

func TestConcurrentFlushIsNoOp(t *testing.T) {
	remote := &fakeRemote{
		inFlight: make(chan struct{}),
		release:  make(chan struct{}),
	}
	q, _ := newTestQueue(remote)
	require.NoError(t, q.Enqueue("attendance", "rec-1", json.RawMessage(`{}`)))

	done := make(chan error, 1)
	go func() { done <- q.Flush(context.Background()) }()
	<-remote.inFlight // first flush is now mid-commit

	// Second flush while one is in flight returns immediately without work.
	require.NoError(t, q.Flush(context.Background()))

	close(remote.release)
	require.NoError(t, <-done)
	assert.Len(t, remote.sets, 1)
}

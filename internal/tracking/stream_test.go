package tracking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/FieldPulse/FP-Attendance/internal/zones"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
	panics int
}

func (c *captureSink) HandleEvent(ctx context.Context, e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.panics > 0 {
		c.panics--
		panic("sink blew up")
	}
	c.events = append(c.events, e)
}

func (c *captureSink) all() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func streamRegistry(t *testing.T, orgID uuid.UUID, zs ...zones.Zone) *zones.Registry {
	t.Helper()
	store := zones.NewMemoryStore()
	for i := range zs {
		zs[i].OrganizationID = orgID
		require.NoError(t, store.Save(zs[i]))
	}
	return zones.NewRegistry(store, zones.NoopMonitor{})
}

func TestTrackerDeliversEventsThroughSink(t *testing.T) {
	orgID := uuid.New()
	employee := uuid.New()
	registry := streamRegistry(t, orgID, makeZone(100))
	sink := &captureSink{}
	tracker := NewTracker(registry, testPolicy(), sink)

	require.NoError(t, tracker.Submit(employee, orgID, sampleAt(10, 0)))
	require.NoError(t, tracker.Submit(employee, orgID, sampleAt(10, 30)))
	tracker.Stop()

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, EventEnter, events[0].Kind)
	assert.Equal(t, employee, events[0].EmployeeID)
}

func TestTrackerSinkPanicDoesNotKillDispatch(t *testing.T) {
	orgID := uuid.New()
	a, b := uuid.New(), uuid.New()
	registry := streamRegistry(t, orgID, makeZone(100))
	sink := &captureSink{panics: 1}
	tracker := NewTracker(registry, testPolicy(), sink)

	// First employee's enter event hits the panicking sink call.
	require.NoError(t, tracker.Submit(a, orgID, sampleAt(10, 0)))
	require.NoError(t, tracker.Submit(a, orgID, sampleAt(10, 30)))

	require.NoError(t, tracker.Submit(b, orgID, sampleAt(10, 0)))
	require.NoError(t, tracker.Submit(b, orgID, sampleAt(10, 30)))
	tracker.Stop()

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, EventEnter, events[0].Kind)
}

func TestTrackerStopSubjectResetsState(t *testing.T) {
	orgID := uuid.New()
	employee := uuid.New()
	registry := streamRegistry(t, orgID, makeZone(100))
	sink := &captureSink{}
	tracker := NewTracker(registry, testPolicy(), sink)

	require.NoError(t, tracker.Submit(employee, orgID, sampleAt(10, 0)))
	require.NoError(t, tracker.Submit(employee, orgID, sampleAt(10, 30)))

	// Let the enter land, then stop the subject.
	require.Eventually(t, func() bool { return len(sink.all()) == 1 }, time.Second, 10*time.Millisecond)
	tracker.StopSubject(employee)

	// Detector state was forgotten, so confirmation needs a fresh delay window
	// even though the clock carried on.
	require.NoError(t, tracker.Submit(employee, orgID, sampleAt(10, 60)))
	require.NoError(t, tracker.Submit(employee, orgID, sampleAt(10, 90)))
	tracker.Stop()

	events := sink.all()
	require.Len(t, events, 2)
	assert.Equal(t, EventEnter, events[1].Kind)
	assert.Equal(t, baseTime.Add(90*time.Second), events[1].At)
}

func TestTrackerRejectsAfterStop(t *testing.T) {
	registry := streamRegistry(t, uuid.New())
	tracker := NewTracker(registry, testPolicy(), &captureSink{})
	tracker.Stop()

	err := tracker.Submit(uuid.New(), uuid.New(), sampleAt(10, 0))
	assert.Error(t, err)
}

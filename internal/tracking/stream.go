package tracking

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/FieldPulse/FP-Attendance/internal/zones"
	"github.com/google/uuid"
)

// EventSink receives confirmed transition events. The attendance service is
// the production sink.
type EventSink interface {
	HandleEvent(ctx context.Context, e Event)
}

const (
	sampleBuffer = 32
	eventBuffer  = 256
)

type worker struct {
	orgID   uuid.UUID
	samples chan Sample
}

// Tracker fans position samples out to one goroutine per employee, so each
// subject stream is processed strictly in arrival order while different
// employees proceed concurrently. Event delivery to the sink runs on its own
// goroutine: a slow attendance write never stalls sample evaluation.
type Tracker struct {
	registry *zones.Registry
	detector *Detector
	sink     EventSink

	mu      sync.Mutex
	workers map[uuid.UUID]*worker
	stopped bool

	events     chan Event
	workerWG   sync.WaitGroup
	dispatchWG sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

func NewTracker(registry *zones.Registry, policy Policy, sink EventSink) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Tracker{
		registry: registry,
		detector: NewDetector(policy),
		sink:     sink,
		workers:  make(map[uuid.UUID]*worker),
		events:   make(chan Event, eventBuffer),
		ctx:      ctx,
		cancel:   cancel,
	}
	t.dispatchWG.Add(1)
	go t.dispatchEvents()
	return t
}

// Submit hands a sample to the employee's stream. It never blocks: when the
// stream buffer is full the sample is dropped and logged, since the next fix
// supersedes it anyway.
func (t *Tracker) Submit(employeeID, orgID uuid.UUID, s Sample) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return errors.New("tracker stopped")
	}
	w, ok := t.workers[employeeID]
	if !ok {
		w = &worker{orgID: orgID, samples: make(chan Sample, sampleBuffer)}
		t.workers[employeeID] = w
		t.workerWG.Add(1)
		go t.runSubject(employeeID, w)
	}

	// Non-blocking send under the lock, so StopSubject cannot close the
	// channel out from under us.
	select {
	case w.samples <- s:
	default:
		log.Printf("[tracking] stream buffer full for employee %s, dropping sample", employeeID)
	}
	return nil
}

// StopSubject halts sample ingestion for one employee immediately (logout).
// In-flight downstream work is unaffected.
func (t *Tracker) StopSubject(employeeID uuid.UUID) {
	t.mu.Lock()
	w, ok := t.workers[employeeID]
	if ok {
		delete(t.workers, employeeID)
		close(w.samples)
	}
	t.mu.Unlock()

	t.detector.Forget(employeeID)
}

// Stop shuts down all subject streams, then the event dispatcher, draining
// already-emitted events into the sink first.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	for _, w := range t.workers {
		close(w.samples)
	}
	t.workers = make(map[uuid.UUID]*worker)
	t.mu.Unlock()

	// Workers first: they are the only senders on t.events.
	t.workerWG.Wait()
	close(t.events)
	t.dispatchWG.Wait()
	t.cancel()
}

func (t *Tracker) runSubject(employeeID uuid.UUID, w *worker) {
	defer t.workerWG.Done()
	for s := range w.samples {
		t.processSample(employeeID, w.orgID, s)
	}
}

// processSample evaluates one sample with a panic guard at the subject-stream
// boundary: an unexpected panic is logged and treated as if the sample never
// arrived.
func (t *Tracker) processSample(employeeID, orgID uuid.UUID, s Sample) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[tracking] panic processing sample for employee %s: %v", employeeID, rec)
		}
	}()

	zs := t.registry.List(orgID)
	events, err := t.detector.Observe(employeeID, s, zs)
	if err != nil {
		if errors.Is(err, ErrStaleSample) {
			log.Printf("[tracking] dropped out-of-order sample for employee %s", employeeID)
		} else {
			log.Printf("[tracking] rejected sample for employee %s: %v", employeeID, err)
		}
		return
	}

	for _, e := range events {
		t.events <- e
	}
}

func (t *Tracker) dispatchEvents() {
	defer t.dispatchWG.Done()
	for e := range t.events {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					log.Printf("[tracking] panic handling %s event for employee %s: %v", e.Kind, e.EmployeeID, rec)
				}
			}()
			t.sink.HandleEvent(t.ctx, e)
		}()
	}
}

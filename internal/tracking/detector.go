package tracking

import (
	"errors"
	"sync"
	"time"

	"github.com/FieldPulse/FP-Attendance/internal/geo"
	"github.com/FieldPulse/FP-Attendance/internal/zones"
	"github.com/google/uuid"
)

// ErrStaleSample marks a sample whose capture time does not advance past the
// last processed sample for that employee. Stale samples are dropped so the
// per-subject state machine only ever reasons forward in time.
var ErrStaleSample = errors.New("sample older than last processed sample")

type phase int

const (
	phaseOutside phase = iota
	phasePendingEnter
	phaseInside
	phasePendingExit
)

type subjectState struct {
	phase      phase
	zone       zones.Zone // candidate or current zone; valid outside phaseOutside
	since      time.Time  // when the pending transition was first observed
	enteredAt  time.Time
	dwellFired bool
	lastAt     time.Time
}

// Detector turns per-employee position samples into confirmed enter/exit/dwell
// events. Each call is a bounded synchronous computation: distance math plus
// state comparison, no I/O.
//
// Invariant: at most one confirmed current zone per employee. When several
// zones contain a sample, the smallest radius wins (most specific zone), with
// the lexicographically smallest ID as the final tie-break.
type Detector struct {
	policy Policy

	mu       sync.Mutex
	subjects map[uuid.UUID]*subjectState
}

func NewDetector(policy Policy) *Detector {
	return &Detector{
		policy:   policy,
		subjects: make(map[uuid.UUID]*subjectState),
	}
}

// Observe advances the employee's state machine with one sample and returns
// any confirmed events. zs is the current zone snapshot for the employee's
// organization.
func (d *Detector) Observe(employeeID uuid.UUID, s Sample, zs []zones.Zone) ([]Event, error) {
	if !s.Point().Valid() {
		return nil, geo.ErrInvalidCoordinate
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	st, ok := d.subjects[employeeID]
	if !ok {
		st = &subjectState{phase: phaseOutside}
		d.subjects[employeeID] = st
	}

	if !st.lastAt.IsZero() && !s.CapturedAt.After(st.lastAt) {
		return nil, ErrStaleSample
	}
	st.lastAt = s.CapturedAt

	now := s.CapturedAt
	low := d.policy.AccuracyCeilingM > 0 && s.AccuracyM > d.policy.AccuracyCeilingM
	best, found := bestContaining(s.Point(), now, zs)

	event := func(kind EventKind, zoneID uuid.UUID) Event {
		return Event{
			Kind:          kind,
			EmployeeID:    employeeID,
			ZoneID:        zoneID,
			At:            now,
			Location:      s.Point(),
			LowConfidence: low,
		}
	}

	var events []Event

	switch st.phase {
	case phaseOutside:
		if found {
			st.phase = phasePendingEnter
			st.zone = best
			st.since = now
		}

	case phasePendingEnter:
		switch {
		case found && best.ID == st.zone.ID:
			if now.Sub(st.since) >= d.loiteringDelay(st.zone) {
				events = append(events, event(EventEnter, st.zone.ID))
				st.phase = phaseInside
				st.enteredAt = now
				st.dwellFired = false
			}
		case found:
			// A different zone contains the point now; the entry clock
			// restarts for the new candidate.
			st.zone = best
			st.since = now
		default:
			// Debounce: a stray sample does not confirm entry.
			st.phase = phaseOutside
		}

	case phaseInside:
		if d.stillInside(st, s.Point(), zs) {
			if !st.dwellFired && now.Sub(st.enteredAt) >= d.policy.DwellThreshold() {
				events = append(events, event(EventDwell, st.zone.ID))
				st.dwellFired = true
			}
		} else {
			st.phase = phasePendingExit
			st.since = now
		}

	case phasePendingExit:
		if d.stillInside(st, s.Point(), zs) {
			// Flicker suppression: back inside before the delay elapsed.
			st.phase = phaseInside
		} else if now.Sub(st.since) >= d.loiteringDelay(st.zone) {
			events = append(events, event(EventExit, st.zone.ID))
			if found {
				st.phase = phasePendingEnter
				st.zone = best
				st.since = now
			} else {
				st.phase = phaseOutside
			}
		}
	}

	return events, nil
}

// Forget drops the transient state for an employee, e.g. when tracking stops.
// State is reconstructable from the zone registry plus the next sample.
func (d *Detector) Forget(employeeID uuid.UUID) {
	d.mu.Lock()
	delete(d.subjects, employeeID)
	d.mu.Unlock()
}

func (d *Detector) loiteringDelay(z zones.Zone) time.Duration {
	if z.LoiteringDelayS > 0 {
		return time.Duration(z.LoiteringDelayS) * time.Second
	}
	return d.policy.LoiteringDelay()
}

// stillInside checks containment against the employee's current zone. The
// zone is re-resolved from the snapshot so mid-day admin edits take effect;
// if it was deleted mid-stay the cached copy keeps the stay coherent.
func (d *Detector) stillInside(st *subjectState, p geo.Point, zs []zones.Zone) bool {
	zone := st.zone
	for _, z := range zs {
		if z.ID == zone.ID {
			zone = z
			st.zone = z
			break
		}
	}
	inside, err := zone.Contains(p)
	if err != nil {
		return false
	}
	return inside
}

// bestContaining returns the zone that should claim the point: active zones
// scheduled for the sample's weekday, smallest radius first, then smallest ID.
func bestContaining(p geo.Point, at time.Time, zs []zones.Zone) (zones.Zone, bool) {
	var best zones.Zone
	found := false
	for _, z := range zs {
		if !z.Active || !z.ActiveOn(at.Weekday()) {
			continue
		}
		inside, err := z.Contains(p)
		if err != nil || !inside {
			continue
		}
		if !found ||
			z.RadiusMeters < best.RadiusMeters ||
			(z.RadiusMeters == best.RadiusMeters && z.ID.String() < best.ID.String()) {
			best = z
			found = true
		}
	}
	return best, found
}

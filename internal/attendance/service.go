package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/FieldPulse/FP-Attendance/internal/geo"
	"github.com/FieldPulse/FP-Attendance/internal/syncqueue"
	"github.com/FieldPulse/FP-Attendance/internal/tracking"
	"github.com/FieldPulse/FP-Attendance/internal/zones"
	"github.com/google/uuid"
)

var (
	// ErrInvalidOrdering rejects a check-out timestamp earlier than the
	// recorded check-in. The stored record is left unchanged.
	ErrInvalidOrdering = errors.New("check-out precedes check-in")

	ErrNotCheckedIn = errors.New("no active check-in for today")
)

// remoteCollection is where attendance mutations are mirrored in the remote
// document store.
const remoteCollection = "attendance"

// Service advances attendance records through
// not_checked_in → checked_in → checked_out, fed by confirmed zone transitions
// and manual employee actions. Absent and half-day are assigned only by admin
// override or the end-of-day evaluator.
type Service struct {
	store    RecordStore
	registry *zones.Registry
	queue    *syncqueue.Queue // nil disables remote mirroring (tests)
}

func NewService(store RecordStore, registry *zones.Registry, queue *syncqueue.Queue) *Service {
	return &Service{store: store, registry: registry, queue: queue}
}

// HandleEvent consumes confirmed transition events from the tracker.
// Implements tracking.EventSink.
func (s *Service) HandleEvent(ctx context.Context, e tracking.Event) {
	switch e.Kind {
	case tracking.EventEnter:
		s.handleEnter(ctx, e)
	case tracking.EventExit:
		s.handleExit(ctx, e)
	case tracking.EventDwell:
		// Presence confirmation only; nothing to mutate.
		log.Printf("[attendance] employee %s dwelling in zone %s", e.EmployeeID, e.ZoneID)
	}
}

func (s *Service) handleEnter(ctx context.Context, e tracking.Event) {
	zone, err := s.registry.Get(e.ZoneID)
	if err != nil {
		log.Printf("[attendance] enter for unknown zone %s: %v", e.ZoneID, err)
		return
	}
	if !zone.AutoCheckIn || !zone.InWorkWindow(e.At) {
		return
	}

	if _, err := s.store.FindByEmployeeDate(e.EmployeeID, DateKey(e.At)); err == nil {
		// One record per (employee, day); a repeat enter is not an error.
		return
	} else if !errors.Is(err, ErrRecordNotFound) {
		log.Printf("[attendance] record lookup failed for employee %s: %v", e.EmployeeID, err)
		return
	}

	at := e.At
	loc := e.Location
	zoneID := zone.ID
	rec := Record{
		ID:             uuid.New(),
		EmployeeID:     e.EmployeeID,
		OrganizationID: zone.OrganizationID,
		Date:           DateKey(at),
		CheckInAt:      &at,
		Status:         StatusCheckedIn,
		CheckInMethod:  MethodAutomatic,
		CheckInLat:     &loc.Lat,
		CheckInLng:     &loc.Lng,
		ZoneID:         &zoneID,
		InsideZone:     true,
		ZoneVerified:   !e.LowConfidence,
	}
	if err := s.persist(ctx, &rec); err != nil {
		log.Printf("[attendance] auto check-in failed for employee %s: %v", e.EmployeeID, err)
		return
	}
	log.Printf("[attendance] auto check-in: employee %s, zone %s", e.EmployeeID, zone.Name)
}

func (s *Service) handleExit(ctx context.Context, e tracking.Event) {
	rec, err := s.store.FindByEmployeeDate(e.EmployeeID, DateKey(e.At))
	if err != nil {
		return
	}
	if rec.Status != StatusCheckedIn && rec.Status != StatusOnBreak {
		return
	}
	// Auto check-out applies only to the zone recorded at check-in.
	if rec.ZoneID == nil || *rec.ZoneID != e.ZoneID {
		return
	}
	zone, err := s.registry.Get(e.ZoneID)
	if err != nil || !zone.AutoCheckOut {
		return
	}

	if _, err := s.applyCheckOut(ctx, &rec, e.At, MethodAutomatic, &e.Location); err != nil {
		log.Printf("[attendance] auto check-out failed for employee %s: %v", e.EmployeeID, err)
		return
	}
	log.Printf("[attendance] auto check-out: employee %s, zone %s", e.EmployeeID, zone.Name)
}

// CheckIn records a manual or QR check-in. Allowed anywhere; when the location
// is outside every zone the record is marked insideZone=false. Calling it with
// an existing record for today returns that record unchanged.
func (s *Service) CheckIn(ctx context.Context, employeeID, orgID uuid.UUID, method string, at time.Time, loc *geo.Point) (Record, error) {
	if existing, err := s.store.FindByEmployeeDate(employeeID, DateKey(at)); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrRecordNotFound) {
		return Record{}, err
	}

	rec := Record{
		ID:             uuid.New(),
		EmployeeID:     employeeID,
		OrganizationID: orgID,
		Date:           DateKey(at),
		CheckInAt:      &at,
		Status:         StatusCheckedIn,
		CheckInMethod:  method,
	}

	if loc != nil {
		rec.CheckInLat = &loc.Lat
		rec.CheckInLng = &loc.Lng
		if zone, ok := s.containingZone(orgID, *loc, at); ok {
			zoneID := zone.ID
			rec.ZoneID = &zoneID
			rec.InsideZone = true
			rec.ZoneVerified = true
		}
	}

	if err := s.persist(ctx, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// CheckOut closes today's session. Idempotent: checking out an already
// checked-out record returns it unchanged with the original check-out time,
// since double-submission from a flaky UI must not corrupt state.
func (s *Service) CheckOut(ctx context.Context, employeeID uuid.UUID, method string, at time.Time, loc *geo.Point) (Record, error) {
	rec, err := s.store.FindByEmployeeDate(employeeID, DateKey(at))
	if errors.Is(err, ErrRecordNotFound) {
		return Record{}, ErrNotCheckedIn
	}
	if err != nil {
		return Record{}, err
	}

	if rec.Status == StatusCheckedOut {
		return rec, nil
	}
	if rec.Status != StatusCheckedIn && rec.Status != StatusOnBreak {
		return Record{}, ErrNotCheckedIn
	}

	return s.applyCheckOut(ctx, &rec, at, method, loc)
}

func (s *Service) applyCheckOut(ctx context.Context, rec *Record, at time.Time, method string, loc *geo.Point) (Record, error) {
	if rec.CheckInAt != nil && at.Before(*rec.CheckInAt) {
		return Record{}, ErrInvalidOrdering
	}

	rec.CheckOutAt = &at
	rec.Status = StatusCheckedOut
	rec.CheckOutMethod = method
	if loc != nil {
		rec.CheckOutLat = &loc.Lat
		rec.CheckOutLng = &loc.Lng
	}
	if err := s.persist(ctx, rec); err != nil {
		return Record{}, err
	}
	return *rec, nil
}

// ToggleBreak flips today's record between checked_in and on_break.
func (s *Service) ToggleBreak(ctx context.Context, employeeID uuid.UUID, at time.Time) (Record, error) {
	rec, err := s.store.FindByEmployeeDate(employeeID, DateKey(at))
	if errors.Is(err, ErrRecordNotFound) {
		return Record{}, ErrNotCheckedIn
	}
	if err != nil {
		return Record{}, err
	}

	switch rec.Status {
	case StatusCheckedIn:
		rec.Status = StatusOnBreak
	case StatusOnBreak:
		rec.Status = StatusCheckedIn
	default:
		return Record{}, ErrNotCheckedIn
	}

	if err := s.persist(ctx, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// OverrideInput is the admin force-set payload. Nil time fields leave the
// stored values untouched.
type OverrideInput struct {
	Status     string
	CheckInAt  *time.Time
	CheckOutAt *time.Time
	AdminID    string
	Reason     string
}

// Override force-sets a record's state, bypassing the normal preconditions.
// The check-in/check-out ordering invariant still holds: admins fix data,
// they do not get to store impossible data.
func (s *Service) Override(ctx context.Context, employeeID, orgID uuid.UUID, date string, input OverrideInput) (Record, error) {
	rec, err := s.store.FindByEmployeeDate(employeeID, date)
	if errors.Is(err, ErrRecordNotFound) {
		rec = Record{
			ID:             uuid.New(),
			EmployeeID:     employeeID,
			OrganizationID: orgID,
			Date:           date,
			Status:         StatusNotCheckedIn,
		}
	} else if err != nil {
		return Record{}, err
	}

	checkIn := rec.CheckInAt
	checkOut := rec.CheckOutAt
	if input.CheckInAt != nil {
		checkIn = input.CheckInAt
	}
	if input.CheckOutAt != nil {
		checkOut = input.CheckOutAt
	}
	if checkIn != nil && checkOut != nil && checkOut.Before(*checkIn) {
		return Record{}, ErrInvalidOrdering
	}

	rec.CheckInAt = checkIn
	rec.CheckOutAt = checkOut
	if input.Status != "" {
		rec.Status = input.Status
	}
	rec.ManuallyOverridden = true
	rec.OverriddenBy = input.AdminID
	rec.OverrideReason = input.Reason

	if err := s.persist(ctx, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Today returns the employee's record for the given day, or a zero-state
// placeholder when none exists yet.
func (s *Service) Today(employeeID uuid.UUID, at time.Time) (Record, error) {
	rec, err := s.store.FindByEmployeeDate(employeeID, DateKey(at))
	if errors.Is(err, ErrRecordNotFound) {
		return Record{
			EmployeeID: employeeID,
			Date:       DateKey(at),
			Status:     StatusNotCheckedIn,
		}, nil
	}
	return rec, err
}

func (s *Service) History(employeeID uuid.UUID, from, to string) ([]Record, error) {
	return s.store.ListByEmployee(employeeID, from, to)
}

func (s *Service) Report(orgID uuid.UUID, from, to string) ([]Record, error) {
	return s.store.ListByOrgRange(orgID, from, to)
}

func (s *Service) containingZone(orgID uuid.UUID, p geo.Point, at time.Time) (zones.Zone, bool) {
	var best zones.Zone
	found := false
	for _, z := range s.registry.List(orgID) {
		if !z.Active || !z.ActiveOn(at.Weekday()) {
			continue
		}
		inside, err := z.Contains(p)
		if err != nil || !inside {
			continue
		}
		if !found || z.RadiusMeters < best.RadiusMeters ||
			(z.RadiusMeters == best.RadiusMeters && z.ID.String() < best.ID.String()) {
			best = z
			found = true
		}
	}
	return best, found
}

// persist saves locally, then mirrors the record to the remote store via the
// offline queue. A failed or queued remote write never fails the local
// mutation.
func (s *Service) persist(ctx context.Context, rec *Record) error {
	if err := s.store.Save(rec); err != nil {
		return err
	}
	if s.queue != nil {
		payload, err := json.Marshal(rec)
		if err != nil {
			log.Printf("[attendance] marshal for remote mirror failed: %v", err)
			return nil
		}
		if err := s.queue.Write(ctx, remoteCollection, rec.ID.String(), payload); err != nil {
			log.Printf("[attendance] remote mirror failed for record %s: %v", rec.ID, err)
		}
	}
	return nil
}

package attendance

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

// Employee is the slice of the account model the evaluator needs.
type Employee struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
}

// Directory lists employees to evaluate; the auth package provides the
// production implementation.
type Directory interface {
	ActiveEmployees() ([]Employee, error)
}

// EndOfDayEvaluator marks employees with no check-in by the cutoff as absent,
// on a schedule, off the sample-processing path.
type EndOfDayEvaluator struct {
	service   *Service
	directory Directory

	// Cutoff is the local wall-clock ("15:04") after which missing records
	// become absences.
	Cutoff   string
	Interval time.Duration
}

func NewEndOfDayEvaluator(service *Service, directory Directory) *EndOfDayEvaluator {
	return &EndOfDayEvaluator{
		service:   service,
		directory: directory,
		Cutoff:    "18:00",
		Interval:  30 * time.Minute,
	}
}

func (e *EndOfDayEvaluator) Run(ctx context.Context) {
	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[attendance] end-of-day evaluator stopped")
			return
		case <-ticker.C:
			e.Evaluate(ctx, time.Now())
		}
	}
}

// Evaluate marks employees with no record for now's calendar day as absent,
// once the cutoff has passed. Safe to call repeatedly: existing records,
// including earlier absences, are left alone.
func (e *EndOfDayEvaluator) Evaluate(ctx context.Context, now time.Time) {
	cutoff, err := time.Parse("15:04", e.Cutoff)
	if err != nil {
		log.Printf("[attendance] invalid evaluator cutoff %q: %v", e.Cutoff, err)
		return
	}
	dayEnd := time.Date(now.Year(), now.Month(), now.Day(), cutoff.Hour(), cutoff.Minute(), 0, 0, now.Location())
	if now.Before(dayEnd) {
		return
	}

	employees, err := e.directory.ActiveEmployees()
	if err != nil {
		log.Printf("[attendance] evaluator could not list employees: %v", err)
		return
	}

	date := DateKey(now)
	marked := 0
	for _, emp := range employees {
		_, err := e.service.store.FindByEmployeeDate(emp.ID, date)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrRecordNotFound) {
			log.Printf("[attendance] evaluator lookup failed for employee %s: %v", emp.ID, err)
			continue
		}

		rec := Record{
			ID:             uuid.New(),
			EmployeeID:     emp.ID,
			OrganizationID: emp.OrganizationID,
			Date:           date,
			Status:         StatusAbsent,
		}
		if err := e.service.persist(ctx, &rec); err != nil {
			log.Printf("[attendance] evaluator could not mark employee %s absent: %v", emp.ID, err)
			continue
		}
		marked++
	}

	if marked > 0 {
		log.Printf("[attendance] end-of-day evaluator marked %d employees absent for %s", marked, date)
	}
}

package tracking

import (
	"time"

	"github.com/FieldPulse/FP-Attendance/internal/geo"
	"github.com/google/uuid"
)

// Sample is one position fix from a device. Immutable once ingested.
type Sample struct {
	Lat        float64   `json:"lat" validate:"min=-90,max=90"`
	Lng        float64   `json:"lng" validate:"min=-180,max=180"`
	AccuracyM  float64   `json:"accuracy_m" validate:"min=0"`
	AltitudeM  *float64  `json:"altitude_m,omitempty"`
	SpeedMps   *float64  `json:"speed_mps,omitempty"`
	HeadingDeg *float64  `json:"heading_deg,omitempty" validate:"omitempty,min=0,max=360"`
	CapturedAt time.Time `json:"captured_at" validate:"required"`
	Simulated  bool      `json:"simulated"`
}

func (s Sample) Point() geo.Point {
	return geo.Point{Lat: s.Lat, Lng: s.Lng}
}

type EventKind string

const (
	EventEnter EventKind = "enter"
	EventExit  EventKind = "exit"
	EventDwell EventKind = "dwell"
)

// Event is a confirmed zone transition for one employee. Emitted only after
// the loitering delay has debounced boundary flicker.
type Event struct {
	Kind       EventKind `json:"kind"`
	EmployeeID uuid.UUID `json:"employee_id"`
	ZoneID     uuid.UUID `json:"zone_id"`
	At         time.Time `json:"at"`
	Location   geo.Point `json:"location"`

	// Set when the triggering sample exceeded the accuracy ceiling; the
	// attendance layer records the transition as unverified instead of
	// dropping it.
	LowConfidence bool `json:"low_confidence"`
}

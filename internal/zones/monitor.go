package zones

import (
	"errors"

	"github.com/FieldPulse/FP-Attendance/internal/geo"
	"github.com/google/uuid"
)

// ErrPermissionUnavailable signals that the native geofencing layer lacks OS
// permission. The registry treats it as a degraded-mode marker, never fatal.
var ErrPermissionUnavailable = errors.New("native zone monitor permission unavailable")

// Monitor is the native geofencing collaborator. It is an optimization only:
// containment is always recomputed from raw samples, so every call here is
// allowed to fail without affecting attendance evaluation.
type Monitor interface {
	AddZone(id uuid.UUID, center geo.Point, radiusMeters float64) error
	RemoveZone(id uuid.UUID) error
	RemoveAll() error
	ListActive() ([]uuid.UUID, error)
}

// NoopMonitor is used when no native geofencing bridge is wired (server-side
// deployments, tests).
type NoopMonitor struct{}

func (NoopMonitor) AddZone(uuid.UUID, geo.Point, float64) error { return nil }
func (NoopMonitor) RemoveZone(uuid.UUID) error                  { return nil }
func (NoopMonitor) RemoveAll() error                            { return nil }
func (NoopMonitor) ListActive() ([]uuid.UUID, error)            { return nil, nil }

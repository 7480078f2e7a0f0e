package zones

import (
	"time"

	"github.com/FieldPulse/FP-Attendance/internal/geo"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	KindOffice     = "office"
	KindBranch     = "branch"
	KindWarehouse  = "warehouse"
	KindClientSite = "client_site"
	KindCustom     = "custom"
)

// Zone is an employer-defined circular geofence. Containment against it drives
// automatic attendance.
type Zone struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;index" json:"organization_id"`
	Name           string    `json:"name"`
	Kind           string    `gorm:"default:'office'" json:"kind"`
	CenterLat      float64   `json:"center_lat"`
	CenterLng      float64   `json:"center_lng"`
	RadiusMeters   float64   `json:"radius_m"`
	Active         bool      `gorm:"default:true" json:"active"`
	AutoCheckIn    bool      `json:"auto_check_in"`
	AutoCheckOut   bool      `json:"auto_check_out"`

	// Work window as "15:04" strings in the org's local time; both empty means
	// the zone is not window-constrained.
	WorkWindowStart string `json:"work_window_start"`
	WorkWindowEnd   string `json:"work_window_end"`

	// ISO weekdays (1=Monday .. 7=Sunday). Empty means every day.
	ActiveWeekdays pq.Int64Array `gorm:"type:bigint[]" json:"active_weekdays"`

	// Per-zone loitering delay override in seconds; 0 falls back to the
	// tracking policy default.
	LoiteringDelayS int `json:"loitering_delay_s"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Zone) TableName() string {
	return "geofences.zones"
}

func (z *Zone) Center() geo.Point {
	return geo.Point{Lat: z.CenterLat, Lng: z.CenterLng}
}

// Contains reports whether p lies inside the zone, boundary inclusive.
func (z *Zone) Contains(p geo.Point) (bool, error) {
	return geo.Inside(p, z.Center(), z.RadiusMeters)
}

// ActiveOn reports whether the zone applies on the given weekday.
func (z *Zone) ActiveOn(day time.Weekday) bool {
	if len(z.ActiveWeekdays) == 0 {
		return true
	}
	iso := int64(day)
	if iso == 0 { // time.Sunday
		iso = 7
	}
	for _, d := range z.ActiveWeekdays {
		if d == iso {
			return true
		}
	}
	return false
}

// InWorkWindow reports whether t falls inside the zone's work window.
// Zones without a window are always in-window.
func (z *Zone) InWorkWindow(t time.Time) bool {
	if z.WorkWindowStart == "" || z.WorkWindowEnd == "" {
		return true
	}
	start, err := parseTimeOnDate(t, z.WorkWindowStart)
	if err != nil {
		return true
	}
	end, err := parseTimeOnDate(t, z.WorkWindowEnd)
	if err != nil {
		return true
	}
	// Night shifts: window crossing midnight ends the next day.
	if end.Before(start) {
		end = end.Add(24 * time.Hour)
		if t.Before(start) {
			t = t.Add(24 * time.Hour)
		}
	}
	return !t.Before(start) && !t.After(end)
}

// parseTimeOnDate combines the date of base with a clock string like "08:00".
func parseTimeOnDate(base time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		t, err = time.Parse("15:04:05", clock)
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(base.Year(), base.Month(), base.Day(), t.Hour(), t.Minute(), t.Second(), 0, base.Location()), nil
}

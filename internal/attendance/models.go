package attendance

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusNotCheckedIn = "not_checked_in"
	StatusCheckedIn    = "checked_in"
	StatusCheckedOut   = "checked_out"
	StatusAbsent       = "absent"
	StatusHalfDay      = "half_day"
	StatusOnBreak      = "on_break"
)

const (
	MethodAutomatic = "automatic"
	MethodManual    = "manual"
	MethodQRCode    = "qr_code"
)

// Record is one employee's attendance for one calendar day (device-local).
// ZoneID is a historical fact: it records what was true at check-in time and
// deliberately has no foreign key, so deleting a zone mid-day cannot
// invalidate the day's record.
type Record struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID     uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_attendance_employee_date" json:"employee_id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;index" json:"organization_id"`
	Date           string    `gorm:"uniqueIndex:idx_attendance_employee_date;size:10" json:"date"` // "2006-01-02"

	CheckInAt  *time.Time `json:"check_in_at"`
	CheckOutAt *time.Time `json:"check_out_at"`
	Status     string     `gorm:"default:'not_checked_in'" json:"status"`

	CheckInMethod  string   `json:"check_in_method"`
	CheckOutMethod string   `json:"check_out_method"`
	CheckInLat     *float64 `json:"check_in_lat"`
	CheckInLng     *float64 `json:"check_in_lng"`
	CheckOutLat    *float64 `json:"check_out_lat"`
	CheckOutLng    *float64 `json:"check_out_lng"`

	ZoneID       *uuid.UUID `gorm:"type:uuid" json:"zone_id"`
	InsideZone   bool       `json:"inside_zone"`
	ZoneVerified bool       `json:"zone_verified"`

	ManuallyOverridden bool   `json:"manually_overridden"`
	OverriddenBy       string `json:"overridden_by"`
	OverrideReason     string `json:"override_reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Record) TableName() string {
	return "attendance.records"
}

// WorkDuration is defined only once both timestamps exist. An in-progress
// session has no duration; deriving one from wall-clock now would present a
// moving value as if it were final.
func (r *Record) WorkDuration() (time.Duration, bool) {
	if r.CheckInAt == nil || r.CheckOutAt == nil {
		return 0, false
	}
	return r.CheckOutAt.Sub(*r.CheckInAt), true
}

// DateKey formats t as the calendar-day key records are bucketed under.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

package zones_test

import (
	"testing"
	"time"

	"github.com/FieldPulse/FP-Attendance/internal/zones"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestActiveOn(t *testing.T) {
	weekdaysOnly := zones.Zone{ActiveWeekdays: pq.Int64Array{1, 2, 3, 4, 5}}
	always := zones.Zone{}

	monday := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC).Weekday()
	sunday := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Weekday()

	assert.True(t, weekdaysOnly.ActiveOn(monday))
	assert.False(t, weekdaysOnly.ActiveOn(sunday), "Sunday maps to ISO day 7")
	assert.True(t, always.ActiveOn(sunday), "empty schedule means every day")

	sundayZone := zones.Zone{ActiveWeekdays: pq.Int64Array{7}}
	assert.True(t, sundayZone.ActiveOn(sunday))
}

func TestInWorkWindow(t *testing.T) {
	day := zones.Zone{WorkWindowStart: "08:00", WorkWindowEnd: "17:00"}
	night := zones.Zone{WorkWindowStart: "22:00", WorkWindowEnd: "06:00"}
	open := zones.Zone{}

	at := func(hour int) time.Time {
		return time.Date(2026, 3, 2, hour, 0, 0, 0, time.UTC)
	}

	assert.True(t, day.InWorkWindow(at(9)))
	assert.True(t, day.InWorkWindow(at(17)), "window end is inclusive")
	assert.False(t, day.InWorkWindow(at(18)))
	assert.False(t, day.InWorkWindow(at(7)))

	// Night shift crosses midnight.
	assert.True(t, night.InWorkWindow(at(23)))
	assert.True(t, night.InWorkWindow(at(2)))
	assert.False(t, night.InWorkWindow(at(12)))

	assert.True(t, open.InWorkWindow(at(3)), "no window means always in-window")
}

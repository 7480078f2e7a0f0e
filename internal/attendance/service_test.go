package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/FieldPulse/FP-Attendance/internal/geo"
	"github.com/FieldPulse/FP-Attendance/internal/tracking"
	"github.com/FieldPulse/FP-Attendance/internal/zones"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	officeCenter = geo.Point{Lat: 40.712800, Lng: -74.006000}
	workMorning  = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

type serviceFixture struct {
	service *Service
	store   *MemoryRecordStore
	zone    zones.Zone
	orgID   uuid.UUID
}

func newFixture(t *testing.T, mutate func(*zones.Zone)) *serviceFixture {
	t.Helper()

	orgID := uuid.New()
	zone := zones.Zone{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           "HQ",
		Kind:           zones.KindOffice,
		CenterLat:      officeCenter.Lat,
		CenterLng:      officeCenter.Lng,
		RadiusMeters:   100,
		Active:         true,
		AutoCheckIn:    true,
		AutoCheckOut:   true,
	}
	if mutate != nil {
		mutate(&zone)
	}

	zoneStore := zones.NewMemoryStore()
	require.NoError(t, zoneStore.Save(zone))
	registry := zones.NewRegistry(zoneStore, zones.NoopMonitor{})

	store := NewMemoryRecordStore()
	return &serviceFixture{
		service: NewService(store, registry, nil),
		store:   store,
		zone:    zone,
		orgID:   orgID,
	}
}

func enterEvent(f *serviceFixture, employeeID uuid.UUID, at time.Time) tracking.Event {
	return tracking.Event{
		Kind:       tracking.EventEnter,
		EmployeeID: employeeID,
		ZoneID:     f.zone.ID,
		At:         at,
		Location:   officeCenter,
	}
}

func exitEvent(f *serviceFixture, employeeID uuid.UUID, at time.Time) tracking.Event {
	e := enterEvent(f, employeeID, at)
	e.Kind = tracking.EventExit
	return e
}

func TestAutoCheckInOnEnter(t *testing.T) {
	f := newFixture(t, nil)
	employee := uuid.New()

	f.service.HandleEvent(context.Background(), enterEvent(f, employee, workMorning))

	rec, err := f.store.FindByEmployeeDate(employee, DateKey(workMorning))
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, rec.Status)
	assert.Equal(t, MethodAutomatic, rec.CheckInMethod)
	require.NotNil(t, rec.CheckInAt)
	assert.True(t, rec.CheckInAt.Equal(workMorning))
	require.NotNil(t, rec.ZoneID)
	assert.Equal(t, f.zone.ID, *rec.ZoneID)
	assert.True(t, rec.ZoneVerified)
}

func TestRepeatEnterKeepsSingleRecord(t *testing.T) {
	f := newFixture(t, nil)
	employee := uuid.New()
	ctx := context.Background()

	f.service.HandleEvent(ctx, enterEvent(f, employee, workMorning))
	f.service.HandleEvent(ctx, exitEvent(f, employee, workMorning.Add(time.Hour)))
	f.service.HandleEvent(ctx, enterEvent(f, employee, workMorning.Add(2*time.Hour)))

	assert.Equal(t, 1, f.store.Count())
	rec, err := f.store.FindByEmployeeDate(employee, DateKey(workMorning))
	require.NoError(t, err)
	// The lunch-break exit checked the employee out; a repeat enter on the
	// same day never opens a second record.
	assert.Equal(t, StatusCheckedOut, rec.Status)
}

func TestAutoCheckOutOnExit(t *testing.T) {
	f := newFixture(t, nil)
	employee := uuid.New()
	ctx := context.Background()
	leave := workMorning.Add(8 * time.Hour)

	f.service.HandleEvent(ctx, enterEvent(f, employee, workMorning))
	f.service.HandleEvent(ctx, exitEvent(f, employee, leave))

	rec, err := f.store.FindByEmployeeDate(employee, DateKey(workMorning))
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedOut, rec.Status)
	require.NotNil(t, rec.CheckOutAt)
	assert.True(t, rec.CheckOutAt.Equal(leave))

	d, ok := rec.WorkDuration()
	require.True(t, ok)
	assert.Equal(t, 8*time.Hour, d)
}

func TestExitFromOtherZoneIgnored(t *testing.T) {
	f := newFixture(t, nil)
	employee := uuid.New()
	ctx := context.Background()

	f.service.HandleEvent(ctx, enterEvent(f, employee, workMorning))

	other := exitEvent(f, employee, workMorning.Add(time.Hour))
	other.ZoneID = uuid.New()
	f.service.HandleEvent(ctx, other)

	rec, err := f.store.FindByEmployeeDate(employee, DateKey(workMorning))
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, rec.Status)
	assert.Nil(t, rec.CheckOutAt)
}

func TestAutoCheckInRespectsZoneFlag(t *testing.T) {
	f := newFixture(t, func(z *zones.Zone) { z.AutoCheckIn = false })
	employee := uuid.New()

	f.service.HandleEvent(context.Background(), enterEvent(f, employee, workMorning))

	_, err := f.store.FindByEmployeeDate(employee, DateKey(workMorning))
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestAutoCheckInRespectsWorkWindow(t *testing.T) {
	f := newFixture(t, func(z *zones.Zone) {
		z.WorkWindowStart = "08:00"
		z.WorkWindowEnd = "17:00"
	})
	employee := uuid.New()

	// 22:00 arrival is outside the window.
	night := time.Date(2026, 3, 2, 22, 0, 0, 0, time.UTC)
	f.service.HandleEvent(context.Background(), enterEvent(f, employee, night))

	_, err := f.store.FindByEmployeeDate(employee, DateKey(night))
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestLowConfidenceEnterIsUnverified(t *testing.T) {
	f := newFixture(t, nil)
	employee := uuid.New()

	e := enterEvent(f, employee, workMorning)
	e.LowConfidence = true
	f.service.HandleEvent(context.Background(), e)

	rec, err := f.store.FindByEmployeeDate(employee, DateKey(workMorning))
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, rec.Status)
	assert.False(t, rec.ZoneVerified)
}

func TestManualCheckInOutsideAnyZone(t *testing.T) {
	f := newFixture(t, nil)
	employee := uuid.New()
	remote := geo.Point{Lat: 41.0, Lng: -74.0}

	rec, err := f.service.CheckIn(context.Background(), employee, f.orgID, MethodManual, workMorning, &remote)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, rec.Status)
	assert.False(t, rec.InsideZone)
	assert.Nil(t, rec.ZoneID)
}

func TestManualCheckInInsideZone(t *testing.T) {
	f := newFixture(t, nil)
	employee := uuid.New()

	rec, err := f.service.CheckIn(context.Background(), employee, f.orgID, MethodQRCode, workMorning, &officeCenter)
	require.NoError(t, err)
	assert.True(t, rec.InsideZone)
	require.NotNil(t, rec.ZoneID)
	assert.Equal(t, f.zone.ID, *rec.ZoneID)
}

func TestManualCheckInTwiceReturnsExisting(t *testing.T) {
	f := newFixture(t, nil)
	employee := uuid.New()
	ctx := context.Background()

	first, err := f.service.CheckIn(ctx, employee, f.orgID, MethodManual, workMorning, nil)
	require.NoError(t, err)

	second, err := f.service.CheckIn(ctx, employee, f.orgID, MethodManual, workMorning.Add(time.Hour), nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.CheckInAt.Equal(workMorning))
	assert.Equal(t, 1, f.store.Count())
}

func TestCheckOutIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	employee := uuid.New()
	ctx := context.Background()
	leave := workMorning.Add(8 * time.Hour)

	_, err := f.service.CheckIn(ctx, employee, f.orgID, MethodManual, workMorning, nil)
	require.NoError(t, err)

	first, err := f.service.CheckOut(ctx, employee, MethodManual, leave, nil)
	require.NoError(t, err)

	second, err := f.service.CheckOut(ctx, employee, MethodManual, leave.Add(time.Hour), nil)
	require.NoError(t, err)
	assert.True(t, second.CheckOutAt.Equal(*first.CheckOutAt))
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.service.CheckOut(context.Background(), uuid.New(), MethodManual, workMorning, nil)
	assert.ErrorIs(t, err, ErrNotCheckedIn)
}

func TestCheckOutBeforeCheckInRejected(t *testing.T) {
	f := newFixture(t, nil)
	employee := uuid.New()
	ctx := context.Background()

	_, err := f.service.CheckIn(ctx, employee, f.orgID, MethodManual, workMorning, nil)
	require.NoError(t, err)

	_, err = f.service.CheckOut(ctx, employee, MethodManual, workMorning.Add(-time.Hour), nil)
	assert.ErrorIs(t, err, ErrInvalidOrdering)

	// The stored record is untouched by the rejected mutation.
	rec, err := f.store.FindByEmployeeDate(employee, DateKey(workMorning))
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, rec.Status)
	assert.Nil(t, rec.CheckOutAt)
}

func TestBreakToggle(t *testing.T) {
	f := newFixture(t, nil)
	employee := uuid.New()
	ctx := context.Background()

	_, err := f.service.CheckIn(ctx, employee, f.orgID, MethodManual, workMorning, nil)
	require.NoError(t, err)

	rec, err := f.service.ToggleBreak(ctx, employee, workMorning.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusOnBreak, rec.Status)

	rec, err = f.service.ToggleBreak(ctx, employee, workMorning.Add(4*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, rec.Status)
}

func TestOverrideCreatesAndCorrects(t *testing.T) {
	f := newFixture(t, nil)
	employee := uuid.New()
	ctx := context.Background()
	date := DateKey(workMorning)

	in := workMorning
	out := workMorning.Add(4 * time.Hour)
	rec, err := f.service.Override(ctx, employee, f.orgID, date, OverrideInput{
		Status:     StatusHalfDay,
		CheckInAt:  &in,
		CheckOutAt: &out,
		AdminID:    "admin-1",
		Reason:     "forgot phone at home",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusHalfDay, rec.Status)
	assert.True(t, rec.ManuallyOverridden)
	assert.Equal(t, "forgot phone at home", rec.OverrideReason)
}

func TestOverrideStillRejectsBadOrdering(t *testing.T) {
	f := newFixture(t, nil)
	employee := uuid.New()

	in := workMorning
	out := workMorning.Add(-time.Hour)
	_, err := f.service.Override(context.Background(), employee, f.orgID, DateKey(workMorning), OverrideInput{
		CheckInAt:  &in,
		CheckOutAt: &out,
	})
	assert.ErrorIs(t, err, ErrInvalidOrdering)
}

func TestTodayPlaceholder(t *testing.T) {
	f := newFixture(t, nil)
	employee := uuid.New()

	rec, err := f.service.Today(employee, workMorning)
	require.NoError(t, err)
	assert.Equal(t, StatusNotCheckedIn, rec.Status)
	assert.Equal(t, DateKey(workMorning), rec.Date)
	assert.Nil(t, rec.CheckInAt)
}

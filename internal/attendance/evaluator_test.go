package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticDirectory []Employee

func (d staticDirectory) ActiveEmployees() ([]Employee, error) {
	return d, nil
}

func TestEvaluatorMarksMissingEmployeesAbsent(t *testing.T) {
	f := newFixture(t, nil)
	present := uuid.New()
	missing := uuid.New()
	ctx := context.Background()

	_, err := f.service.CheckIn(ctx, present, f.orgID, MethodManual, workMorning, nil)
	require.NoError(t, err)

	evaluator := NewEndOfDayEvaluator(f.service, staticDirectory{
		{ID: present, OrganizationID: f.orgID},
		{ID: missing, OrganizationID: f.orgID},
	})

	evening := time.Date(2026, 3, 2, 19, 0, 0, 0, time.UTC)
	evaluator.Evaluate(ctx, evening)

	rec, err := f.store.FindByEmployeeDate(missing, DateKey(evening))
	require.NoError(t, err)
	assert.Equal(t, StatusAbsent, rec.Status)

	rec, err = f.store.FindByEmployeeDate(present, DateKey(evening))
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, rec.Status)
}

func TestEvaluatorWaitsForCutoff(t *testing.T) {
	f := newFixture(t, nil)
	missing := uuid.New()

	evaluator := NewEndOfDayEvaluator(f.service, staticDirectory{
		{ID: missing, OrganizationID: f.orgID},
	})

	noon := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	evaluator.Evaluate(context.Background(), noon)

	_, err := f.store.FindByEmployeeDate(missing, DateKey(noon))
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestEvaluatorIsRepeatable(t *testing.T) {
	f := newFixture(t, nil)
	missing := uuid.New()
	ctx := context.Background()

	evaluator := NewEndOfDayEvaluator(f.service, staticDirectory{
		{ID: missing, OrganizationID: f.orgID},
	})

	evening := time.Date(2026, 3, 2, 19, 0, 0, 0, time.UTC)
	evaluator.Evaluate(ctx, evening)
	evaluator.Evaluate(ctx, evening.Add(30*time.Minute))

	assert.Equal(t, 1, f.store.Count())
}

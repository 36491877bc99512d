package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdg312/fitplan/internal/storage"
)

func TestPlansOrderedNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := New()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, planType := range []string{storage.PlanTypeWorkout, storage.PlanTypeMeal, storage.PlanTypeWorkout} {
		p := &storage.Plan{
			UserID:    "u1",
			PlanType:  planType,
			Format:    storage.FormatStructured,
			Content:   json.RawMessage(`{}`),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, m.CreatePlan(ctx, p))
		require.NotEqual(t, uuid.Nil, p.ID)
	}
	require.NoError(t, m.CreatePlan(ctx, &storage.Plan{UserID: "u2", PlanType: storage.PlanTypeMeal}))

	plans, err := m.ListPlans(ctx, "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, base.Add(2*time.Hour), plans[0].CreatedAt)
	assert.Equal(t, base, plans[2].CreatedAt)

	page, err := m.ListPlans(ctx, "u1", 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, base, page[0].CreatedAt)

	empty, err := m.ListPlans(ctx, "u1", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPlansScopedToUser(t *testing.T) {
	ctx := context.Background()
	m := New()

	p := &storage.Plan{UserID: "owner", PlanType: storage.PlanTypeMeal, Format: storage.FormatRaw, Content: json.RawMessage(`"text"`)}
	require.NoError(t, m.CreatePlan(ctx, p))

	_, err := m.GetPlan(ctx, "intruder", p.ID)
	assert.ErrorIs(t, err, storage.ErrPlanNotFound)
	assert.ErrorIs(t, m.DeletePlan(ctx, "intruder", p.ID), storage.ErrPlanNotFound)

	got, err := m.GetPlan(ctx, "owner", p.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `"text"`, string(got.Content))

	require.NoError(t, m.DeletePlan(ctx, "owner", p.ID))
	_, err = m.GetPlan(ctx, "owner", p.ID)
	assert.ErrorIs(t, err, storage.ErrPlanNotFound)
}

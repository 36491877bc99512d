//go:build integration

package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/fdg312/fitplan/internal/dbmigrate"
	"github.com/fdg312/fitplan/internal/storage"
)

func newTestStorage(t *testing.T) *PostgresStorage {
	t.Helper()
	ctx := context.Background()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("fitplan"),
		postgrescontainer.WithUsername("fitplan"),
		postgrescontainer.WithPassword("fitplan"),
		postgrescontainer.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, dbmigrate.Run(ctx, "up", connStr))

	store, err := New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPlansLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	older := &storage.Plan{
		UserID:    "google:1",
		PlanType:  storage.PlanTypeWorkout,
		Format:    storage.FormatStructured,
		Title:     "Strength",
		Content:   json.RawMessage(`{"mainWorkout":[{"name":"Squat","sets":3}]}`),
		CreatedAt: time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond),
	}
	require.NoError(t, store.CreatePlan(ctx, older))

	key := "screenshots/google:1/1.png"
	contentType := "image/png"
	newer := &storage.Plan{
		UserID:      "google:1",
		PlanType:    storage.PlanTypeMeal,
		Format:      storage.FormatScreenshot,
		ObjectKey:   &key,
		ContentType: &contentType,
		SizeBytes:   128,
	}
	require.NoError(t, store.CreatePlan(ctx, newer))
	require.False(t, newer.CreatedAt.IsZero())

	require.NoError(t, store.CreatePlan(ctx, &storage.Plan{
		UserID: "google:2", PlanType: storage.PlanTypeMeal, Format: storage.FormatRaw, Content: json.RawMessage(`"x"`),
	}))

	plans, err := store.ListPlans(ctx, "google:1", 10, 0)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, newer.ID, plans[0].ID)
	assert.Equal(t, older.ID, plans[1].ID)
	assert.Nil(t, plans[0].Content)
	assert.JSONEq(t, string(older.Content), string(plans[1].Content))

	_, err = store.GetPlan(ctx, "google:2", older.ID)
	assert.ErrorIs(t, err, storage.ErrPlanNotFound)

	got, err := store.GetPlan(ctx, "google:1", newer.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ObjectKey)
	assert.Equal(t, key, *got.ObjectKey)

	require.NoError(t, store.DeletePlan(ctx, "google:1", older.ID))
	assert.ErrorIs(t, store.DeletePlan(ctx, "google:1", older.ID), storage.ErrPlanNotFound)
}

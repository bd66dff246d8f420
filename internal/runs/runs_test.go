package runs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/researchpipeline/internal/models"
)

func TestMemory_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	run := &models.Run{ID: "run-1", ProjectName: "acme", State: models.StatePending, IdempotencyKey: "key-1"}
	require.NoError(t, m.Create(ctx, run))
	assert.False(t, run.CreatedAt.IsZero())
	assert.ErrorIs(t, m.Create(ctx, run), ErrExists)

	require.NoError(t, m.Update(ctx, "run-1", Update{State: models.StateRunning, CurrentStage: "summary_flow"}))
	require.NoError(t, m.Update(ctx, "run-1", Update{State: models.StateCompleted, Outputs: []string{"short_report.md"}}))

	got, err := m.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.StateCompleted, got.State)
	assert.Equal(t, "summary_flow", got.CurrentStage)
	assert.Equal(t, []string{"short_report.md"}, got.Outputs)

	byKey, err := m.FindByIdempotencyKey(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", byKey.ID)

	_, err = m.FindByIdempotencyKey(ctx, "other")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.FindByIdempotencyKey(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Update(ctx, "missing", Update{}), ErrNotFound)
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Create(ctx, &models.Run{ID: "r", State: models.StatePending}))

	got, err := m.Get(ctx, "r")
	require.NoError(t, err)
	got.State = models.StateFailed

	again, err := m.Get(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, models.StatePending, again.State)
}

func TestFirestoreUpdates(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	updates := firestoreUpdates(Update{}, now)
	require.Len(t, updates, 1)
	assert.Equal(t, "updatedAt", updates[0].Path)

	updates = firestoreUpdates(Update{State: models.StateFailed, ErrorDetails: "boom", ExecutionID: "exec-1"}, now)
	paths := make([]string, len(updates))
	for i, u := range updates {
		paths[i] = u.Path
	}
	assert.Equal(t, []string{"updatedAt", "state", "errorDetails", "workflowExecutionId"}, paths)
	assert.Equal(t, "FAILED", updates[1].Value)
}

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioseqlab/kanno/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

// --- Runs ---

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, []string{"a.faa", "b.faa"})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, []string{"a.faa", "b.faa"}, got.Inputs)
	assert.Nil(t, got.Result)
}

func TestSQLite_GetRun_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "nope")
	assert.Error(t, err)
}

func TestSQLite_UpdateRunStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, []string{"a.faa"})
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusRunning, got.Status)

	assert.Error(t, st.UpdateRunStatus(ctx, "nope", model.RunStatusRunning))
}

func TestSQLite_UpdateRunResult(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, []string{"a.faa"})
	require.NoError(t, err)

	result := &model.RunResult{
		Entities: 1,
		Resolved: 10,
		Sinks:    []string{"out/a.annot.tsv"},
		Stages:   []model.StageSummary{{Name: "kofam", Submitted: 1, Resolved: 10}},
	}
	require.NoError(t, st.UpdateRunResult(ctx, run.ID, result))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, 10, got.Result.Resolved)
	require.Len(t, got.Result.Stages, 1)
	assert.Equal(t, "kofam", got.Result.Stages[0].Name)
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	r1, err := st.CreateRun(ctx, []string{"a.faa"})
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, []string{"b.faa"})
	require.NoError(t, err)
	require.NoError(t, st.UpdateRunStatus(ctx, r1.ID, model.RunStatusComplete))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, r1.ID, complete[0].ID)

	limited, err := st.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

// --- Stages ---

func TestSQLite_StageLifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, []string{"a.faa"})
	require.NoError(t, err)

	stage, err := st.CreateStage(ctx, run.ID, "kofam")
	require.NoError(t, err)
	assert.Equal(t, model.StageStatusRunning, stage.Status)

	summary := &model.StageSummary{Name: "kofam", Submitted: 1, Resolved: 5, DurationMS: 1200}
	require.NoError(t, st.CompleteStage(ctx, stage.ID, model.StageStatusComplete, summary))

	stages, err := st.ListStages(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, stages, 1)
	assert.Equal(t, model.StageStatusComplete, stages[0].Status)
	require.NotNil(t, stages[0].Summary)
	assert.Equal(t, 5, stages[0].Summary.Resolved)

	assert.Error(t, st.CompleteStage(ctx, "nope", model.StageStatusComplete, summary))
}

func TestSQLite_ListStages_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	stages, err := st.ListStages(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, stages)
}

package sinks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/razor303Jc/Job-search-sub002/internal/progress"
)

func TestPrometheusSinkRecordsRunLifecycle(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	runID := uuid.NewString()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, sink.Consume(ctx, progress.Event{RunID: runID, TS: now, Stage: progress.StageRunStart}))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.runsStarted))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.runsRunning))

	require.NoError(t, sink.Consume(ctx, progress.Event{
		RunID: runID, TS: now, Stage: progress.StagePageFetched,
		Source: "board-a", URL: "https://board.example.com/jobs?page=1", Page: 1,
	}))
	require.NoError(t, sink.Consume(ctx, progress.Event{
		RunID: runID, TS: now, Stage: progress.StageSourceDone, Source: "board-a", Jobs: 12,
	}))
	require.NoError(t, sink.Consume(ctx, progress.Event{
		RunID: runID, TS: now, Stage: progress.StageSourceError, Source: "board-b", Err: "status 503",
	}))
	require.NoError(t, sink.Consume(ctx, progress.Event{RunID: runID, TS: now, Stage: progress.StageRunDone}))

	require.Equal(t, 1.0, testutil.ToFloat64(sink.runsCompleted.WithLabelValues("success")))
	require.Equal(t, 0.0, testutil.ToFloat64(sink.runsCompleted.WithLabelValues("error")))
	require.Equal(t, 0.0, testutil.ToFloat64(sink.runsRunning))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.sourcesDone.WithLabelValues("board-a", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.sourcesDone.WithLabelValues("board-b", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.pagesObserved.WithLabelValues("board-a")))
}

func TestPrometheusSinkIgnoresRepeatedRunDone(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	runID := uuid.NewString()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, sink.Consume(ctx, progress.Event{RunID: runID, TS: now, Stage: progress.StageRunStart}))
	require.NoError(t, sink.Consume(ctx, progress.Event{RunID: runID, TS: now, Stage: progress.StageRunError, Err: "canceled"}))
	require.NoError(t, sink.Consume(ctx, progress.Event{RunID: runID, TS: now, Stage: progress.StageRunDone}))

	// The gauge never goes negative even if a run reports completion twice.
	require.Equal(t, 0.0, testutil.ToFloat64(sink.runsRunning))
}

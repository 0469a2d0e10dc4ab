package progress_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/razor303Jc/Job-search-sub002/internal/progress"
	"github.com/razor303Jc/Job-search-sub002/internal/progress/sinks"
)

func validEvent(stage progress.Stage) progress.Event {
	return progress.Event{
		RunID:  "3f2c9a60-0000-4000-8000-000000000001",
		TS:     time.Unix(1700000000, 0).UTC(),
		Stage:  stage,
		Source: "board-a",
	}
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, validEvent(progress.StageRunStart).Validate())
	require.NoError(t, validEvent(progress.StagePageFetched).Validate())

	missingRun := validEvent(progress.StageRunStart)
	missingRun.RunID = ""
	require.Error(t, missingRun.Validate())

	missingSource := validEvent(progress.StageSourceDone)
	missingSource.Source = ""
	require.Error(t, missingSource.Validate())

	unknown := validEvent("BOGUS")
	require.Error(t, unknown.Validate())
}

func TestFanoutDeliversInOrder(t *testing.T) {
	t.Parallel()

	mem := sinks.NewMemorySink()
	fan := progress.NewFanout(zap.NewNop(), mem)

	ctx := context.Background()
	fan.Emit(ctx, validEvent(progress.StageRunStart))
	fan.Emit(ctx, validEvent(progress.StagePageFetched))
	fan.Emit(ctx, validEvent(progress.StageRunDone))

	got := mem.Events()
	require.Len(t, got, 3)
	require.Equal(t, progress.StageRunStart, got[0].Stage)
	require.Equal(t, progress.StagePageFetched, got[1].Stage)
	require.Equal(t, progress.StageRunDone, got[2].Stage)

	require.NoError(t, fan.Close(ctx))
	require.True(t, mem.Closed())
}

func TestFanoutDropsInvalidEvents(t *testing.T) {
	t.Parallel()

	mem := sinks.NewMemorySink()
	fan := progress.NewFanout(zap.NewNop(), mem)

	evt := validEvent(progress.StageSourceError)
	evt.Source = ""
	fan.Emit(context.Background(), evt)

	require.Empty(t, mem.Events())
}

type failingSink struct{ calls int }

func (f *failingSink) Consume(context.Context, progress.Event) error {
	f.calls++
	return errors.New("sink down")
}

func (f *failingSink) Close(context.Context) error { return nil }

func TestFanoutSinkFailureDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	bad := &failingSink{}
	mem := sinks.NewMemorySink()
	fan := progress.NewFanout(zap.NewNop(), bad, mem)

	fan.Emit(context.Background(), validEvent(progress.StageRunStart))

	require.Equal(t, 1, bad.calls)
	require.Len(t, mem.Events(), 1)
}

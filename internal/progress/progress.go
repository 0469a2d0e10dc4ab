// Package progress defines the event stream emitted while an ingestion run
// executes, so operators can watch long runs without polling the store.
package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart    Stage = "RUN_START"
	StageRunDone     Stage = "RUN_DONE"
	StageRunError    Stage = "RUN_ERROR"
	StageSourceStart Stage = "SOURCE_START"
	StageSourceDone  Stage = "SOURCE_DONE"
	StagePageFetched Stage = "PAGE_FETCHED"
	StageSourceError Stage = "SOURCE_ERROR"
)

// Event captures a single milestone of an ingestion run.
type Event struct {
	// RunID identifies the pipeline invocation in canonical UUID form.
	RunID string `json:"runId"`
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time `json:"ts"`
	// Stage denotes which lifecycle milestone occurred.
	Stage Stage `json:"stage"`
	// Source scopes source and page events to a source ID.
	Source string `json:"source,omitempty"`
	// URL is the page URL for page events.
	URL string `json:"url,omitempty"`
	// Page is the 1-based page number within the source.
	Page int `json:"page,omitempty"`
	// Jobs is the cumulative raw record count for the scope of the event.
	Jobs int `json:"jobs,omitempty"`
	// Err carries error text for error stages.
	Err string `json:"err,omitempty"`
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == "" {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone, StageRunError:
	case StageSourceStart, StageSourceDone, StagePageFetched, StageSourceError:
		if e.Source == "" {
			return fmt.Errorf("%s requires source", e.Stage)
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	return nil
}

// Sink consumes progress events. Implementations must be safe for repeated
// calls and honor ctx deadlines.
type Sink interface {
	Consume(ctx context.Context, evt Event) error
	Close(ctx context.Context) error
}

// Emitter publishes individual events; Fanout satisfies this interface so the
// pipeline stays agnostic about where events end up.
type Emitter interface {
	Emit(ctx context.Context, evt Event)
}

// Fanout delivers each event synchronously to every registered sink. A sink
// failure is logged and never propagates back into the run.
type Fanout struct {
	sinks  []Sink
	logger *zap.Logger
}

// NewFanout wires sinks behind a single Emitter.
func NewFanout(logger *zap.Logger, sinks ...Sink) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fanout{sinks: append([]Sink(nil), sinks...), logger: logger}
}

// Emit validates the event and forwards it to all sinks in registration order.
func (f *Fanout) Emit(ctx context.Context, evt Event) {
	if f == nil {
		return
	}
	if err := f.logInvalid(evt); err != nil {
		return
	}
	for _, s := range f.sinks {
		if err := s.Consume(ctx, evt); err != nil {
			f.logger.Warn("progress sink failed",
				zap.String("stage", string(evt.Stage)),
				zap.Error(err),
			)
		}
	}
}

// Close shuts down every sink, returning the first error encountered.
func (f *Fanout) Close(ctx context.Context) error {
	if f == nil {
		return nil
	}
	var first error
	for _, s := range f.sinks {
		if err := s.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f *Fanout) logInvalid(evt Event) error {
	err := evt.Validate()
	if err != nil {
		f.logger.Warn("dropping invalid progress event", zap.Error(err))
	}
	return err
}

// NopEmitter discards every event. It is the default when no sinks are
// configured.
type NopEmitter struct{}

// Emit implements Emitter.
func (NopEmitter) Emit(context.Context, Event) {}

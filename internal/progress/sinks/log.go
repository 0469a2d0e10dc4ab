// Package sinks provides progress.Sink implementations: structured logging,
// Pub/Sub publishing, and an in-memory store for tests.
package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/razor303Jc/Job-search-sub002/internal/progress"
)

// LogSink emits structured logs for debugging progress streams. It is useful
// during development or audits where a durable stream is unavailable.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs the event using structured fields.
func (s *LogSink) Consume(_ context.Context, evt progress.Event) error {
	s.logger.Info("progress event",
		zap.String("run_id", evt.RunID),
		zap.String("stage", string(evt.Stage)),
		zap.String("source", evt.Source),
		zap.String("url", evt.URL),
		zap.Int("page", evt.Page),
		zap.Int("jobs", evt.Jobs),
		zap.String("err", evt.Err),
	)
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}

package usage

import (
	"context"
	"log/slog"
	"time"

	"atlas/internal/ai"
)

// Recorder stores one attempt.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// MeteredGenerator records every attempt that passes through it.
// Ledger failures are logged and never affect the generation result.
type MeteredGenerator struct {
	next     ai.Generator
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

func NewMeteredGenerator(next ai.Generator, recorder Recorder, logger *slog.Logger) *MeteredGenerator {
	return &MeteredGenerator{next: next, recorder: recorder, logger: logger, now: time.Now}
}

func (m *MeteredGenerator) Generate(ctx context.Context, req ai.Request) (string, error) {
	start := m.now()
	out, err := m.next.Generate(ctx, req)

	ev := Event{
		Model:   req.Model,
		Stage:   req.Stage,
		Outcome: outcome(err),
		Latency: m.now().Sub(start),
		At:      start.UTC(),
	}
	if rerr := m.recorder.Record(context.WithoutCancel(ctx), ev); rerr != nil {
		m.logger.WarnContext(ctx, "usage record failed", "model", req.Model, "stage", req.Stage, "error", rerr)
	}
	return out, err
}

func outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if kind, ok := ai.KindOf(err); ok {
		return kind.String()
	}
	return "error"
}

package ai

import (
	"context"
	"log/slog"
)

// FallbackGenerator retries a rate-limited or unavailable call once
// against a secondary model.
type FallbackGenerator struct {
	next     Generator
	fallback string
	logger   *slog.Logger
}

// NewFallbackGenerator wraps next. An empty fallback disables the retry.
func NewFallbackGenerator(next Generator, fallback string, logger *slog.Logger) *FallbackGenerator {
	return &FallbackGenerator{next: next, fallback: fallback, logger: logger}
}

func (f *FallbackGenerator) Generate(ctx context.Context, req Request) (string, error) {
	out, err := f.next.Generate(ctx, req)
	if err == nil || !IsUnavailable(err) {
		return out, err
	}
	if f.fallback == "" || f.fallback == req.Model {
		return "", err
	}

	f.logger.WarnContext(ctx, "upstream unavailable, trying fallback model",
		"stage", req.Stage, "model", req.Model, "fallback", f.fallback, "status", StatusOf(err))
	retry := req
	retry.Model = f.fallback
	return f.next.Generate(ctx, retry)
}

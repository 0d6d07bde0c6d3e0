// README: Pipeline stages (intent gate, evidence research, plan create and revise).
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"atlas/internal/ai"
	"atlas/internal/plan"
	"atlas/internal/search"
)

const (
	outputError = "Output Error"
	schemaError = "Schema Validation Error"

	maxReviseOptions = 1
)

// IntentClassifier gates travel requests before any planning work.
type IntentClassifier struct {
	gen   ai.Generator
	model string
}

func NewIntentClassifier(gen ai.Generator, model string) *IntentClassifier {
	return &IntentClassifier{gen: gen, model: model}
}

// Classify labels text. Any failure is fatal for the caller's pipeline.
func (c *IntentClassifier) Classify(ctx context.Context, text string) (*plan.CheckResult, error) {
	res, err := ai.GenerateJSON[plan.CheckResult](ctx, c.gen, ai.Request{
		Model:  c.model,
		System: ai.CheckInstructions,
		Prompt: text,
		Schema: ai.CheckSchema,
		Stage:  "intent",
	})
	if err != nil {
		return nil, fmt.Errorf("intent check: %w", err)
	}
	return res, nil
}

// EvidenceCollector turns web search results for a request into a free-text
// research digest. A nil web searcher disables research.
type EvidenceCollector struct {
	gen    ai.Generator
	web    search.Searcher
	model  string
	logger *slog.Logger
}

func NewEvidenceCollector(gen ai.Generator, web search.Searcher, model string, logger *slog.Logger) *EvidenceCollector {
	return &EvidenceCollector{gen: gen, web: web, model: model, logger: logger}
}

// Collect returns the digest, or "" when research is disabled, failed or
// found nothing.
func (c *EvidenceCollector) Collect(ctx context.Context, text, today string) string {
	if c.web == nil {
		return ""
	}
	results, err := search.SearchAll(ctx, c.web, ai.ResearchQueries(text))
	if err != nil {
		c.logger.WarnContext(ctx, "web search failed", "error", err)
		return ""
	}
	if len(results) == 0 {
		c.logger.InfoContext(ctx, "web search found nothing")
		return ""
	}
	out, err := c.gen.Generate(ctx, ai.Request{
		Model:  c.model,
		System: ai.SearchInstructions,
		Prompt: ai.ResearchPrompt(text, today, search.Format(results)),
		Stage:  "evidence",
	})
	if err != nil {
		c.logger.WarnContext(ctx, "evidence collection failed", "error", err)
		return ""
	}
	return strings.TrimSpace(out)
}

// PlanGenerator creates and revises travel plans. Failures are returned as
// error-shaped responses, never as Go errors.
type PlanGenerator struct {
	gen    ai.Generator
	model  string
	logger *slog.Logger
}

func NewPlanGenerator(gen ai.Generator, model string, logger *slog.Logger) *PlanGenerator {
	return &PlanGenerator{gen: gen, model: model, logger: logger}
}

// Create builds a plan with exactly options alternatives.
func (g *PlanGenerator) Create(ctx context.Context, text, evidence, today string, options int) *plan.Response {
	options = clampOptions(options)
	return g.generate(ctx, ai.Request{
		Model:  g.model,
		System: ai.PlannerInstructions,
		Prompt: ai.CreatePrompt(text, evidence, today, options),
		Schema: ai.PlanSchema,
		Stage:  "create",
	}, options, true)
}

// Revise edits a prior plan. An empty instruction asks for an automatic
// fix-up pass. The result carries at most one option.
func (g *PlanGenerator) Revise(ctx context.Context, instruction, previous, evidence, today string) *plan.Response {
	return g.generate(ctx, ai.Request{
		Model:  g.model,
		System: ai.ReviseInstructions,
		Prompt: ai.RevisePrompt(instruction, previous, evidence, today),
		Schema: ai.PlanSchema,
		Stage:  "revise",
	}, maxReviseOptions, false)
}

func (g *PlanGenerator) generate(ctx context.Context, req ai.Request, want int, exact bool) *plan.Response {
	resp, err := ai.GenerateJSON[plan.Response](ctx, g.gen, req)
	if err != nil {
		g.logger.ErrorContext(ctx, "plan generation failed", "stage", req.Stage, "error", err)
		return plan.ErrorResponse(describe(err))
	}
	if resp.Status != plan.StatusSuccess {
		return plan.ErrorResponse(resp.Description)
	}
	if err := resp.Conform(want, exact); err != nil {
		g.logger.ErrorContext(ctx, "plan failed structural checks", "stage", req.Stage, "error", err)
		return plan.ErrorResponse(schemaError)
	}
	return resp
}

// README: Travel planner orchestration (create and revise flows).
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"atlas/internal/ai"
	"atlas/internal/config"
	"atlas/internal/enrich"
	"atlas/internal/logging"
	"atlas/internal/plan"
	"atlas/internal/search"
)

// PlaceEnricher fills lookup fields on new places.
type PlaceEnricher interface {
	EnrichResponse(ctx context.Context, resp *plan.Response)
}

// TravelPlanner runs intent, research, generation and enrichment for travel
// requests. Every outcome, including failure, is a *plan.Response.
type TravelPlanner struct {
	classifier *IntentClassifier
	evidence   *EvidenceCollector
	generator  *PlanGenerator
	enricher   PlaceEnricher
	maxInput   int
	loc        *time.Location
	logger     *slog.Logger
	now        func() time.Time
}

// NewTravelPlanner wires the stages onto gen using the configured model tiers.
// web may be nil, in which case plans are created without research.
func NewTravelPlanner(gen ai.Generator, web search.Searcher, enricher PlaceEnricher, cfg config.Config, logger *slog.Logger) (*TravelPlanner, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s location: %w", cfg.Timezone, err)
	}
	return &TravelPlanner{
		classifier: NewIntentClassifier(gen, cfg.AI.Low),
		evidence:   NewEvidenceCollector(gen, web, cfg.AI.Med, logger),
		generator:  NewPlanGenerator(gen, cfg.AI.High, logger),
		enricher:   enricher,
		maxInput:   cfg.MaxInputLength,
		loc:        loc,
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (p *TravelPlanner) today() string {
	return p.now().In(p.loc).Format(time.DateOnly)
}

// MakePlan creates a new plan with 1 to 3 options.
func (p *TravelPlanner) MakePlan(ctx context.Context, input string, options int) (resp *plan.Response) {
	log := logging.FromContext(ctx, p.logger)
	defer p.recoverInto(ctx, &resp, "make plan")

	input = strings.TrimSpace(input)
	if input == "" {
		return plan.ErrorResponse("Input Error: empty input")
	}
	if p.maxInput > 0 && utf8.RuneCountInString(input) > p.maxInput {
		return plan.ErrorResponse(fmt.Sprintf("Input too long (max %d characters)", p.maxInput))
	}
	options = clampOptions(options)
	log.InfoContext(ctx, "make plan", "input_len", utf8.RuneCountInString(input), "options", options)

	check, err := p.classifier.Classify(ctx, input)
	if err != nil {
		log.ErrorContext(ctx, "intent gate failed", "error", err)
		return plan.ErrorResponse(outputError)
	}
	log.InfoContext(ctx, "intent classified", "intent", check.Intent, "description", check.Description)
	if !check.Plannable() {
		return plan.ErrorResponse(check.Description)
	}

	today := p.today()
	evidence := p.evidence.Collect(ctx, input, today)

	resp = p.generator.Create(ctx, input, evidence, today, options)
	if resp.Status != plan.StatusSuccess {
		return resp
	}
	p.enricher.EnrichResponse(ctx, resp)
	return resp
}

// ChangePlan revises olddata following instruction. An empty instruction
// requests an automatic fix-up. Places already enriched in olddata keep their
// lookups when their name is unchanged.
func (p *TravelPlanner) ChangePlan(ctx context.Context, instruction, olddata string) (resp *plan.Response) {
	log := logging.FromContext(ctx, p.logger)
	defer p.recoverInto(ctx, &resp, "change plan")

	instruction = strings.TrimSpace(instruction)
	olddata = strings.TrimSpace(olddata)
	if olddata == "" {
		return plan.ErrorResponse("Input Error: olddata is empty")
	}
	log.InfoContext(ctx, "change plan", "auto_fix", instruction == "", "olddata_len", len(olddata))

	stripped, cache, err := enrich.ExtractAndStrip(olddata)
	if err != nil {
		log.WarnContext(ctx, "prior plan not parseable, sending as is", "error", err)
	}
	log.InfoContext(ctx, "stripped prior plan", "places", len(cache))

	resp = p.generator.Revise(ctx, instruction, stripped, "", p.today())
	if resp.Status != plan.StatusSuccess {
		return resp
	}
	restored := cache.Restore(resp)
	log.InfoContext(ctx, "restored cached lookups", "places", restored)

	p.enricher.EnrichResponse(ctx, resp)
	return resp
}

func (p *TravelPlanner) recoverInto(ctx context.Context, resp **plan.Response, flow string) {
	if r := recover(); r != nil {
		logging.FromContext(ctx, p.logger).ErrorContext(ctx, "pipeline panic", "flow", flow, "panic", r)
		*resp = plan.ErrorResponse(outputError)
	}
}

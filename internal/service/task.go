// README: Task planner (single combined classification and plan call, local feasibility).
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"atlas/internal/ai"
	"atlas/internal/config"
	"atlas/internal/feasibility"
	"atlas/internal/logging"
	"atlas/internal/plan"
)

// TaskRequest is one task planning call.
type TaskRequest struct {
	Input    string
	Language string

	// AllowSoft returns infeasible plans instead of rejecting them.
	AllowSoft bool
}

// TaskPlanner turns a request into a task plan with a feasibility verdict.
type TaskPlanner struct {
	gen    ai.Generator
	model  string
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

func NewTaskPlanner(gen ai.Generator, cfg config.Config, logger *slog.Logger) (*TaskPlanner, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s location: %w", cfg.Timezone, err)
	}
	return &TaskPlanner{gen: gen, model: cfg.AI.Task, loc: loc, logger: logger, now: time.Now}, nil
}

// Plan runs the task flow. When the plan is infeasible and soft mode is off,
// the response is returned together with a KindFeasibilityRejected error so
// the caller can still report the verdict.
func (p *TaskPlanner) Plan(ctx context.Context, req TaskRequest) (*plan.TaskResponse, error) {
	log := logging.FromContext(ctx, p.logger)

	if IsGibberish(req.Input) {
		log.InfoContext(ctx, "rejecting unclear task input")
		return nil, &PipelineError{Kind: KindInput, Message: "request is unclear or too short"}
	}

	today := p.now().In(p.loc).Format(time.DateOnly)
	verdict, err := ai.GenerateJSON[plan.TaskIntent](ctx, p.gen, ai.Request{
		Model:  p.model,
		Prompt: ai.TaskPrompt(req.Input, today, p.loc.String(), req.Language),
		Schema: ai.TaskSchema,
		Stage:  "task",
	})
	if err != nil {
		log.ErrorContext(ctx, "task generation failed", "error", err)
		return nil, fromGenError(err)
	}
	log.InfoContext(ctx, "task intent", "intent", verdict.Intent, "confidence", verdict.Confidence, "reason", verdict.Reason)

	switch verdict.Intent {
	case plan.IntentUnsafe, plan.IntentNotTaskPlanning, plan.IntentIncomplete:
		return nil, &PipelineError{
			Kind:    KindIntentRejected,
			Message: "request rejected by classifier",
			Intent:  verdict.Intent,
			Reason:  verdict.Reason,
		}
	}
	if verdict.Plan == nil {
		return nil, &PipelineError{Kind: KindSchemaInvalid, Message: "model did not return a plan for an acceptable intent"}
	}

	resp := &plan.TaskResponse{Plan: *verdict.Plan, Feasibility: feasibility.Assess(*verdict.Plan)}
	if !resp.Feasibility.Feasible && !req.AllowSoft {
		log.WarnContext(ctx, "infeasible plan rejected", "reasons", resp.Feasibility.Reasons)
		return resp, &PipelineError{
			Kind:    KindFeasibilityRejected,
			Message: "plan does not meet minimum criteria",
			Reasons: resp.Feasibility.Reasons,
		}
	}
	log.InfoContext(ctx, "task plan ready", "difficulty", resp.Feasibility.Difficulty, "soft", req.AllowSoft)
	return resp, nil
}

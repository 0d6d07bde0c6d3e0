package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"atlas/internal/plan"
)

// Request describes one generation call.
type Request struct {
	// Model is the model name to call.
	Model string

	// System is the system instruction. Empty means none.
	System string

	// Prompt is the user turn.
	Prompt string

	// Schema constrains the output to JSON. Nil means free text.
	Schema *genai.Schema

	// Stage labels the pipeline stage for logs and usage accounting.
	Stage string
}

// Generator produces raw model text for a request.
// Implementations return *GenError for classified failures.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GenerateJSON calls g and strictly decodes the result into T.
// Empty output yields KindEmptyOutput; a contract violation yields KindSchemaInvalid.
func GenerateJSON[T any, PT interface {
	*T
	plan.Contract
}](ctx context.Context, g Generator, req Request) (*T, error) {
	raw, err := g.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	var v T
	if err := plan.Decode([]byte(cleanJSONString(raw)), PT(&v)); err != nil {
		if errors.Is(err, plan.ErrEmptyPayload) {
			return nil, &GenError{Kind: KindEmptyOutput, Model: req.Model}
		}
		return nil, &GenError{Kind: KindSchemaInvalid, Model: req.Model, Err: err}
	}
	return &v, nil
}

// cleanJSONString removes markdown code fences if present (e.g. ```json ... ```).
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}

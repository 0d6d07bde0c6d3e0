package service

import (
	"errors"
	"fmt"

	"atlas/internal/ai"
	"atlas/internal/plan"
)

// ErrorKind classifies a pipeline failure for the transport layer.
type ErrorKind int

const (
	KindInput ErrorKind = iota + 1
	KindIntentRejected
	KindUpstreamUnavailable
	KindUpstream
	KindSchemaInvalid
	KindFeasibilityRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindIntentRejected:
		return "intent_rejected"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindUpstream:
		return "upstream"
	case KindSchemaInvalid:
		return "schema_invalid"
	case KindFeasibilityRejected:
		return "feasibility_rejected"
	}
	return "unknown"
}

// PipelineError is returned by the task flow. The travel flow folds the
// same conditions into an error-shaped plan.Response instead.
type PipelineError struct {
	Kind    ErrorKind
	Message string

	// Status is the upstream HTTP status for upstream kinds.
	Status int

	// Intent and Reason carry the classifier verdict for KindIntentRejected.
	Intent plan.TaskIntentLabel
	Reason string

	// Reasons lists failed criteria for KindFeasibilityRejected.
	Reasons []string

	Err error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// AsPipelineError extracts a *PipelineError from err.
func AsPipelineError(err error) (*PipelineError, bool) {
	var perr *PipelineError
	ok := errors.As(err, &perr)
	return perr, ok
}

// fromGenError maps a generation failure onto a pipeline kind.
func fromGenError(err error) *PipelineError {
	kind, ok := ai.KindOf(err)
	if !ok {
		return &PipelineError{Kind: KindUpstream, Message: "generation failed", Err: err}
	}
	switch kind {
	case ai.KindUnavailable:
		return &PipelineError{Kind: KindUpstreamUnavailable, Message: "model service unavailable", Status: ai.StatusOf(err), Err: err}
	case ai.KindEmptyOutput, ai.KindSchemaInvalid:
		return &PipelineError{Kind: KindSchemaInvalid, Message: "model output did not match the schema", Err: err}
	default:
		return &PipelineError{Kind: KindUpstream, Message: "model service error", Status: ai.StatusOf(err), Err: err}
	}
}

// describe turns a generation failure into the travel response description.
func describe(err error) string {
	kind, ok := ai.KindOf(err)
	if !ok {
		return outputError
	}
	switch kind {
	case ai.KindEmptyOutput:
		return outputError
	case ai.KindSchemaInvalid:
		return schemaError
	case ai.KindUnavailable:
		return fmt.Sprintf("Upstream Unavailable: model service returned %d", ai.StatusOf(err))
	default:
		if status := ai.StatusOf(err); status != 0 {
			return fmt.Sprintf("Upstream Error: model service returned %d", status)
		}
		return "Upstream Error: model service request failed"
	}
}

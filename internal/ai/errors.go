package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
)

// Kind classifies a generation failure.
type Kind int

const (
	// KindEmptyOutput means the model answered with no text.
	KindEmptyOutput Kind = iota + 1
	// KindSchemaInvalid means the text did not satisfy the output contract. Never retried.
	KindSchemaInvalid
	// KindUnavailable means the upstream was rate limited (429) or down (503).
	KindUnavailable
	// KindUpstream covers every other upstream failure.
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindEmptyOutput:
		return "empty_output"
	case KindSchemaInvalid:
		return "schema_invalid"
	case KindUnavailable:
		return "unavailable"
	case KindUpstream:
		return "upstream"
	}
	return "unknown"
}

// GenError is a classified generation failure.
type GenError struct {
	Kind   Kind
	Model  string
	Status int
	Err    error
}

func (e *GenError) Error() string {
	msg := fmt.Sprintf("gemini %s (model=%s", e.Kind, e.Model)
	if e.Status != 0 {
		msg += fmt.Sprintf(", status=%d", e.Status)
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenError) Unwrap() error { return e.Err }

// KindOf returns the kind of a *GenError in err's chain.
func KindOf(err error) (Kind, bool) {
	var gerr *GenError
	if errors.As(err, &gerr) {
		return gerr.Kind, true
	}
	return 0, false
}

// IsUnavailable reports whether err is a 429/503-class failure.
func IsUnavailable(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindUnavailable
}

// StatusOf returns the upstream HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var gerr *GenError
	if errors.As(err, &gerr) {
		return gerr.Status
	}
	return 0
}

// classify turns a transport error into a *GenError.
func classify(model string, err error) error {
	code := 0
	var herr *googleapi.Error
	var aerr *apierror.APIError
	switch {
	case errors.As(err, &herr):
		code = herr.Code
	case errors.As(err, &aerr):
		code = aerr.HTTPCode()
	}
	if code < 0 {
		code = 0
	}

	kind := KindUpstream
	if code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable {
		kind = KindUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = KindUpstream
	}
	return &GenError{Kind: kind, Model: model, Status: code, Err: err}
}

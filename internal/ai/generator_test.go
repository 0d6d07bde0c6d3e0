package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"atlas/internal/plan"
)

func fixed(out string, err error) Generator {
	return generatorFunc(func(context.Context, Request) (string, error) { return out, err })
}

func TestGenerateJSONDecodes(t *testing.T) {
	g := fixed("```json\n{\"intent\":\"travel_reasonable\",\"description\":\"Chiang Mai trip\"}\n```", nil)

	res, err := GenerateJSON[plan.CheckResult](context.Background(), g, Request{Model: "low"})
	require.NoError(t, err)
	assert.True(t, res.Plannable())
	assert.Equal(t, "Chiang Mai trip", res.Description)
}

func TestGenerateJSONEmptyOutput(t *testing.T) {
	_, err := GenerateJSON[plan.CheckResult](context.Background(), fixed("   ", nil), Request{Model: "low"})
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindEmptyOutput, kind)
}

func TestGenerateJSONSchemaInvalid(t *testing.T) {
	_, err := GenerateJSON[plan.CheckResult](context.Background(), fixed(`{"intent":"vacation"}`, nil), Request{Model: "low"})
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindSchemaInvalid, kind)

	var verr *plan.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestGenerateJSONPassesUpstreamError(t *testing.T) {
	up := &GenError{Kind: KindUpstream, Model: "low", Status: 500}
	_, err := GenerateJSON[plan.CheckResult](context.Background(), fixed("", up), Request{Model: "low"})
	assert.Same(t, up, err)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		kind   Kind
		status int
	}{
		{&googleapi.Error{Code: http.StatusTooManyRequests}, KindUnavailable, 429},
		{&googleapi.Error{Code: http.StatusServiceUnavailable}, KindUnavailable, 503},
		{fmt.Errorf("wrapped: %w", &googleapi.Error{Code: 503}), KindUnavailable, 503},
		{&googleapi.Error{Code: http.StatusInternalServerError}, KindUpstream, 500},
		{&googleapi.Error{Code: http.StatusBadRequest}, KindUpstream, 400},
		{errors.New("dial tcp: refused"), KindUpstream, 0},
		{context.DeadlineExceeded, KindUpstream, 0},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			err := classify("m", tc.err)
			var gerr *GenError
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, tc.kind, gerr.Kind)
			assert.Equal(t, tc.status, gerr.Status)
			assert.Equal(t, "m", gerr.Model)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestPromptsCarryContext(t *testing.T) {
	p := CreatePrompt("beach trip to Chanthaburi", "", "2025-09-01", 2)
	assert.Contains(t, p, NoEvidence)
	assert.Contains(t, p, "exactly 2 entries")
	assert.Contains(t, p, "2025-09-01")

	r := RevisePrompt("  ", `{"plan_output":[]}`, "Wat Arun | 08:00-18:00", "2025-09-01")
	assert.Contains(t, r, AutoFixInstruction)
	assert.Contains(t, r, "Wat Arun")
	assert.NotContains(t, r, NoEvidence)

	research := ResearchPrompt("2 days in Chanthaburi", "2025-09-01", "[1] Chanthaboon Waterfront\nhttps://example.com/w")
	assert.Contains(t, research, "--- Web search results ---\n[1] Chanthaboon Waterfront")
	assert.Contains(t, research, "2 days in Chanthaburi")
	assert.Equal(t, []string{
		"Chanthaburi attractions", "Chanthaburi restaurants cafes", "Chanthaburi hotels",
	}, ResearchQueries("Chanthaburi"))

	task := TaskPrompt("prepare weekly sales deck by Friday", "2025-09-01", "Asia/Bangkok", "English")
	assert.Contains(t, task, "must be written in English")
	assert.True(t, strings.HasSuffix(task, "prepare weekly sales deck by Friday"))
}

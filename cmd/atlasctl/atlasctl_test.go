package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas/internal/config"
	httptransport "atlas/internal/http"
	"atlas/internal/logging"
	"atlas/internal/plan"
	"atlas/internal/service"
	"atlas/internal/weather"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestAssessWrappedPlan(t *testing.T) {
	path := writeFile(t, `{"intent":"TASK_PLANNING","plan":{
		"task_name":"Exam revision","start_date":"2025-09-01","end_date":"2025-09-10","priority":"High",
		"subtasks":[
			{"name":"Collect notes","description":"Gather lecture notes"},
			{"name":"Practice","description":"Solve past papers"},
			{"name":"Review","description":"Review weak topics"}]}}`)

	out, err := run(t, "assess", path)
	require.NoError(t, err)

	var f plan.Feasibility
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	assert.True(t, f.Feasible)
}

func TestAssessBarePlanInfeasible(t *testing.T) {
	path := writeFile(t, `{"task_name":"TBD","start_date":"2025-09-10","end_date":"2025-09-01","subtasks":[]}`)

	out, err := run(t, "assess", path)
	require.NoError(t, err)

	var f plan.Feasibility
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	assert.False(t, f.Feasible)
	assert.Equal(t, plan.DifficultyImpossible, f.Difficulty)
	assert.NotEmpty(t, f.Reasons)
}

func TestAssessBadJSON(t *testing.T) {
	_, err := run(t, "assess", writeFile(t, "{"))
	assert.ErrorContains(t, err, "parse task plan")
}

func TestMakeRejectsOptions(t *testing.T) {
	_, err := run(t, "make", "--options", "5", "Bangkok")
	assert.ErrorContains(t, err, "--options")
}

type smokeTravel struct{}

func (smokeTravel) MakePlan(_ context.Context, input string, _ int) *plan.Response {
	if strings.TrimSpace(input) == "" {
		return plan.ErrorResponse("Input Error: empty input")
	}
	return &plan.Response{Status: plan.StatusSuccess, PlanOutput: []plan.Option{{}}, HotelOutput: [][]plan.Place{{}}}
}

func (smokeTravel) ChangePlan(context.Context, string, string) *plan.Response { return nil }

type smokeTask struct{}

func (smokeTask) Plan(context.Context, service.TaskRequest) (*plan.TaskResponse, error) {
	return nil, &service.PipelineError{Kind: service.KindInput}
}

type smokeWeather struct{}

func (smokeWeather) Forecast(_ context.Context, lat, lng float64, days int) (*weather.Forecast, error) {
	return &weather.Forecast{Latitude: lat, Longitude: lng, Days: make([]weather.Day, days)}, nil
}

func TestSmokeAgainstRouter(t *testing.T) {
	srv := httptest.NewServer(httptransport.NewRouter(httptransport.RouterDeps{
		Travel:  smokeTravel{},
		Task:    smokeTask{},
		Weather: smokeWeather{},
		Config:  config.Config{},
		Logger:  logging.Discard(),
	}))
	defer srv.Close()

	out, err := run(t, "smoke", "--base-url", srv.URL+"/", "--full")
	require.NoError(t, err, out)
	assert.Contains(t, out, "PASS=7 FAIL=0 SKIP=0")
}

func TestSmokeReportsFailures(t *testing.T) {
	srv := httptest.NewServer(httptransport.NewRouter(httptransport.RouterDeps{
		Travel:  smokeTravel{},
		Task:    smokeTask{},
		Weather: smokeWeather{},
		Logger:  logging.Discard(),
	}))
	srv.Close()

	out, err := run(t, "smoke", "--base-url", srv.URL, "--timeout", "1s")
	assert.Error(t, err)
	assert.Contains(t, out, "FAIL=6 SKIP=1")
}

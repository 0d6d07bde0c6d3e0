package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas/internal/ai"
	"atlas/internal/config"
	"atlas/internal/logging"
	"atlas/internal/plan"
	"atlas/internal/search"
)

// stageGenerator answers per pipeline stage and records every request.
type stageGenerator struct {
	mu      sync.Mutex
	replies map[string]func(ai.Request) (string, error)
	calls   []ai.Request
}

func (s *stageGenerator) Generate(_ context.Context, req ai.Request) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	if fn, ok := s.replies[req.Stage]; ok {
		return fn(req)
	}
	return "", fmt.Errorf("no reply for stage %s", req.Stage)
}

func (s *stageGenerator) stages() []string {
	out := make([]string, len(s.calls))
	for i, c := range s.calls {
		out[i] = c.Stage
	}
	return out
}

func (s *stageGenerator) call(stage string) *ai.Request {
	for i := range s.calls {
		if s.calls[i].Stage == stage {
			return &s.calls[i]
		}
	}
	return nil
}

func reply(out string) func(ai.Request) (string, error) {
	return func(ai.Request) (string, error) { return out, nil }
}

func fail(err error) func(ai.Request) (string, error) {
	return func(ai.Request) (string, error) { return "", err }
}

type recordingEnricher struct {
	calls int
	fn    func(*plan.Response)
}

func (r *recordingEnricher) EnrichResponse(_ context.Context, resp *plan.Response) {
	r.calls++
	if r.fn != nil {
		r.fn(resp)
	}
}

func testConfig() config.Config {
	var cfg config.Config
	cfg.AI = config.AIConfig{High: "high", Med: "med", Low: "low", Task: "task"}
	cfg.MaxInputLength = 2000
	cfg.Timezone = "UTC"
	return cfg
}

// stubWeb answers every query with the same results.
type stubWeb struct {
	mu      sync.Mutex
	queries []string
	results []search.Result
	err     error
}

func (s *stubWeb) Search(_ context.Context, query string) ([]search.Result, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()
	return s.results, s.err
}

func bangkokWeb() *stubWeb {
	return &stubWeb{results: []search.Result{
		{Title: "Wat Arun", Link: "https://example.com/arun", Snippet: "Temple of Dawn, open 08:00-18:00"},
	}}
}

func newTravelPlanner(t *testing.T, gen ai.Generator, enricher PlaceEnricher) *TravelPlanner {
	t.Helper()
	return newTravelPlannerWithWeb(t, gen, bangkokWeb(), enricher)
}

func newTravelPlannerWithWeb(t *testing.T, gen ai.Generator, web search.Searcher, enricher PlaceEnricher) *TravelPlanner {
	t.Helper()
	p, err := NewTravelPlanner(gen, web, enricher, testConfig(), logging.Discard())
	require.NoError(t, err)
	p.now = func() time.Time { return time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC) }
	return p
}

func ptr[T any](v T) *T { return &v }

func sampleOption(name string) plan.Option {
	return plan.Option{
		Name: ptr(name),
		Itinerary: []plan.Day{{
			DayIndex: 1,
			Stops: []plan.Stop{
				{OrderInDay: 2, Places: plan.Place{Type: plan.KindAttraction, Name: "Wat Arun"}},
				{OrderInDay: 5, Places: plan.Place{Type: plan.KindLodging, Name: "Riverside Inn"}},
				{OrderInDay: 7, Places: plan.Place{Type: plan.KindDining, Name: "Jay Fai"}},
			},
		}},
		Warnings: []string{},
	}
}

func planJSON(t *testing.T, options int) string {
	t.Helper()
	resp := plan.Response{Status: plan.StatusSuccess, Description: "Bangkok"}
	for i := 0; i < options; i++ {
		resp.PlanOutput = append(resp.PlanOutput, sampleOption(fmt.Sprintf("Option %d", i+1)))
		resp.HotelOutput = append(resp.HotelOutput, []plan.Place{
			{Type: plan.KindLodging, Name: "Hotel A"},
			{Type: plan.KindLodging, Name: "Hotel B"},
			{Type: plan.KindLodging, Name: "Hotel C"},
			{Type: plan.KindDining, Name: "Not A Hotel"},
		})
	}
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(raw)
}

const reasonable = `{"intent":"travel_reasonable","description":"Bangkok city trip"}`

func TestMakePlanEmptyInputMakesNoCall(t *testing.T) {
	gen := &stageGenerator{}
	enricher := &recordingEnricher{}
	p := newTravelPlanner(t, gen, enricher)

	for _, in := range []string{"", "   \n\t"} {
		resp := p.MakePlan(context.Background(), in, 1)
		assert.Equal(t, plan.StatusError, resp.Status)
		assert.Equal(t, "Input Error: empty input", resp.Description)
		assert.Nil(t, resp.PlanOutput)
		assert.Nil(t, resp.HotelOutput)
	}
	assert.Empty(t, gen.calls)
	assert.Zero(t, enricher.calls)
}

func TestMakePlanInputTooLong(t *testing.T) {
	gen := &stageGenerator{}
	p := newTravelPlanner(t, gen, &recordingEnricher{})
	p.maxInput = 10

	resp := p.MakePlan(context.Background(), strings.Repeat("ก", 11), 1)
	assert.Equal(t, "Input too long (max 10 characters)", resp.Description)
	assert.Empty(t, gen.calls)

	gen.replies = map[string]func(ai.Request) (string, error){
		"intent": reply(`{"intent":"not_travel","description":"x"}`),
	}
	resp = p.MakePlan(context.Background(), strings.Repeat("ก", 10), 1)
	assert.Equal(t, "x", resp.Description)
}

func TestMakePlanIntentRejected(t *testing.T) {
	gen := &stageGenerator{replies: map[string]func(ai.Request) (string, error){
		"intent": reply(`{"intent":"travel_unreasonable","description":"A day trip to the moon is not possible"}`),
	}}
	enricher := &recordingEnricher{}
	resp := newTravelPlanner(t, gen, enricher).MakePlan(context.Background(), "day trip to the moon", 1)

	assert.Equal(t, plan.StatusError, resp.Status)
	assert.Equal(t, "A day trip to the moon is not possible", resp.Description)
	assert.Equal(t, []string{"intent"}, gen.stages())
	assert.Zero(t, enricher.calls)
}

func TestMakePlanOptionAndHotelCounts(t *testing.T) {
	for n := 1; n <= 3; n++ {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			gen := &stageGenerator{replies: map[string]func(ai.Request) (string, error){
				"intent":   reply(reasonable),
				"evidence": reply("Wat Arun | 08:00-18:00 | 200 THB"),
				"create":   reply(planJSON(t, n)),
			}}
			enricher := &recordingEnricher{}
			resp := newTravelPlanner(t, gen, enricher).MakePlan(context.Background(), "3 days in Bangkok", n)

			require.Equal(t, plan.StatusSuccess, resp.Status, resp.Description)
			assert.Len(t, resp.PlanOutput, n)
			require.Len(t, resp.HotelOutput, n)
			for i, opt := range resp.PlanOutput {
				assert.LessOrEqual(t, len(resp.HotelOutput[i]), plan.MaxHotelsPerOption)
				for _, h := range resp.HotelOutput[i] {
					assert.Equal(t, plan.KindLodging, h.Type)
				}
				for _, day := range opt.Itinerary {
					for k, s := range day.Stops {
						assert.NotEqual(t, plan.KindLodging, s.Places.Type)
						assert.Equal(t, k+1, s.OrderInDay)
					}
				}
			}
			assert.Equal(t, []string{"intent", "evidence", "create"}, gen.stages())
			assert.Equal(t, "low", gen.call("intent").Model)
			assert.Equal(t, "med", gen.call("evidence").Model)
			assert.Contains(t, gen.call("evidence").Prompt, "[1] Wat Arun\nhttps://example.com/arun")
			assert.Nil(t, gen.call("evidence").Schema)
			assert.Equal(t, "high", gen.call("create").Model)
			assert.Contains(t, gen.call("create").Prompt, "Wat Arun | 08:00-18:00")
			assert.Contains(t, gen.call("create").Prompt, "2025-09-01")
			assert.Equal(t, 1, enricher.calls)
		})
	}
}

func TestMakePlanClampsOptions(t *testing.T) {
	gen := &stageGenerator{replies: map[string]func(ai.Request) (string, error){
		"intent":   reply(reasonable),
		"evidence": reply(""),
		"create":   reply(planJSON(t, 3)),
	}}
	resp := newTravelPlanner(t, gen, &recordingEnricher{}).MakePlan(context.Background(), "Bangkok", 9)
	require.Equal(t, plan.StatusSuccess, resp.Status)
	assert.Len(t, resp.PlanOutput, 3)
	assert.Contains(t, gen.call("create").Prompt, "exactly 3 entries")
}

func TestMakePlanEvidenceFailureUsesSentinel(t *testing.T) {
	gen := &stageGenerator{replies: map[string]func(ai.Request) (string, error){
		"intent":   reply(reasonable),
		"evidence": fail(&ai.GenError{Kind: ai.KindUpstream, Model: "med", Status: 500}),
		"create":   reply(planJSON(t, 1)),
	}}
	resp := newTravelPlanner(t, gen, &recordingEnricher{}).MakePlan(context.Background(), "Bangkok", 1)
	require.Equal(t, plan.StatusSuccess, resp.Status)
	assert.Contains(t, gen.call("create").Prompt, ai.NoEvidence)
}

func TestMakePlanResearchFromWebResults(t *testing.T) {
	gen := &stageGenerator{replies: map[string]func(ai.Request) (string, error){
		"intent":   reply(reasonable),
		"evidence": reply("[Attractions]\n- Wat Arun | 08:00-18:00 [1]"),
		"create":   reply(planJSON(t, 1)),
	}}
	web := bangkokWeb()
	resp := newTravelPlannerWithWeb(t, gen, web, &recordingEnricher{}).MakePlan(context.Background(), "2 days in Bangkok", 1)

	require.Equal(t, plan.StatusSuccess, resp.Status, resp.Description)
	assert.ElementsMatch(t, ai.ResearchQueries("2 days in Bangkok"), web.queries)
	evidence := gen.call("evidence")
	assert.Equal(t, ai.SearchInstructions, evidence.System)
	assert.Contains(t, evidence.Prompt, "Temple of Dawn, open 08:00-18:00")
	assert.Contains(t, evidence.Prompt, "2025-09-01")
	assert.Contains(t, gen.call("create").Prompt, "Wat Arun | 08:00-18:00 [1]")
}

func TestMakePlanWithoutWebResultsSkipsResearch(t *testing.T) {
	cases := []struct {
		name string
		web  search.Searcher
	}{
		{"disabled", nil},
		{"no results", &stubWeb{}},
		{"search failed", &stubWeb{err: errors.New("quota exceeded")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &stageGenerator{replies: map[string]func(ai.Request) (string, error){
				"intent": reply(reasonable),
				"create": reply(planJSON(t, 1)),
			}}
			resp := newTravelPlannerWithWeb(t, gen, tc.web, &recordingEnricher{}).MakePlan(context.Background(), "Bangkok", 1)
			require.Equal(t, plan.StatusSuccess, resp.Status, resp.Description)
			assert.Equal(t, []string{"intent", "create"}, gen.stages())
			assert.Contains(t, gen.call("create").Prompt, ai.NoEvidence)
		})
	}
}

func TestMakePlanTooFewOptionsIsSchemaError(t *testing.T) {
	gen := &stageGenerator{replies: map[string]func(ai.Request) (string, error){
		"intent":   reply(reasonable),
		"evidence": reply("facts"),
		"create":   reply(planJSON(t, 1)),
	}}
	enricher := &recordingEnricher{}
	resp := newTravelPlanner(t, gen, enricher).MakePlan(context.Background(), "Bangkok", 2)
	assert.Equal(t, plan.StatusError, resp.Status)
	assert.Equal(t, "Schema Validation Error", resp.Description)
	assert.Zero(t, enricher.calls)
}

func TestMakePlanGenerationFailures(t *testing.T) {
	cases := []struct {
		name   string
		create func(ai.Request) (string, error)
		want   string
	}{
		{"empty", reply("  "), "Output Error"},
		{"schema", reply(`{"status":"success","description":"x","plan_output":[],"hotel_output":[],"extra":1}`), "Schema Validation Error"},
		{"unavailable", fail(&ai.GenError{Kind: ai.KindUnavailable, Model: "high", Status: 503}), "Upstream Unavailable: model service returned 503"},
		{"upstream", fail(&ai.GenError{Kind: ai.KindUpstream, Model: "high", Status: 500}), "Upstream Error: model service returned 500"},
		{"model error", reply(`{"status":"error","description":"cannot plan","plan_output":[{"name":"x","overview":null,"style":null,"itinerary":[],"warnings":[]}],"hotel_output":null}`), "cannot plan"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &stageGenerator{replies: map[string]func(ai.Request) (string, error){
				"intent":   reply(reasonable),
				"evidence": reply("facts"),
				"create":   tc.create,
			}}
			resp := newTravelPlanner(t, gen, &recordingEnricher{}).MakePlan(context.Background(), "Bangkok", 1)
			assert.Equal(t, plan.StatusError, resp.Status)
			assert.Equal(t, tc.want, resp.Description)
			assert.Nil(t, resp.PlanOutput)
			assert.Nil(t, resp.HotelOutput)
		})
	}
}

func TestMakePlanIntentFailureIsOutputError(t *testing.T) {
	gen := &stageGenerator{replies: map[string]func(ai.Request) (string, error){
		"intent": reply(`{"intent":"maybe","description":"?"}`),
	}}
	resp := newTravelPlanner(t, gen, &recordingEnricher{}).MakePlan(context.Background(), "Bangkok", 1)
	assert.Equal(t, "Output Error", resp.Description)
	assert.Equal(t, []string{"intent"}, gen.stages())
}

func TestMakePlanRecoversFromPanic(t *testing.T) {
	gen := &stageGenerator{replies: map[string]func(ai.Request) (string, error){
		"intent":   reply(reasonable),
		"evidence": reply("facts"),
		"create":   reply(planJSON(t, 1)),
	}}
	enricher := &recordingEnricher{fn: func(*plan.Response) { panic("boom") }}
	resp := newTravelPlanner(t, gen, enricher).MakePlan(context.Background(), "Bangkok", 1)
	assert.Equal(t, plan.StatusError, resp.Status)
	assert.Equal(t, "Output Error", resp.Description)
}

const olddata = `{"status":"success","description":"Bangkok","plan_output":[{"name":"Option 1","itinerary":[{"day_index":1,"stops":[
 {"order_in_day":1,"places":{"type":"attraction","name":"Wat Arun","coordinates":{"lat":13.7437,"lng":100.4888},
  "google_maps_url":"https://maps.example/arun","image_url":["https://img.example/arun.jpg"]}}]}],"warnings":[]}],
 "hotel_output":[[]]}`

func TestChangePlanEmptyOlddata(t *testing.T) {
	gen := &stageGenerator{}
	resp := newTravelPlanner(t, gen, &recordingEnricher{}).ChangePlan(context.Background(), "add a cafe", "  ")
	assert.Equal(t, "Input Error: olddata is empty", resp.Description)
	assert.Empty(t, gen.calls)
}

func TestChangePlanRestoresCachedLookups(t *testing.T) {
	revised := plan.Response{
		Status:      plan.StatusSuccess,
		Description: "Bangkok revised",
		PlanOutput: []plan.Option{
			{
				Name: ptr("Option 1"),
				Itinerary: []plan.Day{{DayIndex: 1, Stops: []plan.Stop{
					{OrderInDay: 1, Places: plan.Place{Type: plan.KindAttraction, Name: "Wat Arun", IsNewPlan: ptr(plan.OriginCarried)}},
					{OrderInDay: 2, Places: plan.Place{Type: plan.KindDining, Name: "Blue Whale Cafe", IsNewPlan: ptr(plan.OriginNew)}},
				}}},
				Warnings: []string{},
			},
			sampleOption("extra option the reviser should not return"),
		},
		HotelOutput: [][]plan.Place{{}},
	}
	raw, err := json.Marshal(revised)
	require.NoError(t, err)

	gen := &stageGenerator{replies: map[string]func(ai.Request) (string, error){
		"revise": reply(string(raw)),
	}}
	var enrichedNames []string
	enricher := &recordingEnricher{fn: func(r *plan.Response) {
		r.EachPlace(func(p *plan.Place) {
			if p.NeedsEnrichment() {
				enrichedNames = append(enrichedNames, p.Name)
			}
		})
	}}

	resp := newTravelPlanner(t, gen, enricher).ChangePlan(context.Background(), "", olddata)
	require.Equal(t, plan.StatusSuccess, resp.Status, resp.Description)
	require.Len(t, resp.PlanOutput, 1)

	arun := resp.PlanOutput[0].Itinerary[0].Stops[0].Places
	assert.Equal(t, &plan.Coordinates{Lat: 13.7437, Lng: 100.4888}, arun.Coordinates)
	require.NotNil(t, arun.GoogleMapsURL)
	assert.Equal(t, "https://maps.example/arun", *arun.GoogleMapsURL)
	assert.Equal(t, []string{"https://img.example/arun.jpg"}, arun.ImageURL)

	cafe := resp.PlanOutput[0].Itinerary[0].Stops[1].Places
	assert.Nil(t, cafe.Coordinates)
	assert.Equal(t, []string{"Blue Whale Cafe"}, enrichedNames)

	prompt := gen.call("revise").Prompt
	assert.NotContains(t, prompt, "13.7437")
	assert.NotContains(t, prompt, "img.example")
	assert.Contains(t, prompt, ai.AutoFixInstruction)
	assert.Equal(t, []string{"revise"}, gen.stages())
}

func TestChangePlanUnparseableOlddataPassesThrough(t *testing.T) {
	gen := &stageGenerator{replies: map[string]func(ai.Request) (string, error){
		"revise": reply(planJSON(t, 1)),
	}}
	resp := newTravelPlanner(t, gen, &recordingEnricher{}).ChangePlan(context.Background(), "make it cheaper", "plain text plan")
	require.Equal(t, plan.StatusSuccess, resp.Status)
	assert.Contains(t, gen.call("revise").Prompt, "plain text plan")
	assert.Contains(t, gen.call("revise").Prompt, "make it cheaper")
}

func TestChangePlanErrorSkipsEnrichment(t *testing.T) {
	gen := &stageGenerator{replies: map[string]func(ai.Request) (string, error){
		"revise": reply(""),
	}}
	enricher := &recordingEnricher{}
	resp := newTravelPlanner(t, gen, enricher).ChangePlan(context.Background(), "x", olddata)
	assert.Equal(t, "Output Error", resp.Description)
	assert.Zero(t, enricher.calls)
}

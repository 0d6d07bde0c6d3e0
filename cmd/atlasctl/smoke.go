package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type smokeConfig struct {
	BaseURL string
	Timeout time.Duration
	Full    bool
}

type smokeResult struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type smokeCase struct {
	Name string
	Run  func(ctx context.Context, r *smokeRunner) smokeResult
}

type smokeRunner struct {
	cfg   smokeConfig
	httpc *http.Client
	out   io.Writer
}

func newSmokeCmd() *cobra.Command {
	var cfg smokeConfig
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Check a running API",
		Long: `Sends a fixed set of requests to a running API and prints one
PASS/FAIL/SKIP line per check. Only --full calls the model.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
			r := &smokeRunner{cfg: cfg, httpc: &http.Client{Timeout: cfg.Timeout}, out: cmd.OutOrStdout()}
			results := r.RunAll(cmd.Context())

			pass, fail, skipped := 0, 0, 0
			for _, res := range results {
				switch res.Status {
				case statusPass:
					pass++
				case statusFail:
					fail++
				case statusSkip:
					skipped++
				}
			}
			fmt.Fprintf(r.out, "PASS=%d FAIL=%d SKIP=%d\n", pass, fail, skipped)
			if fail > 0 {
				return fmt.Errorf("%d smoke checks failed", fail)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "base-url", "http://localhost:8000", "API base URL")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", 150*time.Second, "per-request timeout")
	cmd.Flags().BoolVar(&cfg.Full, "full", false, "also run a real /makeplan generation")
	return cmd
}

func (r *smokeRunner) RunAll(ctx context.Context) []smokeResult {
	cases := r.cases()
	results := make([]smokeResult, 0, len(cases))
	for _, tc := range cases {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)

		fmt.Fprintf(r.out, "%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Fprintf(r.out, " (%s)", res.Latency.Round(time.Millisecond))
		}
		if res.Note != "" {
			fmt.Fprintf(r.out, " - %s", res.Note)
		}
		fmt.Fprintln(r.out)
	}
	return results
}

func (r *smokeRunner) cases() []smokeCase {
	base := r.cfg.BaseURL
	return []smokeCase{
		httpCase("Health", http.MethodGet, base+"/health", nil, http.StatusOK, expectField("status", "ok")),
		httpCase("Makeplan: empty input is an error plan", http.MethodPost, base+"/makeplan",
			map[string]any{"input": ""}, http.StatusOK, expectField("status", "error")),
		httpCase("Makeplan: options out of range", http.MethodPost, base+"/makeplan",
			map[string]any{"input": "x", "options": 4}, http.StatusBadRequest, nil),
		httpCase("Plan: gibberish rejected", http.MethodPost, base+"/plan",
			map[string]any{"input": "aaaaaaaa"}, http.StatusUnprocessableEntity, expectField("error", "invalid_input")),
		httpCase("Weather: invalid days", http.MethodPost, base+"/weather",
			map[string]any{"lat": 13.75, "lng": 100.5, "days": 30}, http.StatusBadRequest, nil),
		httpCase("Weather: Bangkok 3 days", http.MethodPost, base+"/weather",
			map[string]any{"lat": 13.75, "lng": 100.5, "days": 3}, http.StatusOK, nil),
		{
			Name: "Makeplan: one option generated",
			Run: func(ctx context.Context, r *smokeRunner) smokeResult {
				if !r.cfg.Full {
					return smokeResult{Status: statusSkip, Note: "--full not set"}
				}
				return httpCase("", http.MethodPost, base+"/makeplan",
					map[string]any{"input": "2 days in Bangkok, street food and temples", "options": 1},
					http.StatusOK, expectField("status", "success")).Run(ctx, r)
			},
		},
	}
}

// httpCase sends body as JSON and passes when the status matches and check
// (if any) accepts the decoded body.
func httpCase(name, method, url string, body any, want int, check func(map[string]any) error) smokeCase {
	return smokeCase{
		Name: name,
		Run: func(ctx context.Context, r *smokeRunner) smokeResult {
			var reader io.Reader
			if body != nil {
				b, _ := json.Marshal(body)
				reader = strings.NewReader(string(b))
			}
			req, err := http.NewRequestWithContext(ctx, method, url, reader)
			if err != nil {
				return smokeResult{Status: statusFail, Note: err.Error()}
			}
			req.Header.Set("Content-Type", "application/json")

			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return smokeResult{Status: statusFail, Note: err.Error()}
			}
			defer resp.Body.Close()
			raw, _ := io.ReadAll(resp.Body)
			latency := time.Since(start)

			if resp.StatusCode != want {
				return smokeResult{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d want=%d", resp.StatusCode, want)}
			}
			if check != nil {
				var decoded map[string]any
				if err := json.Unmarshal(raw, &decoded); err != nil {
					return smokeResult{Status: statusFail, Latency: latency, Note: "body is not a JSON object"}
				}
				if err := check(decoded); err != nil {
					return smokeResult{Status: statusFail, Latency: latency, Note: err.Error()}
				}
			}
			return smokeResult{Status: statusPass, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
		},
	}
}

func expectField(key, want string) func(map[string]any) error {
	return func(body map[string]any) error {
		if got, _ := body[key].(string); got != want {
			return fmt.Errorf("%s=%v want=%s", key, body[key], want)
		}
		return nil
	}
}

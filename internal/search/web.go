// README: Web search through the Custom Search JSON API. Results ground the
// evidence digest that plan creation is given.
package search

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

const (
	resultsPerQuery = 5
	maxQueryRunes   = 200
)

// Result is one web hit.
type Result struct {
	Title   string
	Link    string
	Snippet string
}

// Web runs Thailand-localized web queries against one search engine.
type Web struct {
	svc *customsearch.Service
	cx  string
}

// NewWeb creates a web searcher for the given engine id.
func NewWeb(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*Web, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom search client: %w", err)
	}
	return &Web{svc: svc, cx: cx}, nil
}

// Search returns up to five results for query.
func (w *Web) Search(ctx context.Context, query string) ([]Result, error) {
	res, err := w.svc.Cse.List().
		Q(truncate(query, maxQueryRunes)).
		Cx(w.cx).
		Gl("th").
		Num(resultsPerQuery).
		Safe("active").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("custom search error: %w", err)
	}
	out := make([]Result, 0, len(res.Items))
	for _, item := range res.Items {
		if item.Link == "" {
			continue
		}
		out = append(out, Result{
			Title:   strings.TrimSpace(item.Title),
			Link:    item.Link,
			Snippet: strings.Join(strings.Fields(item.Snippet), " "),
		})
	}
	return out, nil
}

// Searcher is the single-query contract SearchAll fans out over.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// SearchAll runs every query concurrently and merges the results in query
// order, dropping repeated links. It fails only when every query failed.
func SearchAll(ctx context.Context, s Searcher, queries []string) ([]Result, error) {
	found := make([][]Result, len(queries))
	errs := make([]error, len(queries))
	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			found[i], errs[i] = s.Search(ctx, q)
			return nil
		})
	}
	_ = g.Wait()

	var out []Result
	seen := make(map[string]bool)
	failed := 0
	for i := range queries {
		if errs[i] != nil {
			failed++
			continue
		}
		for _, r := range found[i] {
			if seen[r.Link] {
				continue
			}
			seen[r.Link] = true
			out = append(out, r)
		}
	}
	if len(queries) > 0 && failed == len(queries) {
		return nil, errs[0]
	}
	return out, nil
}

// Format renders results as a numbered source list for a prompt.
func Format(results []Result) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s\n%s\n", i+1, r.Title, r.Link)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "%s\n", r.Snippet)
		}
	}
	return strings.TrimSpace(b.String())
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// README: Place name to coordinates resolution (Places text search, map redirect scraping).
package maps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"atlas/internal/plan"
)

// ErrNotFound is returned when a locator has no coordinates for a name.
var ErrNotFound = errors.New("maps: location not found")

// PlacesLocator resolves names with the Places text search API.
type PlacesLocator struct {
	client *maps.Client
}

// NewPlacesLocator creates a PlacesLocator with the given API key.
func NewPlacesLocator(apiKey string, opts ...maps.ClientOption) (*PlacesLocator, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesLocator{client: client}, nil
}

// Locate returns the location of the top text search hit for name.
func (l *PlacesLocator) Locate(ctx context.Context, name string) (*plan.Coordinates, error) {
	resp, err := l.client.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    name,
		Language: "th",
		Region:   "TH",
	})
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, ErrNotFound
	}
	loc := resp.Results[0].Geometry.Location
	return &plan.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}

const (
	defaultSearchURL = "https://www.google.com/maps/search/"
	redirectTimeout  = 10 * time.Second
	maxRedirectBody  = 1 << 20
)

var centerPattern = regexp.MustCompile(`center=(.*?)&`)

// RedirectLocator reads the map center out of the unauthenticated map search
// page. It needs no API key.
type RedirectLocator struct {
	client  *http.Client
	baseURL string
}

// NewRedirectLocator creates a RedirectLocator. An empty baseURL targets the
// public map search page.
func NewRedirectLocator(baseURL string) *RedirectLocator {
	if baseURL == "" {
		baseURL = defaultSearchURL
	}
	return &RedirectLocator{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: redirectTimeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (l *RedirectLocator) Locate(ctx context.Context, name string) (*plan.Coordinates, error) {
	u := l.baseURL + "?api=1&query=" + url.QueryEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("map search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRedirectBody))
	if err != nil {
		return nil, fmt.Errorf("map search read: %w", err)
	}
	if c, ok := parseCenter(resp.Header.Get("Location")); ok {
		return c, nil
	}
	if c, ok := parseCenter(string(body)); ok {
		return c, nil
	}
	return nil, ErrNotFound
}

func parseCenter(s string) (*plan.Coordinates, bool) {
	m := centerPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	parts := strings.Split(m[1], "%2C")
	if len(parts) != 2 {
		return nil, false
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, false
	}
	lng, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, false
	}
	return &plan.Coordinates{Lat: lat, Lng: lng}, true
}

// ChainLocator tries each locator in order and returns the first hit.
type ChainLocator []interface {
	Locate(ctx context.Context, name string) (*plan.Coordinates, error)
}

func (c ChainLocator) Locate(ctx context.Context, name string) (*plan.Coordinates, error) {
	var errs []error
	for _, l := range c {
		coords, err := l.Locate(ctx, name)
		if err == nil && coords != nil {
			return coords, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil, ErrNotFound
	}
	return nil, errors.Join(errs...)
}

// README: Best-effort enrichment of new places (coordinates, map link, images).
package enrich

import (
	"context"
	"log/slog"
	"net/url"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"atlas/internal/config"
	"atlas/internal/plan"
)

const mapSearchURL = "https://www.google.com/maps/search/?api=1&query="

// FallbackImages is used whenever an image lookup fails.
var FallbackImages = []string{
	"https://upload.wikimedia.org/wikipedia/commons/7/70/The_Blue_Marble%2C_AS17-148-22727.jpg",
	"https://upload.wikimedia.org/wikipedia/commons/7/70/The_Blue_Marble%2C_AS17-148-22727.jpg",
	"https://upload.wikimedia.org/wikipedia/commons/7/70/The_Blue_Marble%2C_AS17-148-22727.jpg",
}

// Locator resolves a place name to coordinates.
type Locator interface {
	Locate(ctx context.Context, name string) (*plan.Coordinates, error)
}

// ImageSearcher returns up to three image URLs for a place name.
type ImageSearcher interface {
	Images(ctx context.Context, name string) ([]string, error)
}

// Lookup is the cacheable result of external lookups for one name.
type Lookup struct {
	Coordinates *plan.Coordinates `json:"coordinates,omitempty"`
	Images      []string          `json:"images,omitempty"`
}

// LookupCache stores lookups across requests.
type LookupCache interface {
	Get(ctx context.Context, name string) (*Lookup, bool, error)
	Put(ctx context.Context, name string, l Lookup) error
}

// MapURL derives the map search link for a name.
func MapURL(name string) string {
	return mapSearchURL + url.QueryEscape(name)
}

// Enricher fills missing enrichment fields of new or untagged places.
type Enricher struct {
	locator     Locator
	images      ImageSearcher
	cache       LookupCache
	limiter     *rate.Limiter
	concurrency int
	logger      *slog.Logger
}

// NewEnricher builds an Enricher. locator, images and cache may be nil;
// a nil images disables image lookups entirely.
func NewEnricher(locator Locator, images ImageSearcher, cache LookupCache, cfg config.EnrichConfig, logger *slog.Logger) *Enricher {
	limit := rate.Inf
	if cfg.LookupRPS > 0 {
		limit = rate.Limit(cfg.LookupRPS)
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enricher{
		locator:     locator,
		images:      images,
		cache:       cache,
		limiter:     rate.NewLimiter(limit, concurrency),
		concurrency: concurrency,
		logger:      logger,
	}
}

// EnrichResponse enriches every place that needs it. Lookups for distinct
// names run in parallel, bounded by the configured concurrency. Failures
// are logged and never returned.
func (e *Enricher) EnrichResponse(ctx context.Context, resp *plan.Response) {
	byName := map[string][]*plan.Place{}
	var order []string
	resp.EachPlace(func(p *plan.Place) {
		if !p.NeedsEnrichment() {
			return
		}
		if _, ok := byName[p.Name]; !ok {
			order = append(order, p.Name)
		}
		byName[p.Name] = append(byName[p.Name], p)
	})
	if len(order) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, name := range order {
		places := byName[name]
		g.Go(func() error {
			e.enrich(gctx, name, places)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Enricher) enrich(ctx context.Context, name string, places []*plan.Place) {
	needCoords, needImages := false, false
	for _, p := range places {
		needCoords = needCoords || p.Coordinates == nil
		needImages = needImages || (e.images != nil && len(p.ImageURL) == 0)
	}

	var found Lookup
	if e.cache != nil && (needCoords || needImages) {
		if cached, ok, err := e.cache.Get(ctx, name); err != nil {
			e.logger.WarnContext(ctx, "lookup cache read failed", "name", name, "error", err)
		} else if ok {
			found = *cached
		}
	}
	fresh := false

	if needCoords && found.Coordinates == nil && e.locator != nil {
		if err := e.limiter.Wait(ctx); err == nil {
			coords, err := e.locator.Locate(ctx, name)
			if err != nil {
				e.logger.WarnContext(ctx, "coordinates lookup failed", "name", name, "error", err)
			} else if coords != nil {
				found.Coordinates = coords
				fresh = true
			}
		}
	}

	var images []string
	if needImages {
		images = found.Images
		if len(images) == 0 {
			images = FallbackImages
			if err := e.limiter.Wait(ctx); err == nil {
				urls, err := e.images.Images(ctx, name)
				switch {
				case err != nil:
					e.logger.WarnContext(ctx, "image lookup failed", "name", name, "error", err)
				case len(urls) > 0:
					images = urls
					found.Images = urls
					fresh = true
				}
			}
		}
	}

	if fresh && e.cache != nil {
		if err := e.cache.Put(ctx, name, found); err != nil {
			e.logger.WarnContext(ctx, "lookup cache write failed", "name", name, "error", err)
		}
	}

	for _, p := range places {
		if p.Coordinates == nil && found.Coordinates != nil {
			c := *found.Coordinates
			p.Coordinates = &c
		}
		if p.GoogleMapsURL == nil || *p.GoogleMapsURL == "" {
			u := MapURL(p.Name)
			p.GoogleMapsURL = &u
		}
		if len(p.ImageURL) == 0 && images != nil {
			p.ImageURL = append([]string(nil), images...)
		}
	}
}

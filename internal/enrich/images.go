package enrich

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// ErrNoImages is returned when a search succeeds with zero results.
var ErrNoImages = errors.New("enrich: no images found")

// CustomSearchImages looks up place photos through the Custom Search JSON API.
type CustomSearchImages struct {
	svc *customsearch.Service
	cx  string
}

// NewCustomSearchImages creates an image searcher for the given engine id.
func NewCustomSearchImages(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*CustomSearchImages, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom search client: %w", err)
	}
	return &CustomSearchImages{svc: svc, cx: cx}, nil
}

// Images returns up to three safe-search image links for name.
func (c *CustomSearchImages) Images(ctx context.Context, name string) ([]string, error) {
	res, err := c.svc.Cse.List().
		Q(name).
		Cx(c.cx).
		SearchType("image").
		Num(3).
		Safe("active").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("custom search error: %w", err)
	}
	var links []string
	for _, item := range res.Items {
		if item.Link != "" {
			links = append(links, item.Link)
		}
	}
	if len(links) == 0 {
		return nil, ErrNoImages
	}
	return links, nil
}

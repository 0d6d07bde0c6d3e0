// README: Per-revision coordinate cache (extract and strip before revise, restore after).
package enrich

import (
	"bytes"
	"encoding/json"
	"fmt"

	"atlas/internal/plan"
)

// Entry holds the enrichment fields of one place.
type Entry struct {
	Coordinates *plan.Coordinates
	MapURL      string
	Images      []string
}

// Cache maps a place name to its previously enriched fields.
// It lives for one revision request only.
type Cache map[string]Entry

var enrichedFields = []string{"coordinates", "google_maps_url", "image_url"}

// ExtractAndStrip records the enrichment fields of every named place in the
// prior plan text and nulls them in the returned text. When raw is not a JSON
// object the input is returned untouched with an empty cache and the parse error.
func ExtractAndStrip(raw string) (string, Cache, error) {
	cache := Cache{}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return raw, cache, fmt.Errorf("enrich: parse prior plan: %w", err)
	}

	for _, opt := range asSlice(data["plan_output"]) {
		for _, day := range asSlice(asMap(opt)["itinerary"]) {
			for _, stop := range asSlice(asMap(day)["stops"]) {
				cache.strip(asMap(asMap(stop)["places"]))
			}
		}
	}
	for _, hotels := range asSlice(data["hotel_output"]) {
		for _, h := range asSlice(hotels) {
			cache.strip(asMap(h))
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return raw, Cache{}, fmt.Errorf("enrich: encode stripped plan: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), cache, nil
}

func (c Cache) strip(place map[string]any) {
	if place == nil {
		return
	}
	name, _ := place["name"].(string)
	if name == "" {
		return
	}
	e := Entry{Coordinates: toCoordinates(place["coordinates"])}
	e.MapURL, _ = place["google_maps_url"].(string)
	for _, img := range asSlice(place["image_url"]) {
		if s, ok := img.(string); ok {
			e.Images = append(e.Images, s)
		}
	}
	c[name] = e
	for _, f := range enrichedFields {
		place[f] = nil
	}
}

// Restore copies cached fields back onto places whose name matches a key
// exactly. Empty cached fields are not copied. It returns the number of
// places that matched.
func (c Cache) Restore(resp *plan.Response) int {
	matched := 0
	resp.EachPlace(func(p *plan.Place) {
		e, ok := c[p.Name]
		if !ok {
			return
		}
		matched++
		if e.Coordinates != nil {
			coords := *e.Coordinates
			p.Coordinates = &coords
		}
		if e.MapURL != "" {
			u := e.MapURL
			p.GoogleMapsURL = &u
		}
		if len(e.Images) > 0 {
			p.ImageURL = append([]string(nil), e.Images...)
		}
	})
	return matched
}

func toCoordinates(v any) *plan.Coordinates {
	m := asMap(v)
	if m == nil {
		return nil
	}
	lat, okLat := toFloat(m["lat"])
	lng, okLng := toFloat(m["lng"])
	if !okLat || !okLng {
		return nil
	}
	return &plan.Coordinates{Lat: lat, Lng: lng}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	}
	return 0, false
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

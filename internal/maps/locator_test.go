package maps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"

	"atlas/internal/plan"
)

func TestRedirectLocatorReadsLocationHeader(t *testing.T) {
	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Location", "/maps/place/x?center=13.7437%2C100.4888&zoom=15")
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	c, err := NewRedirectLocator(srv.URL+"/").Locate(context.Background(), "Wat Arun")
	require.NoError(t, err)
	assert.Equal(t, &plan.Coordinates{Lat: 13.7437, Lng: 100.4888}, c)
	assert.Equal(t, "Wat Arun", gotQuery)
	assert.Equal(t, "Mozilla/5.0", gotUA)
}

func TestRedirectLocatorReadsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<meta content="https://maps.google.com/maps/api/staticmap?center=18.7883%2C98.9853&amp;zoom=12">`))
	}))
	defer srv.Close()

	c, err := NewRedirectLocator(srv.URL+"/").Locate(context.Background(), "Chiang Mai")
	require.NoError(t, err)
	assert.InDelta(t, 18.7883, c.Lat, 1e-9)
	assert.InDelta(t, 98.9853, c.Lng, 1e-9)
}

func TestRedirectLocatorNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("nothing here"))
	}))
	defer srv.Close()

	_, err := NewRedirectLocator(srv.URL+"/").Locate(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlacesLocatorTopResult(t *testing.T) {
	var gotPath, gotRegion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRegion = r.URL.Query().Get("region")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","results":[
			{"name":"Wat Pho","geometry":{"location":{"lat":13.7465,"lng":100.4927}}},
			{"name":"Other","geometry":{"location":{"lat":1,"lng":2}}}]}`))
	}))
	defer srv.Close()

	l, err := NewPlacesLocator("test-key", maps.WithBaseURL(srv.URL))
	require.NoError(t, err)

	c, err := l.Locate(context.Background(), "Wat Pho")
	require.NoError(t, err)
	assert.Equal(t, &plan.Coordinates{Lat: 13.7465, Lng: 100.4927}, c)
	assert.Equal(t, "/maps/api/place/textsearch/json", gotPath)
	assert.Equal(t, "TH", gotRegion)
}

func TestPlacesLocatorZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer srv.Close()

	l, err := NewPlacesLocator("test-key", maps.WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = l.Locate(context.Background(), "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

type locatorFunc func(ctx context.Context, name string) (*plan.Coordinates, error)

func (f locatorFunc) Locate(ctx context.Context, name string) (*plan.Coordinates, error) {
	return f(ctx, name)
}

func TestChainLocator(t *testing.T) {
	boom := errors.New("boom")
	hit := &plan.Coordinates{Lat: 1, Lng: 2}

	chain := ChainLocator{
		locatorFunc(func(context.Context, string) (*plan.Coordinates, error) { return nil, boom }),
		locatorFunc(func(context.Context, string) (*plan.Coordinates, error) { return hit, nil }),
	}
	c, err := chain.Locate(context.Background(), "x")
	require.NoError(t, err)
	assert.Same(t, hit, c)

	_, err = ChainLocator{chain[0]}.Locate(context.Background(), "x")
	assert.ErrorIs(t, err, boom)

	_, err = ChainLocator{}.Locate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

// README: Daily forecast lookup against the Open-Meteo API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	MaxDays = 14

	dailyFields = "temperature_2m_max,temperature_2m_min,precipitation_probability_max,precipitation_sum"
)

// ErrInvalidRequest is returned for out-of-range coordinates or day counts.
var ErrInvalidRequest = errors.New("weather: invalid request")

// Day is one forecast day. Fields are nil when the upstream has no value.
type Day struct {
	Date                 string   `json:"date"`
	TempMaxC             *float64 `json:"temp_max_c"`
	TempMinC             *float64 `json:"temp_min_c"`
	PrecipProbabilityMax *float64 `json:"precip_probability_max"`
	PrecipitationMM      *float64 `json:"precipitation_mm"`
}

type Forecast struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Days      []Day   `json:"days"`
}

type upstreamForecast struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Daily     struct {
		Time          []string   `json:"time"`
		TempMax       []*float64 `json:"temperature_2m_max"`
		TempMin       []*float64 `json:"temperature_2m_min"`
		PrecipProbMax []*float64 `json:"precipitation_probability_max"`
		PrecipSum     []*float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

// Client calls the forecast endpoint with bounded retries.
type Client struct {
	http    *retryablehttp.Client
	baseURL string
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 2
	c.RetryWaitMin = 200 * time.Millisecond
	c.RetryWaitMax = 2 * time.Second
	c.HTTPClient.Timeout = 10 * time.Second
	c.Logger = nil
	if logger != nil {
		c.Logger = logger
	}
	return &Client{http: c, baseURL: baseURL}
}

// Validate checks the request ranges.
func Validate(lat, lng float64, days int) error {
	switch {
	case lat < -90 || lat > 90:
		return fmt.Errorf("%w: lat must be within [-90, 90]", ErrInvalidRequest)
	case lng < -180 || lng > 180:
		return fmt.Errorf("%w: lng must be within [-180, 180]", ErrInvalidRequest)
	case days < 1 || days > MaxDays:
		return fmt.Errorf("%w: days must be within [1, %d]", ErrInvalidRequest, MaxDays)
	}
	return nil
}

// Forecast returns the daily forecast for the next days at lat/lng.
func (c *Client) Forecast(ctx context.Context, lat, lng float64, days int) (*Forecast, error) {
	if err := Validate(lat, lng, days); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("daily", dailyFields)
	q.Set("forecast_days", strconv.Itoa(days))
	q.Set("timezone", "auto")

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather upstream status %d", resp.StatusCode)
	}

	var up upstreamForecast
	if err := json.NewDecoder(resp.Body).Decode(&up); err != nil {
		return nil, fmt.Errorf("weather decode: %w", err)
	}

	out := &Forecast{
		Latitude:  up.Latitude,
		Longitude: up.Longitude,
		Timezone:  up.Timezone,
		Days:      make([]Day, 0, len(up.Daily.Time)),
	}
	for i, date := range up.Daily.Time {
		out.Days = append(out.Days, Day{
			Date:                 date,
			TempMaxC:             at(up.Daily.TempMax, i),
			TempMinC:             at(up.Daily.TempMin, i),
			PrecipProbabilityMax: at(up.Daily.PrecipProbMax, i),
			PrecipitationMM:      at(up.Daily.PrecipSum, i),
		})
	}
	return out, nil
}

func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

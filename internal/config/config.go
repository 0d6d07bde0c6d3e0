// README: Config loader with env defaults for HTTP, model tiers, lookups, Redis, and Postgres.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned when no Gemini key is present.
var ErrMissingAPIKey = errors.New("config: GEMINI_API_KEY or GOOGLE_API_KEY is required")

type AIConfig struct {
	APIKey   string
	High     string
	Med      string
	Low      string
	Task     string
	Fallback string
}

type EnrichConfig struct {
	Concurrency int
	LookupRPS   float64
	LookupTTL   time.Duration
}

type Config struct {
	HTTP struct {
		Addr            string
		PipelineTimeout time.Duration
		CORSOrigins     []string
	}
	AI     AIConfig
	Search struct {
		APIKey string
		CXID   string
	}
	Maps struct {
		APIKey string
	}
	Enrich EnrichConfig
	Redis  struct {
		Addr string
	}
	DB struct {
		DSN string
	}
	Weather struct {
		URL string
	}
	Log struct {
		Level  string
		Format string
	}
	MaxInputLength         int
	SoftFeasibilityDefault bool
	Timezone               string
}

// SearchEnabled reports whether both custom search credentials are set. They
// serve the web research and image lookups.
func (c Config) SearchEnabled() bool {
	return c.Search.APIKey != "" && c.Search.CXID != ""
}

// Load reads .env (if present) and the process environment once.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	cfg.HTTP.Addr = envOrDefault("ATLAS_HTTP_ADDR", ":8000")
	cfg.HTTP.PipelineTimeout = envOrDefaultDuration("ATLAS_PIPELINE_TIMEOUT", 120*time.Second)
	cfg.HTTP.CORSOrigins = splitList(envOrDefault("ATLAS_CORS_ORIGINS", "*"))

	cfg.AI.APIKey = firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY"))
	cfg.AI.High = envOrDefault("GEMINI_MODEL_HIGH", "gemini-2.5-flash")
	cfg.AI.Med = envOrDefault("GEMINI_MODEL_MED", "gemini-2.5-flash")
	cfg.AI.Low = envOrDefault("GEMINI_MODEL_LOW", "gemini-2.5-flash-lite")
	cfg.AI.Task = envOrDefault("GEMINI_MODEL", cfg.AI.High)
	cfg.AI.Fallback = os.Getenv("GEMINI_FALLBACK_MODEL")

	cfg.Search.APIKey = os.Getenv("GOOGLE_CLOUD_API_KEY")
	cfg.Search.CXID = os.Getenv("CX_ID")
	cfg.Maps.APIKey = os.Getenv("GOOGLE_MAPS_API_KEY")

	cfg.Enrich.Concurrency = envOrDefaultInt("ATLAS_ENRICH_CONCURRENCY", 4)
	cfg.Enrich.LookupRPS = envOrDefaultFloat("ATLAS_LOOKUP_RPS", 5)
	cfg.Enrich.LookupTTL = envOrDefaultDuration("ATLAS_LOOKUP_TTL", 7*24*time.Hour)

	cfg.Redis.Addr = os.Getenv("ATLAS_REDIS_ADDR")
	cfg.DB.DSN = os.Getenv("ATLAS_DB_DSN")
	cfg.Weather.URL = envOrDefault("ATLAS_WEATHER_URL", "https://api.open-meteo.com/v1/forecast")

	cfg.Log.Level = strings.ToUpper(envOrDefault("LOG_LEVEL", "INFO"))
	cfg.Log.Format = strings.ToLower(envOrDefault("LOG_FORMAT", "text"))

	cfg.MaxInputLength = envOrDefaultInt("MAX_INPUT_LENGTH", 2000)
	cfg.SoftFeasibilityDefault = envOrDefaultBool("SOFT_FEASIBILITY_DEFAULT", true)
	cfg.Timezone = envOrDefault("ATLAS_TIMEZONE", "Asia/Bangkok")

	if cfg.Enrich.Concurrency < 1 {
		cfg.Enrich.Concurrency = 1
	}
	if cfg.AI.APIKey == "" {
		return cfg, ErrMissingAPIKey
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

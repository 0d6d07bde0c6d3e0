// README: Service graph construction shared by the API server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"atlas/internal/ai"
	"atlas/internal/config"
	"atlas/internal/enrich"
	"atlas/internal/infra"
	"atlas/internal/maps"
	"atlas/internal/search"
	"atlas/internal/service"
	"atlas/internal/usage"
	"atlas/internal/weather"
	"atlas/migrations"
)

// App holds the wired services. Usage is nil when no database is configured.
type App struct {
	Travel  *service.TravelPlanner
	Task    *service.TaskPlanner
	Weather *weather.Client
	Usage   *usage.Service

	gemini *ai.GeminiGenerator
	db     *pgxpool.Pool
	redis  *redis.Client
}

// Build connects the optional stores and assembles the pipelines. Redis and
// Postgres are only used when their addresses are configured.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	gemini, err := ai.NewGeminiGenerator(ctx, cfg.AI.APIKey)
	if err != nil {
		return nil, err
	}
	a.gemini = gemini
	var gen ai.Generator = gemini

	if cfg.DB.DSN != "" {
		if a.db, err = infra.NewDB(ctx, cfg.DB.DSN); err != nil {
			return nil, err
		}
		if err := infra.Migrate(ctx, a.db, migrations.FS); err != nil {
			return nil, err
		}
		store := usage.NewStore(a.db)
		gen = usage.NewMeteredGenerator(gen, store, logger)
		a.Usage = usage.NewService(store)
		logger.Info("usage ledger enabled")
	}
	gen = ai.NewFallbackGenerator(gen, cfg.AI.Fallback, logger)

	var cache enrich.LookupCache
	if cfg.Redis.Addr != "" {
		if a.redis, err = infra.NewRedis(ctx, cfg.Redis.Addr); err != nil {
			return nil, err
		}
		cache = enrich.NewRedisLookupCache(a.redis, cfg.Enrich.LookupTTL)
		logger.Info("lookup cache enabled", "addr", cfg.Redis.Addr)
	}

	locator, err := buildLocator(cfg)
	if err != nil {
		return nil, err
	}
	var (
		images enrich.ImageSearcher
		web    search.Searcher
	)
	if cfg.SearchEnabled() {
		cs, err := enrich.NewCustomSearchImages(ctx, cfg.Search.APIKey, cfg.Search.CXID)
		if err != nil {
			return nil, err
		}
		images = cs
		w, err := search.NewWeb(ctx, cfg.Search.APIKey, cfg.Search.CXID)
		if err != nil {
			return nil, err
		}
		web = w
	} else {
		logger.Warn("custom search disabled, plans get no web research and fallback images")
	}
	enricher := enrich.NewEnricher(locator, images, cache, cfg.Enrich, logger)

	if a.Travel, err = service.NewTravelPlanner(gen, web, enricher, cfg, logger); err != nil {
		return nil, err
	}
	if a.Task, err = service.NewTaskPlanner(gen, cfg, logger); err != nil {
		return nil, err
	}
	a.Weather = weather.NewClient(cfg.Weather.URL, logger)

	ok = true
	return a, nil
}

func buildLocator(cfg config.Config) (enrich.Locator, error) {
	var chain maps.ChainLocator
	if cfg.Maps.APIKey != "" {
		places, err := maps.NewPlacesLocator(cfg.Maps.APIKey)
		if err != nil {
			return nil, fmt.Errorf("maps: %w", err)
		}
		chain = append(chain, places)
	}
	return append(chain, maps.NewRedirectLocator("")), nil
}

// Close releases the model client and any store connections.
func (a *App) Close() error {
	var errs []error
	if a.gemini != nil {
		errs = append(errs, a.gemini.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		a.db.Close()
	}
	return errors.Join(errs...)
}

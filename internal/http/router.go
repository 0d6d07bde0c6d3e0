// README: HTTP router registration.
package http

import (
	"log/slog"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"atlas/internal/config"
	"atlas/internal/http/handlers"
	"atlas/internal/http/middleware"
)

// RouterDeps are the services behind the routes. Usage may be nil.
type RouterDeps struct {
	Travel  handlers.TravelPlanner
	Task    handlers.TaskPlanner
	Weather handlers.Forecaster
	Usage   handlers.UsageReporter
	Config  config.Config
	Logger  *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(deps.Logger),
		middleware.Recovery(deps.Logger),
		cors.New(corsConfig(deps.Config.HTTP.CORSOrigins)),
	)

	r.GET("/", handlers.Root)
	r.GET("/health", handlers.Health)

	timeout := deps.Config.HTTP.PipelineTimeout
	travel := handlers.NewTravelHandler(deps.Travel, timeout)
	r.POST("/makeplan", travel.MakePlan)
	r.POST("/changeplan", travel.ChangePlan)

	task := handlers.NewTaskHandler(deps.Task, deps.Config.SoftFeasibilityDefault, timeout)
	r.POST("/plan", task.Plan)

	weather := handlers.NewWeatherHandler(deps.Weather)
	r.POST("/weather", weather.Forecast)

	usage := handlers.NewUsageHandler(deps.Usage)
	r.GET("/usage", usage.Summary)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{
			middleware.HeaderRequestID,
			middleware.HeaderProcessTime,
			handlers.HeaderPlanFeasible,
			handlers.HeaderPlanDifficulty,
			handlers.HeaderPlanWarnings,
		},
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

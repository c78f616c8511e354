package router

import (
	"github.com/gin-gonic/gin"

	"creditlens/internal/config"
	"creditlens/internal/handler"
	"creditlens/internal/middleware"
	"creditlens/internal/service"
)

// Setup configures the Gin engine with all routes and middleware. A nil
// tokenSvc leaves the report routes open.
func Setup(
	cfg *config.Config,
	tokenSvc service.TokenService,
	reportH *handler.ReportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	reports := v1.Group("/reports")
	if tokenSvc != nil {
		reports.Use(middleware.BearerAuth(tokenSvc))
	}
	reports.POST("/upload", reportH.Upload)
	reports.GET("", reportH.List)
	reports.GET("/:id", reportH.GetByID)
	reports.GET("/:id/source", reportH.Source)
	reports.GET("/:id/export", reportH.Export)

	return r
}

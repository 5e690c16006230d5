// internal/router/router.go
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/javajoker/tecnova-catalog/internal/config"
	"github.com/javajoker/tecnova-catalog/internal/handlers"
	"github.com/javajoker/tecnova-catalog/internal/i18n"
	"github.com/javajoker/tecnova-catalog/internal/middleware"
	"github.com/javajoker/tecnova-catalog/internal/services"
	"github.com/javajoker/tecnova-catalog/internal/utils"
)

const version = "1.0.0"

// Services is the set of long-lived components behind the HTTP surface.
type Services struct {
	Catalog      *services.CatalogClient
	Sync         *services.SyncService
	Presentation *services.PresentationService
	Reports      *services.ReportService
}

func NewServices(cfg *config.Config, log *logrus.Entry) *Services {
	httpClient := &http.Client{Timeout: cfg.Remote.Timeout + 5*time.Second}

	catalogClient := services.NewCatalogClient(cfg.Remote, httpClient, log)
	syncService := services.NewSyncService(catalogClient, log)
	presentationService := services.NewPresentationService(cfg.Remote, cfg.I18n)
	reportService := services.NewReportService(syncService, presentationService, cfg.Report, log)

	return &Services{
		Catalog:      catalogClient,
		Sync:         syncService,
		Presentation: presentationService,
		Reports:      reportService,
	}
}

// Initialize wires handlers and middleware. Background work started here
// stops when ctx is done.
func Initialize(ctx context.Context, cfg *config.Config, svc *Services, log *logrus.Entry) *gin.Engine {
	// Initialize handlers
	productHandler := handlers.NewProductHandler(svc.Sync, svc.Presentation)
	imageHandler := handlers.NewImageHandler(svc.Catalog)
	reportHandler := handlers.NewReportHandler(svc.Reports)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log.WithField("component", "http")))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())
	if cfg.Server.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)
		go limiter.Run(ctx)
		r.Use(limiter.Middleware())
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"version":   version,
			"catalog":   svc.Sync.Status(),
			"languages": i18n.GetSupportedLanguages(),
		})
	})

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Product routes
		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/snapshot", productHandler.GetSnapshot)
			products.GET("/:id", productHandler.GetProduct)
			products.POST("", productHandler.CreateProduct)
			products.POST("/import", productHandler.ImportProducts)
			products.PUT("/:id", productHandler.UpdateProduct)
			products.DELETE("/:id", productHandler.DeleteProduct)
		}

		// Image proxy
		v1.GET("/images/:name", imageHandler.GetImage)

		// Report routes
		reports := v1.Group("/reports")
		{
			reports.GET("/dashboard", reportHandler.GetDashboard)
			reports.GET("/products.csv", reportHandler.ExportProducts)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", "route not found", c.Request.URL.Path)
	})

	return r
}

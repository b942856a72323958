package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/tourconfig-backend/internal/http/handlers"
	httpMW "github.com/yungbote/tourconfig-backend/internal/http/middleware"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	AuthHandler          *httpH.AuthHandler
	AuthMiddleware       *httpMW.AuthMiddleware
	UserHandler          *httpH.UserHandler
	RealtimeHandler      *httpH.RealtimeHandler
	CatalogHandler       *httpH.CatalogHandler
	SelectionHandler     *httpH.SelectionHandler
	FileHandler          *httpH.FileHandler
	ConfigurationHandler *httpH.ConfigurationHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins...))
	r.Use(httpMW.AttachRequestContext())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}

		// Catalog + tour
		if cfg.CatalogHandler != nil {
			api.GET("/catalog", cfg.CatalogHandler.GetCatalog)
			api.GET("/scenes", cfg.CatalogHandler.ListScenes)
			api.GET("/tour", cfg.CatalogHandler.GetTour)
		}

		// File proxy
		if cfg.FileHandler != nil {
			api.GET("/files", cfg.FileHandler.GetFile)
			api.HEAD("/files", cfg.FileHandler.GetFile)
		}

		// Session (anonymous, keyed by the session cookie/header)
		if cfg.SelectionHandler != nil {
			api.GET("/session/selection", cfg.SelectionHandler.GetSelection)
			api.PUT("/session/selection", cfg.SelectionHandler.ReplaceSelection)
			api.PATCH("/session/selection/:fixture", cfg.SelectionHandler.PatchFixture)
			api.GET("/session/match", cfg.SelectionHandler.Match)
			api.POST("/session/scene", cfg.SelectionHandler.SwitchScene)
			api.DELETE("/session", cfg.SelectionHandler.Reset)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/session/events", cfg.RealtimeHandler.SSEStream)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me", cfg.UserHandler.UpdateName)
		}

		// Saved configurations
		if cfg.ConfigurationHandler != nil {
			protected.POST("/configurations", cfg.ConfigurationHandler.Create)
			protected.GET("/configurations", cfg.ConfigurationHandler.List)
			protected.POST("/configurations/:id/apply", cfg.ConfigurationHandler.Apply)
			protected.DELETE("/configurations/:id", cfg.ConfigurationHandler.Delete)
		}
	}

	if cfg.AuthMiddleware != nil && cfg.CatalogHandler != nil {
		admin := protected.Group("/admin", cfg.AuthMiddleware.RequireAdmin())
		admin.POST("/catalog/reload", cfg.CatalogHandler.Reload)
	}

	return r
}

// Package api is the HTTP surface of the console, consumed by the
// browser UI. It only translates requests into workflow, settings,
// diagnostics and run-history calls; all orchestration lives below it.
package api

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/orderdesk/recon-console/internal/api/handlers"
	"github.com/orderdesk/recon-console/internal/diagnostics"
	"github.com/orderdesk/recon-console/internal/infrastructure/config"
	"github.com/orderdesk/recon-console/internal/infrastructure/storage"
	"github.com/orderdesk/recon-console/internal/workflow"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for local development.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config Config
	router *gin.Engine
	logger *slog.Logger
}

// NewServer wires the handlers onto a gin router.
func NewServer(cfg Config, store *config.Store, controller *workflow.Controller, files handlers.BackendFiles, runner *diagnostics.Runner, runs storage.Repository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", handlers.Health)

	workflowHandler := handlers.NewWorkflowHandler(controller, logger)
	filesHandler := handlers.NewFilesHandler(files)
	settingsHandler := handlers.NewSettingsHandler(store)
	diagnosticsHandler := handlers.NewDiagnosticsHandler(runner)
	runsHandler := handlers.NewRunsHandler(runs)

	apiGroup := router.Group("/api")
	{
		wf := apiGroup.Group("/workflow")
		{
			wf.POST("/files", workflowHandler.Upload)
			wf.GET("/files", filesHandler.List)
			wf.DELETE("/files", workflowHandler.Clear)
			wf.GET("/state", workflowHandler.State)
			wf.GET("/shops", workflowHandler.Shops)
			wf.POST("/shops/toggle", workflowHandler.ToggleShop)
			wf.POST("/shops/select-all", workflowHandler.SelectAll)
			wf.POST("/process", workflowHandler.Process)
			wf.POST("/export", workflowHandler.Export)
		}

		apiGroup.GET("/settings", settingsHandler.Get)
		apiGroup.PUT("/settings", settingsHandler.Update)
		apiGroup.POST("/settings/reset", settingsHandler.Reset)

		apiGroup.POST("/diagnostics/run", diagnosticsHandler.Run)
		apiGroup.POST("/diagnostics/cors", diagnosticsHandler.CORS)

		apiGroup.GET("/runs", runsHandler.List)
		apiGroup.GET("/runs/:id", runsHandler.Get)

		apiGroup.GET("/download/:filename", filesHandler.Download)
	}

	return &Server{
		config: cfg,
		router: router,
		logger: logger,
	}
}

// Router exposes the underlying gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the server and blocks.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.logger.Info("starting console API", slog.String("addr", addr))
	return s.router.Run(addr)
}

package main

import (
	"edugenie/internal/config"
	"edugenie/internal/handler"
	"edugenie/internal/middleware"
	"edugenie/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// newApp wires the HTTP routes. jobs and documents may be nil when Redis is
// not configured.
func newApp(
	serverCfg config.ServerConfig,
	analysis service.AnalysisService,
	jobs service.JobService,
	documents service.DocumentService,
	health map[string]handler.Pinger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
		IdleTimeout:  serverCfg.ReadTimeout,
		BodyLimit:    serverCfg.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept," + middleware.RequestIDHeader,
		MaxAge:       300,
	}))

	analysisHandler := handler.NewAnalysisHandler(analysis, jobs)
	documentHandler := handler.NewDocumentHandler(documents)
	healthHandler := handler.NewHealthHandler(health)
	validator := middleware.NewValidationMiddleware()

	app.Get("/health", healthHandler.Health)

	apiGroup := app.Group("/api")
	apiGroup.Post("/analyze", analysisHandler.Analyze)
	apiGroup.Post("/analyze/jobs", analysisHandler.SubmitJob)
	apiGroup.Get("/analyze/jobs/:id", validator.ValidateIDParam(), analysisHandler.GetJob)
	apiGroup.Get("/artifacts/:id", validator.ValidateIDParam(), analysisHandler.GetArtifact)
	apiGroup.Post("/documents/:id/ingest", documentHandler.Ingest)
	apiGroup.Post("/documents/:id/chat", documentHandler.Chat)

	return app
}

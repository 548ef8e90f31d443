package api

import (
	"github.com/bilgisen/veritas/internal/metrics"
	"github.com/bilgisen/veritas/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, h *Handlers, apiKey string, gatherer prometheus.Gatherer) {
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger("/metrics"))
	// Inside the logger, so a recovered panic is logged with its request.
	app.Use(recover.New())

	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(gatherer)))
	}

	// API group with versioning
	api := app.Group("/api/v1", middleware.LocalKey(apiKey, "/api/v1/health"))

	api.Get("/health", h.HealthCheck)
	api.Get("/articles", h.GetArticles)

	bookmarks := api.Group("/bookmarks")
	{
		bookmarks.Get("", h.GetBookmarks)
		bookmarks.Get("/:id", h.GetBookmarkByID)
		bookmarks.Post("/toggle", middleware.ValidateBody[ToggleRequest](), h.ToggleBookmark)
		bookmarks.Post("/reload", h.ReloadBookmarks)
		bookmarks.Post("/export", h.ExportBookmarks)
	}

	api.Get("/recommendations", middleware.ValidateQuery[RecommendQuery](), h.GetRecommendations)
	api.Post("/inquiries", middleware.ValidateBody[InquiryRequest](), h.CreateInquiry)

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}

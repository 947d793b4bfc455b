package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

func RegisterRoutes(app *fiber.App, st HealthChecker, h *Handler) {
	app.Use(RequestID())
	app.Use(CORS())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "ok"
		code := fiber.StatusOK
		checks := map[string]string{"store": "ok"}

		healthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := st.HealthCheck(healthCtx); err != nil {
			checks["store"] = err.Error()
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	})

	// API routes
	v1 := app.Group("/api/v1")
	v1.Get("/trustees", h.ListTrustees)
	v1.Get("/categories", h.ListCategories)
	v1.Get("/catalog", h.ListCatalog)
	v1.Get("/catalog/:trustee", h.GetCatalog)
	v1.Get("/catalog/:trustee/schemes/:scheme", h.GetCatalogByScheme)
	v1.Post("/prices", h.GetPrices)
	v1.Post("/performances", h.GetPerformances)
}

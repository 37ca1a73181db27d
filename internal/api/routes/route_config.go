package routes

import (
	"Durian-Scanner/internal/api/handlers"
	"Durian-Scanner/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	App                *fiber.App
	ScannerHandler     handlers.ScannerHandler
	AnalyticsHandler   handlers.AnalyticsHandler
	TransactionHandler handlers.TransactionHandler
	Middleware         middleware.Middleware
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.App.Use(c.Middleware.MetricsMiddleware())
	c.Scanner()
	c.History()
	c.Analytics()
	c.Transaction()
	c.GuestRoute()
}

func (c *Config) Scanner() {
	c.App.Post("/detect", c.ScannerHandler.Detect)
	c.App.Post("/classify/disease", c.ScannerHandler.ClassifyDisease)
	c.App.Get("/health", c.ScannerHandler.Health)
	c.App.Get("/test", c.ScannerHandler.Test)
}

func (c *Config) History() {
	c.App.Get("/history/:user_id", c.ScannerHandler.GetHistory)

	scan := c.App.Group("/scan")
	{
		scan.Get("/:scan_id", c.ScannerHandler.GetScan)
		scan.Delete("/:scan_id", c.ScannerHandler.DeleteScan)
	}
}

func (c *Config) Analytics() {
	analytics := c.App.Group("/analytics")
	{
		analytics.Get("/:user_id", c.AnalyticsHandler.GetAnalytics)
		analytics.Get("/:user_id/stats", c.AnalyticsHandler.GetStats)
	}
}

func (c *Config) Transaction() {
	c.App.Post("/checkout", c.TransactionHandler.Checkout)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "message": "pong"})
	})
	c.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

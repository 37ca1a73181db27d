package handlers

import (
	"Durian-Scanner/domain"
	"Durian-Scanner/internal/api/presenters"
	"Durian-Scanner/pkg/analytics"

	"github.com/gofiber/fiber/v2"
)

type (
	AnalyticsHandler interface {
		GetAnalytics(c *fiber.Ctx) error
		GetStats(c *fiber.Ctx) error
	}

	analyticsHandler struct {
		analyticsService analytics.AnalyticsService
	}
)

func NewAnalyticsHandler(analyticsService analytics.AnalyticsService) AnalyticsHandler {
	return &analyticsHandler{
		analyticsService: analyticsService,
	}
}

func (h *analyticsHandler) GetAnalytics(c *fiber.Ctx) error {
	res, err := h.analyticsService.GetAnalytics(c.Context(), c.Params("user_id"), c.Query("time_range", domain.DefaultTimeRange))
	if err != nil {
		return presenters.Failure(c, err, domain.MessageFailedGetAnalytics)
	}

	return presenters.JSON(c, fiber.StatusOK, res)
}

func (h *analyticsHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.analyticsService.GetStats(c.Context(), c.Params("user_id"), c.Query("time_range", domain.DefaultTimeRange))
	if err != nil {
		return presenters.Failure(c, err, domain.MessageFailedGetAnalytics)
	}

	return presenters.JSON(c, fiber.StatusOK, domain.StatsResponse{Success: true, Stats: stats})
}

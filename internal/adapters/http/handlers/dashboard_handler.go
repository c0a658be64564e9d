package handlers

import (
	"membertracker/internal/core/services"
	"membertracker/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetStats returns member counts and this month's revenue
// @Summary Dashboard statistics
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.dashboardService.GetStats(c.Context())
	if err != nil {
		return response.FromError(c, err, "Failed to get dashboard statistics")
	}
	return response.Success(c, "Dashboard statistics retrieved successfully", stats)
}

// RecentPayments returns the latest payments
// @Summary Recent payments
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard/recent-payments [get]
func (h *DashboardHandler) RecentPayments(c *fiber.Ctx) error {
	payments, err := h.dashboardService.RecentPayments(c.Context())
	if err != nil {
		return response.FromError(c, err, "Failed to get recent payments")
	}
	return response.Success(c, "Recent payments retrieved successfully", payments)
}

// OverdueMembers returns members with a missed payment
// @Summary Overdue members
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard/overdue-members [get]
func (h *DashboardHandler) OverdueMembers(c *fiber.Ctx) error {
	members, err := h.dashboardService.OverdueMembers(c.Context())
	if err != nil {
		return response.FromError(c, err, "Failed to get overdue members")
	}
	return response.Success(c, "Overdue members retrieved successfully", services.NewMemberViews(members))
}

// RecentActivities returns payments and communications, newest first
// @Summary Recent activities
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard/recent-activities [get]
func (h *DashboardHandler) RecentActivities(c *fiber.Ctx) error {
	activities, err := h.dashboardService.RecentActivities(c.Context())
	if err != nil {
		return response.FromError(c, err, "Failed to get recent activities")
	}
	return response.Success(c, "Recent activities retrieved successfully", activities)
}

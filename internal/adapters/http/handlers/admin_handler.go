package handlers

import (
	"errors"

	"membertracker/internal/core/services"
	"membertracker/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler exposes manual triggers for the scheduled jobs
type AdminHandler struct {
	cronService *services.CronService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(cronService *services.CronService) *AdminHandler {
	return &AdminHandler{cronService: cronService}
}

// ListJobs lists the scheduled jobs
// @Summary List scheduled jobs
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/jobs [get]
func (h *AdminHandler) ListJobs(c *fiber.Ctx) error {
	return response.Success(c, "Jobs retrieved successfully", h.cronService.JobNames())
}

// RunJob runs a scheduled job now and returns its summary
// @Summary Run a scheduled job
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param name path string true "Job name"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/jobs/{name}/run [post]
func (h *AdminHandler) RunJob(c *fiber.Ctx) error {
	name := c.Params("name")

	result, err := h.cronService.RunNow(c.Context(), name)
	if err != nil {
		if errors.Is(err, services.ErrUnknownJob) {
			return response.NotFound(c, "Job not found: "+name)
		}
		return response.FromError(c, err, "Job failed")
	}
	return response.Success(c, "Job "+name+" finished", result)
}

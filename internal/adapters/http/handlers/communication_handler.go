package handlers

import (
	"time"

	"membertracker/internal/core/domain"
	"membertracker/internal/core/services"
	"membertracker/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CommunicationHandler handles communication endpoints
type CommunicationHandler struct {
	commService *services.CommunicationService
}

// NewCommunicationHandler creates a new communication handler
func NewCommunicationHandler(commService *services.CommunicationService) *CommunicationHandler {
	return &CommunicationHandler{commService: commService}
}

// SendRequest sends a new or stored communication to chosen members
type SendRequest struct {
	services.CommunicationInput
	MemberIDs []uint `json:"memberIds"`
	Channel   string `json:"channel" example:"EMAIL"`
}

// ListCommunications lists communications, optionally by type or sent date range
// @Summary List communications
// @Tags Communications
// @Produce json
// @Security BearerAuth
// @Param type query string false "Communication type"
// @Param from query string false "Sent on or after (YYYY-MM-DD)"
// @Param to query string false "Sent on or before (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /communications [get]
func (h *CommunicationHandler) ListCommunications(c *fiber.Ctx) error {
	var (
		comms []*domain.Communication
		err   error
	)

	switch {
	case c.Query("type") != "":
		comms, err = h.commService.ListByType(c.Context(), c.Query("type"))
	case c.Query("from") != "" || c.Query("to") != "":
		from, ok := queryDate(c, "from", false)
		if !ok {
			return response.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
		}
		to, ok := queryDate(c, "to", true)
		if !ok {
			return response.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
		}
		comms, err = h.commService.ListBySentDateRange(c.Context(), from, to)
	default:
		comms, err = h.commService.ListCommunications(c.Context())
	}
	if err != nil {
		return response.FromError(c, err, "Failed to list communications")
	}
	return response.Success(c, "Communications retrieved successfully", services.NewCommunicationViews(comms))
}

// GetCommunication gets one communication with its deliveries
// @Summary Get communication by ID
// @Tags Communications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Communication ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /communications/{id} [get]
func (h *CommunicationHandler) GetCommunication(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid communication ID")
	}

	comm, err := h.commService.GetCommunication(c.Context(), id)
	if err != nil {
		return response.FromError(c, err, "Failed to get communication")
	}
	return response.Success(c, "Communication retrieved successfully", services.NewCommunicationView(comm, true))
}

// GetDeliveries lists the deliveries of one communication
// @Summary List deliveries of a communication
// @Tags Communications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Communication ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /communications/{id}/deliveries [get]
func (h *CommunicationHandler) GetDeliveries(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid communication ID")
	}

	deliveries, err := h.commService.GetDeliveries(c.Context(), id)
	if err != nil {
		return response.FromError(c, err, "Failed to list deliveries")
	}
	return response.Success(c, "Deliveries retrieved successfully", services.NewDeliveryViews(deliveries))
}

// CreateCommunication stores an unsent communication
// @Summary Create communication
// @Tags Communications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CommunicationInput true "Communication data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /communications [post]
func (h *CommunicationHandler) CreateCommunication(c *fiber.Ctx) error {
	var req services.CommunicationInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	comm, err := h.commService.CreateCommunication(c.Context(), req)
	if err != nil {
		return response.FromError(c, err, "Failed to create communication")
	}
	return response.Created(c, "Communication created successfully", services.NewCommunicationView(comm, false))
}

// Send queues a communication for the given members
// @Summary Send communication to members
// @Description Deliveries are stored as PENDING and sent in the background
// @Tags Communications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SendRequest true "Send data"
// @Success 202 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /communications/send [post]
func (h *CommunicationHandler) Send(c *fiber.Ctx) error {
	var req SendRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Channel == "" {
		req.Channel = string(domain.ChannelEmail)
	}

	comm, err := h.commService.SendToMemberIDs(c.Context(), req.CommunicationInput, req.MemberIDs, req.Channel)
	if err != nil {
		return response.FromError(c, err, "Failed to send communication")
	}
	return response.Accepted(c, "Communication queued for delivery", services.NewCommunicationView(comm, true))
}

// SendToAll queues a communication for every member
// @Summary Send communication to all members
// @Tags Communications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CommunicationInput true "Communication data"
// @Success 202 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /communications/send-to-all [post]
func (h *CommunicationHandler) SendToAll(c *fiber.Ctx) error {
	var req services.CommunicationInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	comm, err := h.commService.SendToAllMembers(c.Context(), req)
	if err != nil {
		return response.FromError(c, err, "Failed to send communication")
	}
	return response.Accepted(c, "Communication queued for delivery", services.NewCommunicationView(comm, false))
}

// SendToOverdue queues a communication for members with at least :months missed payments
// @Summary Send communication to overdue members
// @Tags Communications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param months path int true "Minimum consecutive months missed"
// @Param body body services.CommunicationInput true "Communication data"
// @Success 202 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /communications/send-to-overdue/{months} [post]
func (h *CommunicationHandler) SendToOverdue(c *fiber.Ctx) error {
	months, ok := paramInt(c, "months")
	if !ok {
		return response.BadRequest(c, "Invalid number of months")
	}

	var req services.CommunicationInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	comm, err := h.commService.SendToOverdueMembers(c.Context(), req, months)
	if err != nil {
		return response.FromError(c, err, "Failed to send communication")
	}
	return response.Accepted(c, "Communication queued for delivery", services.NewCommunicationView(comm, false))
}

// queryDate parses a YYYY-MM-DD query value. A missing bound is open; endOfDay
// moves the upper bound to the last instant of its day.
func queryDate(c *fiber.Ctx, name string, endOfDay bool) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		if endOfDay {
			return time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC), true
		}
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, true
}

package handlers

import (
	"bytes"
	"fmt"
	"time"

	"membertracker/internal/core/services"
	"membertracker/internal/pkg/pagination"
	"membertracker/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles member endpoints
type MemberHandler struct {
	memberService  *services.MemberService
	paymentService *services.PaymentService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService, paymentService *services.PaymentService) *MemberHandler {
	return &MemberHandler{
		memberService:  memberService,
		paymentService: paymentService,
	}
}

// ListMembers lists members page by page
// @Summary List members
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(50)
// @Param sort query string false "name, joinDate, missed or lastPayment; prefix - for descending" default(name)
// @Success 200 {object} response.Response
// @Router /members [get]
func (h *MemberHandler) ListMembers(c *fiber.Ctx) error {
	params := pagination.Parse(c, pagination.Members)

	members, total, err := h.memberService.ListMembers(c.Context(), params.Offset, params.Limit, params.OrderBy)
	if err != nil {
		return response.FromError(c, err, "Failed to list members")
	}
	return response.Success(c, "Members retrieved successfully",
		pagination.NewResponse(services.NewMemberViews(members), params, total))
}

// ActiveMembers lists active members
// @Summary List active members
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /members/active [get]
func (h *MemberHandler) ActiveMembers(c *fiber.Ctx) error {
	members, err := h.memberService.ActiveMembers(c.Context())
	if err != nil {
		return response.FromError(c, err, "Failed to list active members")
	}
	return response.Success(c, "Active members retrieved successfully", services.NewMemberViews(members))
}

// InactiveMembers lists inactive members
// @Summary List inactive members
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /members/inactive [get]
func (h *MemberHandler) InactiveMembers(c *fiber.Ctx) error {
	members, err := h.memberService.InactiveMembers(c.Context())
	if err != nil {
		return response.FromError(c, err, "Failed to list inactive members")
	}
	return response.Success(c, "Inactive members retrieved successfully", services.NewMemberViews(members))
}

// OverdueMembers lists members with at least :months missed payments
// @Summary List overdue members
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param months path int true "Minimum consecutive months missed"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /members/overdue/{months} [get]
func (h *MemberHandler) OverdueMembers(c *fiber.Ctx) error {
	months, ok := paramInt(c, "months")
	if !ok {
		return response.BadRequest(c, "Invalid number of months")
	}

	members, err := h.memberService.OverdueMembers(c.Context(), months)
	if err != nil {
		return response.FromError(c, err, "Failed to list overdue members")
	}
	return response.Success(c, "Overdue members retrieved successfully", services.NewMemberViews(members))
}

// WithoutRecentPayment lists members who have not paid within :months months
// @Summary List members without a recent payment
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param months path int true "Months without payment"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /members/without-recent-payment/{months} [get]
func (h *MemberHandler) WithoutRecentPayment(c *fiber.Ctx) error {
	months, ok := paramInt(c, "months")
	if !ok {
		return response.BadRequest(c, "Invalid number of months")
	}

	members, err := h.memberService.MembersWithoutRecentPayment(c.Context(), months)
	if err != nil {
		return response.FromError(c, err, "Failed to list members")
	}
	return response.Success(c, "Members retrieved successfully", services.NewMemberViews(members))
}

// ExportMembers streams all members as CSV
// @Summary Export members as CSV
// @Tags Members
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file
// @Router /members/export.csv [get]
func (h *MemberHandler) ExportMembers(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.memberService.ExportMembers(c.Context(), &buf); err != nil {
		return response.FromError(c, err, "Failed to export members")
	}
	return sendCSV(c, "members", buf.Bytes())
}

// GetMember gets one member
// @Summary Get member by ID
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [get]
func (h *MemberHandler) GetMember(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	member, err := h.memberService.GetMember(c.Context(), id)
	if err != nil {
		return response.FromError(c, err, "Failed to get member")
	}
	return response.Success(c, "Member retrieved successfully", services.NewMemberView(member))
}

// CreateMember registers a member
// @Summary Create member
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.MemberInput true "Member data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /members [post]
func (h *MemberHandler) CreateMember(c *fiber.Ctx) error {
	var req services.MemberInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.CreateMember(c.Context(), req)
	if err != nil {
		return response.FromError(c, err, "Failed to create member")
	}
	return response.Created(c, "Member created successfully", services.NewMemberView(member))
}

// UpdateMember replaces a member's contact details
// @Summary Update member
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body services.MemberInput true "Member data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [put]
func (h *MemberHandler) UpdateMember(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req services.MemberInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.UpdateMember(c.Context(), id, req)
	if err != nil {
		return response.FromError(c, err, "Failed to update member")
	}
	return response.Success(c, "Member updated successfully", services.NewMemberView(member))
}

// DeleteMember removes a member without payments
// @Summary Delete member
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /members/{id} [delete]
func (h *MemberHandler) DeleteMember(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	if err := h.memberService.DeleteMember(c.Context(), id); err != nil {
		return response.FromError(c, err, "Failed to delete member")
	}
	return response.Success(c, "Member deleted successfully", nil)
}

// PaymentStatus returns the member's payment standing
// @Summary Get member payment status
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id}/payment-status [get]
func (h *MemberHandler) PaymentStatus(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	status, err := h.paymentService.GetMemberPaymentStatus(c.Context(), id)
	if err != nil {
		return response.FromError(c, err, "Failed to get payment status")
	}
	return response.Success(c, "Payment status retrieved successfully", status)
}

// ActivateMember reactivates a member
// @Summary Activate member
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /members/{id}/activate [post]
func (h *MemberHandler) ActivateMember(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	member, err := h.memberService.ActivateMember(c.Context(), id)
	if err != nil {
		return response.FromError(c, err, "Failed to activate member")
	}
	return response.Success(c, "Member activated successfully", services.NewMemberView(member))
}

// DeactivateMember deactivates a member
// @Summary Deactivate member
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /members/{id}/deactivate [post]
func (h *MemberHandler) DeactivateMember(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	member, err := h.memberService.DeactivateMember(c.Context(), id)
	if err != nil {
		return response.FromError(c, err, "Failed to deactivate member")
	}
	return response.Success(c, "Member deactivated successfully", services.NewMemberView(member))
}

func sendCSV(c *fiber.Ctx, name string, body []byte) error {
	filename := fmt.Sprintf("%s-%s.csv", name, time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(body)
}

package handlers

import (
	"bytes"
	"time"

	"membertracker/internal/core/domain"
	"membertracker/internal/core/services"
	"membertracker/internal/pkg/pagination"
	"membertracker/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RecordPaymentRequest records a payment dated today
type RecordPaymentRequest struct {
	MemberID      uint            `json:"memberId"`
	Amount        decimal.Decimal `json:"amount"`
	Period        domain.Period   `json:"period" swaggertype:"string" example:"2025-01"`
	PaymentMethod string          `json:"paymentMethod" example:"CASH"`
	Notes         string          `json:"notes"`
}

// CreatePaymentRequest records a payment with an optional explicit payment date
type CreatePaymentRequest struct {
	RecordPaymentRequest
	PaymentDate *time.Time `json:"paymentDate"`
}

// PaymentMethodView describes one accepted payment method
type PaymentMethodView struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ListPayments lists payments page by page
// @Summary List payments
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(25)
// @Param sort query string false "paymentDate, period or amount; prefix - for descending" default(-paymentDate)
// @Success 200 {object} response.Response
// @Router /payments [get]
func (h *PaymentHandler) ListPayments(c *fiber.Ctx) error {
	params := pagination.Parse(c, pagination.Payments)

	payments, total, err := h.paymentService.ListPayments(c.Context(), params.Offset, params.Limit, params.OrderBy)
	if err != nil {
		return response.FromError(c, err, "Failed to list payments")
	}
	return response.Success(c, "Payments retrieved successfully",
		pagination.NewResponse(services.NewPaymentViews(payments), params, total))
}

// GetPayment gets one payment
// @Summary Get payment by ID
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid payment ID")
	}

	payment, err := h.paymentService.GetPayment(c.Context(), id)
	if err != nil {
		return response.FromError(c, err, "Failed to get payment")
	}
	return response.Success(c, "Payment retrieved successfully", services.NewPaymentView(payment))
}

// MemberPayments lists the payments of one member
// @Summary List payments of a member
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param memberId path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments/member/{memberId} [get]
func (h *PaymentHandler) MemberPayments(c *fiber.Ctx) error {
	id, ok := paramID(c, "memberId")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	payments, err := h.paymentService.GetPaymentsByMember(c.Context(), id)
	if err != nil {
		return response.FromError(c, err, "Failed to list payments")
	}
	return response.Success(c, "Payments retrieved successfully", services.NewPaymentViews(payments))
}

// CreatePayment records a payment, keeping paymentDate when given
// @Summary Create payment
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreatePaymentRequest true "Payment data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /payments [post]
func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	var req CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	payment := domain.NewPayment(req.MemberID, req.Amount, req.Period,
		domain.PaymentMethod(req.PaymentMethod), req.Notes)
	if req.PaymentDate != nil {
		payment.PaymentDate = *req.PaymentDate
	}

	saved, err := h.paymentService.RecordPaymentObject(c.Context(), payment)
	if err != nil {
		return response.FromError(c, err, "Failed to record payment")
	}
	return response.Created(c, "Payment recorded successfully", services.NewPaymentView(saved))
}

// RecordPayment records a payment dated today
// @Summary Record payment
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RecordPaymentRequest true "Payment data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /payments/record [post]
func (h *PaymentHandler) RecordPayment(c *fiber.Ctx) error {
	var req RecordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	payment, err := h.paymentService.RecordPayment(c.Context(),
		req.MemberID, req.Amount, req.Period, req.PaymentMethod, req.Notes)
	if err != nil {
		return response.FromError(c, err, "Failed to record payment")
	}
	return response.Created(c, "Payment recorded successfully", services.NewPaymentView(payment))
}

// ReactivateWithPayment reactivates an eligible member and records the payment
// @Summary Record payment with reactivation
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RecordPaymentRequest true "Payment data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments/reactivate [post]
func (h *PaymentHandler) ReactivateWithPayment(c *fiber.Ctx) error {
	var req RecordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	payment, err := h.paymentService.ProcessPaymentWithReactivation(c.Context(),
		req.MemberID, req.Amount, req.Period, req.PaymentMethod)
	if err != nil {
		return response.FromError(c, err, "Failed to record payment")
	}
	return response.Created(c, "Payment recorded successfully", services.NewPaymentView(payment))
}

// PaymentMethods lists accepted payment methods
// @Summary List payment methods
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Response
// @Router /payments/methods [get]
func (h *PaymentHandler) PaymentMethods(c *fiber.Ctx) error {
	methods := domain.PaymentMethods()
	out := make([]PaymentMethodView, len(methods))
	for i, m := range methods {
		out[i] = PaymentMethodView{Code: string(m), Name: m.DisplayName()}
	}
	return response.Success(c, "Payment methods retrieved successfully", out)
}

// ExportPayments streams all payments as CSV
// @Summary Export payments as CSV
// @Tags Payments
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file
// @Router /payments/export.csv [get]
func (h *PaymentHandler) ExportPayments(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.paymentService.ExportPayments(c.Context(), &buf); err != nil {
		return response.FromError(c, err, "Failed to export payments")
	}
	return sendCSV(c, "payments", buf.Bytes())
}

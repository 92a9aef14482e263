package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appledger "github.com/schoolpay/backend/internal/application/ledger"
	"github.com/schoolpay/backend/internal/domain/ledger"
)

// PaymentTypeHandler exposes the school's fee categories
type PaymentTypeHandler struct {
	BaseHandler
	service *appledger.PaymentTypeService
}

// NewPaymentTypeHandler creates a new PaymentTypeHandler
func NewPaymentTypeHandler(service *appledger.PaymentTypeService) *PaymentTypeHandler {
	return &PaymentTypeHandler{service: service}
}

// CreatePaymentTypeRequest is the payload for creating a fee category
type CreatePaymentTypeRequest struct {
	Name string `json:"name" binding:"required"`
}

// TogglePaymentTypeRequest is the payload for (de)activating a fee category
type TogglePaymentTypeRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// PaymentTypeResponse is the wire representation of a fee category
type PaymentTypeResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toPaymentTypeResponse(paymentType *ledger.PaymentType) PaymentTypeResponse {
	return PaymentTypeResponse{
		ID:        paymentType.ID.String(),
		Name:      paymentType.Name,
		IsActive:  paymentType.IsActive,
		CreatedAt: paymentType.CreatedAt,
	}
}

// Create creates a fee category
// POST /api/v1/schools/:schoolId/payment-types
func (h *PaymentTypeHandler) Create(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	schoolID, ok := h.getSchoolID(c)
	if !ok {
		return
	}
	var req CreatePaymentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	paymentType, err := h.service.CreatePaymentType(c.Request.Context(), actor, schoolID, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPaymentTypeResponse(paymentType))
}

// List returns the school's fee categories
// GET /api/v1/schools/:schoolId/payment-types
func (h *PaymentTypeHandler) List(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	schoolID, ok := h.getSchoolID(c)
	if !ok {
		return
	}

	types, err := h.service.ListPaymentTypes(c.Request.Context(), actor, schoolID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]PaymentTypeResponse, len(types))
	for i, paymentType := range types {
		responses[i] = toPaymentTypeResponse(paymentType)
	}
	h.Success(c, responses)
}

// Toggle activates or deactivates a fee category
// PATCH /api/v1/schools/:schoolId/payment-types/:typeId
func (h *PaymentTypeHandler) Toggle(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	schoolID, ok := h.getSchoolID(c)
	if !ok {
		return
	}
	typeID, ok := h.parseUUIDParam(c, "typeId")
	if !ok {
		return
	}
	var req TogglePaymentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	paymentType, err := h.service.TogglePaymentType(c.Request.Context(), actor, schoolID, typeID, *req.IsActive)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPaymentTypeResponse(paymentType))
}

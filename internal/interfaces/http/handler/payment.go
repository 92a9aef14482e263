package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appledger "github.com/schoolpay/backend/internal/application/ledger"
	"github.com/schoolpay/backend/internal/domain/ledger"
	"github.com/schoolpay/backend/internal/interfaces/http/dto"
)

// PaymentHandler exposes the payment ledger
type PaymentHandler struct {
	BaseHandler
	service *appledger.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service *appledger.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// CreatePaymentRequest is the payload for recording a payment. The school
// comes in the body, not the path; the service authorizes the actor
// against it.
type CreatePaymentRequest struct {
	SchoolID       string `json:"school_id" binding:"required,uuid"`
	StudentID      string `json:"student_id" binding:"required,uuid"`
	ClassID        string `json:"class_id" binding:"required,uuid"`
	AcademicYearID string `json:"academic_year_id" binding:"required,uuid"`
	PaymentTypeID  string `json:"payment_type_id" binding:"required,uuid"`
	AmountDue      string `json:"amount_due" binding:"required"`
	AmountPaid     string `json:"amount_paid" binding:"required"`
	IsInstallment  bool   `json:"is_installment"`
	Notes          string `json:"notes"`
}

// PaymentResponse is the wire representation of a ledger row
type PaymentResponse struct {
	ID               string    `json:"id"`
	StudentID        string    `json:"student_id"`
	ClassID          string    `json:"class_id"`
	AcademicYearID   string    `json:"academic_year_id"`
	PaymentTypeID    string    `json:"payment_type_id"`
	AmountDue        string    `json:"amount_due"`
	AmountPaid       string    `json:"amount_paid"`
	Status           string    `json:"status"`
	IsInstallment    bool      `json:"is_installment"`
	ReceiptNumber    string    `json:"receipt_number"`
	ReceiptReference *string   `json:"receipt_reference,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	PaymentDate      time.Time `json:"payment_date"`
}

// PaymentRecordResponse is a ledger row with its joined display names
type PaymentRecordResponse struct {
	PaymentResponse
	StudentName     string `json:"student_name"`
	StudentExternal string `json:"student_external_id"`
	ClassName       string `json:"class_name"`
	YearLabel       string `json:"year_label"`
	PaymentType     string `json:"payment_type"`
}

func toPaymentResponse(payment *ledger.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               payment.ID.String(),
		StudentID:        payment.StudentID.String(),
		ClassID:          payment.ClassID.String(),
		AcademicYearID:   payment.AcademicYearID.String(),
		PaymentTypeID:    payment.PaymentTypeID.String(),
		AmountDue:        payment.AmountDue.StringFixed(2),
		AmountPaid:       payment.AmountPaid.StringFixed(2),
		Status:           string(payment.Status),
		IsInstallment:    payment.IsInstallment,
		ReceiptNumber:    payment.ReceiptNumber,
		ReceiptReference: payment.ReceiptReference,
		Notes:            payment.Notes,
		PaymentDate:      payment.PaymentDate,
	}
}

func toPaymentRecordResponse(record *ledger.PaymentRecord) PaymentRecordResponse {
	return PaymentRecordResponse{
		PaymentResponse: toPaymentResponse(record.Payment),
		StudentName:     record.StudentName,
		StudentExternal: record.StudentExternal,
		ClassName:       record.ClassName,
		YearLabel:       record.YearLabel,
		PaymentType:     record.PaymentTypeName,
	}
}

// Create records a payment or installment
// POST /api/v1/payments
func (h *PaymentHandler) Create(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	amountDue, err := decimal.NewFromString(req.AmountDue)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid amount_due")
		return
	}
	amountPaid, err := decimal.NewFromString(req.AmountPaid)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid amount_paid")
		return
	}

	payment, err := h.service.CreatePayment(c.Request.Context(), actor, appledger.CreatePaymentRequest{
		SchoolID:       uuid.MustParse(req.SchoolID),
		StudentID:      uuid.MustParse(req.StudentID),
		ClassID:        uuid.MustParse(req.ClassID),
		AcademicYearID: uuid.MustParse(req.AcademicYearID),
		PaymentTypeID:  uuid.MustParse(req.PaymentTypeID),
		AmountDue:      amountDue,
		AmountPaid:     amountPaid,
		IsInstallment:  req.IsInstallment,
		Notes:          req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPaymentResponse(payment))
}

// List returns the school's ledger, optionally filtered by status
// GET /api/v1/payments/schools/:schoolId?status=...
func (h *PaymentHandler) List(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	schoolID, ok := h.getSchoolID(c)
	if !ok {
		return
	}

	var statusFilter *ledger.PaymentStatus
	if raw := c.Query("status"); raw != "" {
		status := ledger.PaymentStatus(raw)
		statusFilter = &status
	}

	records, err := h.service.ListPayments(c.Request.Context(), actor, schoolID, statusFilter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]PaymentRecordResponse, len(records))
	for i, record := range records {
		responses[i] = toPaymentRecordResponse(record)
	}
	h.Success(c, responses)
}

// Delete soft-deletes a ledger row
// DELETE /api/v1/payments/schools/:schoolId/:paymentId
func (h *PaymentHandler) Delete(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	schoolID, ok := h.getSchoolID(c)
	if !ok {
		return
	}
	paymentID, ok := h.parseUUIDParam(c, "paymentId")
	if !ok {
		return
	}

	if err := h.service.DeletePayment(c.Request.Context(), actor, schoolID, paymentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"deleted": true})
}

// Receipt streams the stored receipt document of a payment
// GET /api/v1/payments/schools/:schoolId/:paymentId/receipt
func (h *PaymentHandler) Receipt(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	schoolID, ok := h.getSchoolID(c)
	if !ok {
		return
	}
	paymentID, ok := h.parseUUIDParam(c, "paymentId")
	if !ok {
		return
	}

	reader, contentType, err := h.service.OpenReceipt(c.Request.Context(), actor, schoolID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		// Headers are already written; nothing sensible left to send
		_ = c.Error(err)
	}
}

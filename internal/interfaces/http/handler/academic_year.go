package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appacademics "github.com/schoolpay/backend/internal/application/academics"
	"github.com/schoolpay/backend/internal/domain/academics"
)

// AcademicYearHandler exposes academic year management for a school
type AcademicYearHandler struct {
	BaseHandler
	service *appacademics.AcademicYearService
}

// NewAcademicYearHandler creates a new AcademicYearHandler
func NewAcademicYearHandler(service *appacademics.AcademicYearService) *AcademicYearHandler {
	return &AcademicYearHandler{service: service}
}

// CreateAcademicYearRequest is the payload for creating an academic year
type CreateAcademicYearRequest struct {
	Label     string    `json:"label" binding:"required"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
	IsActive  bool      `json:"is_active"`
}

// AcademicYearResponse is the wire representation of an academic year
type AcademicYearResponse struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toAcademicYearResponse(year *academics.AcademicYear) AcademicYearResponse {
	return AcademicYearResponse{
		ID:        year.ID.String(),
		Label:     year.Label,
		StartDate: year.StartDate,
		EndDate:   year.EndDate,
		IsActive:  year.IsActive,
		CreatedAt: year.CreatedAt,
	}
}

// Create creates an academic year
// POST /api/v1/schools/:schoolId/academic-years
func (h *AcademicYearHandler) Create(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	schoolID, ok := h.getSchoolID(c)
	if !ok {
		return
	}
	var req CreateAcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	year, err := h.service.CreateAcademicYear(c.Request.Context(), actor, appacademics.CreateAcademicYearRequest{
		SchoolID:  schoolID,
		Label:     req.Label,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		IsActive:  req.IsActive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toAcademicYearResponse(year))
}

// List returns the school's academic years, most recent first
// GET /api/v1/schools/:schoolId/academic-years
func (h *AcademicYearHandler) List(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	schoolID, ok := h.getSchoolID(c)
	if !ok {
		return
	}

	years, err := h.service.ListAcademicYears(c.Request.Context(), actor, schoolID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]AcademicYearResponse, len(years))
	for i, year := range years {
		responses[i] = toAcademicYearResponse(year)
	}
	h.Success(c, responses)
}

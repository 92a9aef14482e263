package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appacademics "github.com/schoolpay/backend/internal/application/academics"
	"github.com/schoolpay/backend/internal/domain/academics"
)

// ClassHandler exposes class management within an academic year
type ClassHandler struct {
	BaseHandler
	service *appacademics.ClassService
}

// NewClassHandler creates a new ClassHandler
func NewClassHandler(service *appacademics.ClassService) *ClassHandler {
	return &ClassHandler{service: service}
}

// CreateClassRequest is the payload for creating a class. The school comes
// in the body, not the path; the service authorizes the actor against it.
type CreateClassRequest struct {
	SchoolID       string `json:"school_id" binding:"required,uuid"`
	AcademicYearID string `json:"academic_year_id" binding:"required,uuid"`
	Name           string `json:"name" binding:"required"`
	Level          string `json:"level"`
	Capacity       *int   `json:"capacity"`
}

// ClassResponse is the wire representation of a class
type ClassResponse struct {
	ID             string    `json:"id"`
	AcademicYearID string    `json:"academic_year_id"`
	Name           string    `json:"name"`
	Level          string    `json:"level,omitempty"`
	Capacity       *int      `json:"capacity,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ClassSummaryResponse is a class with its year label and enrollment count
type ClassSummaryResponse struct {
	ClassResponse
	YearLabel    string `json:"year_label"`
	StudentCount int64  `json:"student_count"`
}

func toClassResponse(class *academics.SchoolClass) ClassResponse {
	return ClassResponse{
		ID:             class.ID.String(),
		AcademicYearID: class.AcademicYearID.String(),
		Name:           class.Name,
		Level:          class.Level,
		Capacity:       class.Capacity,
		CreatedAt:      class.CreatedAt,
	}
}

// Create creates a class bound to an academic year
// POST /api/v1/classes
func (h *ClassHandler) Create(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	yearID, err := uuid.Parse(req.AcademicYearID)
	if err != nil {
		h.BadRequest(c, "Invalid academic_year_id")
		return
	}

	class, err := h.service.CreateClass(c.Request.Context(), actor, appacademics.CreateClassRequest{
		SchoolID:       uuid.MustParse(req.SchoolID),
		AcademicYearID: yearID,
		Name:           req.Name,
		Level:          req.Level,
		Capacity:       req.Capacity,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toClassResponse(class))
}

// List returns class summaries, optionally filtered by academic year
// GET /api/v1/classes/schools/:schoolId?academic_year_id=...
func (h *ClassHandler) List(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	schoolID, ok := h.getSchoolID(c)
	if !ok {
		return
	}

	var yearFilter *uuid.UUID
	if raw := c.Query("academic_year_id"); raw != "" {
		yearID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid academic_year_id filter")
			return
		}
		yearFilter = &yearID
	}

	summaries, err := h.service.ListClasses(c.Request.Context(), actor, schoolID, yearFilter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ClassSummaryResponse, len(summaries))
	for i, summary := range summaries {
		responses[i] = ClassSummaryResponse{
			ClassResponse: toClassResponse(summary.Class),
			YearLabel:     summary.YearLabel,
			StudentCount:  summary.StudentCount,
		}
	}
	h.Success(c, responses)
}

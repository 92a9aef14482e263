package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appidentity "github.com/schoolpay/backend/internal/application/identity"
	"github.com/schoolpay/backend/internal/domain/identity"
)

// SchoolHandler exposes platform-level school management
type SchoolHandler struct {
	BaseHandler
	service *appidentity.SchoolService
}

// NewSchoolHandler creates a new SchoolHandler
func NewSchoolHandler(service *appidentity.SchoolService) *SchoolHandler {
	return &SchoolHandler{service: service}
}

// CreateSchoolRequest is the payload for registering a school
type CreateSchoolRequest struct {
	Name string `json:"name" binding:"required"`
}

// SchoolResponse is the wire representation of a school
type SchoolResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      int       `json:"code"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toSchoolResponse(school *identity.School) SchoolResponse {
	return SchoolResponse{
		ID:        school.ID.String(),
		Name:      school.Name,
		Code:      school.Code,
		IsActive:  school.IsActive,
		CreatedAt: school.CreatedAt,
	}
}

// Create registers a new school
// POST /api/v1/schools
func (h *SchoolHandler) Create(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	var req CreateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	school, err := h.service.CreateSchool(c.Request.Context(), actor, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toSchoolResponse(school))
}

// List returns all registered schools
// GET /api/v1/schools
func (h *SchoolHandler) List(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	schools, err := h.service.ListSchools(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]SchoolResponse, len(schools))
	for i, school := range schools {
		responses[i] = toSchoolResponse(school)
	}
	h.Success(c, responses)
}

// Suspend blocks all mutating operations of a school
// POST /api/v1/schools/:schoolId/suspend
func (h *SchoolHandler) Suspend(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	schoolID, ok := h.parseUUIDParam(c, "schoolId")
	if !ok {
		return
	}

	school, err := h.service.SuspendSchool(c.Request.Context(), actor, schoolID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSchoolResponse(school))
}

// Reactivate lifts a school suspension
// POST /api/v1/schools/:schoolId/reactivate
func (h *SchoolHandler) Reactivate(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	schoolID, ok := h.parseUUIDParam(c, "schoolId")
	if !ok {
		return
	}

	school, err := h.service.ReactivateSchool(c.Request.Context(), actor, schoolID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSchoolResponse(school))
}

package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appacademics "github.com/schoolpay/backend/internal/application/academics"
	"github.com/schoolpay/backend/internal/domain/academics"
	"github.com/schoolpay/backend/internal/domain/bulk"
	"github.com/schoolpay/backend/internal/interfaces/http/dto"
)

// StudentHandler exposes roster import and student listing
type StudentHandler struct {
	BaseHandler
	service *appacademics.StudentImportService
}

// NewStudentHandler creates a new StudentHandler
func NewStudentHandler(service *appacademics.StudentImportService) *StudentHandler {
	return &StudentHandler{service: service}
}

// StudentResponse is the wire representation of an enrolled student
type StudentResponse struct {
	ID             string    `json:"id"`
	StudentID      string    `json:"student_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Sex            string    `json:"sex,omitempty"`
	AcademicYearID string    `json:"academic_year_id"`
	ClassID        string    `json:"class_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func toStudentResponse(student *academics.SchoolStudent) StudentResponse {
	return StudentResponse{
		ID:             student.ID.String(),
		StudentID:      student.StudentID,
		FirstName:      student.FirstName,
		LastName:       student.LastName,
		Sex:            string(student.Sex),
		AcademicYearID: student.AcademicYearID.String(),
		ClassID:        student.ClassID.String(),
		CreatedAt:      student.CreatedAt,
	}
}

// ImportHistoryResponse is the wire representation of one past import
type ImportHistoryResponse struct {
	ID             string                   `json:"id"`
	FileName       string                   `json:"file_name"`
	AcademicYearID string                   `json:"academic_year_id"`
	ClassID        string                   `json:"class_id"`
	TotalRows      int                      `json:"total_rows"`
	CreatedRows    int                      `json:"created_rows"`
	ErrorRows      int                      `json:"error_rows"`
	Status         bulk.ImportStatus        `json:"status"`
	ErrorDetails   []bulk.ImportErrorDetail `json:"error_details,omitempty"`
	CompletedAt    time.Time                `json:"completed_at"`
}

// Import ingests an uploaded roster CSV
// POST /api/v1/students/schools/:schoolId/import (multipart form: file,
// academic_year_id, class_id)
func (h *StudentHandler) Import(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	schoolID, ok := h.getSchoolID(c)
	if !ok {
		return
	}

	yearID, err := uuid.Parse(c.PostForm("academic_year_id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid academic_year_id")
		return
	}
	classID, err := uuid.Parse(c.PostForm("class_id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid class_id")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A roster file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Could not read the uploaded file")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		h.BadRequest(c, "Could not read the uploaded file")
		return
	}

	result, err := h.service.ImportStudents(c.Request.Context(), actor, appacademics.ImportStudentsRequest{
		SchoolID:       schoolID,
		AcademicYearID: yearID,
		ClassID:        classID,
		FileName:       fileHeader.Filename,
		Data:           data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List returns the active students of a class for a year
// GET /api/v1/students/schools/:schoolId?academic_year_id=...&class_id=...
func (h *StudentHandler) List(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	schoolID, ok := h.getSchoolID(c)
	if !ok {
		return
	}
	yearID, err := uuid.Parse(c.Query("academic_year_id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid academic_year_id")
		return
	}
	classID, err := uuid.Parse(c.Query("class_id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid class_id")
		return
	}

	students, err := h.service.ListStudents(c.Request.Context(), actor, schoolID, yearID, classID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]StudentResponse, len(students))
	for i, student := range students {
		responses[i] = toStudentResponse(student)
	}
	h.Success(c, responses)
}

// ImportHistory returns the latest roster imports of the school
// GET /api/v1/students/schools/:schoolId/import-history?limit=...
func (h *StudentHandler) ImportHistory(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	schoolID, ok := h.getSchoolID(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	histories, err := h.service.ListImportHistory(c.Request.Context(), actor, schoolID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ImportHistoryResponse, len(histories))
	for i, history := range histories {
		responses[i] = ImportHistoryResponse{
			ID:             history.ID.String(),
			FileName:       history.FileName,
			AcademicYearID: history.AcademicYearID.String(),
			ClassID:        history.ClassID.String(),
			TotalRows:      history.TotalRows,
			CreatedRows:    history.CreatedRows,
			ErrorRows:      history.ErrorRows,
			Status:         history.Status,
			ErrorDetails:   history.ErrorDetails,
			CompletedAt:    history.CompletedAt,
		}
	}
	h.Success(c, responses)
}

package bulk

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/schoolpay/backend/internal/domain/shared"
)

// ImportStatus represents the outcome of a roster import
type ImportStatus string

const (
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusPartial   ImportStatus = "partial"
	ImportStatusFailed    ImportStatus = "failed"
)

// IsValid checks if the status is valid
func (s ImportStatus) IsValid() bool {
	switch s {
	case ImportStatusCompleted, ImportStatusPartial, ImportStatusFailed:
		return true
	}
	return false
}

// ImportErrorDetail is a per-row import error kept for later review
type ImportErrorDetail struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportHistory records one roster import: the file, the target enrollment
// and the per-row outcome
type ImportHistory struct {
	shared.SchoolAggregateRoot
	FileName       string              `json:"file_name"`
	FileSize       int64               `json:"file_size"`
	AcademicYearID uuid.UUID           `json:"academic_year_id"`
	ClassID        uuid.UUID           `json:"class_id"`
	TotalRows      int                 `json:"total_rows"`
	CreatedRows    int                 `json:"created_rows"`
	ErrorRows      int                 `json:"error_rows"`
	Status         ImportStatus        `json:"status"`
	ErrorDetails   []ImportErrorDetail `json:"error_details,omitempty"`
	ImportedBy     uuid.UUID           `json:"imported_by"`
	CompletedAt    time.Time           `json:"completed_at"`
}

// NewImportHistory records a finished roster import
func NewImportHistory(
	schoolID, academicYearID, classID uuid.UUID,
	fileName string,
	fileSize int64,
	totalRows, createdRows int,
	errors []ImportErrorDetail,
	importedBy uuid.UUID,
) (*ImportHistory, error) {
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "File name cannot be empty")
	}
	if fileSize < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "File size cannot be negative")
	}
	if createdRows < 0 || totalRows < 0 || createdRows+len(errors) > totalRows {
		return nil, shared.NewDomainError("INVALID_INPUT", "Row counts are inconsistent")
	}

	status := ImportStatusCompleted
	switch {
	case createdRows == 0 && len(errors) > 0:
		status = ImportStatusFailed
	case len(errors) > 0:
		status = ImportStatusPartial
	}

	return &ImportHistory{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		FileName:            fileName,
		FileSize:            fileSize,
		AcademicYearID:      academicYearID,
		ClassID:             classID,
		TotalRows:           totalRows,
		CreatedRows:         createdRows,
		ErrorRows:           len(errors),
		Status:              status,
		ErrorDetails:        errors,
		ImportedBy:          importedBy,
		CompletedAt:         time.Now(),
	}, nil
}

// ErrorDetailsJSON serializes the error details for persistence
func (h *ImportHistory) ErrorDetailsJSON() (string, error) {
	if len(h.ErrorDetails) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(h.ErrorDetails)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

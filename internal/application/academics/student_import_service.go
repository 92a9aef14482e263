package academics

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appaudit "github.com/schoolpay/backend/internal/application/audit"
	appidentity "github.com/schoolpay/backend/internal/application/identity"
	"github.com/schoolpay/backend/internal/domain/academics"
	"github.com/schoolpay/backend/internal/domain/audit"
	"github.com/schoolpay/backend/internal/domain/bulk"
	"github.com/schoolpay/backend/internal/domain/identity"
	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/infrastructure/config"
	"github.com/schoolpay/backend/internal/infrastructure/importer"
	"github.com/schoolpay/backend/internal/infrastructure/logger"
)

// StudentImportService ingests roster files: parse, validate, deduplicate,
// assign deterministic student identifiers and enroll the survivors in one
// transaction. A bad row never aborts the batch.
type StudentImportService struct {
	studentRepo academics.StudentRepository
	classRepo   academics.ClassRepository
	yearRepo    academics.AcademicYearRepository
	schoolRepo  identity.SchoolRepository
	historyRepo bulk.ImportHistoryRepository
	recorder    *appaudit.Recorder
	limits      config.ImportConfig
}

// NewStudentImportService creates a new StudentImportService
func NewStudentImportService(
	studentRepo academics.StudentRepository,
	classRepo academics.ClassRepository,
	yearRepo academics.AcademicYearRepository,
	schoolRepo identity.SchoolRepository,
	historyRepo bulk.ImportHistoryRepository,
	recorder *appaudit.Recorder,
	limits config.ImportConfig,
) *StudentImportService {
	return &StudentImportService{
		studentRepo: studentRepo,
		classRepo:   classRepo,
		yearRepo:    yearRepo,
		schoolRepo:  schoolRepo,
		historyRepo: historyRepo,
		recorder:    recorder,
		limits:      limits,
	}
}

// ImportStudentsRequest carries one uploaded roster file and its target
// enrollment
type ImportStudentsRequest struct {
	SchoolID       uuid.UUID
	AcademicYearID uuid.UUID
	ClassID        uuid.UUID
	FileName       string
	Data           []byte
}

// ImportResult reports the outcome of a roster import
type ImportResult struct {
	CreatedCount int                 `json:"created_count"`
	TotalRows    int                 `json:"total_rows"`
	Status       bulk.ImportStatus   `json:"status"`
	Errors       []importer.RowError `json:"errors"`
}

// ImportStudents runs the import pipeline for one roster file
func (s *StudentImportService) ImportStudents(ctx context.Context, actor identity.Actor, req ImportStudentsRequest) (*ImportResult, error) {
	if err := identity.Authorize(actor, req.SchoolID); err != nil {
		return nil, err
	}
	school, err := appidentity.RequireActiveSchool(ctx, s.schoolRepo, req.SchoolID)
	if err != nil {
		return nil, err
	}
	if s.limits.MaxFileSize > 0 && int64(len(req.Data)) > s.limits.MaxFileSize {
		return nil, shared.NewDomainError("INVALID_INPUT", "Roster file exceeds the maximum allowed size")
	}

	year, err := s.yearRepo.FindByIDForSchool(ctx, req.AcademicYearID, req.SchoolID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_INPUT", "Academic year does not belong to this school")
		}
		return nil, err
	}
	class, err := s.classRepo.FindByIDForSchool(ctx, req.ClassID, req.SchoolID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_INPUT", "Class does not belong to this school")
		}
		return nil, err
	}
	if class.AcademicYearID != year.ID {
		return nil, shared.NewDomainError("INVALID_INPUT", "Class does not belong to the given academic year")
	}

	errs := importer.NewErrorCollection(s.limits.MaxErrors)
	roster, err := importer.ReadRoster(req.Data, s.limits.MaxRows, errs)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	existing, err := s.studentRepo.FindByEnrollment(ctx, req.SchoolID, req.AcademicYearID, req.ClassID)
	if err != nil {
		return nil, err
	}
	enrolled := make(map[string]bool, len(existing))
	for _, student := range existing {
		enrolled[student.NameKey()] = true
	}

	seen := make(map[string]bool, len(roster.Rows))
	students := make([]*academics.SchoolStudent, 0, len(roster.Rows))
	for _, row := range roster.Rows {
		key := academics.NameKey(row.FirstName, row.LastName)
		fullName := row.FirstName + " " + row.LastName
		if seen[key] {
			errs.AddDuplicate(row.Line, fullName, false)
			continue
		}
		if enrolled[key] {
			errs.AddDuplicate(row.Line, fullName, true)
			continue
		}
		seen[key] = true

		// The identifier index continues past already enrolled students so
		// successive imports into the same class never collide.
		index := len(existing) + len(students) + 1
		studentID := academics.MakeStudentID(school.Code, year.Label, row.FirstName, row.LastName, index)
		student, err := academics.NewSchoolStudent(req.SchoolID, req.AcademicYearID, req.ClassID, studentID, row.FirstName, row.LastName, row.Sex)
		if err != nil {
			errs.AddFormat(row.Line, "", err.Error())
			continue
		}
		student.SetCreatedBy(actor.UserID)
		students = append(students, student)
	}

	if err := s.studentRepo.SaveBatch(ctx, students); err != nil {
		return nil, err
	}

	history, err := bulk.NewImportHistory(
		req.SchoolID, req.AcademicYearID, req.ClassID,
		req.FileName, int64(len(req.Data)),
		roster.TotalRows, len(students),
		errs.Details(), actor.UserID,
	)
	if err == nil {
		history.SetCreatedBy(actor.UserID)
		if saveErr := s.historyRepo.Save(ctx, history); saveErr != nil {
			logger.L(ctx).Error("failed to persist import history", zap.Error(saveErr))
		}
	} else {
		logger.L(ctx).Error("failed to build import history", zap.Error(err))
	}

	logger.L(ctx).Info("roster imported",
		zap.String("file", req.FileName),
		zap.Int("created", len(students)),
		zap.Int("errors", errs.TotalCount()))
	// The collection caps what it keeps; error_count carries the real total
	// so a truncated list is visible in the entry itself
	s.recorder.Record(ctx, actor, &req.SchoolID, audit.ActionStudentsImported, "school_student", nil, map[string]any{
		"file_name":        req.FileName,
		"created_count":    len(students),
		"error_count":      errs.TotalCount(),
		"errors_truncated": errs.IsTruncated(),
		"errors":           errs.Errors(),
	})

	status := bulk.ImportStatusCompleted
	if history != nil {
		status = history.Status
	}
	return &ImportResult{
		CreatedCount: len(students),
		TotalRows:    roster.TotalRows,
		Status:       status,
		Errors:       errs.Errors(),
	}, nil
}

// ListStudents returns the active students enrolled in a class for a year,
// ordered by name
func (s *StudentImportService) ListStudents(ctx context.Context, actor identity.Actor, schoolID, academicYearID, classID uuid.UUID) ([]*academics.SchoolStudent, error) {
	if err := identity.Authorize(actor, schoolID); err != nil {
		return nil, err
	}
	return s.studentRepo.FindByEnrollment(ctx, schoolID, academicYearID, classID)
}

// ListImportHistory returns the latest roster imports of a school
func (s *StudentImportService) ListImportHistory(ctx context.Context, actor identity.Actor, schoolID uuid.UUID, limit int) ([]*bulk.ImportHistory, error) {
	if err := identity.Authorize(actor, schoolID); err != nil {
		return nil, err
	}
	return s.historyRepo.FindRecentBySchool(ctx, schoolID, limit)
}

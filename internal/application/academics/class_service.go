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
	"github.com/schoolpay/backend/internal/domain/identity"
	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/infrastructure/logger"
)

// ClassService manages class groups within an academic year
type ClassService struct {
	classRepo  academics.ClassRepository
	yearRepo   academics.AcademicYearRepository
	schoolRepo identity.SchoolRepository
	recorder   *appaudit.Recorder
}

// NewClassService creates a new ClassService
func NewClassService(
	classRepo academics.ClassRepository,
	yearRepo academics.AcademicYearRepository,
	schoolRepo identity.SchoolRepository,
	recorder *appaudit.Recorder,
) *ClassService {
	return &ClassService{
		classRepo:  classRepo,
		yearRepo:   yearRepo,
		schoolRepo: schoolRepo,
		recorder:   recorder,
	}
}

// CreateClassRequest carries the inputs for a new class
type CreateClassRequest struct {
	SchoolID       uuid.UUID
	AcademicYearID uuid.UUID
	Name           string
	Level          string
	Capacity       *int
}

// CreateClass creates a class bound to an academic year of the same school.
// A year reference that does not resolve within the school is an input
// error: the year may well exist under another school, and that is exactly
// the forgery this check rejects.
func (s *ClassService) CreateClass(ctx context.Context, actor identity.Actor, req CreateClassRequest) (*academics.SchoolClass, error) {
	if err := identity.Authorize(actor, req.SchoolID); err != nil {
		return nil, err
	}
	if _, err := appidentity.RequireActiveSchool(ctx, s.schoolRepo, req.SchoolID); err != nil {
		return nil, err
	}

	if _, err := s.yearRepo.FindByIDForSchool(ctx, req.AcademicYearID, req.SchoolID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_INPUT", "Academic year does not belong to this school")
		}
		return nil, err
	}

	class, err := academics.NewSchoolClass(req.SchoolID, req.AcademicYearID, req.Name, req.Level, req.Capacity)
	if err != nil {
		return nil, err
	}
	class.SetCreatedBy(actor.UserID)

	if err := s.classRepo.Save(ctx, class); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("class created",
		zap.String("class_id", class.ID.String()),
		zap.String("name", class.Name))
	s.recorder.Record(ctx, actor, &req.SchoolID, audit.ActionClassCreated, "school_class", &class.ID, map[string]any{
		"name":             class.Name,
		"academic_year_id": class.AcademicYearID.String(),
	})
	return class, nil
}

// ListClasses returns class summaries with student counts, optionally
// filtered by academic year
func (s *ClassService) ListClasses(ctx context.Context, actor identity.Actor, schoolID uuid.UUID, academicYearID *uuid.UUID) ([]*academics.ClassSummary, error) {
	if err := identity.Authorize(actor, schoolID); err != nil {
		return nil, err
	}
	return s.classRepo.ListBySchool(ctx, schoolID, academicYearID)
}

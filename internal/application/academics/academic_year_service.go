package academics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appaudit "github.com/schoolpay/backend/internal/application/audit"
	appidentity "github.com/schoolpay/backend/internal/application/identity"
	"github.com/schoolpay/backend/internal/domain/academics"
	"github.com/schoolpay/backend/internal/domain/audit"
	"github.com/schoolpay/backend/internal/domain/identity"
	"github.com/schoolpay/backend/internal/infrastructure/logger"
)

// AcademicYearService manages academic years under the single-active-year
// rule
type AcademicYearService struct {
	yearRepo   academics.AcademicYearRepository
	schoolRepo identity.SchoolRepository
	recorder   *appaudit.Recorder
}

// NewAcademicYearService creates a new AcademicYearService
func NewAcademicYearService(
	yearRepo academics.AcademicYearRepository,
	schoolRepo identity.SchoolRepository,
	recorder *appaudit.Recorder,
) *AcademicYearService {
	return &AcademicYearService{
		yearRepo:   yearRepo,
		schoolRepo: schoolRepo,
		recorder:   recorder,
	}
}

// CreateAcademicYearRequest carries the inputs for a new academic year
type CreateAcademicYearRequest struct {
	SchoolID  uuid.UUID
	Label     string
	StartDate time.Time
	EndDate   time.Time
	IsActive  bool
}

// CreateAcademicYear creates a year; when the year is created active, every
// other year of the school is deactivated in the same transaction
func (s *AcademicYearService) CreateAcademicYear(ctx context.Context, actor identity.Actor, req CreateAcademicYearRequest) (*academics.AcademicYear, error) {
	if err := identity.Authorize(actor, req.SchoolID); err != nil {
		return nil, err
	}
	if _, err := appidentity.RequireActiveSchool(ctx, s.schoolRepo, req.SchoolID); err != nil {
		return nil, err
	}

	year, err := academics.NewAcademicYear(req.SchoolID, req.Label, req.StartDate, req.EndDate, req.IsActive)
	if err != nil {
		return nil, err
	}
	year.SetCreatedBy(actor.UserID)

	if req.IsActive {
		err = s.yearRepo.SaveAsActive(ctx, year)
	} else {
		err = s.yearRepo.Save(ctx, year)
	}
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("academic year created",
		zap.String("year_id", year.ID.String()),
		zap.String("label", year.Label),
		zap.Bool("active", year.IsActive))
	s.recorder.Record(ctx, actor, &req.SchoolID, audit.ActionAcademicYearCreated, "academic_year", &year.ID, map[string]any{
		"label":  year.Label,
		"active": year.IsActive,
	})
	return year, nil
}

// ListAcademicYears returns the school's years, most recent first
func (s *AcademicYearService) ListAcademicYears(ctx context.Context, actor identity.Actor, schoolID uuid.UUID) ([]*academics.AcademicYear, error) {
	if err := identity.Authorize(actor, schoolID); err != nil {
		return nil, err
	}
	return s.yearRepo.FindAllBySchool(ctx, schoolID)
}

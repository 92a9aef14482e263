package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appaudit "github.com/schoolpay/backend/internal/application/audit"
	"github.com/schoolpay/backend/internal/domain/audit"
	"github.com/schoolpay/backend/internal/domain/identity"
	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/infrastructure/logger"
)

// SchoolService handles platform-level school management. Every operation
// here is reserved to the platform role.
type SchoolService struct {
	schoolRepo identity.SchoolRepository
	recorder   *appaudit.Recorder
}

// NewSchoolService creates a new SchoolService
func NewSchoolService(schoolRepo identity.SchoolRepository, recorder *appaudit.Recorder) *SchoolService {
	return &SchoolService{
		schoolRepo: schoolRepo,
		recorder:   recorder,
	}
}

func requirePlatform(actor identity.Actor) error {
	if !actor.Role.IsValid() {
		return shared.ErrUnauthorized
	}
	if !actor.Role.IsPlatform() {
		return shared.NewDomainError("FORBIDDEN", "School management requires the platform role")
	}
	return nil
}

// CreateSchool registers a school and assigns it the next numeric code
func (s *SchoolService) CreateSchool(ctx context.Context, actor identity.Actor, name string) (*identity.School, error) {
	if err := requirePlatform(actor); err != nil {
		return nil, err
	}

	code, err := s.schoolRepo.NextCode(ctx)
	if err != nil {
		return nil, err
	}
	school, err := identity.NewSchool(name, code)
	if err != nil {
		return nil, err
	}
	if err := s.schoolRepo.Save(ctx, school); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("school created",
		zap.String("school_id", school.ID.String()),
		zap.Int("code", school.Code))
	s.recorder.Record(ctx, actor, nil, audit.ActionSchoolCreated, "school", &school.ID, map[string]any{
		"name": school.Name,
		"code": school.Code,
	})
	return school, nil
}

// ListSchools returns all registered schools
func (s *SchoolService) ListSchools(ctx context.Context, actor identity.Actor) ([]*identity.School, error) {
	if err := requirePlatform(actor); err != nil {
		return nil, err
	}
	return s.schoolRepo.FindAll(ctx)
}

// SuspendSchool blocks all mutating operations of a school
func (s *SchoolService) SuspendSchool(ctx context.Context, actor identity.Actor, schoolID uuid.UUID) (*identity.School, error) {
	return s.setActive(ctx, actor, schoolID, false)
}

// ReactivateSchool lifts a suspension
func (s *SchoolService) ReactivateSchool(ctx context.Context, actor identity.Actor, schoolID uuid.UUID) (*identity.School, error) {
	return s.setActive(ctx, actor, schoolID, true)
}

func (s *SchoolService) setActive(ctx context.Context, actor identity.Actor, schoolID uuid.UUID, active bool) (*identity.School, error) {
	if err := requirePlatform(actor); err != nil {
		return nil, err
	}
	school, err := s.schoolRepo.FindByID(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	action := audit.ActionSchoolSuspended
	if active {
		action = audit.ActionSchoolReactivated
		err = school.Reactivate()
	} else {
		err = school.Suspend()
	}
	if err != nil {
		return nil, err
	}
	if err := s.schoolRepo.Update(ctx, school); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor, nil, action, "school", &school.ID, map[string]any{
		"name": school.Name,
	})
	return school, nil
}

// RequireActiveSchool loads a school and fails when it is suspended. School
// services call this before any mutating operation.
func RequireActiveSchool(ctx context.Context, repo identity.SchoolRepository, schoolID uuid.UUID) (*identity.School, error) {
	school, err := repo.FindByID(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	if !school.IsActive {
		return nil, shared.ErrSchoolSuspended
	}
	return school, nil
}

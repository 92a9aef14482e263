package academics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appaudit "github.com/schoolpay/backend/internal/application/audit"
	"github.com/schoolpay/backend/internal/domain/academics"
	"github.com/schoolpay/backend/internal/domain/identity"
	"github.com/schoolpay/backend/internal/domain/shared"
)

type yearFixture struct {
	service    *AcademicYearService
	yearRepo   *MockAcademicYearRepository
	schoolRepo *MockSchoolRepository
	auditRepo  *MockAuditRepository
	school     *identity.School
	actor      identity.Actor
}

func newYearFixture(t *testing.T) *yearFixture {
	t.Helper()
	school, err := identity.NewSchool("College Horizon", 7)
	require.NoError(t, err)

	f := &yearFixture{
		yearRepo:   new(MockAcademicYearRepository),
		schoolRepo: new(MockSchoolRepository),
		auditRepo:  new(MockAuditRepository),
		school:     school,
		actor:      identity.Actor{UserID: uuid.New(), Role: identity.RoleSchoolAdmin, SchoolID: school.ID},
	}
	f.service = NewAcademicYearService(f.yearRepo, f.schoolRepo, appaudit.NewRecorder(f.auditRepo))
	return f
}

func yearRequest(schoolID uuid.UUID, active bool) CreateAcademicYearRequest {
	return CreateAcademicYearRequest{
		SchoolID:  schoolID,
		Label:     "2025-2026",
		StartDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		IsActive:  active,
	}
}

func TestCreateAcademicYear(t *testing.T) {
	t.Run("an active year displaces the previous active one", func(t *testing.T) {
		f := newYearFixture(t)
		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)
		f.yearRepo.On("SaveAsActive", mock.Anything, mock.Anything).Return(nil)
		f.auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

		year, err := f.service.CreateAcademicYear(context.Background(), f.actor, yearRequest(f.school.ID, true))
		require.NoError(t, err)
		assert.True(t, year.IsActive)
		assert.Equal(t, "2025-2026", year.Label)
		f.yearRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("an inactive year is saved without displacement", func(t *testing.T) {
		f := newYearFixture(t)
		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)
		f.yearRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

		year, err := f.service.CreateAcademicYear(context.Background(), f.actor, yearRequest(f.school.ID, false))
		require.NoError(t, err)
		assert.False(t, year.IsActive)
		f.yearRepo.AssertNotCalled(t, "SaveAsActive", mock.Anything, mock.Anything)
	})

	t.Run("rejects an end date before the start date", func(t *testing.T) {
		f := newYearFixture(t)
		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)

		req := yearRequest(f.school.ID, true)
		req.EndDate = req.StartDate.AddDate(0, -1, 0)
		_, err := f.service.CreateAcademicYear(context.Background(), f.actor, req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})

	t.Run("blocks a suspended school", func(t *testing.T) {
		f := newYearFixture(t)
		require.NoError(t, f.school.Suspend())
		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)

		_, err := f.service.CreateAcademicYear(context.Background(), f.actor, yearRequest(f.school.ID, true))
		assert.ErrorIs(t, err, shared.ErrSchoolSuspended)
	})
}

func TestListAcademicYears(t *testing.T) {
	f := newYearFixture(t)
	years := []*academics.AcademicYear{}
	f.yearRepo.On("FindAllBySchool", mock.Anything, f.school.ID).Return(years, nil)

	result, err := f.service.ListAcademicYears(context.Background(), f.actor, f.school.ID)
	require.NoError(t, err)
	assert.Equal(t, years, result)
}

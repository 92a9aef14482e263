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
	"github.com/schoolpay/backend/internal/domain/audit"
	"github.com/schoolpay/backend/internal/domain/bulk"
	"github.com/schoolpay/backend/internal/domain/identity"
	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/infrastructure/config"
	"github.com/schoolpay/backend/internal/infrastructure/importer"
)

// MockStudentRepository is a mock implementation of StudentRepository
type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) SaveBatch(ctx context.Context, students []*academics.SchoolStudent) error {
	args := m.Called(ctx, students)
	return args.Error(0)
}

func (m *MockStudentRepository) FindByIDForSchool(ctx context.Context, id, schoolID uuid.UUID) (*academics.SchoolStudent, error) {
	args := m.Called(ctx, id, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academics.SchoolStudent), args.Error(1)
}

func (m *MockStudentRepository) FindByEnrollment(ctx context.Context, schoolID, academicYearID, classID uuid.UUID) ([]*academics.SchoolStudent, error) {
	args := m.Called(ctx, schoolID, academicYearID, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*academics.SchoolStudent), args.Error(1)
}

// MockClassRepository is a mock implementation of ClassRepository
type MockClassRepository struct {
	mock.Mock
}

func (m *MockClassRepository) Save(ctx context.Context, class *academics.SchoolClass) error {
	args := m.Called(ctx, class)
	return args.Error(0)
}

func (m *MockClassRepository) FindByIDForSchool(ctx context.Context, id, schoolID uuid.UUID) (*academics.SchoolClass, error) {
	args := m.Called(ctx, id, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academics.SchoolClass), args.Error(1)
}

func (m *MockClassRepository) ListBySchool(ctx context.Context, schoolID uuid.UUID, academicYearID *uuid.UUID) ([]*academics.ClassSummary, error) {
	args := m.Called(ctx, schoolID, academicYearID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*academics.ClassSummary), args.Error(1)
}

// MockAcademicYearRepository is a mock implementation of AcademicYearRepository
type MockAcademicYearRepository struct {
	mock.Mock
}

func (m *MockAcademicYearRepository) Save(ctx context.Context, year *academics.AcademicYear) error {
	args := m.Called(ctx, year)
	return args.Error(0)
}

func (m *MockAcademicYearRepository) SaveAsActive(ctx context.Context, year *academics.AcademicYear) error {
	args := m.Called(ctx, year)
	return args.Error(0)
}

func (m *MockAcademicYearRepository) FindByIDForSchool(ctx context.Context, id, schoolID uuid.UUID) (*academics.AcademicYear, error) {
	args := m.Called(ctx, id, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academics.AcademicYear), args.Error(1)
}

func (m *MockAcademicYearRepository) FindAllBySchool(ctx context.Context, schoolID uuid.UUID) ([]*academics.AcademicYear, error) {
	args := m.Called(ctx, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*academics.AcademicYear), args.Error(1)
}

// MockSchoolRepository is a mock implementation of SchoolRepository
type MockSchoolRepository struct {
	mock.Mock
}

func (m *MockSchoolRepository) Save(ctx context.Context, school *identity.School) error {
	args := m.Called(ctx, school)
	return args.Error(0)
}

func (m *MockSchoolRepository) Update(ctx context.Context, school *identity.School) error {
	args := m.Called(ctx, school)
	return args.Error(0)
}

func (m *MockSchoolRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.School, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.School), args.Error(1)
}

func (m *MockSchoolRepository) FindAll(ctx context.Context) ([]*identity.School, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.School), args.Error(1)
}

func (m *MockSchoolRepository) NextCode(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockImportHistoryRepository is a mock implementation of ImportHistoryRepository
type MockImportHistoryRepository struct {
	mock.Mock
}

func (m *MockImportHistoryRepository) Save(ctx context.Context, history *bulk.ImportHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockImportHistoryRepository) FindRecentBySchool(ctx context.Context, schoolID uuid.UUID, limit int) ([]*bulk.ImportHistory, error) {
	args := m.Called(ctx, schoolID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bulk.ImportHistory), args.Error(1)
}

// MockAuditRepository is a mock implementation of the audit Repository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) FindRecentBySchool(ctx context.Context, schoolID uuid.UUID, action *audit.Action, limit int) ([]*audit.Entry, error) {
	args := m.Called(ctx, schoolID, action, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.Entry), args.Error(1)
}

type importFixture struct {
	service     *StudentImportService
	studentRepo *MockStudentRepository
	classRepo   *MockClassRepository
	yearRepo    *MockAcademicYearRepository
	schoolRepo  *MockSchoolRepository
	historyRepo *MockImportHistoryRepository
	auditRepo   *MockAuditRepository
	school      *identity.School
	year        *academics.AcademicYear
	class       *academics.SchoolClass
	actor       identity.Actor
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()
	school, err := identity.NewSchool("Lycee du Centre", 12)
	require.NoError(t, err)
	year, err := academics.NewAcademicYear(school.ID, "2025-2026",
		time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), true)
	require.NoError(t, err)
	class, err := academics.NewSchoolClass(school.ID, year.ID, "6eme A", "6eme", nil)
	require.NoError(t, err)

	f := &importFixture{
		studentRepo: new(MockStudentRepository),
		classRepo:   new(MockClassRepository),
		yearRepo:    new(MockAcademicYearRepository),
		schoolRepo:  new(MockSchoolRepository),
		historyRepo: new(MockImportHistoryRepository),
		auditRepo:   new(MockAuditRepository),
		school:      school,
		year:        year,
		class:       class,
		actor:       identity.Actor{UserID: uuid.New(), Role: identity.RoleSchoolAdmin, SchoolID: school.ID},
	}
	f.service = NewStudentImportService(
		f.studentRepo, f.classRepo, f.yearRepo, f.schoolRepo, f.historyRepo,
		appaudit.NewRecorder(f.auditRepo),
		config.ImportConfig{MaxFileSize: 1 << 20, MaxRows: 1000, MaxErrors: 100},
	)
	return f
}

func (f *importFixture) request(data []byte) ImportStudentsRequest {
	return ImportStudentsRequest{
		SchoolID:       f.school.ID,
		AcademicYearID: f.year.ID,
		ClassID:        f.class.ID,
		FileName:       "roster.csv",
		Data:           data,
	}
}

func TestImportStudents(t *testing.T) {
	t.Run("imports, deduplicates and assigns deterministic identifiers", func(t *testing.T) {
		f := newImportFixture(t)
		enrolled, err := academics.NewSchoolStudent(f.school.ID, f.year.ID, f.class.ID, "S12-2025-2-MD0001", "Marcel", "Dupont", academics.SexMale)
		require.NoError(t, err)

		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)
		f.yearRepo.On("FindByIDForSchool", mock.Anything, f.year.ID, f.school.ID).Return(f.year, nil)
		f.classRepo.On("FindByIDForSchool", mock.Anything, f.class.ID, f.school.ID).Return(f.class, nil)
		f.studentRepo.On("FindByEnrollment", mock.Anything, f.school.ID, f.year.ID, f.class.ID).
			Return([]*academics.SchoolStudent{enrolled}, nil)

		var saved []*academics.SchoolStudent
		f.studentRepo.On("SaveBatch", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				saved = args.Get(1).([]*academics.SchoolStudent)
			}).Return(nil)
		f.historyRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

		data := []byte("first_name,last_name,sex\nJean,Pierre,M\njean,pierre,F\nAwa,Diallo,F\nMarcel,Dupont,M\n")
		result, err := f.service.ImportStudents(context.Background(), f.actor, f.request(data))
		require.NoError(t, err)

		assert.Equal(t, 2, result.CreatedCount)
		assert.Equal(t, 4, result.TotalRows)
		assert.Equal(t, bulk.ImportStatusPartial, result.Status)
		require.Len(t, result.Errors, 2)
		assert.Equal(t, importer.ErrCodeDuplicateInFile, result.Errors[0].Code)
		assert.Equal(t, 3, result.Errors[0].Row)
		assert.Equal(t, importer.ErrCodeDuplicateInDB, result.Errors[1].Code)
		assert.Equal(t, 5, result.Errors[1].Row)

		require.Len(t, saved, 2)
		assert.Equal(t, "S12-2025-2-JP0002", saved[0].StudentID)
		assert.Equal(t, "S12-2025-2-AD0003", saved[1].StudentID)
		assert.Equal(t, academics.SexMale, saved[0].Sex)
	})

	t.Run("audit entry keeps the real error count when the list is capped", func(t *testing.T) {
		f := newImportFixture(t)
		f.service.limits.MaxErrors = 1

		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)
		f.yearRepo.On("FindByIDForSchool", mock.Anything, f.year.ID, f.school.ID).Return(f.year, nil)
		f.classRepo.On("FindByIDForSchool", mock.Anything, f.class.ID, f.school.ID).Return(f.class, nil)
		f.studentRepo.On("FindByEnrollment", mock.Anything, f.school.ID, f.year.ID, f.class.ID).
			Return([]*academics.SchoolStudent{}, nil)
		f.studentRepo.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)
		f.historyRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		var entry *audit.Entry
		f.auditRepo.On("Append", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				entry = args.Get(1).(*audit.Entry)
			}).Return(nil)

		data := []byte("first_name,last_name,sex\nJean,Pierre,M\njean,pierre,F\nJEAN,PIERRE,M\n")
		result, err := f.service.ImportStudents(context.Background(), f.actor, f.request(data))
		require.NoError(t, err)
		assert.Len(t, result.Errors, 1)

		require.NotNil(t, entry)
		assert.Equal(t, 2, entry.Metadata["error_count"])
		assert.Equal(t, true, entry.Metadata["errors_truncated"])
		require.Len(t, entry.Metadata["errors"].([]importer.RowError), 1)
	})

	t.Run("rejects a year of another school as input error", func(t *testing.T) {
		f := newImportFixture(t)
		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)
		f.yearRepo.On("FindByIDForSchool", mock.Anything, f.year.ID, f.school.ID).Return(nil, shared.ErrNotFound)

		_, err := f.service.ImportStudents(context.Background(), f.actor, f.request([]byte("first_name,last_name\nA,B\n")))
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})

	t.Run("rejects a class outside the given year", func(t *testing.T) {
		f := newImportFixture(t)
		otherClass, err := academics.NewSchoolClass(f.school.ID, uuid.New(), "5eme B", "", nil)
		require.NoError(t, err)

		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)
		f.yearRepo.On("FindByIDForSchool", mock.Anything, f.year.ID, f.school.ID).Return(f.year, nil)
		f.classRepo.On("FindByIDForSchool", mock.Anything, f.class.ID, f.school.ID).Return(otherClass, nil)

		_, err = f.service.ImportStudents(context.Background(), f.actor, f.request([]byte("first_name,last_name\nA,B\n")))
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})

	t.Run("blocks a suspended school", func(t *testing.T) {
		f := newImportFixture(t)
		require.NoError(t, f.school.Suspend())
		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)

		_, err := f.service.ImportStudents(context.Background(), f.actor, f.request([]byte("first_name,last_name\nA,B\n")))
		assert.ErrorIs(t, err, shared.ErrSchoolSuspended)
	})

	t.Run("rejects an actor of another school", func(t *testing.T) {
		f := newImportFixture(t)
		outsider := identity.Actor{UserID: uuid.New(), Role: identity.RoleSchoolAdmin, SchoolID: uuid.New()}

		_, err := f.service.ImportStudents(context.Background(), outsider, f.request([]byte("first_name,last_name\nA,B\n")))
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
	})

	t.Run("rejects an oversized file", func(t *testing.T) {
		f := newImportFixture(t)
		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)
		f.service.limits.MaxFileSize = 8

		_, err := f.service.ImportStudents(context.Background(), f.actor, f.request([]byte("first_name,last_name\nA,B\n")))
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})
}

func TestListImportHistory(t *testing.T) {
	f := newImportFixture(t)
	histories := []*bulk.ImportHistory{}
	f.historyRepo.On("FindRecentBySchool", mock.Anything, f.school.ID, 20).Return(histories, nil)

	result, err := f.service.ListImportHistory(context.Background(), f.actor, f.school.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, histories, result)
}

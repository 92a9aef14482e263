package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/schoolpay/backend/internal/domain/ledger"
	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/infrastructure/persistence/models"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts a single-mode ledger row
func (r *GormPaymentRepository) Create(ctx context.Context, payment *ledger.Payment) error {
	var model models.PaymentModel
	model.FromDomain(payment)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// lockGroup serializes writers of one installment group. Row locks on the
// prior rows are not enough: an empty group has no rows to lock, so two
// concurrent first installments would both read nothing, insert with
// self-derived status and skip sibling propagation. The advisory lock on the
// group key covers the empty-group case. sqlite has no advisory locks; its
// single-writer transactions already serialize group writes.
func lockGroup(tx *gorm.DB, key ledger.GroupKey) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	groupKey := fmt.Sprintf("%s|%s|%s|%s|%s",
		key.SchoolID, key.StudentID, key.ClassID, key.AcademicYearID, key.PaymentTypeID)
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", groupKey).Error
}

// forUpdate adds a row lock on dialects that support it
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// CreateInstallment inserts an installment row as one transactional unit:
// the group is locked, the authoritative due amount reused, the group-wide
// status derived and propagated to every sibling. The payment's AmountDue
// and Status are updated in place.
func (r *GormPaymentRepository) CreateInstallment(ctx context.Context, payment *ledger.Payment) error {
	key := payment.Key()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockGroup(tx, key); err != nil {
			return err
		}

		var priorModels []models.PaymentModel
		if err := forUpdate(tx).
			Where("school_id = ? AND student_id = ? AND class_id = ? AND academic_year_id = ? AND payment_type_id = ? AND deleted_at IS NULL",
				key.SchoolID, key.StudentID, key.ClassID, key.AcademicYearID, key.PaymentTypeID).
			Order("payment_date ASC, created_at ASC").
			Find(&priorModels).Error; err != nil {
			return err
		}

		prior := make([]*ledger.Payment, len(priorModels))
		for i := range priorModels {
			prior[i] = priorModels[i].ToDomain()
		}

		due, status := ledger.ResolveInstallment(prior, payment.AmountDue, payment.AmountPaid)
		payment.AmountDue = due
		payment.Status = status

		var model models.PaymentModel
		model.FromDomain(payment)
		if err := tx.Create(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return err
		}

		if len(priorModels) == 0 {
			return nil
		}
		priorIDs := make([]uuid.UUID, len(priorModels))
		for i := range priorModels {
			priorIDs[i] = priorModels[i].ID
		}
		return tx.Model(&models.PaymentModel{}).
			Where("id IN ?", priorIDs).
			Update("status", status).Error
	})
}

// SoftDelete marks the row deleted and recomputes the status of the
// remaining rows of its installment group in the same transaction
func (r *GormPaymentRepository) SoftDelete(ctx context.Context, id, schoolID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Peek at the row before locking anything so the group lock is always
		// taken before row locks, in the same order as CreateInstallment
		var peek models.PaymentModel
		if err := tx.First(&peek, "id = ? AND school_id = ? AND deleted_at IS NULL", id, schoolID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		if peek.IsInstallment {
			if err := lockGroup(tx, peek.ToDomain().Key()); err != nil {
				return err
			}
		}

		var model models.PaymentModel
		if err := forUpdate(tx).
			First(&model, "id = ? AND school_id = ? AND deleted_at IS NULL", id, schoolID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		payment := model.ToDomain()
		if err := payment.SoftDelete(); err != nil {
			return err
		}
		if err := tx.Model(&models.PaymentModel{}).
			Where("id = ?", model.ID).
			Updates(map[string]any{
				"deleted_at": payment.DeletedAt,
				"version":    payment.Version,
			}).Error; err != nil {
			return err
		}

		if !payment.IsInstallment {
			return nil
		}

		key := payment.Key()
		var siblingModels []models.PaymentModel
		if err := forUpdate(tx).
			Where("school_id = ? AND student_id = ? AND class_id = ? AND academic_year_id = ? AND payment_type_id = ? AND deleted_at IS NULL",
				key.SchoolID, key.StudentID, key.ClassID, key.AcademicYearID, key.PaymentTypeID).
			Order("payment_date ASC, created_at ASC").
			Find(&siblingModels).Error; err != nil {
			return err
		}
		if len(siblingModels) == 0 {
			return nil
		}

		siblings := make([]*ledger.Payment, len(siblingModels))
		siblingIDs := make([]uuid.UUID, len(siblingModels))
		for i := range siblingModels {
			siblings[i] = siblingModels[i].ToDomain()
			siblingIDs[i] = siblingModels[i].ID
		}
		status := ledger.GroupStatus(siblings)
		return tx.Model(&models.PaymentModel{}).
			Where("id IN ?", siblingIDs).
			Update("status", status).Error
	})
}

// FindByIDForSchool finds a non-deleted ledger row within one school
func (r *GormPaymentRepository) FindByIDForSchool(ctx context.Context, id, schoolID uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ? AND school_id = ? AND deleted_at IS NULL", id, schoolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindRecordByID returns one non-deleted row with its joined names
func (r *GormPaymentRepository) FindRecordByID(ctx context.Context, id, schoolID uuid.UUID) (*ledger.PaymentRecord, error) {
	var row paymentRecordRow
	err := r.recordQuery(ctx).
		Where("payments.id = ? AND payments.school_id = ? AND payments.deleted_at IS NULL", id, schoolID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, shared.ErrNotFound
	}
	return row.toRecord(), nil
}

type paymentRecordRow struct {
	models.PaymentModel
	StudentFirstName string
	StudentLastName  string
	StudentExternal  string
	ClassName        string
	YearLabel        string
	PaymentTypeName  string
}

func (row *paymentRecordRow) toRecord() *ledger.PaymentRecord {
	payment := row.ToDomain()
	return &ledger.PaymentRecord{
		Payment:          payment,
		StudentName:      row.StudentFirstName + " " + row.StudentLastName,
		StudentExternal:  row.StudentExternal,
		ClassName:        row.ClassName,
		YearLabel:        row.YearLabel,
		PaymentTypeName:  row.PaymentTypeName,
		RecordedByUserID: payment.RecordedBy,
	}
}

func (r *GormPaymentRepository) recordQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select(`payments.*,
			school_students.first_name AS student_first_name,
			school_students.last_name AS student_last_name,
			school_students.student_id AS student_external,
			school_classes.name AS class_name,
			academic_years.label AS year_label,
			payment_types.name AS payment_type_name`).
		Joins("JOIN school_students ON school_students.id = payments.student_id").
		Joins("JOIN school_classes ON school_classes.id = payments.class_id").
		Joins("JOIN academic_years ON academic_years.id = payments.academic_year_id").
		Joins("JOIN payment_types ON payment_types.id = payments.payment_type_id")
}

// List returns non-deleted rows with the joined names a ledger view or
// receipt needs, most recent first, optionally filtered by status
func (r *GormPaymentRepository) List(ctx context.Context, schoolID uuid.UUID, status *ledger.PaymentStatus) ([]*ledger.PaymentRecord, error) {
	query := r.recordQuery(ctx).
		Where("payments.school_id = ? AND payments.deleted_at IS NULL", schoolID)
	if status != nil {
		query = query.Where("payments.status = ?", *status)
	}

	var rows []paymentRecordRow
	if err := query.Order("payments.payment_date DESC, payments.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]*ledger.PaymentRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].toRecord()
	}
	return records, nil
}

// AttachReceiptReference stores the issued document reference on an already
// committed row
func (r *GormPaymentRepository) AttachReceiptReference(ctx context.Context, id uuid.UUID, reference string) error {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("id = ?", id).
		Update("receipt_reference", reference)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// NextReceiptNumber allocates the next receipt number for the school and
// day. Format: RC-{schoolCode}-{YYYYMMDD}-{NNNN}. The unique index on
// (school_id, receipt_number) catches the rare concurrent allocation, which
// surfaces as ErrAlreadyExists on insert.
func (r *GormPaymentRepository) NextReceiptNumber(ctx context.Context, schoolID uuid.UUID, schoolCode int, date time.Time) (string, error) {
	prefix := fmt.Sprintf("RC-%d-%s-", schoolCode, date.Format("20060102"))

	var maxNumber string
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("receipt_number").
		Where("school_id = ? AND receipt_number LIKE ?", schoolID, prefix+"%").
		Order("receipt_number DESC").
		Limit(1).
		Scan(&maxNumber).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	nextSeq := 1
	if maxNumber != "" {
		var seq int
		if _, err := fmt.Sscanf(maxNumber[len(prefix):], "%04d", &seq); err == nil {
			nextSeq = seq + 1
		}
	}
	return fmt.Sprintf("%s%04d", prefix, nextSeq), nil
}

// Ensure GormPaymentRepository implements the interface
var _ ledger.PaymentRepository = (*GormPaymentRepository)(nil)

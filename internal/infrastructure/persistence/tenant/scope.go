// Package tenant provides per-school database scoping for GORM.
//
// A school is the isolation boundary for all scoped data. This package
// applies automatic school_id filtering so a handler or repository bug
// cannot leak another school's rows. The school ID is taken from the
// request context (set by the scope middleware) and added as a
// WHERE school_id = ? condition to every query.
//
// Usage:
//
//	db := tenant.NewTenantDB(gormDB)
//	scoped := db.WithContext(ctx) // automatically applies school filtering
//	scoped.Find(&payments) // WHERE school_id = 'xxx' is auto-added
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolpay/backend/internal/infrastructure/logger"
)

// ErrSchoolIDRequired is returned when school_id is required but not found
var ErrSchoolIDRequired = errors.New("school_id is required but not found in context")

// ErrInvalidSchoolID is returned when school_id format is invalid
var ErrInvalidSchoolID = errors.New("invalid school_id format")

// SchoolScope applies school filtering to GORM queries
func SchoolScope(schoolID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("school_id = ?", schoolID)
	}
}

// SchoolScopeString applies school filtering using a string school ID
func SchoolScopeString(schoolID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("school_id = ?", schoolID)
	}
}

// TenantDB wraps GORM DB with automatic school scoping
type TenantDB struct {
	db       *gorm.DB
	required bool
}

// NewTenantDB creates a new TenantDB that requires a school in context
func NewTenantDB(db *gorm.DB) *TenantDB {
	return &TenantDB{db: db, required: true}
}

// DB returns the underlying GORM DB without school scoping.
// Use with caution - this bypasses school isolation.
func (t *TenantDB) DB() *gorm.DB {
	return t.db
}

// WithContext returns a GORM DB scoped to the school from context.
// If no school is present and the scope is required, the returned DB
// errors on any operation instead of silently querying across schools.
func (t *TenantDB) WithContext(ctx context.Context) *gorm.DB {
	schoolID := logger.GetSchoolID(ctx)

	if schoolID == "" {
		if t.required {
			db := t.db.WithContext(ctx)
			_ = db.AddError(ErrSchoolIDRequired)
			return db
		}
		return t.db.WithContext(ctx)
	}

	if _, err := uuid.Parse(schoolID); err != nil {
		db := t.db.WithContext(ctx)
		_ = db.AddError(ErrInvalidSchoolID)
		return db
	}

	return t.db.WithContext(ctx).Scopes(SchoolScopeString(schoolID))
}

// WithSchool returns a GORM DB scoped to a specific school ID.
// Use this when the school ID is known directly rather than from context.
func (t *TenantDB) WithSchool(ctx context.Context, schoolID uuid.UUID) *gorm.DB {
	if schoolID == uuid.Nil {
		if t.required {
			db := t.db.WithContext(ctx)
			_ = db.AddError(ErrSchoolIDRequired)
			return db
		}
		return t.db.WithContext(ctx)
	}
	return t.db.WithContext(ctx).Scopes(SchoolScope(schoolID))
}

// Transaction executes a function within a database transaction; the school
// scope from context is applied to the transaction handle
func (t *TenantDB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	schoolID := logger.GetSchoolID(ctx)

	if schoolID == "" && t.required {
		return ErrSchoolIDRequired
	}

	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if schoolID != "" {
			tx = tx.Scopes(SchoolScopeString(schoolID))
		}
		return fn(tx)
	})
}

// Unscoped returns the underlying DB without any school scoping.
// Only for platform-level operations (school management, migrations).
func (t *TenantDB) Unscoped() *gorm.DB {
	return t.db
}

// SetRequired changes whether a school in context is mandatory
func (t *TenantDB) SetRequired(required bool) *TenantDB {
	return &TenantDB{db: t.db, required: required}
}

package tenant

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/schoolpay/backend/internal/infrastructure/logger"
)

// SchoolCallback provides GORM callback hooks for automatic school filtering.
// It is the persistence-level backstop behind the HTTP scope guard.
type SchoolCallback struct {
	column   string
	required bool
}

// NewSchoolCallback creates a new school callback handler
func NewSchoolCallback(column string, required bool) *SchoolCallback {
	if column == "" {
		column = "school_id"
	}
	return &SchoolCallback{column: column, required: required}
}

// RegisterCallbacks registers school callbacks with GORM
func (sc *SchoolCallback) RegisterCallbacks(db *gorm.DB) {
	_ = db.Callback().Query().Before("gorm:query").Register("school:before_query", sc.addSchoolFilter)
	_ = db.Callback().Update().Before("gorm:update").Register("school:before_update", sc.addSchoolFilter)
	_ = db.Callback().Delete().Before("gorm:delete").Register("school:before_delete", sc.addSchoolFilter)
	_ = db.Callback().Row().Before("gorm:row").Register("school:before_row", sc.addSchoolFilter)

	// Create is not registered: school_id is set explicitly by the
	// application when building entities
}

func (sc *SchoolCallback) addSchoolFilter(db *gorm.DB) {
	if db.Statement.Context == nil {
		return
	}
	if db.Statement.Unscoped {
		return
	}
	if sc.hasSchoolCondition(db) {
		return
	}

	schoolID := logger.GetSchoolID(db.Statement.Context)
	if schoolID == "" {
		if sc.required {
			_ = db.AddError(ErrSchoolIDRequired)
		}
		return
	}
	if _, err := uuid.Parse(schoolID); err != nil {
		_ = db.AddError(ErrInvalidSchoolID)
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: clause.CurrentTable, Name: sc.column},
				Value:  schoolID,
			},
		},
	})
}

func (sc *SchoolCallback) hasSchoolCondition(db *gorm.DB) bool {
	if db.Statement.Unscoped {
		return true
	}

	if whereClause, ok := db.Statement.Clauses["WHERE"]; ok {
		if where, ok := whereClause.Expression.(clause.Where); ok {
			for _, expr := range where.Exprs {
				if sc.exprContainsSchool(expr) {
					return true
				}
			}
		}
	}

	sql := db.Statement.SQL.String()
	if sql != "" && strings.Contains(sql, sc.column) {
		return true
	}

	return false
}

func (sc *SchoolCallback) exprContainsSchool(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Eq:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == sc.column
		}
	case clause.IN:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == sc.column
		}
	case clause.AndConditions:
		for _, cond := range e.Exprs {
			if sc.exprContainsSchool(cond) {
				return true
			}
		}
	case clause.OrConditions:
		for _, cond := range e.Exprs {
			if sc.exprContainsSchool(cond) {
				return true
			}
		}
	}
	return false
}

// EnableAutoSchoolFilter registers callbacks that automatically add
// school_id filtering to all queries
func EnableAutoSchoolFilter(db *gorm.DB, required bool) {
	sc := NewSchoolCallback("school_id", required)
	sc.RegisterCallbacks(db)
}

// DisableAutoSchoolFilter removes the school callbacks (testing only)
func DisableAutoSchoolFilter(db *gorm.DB) {
	_ = db.Callback().Query().Remove("school:before_query")
	_ = db.Callback().Update().Remove("school:before_update")
	_ = db.Callback().Delete().Remove("school:before_delete")
	_ = db.Callback().Row().Remove("school:before_row")
}

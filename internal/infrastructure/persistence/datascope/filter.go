// Package datascope builds row-visibility predicates keyed on the actor
// role.
//
// Rather than assembling raw SQL per call site, every role maps to a scope
// type and every scope type to one parameterized predicate over a
// whitelisted column. The mapping is pure and unit-testable without a
// database; Apply translates it to a GORM condition.
package datascope

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolpay/backend/internal/domain/identity"
	"github.com/schoolpay/backend/internal/infrastructure/logger"
)

// ScopeType is the visibility level granted by a role
type ScopeType string

const (
	// ScopeAll sees every row of every school
	ScopeAll ScopeType = "ALL"
	// ScopeSchool sees every row of the actor's school
	ScopeSchool ScopeType = "SCHOOL"
	// ScopeSelf sees only rows the actor created
	ScopeSelf ScopeType = "SELF"
	// ScopeNone sees nothing; the fallback for unknown roles
	ScopeNone ScopeType = "NONE"
)

// ScopeFor maps a role to its visibility scope
func ScopeFor(role identity.Role) ScopeType {
	switch role {
	case identity.RoleSuperAdmin:
		return ScopeAll
	case identity.RoleSchoolAdmin, identity.RoleAccountant:
		return ScopeSchool
	default:
		return ScopeNone
	}
}

// Fields names the columns a predicate may bind to. Only whitelisted
// columns are ever interpolated into a query.
type Fields struct {
	SchoolColumn  string
	CreatorColumn string
}

// DefaultFields returns the standard column binding
func DefaultFields() Fields {
	return Fields{
		SchoolColumn:  "school_id",
		CreatorColumn: "created_by",
	}
}

// allowedScopeFields is the whitelist of columns predicates may use; it
// prevents SQL injection via dynamic field names
var allowedScopeFields = map[string]bool{
	"school_id":   true,
	"created_by":  true,
	"recorded_by": true,
}

func (f Fields) valid() bool {
	return allowedScopeFields[f.SchoolColumn] && allowedScopeFields[f.CreatorColumn]
}

// Predicate is one parameterized visibility condition
type Predicate struct {
	Query string
	Args  []any
}

// matchNothing rejects every row; used whenever a predicate cannot be
// built safely
var matchNothing = Predicate{Query: "1 = 0"}

// Build maps {role, scope fields} to a predicate for the given actor.
// A zero school or user ID where the scope needs one yields a
// match-nothing predicate rather than an unscoped query.
func Build(role identity.Role, fields Fields, schoolID, userID uuid.UUID) Predicate {
	if !fields.valid() {
		return matchNothing
	}

	switch ScopeFor(role) {
	case ScopeAll:
		return Predicate{}
	case ScopeSchool:
		if schoolID == uuid.Nil {
			return matchNothing
		}
		return Predicate{Query: fields.SchoolColumn + " = ?", Args: []any{schoolID}}
	case ScopeSelf:
		if userID == uuid.Nil {
			return matchNothing
		}
		return Predicate{Query: fields.CreatorColumn + " = ?", Args: []any{userID}}
	default:
		return matchNothing
	}
}

// IsUnrestricted reports whether the predicate applies no filtering
func (p Predicate) IsUnrestricted() bool {
	return p.Query == ""
}

// Apply translates the predicate to a GORM condition
func (p Predicate) Apply(db *gorm.DB) *gorm.DB {
	if p.IsUnrestricted() {
		return db
	}
	return db.Where(p.Query, p.Args...)
}

// Scope returns a GORM scope function for the actor in context
func Scope(ctx context.Context, role identity.Role, fields Fields) func(db *gorm.DB) *gorm.DB {
	var schoolID, userID uuid.UUID
	if s := logger.GetSchoolID(ctx); s != "" {
		schoolID, _ = uuid.Parse(s)
	}
	if u := logger.GetUserID(ctx); u != "" {
		userID, _ = uuid.Parse(u)
	}
	pred := Build(role, fields, schoolID, userID)
	return pred.Apply
}

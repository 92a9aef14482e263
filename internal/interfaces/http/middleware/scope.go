package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/schoolpay/backend/internal/domain/identity"
	"github.com/schoolpay/backend/internal/interfaces/http/dto"
)

// SchoolIDParam is the path parameter naming the target school
const SchoolIDParam = "schoolId"

// SchoolIDKey is the gin context key holding the parsed target school ID
const SchoolIDKey = "scope_school_id"

// SchoolScope guards school-scoped routes: it parses the school ID from the
// path and rejects actors outside that school before any handler logic runs.
// Platform actors pass for any school. Services re-apply the same check, so
// a handler bug cannot widen access.
func SchoolScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("request_id")

		schoolID, err := uuid.Parse(c.Param(SchoolIDParam))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidInput, "Invalid school ID", requestID))
			return
		}

		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", requestID))
			return
		}
		if err := identity.Authorize(actor, schoolID); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Access to this school is forbidden", requestID))
			return
		}

		c.Set(SchoolIDKey, schoolID)
		c.Next()
	}
}

// GetScopeSchoolID retrieves the target school ID set by SchoolScope
func GetScopeSchoolID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(SchoolIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	appaudit "github.com/schoolpay/backend/internal/application/audit"
	"github.com/schoolpay/backend/internal/domain/audit"
)

// AuditHandler exposes the school's audit trail
type AuditHandler struct {
	BaseHandler
	recorder *appaudit.Recorder
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(recorder *appaudit.Recorder) *AuditHandler {
	return &AuditHandler{recorder: recorder}
}

// AuditEntryResponse is the wire representation of one audit record
type AuditEntryResponse struct {
	ID         string         `json:"id"`
	SchoolID   *string        `json:"school_id,omitempty"`
	ActorID    string         `json:"actor_id"`
	ActorRole  string         `json:"actor_role"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   *string        `json:"entity_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func toAuditEntryResponse(entry *audit.Entry) AuditEntryResponse {
	resp := AuditEntryResponse{
		ID:         entry.ID.String(),
		ActorID:    entry.ActorID.String(),
		ActorRole:  entry.ActorRole,
		Action:     string(entry.Action),
		EntityType: entry.EntityType,
		Metadata:   entry.Metadata,
		CreatedAt:  entry.CreatedAt,
	}
	if entry.SchoolID != nil {
		schoolID := entry.SchoolID.String()
		resp.SchoolID = &schoolID
	}
	if entry.EntityID != nil {
		entityID := entry.EntityID.String()
		resp.EntityID = &entityID
	}
	return resp
}

// List returns the latest audit entries of the school, optionally filtered
// by action
// GET /api/v1/schools/:schoolId/audit-logs?action=...&limit=...
func (h *AuditHandler) List(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	schoolID, ok := h.getSchoolID(c)
	if !ok {
		return
	}

	var actionFilter *audit.Action
	if raw := c.Query("action"); raw != "" {
		action := audit.Action(raw)
		actionFilter = &action
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := h.recorder.RecentForSchool(c.Request.Context(), actor, schoolID, actionFilter, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]AuditEntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = toAuditEntryResponse(entry)
	}
	h.Success(c, responses)
}

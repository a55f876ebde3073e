package dto

import (
	"time"

	"github.com/edunexus/edunexus-go/internal/models"
)

// AuditListRequest defines filters for reading the audit log.
type AuditListRequest struct {
	Page     int
	PageSize int
	ActorID  string
	Action   string
}

// AuditEntryResponse serializes one audit log entry.
type AuditEntryResponse struct {
	ID        string                 `json:"id"`
	ActorID   string                 `json:"actor_id"`
	ActorName string                 `json:"actor_name"`
	Action    string                 `json:"action"`
	Detail    string                 `json:"detail"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// AuditListResponse wraps a paginated audit log listing.
type AuditListResponse struct {
	Items      []AuditEntryResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// NewAuditEntryResponse converts an audit log model into a DTO.
func NewAuditEntryResponse(entry models.AuditLog) AuditEntryResponse {
	return AuditEntryResponse{
		ID:        entry.ID,
		ActorID:   entry.ActorID,
		ActorName: entry.ActorName,
		Action:    entry.Action,
		Detail:    entry.Detail,
		Metadata:  entry.Metadata,
		CreatedAt: entry.CreatedAt,
	}
}

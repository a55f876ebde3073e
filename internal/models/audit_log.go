package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog captures one privileged mutation. Entries are append-only and
// never edited; the administrator may truncate the whole log.
type AuditLog struct {
	ID        string            `gorm:"primaryKey;size:64" json:"id"`
	ActorID   string            `gorm:"size:64;index" json:"actor_id"`
	ActorName string            `gorm:"size:255" json:"actor_name"`
	Action    string            `gorm:"size:64;not null;index" json:"action"`
	Detail    string            `gorm:"type:text" json:"detail"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

// BeforeCreate assigns a process-unique identifier when none was supplied.
func (e *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

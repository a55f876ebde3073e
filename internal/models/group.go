package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Group is a class of students, optionally bound to a subject and a teacher.
// A nil TeacherID means the group is vacant.
type Group struct {
	ID         string                      `gorm:"primaryKey;size:64" json:"id"`
	Name       string                      `gorm:"size:255;not null" json:"name"`
	Grade      string                      `gorm:"size:32" json:"grade"`
	AgeRange   string                      `gorm:"size:64" json:"age_range"`
	SubjectID  *string                     `gorm:"size:64;index" json:"subject_id"`
	TeacherID  *string                     `gorm:"size:64;index" json:"teacher_id"`
	StudentIDs datatypes.JSONSlice[string] `gorm:"type:json" json:"student_ids"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}

// BeforeCreate assigns a process-unique identifier when none was supplied.
func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// HasStudent reports whether id is currently a member of the group.
func (g Group) HasStudent(id string) bool {
	for _, sid := range g.StudentIDs {
		if sid == id {
			return true
		}
	}
	return false
}

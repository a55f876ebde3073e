package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// GradeTypeFormative marks an in-lesson classwork grade.
	GradeTypeFormative = "formative"
	// GradeTypeTest marks a quiz or test grade.
	GradeTypeTest = "test"
	// GradeTypeFinal marks an end-of-term grade.
	GradeTypeFinal = "final"
)

// Grade is a scored record for a student on a lesson, typed by assessment
// kind. The triple (student, lesson, type) is unique; rewriting it
// overwrites the existing row.
type Grade struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	StudentID string    `gorm:"size:64;not null;uniqueIndex:idx_grade_student_lesson_type" json:"student_id"`
	LessonID  string    `gorm:"size:64;not null;uniqueIndex:idx_grade_student_lesson_type" json:"lesson_id"`
	Type      string    `gorm:"size:16;not null;uniqueIndex:idx_grade_student_lesson_type" json:"type"`
	Score     int       `gorm:"not null" json:"score"`
	Date      string    `gorm:"size:32" json:"date"`
	Feedback  string    `gorm:"type:text" json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a process-unique identifier when none was supplied.
func (g *Grade) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// ValidGradeType reports whether t names a known assessment kind.
func ValidGradeType(t string) bool {
	switch t {
	case GradeTypeFormative, GradeTypeTest, GradeTypeFinal:
		return true
	}
	return false
}

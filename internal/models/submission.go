package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submission holds everything a student handed in for one lesson: an
// optional homework artifact, an optional drawing artifact and the quiz
// result. Exactly one row exists per (student, lesson); later writes
// replace, never append.
type Submission struct {
	ID               string    `gorm:"primaryKey;size:64" json:"id"`
	StudentID        string    `gorm:"size:64;not null;uniqueIndex:idx_submission_student_lesson" json:"student_id"`
	LessonID         string    `gorm:"size:64;not null;uniqueIndex:idx_submission_student_lesson" json:"lesson_id"`
	HomeworkArtifact *string   `gorm:"type:text" json:"homework_artifact"`
	DrawingArtifact  *string   `gorm:"type:text" json:"drawing_artifact"`
	TestScore        *int      `json:"test_score"`
	TestFinished     bool      `gorm:"not null;default:false" json:"test_finished"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BeforeCreate assigns a process-unique identifier when none was supplied.
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

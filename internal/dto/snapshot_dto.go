package dto

import (
	"fmt"

	"github.com/edunexus/edunexus-go/internal/models"
)

// SnapshotVersion identifies the snapshot document layout.
const SnapshotVersion = 1

// Snapshot is the portable dump of the whole store: one collection per
// entity kind, each entry keyed by its id. Submissions use the composite
// (student, lesson) key and grades the (student, lesson, type) key.
type Snapshot struct {
	Version     int                          `json:"version"`
	Accounts    map[string]models.Account    `json:"accounts"`
	Subjects    map[string]models.Subject    `json:"subjects"`
	Groups      map[string]models.Group      `json:"groups"`
	Lessons     map[string]models.LessonPlan `json:"lessons"`
	Submissions map[string]models.Submission `json:"submissions"`
	Grades      map[string]models.Grade      `json:"grades"`
	AuditLog    []models.AuditLog            `json:"audit_log"`
}

// SubmissionKey builds the composite snapshot key of a submission.
func SubmissionKey(studentID, lessonID string) string {
	return fmt.Sprintf("%s/%s", studentID, lessonID)
}

// GradeKey builds the composite snapshot key of a grade.
func GradeKey(studentID, lessonID, gradeType string) string {
	return fmt.Sprintf("%s/%s/%s", studentID, lessonID, gradeType)
}

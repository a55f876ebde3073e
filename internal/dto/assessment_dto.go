package dto

import "github.com/edunexus/edunexus-go/internal/models"

// HomeworkSubmitRequest hands in a homework artifact for a lesson. The
// artifact is an opaque reference, typically a data URL.
type HomeworkSubmitRequest struct {
	LessonID string `json:"lesson_id" validate:"required"`
	Artifact string `json:"artifact" validate:"required"`
}

// DrawingSubmitRequest hands in a drawing-task artifact for a lesson.
type DrawingSubmitRequest struct {
	LessonID string `json:"lesson_id" validate:"required"`
	Artifact string `json:"artifact" validate:"required"`
}

// QuizSubmitRequest hands in quiz answers. Answers holds one option index
// per question, in question order; UnansweredIndex marks questions left
// blank, which is only allowed when EndedEarly is set.
type QuizSubmitRequest struct {
	LessonID   string `json:"lesson_id" validate:"required"`
	Answers    []int  `json:"answers"`
	EndedEarly bool   `json:"ended_early"`
}

// UnansweredIndex marks a question the student did not answer.
const UnansweredIndex = -1

// QuizResultResponse reports the computed score of a quiz submission.
type QuizResultResponse struct {
	LessonID     string `json:"lesson_id"`
	StudentID    string `json:"student_id"`
	Score        int    `json:"score"`
	CorrectCount int    `json:"correct_count"`
	Total        int    `json:"total"`
}

// RecordGradeRequest writes a typed grade for a student on a lesson.
type RecordGradeRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	LessonID  string `json:"lesson_id" validate:"required"`
	Score     int    `json:"score"`
	Type      string `json:"type" validate:"required,oneof=formative test final"`
	Feedback  string `json:"feedback" validate:"omitempty,max=2000"`
}

// AttendanceRequest toggles a student's presence on a lesson.
type AttendanceRequest struct {
	LessonID  string `json:"lesson_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
	Present   bool   `json:"present"`
}

// SubmissionResponse serializes one submission row.
type SubmissionResponse struct {
	ID               string  `json:"id"`
	StudentID        string  `json:"student_id"`
	LessonID         string  `json:"lesson_id"`
	HomeworkArtifact *string `json:"homework_artifact,omitempty"`
	DrawingArtifact  *string `json:"drawing_artifact,omitempty"`
	TestScore        *int    `json:"test_score,omitempty"`
	TestFinished     bool    `json:"test_finished"`
}

// GradeResponse serializes one grade row.
type GradeResponse struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	LessonID  string `json:"lesson_id"`
	Score     int    `json:"score"`
	Date      string `json:"date"`
	Type      string `json:"type"`
	Feedback  string `json:"feedback,omitempty"`
}

// NewSubmissionResponse converts a submission model into a DTO.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:               submission.ID,
		StudentID:        submission.StudentID,
		LessonID:         submission.LessonID,
		HomeworkArtifact: submission.HomeworkArtifact,
		DrawingArtifact:  submission.DrawingArtifact,
		TestScore:        submission.TestScore,
		TestFinished:     submission.TestFinished,
	}
}

// NewGradeResponse converts a grade model into a DTO.
func NewGradeResponse(grade models.Grade) GradeResponse {
	return GradeResponse{
		ID:        grade.ID,
		StudentID: grade.StudentID,
		LessonID:  grade.LessonID,
		Score:     grade.Score,
		Date:      grade.Date,
		Type:      grade.Type,
		Feedback:  grade.Feedback,
	}
}

// NewGradeResponses converts a slice of grade models.
func NewGradeResponses(grades []models.Grade) []GradeResponse {
	responses := make([]GradeResponse, 0, len(grades))
	for _, grade := range grades {
		responses = append(responses, NewGradeResponse(grade))
	}
	return responses
}

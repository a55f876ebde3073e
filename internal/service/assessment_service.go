package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/dto"
	"github.com/edunexus/edunexus-go/internal/models"
	"github.com/edunexus/edunexus-go/internal/observability"
	"github.com/edunexus/edunexus-go/internal/repository"
)

var (
	// ErrScoreOutOfRange indicates a grade outside 0..100.
	ErrScoreOutOfRange = errors.New("score out of range")
	// ErrQuizIncomplete indicates a quiz submission with missing or invalid
	// answers that was not explicitly ended early.
	ErrQuizIncomplete = errors.New("quiz submission incomplete")
	// ErrNotGroupMember indicates the student does not belong to the
	// lesson's group.
	ErrNotGroupMember = errors.New("student is not a group member")
	// ErrDrawingDisabled indicates a drawing submission against a lesson
	// without a drawing task.
	ErrDrawingDisabled = errors.New("lesson has no drawing task")
	// ErrSubmissionNotFound indicates no submission exists for the pair.
	ErrSubmissionNotFound = errors.New("submission not found")
)

// AssessmentService owns everything a submission or grade can go through:
// homework, drawing and quiz hand-ins by students, grade recording and
// attendance marking by teachers.
type AssessmentService interface {
	SubmitHomework(ctx context.Context, actor Actor, payload dto.HomeworkSubmitRequest) (dto.SubmissionResponse, error)
	SubmitDrawing(ctx context.Context, actor Actor, payload dto.DrawingSubmitRequest) (dto.SubmissionResponse, error)
	SubmitQuiz(ctx context.Context, actor Actor, payload dto.QuizSubmitRequest) (dto.QuizResultResponse, error)
	RecordGrade(ctx context.Context, actor Actor, payload dto.RecordGradeRequest) (dto.GradeResponse, error)
	MarkAttendance(ctx context.Context, actor Actor, payload dto.AttendanceRequest) (dto.LessonResponse, error)
	GetSubmission(ctx context.Context, studentID, lessonID string) (dto.SubmissionResponse, error)
	ListLessonSubmissions(ctx context.Context, actor Actor, lessonID string) ([]dto.SubmissionResponse, error)
}

type assessmentService struct {
	submissions repository.SubmissionRepository
	grades      repository.GradeRepository
	lessons     repository.LessonRepository
	groups      repository.GroupRepository
	validator   *validator.Validate
	audit       AuditRecorder
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssessmentService constructs the assessment service.
func NewAssessmentService(submissions repository.SubmissionRepository, grades repository.GradeRepository, lessons repository.LessonRepository, groups repository.GroupRepository, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) AssessmentService {
	return &assessmentService{
		submissions: submissions,
		grades:      grades,
		lessons:     lessons,
		groups:      groups,
		validator:   validate,
		audit:       audit,
		logger:      logger.With().Str("component", "assessment_service").Logger(),
		now:         time.Now,
	}
}

// SubmitHomework upserts the homework artifact of the (student, lesson)
// submission. Quiz fields are left untouched.
func (s *assessmentService) SubmitHomework(ctx context.Context, actor Actor, payload dto.HomeworkSubmitRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}
	if _, err := s.requireMembership(ctx, actor, payload.LessonID); err != nil {
		return dto.SubmissionResponse{}, err
	}

	artifact := payload.Artifact
	submission, err := s.submissions.Upsert(ctx, actor.ID, payload.LessonID, func(submission *models.Submission) {
		submission.HomeworkArtifact = &artifact
	})
	if err != nil {
		observability.StoreErrors().WithLabelValues("submission").Inc()
		return dto.SubmissionResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("submission", "homework").Inc()
	return dto.NewSubmissionResponse(submission), nil
}

// SubmitDrawing upserts the drawing artifact. The lesson must carry a
// drawing task.
func (s *assessmentService) SubmitDrawing(ctx context.Context, actor Actor, payload dto.DrawingSubmitRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	lesson, err := s.requireMembership(ctx, actor, payload.LessonID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !lesson.IsDrawingEnabled {
		return dto.SubmissionResponse{}, ErrDrawingDisabled
	}

	artifact := payload.Artifact
	submission, err := s.submissions.Upsert(ctx, actor.ID, payload.LessonID, func(submission *models.Submission) {
		submission.DrawingArtifact = &artifact
	})
	if err != nil {
		observability.StoreErrors().WithLabelValues("submission").Inc()
		return dto.SubmissionResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("submission", "drawing").Inc()
	return dto.NewSubmissionResponse(submission), nil
}

// SubmitQuiz scores the answers against the lesson's questions and
// overwrites the quiz fields of the single (student, lesson) submission.
// Resubmitting replaces the previous result; no attempt history is kept.
func (s *assessmentService) SubmitQuiz(ctx context.Context, actor Actor, payload dto.QuizSubmitRequest) (dto.QuizResultResponse, error) {
	tracer := otel.Tracer("github.com/edunexus/edunexus-go/internal/service/assessment")
	ctx, span := tracer.Start(ctx, "quiz.submit")
	span.SetAttributes(
		attribute.String("quiz.lesson_id", payload.LessonID),
		attribute.String("quiz.student_id", actor.ID),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.QuizResultResponse{}, err
	}

	lesson, err := s.requireMembership(ctx, actor, payload.LessonID)
	if err != nil {
		span.RecordError(err)
		return dto.QuizResultResponse{}, err
	}

	score, correct, err := scoreQuiz(lesson.Questions, payload.Answers, payload.EndedEarly)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "quiz_incomplete")
		return dto.QuizResultResponse{}, err
	}

	testScore := score
	if _, err := s.submissions.Upsert(ctx, actor.ID, payload.LessonID, func(submission *models.Submission) {
		submission.TestScore = &testScore
		submission.TestFinished = true
	}); err != nil {
		span.RecordError(err)
		observability.StoreErrors().WithLabelValues("submission").Inc()
		return dto.QuizResultResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("submission", "quiz").Inc()
	span.SetAttributes(attribute.Int("quiz.score", score))

	return dto.QuizResultResponse{
		LessonID:     payload.LessonID,
		StudentID:    actor.ID,
		Score:        score,
		CorrectCount: correct,
		Total:        len(lesson.Questions),
	}, nil
}

// RecordGrade upserts the (student, lesson, type) grade row. Writing the
// same key again overwrites instead of appending.
func (s *assessmentService) RecordGrade(ctx context.Context, actor Actor, payload dto.RecordGradeRequest) (dto.GradeResponse, error) {
	tracer := otel.Tracer("github.com/edunexus/edunexus-go/internal/service/assessment")
	ctx, span := tracer.Start(ctx, "grade.record")
	span.SetAttributes(
		attribute.String("grade.student_id", payload.StudentID),
		attribute.String("grade.lesson_id", payload.LessonID),
		attribute.String("grade.type", payload.Type),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.GradeResponse{}, err
	}
	if payload.Score < 0 || payload.Score > 100 {
		span.SetStatus(codes.Error, "score_out_of_range")
		return dto.GradeResponse{}, ErrScoreOutOfRange
	}

	lesson, err := s.requireTeaching(ctx, actor, payload.LessonID)
	if err != nil {
		span.RecordError(err)
		return dto.GradeResponse{}, err
	}

	group, err := s.groups.GetByID(ctx, lesson.GroupID)
	if err != nil {
		span.RecordError(err)
		return dto.GradeResponse{}, err
	}
	if !group.HasStudent(payload.StudentID) {
		span.SetStatus(codes.Error, "not_group_member")
		return dto.GradeResponse{}, ErrNotGroupMember
	}

	grade, err := s.grades.Upsert(ctx, models.Grade{
		StudentID: payload.StudentID,
		LessonID:  payload.LessonID,
		Type:      payload.Type,
		Score:     payload.Score,
		Date:      s.now().Format("2006-01-02"),
		Feedback:  payload.Feedback,
	})
	if err != nil {
		span.RecordError(err)
		observability.StoreErrors().WithLabelValues("grade").Inc()
		return dto.GradeResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("grade", "record").Inc()
	s.recordAudit(ctx, actor, "grade.recorded", fmt.Sprintf("recorded %s grade %d", grade.Type, grade.Score), map[string]interface{}{
		"student_id": grade.StudentID,
		"lesson_id":  grade.LessonID,
		"type":       grade.Type,
		"score":      grade.Score,
	})

	return dto.NewGradeResponse(grade), nil
}

// MarkAttendance toggles the student's presence on the lesson.
func (s *assessmentService) MarkAttendance(ctx context.Context, actor Actor, payload dto.AttendanceRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	lesson, err := s.requireTeaching(ctx, actor, payload.LessonID)
	if err != nil {
		return dto.LessonResponse{}, err
	}

	group, err := s.groups.GetByID(ctx, lesson.GroupID)
	if err != nil {
		return dto.LessonResponse{}, err
	}
	if !group.HasStudent(payload.StudentID) {
		return dto.LessonResponse{}, ErrNotGroupMember
	}

	updated, err := s.lessons.SetAttendance(ctx, payload.LessonID, payload.StudentID, payload.Present)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrLessonNotFound
		}
		return dto.LessonResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("lesson", "attendance").Inc()
	return dto.NewLessonResponse(updated), nil
}

func (s *assessmentService) GetSubmission(ctx context.Context, studentID, lessonID string) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByKey(ctx, studentID, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *assessmentService) ListLessonSubmissions(ctx context.Context, actor Actor, lessonID string) ([]dto.SubmissionResponse, error) {
	if _, err := s.requireTeaching(ctx, actor, lessonID); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, dto.NewSubmissionResponse(submission))
	}

	return responses, nil
}

// requireMembership loads the lesson and checks the student actor belongs
// to its group.
func (s *assessmentService) requireMembership(ctx context.Context, actor Actor, lessonID string) (models.LessonPlan, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.LessonPlan{}, ErrLessonNotFound
		}
		return models.LessonPlan{}, err
	}

	if actor.Role != models.RoleStudent {
		return models.LessonPlan{}, ErrNotPermitted
	}

	group, err := s.groups.GetByID(ctx, lesson.GroupID)
	if err != nil {
		return models.LessonPlan{}, err
	}
	if !group.HasStudent(actor.ID) {
		return models.LessonPlan{}, ErrNotGroupMember
	}

	return lesson, nil
}

// requireTeaching loads the lesson and checks the actor is the
// administrator or the teacher of the lesson's group.
func (s *assessmentService) requireTeaching(ctx context.Context, actor Actor, lessonID string) (models.LessonPlan, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.LessonPlan{}, ErrLessonNotFound
		}
		return models.LessonPlan{}, err
	}

	if actor.IsAdmin {
		return lesson, nil
	}
	if actor.Role != models.RoleTeacher {
		return models.LessonPlan{}, ErrNotPermitted
	}

	group, err := s.groups.GetByID(ctx, lesson.GroupID)
	if err != nil {
		return models.LessonPlan{}, err
	}
	if group.TeacherID == nil || *group.TeacherID != actor.ID {
		return models.LessonPlan{}, ErrNotGroupTeacher
	}

	return lesson, nil
}

func (s *assessmentService) recordAudit(ctx context.Context, actor Actor, action, detail string, metadata map[string]interface{}) {
	if s.audit == nil {
		return
	}
	if _, err := s.audit.Record(ctx, AuditEntry{Actor: actor, Action: action, Detail: detail, Metadata: metadata}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record audit entry")
	}
}

// scoreQuiz validates answers against the question list and computes the
// percentage score with half-up rounding.
func scoreQuiz(questions []models.QuizQuestion, answers []int, endedEarly bool) (score, correct int, err error) {
	if len(questions) == 0 {
		return 0, 0, ErrQuizIncomplete
	}
	if len(answers) != len(questions) {
		return 0, 0, ErrQuizIncomplete
	}

	for i, answer := range answers {
		if answer == dto.UnansweredIndex {
			if !endedEarly {
				return 0, 0, ErrQuizIncomplete
			}
			continue
		}
		if answer < 0 || answer >= len(questions[i].Options) {
			return 0, 0, ErrQuizIncomplete
		}
		if answer == questions[i].CorrectIndex {
			correct++
		}
	}

	score = int(math.Round(float64(correct) * 100 / float64(len(questions))))
	return score, correct, nil
}

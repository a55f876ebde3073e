package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/dto"
	"github.com/edunexus/edunexus-go/internal/models"
	"github.com/edunexus/edunexus-go/internal/observability"
	"github.com/edunexus/edunexus-go/internal/repository"
)

var (
	// ErrLessonNotFound indicates the lesson id is unknown.
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrNotGroupTeacher indicates the actor does not teach the group the
	// operation targets.
	ErrNotGroupTeacher = errors.New("actor is not the group teacher")
	// ErrQuizSourceConflict indicates a lesson carrying both an attached
	// quiz file and inline questions.
	ErrQuizSourceConflict = errors.New("quiz file and inline questions are mutually exclusive")
	// ErrInvalidQuestion indicates a question with too few options or a
	// correct index outside the option list.
	ErrInvalidQuestion = errors.New("invalid quiz question")
)

// LessonService manages lesson plans and their quiz questions and chat.
// Writes are restricted to the administrator and the teacher of the
// lesson's group.
type LessonService interface {
	Get(ctx context.Context, id string) (dto.LessonResponse, error)
	ListForGroup(ctx context.Context, groupID string) ([]dto.LessonResponse, error)
	ListForTeacher(ctx context.Context, teacherID string) ([]dto.LessonResponse, error)
	ListForStudent(ctx context.Context, studentID string) ([]dto.LessonResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.LessonCreateRequest) (dto.LessonResponse, error)
	Update(ctx context.Context, actor Actor, id string, payload dto.LessonUpdateRequest) (dto.LessonResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	Start(ctx context.Context, actor Actor, id string) (dto.LessonResponse, error)
	AppendChat(ctx context.Context, actor Actor, lessonID string, payload dto.ChatAppendRequest) (dto.ChatMessageResponse, error)
}

type lessonService struct {
	lessons   repository.LessonRepository
	groups    repository.GroupRepository
	validator *validator.Validate
	audit     AuditRecorder
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewLessonService constructs the lesson service.
func NewLessonService(lessons repository.LessonRepository, groups repository.GroupRepository, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) LessonService {
	return &lessonService{
		lessons:   lessons,
		groups:    groups,
		validator: validate,
		audit:     audit,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "lesson_service").Logger(),
		now:       time.Now,
	}
}

func (s *lessonService) Get(ctx context.Context, id string) (dto.LessonResponse, error) {
	lesson, err := s.lessons.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrLessonNotFound
		}
		return dto.LessonResponse{}, err
	}

	return dto.NewLessonResponse(lesson), nil
}

func (s *lessonService) ListForGroup(ctx context.Context, groupID string) ([]dto.LessonResponse, error) {
	lessons, err := s.lessons.List(ctx, repository.LessonFilter{GroupID: groupID})
	if err != nil {
		return nil, err
	}

	return dto.NewLessonResponses(lessons), nil
}

func (s *lessonService) ListForTeacher(ctx context.Context, teacherID string) ([]dto.LessonResponse, error) {
	lessons, err := s.lessons.List(ctx, repository.LessonFilter{TeacherID: teacherID})
	if err != nil {
		return nil, err
	}

	return dto.NewLessonResponses(lessons), nil
}

// ListForStudent returns the lessons of every group the student belongs to.
func (s *lessonService) ListForStudent(ctx context.Context, studentID string) ([]dto.LessonResponse, error) {
	groups, err := s.groups.ListContainingStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return []dto.LessonResponse{}, nil
	}

	groupIDs := make([]string, 0, len(groups))
	for _, group := range groups {
		groupIDs = append(groupIDs, group.ID)
	}

	lessons, err := s.lessons.List(ctx, repository.LessonFilter{GroupIDs: groupIDs})
	if err != nil {
		return nil, err
	}

	return dto.NewLessonResponses(lessons), nil
}

func (s *lessonService) Create(ctx context.Context, actor Actor, payload dto.LessonCreateRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}
	if payload.QuizFile != nil && len(payload.Questions) > 0 {
		return dto.LessonResponse{}, ErrQuizSourceConflict
	}

	group, err := s.requireGroupAccess(ctx, actor, payload.GroupID)
	if err != nil {
		return dto.LessonResponse{}, err
	}

	questions, err := buildQuestions(payload.Questions)
	if err != nil {
		return dto.LessonResponse{}, err
	}

	lesson := models.LessonPlan{
		GroupID:          group.ID,
		Title:            payload.Title,
		Date:             payload.Date,
		Description:      payload.Description,
		HomeworkCheck:    payload.HomeworkCheck,
		Homework:         payload.Homework,
		VideoURL:         payload.VideoURL,
		MeetingLink:      payload.MeetingLink,
		IsDrawingEnabled: payload.IsDrawingEnabled,
		DrawingBaseImage: payload.DrawingBaseImage,
		QuizFile:         payload.QuizFile,
		Questions:        questions,
	}
	if payload.SubjectID != "" {
		subjectID := payload.SubjectID
		lesson.SubjectID = &subjectID
	}
	if actor.Role == models.RoleTeacher {
		teacherID := actor.ID
		lesson.TeacherID = &teacherID
	} else if group.TeacherID != nil {
		lesson.TeacherID = group.TeacherID
	}

	if err := s.lessons.Create(ctx, &lesson); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return dto.LessonResponse{}, ErrInvalidReference
		}
		observability.StoreErrors().WithLabelValues("lesson").Inc()
		return dto.LessonResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("lesson", "create").Inc()
	s.recordAudit(ctx, actor, "lesson.created", fmt.Sprintf("created lesson %s", lesson.Title), map[string]interface{}{
		"lesson_id": lesson.ID,
		"group_id":  lesson.GroupID,
	})

	return s.Get(ctx, lesson.ID)
}

func (s *lessonService) Update(ctx context.Context, actor Actor, id string, payload dto.LessonUpdateRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	lesson, err := s.requireLessonAccess(ctx, actor, id)
	if err != nil {
		return dto.LessonResponse{}, err
	}

	updates := map[string]interface{}{}
	if payload.SubjectID != nil {
		if *payload.SubjectID == "" {
			updates["subject_id"] = nil
		} else {
			updates["subject_id"] = *payload.SubjectID
		}
	}
	if payload.Title != nil {
		updates["title"] = *payload.Title
	}
	if payload.Date != nil {
		updates["date"] = *payload.Date
	}
	if payload.Description != nil {
		updates["description"] = *payload.Description
	}
	if payload.HomeworkCheck != nil {
		updates["homework_check"] = *payload.HomeworkCheck
	}
	if payload.Homework != nil {
		updates["homework"] = *payload.Homework
	}
	if payload.VideoURL != nil {
		updates["video_url"] = *payload.VideoURL
	}
	if payload.MeetingLink != nil {
		updates["meeting_link"] = *payload.MeetingLink
	}
	if payload.IsDrawingEnabled != nil {
		updates["is_drawing_enabled"] = *payload.IsDrawingEnabled
	}
	if payload.DrawingBaseImage != nil {
		updates["drawing_base_image"] = *payload.DrawingBaseImage
	}

	if payload.QuizFile != nil {
		if len(payload.Questions) > 0 {
			return dto.LessonResponse{}, ErrQuizSourceConflict
		}
		if *payload.QuizFile == "" {
			updates["quiz_file"] = nil
		} else {
			updates["quiz_file"] = *payload.QuizFile
			// Attaching a quiz file displaces any inline questions.
			if err := s.lessons.ReplaceQuestions(ctx, id, nil); err != nil {
				return dto.LessonResponse{}, err
			}
		}
	}
	if len(payload.Questions) > 0 && lesson.QuizFile != nil && payload.QuizFile == nil {
		return dto.LessonResponse{}, ErrQuizSourceConflict
	}

	if len(updates) > 0 {
		if _, err := s.lessons.Update(ctx, id, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.LessonResponse{}, ErrLessonNotFound
			}
			return dto.LessonResponse{}, err
		}
	}

	if payload.Questions != nil {
		questions, err := buildQuestions(payload.Questions)
		if err != nil {
			return dto.LessonResponse{}, err
		}
		if err := s.lessons.ReplaceQuestions(ctx, id, questions); err != nil {
			return dto.LessonResponse{}, err
		}
	}

	observability.StoreMutations().WithLabelValues("lesson", "update").Inc()
	return s.Get(ctx, id)
}

func (s *lessonService) Delete(ctx context.Context, actor Actor, id string) error {
	lesson, err := s.requireLessonAccess(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.lessons.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonNotFound
		}
		observability.StoreErrors().WithLabelValues("lesson").Inc()
		return err
	}

	observability.StoreMutations().WithLabelValues("lesson", "delete").Inc()
	s.recordAudit(ctx, actor, "lesson.deleted", fmt.Sprintf("deleted lesson %s", lesson.Title), map[string]interface{}{
		"lesson_id": id,
		"group_id":  lesson.GroupID,
	})

	return nil
}

// Start marks the lesson as running so the student surface can join it.
func (s *lessonService) Start(ctx context.Context, actor Actor, id string) (dto.LessonResponse, error) {
	if _, err := s.requireLessonAccess(ctx, actor, id); err != nil {
		return dto.LessonResponse{}, err
	}

	if err := s.lessons.SetStarted(ctx, id, true); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrLessonNotFound
		}
		return dto.LessonResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("lesson", "start").Inc()
	return s.Get(ctx, id)
}

// AppendChat adds one message to the lesson chat. The text is sanitized
// before it is stored.
func (s *lessonService) AppendChat(ctx context.Context, actor Actor, lessonID string, payload dto.ChatAppendRequest) (dto.ChatMessageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChatMessageResponse{}, err
	}

	if _, err := s.requireLessonAccess(ctx, actor, lessonID); err != nil {
		return dto.ChatMessageResponse{}, err
	}

	text := strings.TrimSpace(s.sanitizer.Sanitize(payload.Text))
	if text == "" {
		return dto.ChatMessageResponse{}, fmt.Errorf("message text is empty after sanitization")
	}

	message := models.ChatMessage{
		LessonID:   lessonID,
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		Text:       text,
		SentAt:     s.now(),
	}
	if err := s.lessons.AppendChat(ctx, &message); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChatMessageResponse{}, ErrLessonNotFound
		}
		return dto.ChatMessageResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("lesson", "chat_append").Inc()
	return dto.NewChatMessageResponse(message), nil
}

// requireGroupAccess loads the group and verifies the actor may write
// lessons for it: the administrator always, a teacher only for own groups.
func (s *lessonService) requireGroupAccess(ctx context.Context, actor Actor, groupID string) (models.Group, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Group{}, ErrInvalidReference
		}
		return models.Group{}, err
	}

	if actor.IsAdmin {
		return group, nil
	}
	if actor.Role != models.RoleTeacher {
		return models.Group{}, ErrNotPermitted
	}
	if group.TeacherID == nil || *group.TeacherID != actor.ID {
		return models.Group{}, ErrNotGroupTeacher
	}

	return group, nil
}

func (s *lessonService) requireLessonAccess(ctx context.Context, actor Actor, lessonID string) (models.LessonPlan, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.LessonPlan{}, ErrLessonNotFound
		}
		return models.LessonPlan{}, err
	}

	if _, err := s.requireGroupAccess(ctx, actor, lesson.GroupID); err != nil {
		return models.LessonPlan{}, err
	}

	return lesson, nil
}

// buildQuestions validates inline questions and assigns their positions.
func buildQuestions(payloads []dto.QuizQuestionPayload) ([]models.QuizQuestion, error) {
	questions := make([]models.QuizQuestion, 0, len(payloads))
	for i, payload := range payloads {
		if len(payload.Options) < 2 {
			return nil, ErrInvalidQuestion
		}
		if payload.CorrectIndex < 0 || payload.CorrectIndex >= len(payload.Options) {
			return nil, ErrInvalidQuestion
		}
		questions = append(questions, models.QuizQuestion{
			Position:     i,
			Text:         payload.Text,
			Options:      payload.Options,
			CorrectIndex: payload.CorrectIndex,
			MediaURL:     payload.MediaURL,
			MediaType:    payload.MediaType,
		})
	}

	return questions, nil
}

func (s *lessonService) recordAudit(ctx context.Context, actor Actor, action, detail string, metadata map[string]interface{}) {
	if s.audit == nil {
		return
	}
	if _, err := s.audit.Record(ctx, AuditEntry{Actor: actor, Action: action, Detail: detail, Metadata: metadata}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record audit entry")
	}
}

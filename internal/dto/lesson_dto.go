package dto

import (
	"time"

	"github.com/edunexus/edunexus-go/internal/models"
)

// QuizQuestionPayload is one inline question as authored by a teacher.
type QuizQuestionPayload struct {
	Text         string   `json:"text" validate:"required,min=1"`
	Options      []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectIndex int      `json:"correct_index" validate:"gte=0"`
	MediaURL     string   `json:"media_url"`
	MediaType    string   `json:"media_type" validate:"omitempty,oneof=image video"`
}

// LessonCreateRequest captures a new lesson plan. Inline Questions and an
// attached QuizFile are mutually exclusive.
type LessonCreateRequest struct {
	SubjectID        string                `json:"subject_id"`
	GroupID          string                `json:"group_id" validate:"required"`
	Title            string                `json:"title" validate:"required,min=1"`
	Date             string                `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description      string                `json:"description"`
	HomeworkCheck    string                `json:"homework_check"`
	Homework         string                `json:"homework"`
	VideoURL         string                `json:"video_url" validate:"omitempty,url"`
	MeetingLink      string                `json:"meeting_link" validate:"omitempty,url"`
	IsDrawingEnabled bool                  `json:"is_drawing_enabled"`
	DrawingBaseImage string                `json:"drawing_base_image"`
	QuizFile         *string               `json:"quiz_file"`
	Questions        []QuizQuestionPayload `json:"questions" validate:"omitempty,dive"`
}

// LessonUpdateRequest captures partial lesson edits. A non-nil Questions
// slice replaces the whole inline quiz.
type LessonUpdateRequest struct {
	SubjectID        *string               `json:"subject_id"`
	Title            *string               `json:"title" validate:"omitempty,min=1"`
	Date             *string               `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description      *string               `json:"description"`
	HomeworkCheck    *string               `json:"homework_check"`
	Homework         *string               `json:"homework"`
	VideoURL         *string               `json:"video_url" validate:"omitempty,url"`
	MeetingLink      *string               `json:"meeting_link" validate:"omitempty,url"`
	IsDrawingEnabled *bool                 `json:"is_drawing_enabled"`
	DrawingBaseImage *string               `json:"drawing_base_image"`
	QuizFile         *string               `json:"quiz_file"`
	Questions        []QuizQuestionPayload `json:"questions" validate:"omitempty,dive"`
}

// ChatAppendRequest captures one chat message for a lesson.
type ChatAppendRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

// QuizQuestionResponse serializes one quiz question.
type QuizQuestionResponse struct {
	ID           string   `json:"id"`
	Position     int      `json:"position"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	MediaURL     string   `json:"media_url,omitempty"`
	MediaType    string   `json:"media_type,omitempty"`
}

// ChatMessageResponse serializes one lesson chat entry.
type ChatMessageResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sent_at"`
}

// LessonResponse serializes a lesson plan with its questions and chat.
type LessonResponse struct {
	ID               string                 `json:"id"`
	SubjectID        *string                `json:"subject_id"`
	GroupID          string                 `json:"group_id"`
	TeacherID        *string                `json:"teacher_id"`
	Title            string                 `json:"title"`
	Date             string                 `json:"date"`
	Description      string                 `json:"description"`
	HomeworkCheck    string                 `json:"homework_check"`
	Homework         string                 `json:"homework"`
	VideoURL         string                 `json:"video_url,omitempty"`
	MeetingLink      string                 `json:"meeting_link,omitempty"`
	IsDrawingEnabled bool                   `json:"is_drawing_enabled"`
	DrawingBaseImage string                 `json:"drawing_base_image,omitempty"`
	QuizFile         *string                `json:"quiz_file,omitempty"`
	IsStarted        bool                   `json:"is_started"`
	Attendance       []string               `json:"attendance"`
	Questions        []QuizQuestionResponse `json:"questions"`
	Chat             []ChatMessageResponse  `json:"chat"`
}

// NewQuizQuestionResponse converts a question model into a DTO.
func NewQuizQuestionResponse(question models.QuizQuestion) QuizQuestionResponse {
	return QuizQuestionResponse{
		ID:           question.ID,
		Position:     question.Position,
		Text:         question.Text,
		Options:      question.Options,
		CorrectIndex: question.CorrectIndex,
		MediaURL:     question.MediaURL,
		MediaType:    question.MediaType,
	}
}

// NewChatMessageResponse converts a chat message model into a DTO.
func NewChatMessageResponse(message models.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:         message.ID,
		AuthorID:   message.AuthorID,
		AuthorName: message.AuthorName,
		Text:       message.Text,
		SentAt:     message.SentAt,
	}
}

// NewLessonResponse converts a lesson model into a DTO.
func NewLessonResponse(lesson models.LessonPlan) LessonResponse {
	questions := make([]QuizQuestionResponse, 0, len(lesson.Questions))
	for _, question := range lesson.Questions {
		questions = append(questions, NewQuizQuestionResponse(question))
	}

	chat := make([]ChatMessageResponse, 0, len(lesson.Chat))
	for _, message := range lesson.Chat {
		chat = append(chat, NewChatMessageResponse(message))
	}

	return LessonResponse{
		ID:               lesson.ID,
		SubjectID:        lesson.SubjectID,
		GroupID:          lesson.GroupID,
		TeacherID:        lesson.TeacherID,
		Title:            lesson.Title,
		Date:             lesson.Date,
		Description:      lesson.Description,
		HomeworkCheck:    lesson.HomeworkCheck,
		Homework:         lesson.Homework,
		VideoURL:         lesson.VideoURL,
		MeetingLink:      lesson.MeetingLink,
		IsDrawingEnabled: lesson.IsDrawingEnabled,
		DrawingBaseImage: lesson.DrawingBaseImage,
		QuizFile:         lesson.QuizFile,
		IsStarted:        lesson.IsStarted,
		Attendance:       lesson.Attendance,
		Questions:        questions,
		Chat:             chat,
	}
}

// NewLessonResponses converts a slice of lesson models.
func NewLessonResponses(lessons []models.LessonPlan) []LessonResponse {
	responses := make([]LessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		responses = append(responses, NewLessonResponse(lesson))
	}
	return responses
}

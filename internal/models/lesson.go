package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LessonPlan is one scheduled teaching unit: homework, optional media links,
// an optional inline quiz or attached quiz file, an optional drawing task,
// attendance and a lesson chat.
type LessonPlan struct {
	ID               string                      `gorm:"primaryKey;size:64" json:"id"`
	SubjectID        *string                     `gorm:"size:64;index" json:"subject_id"`
	GroupID          string                      `gorm:"size:64;index;not null" json:"group_id"`
	TeacherID        *string                     `gorm:"size:64;index" json:"teacher_id"`
	Title            string                      `gorm:"size:255;not null" json:"title"`
	Date             string                      `gorm:"size:32" json:"date"`
	Description      string                      `gorm:"type:text" json:"description"`
	HomeworkCheck    string                      `gorm:"type:text" json:"homework_check"`
	Homework         string                      `gorm:"type:text" json:"homework"`
	VideoURL         string                      `gorm:"size:512" json:"video_url"`
	MeetingLink      string                      `gorm:"size:512" json:"meeting_link"`
	IsDrawingEnabled bool                        `gorm:"not null;default:false" json:"is_drawing_enabled"`
	DrawingBaseImage string                      `gorm:"type:text" json:"drawing_base_image"`
	QuizFile         *string                     `gorm:"size:512" json:"quiz_file"`
	IsStarted        bool                        `gorm:"not null;default:false" json:"is_started"`
	Attendance       datatypes.JSONSlice[string] `gorm:"type:json" json:"attendance"`
	Questions        []QuizQuestion              `gorm:"foreignKey:LessonID" json:"questions"`
	Chat             []ChatMessage               `gorm:"foreignKey:LessonID" json:"chat"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

// BeforeCreate assigns a process-unique identifier when none was supplied.
func (l *LessonPlan) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// IsAttending reports whether the student is marked present.
func (l LessonPlan) IsAttending(studentID string) bool {
	for _, id := range l.Attendance {
		if id == studentID {
			return true
		}
	}
	return false
}

const (
	// QuestionMediaImage marks an image question attachment.
	QuestionMediaImage = "image"
	// QuestionMediaVideo marks a video question attachment.
	QuestionMediaVideo = "video"
)

// QuizQuestion is a single multiple-choice question inside a lesson quiz.
// Position keeps the authoring order stable.
type QuizQuestion struct {
	ID           string                      `gorm:"primaryKey;size:64" json:"id"`
	LessonID     string                      `gorm:"size:64;index;not null" json:"lesson_id"`
	Position     int                         `gorm:"not null" json:"position"`
	Text         string                      `gorm:"type:text;not null" json:"text"`
	Options      datatypes.JSONSlice[string] `gorm:"type:json" json:"options"`
	CorrectIndex int                         `gorm:"not null" json:"correct_index"`
	MediaURL     string                      `gorm:"size:512" json:"media_url"`
	MediaType    string                      `gorm:"size:16" json:"media_type"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// BeforeCreate assigns a process-unique identifier when none was supplied.
func (q *QuizQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// ChatMessage is one entry in a lesson chat, ordered by SentAt.
type ChatMessage struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	LessonID   string    `gorm:"size:64;index;not null" json:"lesson_id"`
	AuthorID   string    `gorm:"size:64;index" json:"author_id"`
	AuthorName string    `gorm:"size:255" json:"author_name"`
	Text       string    `gorm:"type:text" json:"text"`
	SentAt     time.Time `gorm:"not null" json:"sent_at"`
}

// BeforeCreate assigns a process-unique identifier when none was supplied.
func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

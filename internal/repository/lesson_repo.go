package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/models"
)

// LessonFilter narrows lesson listings.
type LessonFilter struct {
	GroupID   string
	GroupIDs  []string
	TeacherID string
	SubjectID string
}

// LessonRepository provides access to lesson plans, their quiz questions,
// attendance and chat.
type LessonRepository interface {
	Create(ctx context.Context, lesson *models.LessonPlan) error
	GetByID(ctx context.Context, id string) (models.LessonPlan, error)
	List(ctx context.Context, filter LessonFilter) ([]models.LessonPlan, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (models.LessonPlan, error)
	Delete(ctx context.Context, id string) error
	ReplaceQuestions(ctx context.Context, lessonID string, questions []models.QuizQuestion) error
	AppendChat(ctx context.Context, message *models.ChatMessage) error
	SetAttendance(ctx context.Context, lessonID, studentID string, present bool) (models.LessonPlan, error)
	SetStarted(ctx context.Context, lessonID string, started bool) error
}

type lessonRepository struct {
	db *gorm.DB
}

// NewLessonRepository constructs a lesson repository.
func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

// Create stores the lesson and its inline questions. A lesson must point at
// an existing group; a dangling group id fails with ErrForeignKeyViolated.
func (r *lessonRepository) Create(ctx context.Context, lesson *models.LessonPlan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Group{}).
			Where("id = ?", lesson.GroupID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrForeignKeyViolated
		}

		for i := range lesson.Questions {
			lesson.Questions[i].Position = i
		}

		return tx.Create(lesson).Error
	})
}

func (r *lessonRepository) GetByID(ctx context.Context, id string) (models.LessonPlan, error) {
	var lesson models.LessonPlan
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Chat", func(db *gorm.DB) *gorm.DB { return db.Order("sent_at ASC") }).
		Where("id = ?", id).
		First(&lesson).Error
	if err != nil {
		return models.LessonPlan{}, err
	}

	return lesson, nil
}

func (r *lessonRepository) List(ctx context.Context, filter LessonFilter) ([]models.LessonPlan, error) {
	query := r.db.WithContext(ctx).Model(&models.LessonPlan{}).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Chat", func(db *gorm.DB) *gorm.DB { return db.Order("sent_at ASC") })

	if filter.GroupID != "" {
		query = query.Where("group_id = ?", filter.GroupID)
	}
	if len(filter.GroupIDs) > 0 {
		query = query.Where("group_id IN ?", filter.GroupIDs)
	}
	if filter.TeacherID != "" {
		query = query.Where("teacher_id = ?", filter.TeacherID)
	}
	if filter.SubjectID != "" {
		query = query.Where("subject_id = ?", filter.SubjectID)
	}

	var lessons []models.LessonPlan
	if err := query.Order("date ASC").Find(&lessons).Error; err != nil {
		return nil, err
	}

	return lessons, nil
}

func (r *lessonRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (models.LessonPlan, error) {
	result := r.db.WithContext(ctx).Model(&models.LessonPlan{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.LessonPlan{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.LessonPlan{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes the lesson and everything it owns: questions, chat,
// submissions and grades.
func (r *lessonRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.LessonPlan{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return cascadeLessonRemoval(tx, id)
	})
}

// ReplaceQuestions swaps the whole inline question list of a lesson,
// renumbering positions from zero.
func (r *lessonRepository) ReplaceQuestions(ctx context.Context, lessonID string, questions []models.QuizQuestion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.LessonPlan{}).
			Where("id = ?", lessonID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Delete(&models.QuizQuestion{}, "lesson_id = ?", lessonID).Error; err != nil {
			return err
		}

		for i := range questions {
			questions[i].LessonID = lessonID
			questions[i].Position = i
		}
		if len(questions) == 0 {
			return nil
		}

		return tx.Create(&questions).Error
	})
}

func (r *lessonRepository) AppendChat(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.LessonPlan{}).
			Where("id = ?", message.LessonID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Create(message).Error
	})
}

func (r *lessonRepository) SetAttendance(ctx context.Context, lessonID, studentID string, present bool) (models.LessonPlan, error) {
	var lesson models.LessonPlan
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", lessonID).First(&lesson).Error; err != nil {
			return err
		}

		lesson.Attendance = setID(lesson.Attendance, studentID, present)
		return tx.Model(&lesson).Update("attendance", lesson.Attendance).Error
	})
	if err != nil {
		return models.LessonPlan{}, err
	}

	return lesson, nil
}

func (r *lessonRepository) SetStarted(ctx context.Context, lessonID string, started bool) error {
	result := r.db.WithContext(ctx).Model(&models.LessonPlan{}).
		Where("id = ?", lessonID).
		Update("is_started", started)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// cascadeLessonRemoval drops the rows owned by a deleted lesson.
func cascadeLessonRemoval(tx *gorm.DB, lessonID string) error {
	if err := tx.Delete(&models.QuizQuestion{}, "lesson_id = ?", lessonID).Error; err != nil {
		return err
	}
	if err := tx.Delete(&models.ChatMessage{}, "lesson_id = ?", lessonID).Error; err != nil {
		return err
	}
	if err := tx.Delete(&models.Submission{}, "lesson_id = ?", lessonID).Error; err != nil {
		return err
	}

	return tx.Delete(&models.Grade{}, "lesson_id = ?", lessonID).Error
}

package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/models"
)

// GradeFilter narrows grade listings.
type GradeFilter struct {
	StudentID  string
	StudentIDs []string
	LessonID   string
	LessonIDs  []string
	Type       string
}

// GradeRepository provides access to grade records, unique per
// (student, lesson, type).
type GradeRepository interface {
	Upsert(ctx context.Context, grade models.Grade) (models.Grade, error)
	List(ctx context.Context, filter GradeFilter) ([]models.Grade, error)
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository constructs a grade repository.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

// Upsert writes the grade for its (student, lesson, type) key, overwriting
// an existing row instead of appending a second one.
func (r *gradeRepository) Upsert(ctx context.Context, grade models.Grade) (models.Grade, error) {
	var saved models.Grade
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Grade
		err := tx.Where("student_id = ? AND lesson_id = ? AND type = ?",
			grade.StudentID, grade.LessonID, grade.Type).
			First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			saved = grade
		case err != nil:
			return err
		default:
			existing.Score = grade.Score
			existing.Date = grade.Date
			existing.Feedback = grade.Feedback
			saved = existing
		}

		return tx.Save(&saved).Error
	})
	if err != nil {
		return models.Grade{}, err
	}

	return saved, nil
}

func (r *gradeRepository) List(ctx context.Context, filter GradeFilter) ([]models.Grade, error) {
	query := r.db.WithContext(ctx).Model(&models.Grade{})

	if filter.StudentID != "" {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if len(filter.StudentIDs) > 0 {
		query = query.Where("student_id IN ?", filter.StudentIDs)
	}
	if filter.LessonID != "" {
		query = query.Where("lesson_id = ?", filter.LessonID)
	}
	if len(filter.LessonIDs) > 0 {
		query = query.Where("lesson_id IN ?", filter.LessonIDs)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var grades []models.Grade
	if err := query.Order("date ASC").Find(&grades).Error; err != nil {
		return nil, err
	}

	return grades, nil
}

package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/models"
)

// SubmissionMutation is applied to the single submission row of a
// (student, lesson) pair while holding the upsert transaction.
type SubmissionMutation func(submission *models.Submission)

// SubmissionRepository provides access to submission records, keyed by the
// composite (student, lesson) pair.
type SubmissionRepository interface {
	GetByKey(ctx context.Context, studentID, lessonID string) (models.Submission, error)
	ListByLesson(ctx context.Context, lessonID string) ([]models.Submission, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error)
	Upsert(ctx context.Context, studentID, lessonID string, mutate SubmissionMutation) (models.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository constructs a submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) GetByKey(ctx context.Context, studentID, lessonID string) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND lesson_id = ?", studentID, lessonID).
		First(&submission).Error
	if err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListByLesson(ctx context.Context, lessonID string) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).Where("lesson_id = ?", lessonID).Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).Where("student_id = ?", studentID).Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

// Upsert loads or creates the single submission row for the pair, applies
// mutate to it and saves the result. Later writes replace earlier ones; no
// history of prior attempts is retained.
func (r *submissionRepository) Upsert(ctx context.Context, studentID, lessonID string, mutate SubmissionMutation) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("student_id = ? AND lesson_id = ?", studentID, lessonID).
			First(&submission).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			submission = models.Submission{StudentID: studentID, LessonID: lessonID}
		case err != nil:
			return err
		}

		mutate(&submission)
		return tx.Save(&submission).Error
	})
	if err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/models"
)

// SubjectRepository provides access to subject records.
type SubjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id string) (models.Subject, error)
	List(ctx context.Context) ([]models.Subject, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (models.Subject, error)
	Delete(ctx context.Context, id string) error
}

type subjectRepository struct {
	db *gorm.DB
}

// NewSubjectRepository constructs a subject repository.
func NewSubjectRepository(db *gorm.DB) SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *subjectRepository) GetByID(ctx context.Context, id string) (models.Subject, error) {
	var subject models.Subject
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&subject).Error; err != nil {
		return models.Subject{}, err
	}

	return subject, nil
}

func (r *subjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}

	return subjects, nil
}

func (r *subjectRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (models.Subject, error) {
	result := r.db.WithContext(ctx).Model(&models.Subject{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.Subject{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Subject{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes the subject and detaches it from every group and lesson
// that referenced it.
func (r *subjectRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Subject{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Model(&models.Group{}).
			Where("subject_id = ?", id).
			Update("subject_id", nil).Error; err != nil {
			return err
		}

		return tx.Model(&models.LessonPlan{}).
			Where("subject_id = ?", id).
			Update("subject_id", nil).Error
	})
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/models"
)

// StoreState is the complete contents of every collection, as used by
// snapshot export and restore.
type StoreState struct {
	Accounts    []models.Account
	Subjects    []models.Subject
	Groups      []models.Group
	Lessons     []models.LessonPlan
	Submissions []models.Submission
	Grades      []models.Grade
	AuditLog    []models.AuditLog
}

// SnapshotRepository reads and replaces the whole store in one step.
type SnapshotRepository interface {
	Export(ctx context.Context) (StoreState, error)
	Restore(ctx context.Context, state StoreState) error
}

type snapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository constructs a snapshot repository.
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Export(ctx context.Context) (StoreState, error) {
	var state StoreState
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Order("id ASC").Find(&state.Accounts).Error; err != nil {
			return err
		}
		if err := tx.Order("id ASC").Find(&state.Subjects).Error; err != nil {
			return err
		}
		if err := tx.Order("id ASC").Find(&state.Groups).Error; err != nil {
			return err
		}
		err := tx.Order("id ASC").
			Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
			Preload("Chat", func(db *gorm.DB) *gorm.DB { return db.Order("sent_at ASC") }).
			Find(&state.Lessons).Error
		if err != nil {
			return err
		}
		if err := tx.Order("id ASC").Find(&state.Submissions).Error; err != nil {
			return err
		}
		if err := tx.Order("id ASC").Find(&state.Grades).Error; err != nil {
			return err
		}

		return tx.Order("created_at ASC").Find(&state.AuditLog).Error
	})
	if err != nil {
		return StoreState{}, err
	}

	return state, nil
}

// Restore replaces every collection with the supplied state. The swap is a
// single transaction; a failed write leaves the previous contents intact.
func (r *snapshotRepository) Restore(ctx context.Context, state StoreState) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.AuditLog{},
			&models.Grade{},
			&models.Submission{},
			&models.ChatMessage{},
			&models.QuizQuestion{},
			&models.LessonPlan{},
			&models.Group{},
			&models.Subject{},
			&models.Account{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}

		if len(state.Accounts) > 0 {
			if err := tx.Create(&state.Accounts).Error; err != nil {
				return err
			}
		}
		if len(state.Subjects) > 0 {
			if err := tx.Create(&state.Subjects).Error; err != nil {
				return err
			}
		}
		if len(state.Groups) > 0 {
			if err := tx.Create(&state.Groups).Error; err != nil {
				return err
			}
		}
		if len(state.Lessons) > 0 {
			if err := tx.Create(&state.Lessons).Error; err != nil {
				return err
			}
		}
		if len(state.Submissions) > 0 {
			if err := tx.Create(&state.Submissions).Error; err != nil {
				return err
			}
		}
		if len(state.Grades) > 0 {
			if err := tx.Create(&state.Grades).Error; err != nil {
				return err
			}
		}
		if len(state.AuditLog) > 0 {
			if err := tx.Create(&state.AuditLog).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/models"
)

// Migrate creates or updates the schema for every store collection.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Account{},
		&models.Subject{},
		&models.Group{},
		&models.LessonPlan{},
		&models.QuizQuestion{},
		&models.ChatMessage{},
		&models.Submission{},
		&models.Grade{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return nil
}

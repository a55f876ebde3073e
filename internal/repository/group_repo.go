package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/models"
)

// GroupFilter narrows group listings.
type GroupFilter struct {
	TeacherID string
	SubjectID string
	Grade     string
}

// GroupRepository provides access to group records and the membership and
// teacher-assignment toggles.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id string) (models.Group, error)
	List(ctx context.Context, filter GroupFilter) ([]models.Group, error)
	ListContainingStudent(ctx context.Context, studentID string) ([]models.Group, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (models.Group, error)
	Delete(ctx context.Context, id string) error
	ToggleStudent(ctx context.Context, groupID, studentID string) (models.Group, error)
	AssignTeacher(ctx context.Context, groupID, teacherID string) (models.Group, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository constructs a group repository.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		return models.Group{}, err
	}

	return group, nil
}

func (r *groupRepository) List(ctx context.Context, filter GroupFilter) ([]models.Group, error) {
	query := r.db.WithContext(ctx).Model(&models.Group{})

	if filter.TeacherID != "" {
		query = query.Where("teacher_id = ?", filter.TeacherID)
	}
	if filter.SubjectID != "" {
		query = query.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.Grade != "" {
		query = query.Where("grade = ?", filter.Grade)
	}

	var groups []models.Group
	if err := query.Order("name ASC").Find(&groups).Error; err != nil {
		return nil, err
	}

	return groups, nil
}

func (r *groupRepository) ListContainingStudent(ctx context.Context, studentID string) ([]models.Group, error) {
	var groups []models.Group
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&groups).Error; err != nil {
		return nil, err
	}

	matched := groups[:0]
	for _, group := range groups {
		if group.HasStudent(studentID) {
			matched = append(matched, group)
		}
	}

	return matched, nil
}

func (r *groupRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (models.Group, error) {
	result := r.db.WithContext(ctx).Model(&models.Group{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.Group{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Group{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes the group together with its lesson plans and everything
// those lessons own.
func (r *groupRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Group{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var lessons []models.LessonPlan
		if err := tx.Where("group_id = ?", id).Find(&lessons).Error; err != nil {
			return err
		}
		for _, lesson := range lessons {
			if err := cascadeLessonRemoval(tx, lesson.ID); err != nil {
				return err
			}
		}

		return tx.Delete(&models.LessonPlan{}, "group_id = ?", id).Error
	})
}

// ToggleStudent adds the student to the roster when absent and removes it
// when present. The roster never holds duplicates.
func (r *groupRepository) ToggleStudent(ctx context.Context, groupID, studentID string) (models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", groupID).First(&group).Error; err != nil {
			return err
		}

		group.StudentIDs = toggleID(group.StudentIDs, studentID)
		return tx.Model(&group).Update("student_ids", group.StudentIDs).Error
	})
	if err != nil {
		return models.Group{}, err
	}

	return group, nil
}

// AssignTeacher assigns teacherID to the group; assigning the currently
// assigned teacher again leaves the group vacant.
func (r *groupRepository) AssignTeacher(ctx context.Context, groupID, teacherID string) (models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", groupID).First(&group).Error; err != nil {
			return err
		}

		if group.TeacherID != nil && *group.TeacherID == teacherID {
			group.TeacherID = nil
		} else {
			group.TeacherID = &teacherID
		}

		return tx.Model(&group).Update("teacher_id", group.TeacherID).Error
	})
	if err != nil {
		return models.Group{}, err
	}

	return group, nil
}

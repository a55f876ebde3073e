package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/models"
)

// AccountFilter narrows account listings for the admin surface.
type AccountFilter struct {
	Search   string
	Role     string
	Pending  *bool
	Page     int
	PageSize int
}

// AccountRepository provides access to account records. Delete runs the
// referential-integrity cascade for the deleted account in the same
// transaction.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (models.Account, error)
	GetByContact(ctx context.Context, contact string) (models.Account, error)
	List(ctx context.Context, filter AccountFilter) ([]models.Account, int64, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Account, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (models.Account, error)
	Delete(ctx context.Context, id string) error
	LinkChild(ctx context.Context, parentID, studentID string) (models.Account, error)
	UnlinkChild(ctx context.Context, parentID, studentID string) (models.Account, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository constructs an account repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).
			Where("contact = ?", account.Contact).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return gorm.ErrDuplicatedKey
		}

		return tx.Create(account).Error
	})
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return models.Account{}, err
	}

	return account, nil
}

func (r *accountRepository) GetByContact(ctx context.Context, contact string) (models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("contact = ?", contact).First(&account).Error; err != nil {
		return models.Account{}, err
	}

	return account, nil
}

func (r *accountRepository) List(ctx context.Context, filter AccountFilter) ([]models.Account, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Account{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(contact) LIKE ?", like, like)
	}

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	if filter.Pending != nil {
		query = query.Where("is_approved = ?", !*filter.Pending)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at ASC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Limit(filter.PageSize).Offset((page - 1) * filter.PageSize)
	}

	var accounts []models.Account
	if err := query.Find(&accounts).Error; err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}

func (r *accountRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var accounts []models.Account
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&accounts).Error; err != nil {
		return nil, err
	}

	return accounts, nil
}

func (r *accountRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (models.Account, error) {
	result := r.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.Account{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Account{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes the account and repairs every relationship that referenced
// it. Deleting a student strips its id from group rosters, parent links and
// lesson attendance and drops its submissions and grades; deleting a teacher
// leaves its groups and lessons vacant.
func (r *accountRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.Where("id = ?", id).First(&account).Error; err != nil {
			return err
		}

		switch {
		case account.IsStudent():
			if err := cascadeStudentRemoval(tx, id); err != nil {
				return err
			}
		case account.IsTeacher():
			if err := cascadeTeacherVacancy(tx, id); err != nil {
				return err
			}
		}

		return tx.Delete(&models.Account{}, "id = ?", id).Error
	})
}

// LinkChild attaches a student to a parent account. Linking an already
// linked student is a no-op.
func (r *accountRepository) LinkChild(ctx context.Context, parentID, studentID string) (models.Account, error) {
	var parent models.Account
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", parentID).First(&parent).Error; err != nil {
			return err
		}
		if containsID(parent.ChildrenIDs, studentID) {
			return nil
		}

		parent.ChildrenIDs = append(parent.ChildrenIDs, studentID)
		return tx.Model(&parent).Update("children_ids", parent.ChildrenIDs).Error
	})
	if err != nil {
		return models.Account{}, err
	}

	return parent, nil
}

func (r *accountRepository) UnlinkChild(ctx context.Context, parentID, studentID string) (models.Account, error) {
	var parent models.Account
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", parentID).First(&parent).Error; err != nil {
			return err
		}

		parent.ChildrenIDs = removeID(parent.ChildrenIDs, studentID)
		return tx.Model(&parent).Update("children_ids", parent.ChildrenIDs).Error
	})
	if err != nil {
		return models.Account{}, err
	}

	return parent, nil
}

// cascadeStudentRemoval strips studentID from every collection that may
// reference it and deletes the rows owned by the student.
func cascadeStudentRemoval(tx *gorm.DB, studentID string) error {
	var groups []models.Group
	if err := tx.Find(&groups).Error; err != nil {
		return err
	}
	for i := range groups {
		if !containsID(groups[i].StudentIDs, studentID) {
			continue
		}
		groups[i].StudentIDs = removeID(groups[i].StudentIDs, studentID)
		if err := tx.Model(&groups[i]).Update("student_ids", groups[i].StudentIDs).Error; err != nil {
			return err
		}
	}

	var parents []models.Account
	if err := tx.Where("role = ?", models.RoleParent).Find(&parents).Error; err != nil {
		return err
	}
	for i := range parents {
		if !containsID(parents[i].ChildrenIDs, studentID) {
			continue
		}
		parents[i].ChildrenIDs = removeID(parents[i].ChildrenIDs, studentID)
		if err := tx.Model(&parents[i]).Update("children_ids", parents[i].ChildrenIDs).Error; err != nil {
			return err
		}
	}

	var lessons []models.LessonPlan
	if err := tx.Find(&lessons).Error; err != nil {
		return err
	}
	for i := range lessons {
		if !lessons[i].IsAttending(studentID) {
			continue
		}
		lessons[i].Attendance = removeID(lessons[i].Attendance, studentID)
		if err := tx.Model(&lessons[i]).Update("attendance", lessons[i].Attendance).Error; err != nil {
			return err
		}
	}

	if err := tx.Delete(&models.Submission{}, "student_id = ?", studentID).Error; err != nil {
		return err
	}

	return tx.Delete(&models.Grade{}, "student_id = ?", studentID).Error
}

// cascadeTeacherVacancy clears the teacher from every group and lesson it
// was assigned to. The rows themselves survive as vacant.
func cascadeTeacherVacancy(tx *gorm.DB, teacherID string) error {
	if err := tx.Model(&models.Group{}).
		Where("teacher_id = ?", teacherID).
		Update("teacher_id", nil).Error; err != nil {
		return err
	}

	return tx.Model(&models.LessonPlan{}).
		Where("teacher_id = ?", teacherID).
		Update("teacher_id", nil).Error
}

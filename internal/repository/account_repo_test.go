package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/models"
)

func TestAccountRepositoryCreateRejectsDuplicateContact(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)

	first := models.Account{Name: "Alice", Contact: "alice@example.com", Password: "secret"}
	require.NoError(t, repo.Create(context.Background(), &first))
	require.NotEmpty(t, first.ID)

	second := models.Account{Name: "Other Alice", Contact: "alice@example.com", Password: "secret"}
	err := repo.Create(context.Background(), &second)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestAccountRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)

	student := models.Account{Name: "Bob Student", Contact: "bob@example.com", Password: "x", Role: models.RoleStudent, IsApproved: true}
	pending := models.Account{Name: "Carol Pending", Contact: "carol@example.com", Password: "x"}
	teacher := models.Account{Name: "Dana Teacher", Contact: "dana@example.com", Password: "x", Role: models.RoleTeacher, IsApproved: true}
	for _, account := range []*models.Account{&student, &pending, &teacher} {
		require.NoError(t, repo.Create(context.Background(), account))
	}

	students, total, err := repo.List(context.Background(), AccountFilter{Role: models.RoleStudent})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, students, 1)
	require.Equal(t, "Bob Student", students[0].Name)

	pendingOnly := true
	waiting, total, err := repo.List(context.Background(), AccountFilter{Pending: &pendingOnly})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Carol Pending", waiting[0].Name)

	searched, total, err := repo.List(context.Background(), AccountFilter{Search: "dana"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Dana Teacher", searched[0].Name)
}

func TestAccountRepositoryDeleteStudentCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	groups := NewGroupRepository(db)
	lessons := NewLessonRepository(db)

	student := models.Account{Name: "Student", Contact: "student@example.com", Password: "x", Role: models.RoleStudent, IsApproved: true}
	classmate := models.Account{Name: "Classmate", Contact: "classmate@example.com", Password: "x", Role: models.RoleStudent, IsApproved: true}
	parent := models.Account{Name: "Parent", Contact: "parent@example.com", Password: "x", Role: models.RoleParent, IsApproved: true}
	for _, account := range []*models.Account{&student, &classmate, &parent} {
		require.NoError(t, repo.Create(context.Background(), account))
	}
	parent.ChildrenIDs = datatypes.JSONSlice[string]{student.ID}
	require.NoError(t, db.Model(&parent).Update("children_ids", parent.ChildrenIDs).Error)

	group := models.Group{Name: "8-A", StudentIDs: datatypes.JSONSlice[string]{student.ID, classmate.ID}}
	require.NoError(t, groups.Create(context.Background(), &group))

	lesson := models.LessonPlan{GroupID: group.ID, Title: "Mechanics", Attendance: datatypes.JSONSlice[string]{student.ID}}
	require.NoError(t, lessons.Create(context.Background(), &lesson))

	require.NoError(t, db.Create(&models.Submission{StudentID: student.ID, LessonID: lesson.ID, TestFinished: true}).Error)
	require.NoError(t, db.Create(&models.Grade{StudentID: student.ID, LessonID: lesson.ID, Type: models.GradeTypeTest, Score: 80, Date: "2024-05-20"}).Error)

	require.NoError(t, repo.Delete(context.Background(), student.ID))

	_, err := repo.GetByID(context.Background(), student.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	updatedGroup, err := groups.GetByID(context.Background(), group.ID)
	require.NoError(t, err)
	require.False(t, updatedGroup.HasStudent(student.ID))
	require.True(t, updatedGroup.HasStudent(classmate.ID))

	updatedParent, err := repo.GetByID(context.Background(), parent.ID)
	require.NoError(t, err)
	require.Empty(t, updatedParent.ChildrenIDs)

	updatedLesson, err := lessons.GetByID(context.Background(), lesson.ID)
	require.NoError(t, err)
	require.False(t, updatedLesson.IsAttending(student.ID))

	var submissionCount, gradeCount int64
	require.NoError(t, db.Model(&models.Submission{}).Where("student_id = ?", student.ID).Count(&submissionCount).Error)
	require.NoError(t, db.Model(&models.Grade{}).Where("student_id = ?", student.ID).Count(&gradeCount).Error)
	require.Zero(t, submissionCount)
	require.Zero(t, gradeCount)
}

func TestAccountRepositoryDeleteTeacherLeavesGroupsVacant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	groups := NewGroupRepository(db)
	lessons := NewLessonRepository(db)

	teacher := models.Account{Name: "Teacher", Contact: "teacher@example.com", Password: "x", Role: models.RoleTeacher, IsApproved: true}
	require.NoError(t, repo.Create(context.Background(), &teacher))

	group := models.Group{Name: "9-B", TeacherID: &teacher.ID}
	require.NoError(t, groups.Create(context.Background(), &group))

	lesson := models.LessonPlan{GroupID: group.ID, TeacherID: &teacher.ID, Title: "Gravity"}
	require.NoError(t, lessons.Create(context.Background(), &lesson))

	require.NoError(t, repo.Delete(context.Background(), teacher.ID))

	updatedGroup, err := groups.GetByID(context.Background(), group.ID)
	require.NoError(t, err)
	require.Nil(t, updatedGroup.TeacherID)

	updatedLesson, err := lessons.GetByID(context.Background(), lesson.ID)
	require.NoError(t, err)
	require.Nil(t, updatedLesson.TeacherID)
}

func TestAccountRepositoryLinkChildIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)

	parent := models.Account{Name: "Parent", Contact: "p@example.com", Password: "x", Role: models.RoleParent, IsApproved: true}
	student := models.Account{Name: "Child", Contact: "c@example.com", Password: "x", Role: models.RoleStudent, IsApproved: true}
	require.NoError(t, repo.Create(context.Background(), &parent))
	require.NoError(t, repo.Create(context.Background(), &student))

	linked, err := repo.LinkChild(context.Background(), parent.ID, student.ID)
	require.NoError(t, err)
	require.Equal(t, []string{student.ID}, []string(linked.ChildrenIDs))

	linked, err = repo.LinkChild(context.Background(), parent.ID, student.ID)
	require.NoError(t, err)
	require.Len(t, linked.ChildrenIDs, 1)

	unlinked, err := repo.UnlinkChild(context.Background(), parent.ID, student.ID)
	require.NoError(t, err)
	require.Empty(t, unlinked.ChildrenIDs)
}

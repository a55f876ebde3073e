package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/models"
)

func TestLessonRepositoryCreateRequiresGroup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLessonRepository(db)

	lesson := models.LessonPlan{GroupID: "missing", Title: "Orphan"}
	err := repo.Create(context.Background(), &lesson)
	require.ErrorIs(t, err, gorm.ErrForeignKeyViolated)
}

func TestLessonRepositoryCreateNumbersQuestions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLessonRepository(db)
	groups := NewGroupRepository(db)

	group := models.Group{Name: "8-A"}
	require.NoError(t, groups.Create(context.Background(), &group))

	lesson := models.LessonPlan{
		GroupID: group.ID,
		Title:   "Dynamics",
		Questions: []models.QuizQuestion{
			{Text: "First", Options: datatypes.JSONSlice[string]{"a", "b"}, CorrectIndex: 0},
			{Text: "Second", Options: datatypes.JSONSlice[string]{"a", "b", "c"}, CorrectIndex: 2},
		},
	}
	require.NoError(t, repo.Create(context.Background(), &lesson))

	stored, err := repo.GetByID(context.Background(), lesson.ID)
	require.NoError(t, err)
	require.Len(t, stored.Questions, 2)
	require.Equal(t, "First", stored.Questions[0].Text)
	require.Equal(t, 0, stored.Questions[0].Position)
	require.Equal(t, "Second", stored.Questions[1].Text)
	require.Equal(t, 1, stored.Questions[1].Position)
}

func TestLessonRepositoryReplaceQuestions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLessonRepository(db)
	groups := NewGroupRepository(db)

	group := models.Group{Name: "8-A"}
	require.NoError(t, groups.Create(context.Background(), &group))

	lesson := models.LessonPlan{
		GroupID: group.ID,
		Title:   "Dynamics",
		Questions: []models.QuizQuestion{
			{Text: "Old", Options: datatypes.JSONSlice[string]{"a", "b"}, CorrectIndex: 0},
		},
	}
	require.NoError(t, repo.Create(context.Background(), &lesson))

	replacement := []models.QuizQuestion{
		{Text: "New one", Options: datatypes.JSONSlice[string]{"x", "y"}, CorrectIndex: 1},
		{Text: "New two", Options: datatypes.JSONSlice[string]{"x", "y", "z"}, CorrectIndex: 0},
	}
	require.NoError(t, repo.ReplaceQuestions(context.Background(), lesson.ID, replacement))

	stored, err := repo.GetByID(context.Background(), lesson.ID)
	require.NoError(t, err)
	require.Len(t, stored.Questions, 2)
	require.Equal(t, "New one", stored.Questions[0].Text)
	require.Equal(t, "New two", stored.Questions[1].Text)

	require.NoError(t, repo.ReplaceQuestions(context.Background(), lesson.ID, nil))
	stored, err = repo.GetByID(context.Background(), lesson.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Questions)

	err = repo.ReplaceQuestions(context.Background(), "missing", replacement)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestLessonRepositoryAttendanceAndChat(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLessonRepository(db)
	groups := NewGroupRepository(db)

	group := models.Group{Name: "8-A", StudentIDs: datatypes.JSONSlice[string]{"s1"}}
	require.NoError(t, groups.Create(context.Background(), &group))

	lesson := models.LessonPlan{GroupID: group.ID, Title: "Gravity"}
	require.NoError(t, repo.Create(context.Background(), &lesson))

	marked, err := repo.SetAttendance(context.Background(), lesson.ID, "s1", true)
	require.NoError(t, err)
	require.True(t, marked.IsAttending("s1"))

	// Marking twice must not duplicate the entry.
	marked, err = repo.SetAttendance(context.Background(), lesson.ID, "s1", true)
	require.NoError(t, err)
	require.Len(t, marked.Attendance, 1)

	marked, err = repo.SetAttendance(context.Background(), lesson.ID, "s1", false)
	require.NoError(t, err)
	require.False(t, marked.IsAttending("s1"))

	first := models.ChatMessage{LessonID: lesson.ID, AuthorID: "s1", AuthorName: "Student", Text: "hello", SentAt: time.Now().Add(-time.Minute)}
	second := models.ChatMessage{LessonID: lesson.ID, AuthorID: "t1", AuthorName: "Teacher", Text: "welcome", SentAt: time.Now()}
	require.NoError(t, repo.AppendChat(context.Background(), &first))
	require.NoError(t, repo.AppendChat(context.Background(), &second))

	stored, err := repo.GetByID(context.Background(), lesson.ID)
	require.NoError(t, err)
	require.Len(t, stored.Chat, 2)
	require.Equal(t, "hello", stored.Chat[0].Text)
	require.Equal(t, "welcome", stored.Chat[1].Text)

	orphan := models.ChatMessage{LessonID: "missing", Text: "lost"}
	require.ErrorIs(t, repo.AppendChat(context.Background(), &orphan), gorm.ErrRecordNotFound)
}

func TestLessonRepositoryDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLessonRepository(db)
	groups := NewGroupRepository(db)

	group := models.Group{Name: "8-A"}
	require.NoError(t, groups.Create(context.Background(), &group))

	lesson := models.LessonPlan{
		GroupID: group.ID,
		Title:   "Dynamics",
		Questions: []models.QuizQuestion{
			{Text: "Q", Options: datatypes.JSONSlice[string]{"a", "b"}, CorrectIndex: 0},
		},
	}
	require.NoError(t, repo.Create(context.Background(), &lesson))
	require.NoError(t, db.Create(&models.Submission{StudentID: "s1", LessonID: lesson.ID}).Error)
	require.NoError(t, db.Create(&models.Grade{StudentID: "s1", LessonID: lesson.ID, Type: models.GradeTypeTest, Score: 70, Date: "2024-05-20"}).Error)

	require.NoError(t, repo.Delete(context.Background(), lesson.ID))

	var questions, submissions, grades int64
	require.NoError(t, db.Model(&models.QuizQuestion{}).Where("lesson_id = ?", lesson.ID).Count(&questions).Error)
	require.NoError(t, db.Model(&models.Submission{}).Where("lesson_id = ?", lesson.ID).Count(&submissions).Error)
	require.NoError(t, db.Model(&models.Grade{}).Where("lesson_id = ?", lesson.ID).Count(&grades).Error)
	require.Zero(t, questions)
	require.Zero(t, submissions)
	require.Zero(t, grades)
}

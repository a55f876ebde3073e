package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/edunexus/edunexus-go/internal/models"
	"github.com/edunexus/edunexus-go/internal/repository"
)

type analyticsFixture struct {
	svc      AnalyticsService
	accounts repository.AccountRepository
	group    models.Group
	teacher  models.Account
	one      models.Account
	two      models.Account
	parent   models.Account
	lessons  [2]models.LessonPlan
}

// Analytics folds rows from six collections, so the fixture runs against
// real repositories on an in-memory database.
func newAnalyticsFixture(t *testing.T) analyticsFixture {
	t.Helper()
	db := setupServiceDB(t)
	ctx := context.Background()

	accounts := repository.NewAccountRepository(db)
	subjects := repository.NewSubjectRepository(db)
	groups := repository.NewGroupRepository(db)
	lessons := repository.NewLessonRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	grades := repository.NewGradeRepository(db)

	teacher := models.Account{Name: "Teacher", Contact: "teacher@example.com", Password: "x", Role: models.RoleTeacher, IsApproved: true}
	one := models.Account{Name: "Student One", Contact: "one@example.com", Password: "x", Role: models.RoleStudent, IsApproved: true, Grade: "8-A"}
	two := models.Account{Name: "Student Two", Contact: "two@example.com", Password: "x", Role: models.RoleStudent, IsApproved: true}
	parent := models.Account{Name: "Parent", Contact: "parent@example.com", Password: "x", Role: models.RoleParent, IsApproved: true}
	for _, account := range []*models.Account{&teacher, &one, &two, &parent} {
		require.NoError(t, accounts.Create(ctx, account))
	}
	_, err := accounts.LinkChild(ctx, parent.ID, one.ID)
	require.NoError(t, err)

	algebra := models.Subject{Name: "Algebra"}
	physics := models.Subject{Name: "Physics"}
	require.NoError(t, subjects.Create(ctx, &algebra))
	require.NoError(t, subjects.Create(ctx, &physics))

	group := models.Group{
		Name:       "8-A",
		TeacherID:  &teacher.ID,
		StudentIDs: datatypes.JSONSlice[string]{one.ID, two.ID},
	}
	require.NoError(t, groups.Create(ctx, &group))

	first := models.LessonPlan{GroupID: group.ID, SubjectID: &physics.ID, TeacherID: &teacher.ID, Title: "Dynamics", Date: "2024-05-20"}
	second := models.LessonPlan{GroupID: group.ID, SubjectID: &algebra.ID, TeacherID: &teacher.ID, Title: "Equations", Date: "2024-05-21"}
	require.NoError(t, lessons.Create(ctx, &first))
	require.NoError(t, lessons.Create(ctx, &second))

	// Student one attends both lessons, student two only the first.
	_, err = lessons.SetAttendance(ctx, first.ID, one.ID, true)
	require.NoError(t, err)
	_, err = lessons.SetAttendance(ctx, second.ID, one.ID, true)
	require.NoError(t, err)
	_, err = lessons.SetAttendance(ctx, first.ID, two.ID, true)
	require.NoError(t, err)

	for _, grade := range []models.Grade{
		{StudentID: one.ID, LessonID: first.ID, Type: models.GradeTypeTest, Score: 80, Date: "2024-05-20"},
		{StudentID: one.ID, LessonID: second.ID, Type: models.GradeTypeTest, Score: 90, Date: "2024-05-21"},
		{StudentID: two.ID, LessonID: first.ID, Type: models.GradeTypeTest, Score: 60, Date: "2024-05-20"},
	} {
		_, err = grades.Upsert(ctx, grade)
		require.NoError(t, err)
	}

	_, err = submissions.Upsert(ctx, one.ID, first.ID, func(s *models.Submission) {
		score := 80
		s.TestScore = &score
		s.TestFinished = true
	})
	require.NoError(t, err)
	artifact := "answers.pdf"
	_, err = submissions.Upsert(ctx, one.ID, second.ID, func(s *models.Submission) {
		s.HomeworkArtifact = &artifact
	})
	require.NoError(t, err)

	svc := NewAnalyticsService(accounts, subjects, groups, lessons, submissions, grades, testLogger())
	return analyticsFixture{
		svc:      svc,
		accounts: accounts,
		group:    group,
		teacher:  teacher,
		one:      one,
		two:      two,
		parent:   parent,
		lessons:  [2]models.LessonPlan{first, second},
	}
}

func TestAnalyticsGroupPerformance(t *testing.T) {
	f := newAnalyticsFixture(t)
	actor := Actor{ID: f.teacher.ID, Name: f.teacher.Name, Role: models.RoleTeacher}

	perf, err := f.svc.GroupPerformance(context.Background(), actor, f.group.ID)
	require.NoError(t, err)

	require.Equal(t, f.group.ID, perf.GroupID)
	require.Equal(t, 2, perf.StudentCount)
	require.Equal(t, 2, perf.LessonCount)
	require.Equal(t, 3, perf.GradeCount)
	require.InDelta(t, (80.0+90.0+60.0)/3.0, perf.AverageScore, 1e-9)
	// 3 attendances across 2 lessons x 2 students.
	require.InDelta(t, 0.75, perf.AttendanceRate, 1e-9)

	require.Len(t, perf.Students, 2)
	byID := map[string]int{}
	for i, s := range perf.Students {
		byID[s.StudentID] = i
	}
	one := perf.Students[byID[f.one.ID]]
	require.Equal(t, 2, one.GradeCount)
	require.InDelta(t, 85, one.AverageScore, 1e-9)
	require.Equal(t, 2, one.LessonsAttended)
	require.InDelta(t, 1, one.AttendanceRate, 1e-9)

	two := perf.Students[byID[f.two.ID]]
	require.Equal(t, 1, two.GradeCount)
	require.InDelta(t, 60, two.AverageScore, 1e-9)
	require.InDelta(t, 0.5, two.AttendanceRate, 1e-9)
}

func TestAnalyticsGroupPerformanceAccess(t *testing.T) {
	f := newAnalyticsFixture(t)

	_, err := f.svc.GroupPerformance(context.Background(), Actor{ID: "someone-else", Role: models.RoleTeacher}, f.group.ID)
	require.ErrorIs(t, err, ErrNotPermitted)

	_, err = f.svc.GroupPerformance(context.Background(), Actor{ID: f.one.ID, Role: models.RoleStudent}, f.group.ID)
	require.ErrorIs(t, err, ErrNotPermitted)

	_, err = f.svc.GroupPerformance(context.Background(), adminActor(), "missing")
	require.ErrorIs(t, err, ErrGroupNotFound)
}

func TestAnalyticsStudentOverview(t *testing.T) {
	f := newAnalyticsFixture(t)
	self := Actor{ID: f.one.ID, Name: f.one.Name, Role: models.RoleStudent}

	overview, err := f.svc.StudentOverview(context.Background(), self, f.one.ID)
	require.NoError(t, err)

	require.Equal(t, f.one.ID, overview.Summary.StudentID)
	require.Equal(t, 2, overview.Summary.GradeCount)
	require.InDelta(t, 85, overview.Summary.AverageScore, 1e-9)
	require.Equal(t, 2, overview.Summary.LessonsAttended)
	require.InDelta(t, 1, overview.Summary.AttendanceRate, 1e-9)
	require.Equal(t, 1, overview.FinishedQuizzes)
	require.Equal(t, 1, overview.HomeworkHandedIn)

	require.Len(t, overview.BySubject, 2)
	require.Equal(t, "Algebra", overview.BySubject[0].SubjectName)
	require.InDelta(t, 90, overview.BySubject[0].AverageScore, 1e-9)
	require.Equal(t, "Physics", overview.BySubject[1].SubjectName)
	require.InDelta(t, 80, overview.BySubject[1].AverageScore, 1e-9)

	require.Len(t, overview.RecentGrades, 2)
	// Newest first.
	require.Equal(t, "2024-05-21", overview.RecentGrades[0].Date)
	require.Equal(t, 90, overview.RecentGrades[0].Score)
}

func TestAnalyticsStudentOverviewAccess(t *testing.T) {
	f := newAnalyticsFixture(t)

	// Another student may not read the overview.
	_, err := f.svc.StudentOverview(context.Background(), Actor{ID: f.two.ID, Role: models.RoleStudent}, f.one.ID)
	require.ErrorIs(t, err, ErrNotPermitted)

	// The target has to be a student account.
	_, err = f.svc.StudentOverview(context.Background(), adminActor(), f.teacher.ID)
	require.ErrorIs(t, err, ErrInvalidReference)

	_, err = f.svc.StudentOverview(context.Background(), adminActor(), "missing")
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAnalyticsRecentGradesKeepsNewestFive(t *testing.T) {
	grades := make([]models.Grade, 0, 7)
	for day := 1; day <= 7; day++ {
		grades = append(grades, models.Grade{
			StudentID: "s1",
			LessonID:  "l1",
			Type:      models.GradeTypeFormative,
			Score:     50 + day,
			Date:      fmt.Sprintf("2024-05-%02d", day),
		})
	}

	recent := recentGrades(grades)
	require.Len(t, recent, recentGradeLimit)
	require.Equal(t, "2024-05-07", recent[0].Date)
	require.Equal(t, "2024-05-03", recent[4].Date)
}

func TestAnalyticsParentOverview(t *testing.T) {
	f := newAnalyticsFixture(t)
	self := Actor{ID: f.parent.ID, Name: f.parent.Name, Role: models.RoleParent}

	overview, err := f.svc.ParentOverview(context.Background(), self, f.parent.ID)
	require.NoError(t, err)
	require.Equal(t, f.parent.ID, overview.ParentID)
	require.Len(t, overview.Children, 1)

	child := overview.Children[0]
	require.Equal(t, f.one.ID, child.StudentID)
	require.Equal(t, "8-A", child.Grade)
	require.InDelta(t, 85, child.Overview.Summary.AverageScore, 1e-9)
	require.Equal(t, 1, child.Overview.FinishedQuizzes)
}

func TestAnalyticsParentOverviewAccess(t *testing.T) {
	f := newAnalyticsFixture(t)

	_, err := f.svc.ParentOverview(context.Background(), Actor{ID: f.one.ID, Role: models.RoleStudent}, f.parent.ID)
	require.ErrorIs(t, err, ErrNotPermitted)

	_, err = f.svc.ParentOverview(context.Background(), adminActor(), f.teacher.ID)
	require.ErrorIs(t, err, ErrInvalidReference)
}

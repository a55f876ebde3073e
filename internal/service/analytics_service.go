package service

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/dto"
	"github.com/edunexus/edunexus-go/internal/models"
	"github.com/edunexus/edunexus-go/internal/repository"
)

const recentGradeLimit = 5

// AnalyticsService folds grades, submissions and attendance into the
// aggregate views of the teacher, student and parent surfaces. Every value
// is computed at read time from the stored rows; nothing here is persisted.
type AnalyticsService interface {
	GroupPerformance(ctx context.Context, actor Actor, groupID string) (dto.GroupPerformanceResponse, error)
	StudentOverview(ctx context.Context, actor Actor, studentID string) (dto.StudentOverviewResponse, error)
	ParentOverview(ctx context.Context, actor Actor, parentID string) (dto.ParentOverviewResponse, error)
}

type analyticsService struct {
	accounts    repository.AccountRepository
	subjects    repository.SubjectRepository
	groups      repository.GroupRepository
	lessons     repository.LessonRepository
	submissions repository.SubmissionRepository
	grades      repository.GradeRepository
	logger      zerolog.Logger
}

// NewAnalyticsService constructs the analytics service.
func NewAnalyticsService(accounts repository.AccountRepository, subjects repository.SubjectRepository, groups repository.GroupRepository, lessons repository.LessonRepository, submissions repository.SubmissionRepository, grades repository.GradeRepository, logger zerolog.Logger) AnalyticsService {
	return &analyticsService{
		accounts:    accounts,
		subjects:    subjects,
		groups:      groups,
		lessons:     lessons,
		submissions: submissions,
		grades:      grades,
		logger:      logger.With().Str("component", "analytics_service").Logger(),
	}
}

// GroupPerformance aggregates grades and attendance across one group's
// lessons, overall and per student.
func (s *analyticsService) GroupPerformance(ctx context.Context, actor Actor, groupID string) (dto.GroupPerformanceResponse, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupPerformanceResponse{}, ErrGroupNotFound
		}
		return dto.GroupPerformanceResponse{}, err
	}

	if !actor.IsAdmin {
		if actor.Role != models.RoleTeacher || group.TeacherID == nil || *group.TeacherID != actor.ID {
			return dto.GroupPerformanceResponse{}, ErrNotPermitted
		}
	}

	lessons, err := s.lessons.List(ctx, repository.LessonFilter{GroupID: groupID})
	if err != nil {
		return dto.GroupPerformanceResponse{}, err
	}

	lessonIDs := make([]string, 0, len(lessons))
	for _, lesson := range lessons {
		lessonIDs = append(lessonIDs, lesson.ID)
	}

	students, err := s.accounts.ListByIDs(ctx, group.StudentIDs)
	if err != nil {
		return dto.GroupPerformanceResponse{}, err
	}

	var grades []models.Grade
	if len(lessonIDs) > 0 {
		grades, err = s.grades.List(ctx, repository.GradeFilter{LessonIDs: lessonIDs})
		if err != nil {
			return dto.GroupPerformanceResponse{}, err
		}
	}

	gradesByStudent := make(map[string][]models.Grade, len(students))
	for _, grade := range grades {
		gradesByStudent[grade.StudentID] = append(gradesByStudent[grade.StudentID], grade)
	}

	attendedByStudent := make(map[string]int, len(students))
	for _, lesson := range lessons {
		for _, studentID := range lesson.Attendance {
			attendedByStudent[studentID]++
		}
	}

	response := dto.GroupPerformanceResponse{
		GroupID:      group.ID,
		GroupName:    group.Name,
		StudentCount: len(students),
		LessonCount:  len(lessons),
		Students:     make([]dto.StudentPerformanceSummary, 0, len(students)),
	}

	var scoreTotal, attendedTotal int
	for _, student := range students {
		studentGrades := gradesByStudent[student.ID]
		attended := attendedByStudent[student.ID]
		summary := dto.StudentPerformanceSummary{
			StudentID:       student.ID,
			StudentName:     student.Name,
			GradeCount:      len(studentGrades),
			AverageScore:    averageScore(studentGrades),
			LessonsAttended: attended,
			LessonCount:     len(lessons),
			AttendanceRate:  rate(attended, len(lessons)),
		}
		response.Students = append(response.Students, summary)

		for _, grade := range studentGrades {
			scoreTotal += grade.Score
		}
		attendedTotal += attended
	}

	response.GradeCount = len(grades)
	if len(grades) > 0 {
		response.AverageScore = float64(scoreTotal) / float64(len(grades))
	}
	response.AttendanceRate = rate(attendedTotal, len(lessons)*len(students))

	return response, nil
}

// StudentOverview aggregates one student's grades, per-subject averages and
// hand-in counts across every group they belong to.
func (s *analyticsService) StudentOverview(ctx context.Context, actor Actor, studentID string) (dto.StudentOverviewResponse, error) {
	if !actor.IsAdmin && actor.ID != studentID && actor.Role != models.RoleTeacher && actor.Role != models.RoleParent {
		return dto.StudentOverviewResponse{}, ErrNotPermitted
	}

	student, err := s.accounts.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentOverviewResponse{}, ErrAccountNotFound
		}
		return dto.StudentOverviewResponse{}, err
	}
	if !student.IsStudent() {
		return dto.StudentOverviewResponse{}, ErrInvalidReference
	}

	return s.buildStudentOverview(ctx, student)
}

// ParentOverview aggregates the standing of every child linked to the
// parent account.
func (s *analyticsService) ParentOverview(ctx context.Context, actor Actor, parentID string) (dto.ParentOverviewResponse, error) {
	if !actor.IsAdmin && actor.ID != parentID {
		return dto.ParentOverviewResponse{}, ErrNotPermitted
	}

	parent, err := s.accounts.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ParentOverviewResponse{}, ErrAccountNotFound
		}
		return dto.ParentOverviewResponse{}, err
	}
	if !parent.IsParent() {
		return dto.ParentOverviewResponse{}, ErrInvalidReference
	}

	response := dto.ParentOverviewResponse{
		ParentID: parent.ID,
		Children: make([]dto.ChildOverview, 0, len(parent.ChildrenIDs)),
	}

	children, err := s.accounts.ListByIDs(ctx, parent.ChildrenIDs)
	if err != nil {
		return dto.ParentOverviewResponse{}, err
	}

	for _, child := range children {
		overview, err := s.buildStudentOverview(ctx, child)
		if err != nil {
			return dto.ParentOverviewResponse{}, err
		}
		response.Children = append(response.Children, dto.ChildOverview{
			StudentID:   child.ID,
			StudentName: child.Name,
			Grade:       child.Grade,
			Overview:    overview,
		})
	}

	return response, nil
}

func (s *analyticsService) buildStudentOverview(ctx context.Context, student models.Account) (dto.StudentOverviewResponse, error) {
	groups, err := s.groups.ListContainingStudent(ctx, student.ID)
	if err != nil {
		return dto.StudentOverviewResponse{}, err
	}

	groupIDs := make([]string, 0, len(groups))
	for _, group := range groups {
		groupIDs = append(groupIDs, group.ID)
	}

	var lessons []models.LessonPlan
	if len(groupIDs) > 0 {
		lessons, err = s.lessons.List(ctx, repository.LessonFilter{GroupIDs: groupIDs})
		if err != nil {
			return dto.StudentOverviewResponse{}, err
		}
	}

	grades, err := s.grades.List(ctx, repository.GradeFilter{StudentID: student.ID})
	if err != nil {
		return dto.StudentOverviewResponse{}, err
	}

	submissions, err := s.submissions.ListByStudent(ctx, student.ID)
	if err != nil {
		return dto.StudentOverviewResponse{}, err
	}

	attended := 0
	subjectByLesson := make(map[string]string, len(lessons))
	for _, lesson := range lessons {
		if lesson.IsAttending(student.ID) {
			attended++
		}
		if lesson.SubjectID != nil {
			subjectByLesson[lesson.ID] = *lesson.SubjectID
		}
	}

	response := dto.StudentOverviewResponse{
		Summary: dto.StudentPerformanceSummary{
			StudentID:       student.ID,
			StudentName:     student.Name,
			GradeCount:      len(grades),
			AverageScore:    averageScore(grades),
			LessonsAttended: attended,
			LessonCount:     len(lessons),
			AttendanceRate:  rate(attended, len(lessons)),
		},
		BySubject:    s.foldBySubject(ctx, grades, subjectByLesson),
		RecentGrades: recentGrades(grades),
	}

	for _, submission := range submissions {
		if submission.TestFinished {
			response.FinishedQuizzes++
		}
		if submission.HomeworkArtifact != nil {
			response.HomeworkHandedIn++
		}
	}

	return response, nil
}

// foldBySubject groups a student's grades by the subject of their lesson.
// Grades on lessons without a subject are counted in the summary but not
// in any per-subject bucket.
func (s *analyticsService) foldBySubject(ctx context.Context, grades []models.Grade, subjectByLesson map[string]string) []dto.SubjectAverage {
	type bucket struct {
		count int
		total int
	}
	buckets := make(map[string]*bucket)
	for _, grade := range grades {
		subjectID, ok := subjectByLesson[grade.LessonID]
		if !ok {
			continue
		}
		b := buckets[subjectID]
		if b == nil {
			b = &bucket{}
			buckets[subjectID] = b
		}
		b.count++
		b.total += grade.Score
	}

	averages := make([]dto.SubjectAverage, 0, len(buckets))
	for subjectID, b := range buckets {
		entry := dto.SubjectAverage{
			SubjectID:    subjectID,
			GradeCount:   b.count,
			AverageScore: float64(b.total) / float64(b.count),
		}
		subject, err := s.subjects.GetByID(ctx, subjectID)
		if err == nil {
			entry.SubjectName = subject.Name
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Str("subject_id", subjectID).Msg("failed to resolve subject name")
		}
		averages = append(averages, entry)
	}

	sort.Slice(averages, func(i, j int) bool { return averages[i].SubjectName < averages[j].SubjectName })
	return averages
}

func recentGrades(grades []models.Grade) []dto.GradeResponse {
	sorted := make([]models.Grade, len(grades))
	copy(sorted, grades)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })

	if len(sorted) > recentGradeLimit {
		sorted = sorted[:recentGradeLimit]
	}

	responses := make([]dto.GradeResponse, 0, len(sorted))
	for _, grade := range sorted {
		responses = append(responses, dto.NewGradeResponse(grade))
	}

	return responses
}

func averageScore(grades []models.Grade) float64 {
	if len(grades) == 0 {
		return 0
	}
	total := 0
	for _, grade := range grades {
		total += grade.Score
	}
	return float64(total) / float64(len(grades))
}

func rate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

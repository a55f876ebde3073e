package dto

// GroupPerformanceResponse aggregates grade and attendance statistics for
// one group. Values are folded from grade rows at read time and never
// stored.
type GroupPerformanceResponse struct {
	GroupID        string                      `json:"group_id"`
	GroupName      string                      `json:"group_name"`
	StudentCount   int                         `json:"student_count"`
	LessonCount    int                         `json:"lesson_count"`
	GradeCount     int                         `json:"grade_count"`
	AverageScore   float64                     `json:"average_score"`
	AttendanceRate float64                     `json:"attendance_rate"`
	Students       []StudentPerformanceSummary `json:"students"`
}

// StudentPerformanceSummary aggregates one student's standing inside a
// group or across the whole store.
type StudentPerformanceSummary struct {
	StudentID       string  `json:"student_id"`
	StudentName     string  `json:"student_name"`
	GradeCount      int     `json:"grade_count"`
	AverageScore    float64 `json:"average_score"`
	LessonsAttended int     `json:"lessons_attended"`
	LessonCount     int     `json:"lesson_count"`
	AttendanceRate  float64 `json:"attendance_rate"`
}

// StudentOverviewResponse is the per-student aggregate view used by the
// student surface and, per child, by the parent surface.
type StudentOverviewResponse struct {
	Summary          StudentPerformanceSummary `json:"summary"`
	BySubject        []SubjectAverage          `json:"by_subject"`
	RecentGrades     []GradeResponse           `json:"recent_grades"`
	FinishedQuizzes  int                       `json:"finished_quizzes"`
	HomeworkHandedIn int                       `json:"homework_handed_in"`
}

// SubjectAverage is a per-subject fold over a student's grades.
type SubjectAverage struct {
	SubjectID    string  `json:"subject_id"`
	SubjectName  string  `json:"subject_name"`
	GradeCount   int     `json:"grade_count"`
	AverageScore float64 `json:"average_score"`
}

// ParentOverviewResponse aggregates the standing of every linked child.
type ParentOverviewResponse struct {
	ParentID string          `json:"parent_id"`
	Children []ChildOverview `json:"children"`
}

// ChildOverview pairs a child's identity with its aggregate view.
type ChildOverview struct {
	StudentID   string                  `json:"student_id"`
	StudentName string                  `json:"student_name"`
	Grade       string                  `json:"grade"`
	Overview    StudentOverviewResponse `json:"overview"`
}

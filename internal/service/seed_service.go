package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/models"
	"github.com/edunexus/edunexus-go/internal/repository"
)

// SeedService provisions the built-in administrator account and, on demand,
// a small demo dataset for development environments. Both operations are
// idempotent and safe to run on every startup.
type SeedService interface {
	EnsureAdmin(ctx context.Context, contact, password string) error
	SeedDemo(ctx context.Context) error
}

type seedService struct {
	accounts repository.AccountRepository
	subjects repository.SubjectRepository
	groups   repository.GroupRepository
	lessons  repository.LessonRepository
	grades   repository.GradeRepository
	logger   zerolog.Logger
}

// NewSeedService constructs the seed service.
func NewSeedService(accounts repository.AccountRepository, subjects repository.SubjectRepository, groups repository.GroupRepository, lessons repository.LessonRepository, grades repository.GradeRepository, logger zerolog.Logger) SeedService {
	return &seedService{
		accounts: accounts,
		subjects: subjects,
		groups:   groups,
		lessons:  lessons,
		grades:   grades,
		logger:   logger.With().Str("component", "seed_service").Logger(),
	}
}

// EnsureAdmin creates the administrator account when it does not exist yet.
func (s *seedService) EnsureAdmin(ctx context.Context, contact, password string) error {
	_, err := s.accounts.GetByContact(ctx, contact)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	admin := models.Account{
		Name:       "Administrator",
		Contact:    contact,
		Password:   password,
		Role:       models.RoleAdmin,
		IsApproved: true,
		IsAdmin:    true,
	}
	if err := s.accounts.Create(ctx, &admin); err != nil {
		return err
	}

	s.logger.Info().Str("contact", contact).Msg("administrator account created")
	return nil
}

// SeedDemo loads a small demo dataset. It is a no-op when subjects already
// exist, so restarts do not duplicate rows.
func (s *seedService) SeedDemo(ctx context.Context) error {
	existing, err := s.subjects.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	physics := models.Subject{Name: "Физика", Icon: "⚛️", Color: "bg-indigo-500"}
	math := models.Subject{Name: "Математика", Icon: "📐", Color: "bg-blue-500"}
	history := models.Subject{Name: "История", Icon: "📜", Color: "bg-orange-500"}
	biology := models.Subject{Name: "Биология", Icon: "🌿", Color: "bg-green-500"}
	for _, subject := range []*models.Subject{&physics, &math, &history, &biology} {
		if err := s.subjects.Create(ctx, subject); err != nil {
			return err
		}
	}

	teacher := models.Account{
		Name:       "Иван Петрович",
		Contact:    "teacher@edunexus.dev",
		Password:   "teacher",
		Role:       models.RoleTeacher,
		IsApproved: true,
		Avatar:     "https://picsum.photos/seed/t1/100",
	}
	studentOne := models.Account{
		Name:       "Алексей Иванов",
		Contact:    "aleksey@edunexus.dev",
		Password:   "student",
		Role:       models.RoleStudent,
		IsApproved: true,
		Avatar:     "https://picsum.photos/seed/s1/100",
		Grade:      "8-А",
		Age:        intPtr(14),
	}
	studentTwo := models.Account{
		Name:       "Мария Смирнова",
		Contact:    "maria@edunexus.dev",
		Password:   "student",
		Role:       models.RoleStudent,
		IsApproved: true,
		Avatar:     "https://picsum.photos/seed/s2/100",
		Grade:      "8-А",
		Age:        intPtr(14),
	}
	studentThree := models.Account{
		Name:       "Кирилл Петров",
		Contact:    "kirill@edunexus.dev",
		Password:   "student",
		Role:       models.RoleStudent,
		IsApproved: true,
		Avatar:     "https://picsum.photos/seed/s3/100",
		Grade:      "9-Б",
		Age:        intPtr(15),
	}
	for _, account := range []*models.Account{&teacher, &studentOne, &studentTwo, &studentThree} {
		if err := s.accounts.Create(ctx, account); err != nil {
			return err
		}
	}

	parent := models.Account{
		Name:        "Дмитрий Иванов",
		Contact:     "dmitry@edunexus.dev",
		Password:    "parent",
		Role:        models.RoleParent,
		IsApproved:  true,
		Avatar:      "https://picsum.photos/seed/p1/100",
		ChildrenIDs: datatypes.JSONSlice[string]{studentOne.ID},
	}
	if err := s.accounts.Create(ctx, &parent); err != nil {
		return err
	}

	groupOne := models.Group{
		Name:       "Физики-экспериментаторы",
		Grade:      "8-А",
		AgeRange:   "13-14 лет",
		SubjectID:  &physics.ID,
		TeacherID:  &teacher.ID,
		StudentIDs: datatypes.JSONSlice[string]{studentOne.ID, studentTwo.ID},
	}
	groupTwo := models.Group{
		Name:       "Подготовка к ОГЭ",
		Grade:      "9-Б",
		AgeRange:   "15 лет",
		SubjectID:  &math.ID,
		TeacherID:  &teacher.ID,
		StudentIDs: datatypes.JSONSlice[string]{studentThree.ID},
	}
	for _, group := range []*models.Group{&groupOne, &groupTwo} {
		if err := s.groups.Create(ctx, group); err != nil {
			return err
		}
	}

	lessonOne := models.LessonPlan{
		SubjectID:     &physics.ID,
		GroupID:       groupOne.ID,
		TeacherID:     &teacher.ID,
		Title:         "Законы Ньютона: Инерция",
		Date:          "2024-05-20",
		Description:   "Введение в динамику.",
		HomeworkCheck: "Задача на расчет силы трения.",
		Homework:      "Нарисовать силы, действующие на брусок на наклонной плоскости.",
		VideoURL:      "https://www.youtube.com/embed/dQw4w9WgXcQ",
		MeetingLink:   "https://zoom.us/test",
		Attendance:    datatypes.JSONSlice[string]{studentOne.ID, studentTwo.ID},
		Questions: []models.QuizQuestion{
			{
				Text:         "Второй закон Ньютона формулируется как:",
				Options:      datatypes.JSONSlice[string]{"F = m * a", "E = m * c^2", "F = G * (m1*m2)/r^2", "P = U * I"},
				CorrectIndex: 0,
			},
			{
				Text: "Что происходит с телом, если сумма всех сил, действующих на него, равна нулю?",
				Options: datatypes.JSONSlice[string]{
					"Оно обязательно покоится",
					"Оно движется равноускоренно",
					"Оно сохраняет состояние покоя или равномерного прямолинейного движения",
					"Оно падает вниз",
				},
				CorrectIndex: 2,
			},
		},
	}
	lessonTwo := models.LessonPlan{
		SubjectID:     &physics.ID,
		GroupID:       groupOne.ID,
		TeacherID:     &teacher.ID,
		Title:         "Закон всемирного тяготения",
		Date:          "2024-05-22",
		Description:   "Изучение гравитационного взаимодействия.",
		HomeworkCheck: "Проверка рисунков сил.",
		Homework:      "Решить 3 задачи из учебника.",
		Attendance:    datatypes.JSONSlice[string]{studentOne.ID},
	}
	for _, lesson := range []*models.LessonPlan{&lessonOne, &lessonTwo} {
		if err := s.lessons.Create(ctx, lesson); err != nil {
			return err
		}
	}

	demoGrades := []models.Grade{
		{StudentID: studentOne.ID, LessonID: lessonOne.ID, Type: models.GradeTypeFormative, Score: 95, Date: "2024-05-20", Feedback: "Отлично!"},
		{StudentID: studentOne.ID, LessonID: lessonTwo.ID, Type: models.GradeTypeFormative, Score: 88, Date: "2024-05-22", Feedback: "Хорошо, но есть ошибки в расчетах."},
		{StudentID: studentTwo.ID, LessonID: lessonOne.ID, Type: models.GradeTypeFormative, Score: 90, Date: "2024-05-20"},
	}
	for _, grade := range demoGrades {
		if _, err := s.grades.Upsert(ctx, grade); err != nil {
			return err
		}
	}

	s.logger.Info().Msg("demo dataset seeded")
	return nil
}

func intPtr(v int) *int { return &v }

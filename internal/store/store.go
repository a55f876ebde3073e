package store

import (
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/repository"
	"github.com/edunexus/edunexus-go/internal/service"
)

// Store bundles every service over one database handle. It is the single
// entry point embedding applications use to reach the directory and
// learning-record operations.
type Store struct {
	Auth       service.AuthService
	Accounts   service.AccountService
	Subjects   service.SubjectService
	Groups     service.GroupService
	Lessons    service.LessonService
	Assessment service.AssessmentService
	Analytics  service.AnalyticsService
	Audit      service.AuditService
	Snapshots  service.SnapshotService
	Seed       service.SeedService
}

// New wires repositories and services over db.
func New(db *gorm.DB, validate *validator.Validate, logger zerolog.Logger) *Store {
	accountRepo := repository.NewAccountRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	auditService := service.NewAuditService(auditRepo, logger)

	return &Store{
		Auth:       service.NewAuthService(accountRepo, validate, logger),
		Accounts:   service.NewAccountService(accountRepo, validate, auditService, logger),
		Subjects:   service.NewSubjectService(subjectRepo, validate, auditService, logger),
		Groups:     service.NewGroupService(groupRepo, accountRepo, subjectRepo, validate, auditService, logger),
		Lessons:    service.NewLessonService(lessonRepo, groupRepo, validate, auditService, logger),
		Assessment: service.NewAssessmentService(submissionRepo, gradeRepo, lessonRepo, groupRepo, validate, auditService, logger),
		Analytics:  service.NewAnalyticsService(accountRepo, subjectRepo, groupRepo, lessonRepo, submissionRepo, gradeRepo, logger),
		Audit:      auditService,
		Snapshots:  service.NewSnapshotService(snapshotRepo, auditService, logger),
		Seed:       service.NewSeedService(accountRepo, subjectRepo, groupRepo, lessonRepo, gradeRepo, logger),
	}
}

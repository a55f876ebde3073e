package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/dto"
	"github.com/edunexus/edunexus-go/internal/models"
	"github.com/edunexus/edunexus-go/internal/observability"
	"github.com/edunexus/edunexus-go/internal/repository"
)

// ErrSubjectNotFound indicates the subject id is unknown.
var ErrSubjectNotFound = errors.New("subject not found")

// SubjectService manages the subject catalogue. Writes are an
// administrator capability; every surface may read.
type SubjectService interface {
	List(ctx context.Context) ([]dto.SubjectResponse, error)
	Get(ctx context.Context, id string) (dto.SubjectResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.SubjectCreateRequest) (dto.SubjectResponse, error)
	Update(ctx context.Context, actor Actor, id string, payload dto.SubjectUpdateRequest) (dto.SubjectResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type subjectService struct {
	subjects  repository.SubjectRepository
	validator *validator.Validate
	audit     AuditRecorder
	logger    zerolog.Logger
}

// NewSubjectService constructs the subject service.
func NewSubjectService(subjects repository.SubjectRepository, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) SubjectService {
	return &subjectService{
		subjects:  subjects,
		validator: validate,
		audit:     audit,
		logger:    logger.With().Str("component", "subject_service").Logger(),
	}
}

func (s *subjectService) List(ctx context.Context) ([]dto.SubjectResponse, error) {
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewSubjectResponses(subjects), nil
}

func (s *subjectService) Get(ctx context.Context, id string) (dto.SubjectResponse, error) {
	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubjectResponse{}, ErrSubjectNotFound
		}
		return dto.SubjectResponse{}, err
	}

	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) Create(ctx context.Context, actor Actor, payload dto.SubjectCreateRequest) (dto.SubjectResponse, error) {
	if !actor.IsAdmin {
		return dto.SubjectResponse{}, ErrNotPermitted
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubjectResponse{}, err
	}

	subject := models.Subject{Name: payload.Name, Icon: payload.Icon, Color: payload.Color}
	if err := s.subjects.Create(ctx, &subject); err != nil {
		observability.StoreErrors().WithLabelValues("subject").Inc()
		return dto.SubjectResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("subject", "create").Inc()
	s.recordAudit(ctx, actor, "subject.created", fmt.Sprintf("created subject %s", subject.Name), map[string]interface{}{
		"subject_id": subject.ID,
	})

	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) Update(ctx context.Context, actor Actor, id string, payload dto.SubjectUpdateRequest) (dto.SubjectResponse, error) {
	if !actor.IsAdmin {
		return dto.SubjectResponse{}, ErrNotPermitted
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubjectResponse{}, err
	}

	updates := map[string]interface{}{}
	if payload.Name != nil {
		updates["name"] = *payload.Name
	}
	if payload.Icon != nil {
		updates["icon"] = *payload.Icon
	}
	if payload.Color != nil {
		updates["color"] = *payload.Color
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	subject, err := s.subjects.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubjectResponse{}, ErrSubjectNotFound
		}
		return dto.SubjectResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("subject", "update").Inc()
	return dto.NewSubjectResponse(subject), nil
}

// Delete removes the subject; groups and lessons that referenced it are
// detached, not deleted.
func (s *subjectService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin {
		return ErrNotPermitted
	}

	if err := s.subjects.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubjectNotFound
		}
		observability.StoreErrors().WithLabelValues("subject").Inc()
		return err
	}

	observability.StoreMutations().WithLabelValues("subject", "delete").Inc()
	s.recordAudit(ctx, actor, "subject.deleted", fmt.Sprintf("deleted subject %s", id), map[string]interface{}{
		"subject_id": id,
	})

	return nil
}

func (s *subjectService) recordAudit(ctx context.Context, actor Actor, action, detail string, metadata map[string]interface{}) {
	if s.audit == nil {
		return
	}
	if _, err := s.audit.Record(ctx, AuditEntry{Actor: actor, Action: action, Detail: detail, Metadata: metadata}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record audit entry")
	}
}

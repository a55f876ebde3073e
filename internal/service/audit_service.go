package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edunexus/edunexus-go/internal/dto"
	"github.com/edunexus/edunexus-go/internal/models"
	"github.com/edunexus/edunexus-go/internal/observability"
	"github.com/edunexus/edunexus-go/internal/repository"
)

// AuditService exposes the append-only audit trail: privileged mutations
// are recorded, the administrator reads and may truncate the log.
type AuditService interface {
	AuditRecorder
	List(ctx context.Context, actor Actor, req dto.AuditListRequest) (dto.AuditListResponse, error)
	Clear(ctx context.Context, actor Actor) (int64, error)
}

type auditService struct {
	repo   repository.AuditLogRepository
	logger zerolog.Logger
}

// NewAuditService constructs the audit log service.
func NewAuditService(repo repository.AuditLogRepository, logger zerolog.Logger) AuditService {
	return &auditService{
		repo:   repo,
		logger: logger.With().Str("component", "audit_service").Logger(),
	}
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) (dto.AuditEntryResponse, error) {
	if strings.TrimSpace(entry.Action) == "" {
		return dto.AuditEntryResponse{}, fmt.Errorf("action is required")
	}

	model := models.AuditLog{
		ActorID:   entry.Actor.ID,
		ActorName: entry.Actor.Name,
		Action:    strings.ToLower(strings.TrimSpace(entry.Action)),
		Detail:    entry.Detail,
		Metadata:  entry.Metadata,
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("action", model.Action).Msg("failed to persist audit entry")
		return dto.AuditEntryResponse{}, err
	}

	observability.AuditAppends().WithLabelValues(model.Action).Inc()

	return dto.NewAuditEntryResponse(model), nil
}

func (s *auditService) List(ctx context.Context, actor Actor, req dto.AuditListRequest) (dto.AuditListResponse, error) {
	if !actor.IsAdmin {
		return dto.AuditListResponse{}, ErrNotPermitted
	}

	entries, total, err := s.repo.List(ctx, repository.AuditLogFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		ActorID:  req.ActorID,
		Action:   strings.TrimSpace(req.Action),
	})
	if err != nil {
		return dto.AuditListResponse{}, err
	}

	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewAuditEntryResponse(entry))
	}

	return dto.AuditListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *auditService) Clear(ctx context.Context, actor Actor) (int64, error) {
	if !actor.IsAdmin {
		return 0, ErrNotPermitted
	}

	removed, err := s.repo.Clear(ctx)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("removed", removed).Str("actor_id", actor.ID).Msg("audit log cleared")
	return removed, nil
}

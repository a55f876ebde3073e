package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/dto"
	"github.com/edunexus/edunexus-go/internal/models"
	"github.com/edunexus/edunexus-go/internal/observability"
	"github.com/edunexus/edunexus-go/internal/repository"
)

var (
	// ErrAdminImmutable indicates an attempt to delete, block or demote an
	// administrator account.
	ErrAdminImmutable = errors.New("admin account cannot be modified")
	// ErrRoleNotAssignable indicates the role cannot be granted through the
	// approval workflow.
	ErrRoleNotAssignable = errors.New("role not assignable")
	// ErrInvalidReference indicates a relationship target of the wrong kind
	// or a dangling id.
	ErrInvalidReference = errors.New("invalid entity reference")
)

// AccountService drives the administrator side of the account lifecycle:
// pre-approved creation, the pending → approved → blocked state machine,
// deletion with its integrity cascade, and parent-child links.
type AccountService interface {
	List(ctx context.Context, actor Actor, req dto.AccountListRequest) (dto.AccountListResponse, error)
	Get(ctx context.Context, id string) (dto.AccountResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.CreateAccountRequest) (dto.AccountResponse, error)
	Update(ctx context.Context, actor Actor, id string, payload dto.AccountUpdateRequest) (dto.AccountResponse, error)
	Approve(ctx context.Context, actor Actor, id, role string) (dto.AccountResponse, error)
	Block(ctx context.Context, actor Actor, id string) (dto.AccountResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	LinkChild(ctx context.Context, actor Actor, parentID, studentID string) (dto.AccountResponse, error)
	UnlinkChild(ctx context.Context, actor Actor, parentID, studentID string) (dto.AccountResponse, error)
}

type accountService struct {
	accounts  repository.AccountRepository
	validator *validator.Validate
	audit     AuditRecorder
	logger    zerolog.Logger
}

// NewAccountService constructs the account lifecycle service.
func NewAccountService(accounts repository.AccountRepository, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) AccountService {
	return &accountService{
		accounts:  accounts,
		validator: validate,
		audit:     audit,
		logger:    logger.With().Str("component", "account_service").Logger(),
	}
}

func (s *accountService) List(ctx context.Context, actor Actor, req dto.AccountListRequest) (dto.AccountListResponse, error) {
	if !actor.IsAdmin {
		return dto.AccountListResponse{}, ErrNotPermitted
	}

	accounts, total, err := s.accounts.List(ctx, repository.AccountFilter{
		Search:   strings.TrimSpace(req.Search),
		Role:     req.Role,
		Pending:  req.Pending,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return dto.AccountListResponse{}, err
	}

	return dto.AccountListResponse{
		Items:      dto.NewAccountResponses(accounts),
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *accountService) Get(ctx context.Context, id string) (dto.AccountResponse, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AccountResponse{}, ErrAccountNotFound
		}
		return dto.AccountResponse{}, err
	}

	return dto.NewAccountResponse(account), nil
}

// Create makes a pre-approved account with its role fixed at creation.
func (s *accountService) Create(ctx context.Context, actor Actor, payload dto.CreateAccountRequest) (dto.AccountResponse, error) {
	if !actor.IsAdmin {
		return dto.AccountResponse{}, ErrNotPermitted
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.AccountResponse{}, err
	}

	account := models.Account{
		Name:       strings.TrimSpace(payload.Name),
		Contact:    strings.TrimSpace(payload.Contact),
		Password:   payload.Password,
		Role:       payload.Role,
		IsApproved: true,
		Avatar:     payload.Avatar,
		Grade:      payload.Grade,
		Age:        payload.Age,
	}

	if err := s.accounts.Create(ctx, &account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.AccountResponse{}, ErrContactTaken
		}
		observability.StoreErrors().WithLabelValues("account").Inc()
		return dto.AccountResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("account", "create").Inc()
	s.recordAudit(ctx, actor, "account.created", fmt.Sprintf("created %s account %s", account.Role, account.Name), map[string]interface{}{
		"account_id": account.ID,
		"role":       account.Role,
	})

	return dto.NewAccountResponse(account), nil
}

func (s *accountService) Update(ctx context.Context, actor Actor, id string, payload dto.AccountUpdateRequest) (dto.AccountResponse, error) {
	if !actor.IsAdmin && actor.ID != id {
		return dto.AccountResponse{}, ErrNotPermitted
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.AccountResponse{}, err
	}

	updates := map[string]interface{}{}
	if payload.Name != nil {
		updates["name"] = strings.TrimSpace(*payload.Name)
	}
	if payload.Avatar != nil {
		updates["avatar"] = *payload.Avatar
	}
	if payload.Grade != nil {
		updates["grade"] = *payload.Grade
	}
	if payload.Age != nil {
		updates["age"] = *payload.Age
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	account, err := s.accounts.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AccountResponse{}, ErrAccountNotFound
		}
		return dto.AccountResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("account", "update").Inc()
	return dto.NewAccountResponse(account), nil
}

// Approve transitions a pending or blocked account to approved with the
// chosen role. The admin role is never granted here.
func (s *accountService) Approve(ctx context.Context, actor Actor, id, role string) (dto.AccountResponse, error) {
	tracer := otel.Tracer("github.com/edunexus/edunexus-go/internal/service/account")
	ctx, span := tracer.Start(ctx, "account.approve")
	span.SetAttributes(
		attribute.String("account.id", id),
		attribute.String("account.role", role),
	)
	defer span.End()

	if !actor.IsAdmin {
		span.SetStatus(codes.Error, "not_permitted")
		return dto.AccountResponse{}, ErrNotPermitted
	}
	if !models.AssignableRole(role) {
		span.SetStatus(codes.Error, "role_not_assignable")
		return dto.AccountResponse{}, ErrRoleNotAssignable
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AccountResponse{}, ErrAccountNotFound
		}
		span.RecordError(err)
		return dto.AccountResponse{}, err
	}
	if account.IsAdmin {
		span.SetStatus(codes.Error, "admin_immutable")
		return dto.AccountResponse{}, ErrAdminImmutable
	}

	account, err = s.accounts.Update(ctx, id, map[string]interface{}{
		"role":        role,
		"is_approved": true,
	})
	if err != nil {
		span.RecordError(err)
		return dto.AccountResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("account", "approve").Inc()
	s.recordAudit(ctx, actor, "account.approved", fmt.Sprintf("approved %s as %s", account.Name, role), map[string]interface{}{
		"account_id": account.ID,
		"role":       role,
	})

	return dto.NewAccountResponse(account), nil
}

// Block revokes approval while keeping the assigned role for a later
// re-approval.
func (s *accountService) Block(ctx context.Context, actor Actor, id string) (dto.AccountResponse, error) {
	if !actor.IsAdmin {
		return dto.AccountResponse{}, ErrNotPermitted
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AccountResponse{}, ErrAccountNotFound
		}
		return dto.AccountResponse{}, err
	}
	if account.IsAdmin {
		return dto.AccountResponse{}, ErrAdminImmutable
	}

	account, err = s.accounts.Update(ctx, id, map[string]interface{}{"is_approved": false})
	if err != nil {
		return dto.AccountResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("account", "block").Inc()
	s.recordAudit(ctx, actor, "account.blocked", fmt.Sprintf("blocked %s", account.Name), map[string]interface{}{
		"account_id": account.ID,
	})

	return dto.NewAccountResponse(account), nil
}

// Delete removes the account; the referential-integrity cascade for its
// role runs in the same transaction. Admin accounts are rejected up front.
func (s *accountService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin {
		return ErrNotPermitted
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if account.IsAdmin {
		return ErrAdminImmutable
	}

	if err := s.accounts.Delete(ctx, id); err != nil {
		observability.StoreErrors().WithLabelValues("account").Inc()
		return err
	}

	observability.StoreMutations().WithLabelValues("account", "delete").Inc()
	s.recordAudit(ctx, actor, "account.deleted", fmt.Sprintf("deleted %s account %s", account.Role, account.Name), map[string]interface{}{
		"account_id": account.ID,
		"role":       account.Role,
	})

	return nil
}

// LinkChild attaches a student to a parent account. Linking twice is a
// no-op; linking anything but a student fails.
func (s *accountService) LinkChild(ctx context.Context, actor Actor, parentID, studentID string) (dto.AccountResponse, error) {
	if !actor.IsAdmin && actor.ID != parentID {
		return dto.AccountResponse{}, ErrNotPermitted
	}

	parent, err := s.accounts.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AccountResponse{}, ErrAccountNotFound
		}
		return dto.AccountResponse{}, err
	}
	if !parent.IsParent() {
		return dto.AccountResponse{}, ErrInvalidReference
	}

	child, err := s.accounts.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AccountResponse{}, ErrInvalidReference
		}
		return dto.AccountResponse{}, err
	}
	if !child.IsStudent() {
		return dto.AccountResponse{}, ErrInvalidReference
	}

	parent, err = s.accounts.LinkChild(ctx, parentID, studentID)
	if err != nil {
		return dto.AccountResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("account", "link_child").Inc()
	return dto.NewAccountResponse(parent), nil
}

func (s *accountService) UnlinkChild(ctx context.Context, actor Actor, parentID, studentID string) (dto.AccountResponse, error) {
	if !actor.IsAdmin && actor.ID != parentID {
		return dto.AccountResponse{}, ErrNotPermitted
	}

	parent, err := s.accounts.UnlinkChild(ctx, parentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AccountResponse{}, ErrAccountNotFound
		}
		return dto.AccountResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("account", "unlink_child").Inc()
	return dto.NewAccountResponse(parent), nil
}

func (s *accountService) recordAudit(ctx context.Context, actor Actor, action, detail string, metadata map[string]interface{}) {
	if s.audit == nil {
		return
	}
	if _, err := s.audit.Record(ctx, AuditEntry{Actor: actor, Action: action, Detail: detail, Metadata: metadata}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record audit entry")
	}
}

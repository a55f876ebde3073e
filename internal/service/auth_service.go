package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/dto"
	"github.com/edunexus/edunexus-go/internal/models"
	"github.com/edunexus/edunexus-go/internal/repository"
)

var (
	// ErrAccountNotFound indicates the account id or contact is unknown.
	ErrAccountNotFound = errors.New("account not found")
	// ErrContactTaken indicates the contact handle is already registered.
	ErrContactTaken = errors.New("contact already registered")
	// ErrBadCredentials indicates the password did not match.
	ErrBadCredentials = errors.New("invalid credentials")
	// ErrPendingApproval indicates a valid credential on an account the
	// administrator has not approved (or has blocked).
	ErrPendingApproval = errors.New("account awaiting approval")
)

// AuthService drives self-registration and credential checks. A login on an
// unapproved account fails distinguishably from a wrong password.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.AccountResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.AccountResponse, error)
}

type authService struct {
	accounts  repository.AccountRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthService constructs the authentication service.
func NewAuthService(accounts repository.AccountRepository, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		accounts:  accounts,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

// Register creates an unapproved account with no role. The administrator
// assigns the role during approval.
func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.AccountResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AccountResponse{}, err
	}

	account := models.Account{
		Name:       strings.TrimSpace(payload.Name),
		Contact:    strings.TrimSpace(payload.Contact),
		Password:   payload.Password,
		Role:       models.RoleUnassigned,
		IsApproved: false,
	}

	if err := s.accounts.Create(ctx, &account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.AccountResponse{}, ErrContactTaken
		}
		return dto.AccountResponse{}, err
	}

	s.logger.Info().Str("account_id", account.ID).Str("contact", account.Contact).Msg("account registered")
	return dto.NewAccountResponse(account), nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.AccountResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AccountResponse{}, err
	}

	account, err := s.accounts.GetByContact(ctx, strings.TrimSpace(payload.Contact))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AccountResponse{}, ErrAccountNotFound
		}
		return dto.AccountResponse{}, err
	}

	if account.Password != payload.Password {
		return dto.AccountResponse{}, ErrBadCredentials
	}

	if !account.IsApproved {
		return dto.AccountResponse{}, ErrPendingApproval
	}

	return dto.NewAccountResponse(account), nil
}

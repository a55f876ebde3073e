package dto

import (
	"time"

	"github.com/edunexus/edunexus-go/internal/models"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationMeta derives pagination metadata from a counted listing.
func NewPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	if page <= 0 {
		page = 1
	}
	meta := PaginationMeta{Page: page, PageSize: pageSize, TotalItems: total}
	if pageSize > 0 {
		meta.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return meta
}

// RegisterRequest captures a self-registration payload.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Contact  string `json:"contact" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=1"`
}

// LoginRequest captures a credential check payload.
type LoginRequest struct {
	Contact  string `json:"contact" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateAccountRequest captures an administrator-created, pre-approved
// account.
type CreateAccountRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Contact  string `json:"contact" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=1"`
	Role     string `json:"role" validate:"required,oneof=student teacher parent"`
	Grade    string `json:"grade" validate:"omitempty,max=32"`
	Avatar   string `json:"avatar"`
	Age      *int   `json:"age" validate:"omitempty,gt=0"`
}

// AccountUpdateRequest captures partial account edits from the admin
// surface.
type AccountUpdateRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1"`
	Avatar *string `json:"avatar"`
	Grade  *string `json:"grade" validate:"omitempty,max=32"`
	Age    *int    `json:"age" validate:"omitempty,gt=0"`
}

// AccountListRequest defines filters for listing accounts.
type AccountListRequest struct {
	Page     int
	PageSize int
	Search   string
	Role     string
	Pending  *bool
}

// AccountResponse serializes an account. The credential secret never
// leaves the store.
type AccountResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Contact     string    `json:"contact"`
	Role        string    `json:"role"`
	IsApproved  bool      `json:"is_approved"`
	IsAdmin     bool      `json:"is_admin"`
	Avatar      string    `json:"avatar"`
	Grade       string    `json:"grade,omitempty"`
	Age         *int      `json:"age,omitempty"`
	ChildrenIDs []string  `json:"children_ids,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AccountListResponse wraps a paginated account listing.
type AccountListResponse struct {
	Items      []AccountResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewAccountResponse converts an account model into a DTO.
func NewAccountResponse(account models.Account) AccountResponse {
	return AccountResponse{
		ID:          account.ID,
		Name:        account.Name,
		Contact:     account.Contact,
		Role:        account.Role,
		IsApproved:  account.IsApproved,
		IsAdmin:     account.IsAdmin,
		Avatar:      account.Avatar,
		Grade:       account.Grade,
		Age:         account.Age,
		ChildrenIDs: account.ChildrenIDs,
		CreatedAt:   account.CreatedAt,
		UpdatedAt:   account.UpdatedAt,
	}
}

// NewAccountResponses converts a slice of account models.
func NewAccountResponses(accounts []models.Account) []AccountResponse {
	responses := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		responses = append(responses, NewAccountResponse(account))
	}
	return responses
}

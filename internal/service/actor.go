package service

import (
	"context"
	"errors"

	"github.com/edunexus/edunexus-go/internal/dto"
)

// Actor identifies the account performing a store operation. Surfaces build
// it from the logged-in account and pass it with every privileged call.
type Actor struct {
	ID      string
	Name    string
	Role    string
	IsAdmin bool
}

// ErrNotPermitted indicates the actor lacks the capability for an operation.
var ErrNotPermitted = errors.New("operation not permitted for actor")

// AuditEntry captures the details required to persist an audit record.
type AuditEntry struct {
	Actor    Actor
	Action   string
	Detail   string
	Metadata map[string]interface{}
}

// AuditRecorder defines behaviour for recording audit log entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) (dto.AuditEntryResponse, error)
}

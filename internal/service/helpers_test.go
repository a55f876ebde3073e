package service

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/dto"
	"github.com/edunexus/edunexus-go/internal/models"
	"github.com/edunexus/edunexus-go/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func adminActor() Actor {
	return Actor{ID: "admin-1", Name: "Administrator", Role: models.RoleAdmin, IsAdmin: true}
}

// recordingAudit captures audit entries without persisting them.
type recordingAudit struct {
	entries []AuditEntry
}

func (r *recordingAudit) Record(ctx context.Context, entry AuditEntry) (dto.AuditEntryResponse, error) {
	r.entries = append(r.entries, entry)
	return dto.AuditEntryResponse{Action: entry.Action, Detail: entry.Detail}, nil
}

// fakeAccountRepo is an in-memory AccountRepository sufficient for service
// tests.
type fakeAccountRepo struct {
	accounts map[string]models.Account
}

func newFakeAccountRepo(seed ...models.Account) *fakeAccountRepo {
	repo := &fakeAccountRepo{accounts: map[string]models.Account{}}
	for _, account := range seed {
		if account.ID == "" {
			account.ID = uuid.NewString()
		}
		repo.accounts[account.ID] = account
	}
	return repo
}

func (f *fakeAccountRepo) Create(ctx context.Context, account *models.Account) error {
	for _, existing := range f.accounts {
		if existing.Contact == account.Contact {
			return gorm.ErrDuplicatedKey
		}
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	f.accounts[account.ID] = *account
	return nil
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id string) (models.Account, error) {
	account, ok := f.accounts[id]
	if !ok {
		return models.Account{}, gorm.ErrRecordNotFound
	}
	return account, nil
}

func (f *fakeAccountRepo) GetByContact(ctx context.Context, contact string) (models.Account, error) {
	for _, account := range f.accounts {
		if account.Contact == contact {
			return account, nil
		}
	}
	return models.Account{}, gorm.ErrRecordNotFound
}

func (f *fakeAccountRepo) List(ctx context.Context, filter repository.AccountFilter) ([]models.Account, int64, error) {
	var matched []models.Account
	for _, account := range f.accounts {
		if filter.Role != "" && account.Role != filter.Role {
			continue
		}
		if filter.Pending != nil && account.IsApproved == *filter.Pending {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(account.Name), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, account)
	}
	return matched, int64(len(matched)), nil
}

func (f *fakeAccountRepo) ListByIDs(ctx context.Context, ids []string) ([]models.Account, error) {
	var matched []models.Account
	for _, id := range ids {
		if account, ok := f.accounts[id]; ok {
			matched = append(matched, account)
		}
	}
	return matched, nil
}

func (f *fakeAccountRepo) Update(ctx context.Context, id string, updates map[string]interface{}) (models.Account, error) {
	account, ok := f.accounts[id]
	if !ok {
		return models.Account{}, gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "name":
			account.Name = value.(string)
		case "role":
			account.Role = value.(string)
		case "is_approved":
			account.IsApproved = value.(bool)
		case "avatar":
			account.Avatar = value.(string)
		case "grade":
			account.Grade = value.(string)
		case "age":
			age := value.(int)
			account.Age = &age
		}
	}
	f.accounts[id] = account
	return account, nil
}

func (f *fakeAccountRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.accounts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.accounts, id)
	return nil
}

func (f *fakeAccountRepo) LinkChild(ctx context.Context, parentID, studentID string) (models.Account, error) {
	parent, ok := f.accounts[parentID]
	if !ok {
		return models.Account{}, gorm.ErrRecordNotFound
	}
	for _, id := range parent.ChildrenIDs {
		if id == studentID {
			return parent, nil
		}
	}
	parent.ChildrenIDs = append(parent.ChildrenIDs, studentID)
	f.accounts[parentID] = parent
	return parent, nil
}

func (f *fakeAccountRepo) UnlinkChild(ctx context.Context, parentID, studentID string) (models.Account, error) {
	parent, ok := f.accounts[parentID]
	if !ok {
		return models.Account{}, gorm.ErrRecordNotFound
	}
	kept := parent.ChildrenIDs[:0]
	for _, id := range parent.ChildrenIDs {
		if id != studentID {
			kept = append(kept, id)
		}
	}
	parent.ChildrenIDs = kept
	f.accounts[parentID] = parent
	return parent, nil
}

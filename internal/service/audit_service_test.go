package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edunexus/edunexus-go/internal/dto"
	"github.com/edunexus/edunexus-go/internal/models"
	"github.com/edunexus/edunexus-go/internal/repository"
)

func newAuditFixture(t *testing.T) AuditService {
	t.Helper()
	db := setupServiceDB(t)
	return NewAuditService(repository.NewAuditLogRepository(db), testLogger())
}

func TestAuditServiceRecordNormalizesAction(t *testing.T) {
	svc := newAuditFixture(t)

	entry, err := svc.Record(context.Background(), AuditEntry{
		Actor:  adminActor(),
		Action: "  Account.Approved ",
		Detail: "approved Bob",
		Metadata: map[string]interface{}{
			"account_id": "b1",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "account.approved", entry.Action)

	_, err = svc.Record(context.Background(), AuditEntry{Actor: adminActor(), Action: "   "})
	require.Error(t, err)
}

func TestAuditServiceListAndClearAreAdminOnly(t *testing.T) {
	svc := newAuditFixture(t)

	_, err := svc.Record(context.Background(), AuditEntry{Actor: adminActor(), Action: "group.created", Detail: "created 8-A"})
	require.NoError(t, err)

	teacher := Actor{ID: "t1", Role: models.RoleTeacher}
	_, err = svc.List(context.Background(), teacher, dto.AuditListRequest{})
	require.ErrorIs(t, err, ErrNotPermitted)
	_, err = svc.Clear(context.Background(), teacher)
	require.ErrorIs(t, err, ErrNotPermitted)

	listing, err := svc.List(context.Background(), adminActor(), dto.AuditListRequest{})
	require.NoError(t, err)
	require.Len(t, listing.Items, 1)
	require.Equal(t, "group.created", listing.Items[0].Action)

	removed, err := svc.Clear(context.Background(), adminActor())
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	listing, err = svc.List(context.Background(), adminActor(), dto.AuditListRequest{})
	require.NoError(t, err)
	require.Empty(t, listing.Items)
}

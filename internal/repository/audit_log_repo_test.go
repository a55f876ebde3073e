package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/edunexus/edunexus-go/internal/models"
)

func TestAuditLogRepositoryListFiltersAndOrders(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuditLogRepository(db)

	now := time.Now()
	older := models.AuditLog{ActorID: "a1", ActorName: "Admin", Action: "account.approved", Detail: "approved Bob", CreatedAt: now.Add(-time.Hour)}
	newer := models.AuditLog{ActorID: "a1", ActorName: "Admin", Action: "group.created", Detail: "created 8-A", CreatedAt: now, Metadata: datatypes.JSONMap{"group_id": "g1"}}
	other := models.AuditLog{ActorID: "t1", ActorName: "Teacher", Action: "grade.recorded", Detail: "graded", CreatedAt: now.Add(-time.Minute)}
	for _, entry := range []*models.AuditLog{&older, &newer, &other} {
		require.NoError(t, repo.Create(context.Background(), entry))
	}

	entries, total, err := repo.List(context.Background(), AuditLogFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Equal(t, "group.created", entries[0].Action, "newest entry first")

	byActor, total, err := repo.List(context.Background(), AuditLogFilter{ActorID: "t1"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "grade.recorded", byActor[0].Action)

	byAction, total, err := repo.List(context.Background(), AuditLogFilter{Action: "account.approved"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "approved Bob", byAction[0].Detail)

	paged, total, err := repo.List(context.Background(), AuditLogFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, paged, 1)
}

func TestAuditLogRepositoryClear(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuditLogRepository(db)

	for _, action := range []string{"account.created", "account.blocked"} {
		require.NoError(t, repo.Create(context.Background(), &models.AuditLog{ActorID: "a1", Action: action}))
	}

	removed, err := repo.Clear(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)

	_, total, err := repo.List(context.Background(), AuditLogFilter{})
	require.NoError(t, err)
	require.Zero(t, total)
}

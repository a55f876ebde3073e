package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/edunexus/edunexus-go/internal/dto"
	"github.com/edunexus/edunexus-go/internal/models"
	"github.com/edunexus/edunexus-go/internal/repository"
)

func newSnapshotFixture(t *testing.T) (repository.AccountRepository, SnapshotService) {
	t.Helper()
	db := setupServiceDB(t)
	accounts := repository.NewAccountRepository(db)
	svc := NewSnapshotService(repository.NewSnapshotRepository(db), &recordingAudit{}, testLogger())
	return accounts, svc
}

func TestSnapshotServiceExportRestoreRoundtrip(t *testing.T) {
	accounts, svc := newSnapshotFixture(t)

	account := models.Account{Name: "Alice", Contact: "alice@example.com", Password: "x", Role: models.RoleStudent, IsApproved: true}
	require.NoError(t, accounts.Create(context.Background(), &account))

	snapshot, err := svc.Export(context.Background(), adminActor())
	require.NoError(t, err)
	require.Equal(t, dto.SnapshotVersion, snapshot.Version)
	require.Contains(t, snapshot.Accounts, account.ID)

	raw, err := json.Marshal(snapshot)
	require.NoError(t, err)

	// Mutate after the export, then restore the old state.
	require.NoError(t, accounts.Create(context.Background(), &models.Account{Name: "Late", Contact: "late@example.com", Password: "x"}))

	require.NoError(t, svc.Restore(context.Background(), adminActor(), raw))

	restored, err := svc.Export(context.Background(), adminActor())
	require.NoError(t, err)
	require.Len(t, restored.Accounts, 1)
	require.Contains(t, restored.Accounts, account.ID)
}

func TestSnapshotServiceRestoreRejectsInvalidDocuments(t *testing.T) {
	_, svc := newSnapshotFixture(t)

	err := svc.Restore(context.Background(), adminActor(), []byte("not json"))
	require.ErrorIs(t, err, ErrSnapshotInvalid)

	err = svc.Restore(context.Background(), adminActor(), []byte(`{"version": 99}`))
	require.ErrorIs(t, err, ErrSnapshotInvalid)

	// Structurally valid JSON that fails the schema: account without a contact.
	bad := `{"version":1,"accounts":{"a1":{"id":"a1","name":"x"}},"subjects":{},"groups":{},"lessons":{},"submissions":{},"grades":{},"audit_log":[]}`
	err = svc.Restore(context.Background(), adminActor(), []byte(bad))
	require.ErrorIs(t, err, ErrSnapshotInvalid)
}

func TestSnapshotServiceRestoreRejectsKeyMismatch(t *testing.T) {
	_, svc := newSnapshotFixture(t)

	snapshot := dto.Snapshot{
		Version: dto.SnapshotVersion,
		Accounts: map[string]models.Account{
			"a1": {ID: "different", Name: "Alice", Contact: "alice@example.com", Password: "x"},
		},
		Subjects:    map[string]models.Subject{},
		Groups:      map[string]models.Group{},
		Lessons:     map[string]models.LessonPlan{},
		Submissions: map[string]models.Submission{},
		Grades:      map[string]models.Grade{},
	}
	raw, err := json.Marshal(snapshot)
	require.NoError(t, err)

	err = svc.Restore(context.Background(), adminActor(), raw)
	require.ErrorIs(t, err, ErrSnapshotKeyMismatch)
}

func TestSnapshotServiceRequiresAdmin(t *testing.T) {
	_, svc := newSnapshotFixture(t)

	_, err := svc.Export(context.Background(), studentActor())
	require.ErrorIs(t, err, ErrNotPermitted)

	err = svc.Restore(context.Background(), teacherActor(), []byte(`{}`))
	require.ErrorIs(t, err, ErrNotPermitted)
}

func TestSnapshotServiceRoundtripKeepsComposites(t *testing.T) {
	_, svc := newSnapshotFixture(t)

	submission := models.Submission{ID: "sub-1", StudentID: "s1", LessonID: "l1", TestFinished: true}
	grade := models.Grade{ID: "gr-1", StudentID: "s1", LessonID: "l1", Type: models.GradeTypeTest, Score: 95, Date: "2024-05-20"}
	snapshot := dto.Snapshot{
		Version:  dto.SnapshotVersion,
		Accounts: map[string]models.Account{},
		Subjects: map[string]models.Subject{},
		Groups: map[string]models.Group{
			"g1": {ID: "g1", Name: "8-A", StudentIDs: datatypes.JSONSlice[string]{"s1"}},
		},
		Lessons: map[string]models.LessonPlan{
			"l1": {ID: "l1", GroupID: "g1", Title: "Dynamics"},
		},
		Submissions: map[string]models.Submission{
			dto.SubmissionKey("s1", "l1"): submission,
		},
		Grades: map[string]models.Grade{
			dto.GradeKey("s1", "l1", models.GradeTypeTest): grade,
		},
	}
	raw, err := json.Marshal(snapshot)
	require.NoError(t, err)

	require.NoError(t, svc.Restore(context.Background(), adminActor(), raw))

	restored, err := svc.Export(context.Background(), adminActor())
	require.NoError(t, err)
	require.Contains(t, restored.Submissions, "s1/l1")
	require.Contains(t, restored.Grades, "s1/l1/test")
	require.Equal(t, 95, restored.Grades["s1/l1/test"].Score)
}

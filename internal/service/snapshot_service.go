package service

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/edunexus/edunexus-go/internal/dto"
	"github.com/edunexus/edunexus-go/internal/models"
	"github.com/edunexus/edunexus-go/internal/repository"
)

//go:embed snapshot_schema.json
var snapshotSchemaSource string

var snapshotSchema = jsonschema.MustCompileString("snapshot_schema.json", snapshotSchemaSource)

var (
	// ErrSnapshotInvalid indicates a restore document that fails schema
	// validation or carries an unsupported version.
	ErrSnapshotInvalid = errors.New("invalid snapshot document")
	// ErrSnapshotKeyMismatch indicates a composite snapshot key that does
	// not match the ids inside its entry.
	ErrSnapshotKeyMismatch = errors.New("snapshot key does not match entry")
)

// SnapshotService exports the whole store as a portable document and
// restores it from one. Both operations are restricted to the
// administrator.
type SnapshotService interface {
	Export(ctx context.Context, actor Actor) (dto.Snapshot, error)
	Restore(ctx context.Context, actor Actor, raw []byte) error
}

type snapshotService struct {
	snapshots repository.SnapshotRepository
	audit     AuditRecorder
	logger    zerolog.Logger
}

// NewSnapshotService constructs the snapshot service.
func NewSnapshotService(snapshots repository.SnapshotRepository, audit AuditRecorder, logger zerolog.Logger) SnapshotService {
	return &snapshotService{
		snapshots: snapshots,
		audit:     audit,
		logger:    logger.With().Str("component", "snapshot_service").Logger(),
	}
}

func (s *snapshotService) Export(ctx context.Context, actor Actor) (dto.Snapshot, error) {
	if !actor.IsAdmin {
		return dto.Snapshot{}, ErrNotPermitted
	}

	state, err := s.snapshots.Export(ctx)
	if err != nil {
		return dto.Snapshot{}, err
	}

	snapshot := dto.Snapshot{
		Version:     dto.SnapshotVersion,
		Accounts:    make(map[string]models.Account, len(state.Accounts)),
		Subjects:    make(map[string]models.Subject, len(state.Subjects)),
		Groups:      make(map[string]models.Group, len(state.Groups)),
		Lessons:     make(map[string]models.LessonPlan, len(state.Lessons)),
		Submissions: make(map[string]models.Submission, len(state.Submissions)),
		Grades:      make(map[string]models.Grade, len(state.Grades)),
		AuditLog:    state.AuditLog,
	}
	for _, account := range state.Accounts {
		snapshot.Accounts[account.ID] = account
	}
	for _, subject := range state.Subjects {
		snapshot.Subjects[subject.ID] = subject
	}
	for _, group := range state.Groups {
		snapshot.Groups[group.ID] = group
	}
	for _, lesson := range state.Lessons {
		snapshot.Lessons[lesson.ID] = lesson
	}
	for _, submission := range state.Submissions {
		snapshot.Submissions[dto.SubmissionKey(submission.StudentID, submission.LessonID)] = submission
	}
	for _, grade := range state.Grades {
		snapshot.Grades[dto.GradeKey(grade.StudentID, grade.LessonID, grade.Type)] = grade
	}

	return snapshot, nil
}

// Restore validates the raw document against the snapshot schema and
// replaces every collection with its contents in one transaction.
func (s *snapshotService) Restore(ctx context.Context, actor Actor, raw []byte) error {
	if !actor.IsAdmin {
		return ErrNotPermitted
	}

	var document interface{}
	if err := json.Unmarshal(raw, &document); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	if err := snapshotSchema.Validate(document); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}

	var snapshot dto.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	if snapshot.Version != dto.SnapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrSnapshotInvalid, snapshot.Version)
	}

	state, err := snapshotToState(snapshot)
	if err != nil {
		return err
	}

	if err := s.snapshots.Restore(ctx, state); err != nil {
		return err
	}

	s.logger.Info().
		Int("accounts", len(state.Accounts)).
		Int("lessons", len(state.Lessons)).
		Msg("store restored from snapshot")
	s.recordAudit(ctx, actor, "snapshot.restored", "restored store from snapshot", map[string]interface{}{
		"accounts": len(state.Accounts),
		"subjects": len(state.Subjects),
		"groups":   len(state.Groups),
		"lessons":  len(state.Lessons),
	})

	return nil
}

// snapshotToState flattens the keyed collections into insertion-ready
// slices, ordered by key so restores are deterministic.
func snapshotToState(snapshot dto.Snapshot) (repository.StoreState, error) {
	state := repository.StoreState{AuditLog: snapshot.AuditLog}

	for _, id := range sortedKeys(snapshot.Accounts) {
		account := snapshot.Accounts[id]
		if account.ID == "" {
			account.ID = id
		}
		if account.ID != id {
			return repository.StoreState{}, fmt.Errorf("%w: account %q", ErrSnapshotKeyMismatch, id)
		}
		state.Accounts = append(state.Accounts, account)
	}
	for _, id := range sortedKeys(snapshot.Subjects) {
		subject := snapshot.Subjects[id]
		if subject.ID == "" {
			subject.ID = id
		}
		if subject.ID != id {
			return repository.StoreState{}, fmt.Errorf("%w: subject %q", ErrSnapshotKeyMismatch, id)
		}
		state.Subjects = append(state.Subjects, subject)
	}
	for _, id := range sortedKeys(snapshot.Groups) {
		group := snapshot.Groups[id]
		if group.ID == "" {
			group.ID = id
		}
		if group.ID != id {
			return repository.StoreState{}, fmt.Errorf("%w: group %q", ErrSnapshotKeyMismatch, id)
		}
		state.Groups = append(state.Groups, group)
	}
	for _, id := range sortedKeys(snapshot.Lessons) {
		lesson := snapshot.Lessons[id]
		if lesson.ID == "" {
			lesson.ID = id
		}
		if lesson.ID != id {
			return repository.StoreState{}, fmt.Errorf("%w: lesson %q", ErrSnapshotKeyMismatch, id)
		}
		state.Lessons = append(state.Lessons, lesson)
	}
	for _, key := range sortedKeys(snapshot.Submissions) {
		submission := snapshot.Submissions[key]
		if dto.SubmissionKey(submission.StudentID, submission.LessonID) != key {
			return repository.StoreState{}, fmt.Errorf("%w: submission %q", ErrSnapshotKeyMismatch, key)
		}
		state.Submissions = append(state.Submissions, submission)
	}
	for _, key := range sortedKeys(snapshot.Grades) {
		grade := snapshot.Grades[key]
		if dto.GradeKey(grade.StudentID, grade.LessonID, grade.Type) != key {
			return repository.StoreState{}, fmt.Errorf("%w: grade %q", ErrSnapshotKeyMismatch, key)
		}
		state.Grades = append(state.Grades, grade)
	}

	return state, nil
}

func sortedKeys[V any](collection map[string]V) []string {
	keys := make([]string, 0, len(collection))
	for key := range collection {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *snapshotService) recordAudit(ctx context.Context, actor Actor, action, detail string, metadata map[string]interface{}) {
	if s.audit == nil {
		return
	}
	if _, err := s.audit.Record(ctx, AuditEntry{Actor: actor, Action: action, Detail: detail, Metadata: metadata}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record audit entry")
	}
}

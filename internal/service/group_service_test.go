package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/dto"
	"github.com/edunexus/edunexus-go/internal/models"
	"github.com/edunexus/edunexus-go/internal/repository"
)

func (f *fakeGroupRepo) ToggleStudent(ctx context.Context, groupID, studentID string) (models.Group, error) {
	group, ok := f.groups[groupID]
	if !ok {
		return models.Group{}, gorm.ErrRecordNotFound
	}
	if group.HasStudent(studentID) {
		kept := group.StudentIDs[:0]
		for _, id := range group.StudentIDs {
			if id != studentID {
				kept = append(kept, id)
			}
		}
		group.StudentIDs = kept
	} else {
		group.StudentIDs = append(group.StudentIDs, studentID)
	}
	f.groups[groupID] = group
	return group, nil
}

func (f *fakeGroupRepo) Create(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	f.groups[group.ID] = *group
	return nil
}

func (f *fakeGroupRepo) AssignTeacher(ctx context.Context, groupID, teacherID string) (models.Group, error) {
	group, ok := f.groups[groupID]
	if !ok {
		return models.Group{}, gorm.ErrRecordNotFound
	}
	if group.TeacherID != nil && *group.TeacherID == teacherID {
		group.TeacherID = nil
	} else {
		group.TeacherID = &teacherID
	}
	f.groups[groupID] = group
	return group, nil
}

type fakeSubjectRepo struct {
	repository.SubjectRepository
	subjects map[string]models.Subject
}

func (f *fakeSubjectRepo) GetByID(ctx context.Context, id string) (models.Subject, error) {
	subject, ok := f.subjects[id]
	if !ok {
		return models.Subject{}, gorm.ErrRecordNotFound
	}
	return subject, nil
}

func newGroupFixture() (*fakeGroupRepo, *fakeAccountRepo, GroupService) {
	groups := &fakeGroupRepo{groups: map[string]models.Group{
		"g1": {ID: "g1", Name: "8-A", StudentIDs: datatypes.JSONSlice[string]{}},
	}}
	accounts := newFakeAccountRepo(
		models.Account{ID: "s1", Name: "Student", Contact: "s@example.com", Password: "x", Role: models.RoleStudent, IsApproved: true},
		models.Account{ID: "t1", Name: "Teacher", Contact: "t@example.com", Password: "x", Role: models.RoleTeacher, IsApproved: true},
		models.Account{ID: "p1", Name: "Parent", Contact: "p@example.com", Password: "x", Role: models.RoleParent, IsApproved: true},
	)
	subjects := &fakeSubjectRepo{subjects: map[string]models.Subject{"sub1": {ID: "sub1", Name: "Physics"}}}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewGroupService(groups, accounts, subjects, validate, &recordingAudit{}, testLogger())
	return groups, accounts, svc
}

func TestGroupServiceToggleStudentMembership(t *testing.T) {
	groups, _, svc := newGroupFixture()

	toggled, err := svc.ToggleStudent(context.Background(), adminActor(), "g1", "s1")
	require.NoError(t, err)
	require.Contains(t, toggled.StudentIDs, "s1")

	toggled, err = svc.ToggleStudent(context.Background(), adminActor(), "g1", "s1")
	require.NoError(t, err)
	require.NotContains(t, toggled.StudentIDs, "s1")
	require.False(t, groups.groups["g1"].HasStudent("s1"))
}

func TestGroupServiceToggleStudentRejectsNonStudents(t *testing.T) {
	_, _, svc := newGroupFixture()

	_, err := svc.ToggleStudent(context.Background(), adminActor(), "g1", "t1")
	require.ErrorIs(t, err, ErrInvalidReference)

	_, err = svc.ToggleStudent(context.Background(), adminActor(), "g1", "missing")
	require.ErrorIs(t, err, ErrInvalidReference)

	teacher := Actor{ID: "t1", Role: models.RoleTeacher}
	_, err = svc.ToggleStudent(context.Background(), teacher, "g1", "s1")
	require.ErrorIs(t, err, ErrNotPermitted)
}

func TestGroupServiceAssignTeacherToggle(t *testing.T) {
	groups, _, svc := newGroupFixture()

	assigned, err := svc.AssignTeacher(context.Background(), adminActor(), "g1", "t1")
	require.NoError(t, err)
	require.NotNil(t, assigned.TeacherID)
	require.Equal(t, "t1", *assigned.TeacherID)

	vacated, err := svc.AssignTeacher(context.Background(), adminActor(), "g1", "t1")
	require.NoError(t, err)
	require.Nil(t, vacated.TeacherID)
	require.Nil(t, groups.groups["g1"].TeacherID)

	_, err = svc.AssignTeacher(context.Background(), adminActor(), "g1", "p1")
	require.ErrorIs(t, err, ErrInvalidReference)
}

func TestGroupServiceCreateValidatesReferences(t *testing.T) {
	_, _, svc := newGroupFixture()

	created, err := svc.Create(context.Background(), adminActor(), dto.GroupCreateRequest{
		Name: "Experimenters", Grade: "8-А", SubjectID: "sub1", TeacherID: "t1",
	})
	require.NoError(t, err)
	require.Equal(t, "Experimenters", created.Name)
	require.NotNil(t, created.SubjectID)

	_, err = svc.Create(context.Background(), adminActor(), dto.GroupCreateRequest{
		Name: "Broken", SubjectID: "missing",
	})
	require.ErrorIs(t, err, ErrInvalidReference)

	student := Actor{ID: "s1", Role: models.RoleStudent}
	_, err = svc.Create(context.Background(), student, dto.GroupCreateRequest{Name: "Nope"})
	require.ErrorIs(t, err, ErrNotPermitted)
}

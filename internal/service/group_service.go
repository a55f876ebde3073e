package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/dto"
	"github.com/edunexus/edunexus-go/internal/models"
	"github.com/edunexus/edunexus-go/internal/observability"
	"github.com/edunexus/edunexus-go/internal/repository"
)

// ErrGroupNotFound indicates the group id is unknown.
var ErrGroupNotFound = errors.New("group not found")

// GroupService manages class groups: administrator CRUD, the teacher
// assignment toggle and the student membership toggle.
type GroupService interface {
	List(ctx context.Context, filter repository.GroupFilter) ([]dto.GroupResponse, error)
	ListForTeacher(ctx context.Context, teacherID string) ([]dto.GroupResponse, error)
	ListForStudent(ctx context.Context, studentID string) ([]dto.GroupResponse, error)
	Get(ctx context.Context, id string) (dto.GroupResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.GroupCreateRequest) (dto.GroupResponse, error)
	Update(ctx context.Context, actor Actor, id string, payload dto.GroupUpdateRequest) (dto.GroupResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	ToggleStudent(ctx context.Context, actor Actor, groupID, studentID string) (dto.GroupResponse, error)
	AssignTeacher(ctx context.Context, actor Actor, groupID, teacherID string) (dto.GroupResponse, error)
}

type groupService struct {
	groups    repository.GroupRepository
	accounts  repository.AccountRepository
	subjects  repository.SubjectRepository
	validator *validator.Validate
	audit     AuditRecorder
	logger    zerolog.Logger
}

// NewGroupService constructs the group service.
func NewGroupService(groups repository.GroupRepository, accounts repository.AccountRepository, subjects repository.SubjectRepository, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) GroupService {
	return &groupService{
		groups:    groups,
		accounts:  accounts,
		subjects:  subjects,
		validator: validate,
		audit:     audit,
		logger:    logger.With().Str("component", "group_service").Logger(),
	}
}

func (s *groupService) List(ctx context.Context, filter repository.GroupFilter) ([]dto.GroupResponse, error) {
	groups, err := s.groups.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewGroupResponses(groups), nil
}

func (s *groupService) ListForTeacher(ctx context.Context, teacherID string) ([]dto.GroupResponse, error) {
	return s.List(ctx, repository.GroupFilter{TeacherID: teacherID})
}

func (s *groupService) ListForStudent(ctx context.Context, studentID string) ([]dto.GroupResponse, error) {
	groups, err := s.groups.ListContainingStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewGroupResponses(groups), nil
}

func (s *groupService) Get(ctx context.Context, id string) (dto.GroupResponse, error) {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupResponse{}, ErrGroupNotFound
		}
		return dto.GroupResponse{}, err
	}

	return dto.NewGroupResponse(group), nil
}

func (s *groupService) Create(ctx context.Context, actor Actor, payload dto.GroupCreateRequest) (dto.GroupResponse, error) {
	if !actor.IsAdmin {
		return dto.GroupResponse{}, ErrNotPermitted
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupResponse{}, err
	}

	group := models.Group{
		Name:     payload.Name,
		Grade:    payload.Grade,
		AgeRange: payload.AgeRange,
	}

	if payload.SubjectID != "" {
		if _, err := s.subjects.GetByID(ctx, payload.SubjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.GroupResponse{}, ErrInvalidReference
			}
			return dto.GroupResponse{}, err
		}
		subjectID := payload.SubjectID
		group.SubjectID = &subjectID
	}

	if payload.TeacherID != "" {
		if err := s.requireTeacher(ctx, payload.TeacherID); err != nil {
			return dto.GroupResponse{}, err
		}
		teacherID := payload.TeacherID
		group.TeacherID = &teacherID
	}

	if err := s.groups.Create(ctx, &group); err != nil {
		observability.StoreErrors().WithLabelValues("group").Inc()
		return dto.GroupResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("group", "create").Inc()
	s.recordAudit(ctx, actor, "group.created", fmt.Sprintf("created group %s", group.Name), map[string]interface{}{
		"group_id": group.ID,
	})

	return dto.NewGroupResponse(group), nil
}

func (s *groupService) Update(ctx context.Context, actor Actor, id string, payload dto.GroupUpdateRequest) (dto.GroupResponse, error) {
	if !actor.IsAdmin {
		return dto.GroupResponse{}, ErrNotPermitted
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupResponse{}, err
	}

	updates := map[string]interface{}{}
	if payload.Name != nil {
		updates["name"] = *payload.Name
	}
	if payload.Grade != nil {
		updates["grade"] = *payload.Grade
	}
	if payload.AgeRange != nil {
		updates["age_range"] = *payload.AgeRange
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	group, err := s.groups.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupResponse{}, ErrGroupNotFound
		}
		return dto.GroupResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("group", "update").Inc()
	return dto.NewGroupResponse(group), nil
}

// Delete removes the group and, through the cascade, its lessons and
// everything they own.
func (s *groupService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin {
		return ErrNotPermitted
	}

	if err := s.groups.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		observability.StoreErrors().WithLabelValues("group").Inc()
		return err
	}

	observability.StoreMutations().WithLabelValues("group", "delete").Inc()
	s.recordAudit(ctx, actor, "group.deleted", fmt.Sprintf("deleted group %s", id), map[string]interface{}{
		"group_id": id,
	})

	return nil
}

// ToggleStudent adds or removes a student from the roster. The target must
// be an approved student account.
func (s *groupService) ToggleStudent(ctx context.Context, actor Actor, groupID, studentID string) (dto.GroupResponse, error) {
	if !actor.IsAdmin {
		return dto.GroupResponse{}, ErrNotPermitted
	}

	student, err := s.accounts.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupResponse{}, ErrInvalidReference
		}
		return dto.GroupResponse{}, err
	}
	if !student.IsStudent() {
		return dto.GroupResponse{}, ErrInvalidReference
	}

	group, err := s.groups.ToggleStudent(ctx, groupID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupResponse{}, ErrGroupNotFound
		}
		return dto.GroupResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("group", "toggle_student").Inc()
	s.recordAudit(ctx, actor, "group.membership_toggled", fmt.Sprintf("toggled %s in group %s", student.Name, group.Name), map[string]interface{}{
		"group_id":   group.ID,
		"student_id": studentID,
		"member":     group.HasStudent(studentID),
	})

	return dto.NewGroupResponse(group), nil
}

// AssignTeacher assigns the teacher or, when already assigned, leaves the
// group vacant.
func (s *groupService) AssignTeacher(ctx context.Context, actor Actor, groupID, teacherID string) (dto.GroupResponse, error) {
	if !actor.IsAdmin {
		return dto.GroupResponse{}, ErrNotPermitted
	}

	if err := s.requireTeacher(ctx, teacherID); err != nil {
		return dto.GroupResponse{}, err
	}

	group, err := s.groups.AssignTeacher(ctx, groupID, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupResponse{}, ErrGroupNotFound
		}
		return dto.GroupResponse{}, err
	}

	observability.StoreMutations().WithLabelValues("group", "assign_teacher").Inc()
	s.recordAudit(ctx, actor, "group.teacher_assigned", fmt.Sprintf("teacher assignment toggled on group %s", group.Name), map[string]interface{}{
		"group_id":   group.ID,
		"teacher_id": teacherID,
		"vacant":     group.TeacherID == nil,
	})

	return dto.NewGroupResponse(group), nil
}

func (s *groupService) requireTeacher(ctx context.Context, teacherID string) error {
	teacher, err := s.accounts.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidReference
		}
		return err
	}
	if !teacher.IsTeacher() {
		return ErrInvalidReference
	}

	return nil
}

func (s *groupService) recordAudit(ctx context.Context, actor Actor, action, detail string, metadata map[string]interface{}) {
	if s.audit == nil {
		return
	}
	if _, err := s.audit.Record(ctx, AuditEntry{Actor: actor, Action: action, Detail: detail, Metadata: metadata}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record audit entry")
	}
}

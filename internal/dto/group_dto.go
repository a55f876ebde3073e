package dto

import "github.com/edunexus/edunexus-go/internal/models"

// GroupCreateRequest captures a new group. A group may start without a
// subject or teacher.
type GroupCreateRequest struct {
	Name      string `json:"name" validate:"required,min=1"`
	Grade     string `json:"grade" validate:"omitempty,max=32"`
	AgeRange  string `json:"age_range" validate:"omitempty,max=64"`
	SubjectID string `json:"subject_id"`
	TeacherID string `json:"teacher_id"`
}

// GroupUpdateRequest captures partial group edits.
type GroupUpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Grade    *string `json:"grade" validate:"omitempty,max=32"`
	AgeRange *string `json:"age_range" validate:"omitempty,max=64"`
}

// GroupResponse serializes a group. TeacherID is nil for vacant groups.
type GroupResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Grade      string   `json:"grade"`
	AgeRange   string   `json:"age_range"`
	SubjectID  *string  `json:"subject_id"`
	TeacherID  *string  `json:"teacher_id"`
	StudentIDs []string `json:"student_ids"`
}

// NewGroupResponse converts a group model into a DTO.
func NewGroupResponse(group models.Group) GroupResponse {
	return GroupResponse{
		ID:         group.ID,
		Name:       group.Name,
		Grade:      group.Grade,
		AgeRange:   group.AgeRange,
		SubjectID:  group.SubjectID,
		TeacherID:  group.TeacherID,
		StudentIDs: group.StudentIDs,
	}
}

// NewGroupResponses converts a slice of group models.
func NewGroupResponses(groups []models.Group) []GroupResponse {
	responses := make([]GroupResponse, 0, len(groups))
	for _, group := range groups {
		responses = append(responses, NewGroupResponse(group))
	}
	return responses
}

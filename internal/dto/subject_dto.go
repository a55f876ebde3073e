package dto

import "github.com/edunexus/edunexus-go/internal/models"

// SubjectCreateRequest captures a new subject.
type SubjectCreateRequest struct {
	Name  string `json:"name" validate:"required,min=1"`
	Icon  string `json:"icon" validate:"omitempty,max=16"`
	Color string `json:"color" validate:"omitempty,max=64"`
}

// SubjectUpdateRequest captures partial subject edits.
type SubjectUpdateRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Icon  *string `json:"icon" validate:"omitempty,max=16"`
	Color *string `json:"color" validate:"omitempty,max=64"`
}

// SubjectResponse serializes a subject.
type SubjectResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// NewSubjectResponse converts a subject model into a DTO.
func NewSubjectResponse(subject models.Subject) SubjectResponse {
	return SubjectResponse{
		ID:    subject.ID,
		Name:  subject.Name,
		Icon:  subject.Icon,
		Color: subject.Color,
	}
}

// NewSubjectResponses converts a slice of subject models.
func NewSubjectResponses(subjects []models.Subject) []SubjectResponse {
	responses := make([]SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		responses = append(responses, NewSubjectResponse(subject))
	}
	return responses
}

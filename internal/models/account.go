package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// RoleStudent marks an approved learner account.
	RoleStudent = "student"
	// RoleTeacher marks an approved teaching account.
	RoleTeacher = "teacher"
	// RoleParent marks an approved guardian account.
	RoleParent = "parent"
	// RoleAdmin marks the built-in administrator account.
	RoleAdmin = "admin"
	// RoleUnassigned is the role of a self-registered account awaiting approval.
	RoleUnassigned = ""
)

// Account represents any user of the system: student, teacher, parent,
// administrator, or a registrant still waiting for approval.
type Account struct {
	ID          string                      `gorm:"primaryKey;size:64" json:"id"`
	Name        string                      `gorm:"size:255;not null" json:"name"`
	Contact     string                      `gorm:"size:255;uniqueIndex;not null" json:"contact"`
	Password    string                      `gorm:"size:255;not null" json:"password"`
	Role        string                      `gorm:"size:32;index" json:"role"`
	IsApproved  bool                        `gorm:"not null;default:false" json:"is_approved"`
	IsAdmin     bool                        `gorm:"not null;default:false" json:"is_admin"`
	Avatar      string                      `gorm:"size:512" json:"avatar"`
	Grade       string                      `gorm:"size:32" json:"grade"`
	Age         *int                        `json:"age"`
	ChildrenIDs datatypes.JSONSlice[string] `gorm:"type:json" json:"children_ids"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// BeforeCreate assigns a process-unique identifier when none was supplied.
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// IsStudent reports whether the account holds the student role.
func (a Account) IsStudent() bool {
	return a.Role == RoleStudent
}

// IsTeacher reports whether the account holds the teacher role.
func (a Account) IsTeacher() bool {
	return a.Role == RoleTeacher
}

// IsParent reports whether the account holds the parent role.
func (a Account) IsParent() bool {
	return a.Role == RoleParent
}

// AssignableRole reports whether role may be granted through the approval
// workflow. The admin role is never assignable there.
func AssignableRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleParent:
		return true
	}
	return false
}

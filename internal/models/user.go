package models

import (
	"time"

	"gorm.io/datatypes"
)

type Role string

const (
	RoleApplicant  Role = "applicant"
	RoleIntern     Role = "intern"
	RoleRecruiter  Role = "recruiter"
	RoleHRManager  Role = "hr_manager"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super-admin"
)

var Roles = []Role{RoleApplicant, RoleIntern, RoleRecruiter, RoleHRManager, RoleAdmin, RoleSuperAdmin}

func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role may manage jobs and applications.
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleRecruiter, RoleHRManager, RoleSuperAdmin:
		return true
	}
	return false
}

func (r Role) CanApply() bool {
	return r == RoleApplicant || r == RoleIntern
}

// InternshipType is the admin-set pay classification of an intern.
type InternshipType string

const (
	InternshipUnpaid   InternshipType = "unpaid"
	InternshipPaid     InternshipType = "paid"
	InternshipFullTime InternshipType = "full-time"
)

func (t InternshipType) Valid() bool {
	switch t {
	case InternshipUnpaid, InternshipPaid, InternshipFullTime:
		return true
	}
	return false
}

type User struct {
	ID                  uint                        `gorm:"primaryKey" json:"id"`
	Name                string                      `gorm:"type:text;not null" json:"name"`
	Email               string                      `gorm:"type:text;uniqueIndex;not null" json:"email"`
	PasswordHash        string                      `gorm:"type:text;not null" json:"-"`
	Role                Role                        `gorm:"type:text;not null;default:'applicant';index" json:"role"`
	Phone               string                      `gorm:"type:text" json:"phone,omitempty"`
	Skills              datatypes.JSONSlice[string] `json:"skills"`
	Education           datatypes.JSONSlice[string] `json:"education"`
	Experience          string                      `gorm:"type:text" json:"experience,omitempty"`
	ResumePath          string                      `gorm:"type:text" json:"resume_path,omitempty"`
	ExperienceLevel     *string                     `gorm:"type:text;index" json:"experience_level"`
	Status              *InternshipType             `gorm:"type:text" json:"status"`
	ResetToken          *string                     `gorm:"type:text;index" json:"-"`
	ResetTokenExpiresAt *time.Time                  `json:"-"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// ProfileComplete reports whether the fields an application can backfill are set.
func (u *User) ProfileComplete() bool {
	return len(u.Skills) > 0 && u.ExperienceLevel != nil && *u.ExperienceLevel != ""
}

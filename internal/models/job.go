package models

import (
	"time"

	"gorm.io/datatypes"
)

type JobStatus string

const (
	JobStatusActive   JobStatus = "active"
	JobStatusClosed   JobStatus = "closed"
	JobStatusArchived JobStatus = "archived"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusActive, JobStatusClosed, JobStatusArchived:
		return true
	}
	return false
}

type Job struct {
	ID                 uint                        `gorm:"primaryKey" json:"id"`
	Title              string                      `gorm:"type:text;not null" json:"title"`
	Description        string                      `gorm:"type:text" json:"description"`
	Requirements       datatypes.JSONSlice[string] `json:"requirements"`
	Responsibilities   datatypes.JSONSlice[string] `json:"responsibilities"`
	Benefits           datatypes.JSONSlice[string] `json:"benefits"`
	Skills             datatypes.JSONSlice[string] `json:"skills"`
	Location           string                      `gorm:"type:text" json:"location"`
	Type               string                      `gorm:"type:text;index" json:"type"`
	ExperienceLevel    string                      `gorm:"type:text" json:"experience_level"`
	Deadline           *time.Time                  `json:"deadline"`
	IsInternship       bool                        `gorm:"not null;default:false;index" json:"is_internship"`
	MinGadaLevel       *string                     `gorm:"type:text" json:"min_gada_level"`
	InternshipDuration *int                        `json:"internship_duration"`
	StipendRange       string                      `gorm:"type:text" json:"stipend_range,omitempty"`
	Category           string                      `gorm:"type:text;index" json:"category"`
	CreatedBy          *uint                       `json:"created_by"`
	Status             JobStatus                   `gorm:"type:text;not null;default:'active';index" json:"status"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

func (Job) TableName() string {
	return "jobs"
}

func (j *Job) AcceptsApplications() bool {
	return j.Status == JobStatusActive
}

type JobWithCount struct {
	Job
	ApplicantCount int64 `json:"applicant_count"`
}

package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type ApplicationStatus string

const (
	StatusSubmitted   ApplicationStatus = "submitted"
	StatusUnderReview ApplicationStatus = "under review"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusInterview   ApplicationStatus = "interview"
	StatusAccepted    ApplicationStatus = "accepted"
	StatusRejected    ApplicationStatus = "rejected"
)

var ApplicationStatuses = []ApplicationStatus{
	StatusSubmitted, StatusUnderReview, StatusShortlisted, StatusInterview, StatusAccepted, StatusRejected,
}

// ParseApplicationStatus normalises case and accepts "under_review" for "under review".
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "_", " ")
	for _, status := range ApplicationStatuses {
		if string(status) == norm {
			return status, true
		}
	}
	return "", false
}

type Application struct {
	ID                uint                        `gorm:"primaryKey" json:"id"`
	UserID            uint                        `gorm:"not null;uniqueIndex:idx_applications_user_job" json:"user_id"`
	JobID             uint                        `gorm:"not null;uniqueIndex:idx_applications_user_job;index" json:"job_id"`
	Status            ApplicationStatus           `gorm:"type:text;not null;default:'submitted';index" json:"status"`
	ResumePath        string                      `gorm:"type:text" json:"resume_path"`
	CoverLetter       string                      `gorm:"type:text" json:"cover_letter,omitempty"`
	Skills            datatypes.JSONSlice[string] `json:"skills"`
	ExperienceLevel   *string                     `gorm:"type:text" json:"experience_level"`
	ParsedSkills      datatypes.JSONSlice[string] `json:"parsed_skills"`
	ParsedEducation   datatypes.JSONSlice[string] `json:"parsed_education"`
	ParsedExperience  int                         `gorm:"not null;default:0" json:"parsed_experience"`
	RecommendedSkills datatypes.JSONSlice[string] `json:"recommended_skills"`
	RecommendedLevel  string                      `gorm:"type:text" json:"recommended_level"`
	GadaLevel         *string                     `gorm:"type:text" json:"gada_level"`
	InternshipType    *string                     `gorm:"type:text;index" json:"internship_type"`
	InterviewInfo     datatypes.JSONMap           `json:"interview_info,omitempty"`
	Feedback          string                      `gorm:"type:text" json:"feedback,omitempty"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`

	// Relations
	User          *User                    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Job           *Job                     `gorm:"foreignKey:JobID" json:"job,omitempty"`
	StatusHistory []ApplicationStatusEvent `gorm:"foreignKey:ApplicationID" json:"status_history"`
}

func (Application) TableName() string {
	return "applications"
}

// ApplicationStatusEvent is one append-only row of an application's status history.
type ApplicationStatusEvent struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	ApplicationID uint              `gorm:"not null;index" json:"application_id"`
	Status        ApplicationStatus `gorm:"type:text;not null" json:"status"`
	ChangedBy     *uint             `json:"changed_by,omitempty"`
	Note          string            `gorm:"type:text" json:"note,omitempty"`
	CreatedAt     time.Time         `json:"timestamp"`
}

func (ApplicationStatusEvent) TableName() string {
	return "application_status_events"
}

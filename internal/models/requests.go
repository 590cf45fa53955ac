package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Name       *string  `json:"name"`
	Phone      *string  `json:"phone"`
	Experience *string  `json:"experience"`
	Education  []string `json:"education"`
	Skills     []string `json:"skills"`
}

// JobRequest carries both create and partial update payloads. Nil fields are
// left untouched on update.
type JobRequest struct {
	Title              *string    `json:"title"`
	Description        *string    `json:"description"`
	Requirements       []string   `json:"requirements"`
	Responsibilities   []string   `json:"responsibilities"`
	Benefits           []string   `json:"benefits"`
	Skills             []string   `json:"skills"`
	Location           *string    `json:"location"`
	Type               *string    `json:"type"`
	ExperienceLevel    *string    `json:"experienceLevel"`
	Deadline           *time.Time `json:"deadline"`
	IsInternship       *bool      `json:"isInternship"`
	MinGadaLevel       *string    `json:"minGadaLevel"`
	InternshipDuration *int       `json:"internshipDuration"`
	StipendRange       *string    `json:"stipendRange"`
	Category           *string    `json:"category"`
	Status             *JobStatus `json:"status"`
}

type JobFilter struct {
	Type            string
	ExperienceLevel string
	IsInternship    *bool
	Category        string
	Skills          []string
	Status          JobStatus
	Search          string
}

type UpdateJobStatusRequest struct {
	Status JobStatus `json:"status"`
}

type ApplicationFilter struct {
	Status ApplicationStatus
	JobID  uint
}

type UpdateStatusRequest struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
}

type BulkUpdateRequest struct {
	ApplicationIDs []uint `json:"applicationIds"`
	Status         string `json:"status"`
	Feedback       string `json:"feedback"`
}

type ClassifyApplicantRequest struct {
	GadaLevel      string `json:"gada_level"`
	InternshipType string `json:"internship_type"`
}

type ClassifyInternRequest struct {
	ExperienceLevel string `json:"experienceLevel"`
	Status          string `json:"status"`
}

type UpdateInternStatusRequest struct {
	Status string `json:"status"`
}

type UpdateRoleRequest struct {
	Role Role `json:"role"`
}

// InterviewDetails accepts either a free-text string or an object of named fields.
type InterviewDetails map[string]interface{}

func (d *InterviewDetails) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*d = InterviewDetails{"details": text}
		return nil
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("interviewDetails must be a string or an object: %w", err)
	}
	*d = fields
	return nil
}

type InterviewInviteRequest struct {
	InterviewDetails InterviewDetails `json:"interviewDetails"`
}

type FeedbackRequest struct {
	Feedback string `json:"feedback"`
}

type SettingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type EmailTemplateRequest struct {
	Name    *string `json:"name"`
	Subject *string `json:"subject"`
	Body    *string `json:"body"`
}

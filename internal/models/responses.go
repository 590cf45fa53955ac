package models

import "time"

type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type ApplicationStatusResponse struct {
	ID            uint                     `json:"id"`
	Status        ApplicationStatus        `json:"status"`
	AppliedAt     time.Time                `json:"applied_at"`
	StatusHistory []ApplicationStatusEvent `json:"status_history"`
}

type BulkUpdateResult struct {
	Updated []Application `json:"updated"`
}

type InterviewInviteResult struct {
	Application *Application `json:"application"`
	EmailSent   bool         `json:"email_sent"`
}

type LevelCount struct {
	Level string `json:"level"`
	Count int64  `json:"count"`
}

type MonthlyCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

type Stats struct {
	TotalJobs           int64            `json:"total_jobs"`
	TotalApplications   int64            `json:"total_applications"`
	TotalUsers          int64            `json:"total_users"`
	PendingApplications int64            `json:"pending_applications"`
	ApplicationsByState map[string]int64 `json:"applications_by_status"`
	UsersByRole         map[string]int64 `json:"users_by_role"`
	GadaLevels          []LevelCount     `json:"gada_levels"`
	UnpaidInterns       int64            `json:"unpaid_interns"`
	PaidInterns         int64            `json:"paid_interns"`
	FullTimeInterns     int64            `json:"full_time_interns"`
}

type Reports struct {
	Applications        int64          `json:"applications"`
	ActiveInterns       int64          `json:"interns"`
	Conversions         int64          `json:"conversions"`
	GadaDistribution    []LevelCount   `json:"gada_distribution"`
	MonthlyApplications []MonthlyCount `json:"monthly_applications"`
	MonthlyConversions  []MonthlyCount `json:"monthly_conversions"`
}

// InternshipTypeCounts reports both the admin-set classification and the
// classification derived from each intern's Gada level duration.
type InternshipTypeCounts struct {
	Applications map[string]int64 `json:"applications"`
	Interns      map[string]int64 `json:"interns"`
	Derived      map[string]int64 `json:"derived"`
}

type JobRecommendation struct {
	Job   Job     `json:"job"`
	Score float32 `json:"score"`
}

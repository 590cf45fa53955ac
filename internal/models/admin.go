package models

import (
	"time"

	"gorm.io/datatypes"
)

type InternProgression struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	FromLevel *string         `gorm:"type:text" json:"from_level"`
	ToLevel   string          `gorm:"type:text;not null" json:"to_level"`
	Status    *InternshipType `gorm:"type:text" json:"status"`
	ChangedBy *uint           `json:"changed_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func (InternProgression) TableName() string {
	return "intern_progressions"
}

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"type:text;uniqueIndex;not null" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

type AuditLog struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    *uint             `gorm:"index" json:"user_id"`
	Action    string            `gorm:"type:text;not null;index" json:"action"`
	Details   datatypes.JSONMap `json:"details"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// EmailTemplate overrides a built-in notification. Subject and Body are
// html/template sources.
type EmailTemplate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:text;uniqueIndex;not null" json:"name"`
	Subject   string    `gorm:"type:text;not null" json:"subject"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (EmailTemplate) TableName() string {
	return "email_templates"
}

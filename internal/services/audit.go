package services

import (
	"context"

	"debo-engineering/job-portal/internal/logger"
	"debo-engineering/job-portal/internal/models"
)

const (
	AuditApplicationStatus     = "application.status_updated"
	AuditApplicationBulk       = "application.bulk_updated"
	AuditApplicationClassified = "application.classified"
	AuditInterviewInvite       = "application.interview_invite"
	AuditApplicationFeedback   = "application.feedback"
	AuditJobCreated            = "job.created"
	AuditJobUpdated            = "job.updated"
	AuditJobDeleted            = "job.deleted"
	AuditUserRole              = "user.role_updated"
	AuditInternClassified      = "intern.classified"
	AuditInternStatus          = "intern.status_updated"
	AuditSettingChanged        = "setting.changed"
	AuditSettingDeleted        = "setting.deleted"
	AuditEmailTemplate         = "email_template.changed"
)

type AuditLogWriter interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// AuditService records admin actions. Failures are logged and dropped.
type AuditService interface {
	Record(ctx context.Context, actorID uint, action string, details map[string]interface{})
}

type auditService struct {
	repo AuditLogWriter
	log  logger.Logger
}

func NewAuditService(repo AuditLogWriter, log logger.Logger) AuditService {
	return &auditService{repo: repo, log: log}
}

func (s *auditService) Record(ctx context.Context, actorID uint, action string, details map[string]interface{}) {
	entry := &models.AuditLog{Action: action, Details: details}
	if actorID != 0 {
		entry.UserID = &actorID
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.Warn("failed to record audit log", map[string]interface{}{
			"action":   action,
			"actor_id": actorID,
			"error":    err,
		})
	}
}

package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"debo-engineering/job-portal/internal/config"
	"debo-engineering/job-portal/internal/logger"
	"debo-engineering/job-portal/internal/models"
	"debo-engineering/job-portal/internal/repositories"
)

type notification struct {
	Template string
	UserID   uint
	Detail   string
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []notification
	err   error
	reset string
}

func (f *fakeNotifier) record(template string, user *models.User, detail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notification{Template: template, UserID: user.ID, Detail: detail})
	return f.err
}

func (f *fakeNotifier) templates() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, n := range f.sent {
		out[i] = n.Template
	}
	return out
}

func (f *fakeNotifier) ApplicationReceived(_ context.Context, user *models.User, job *models.Job) error {
	return f.record(TemplateApplicationReceived, user, job.Title)
}

func (f *fakeNotifier) StatusUpdated(_ context.Context, user *models.User, _ *models.Job, status models.ApplicationStatus) error {
	return f.record(TemplateStatusUpdate, user, string(status))
}

func (f *fakeNotifier) Feedback(_ context.Context, user *models.User, _ *models.Job, feedback string) error {
	return f.record(TemplateFeedback, user, feedback)
}

func (f *fakeNotifier) InterviewInvitation(_ context.Context, user *models.User, _ *models.Job, _ map[string]interface{}) error {
	return f.record(TemplateInterviewInvitation, user, "")
}

func (f *fakeNotifier) InternPromoted(_ context.Context, user *models.User, level GadaLevel) error {
	return f.record(TemplateInternPromotion, user, level.ID)
}

func (f *fakeNotifier) PasswordReset(_ context.Context, user *models.User, resetURL string) error {
	f.mu.Lock()
	f.reset = resetURL
	f.mu.Unlock()
	return f.record(TemplatePasswordReset, user, resetURL)
}

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string, int, time.Duration) bool {
	return false
}

type serviceEnv struct {
	db        *gorm.DB
	users     repositories.UserRepository
	jobs      repositories.JobRepository
	apps      repositories.ApplicationRepository
	settings  repositories.SettingRepository
	templates repositories.EmailTemplateRepository
	auditLogs repositories.AuditLogRepository
	notifier  *fakeNotifier
	storage   StorageService
	analyzer  ResumeAnalyzer
	audit     AuditService
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()

	source := filepath.Join(t.TempDir(), "portal.db") + "?_foreign_keys=on"
	db, err := config.OpenDatabase("sqlite", source, gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	storage := NewStorageService(t.TempDir(), 1<<20)
	require.NoError(t, storage.EnsureUploadDir())

	auditLogs := repositories.NewAuditLogRepository(db)
	log := logger.NewNoOpLogger()

	return &serviceEnv{
		db:        db,
		users:     repositories.NewUserRepository(db),
		jobs:      repositories.NewJobRepository(db),
		apps:      repositories.NewApplicationRepository(db),
		settings:  repositories.NewSettingRepository(db),
		templates: repositories.NewEmailTemplateRepository(db),
		auditLogs: auditLogs,
		notifier:  &fakeNotifier{},
		storage:   storage,
		analyzer:  NewResumeAnalyzer(stubParser{text: sampleResume}, log),
		audit:     NewAuditService(auditLogs, log),
	}
}

func (e *serviceEnv) applicationService(limiter RateLimiter) ApplicationService {
	return NewApplicationService(
		e.apps, e.jobs, e.users, e.storage, e.analyzer, e.notifier, e.audit,
		limiter, RateLimit{Limit: 5, Window: time.Minute}, logger.NewNoOpLogger(),
	)
}

func (e *serviceEnv) adminService() AdminService {
	return NewAdminService(AdminRepositories{
		Users:          e.users,
		Jobs:           e.jobs,
		Applications:   e.apps,
		Settings:       e.settings,
		EmailTemplates: e.templates,
		AuditLogs:      e.auditLogs,
	}, e.audit, e.notifier, e.analyzer, e.storage, logger.NewNoOpLogger())
}

func (e *serviceEnv) createUser(t *testing.T, email string, role models.Role) Actor {
	t.Helper()
	user := &models.User{Name: "User " + email, Email: email, PasswordHash: "hash", Role: role}
	require.NoError(t, e.users.Create(context.Background(), user))
	return Actor{ID: user.ID, Role: role}
}

func (e *serviceEnv) createJob(t *testing.T, job *models.Job) *models.Job {
	t.Helper()
	if job.Title == "" {
		job.Title = "Backend Engineer"
	}
	require.NoError(t, e.jobs.Create(context.Background(), job))
	return job
}

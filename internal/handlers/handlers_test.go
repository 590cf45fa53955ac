package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"debo-engineering/job-portal/internal/config"
	"debo-engineering/job-portal/internal/logger"
	"debo-engineering/job-portal/internal/models"
	"debo-engineering/job-portal/internal/repositories"
	"debo-engineering/job-portal/internal/services"
)

const testCookie = "portal_session"

type testServer struct {
	app    *fiber.App
	users  repositories.UserRepository
	jobs   repositories.JobRepository
	tokens services.TokenManager
}

func newTestServer(t *testing.T) *testServer {
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

	log := logger.NewNoOpLogger()
	ctx := context.Background()

	users := repositories.NewUserRepository(db)
	jobs := repositories.NewJobRepository(db)
	apps := repositories.NewApplicationRepository(db)
	templates := repositories.NewEmailTemplateRepository(db)
	auditLogs := repositories.NewAuditLogRepository(db)

	storage := services.NewStorageService(t.TempDir(), 1<<20)
	require.NoError(t, storage.EnsureUploadDir())
	analyzer := services.NewResumeAnalyzer(services.NewPDFParserService(), log)
	mailer, err := services.NewMailer(ctx, services.MailerConfig{Provider: "log"}, log)
	require.NoError(t, err)
	notifier := services.NewNotifier(mailer, templates, "DEBO Engineering", log)
	limiter := services.NewNoopRateLimiter()
	audit := services.NewAuditService(auditLogs, log)
	tokens := services.NewTokenManager("test-secret", time.Hour)

	authService := services.NewAuthService(users, tokens, storage, analyzer, notifier, limiter, services.AuthSettings{
		ResetTokenTTL: time.Hour,
		FrontendURL:   "http://localhost:3000",
		LoginRate:     services.RateLimit{Limit: 10, Window: time.Minute},
	}, log)
	jobService := services.NewJobService(jobs, users, services.NewDisabledJobIndex(), audit, log)
	applicationService := services.NewApplicationService(apps, jobs, users, storage, analyzer, notifier, audit,
		limiter, services.RateLimit{Limit: 10, Window: time.Minute}, log)
	adminService := services.NewAdminService(services.AdminRepositories{
		Users:          users,
		Jobs:           jobs,
		Applications:   apps,
		Settings:       repositories.NewSettingRepository(db),
		EmailTemplates: templates,
		AuditLogs:      auditLogs,
	}, audit, notifier, analyzer, storage, log)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(log)})
	RegisterRoutes(app.Group("/api/v1"), Handlers{
		Auth:         NewAuthHandler(authService, testCookie, time.Hour, false),
		Jobs:         NewJobHandler(jobService),
		Applications: NewApplicationHandler(applicationService),
		Admin:        NewAdminHandler(adminService),
		Middleware:   NewAuthMiddleware(tokens, testCookie),
	})

	return &testServer{app: app, users: users, jobs: jobs, tokens: tokens}
}

// tokenFor creates a user with the given role and returns a bearer token.
func (s *testServer) tokenFor(t *testing.T, email string, role models.Role) string {
	t.Helper()
	user := &models.User{Name: "User " + email, Email: email, PasswordHash: "hash", Role: role}
	require.NoError(t, s.users.Create(context.Background(), user))
	token, _, err := s.tokens.Generate(user)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *errorBody      `json:"error"`
}

func (s *testServer) do(t *testing.T, req *http.Request, token string) (*http.Response, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func (s *testServer) doJSON(t *testing.T, method, path string, body interface{}, token string) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return s.do(t, req, token)
}

func applicationForm(t *testing.T, fields map[string][]string, withResume bool) (io.Reader, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for key, values := range fields {
		for _, v := range values {
			require.NoError(t, w.WriteField(key, v))
		}
	}
	if withResume {
		part, err := w.CreateFormFile("resume", "cv.pdf")
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 not really a pdf"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/logger"
	"debo-engineering/job-portal/internal/metrics"
	"debo-engineering/job-portal/internal/models"
	"debo-engineering/job-portal/internal/repositories"
)

const minPasswordLength = 6

type AuthSettings struct {
	ResetTokenTTL time.Duration
	FrontendURL   string
	LoginRate     RateLimit
}

type ProfileResult struct {
	User              *models.User `json:"user"`
	RecommendedSkills []string     `json:"recommendedSkills"`
}

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Profile(ctx context.Context, actor Actor) (*models.User, error)
	UpdateProfile(ctx context.Context, actor Actor, req models.UpdateProfileRequest, resume *multipart.FileHeader) (*ProfileResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

type authService struct {
	users    repositories.UserRepository
	tokens   TokenManager
	storage  StorageService
	analyzer ResumeAnalyzer
	notifier Notifier
	limiter  RateLimiter
	settings AuthSettings
	log      logger.Logger
}

func NewAuthService(
	users repositories.UserRepository,
	tokens TokenManager,
	storage StorageService,
	analyzer ResumeAnalyzer,
	notifier Notifier,
	limiter RateLimiter,
	settings AuthSettings,
	log logger.Logger,
) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		storage:  storage,
		analyzer: analyzer,
		notifier: notifier,
		limiter:  limiter,
		settings: settings,
		log:      log,
	}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an applicant or intern account. Staff roles are granted
// through role management, never at sign-up.
func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	fields := map[string]string{}
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" {
		fields["name"] = "required"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "invalid email address"
	}
	if len(req.Password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("must be at least %d characters", minPasswordLength)
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation("name, email, and password are required", fields)
	}

	role := req.Role
	if role == "" {
		role = models.RoleApplicant
	}
	if !role.Valid() {
		return nil, apperrors.NewInvalidRole(string(role), roleNames())
	}
	if !role.CanApply() {
		return nil, apperrors.NewForbidden("staff accounts cannot be self-registered")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", map[string]interface{}{
		"user_id": user.ID,
		"role":    string(role),
	})

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.NewValidation("email and password are required", nil)
	}

	if !s.limiter.Allow(ctx, "login:"+email, s.settings.LoginRate.Limit, s.settings.LoginRate.Window) {
		metrics.RecordRateLimited("login")
		return nil, apperrors.NewRateLimited("too many login attempts, try again later")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	return s.issue(user)
}

func (s *authService) issue(user *models.User) (*models.AuthResponse, error) {
	token, _, err := s.tokens.Generate(user)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to issue token")
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

func (s *authService) Profile(ctx context.Context, actor Actor) (*models.User, error) {
	return s.users.FindByID(ctx, actor.ID)
}

// UpdateProfile applies the provided fields. Skills are merged with existing
// ones, and an uploaded resume contributes recommended skills.
func (s *authService) UpdateProfile(ctx context.Context, actor Actor, req models.UpdateProfileRequest, resume *multipart.FileHeader) (*ProfileResult, error) {
	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidation("name cannot be empty", map[string]string{"name": "required"})
		}
		updates["name"] = name
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Experience != nil {
		updates["experience"] = *req.Experience
	}
	if req.Education != nil {
		updates["education"] = datatypes.JSONSlice[string](ParseSkills(req.Education))
	}

	skills := []string(user.Skills)
	if req.Skills != nil {
		skills = MergeSkills(skills, ParseSkills(req.Skills))
	}

	recommended := []string{}
	if resume != nil {
		filename, err := s.storage.SaveResume(resume, user.ID)
		if err != nil {
			return nil, apperrors.NewValidation(err.Error(), map[string]string{"resume": "invalid"})
		}
		updates["resume_path"] = filename

		insights := s.analyzer.AnalyzeFile(s.storage.GetFilePath(filename), skills)
		skills = MergeSkills(skills, insights.DeclaredSkills)
		recommended = insights.Skills

		if user.ResumePath != "" && user.ResumePath != filename {
			if err := s.storage.DeleteFile(user.ResumePath); err != nil {
				s.log.Warn("failed to remove previous resume", map[string]interface{}{
					"user_id": user.ID,
					"error":   err,
				})
			}
		}
	}

	if req.Skills != nil || resume != nil {
		updates["skills"] = datatypes.JSONSlice[string](skills)
	}

	if len(updates) > 0 {
		if err := s.users.Update(ctx, user.ID, updates); err != nil {
			return nil, err
		}
	}

	updated, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &ProfileResult{User: updated, RecommendedSkills: recommended}, nil
}

// ForgotPassword never reveals whether the email exists.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperrors.NewValidation("email is required", map[string]string{"email": "required"})
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil
		}
		return err
	}

	token := uuid.NewString()
	expiresAt := time.Now().Add(s.settings.ResetTokenTTL)
	if err := s.users.Update(ctx, user.ID, map[string]interface{}{
		"reset_token":            token,
		"reset_token_expires_at": expiresAt,
	}); err != nil {
		return err
	}

	resetURL := strings.TrimRight(s.settings.FrontendURL, "/") + "/reset-password/" + token
	if err := s.notifier.PasswordReset(ctx, user, resetURL); err != nil {
		s.log.Warn("password reset email failed", map[string]interface{}{
			"user_id": user.ID,
			"error":   err,
		})
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, password string) error {
	if strings.TrimSpace(token) == "" || password == "" {
		return apperrors.NewValidation("token and password are required", nil)
	}
	if len(password) < minPasswordLength {
		return apperrors.NewValidation("password too short", map[string]string{
			"password": fmt.Sprintf("must be at least %d characters", minPasswordLength),
		})
	}

	user, err := s.users.FindByResetToken(ctx, token)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return apperrors.NewValidation("invalid or expired token", map[string]string{"token": "invalid"})
		}
		return err
	}
	if user.ResetTokenExpiresAt == nil || time.Now().After(*user.ResetTokenExpiresAt) {
		return apperrors.NewValidation("invalid or expired token", map[string]string{"token": "expired"})
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	return s.users.Update(ctx, user.ID, map[string]interface{}{
		"password_hash":          hash,
		"reset_token":            nil,
		"reset_token_expires_at": nil,
	})
}

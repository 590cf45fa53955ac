package services

import (
	"context"
	"strings"
	"time"

	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/logger"
	"debo-engineering/job-portal/internal/models"
	"debo-engineering/job-portal/internal/repositories"
)

const reportMonths = 12

type AdminService interface {
	Stats(ctx context.Context) (*models.Stats, error)
	Reports(ctx context.Context) (*models.Reports, error)
	GadaLevels() []GadaLevel

	ListUsers(ctx context.Context, role string) ([]models.User, error)
	UpdateUserRole(ctx context.Context, actor Actor, id uint, role models.Role) (*models.User, error)

	ListInterns(ctx context.Context) ([]models.User, error)
	UpdateInternStatus(ctx context.Context, actor Actor, id uint, status string) (*models.User, error)
	ClassifyIntern(ctx context.Context, actor Actor, id uint, level, status string) (*models.User, error)
	ProgressionHistory(ctx context.Context, id uint) ([]models.InternProgression, error)
	ResumeInsights(ctx context.Context, userID uint) (*ResumeInsights, error)

	ListSettings(ctx context.Context) ([]models.Setting, error)
	GetSetting(ctx context.Context, key string) (*models.Setting, error)
	UpsertSetting(ctx context.Context, actor Actor, key, value string) (*models.Setting, error)
	AddSetting(ctx context.Context, actor Actor, key, value string) (*models.Setting, error)
	DeleteSetting(ctx context.Context, actor Actor, key string) error

	ListEmailTemplates(ctx context.Context) ([]models.EmailTemplate, error)
	CreateEmailTemplate(ctx context.Context, actor Actor, req models.EmailTemplateRequest) (*models.EmailTemplate, error)
	UpdateEmailTemplate(ctx context.Context, actor Actor, id uint, req models.EmailTemplateRequest) (*models.EmailTemplate, error)
	DeleteEmailTemplate(ctx context.Context, actor Actor, id uint) error

	AuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error)
}

type AdminRepositories struct {
	Users          repositories.UserRepository
	Jobs           repositories.JobRepository
	Applications   repositories.ApplicationRepository
	Settings       repositories.SettingRepository
	EmailTemplates repositories.EmailTemplateRepository
	AuditLogs      repositories.AuditLogRepository
}

type adminService struct {
	repos    AdminRepositories
	audit    AuditService
	notifier Notifier
	analyzer ResumeAnalyzer
	storage  StorageService
	log      logger.Logger
	now      func() time.Time
}

func NewAdminService(
	repos AdminRepositories,
	audit AuditService,
	notifier Notifier,
	analyzer ResumeAnalyzer,
	storage StorageService,
	log logger.Logger,
) AdminService {
	return &adminService{
		repos:    repos,
		audit:    audit,
		notifier: notifier,
		analyzer: analyzer,
		storage:  storage,
		log:      log,
		now:      time.Now,
	}
}

func (s *adminService) Stats(ctx context.Context) (*models.Stats, error) {
	totalJobs, err := s.repos.Jobs.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalApps, err := s.repos.Applications.Count(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.repos.Applications.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byRole, err := s.repos.Users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	levels, err := s.repos.Users.CountInternsByLevel(ctx)
	if err != nil {
		return nil, err
	}
	internStatus, err := s.repos.Users.CountInternsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var totalUsers int64
	for _, n := range byRole {
		totalUsers += n
	}

	return &models.Stats{
		TotalJobs:           totalJobs,
		TotalApplications:   totalApps,
		TotalUsers:          totalUsers,
		PendingApplications: byStatus[string(models.StatusSubmitted)] + byStatus[string(models.StatusUnderReview)],
		ApplicationsByState: byStatus,
		UsersByRole:         byRole,
		GadaLevels:          levels,
		UnpaidInterns:       internStatus[string(models.InternshipUnpaid)],
		PaidInterns:         internStatus[string(models.InternshipPaid)],
		FullTimeInterns:     internStatus[string(models.InternshipFullTime)],
	}, nil
}

func (s *adminService) Reports(ctx context.Context) (*models.Reports, error) {
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(reportMonths - 1), 0)

	totalApps, err := s.repos.Applications.Count(ctx)
	if err != nil {
		return nil, err
	}
	byRole, err := s.repos.Users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	internStatus, err := s.repos.Users.CountInternsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	levels, err := s.repos.Users.CountInternsByLevel(ctx)
	if err != nil {
		return nil, err
	}
	appDates, err := s.repos.Applications.CreatedSince(ctx, start)
	if err != nil {
		return nil, err
	}
	conversionDates, err := s.repos.Users.ConversionTimes(ctx, start)
	if err != nil {
		return nil, err
	}

	return &models.Reports{
		Applications:        totalApps,
		ActiveInterns:       byRole[string(models.RoleIntern)],
		Conversions:         internStatus[string(models.InternshipFullTime)],
		GadaDistribution:    levels,
		MonthlyApplications: bucketByMonth(appDates, start, reportMonths),
		MonthlyConversions:  bucketByMonth(conversionDates, start, reportMonths),
	}, nil
}

// bucketByMonth counts dates per calendar month starting at start. Every
// month in the range is present, including empty ones.
func bucketByMonth(dates []time.Time, start time.Time, months int) []models.MonthlyCount {
	buckets := make([]models.MonthlyCount, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		key := start.AddDate(0, i, 0).Format("2006-01")
		buckets[i] = models.MonthlyCount{Month: key}
		index[key] = i
	}

	for _, d := range dates {
		if i, ok := index[d.UTC().Format("2006-01")]; ok {
			buckets[i].Count++
		}
	}
	return buckets
}

func (s *adminService) GadaLevels() []GadaLevel {
	return GadaLevels()
}

func (s *adminService) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	r := models.Role(strings.TrimSpace(role))
	if r != "" && !r.Valid() {
		return nil, apperrors.NewInvalidRole(role, roleNames())
	}
	return s.repos.Users.List(ctx, r)
}

func (s *adminService) UpdateUserRole(ctx context.Context, actor Actor, id uint, role models.Role) (*models.User, error) {
	if !actor.IsSuperAdmin() {
		return nil, apperrors.NewForbidden("super-admin access required")
	}
	if !role.Valid() {
		return nil, apperrors.NewInvalidRole(string(role), roleNames())
	}

	user, err := s.repos.Users.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, AuditUserRole, map[string]interface{}{
		"user_id": id,
		"role":    string(role),
	})
	return user, nil
}

func (s *adminService) ListInterns(ctx context.Context) ([]models.User, error) {
	return s.repos.Users.List(ctx, models.RoleIntern)
}

func (s *adminService) UpdateInternStatus(ctx context.Context, actor Actor, id uint, status string) (*models.User, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	kind, err := parseInternshipType(status)
	if err != nil {
		return nil, err
	}

	user, err := s.repos.Users.UpdateInternStatus(ctx, id, kind)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, AuditInternStatus, map[string]interface{}{
		"user_id": id,
		"status":  string(kind),
	})
	return user, nil
}

// ClassifyIntern sets an intern's Gada level and internship type together.
// A level change must follow the progression rules; re-submitting the current
// level only updates the type.
func (s *adminService) ClassifyIntern(ctx context.Context, actor Actor, id uint, level, status string) (*models.User, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if strings.TrimSpace(level) == "" {
		fields["experienceLevel"] = "required"
	}
	if strings.TrimSpace(status) == "" {
		fields["status"] = "required"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation("both experienceLevel and status are required", fields)
	}

	target, ok := GadaLevelByName(level)
	if !ok {
		return nil, apperrors.NewValidation("unknown Gada level", map[string]string{"experienceLevel": "unknown level"})
	}
	kind, err := parseInternshipType(status)
	if err != nil {
		return nil, err
	}

	intern, err := s.repos.Users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if intern.Role != models.RoleIntern {
		return nil, apperrors.NewNotFound("intern")
	}

	changed := intern.ExperienceLevel == nil || *intern.ExperienceLevel != target.ID
	if changed {
		if err := ValidateLevelAssignment(intern.ExperienceLevel, target.ID); err != nil {
			return nil, err
		}
	}

	changedBy := actor.ID
	updated, err := s.repos.Users.ClassifyIntern(ctx, id, intern.ExperienceLevel, target.ID, kind, &changedBy)
	if err != nil {
		return nil, err
	}

	if changed {
		if err := s.notifier.InternPromoted(ctx, updated, target); err != nil {
			s.log.Warn("promotion email failed", map[string]interface{}{
				"user_id": id,
				"level":   target.ID,
				"error":   err,
			})
		}
	}

	s.audit.Record(ctx, actor.ID, AuditInternClassified, map[string]interface{}{
		"user_id": id,
		"level":   target.ID,
		"status":  string(kind),
	})

	return updated, nil
}

func (s *adminService) ProgressionHistory(ctx context.Context, id uint) ([]models.InternProgression, error) {
	if _, err := s.repos.Users.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repos.Users.ProgressionHistory(ctx, id)
}

func (s *adminService) ResumeInsights(ctx context.Context, userID uint) (*ResumeInsights, error) {
	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ResumePath == "" {
		return nil, apperrors.NewNotFound("resume")
	}

	insights := s.analyzer.AnalyzeFile(s.storage.GetFilePath(user.ResumePath), user.Skills)
	return &insights, nil
}

func (s *adminService) ListSettings(ctx context.Context) ([]models.Setting, error) {
	return s.repos.Settings.List(ctx)
}

func (s *adminService) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	return s.repos.Settings.Get(ctx, key)
}

func (s *adminService) UpsertSetting(ctx context.Context, actor Actor, key, value string) (*models.Setting, error) {
	key, err := validateSettingKey(key)
	if err != nil {
		return nil, err
	}

	setting, err := s.repos.Settings.Upsert(ctx, key, value)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, AuditSettingChanged, map[string]interface{}{"key": key})
	return setting, nil
}

func (s *adminService) AddSetting(ctx context.Context, actor Actor, key, value string) (*models.Setting, error) {
	key, err := validateSettingKey(key)
	if err != nil {
		return nil, err
	}

	setting := &models.Setting{Key: key, Value: value}
	if err := s.repos.Settings.Create(ctx, setting); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, AuditSettingChanged, map[string]interface{}{"key": key})
	return setting, nil
}

func (s *adminService) DeleteSetting(ctx context.Context, actor Actor, key string) error {
	if err := s.repos.Settings.Delete(ctx, key); err != nil {
		return err
	}
	s.audit.Record(ctx, actor.ID, AuditSettingDeleted, map[string]interface{}{"key": key})
	return nil
}

func (s *adminService) ListEmailTemplates(ctx context.Context) ([]models.EmailTemplate, error) {
	return s.repos.EmailTemplates.List(ctx)
}

func (s *adminService) CreateEmailTemplate(ctx context.Context, actor Actor, req models.EmailTemplateRequest) (*models.EmailTemplate, error) {
	fields := map[string]string{}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		fields["name"] = "required"
	}
	if req.Subject == nil || *req.Subject == "" {
		fields["subject"] = "required"
	}
	if req.Body == nil || *req.Body == "" {
		fields["body"] = "required"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation("name, subject and body are required", fields)
	}

	tmpl := &models.EmailTemplate{
		Name:    strings.TrimSpace(*req.Name),
		Subject: *req.Subject,
		Body:    *req.Body,
	}
	if err := checkTemplateSyntax(tmpl); err != nil {
		return nil, err
	}
	if err := s.repos.EmailTemplates.Create(ctx, tmpl); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, AuditEmailTemplate, map[string]interface{}{
		"template": tmpl.Name,
		"op":       "create",
	})
	return tmpl, nil
}

func (s *adminService) UpdateEmailTemplate(ctx context.Context, actor Actor, id uint, req models.EmailTemplateRequest) (*models.EmailTemplate, error) {
	existing, err := s.repos.EmailTemplates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	merged := *existing
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		merged.Name = strings.TrimSpace(*req.Name)
		updates["name"] = merged.Name
	}
	if req.Subject != nil {
		merged.Subject = *req.Subject
		updates["subject"] = merged.Subject
	}
	if req.Body != nil {
		merged.Body = *req.Body
		updates["body"] = merged.Body
	}
	if err := checkTemplateSyntax(&merged); err != nil {
		return nil, err
	}

	tmpl, err := s.repos.EmailTemplates.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, AuditEmailTemplate, map[string]interface{}{
		"template": tmpl.Name,
		"op":       "update",
	})
	return tmpl, nil
}

func (s *adminService) DeleteEmailTemplate(ctx context.Context, actor Actor, id uint) error {
	if err := s.repos.EmailTemplates.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, actor.ID, AuditEmailTemplate, map[string]interface{}{
		"template_id": id,
		"op":          "delete",
	})
	return nil
}

func (s *adminService) AuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	return s.repos.AuditLogs.ListRecent(ctx, limit)
}

func checkTemplateSyntax(tmpl *models.EmailTemplate) error {
	if _, _, err := RenderEmailTemplate(tmpl.Name, tmpl.Subject, tmpl.Body, TemplateData{}); err != nil {
		return apperrors.NewValidation("email template does not render", map[string]string{"body": err.Error()})
	}
	return nil
}

func validateSettingKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", apperrors.NewValidation("setting key is required", map[string]string{"key": "required"})
	}
	return key, nil
}

func parseInternshipType(status string) (models.InternshipType, error) {
	kind := models.InternshipType(strings.ToLower(strings.TrimSpace(status)))
	if !kind.Valid() {
		return "", apperrors.NewValidation("status must be one of unpaid, paid, full-time", map[string]string{"status": "invalid"})
	}
	return kind, nil
}

func roleNames() []string {
	names := make([]string, len(models.Roles))
	for i, r := range models.Roles {
		names[i] = string(r)
	}
	return names
}

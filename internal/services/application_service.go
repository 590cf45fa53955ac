package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"gorm.io/datatypes"

	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/logger"
	"debo-engineering/job-portal/internal/metrics"
	"debo-engineering/job-portal/internal/models"
	"debo-engineering/job-portal/internal/repositories"
)

// SubmitApplicationInput is a parsed application form. Skills holds the raw
// form values and is normalised by ParseSkills.
type SubmitApplicationInput struct {
	JobID           uint
	Skills          []string
	ExperienceLevel string
	CoverLetter     string
	Education       []string
	Resume          *multipart.FileHeader
}

type RateLimit struct {
	Limit  int
	Window time.Duration
}

type ApplicationService interface {
	Submit(ctx context.Context, actor Actor, input SubmitApplicationInput) (*models.Application, error)
	Get(ctx context.Context, actor Actor, id uint) (*models.Application, error)
	ListMine(ctx context.Context, actor Actor) ([]models.Application, error)
	TrackStatus(ctx context.Context, actor Actor, id uint) (*models.ApplicationStatusResponse, error)
	ListByJob(ctx context.Context, jobID uint) ([]models.Application, error)
	ListAll(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error)
	JobsWithApplicantCount(ctx context.Context) ([]models.JobWithCount, error)
	UpdateStatus(ctx context.Context, actor Actor, id uint, target, feedback string) (*models.Application, error)
	BulkUpdate(ctx context.Context, actor Actor, ids []uint, target, feedback string) (*models.BulkUpdateResult, error)
	Shortlist(ctx context.Context, actor Actor, id uint) (*models.Application, error)
	Classify(ctx context.Context, actor Actor, id uint, gadaLevel, internshipType string) (*models.Application, error)
	SendInterviewInvite(ctx context.Context, actor Actor, id uint, details map[string]interface{}) (*models.InterviewInviteResult, error)
	SendFeedback(ctx context.Context, actor Actor, id uint, feedback string) (*models.Application, error)
	InternshipTypeCounts(ctx context.Context) (*models.InternshipTypeCounts, error)
}

type applicationService struct {
	apps      repositories.ApplicationRepository
	jobs      repositories.JobRepository
	users     repositories.UserRepository
	storage   StorageService
	analyzer  ResumeAnalyzer
	notifier  Notifier
	audit     AuditService
	limiter   RateLimiter
	applyRate RateLimit
	log       logger.Logger
}

func NewApplicationService(
	apps repositories.ApplicationRepository,
	jobs repositories.JobRepository,
	users repositories.UserRepository,
	storage StorageService,
	analyzer ResumeAnalyzer,
	notifier Notifier,
	audit AuditService,
	limiter RateLimiter,
	applyRate RateLimit,
	log logger.Logger,
) ApplicationService {
	return &applicationService{
		apps:      apps,
		jobs:      jobs,
		users:     users,
		storage:   storage,
		analyzer:  analyzer,
		notifier:  notifier,
		audit:     audit,
		limiter:   limiter,
		applyRate: applyRate,
		log:       log,
	}
}

func (s *applicationService) Submit(ctx context.Context, actor Actor, input SubmitApplicationInput) (*models.Application, error) {
	if !actor.Role.CanApply() {
		return nil, apperrors.NewForbidden("only applicants and interns can apply for jobs")
	}

	if !s.limiter.Allow(ctx, fmt.Sprintf("apply:%d", actor.ID), s.applyRate.Limit, s.applyRate.Window) {
		metrics.RecordRateLimited("apply")
		return nil, apperrors.NewRateLimited("too many applications, try again later")
	}

	if input.JobID == 0 {
		return nil, apperrors.NewValidation("jobId is required", map[string]string{"jobId": "required"})
	}

	skills := ParseSkills(input.Skills)
	if len(skills) == 0 {
		return nil, apperrors.NewValidation("skills are required and must be a non-empty list", map[string]string{"skills": "required"})
	}

	job, err := s.jobs.FindByID(ctx, input.JobID)
	if err != nil {
		return nil, err
	}
	if !job.AcceptsApplications() {
		return nil, apperrors.NewForbidden("this job is not open for applications")
	}

	var experienceLevel *string
	if level := strings.TrimSpace(input.ExperienceLevel); level != "" {
		experienceLevel = &level
	}
	if err := validateApplicantLevel(job, experienceLevel); err != nil {
		return nil, err
	}

	exists, err := s.apps.ExistsForUserAndJob(ctx, actor.ID, job.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict("you have already applied for this job")
	}

	if input.Resume == nil {
		return nil, apperrors.NewValidation("resume is required", map[string]string{"resume": "required"})
	}

	resumeName, err := s.storage.SaveResume(input.Resume, actor.ID)
	if err != nil {
		return nil, apperrors.NewValidation(err.Error(), map[string]string{"resume": "invalid"})
	}

	insights := s.analyzer.AnalyzeFile(s.storage.GetFilePath(resumeName), skills)

	app := &models.Application{
		UserID:            actor.ID,
		JobID:             job.ID,
		Status:            models.StatusSubmitted,
		ResumePath:        resumeName,
		CoverLetter:       input.CoverLetter,
		Skills:            skills,
		ExperienceLevel:   experienceLevel,
		ParsedSkills:      MergeSkills(insights.DeclaredSkills, insights.Skills),
		ParsedEducation:   insights.Education,
		ParsedExperience:  insights.Experience,
		RecommendedSkills: insights.Skills,
		RecommendedLevel:  insights.RecommendedLevel,
	}

	if err := s.apps.Create(ctx, app); err != nil {
		if removeErr := s.storage.DeleteFile(resumeName); removeErr != nil {
			s.log.Warn("failed to remove orphaned resume", map[string]interface{}{
				"file":  resumeName,
				"error": removeErr,
			})
		}
		return nil, err
	}

	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		s.log.Warn("applicant lookup failed after submission", map[string]interface{}{
			"application_id": app.ID,
			"error":          err,
		})
		return app, nil
	}

	s.backfillProfile(ctx, user, skills, input.Education, resumeName)

	if err := s.notifier.ApplicationReceived(ctx, user, job); err != nil {
		s.log.Warn("application confirmation email failed", map[string]interface{}{
			"application_id": app.ID,
			"error":          err,
		})
	}

	s.log.Info("application submitted", map[string]interface{}{
		"application_id": app.ID,
		"job_id":         job.ID,
		"user_id":        actor.ID,
	})

	return app, nil
}

// validateApplicantLevel enforces the Gada requirements of internship postings.
func validateApplicantLevel(job *models.Job, level *string) error {
	if !job.IsInternship && job.Type != "internship" {
		return nil
	}

	if level == nil {
		return apperrors.NewValidation("valid Gada level required for internships", map[string]string{"experienceLevel": "required"})
	}
	if _, ok := GadaLevelByID(*level); !ok {
		return apperrors.NewValidation("valid Gada level required for internships", map[string]string{"experienceLevel": "unknown level"})
	}

	if job.MinGadaLevel != nil && *job.MinGadaLevel != "" && !MeetsMinimumLevel(*level, *job.MinGadaLevel) {
		return apperrors.NewValidation(
			fmt.Sprintf("applicant's level (%s) is below required level (%s) for this internship", *level, *job.MinGadaLevel),
			map[string]string{"experienceLevel": "below minimum"},
		)
	}
	return nil
}

// backfillProfile fills profile fields the user has not set yet from the application.
func (s *applicationService) backfillProfile(ctx context.Context, user *models.User, skills, education []string, resume string) {
	updates := map[string]interface{}{}
	if len(user.Skills) == 0 && len(skills) > 0 {
		updates["skills"] = datatypes.JSONSlice[string](skills)
	}
	if len(user.Education) == 0 && len(education) > 0 {
		updates["education"] = datatypes.JSONSlice[string](education)
	}
	if user.ResumePath == "" && resume != "" {
		updates["resume_path"] = resume
	}
	if len(updates) == 0 {
		return
	}

	if err := s.users.Update(ctx, user.ID, updates); err != nil {
		s.log.Warn("profile backfill failed", map[string]interface{}{
			"user_id": user.ID,
			"error":   err,
		})
	}
}

func (s *applicationService) Get(ctx context.Context, actor Actor, id uint) (*models.Application, error) {
	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.UserID != actor.ID && !actor.IsStaff() {
		return nil, apperrors.NewForbidden("you can only view your own applications")
	}
	return app, nil
}

func (s *applicationService) ListMine(ctx context.Context, actor Actor) ([]models.Application, error) {
	return s.apps.ListByUser(ctx, actor.ID)
}

func (s *applicationService) TrackStatus(ctx context.Context, actor Actor, id uint) (*models.ApplicationStatusResponse, error) {
	app, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return &models.ApplicationStatusResponse{
		ID:            app.ID,
		Status:        app.Status,
		AppliedAt:     app.CreatedAt,
		StatusHistory: app.StatusHistory,
	}, nil
}

func (s *applicationService) ListByJob(ctx context.Context, jobID uint) ([]models.Application, error) {
	if _, err := s.jobs.FindByID(ctx, jobID); err != nil {
		return nil, err
	}
	return s.apps.ListByJob(ctx, jobID)
}

func (s *applicationService) ListAll(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error) {
	return s.apps.List(ctx, filter)
}

func (s *applicationService) JobsWithApplicantCount(ctx context.Context) ([]models.JobWithCount, error) {
	jobs, err := s.jobs.List(ctx, models.JobFilter{})
	if err != nil {
		return nil, err
	}
	return withApplicantCounts(ctx, s.jobs, jobs)
}

func (s *applicationService) UpdateStatus(ctx context.Context, actor Actor, id uint, target, feedback string) (*models.Application, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	to, err := parseTargetStatus(target)
	if err != nil {
		return nil, err
	}

	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.transition(ctx, actor, app, to, feedback); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, AuditApplicationStatus, map[string]interface{}{
		"application_id": app.ID,
		"status":         string(to),
	})

	return s.apps.FindByID(ctx, id)
}

// BulkUpdate validates every application before changing any of them. Each
// change is then applied in its own transaction.
func (s *applicationService) BulkUpdate(ctx context.Context, actor Actor, ids []uint, target, feedback string) (*models.BulkUpdateResult, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	to, err := parseTargetStatus(target)
	if err != nil {
		return nil, err
	}

	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, apperrors.NewValidation("applicationIds must be a non-empty list", map[string]string{"applicationIds": "required"})
	}
	apps, err := s.apps.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	found := make(map[uint]bool, len(apps))
	for _, app := range apps {
		found[app.ID] = true
	}
	var missing []uint
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewNotFound("applications").WithIDs(missing)
	}

	var invalid []uint
	for _, app := range apps {
		if !CanTransition(app.Status, to) {
			invalid = append(invalid, app.ID)
		}
	}
	if len(invalid) > 0 {
		appErr := apperrors.New(apperrors.CodeInvalidTransition,
			fmt.Sprintf("invalid status transition to %q for some applications", to))
		return nil, appErr.WithIDs(invalid)
	}

	for i := range apps {
		if err := s.transition(ctx, actor, &apps[i], to, feedback); err != nil {
			return nil, err
		}
	}

	s.audit.Record(ctx, actor.ID, AuditApplicationBulk, map[string]interface{}{
		"application_ids": ids,
		"status":          string(to),
	})

	updated, err := s.apps.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &models.BulkUpdateResult{Updated: updated}, nil
}

func (s *applicationService) Shortlist(ctx context.Context, actor Actor, id uint) (*models.Application, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != models.StatusUnderReview {
		return nil, apperrors.NewInvalidTransition(string(app.Status), string(models.StatusShortlisted))
	}

	if err := s.transition(ctx, actor, app, models.StatusShortlisted, ""); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, AuditApplicationStatus, map[string]interface{}{
		"application_id": app.ID,
		"status":         string(models.StatusShortlisted),
	})

	return s.apps.FindByID(ctx, id)
}

// transition persists one validated status change and fires its notifications.
func (s *applicationService) transition(ctx context.Context, actor Actor, app *models.Application, to models.ApplicationStatus, feedback string) error {
	from := app.Status
	if err := ValidateTransition(from, to); err != nil {
		return err
	}

	changedBy := actor.ID
	if err := s.apps.TransitionStatus(ctx, app.ID, from, to, &changedBy, feedback); err != nil {
		return err
	}
	metrics.RecordTransition(string(from), string(to))

	s.log.Info("application status updated", map[string]interface{}{
		"application_id": app.ID,
		"from":           string(from),
		"to":             string(to),
		"actor_id":       actor.ID,
	})

	if app.User == nil || app.Job == nil {
		return nil
	}

	if feedback != "" {
		if err := s.notifier.Feedback(ctx, app.User, app.Job, feedback); err != nil {
			s.log.Warn("feedback email failed", map[string]interface{}{
				"application_id": app.ID,
				"error":          err,
			})
		}
	}

	if err := s.notifier.StatusUpdated(ctx, app.User, app.Job, to); err != nil {
		s.log.Warn("status update email failed", map[string]interface{}{
			"application_id": app.ID,
			"error":          err,
		})
	}
	return nil
}

func (s *applicationService) Classify(ctx context.Context, actor Actor, id uint, gadaLevel, internshipType string) (*models.Application, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	fields := map[string]string{}
	level, ok := GadaLevelByName(gadaLevel)
	if !ok {
		fields["gada_level"] = "unknown level"
	}
	kind := models.InternshipType(strings.ToLower(strings.TrimSpace(internshipType)))
	if !kind.Valid() {
		fields["internship_type"] = "must be one of unpaid, paid, full-time"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation("gada_level and internship_type are required", fields)
	}

	app, err := s.apps.UpdateFields(ctx, id, map[string]interface{}{
		"gada_level":      level.ID,
		"internship_type": string(kind),
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, AuditApplicationClassified, map[string]interface{}{
		"application_id":  id,
		"gada_level":      level.ID,
		"internship_type": string(kind),
	})

	return app, nil
}

func (s *applicationService) SendInterviewInvite(ctx context.Context, actor Actor, id uint, details map[string]interface{}) (*models.InterviewInviteResult, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, apperrors.NewValidation("interviewDetails are required", map[string]string{"interviewDetails": "required"})
	}

	app, err := s.apps.UpdateFields(ctx, id, map[string]interface{}{
		"interview_info": datatypes.JSONMap(details),
	})
	if err != nil {
		return nil, err
	}

	result := &models.InterviewInviteResult{Application: app}
	if app.User != nil && app.Job != nil {
		if err := s.notifier.InterviewInvitation(ctx, app.User, app.Job, details); err != nil {
			s.log.Warn("interview invitation email failed", map[string]interface{}{
				"application_id": id,
				"error":          err,
			})
		} else {
			result.EmailSent = true
		}
	}

	s.audit.Record(ctx, actor.ID, AuditInterviewInvite, map[string]interface{}{
		"application_id": id,
		"email_sent":     result.EmailSent,
	})

	return result, nil
}

func (s *applicationService) SendFeedback(ctx context.Context, actor Actor, id uint, feedback string) (*models.Application, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return nil, apperrors.NewValidation("feedback is required", map[string]string{"feedback": "required"})
	}

	app, err := s.apps.UpdateFields(ctx, id, map[string]interface{}{"feedback": feedback})
	if err != nil {
		return nil, err
	}

	if app.User != nil && app.Job != nil {
		if err := s.notifier.Feedback(ctx, app.User, app.Job, feedback); err != nil {
			s.log.Warn("feedback email failed", map[string]interface{}{
				"application_id": id,
				"error":          err,
			})
		}
	}

	s.audit.Record(ctx, actor.ID, AuditApplicationFeedback, map[string]interface{}{
		"application_id": id,
	})

	return app, nil
}

func (s *applicationService) InternshipTypeCounts(ctx context.Context) (*models.InternshipTypeCounts, error) {
	byApplication, err := s.apps.CountByInternshipType(ctx)
	if err != nil {
		return nil, err
	}
	byIntern, err := s.users.CountInternsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	levels, err := s.users.InternLevels(ctx)
	if err != nil {
		return nil, err
	}

	derived := map[string]int64{}
	for _, level := range levels {
		if kind, ok := DeriveInternshipType(level); ok {
			derived[string(kind)]++
		}
	}

	return &models.InternshipTypeCounts{
		Applications: byApplication,
		Interns:      byIntern,
		Derived:      derived,
	}, nil
}

func parseTargetStatus(target string) (models.ApplicationStatus, error) {
	status, ok := models.ParseApplicationStatus(target)
	if !ok {
		valid := make([]string, len(models.ApplicationStatuses))
		for i, s := range models.ApplicationStatuses {
			valid[i] = string(s)
		}
		return "", apperrors.NewValidation(
			fmt.Sprintf("invalid status %q, expected one of: %s", target, strings.Join(valid, ", ")),
			map[string]string{"status": "invalid"},
		)
	}
	return status, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func withApplicantCounts(ctx context.Context, repo repositories.JobRepository, jobs []models.Job) ([]models.JobWithCount, error) {
	ids := make([]uint, len(jobs))
	for i, job := range jobs {
		ids[i] = job.ID
	}

	counts, err := repo.CountApplicants(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.JobWithCount, len(jobs))
	for i, job := range jobs {
		out[i] = models.JobWithCount{Job: job, ApplicantCount: counts[job.ID]}
	}
	return out, nil
}

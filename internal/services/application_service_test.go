package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/models"
)

func submitInput(t *testing.T, jobID uint) SubmitApplicationInput {
	return SubmitApplicationInput{
		JobID:  jobID,
		Skills: []string{`["Go", "SQL"]`},
		Resume: multipartFile(t, "resume", "cv.pdf", []byte("%PDF-1.4")),
	}
}

func TestSubmitApplication(t *testing.T) {
	env := newServiceEnv(t)
	svc := env.applicationService(NewNoopRateLimiter())
	ctx := context.Background()

	applicant := env.createUser(t, "applicant@example.com", models.RoleApplicant)
	job := env.createJob(t, &models.Job{Title: "Backend Engineer", Type: "full-time"})

	app, err := svc.Submit(ctx, applicant, submitInput(t, job.ID))
	require.NoError(t, err)

	assert.Equal(t, models.StatusSubmitted, app.Status)
	assert.Equal(t, []string{"Go", "SQL"}, []string(app.Skills))
	assert.Equal(t, 5, app.ParsedExperience)
	assert.Equal(t, "Tech Lead", app.RecommendedLevel)
	assert.NotEmpty(t, app.ResumePath)
	assert.Equal(t, []string{TemplateApplicationReceived}, env.notifier.templates())

	user, err := env.users.FindByID(ctx, applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, []string(user.Skills))
	assert.Equal(t, app.ResumePath, user.ResumePath)
}

func TestSubmitApplicationRejectsDuplicate(t *testing.T) {
	env := newServiceEnv(t)
	svc := env.applicationService(NewNoopRateLimiter())
	ctx := context.Background()

	applicant := env.createUser(t, "applicant@example.com", models.RoleApplicant)
	job := env.createJob(t, &models.Job{})

	_, err := svc.Submit(ctx, applicant, submitInput(t, job.ID))
	require.NoError(t, err)

	_, err = svc.Submit(ctx, applicant, submitInput(t, job.ID))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	apps, err := svc.ListMine(ctx, applicant)
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestSubmitApplicationValidation(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	applicant := env.createUser(t, "applicant@example.com", models.RoleApplicant)
	recruiter := env.createUser(t, "recruiter@example.com", models.RoleRecruiter)
	open := env.createJob(t, &models.Job{Title: "Open"})
	closed := env.createJob(t, &models.Job{Title: "Closed", Status: models.JobStatusClosed})
	internship := env.createJob(t, &models.Job{Title: "Intern", Type: "internship", IsInternship: true, MinGadaLevel: strPtr("junior-developer")})

	svc := env.applicationService(NewNoopRateLimiter())

	tests := []struct {
		name  string
		actor Actor
		input func() SubmitApplicationInput
		code  apperrors.Code
	}{
		{"staff cannot apply", recruiter, func() SubmitApplicationInput { return submitInput(t, open.ID) }, apperrors.CodeForbidden},
		{"missing skills", applicant, func() SubmitApplicationInput {
			in := submitInput(t, open.ID)
			in.Skills = []string{" "}
			return in
		}, apperrors.CodeValidation},
		{"unknown job", applicant, func() SubmitApplicationInput { return submitInput(t, 999) }, apperrors.CodeNotFound},
		{"closed job", applicant, func() SubmitApplicationInput { return submitInput(t, closed.ID) }, apperrors.CodeForbidden},
		{"internship without level", applicant, func() SubmitApplicationInput { return submitInput(t, internship.ID) }, apperrors.CodeValidation},
		{"internship below minimum", applicant, func() SubmitApplicationInput {
			in := submitInput(t, internship.ID)
			in.ExperienceLevel = "beginner"
			return in
		}, apperrors.CodeValidation},
		{"missing resume", applicant, func() SubmitApplicationInput {
			in := submitInput(t, open.ID)
			in.Resume = nil
			return in
		}, apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tt.actor, tt.input())
			assert.True(t, apperrors.IsCode(err, tt.code), "got %v", err)
		})
	}

	in := submitInput(t, internship.ID)
	in.ExperienceLevel = "senior-developer"
	app, err := svc.Submit(ctx, applicant, in)
	require.NoError(t, err)
	assert.Equal(t, "senior-developer", *app.ExperienceLevel)
}

func TestSubmitApplicationRateLimited(t *testing.T) {
	env := newServiceEnv(t)
	svc := env.applicationService(denyLimiter{})

	applicant := env.createUser(t, "applicant@example.com", models.RoleApplicant)
	job := env.createJob(t, &models.Job{})

	_, err := svc.Submit(context.Background(), applicant, submitInput(t, job.ID))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeRateLimited))
}

func submitted(t *testing.T, env *serviceEnv, svc ApplicationService, email string, job *models.Job) *models.Application {
	t.Helper()
	applicant := env.createUser(t, email, models.RoleApplicant)
	app, err := svc.Submit(context.Background(), applicant, submitInput(t, job.ID))
	require.NoError(t, err)
	return app
}

func TestUpdateStatusFollowsTransitionTable(t *testing.T) {
	env := newServiceEnv(t)
	svc := env.applicationService(NewNoopRateLimiter())
	ctx := context.Background()

	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	job := env.createJob(t, &models.Job{})
	app := submitted(t, env, svc, "a@example.com", job)

	_, err := svc.UpdateStatus(ctx, admin, app.ID, "interview", "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))

	unchanged, err := env.apps.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, unchanged.Status)
	assert.Empty(t, unchanged.StatusHistory)

	for _, target := range []string{"under_review", "shortlisted", "interview", "accepted"} {
		_, err := svc.UpdateStatus(ctx, admin, app.ID, target, "")
		require.NoError(t, err, target)
	}

	final, err := env.apps.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, final.Status)
	require.Len(t, final.StatusHistory, 4)
	assert.Equal(t, models.StatusUnderReview, final.StatusHistory[0].Status)
	assert.Equal(t, models.StatusAccepted, final.StatusHistory[3].Status)
	require.NotNil(t, final.StatusHistory[3].ChangedBy)
	assert.Equal(t, admin.ID, *final.StatusHistory[3].ChangedBy)

	_, err = svc.UpdateStatus(ctx, admin, app.ID, "rejected", "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))

	_, err = svc.UpdateStatus(ctx, admin, 999, "rejected", "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = svc.UpdateStatus(ctx, admin, app.ID, "hired", "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestUpdateStatusSideEffectsAreBestEffort(t *testing.T) {
	env := newServiceEnv(t)
	svc := env.applicationService(NewNoopRateLimiter())
	ctx := context.Background()

	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	job := env.createJob(t, &models.Job{})
	app := submitted(t, env, svc, "a@example.com", job)

	env.notifier.err = errors.New("smtp down")
	updated, err := svc.UpdateStatus(ctx, admin, app.ID, "rejected", "Thanks for applying")
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, updated.Status)
	assert.Equal(t, "Thanks for applying", updated.Feedback)
	assert.Contains(t, env.notifier.templates(), TemplateFeedback)
	assert.Contains(t, env.notifier.templates(), TemplateStatusUpdate)

	entries, err := env.auditLogs.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, AuditApplicationStatus, entries[0].Action)
}

func TestUpdateStatusRequiresStaff(t *testing.T) {
	env := newServiceEnv(t)
	svc := env.applicationService(NewNoopRateLimiter())

	job := env.createJob(t, &models.Job{})
	app := submitted(t, env, svc, "a@example.com", job)

	_, err := svc.UpdateStatus(context.Background(), Actor{ID: app.UserID, Role: models.RoleApplicant}, app.ID, "under review", "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestBulkUpdateValidatesAllBeforeApplying(t *testing.T) {
	env := newServiceEnv(t)
	svc := env.applicationService(NewNoopRateLimiter())
	ctx := context.Background()

	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	job := env.createJob(t, &models.Job{})
	first := submitted(t, env, svc, "a@example.com", job)
	second := submitted(t, env, svc, "b@example.com", job)
	third := submitted(t, env, svc, "c@example.com", job)

	_, err := svc.UpdateStatus(ctx, admin, third.ID, "under review", "")
	require.NoError(t, err)

	_, err = svc.BulkUpdate(ctx, admin, []uint{first.ID, second.ID, third.ID}, "under review", "")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidTransition, appErr.Code)
	assert.Equal(t, []uint{third.ID}, appErr.IDs)

	for _, id := range []uint{first.ID, second.ID} {
		app, err := env.apps.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusSubmitted, app.Status)
		assert.Empty(t, app.StatusHistory)
	}

	_, err = svc.BulkUpdate(ctx, admin, []uint{first.ID, 404}, "under review", "")
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	assert.Equal(t, []uint{404}, appErr.IDs)

	result, err := svc.BulkUpdate(ctx, admin, []uint{first.ID, second.ID, first.ID}, "under review", "")
	require.NoError(t, err)
	require.Len(t, result.Updated, 2)
	for _, app := range result.Updated {
		assert.Equal(t, models.StatusUnderReview, app.Status)
		assert.Len(t, app.StatusHistory, 1)
	}
}

func TestShortlistRequiresUnderReview(t *testing.T) {
	env := newServiceEnv(t)
	svc := env.applicationService(NewNoopRateLimiter())
	ctx := context.Background()

	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	job := env.createJob(t, &models.Job{})
	app := submitted(t, env, svc, "a@example.com", job)

	_, err := svc.Shortlist(ctx, admin, app.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))

	_, err = svc.UpdateStatus(ctx, admin, app.ID, "under review", "")
	require.NoError(t, err)

	updated, err := svc.Shortlist(ctx, admin, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShortlisted, updated.Status)
}

func TestClassifyAndInterviewInvite(t *testing.T) {
	env := newServiceEnv(t)
	svc := env.applicationService(NewNoopRateLimiter())
	ctx := context.Background()

	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	job := env.createJob(t, &models.Job{})
	app := submitted(t, env, svc, "a@example.com", job)

	_, err := svc.Classify(ctx, admin, app.ID, "wizard", "paid")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	classified, err := svc.Classify(ctx, admin, app.ID, "Junior Developer", "Paid")
	require.NoError(t, err)
	assert.Equal(t, "junior-developer", *classified.GadaLevel)
	assert.Equal(t, "paid", *classified.InternshipType)

	result, err := svc.SendInterviewInvite(ctx, admin, app.ID, map[string]interface{}{"date": "2026-11-02"})
	require.NoError(t, err)
	assert.True(t, result.EmailSent)
	assert.Equal(t, "2026-11-02", result.Application.InterviewInfo["date"])

	env.notifier.err = errors.New("smtp down")
	result, err = svc.SendInterviewInvite(ctx, admin, app.ID, map[string]interface{}{"date": "2026-11-03"})
	require.NoError(t, err)
	assert.False(t, result.EmailSent)

	_, err = svc.SendInterviewInvite(ctx, admin, app.ID, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestTrackStatusIsOwnerScoped(t *testing.T) {
	env := newServiceEnv(t)
	svc := env.applicationService(NewNoopRateLimiter())
	ctx := context.Background()

	job := env.createJob(t, &models.Job{})
	app := submitted(t, env, svc, "a@example.com", job)
	other := env.createUser(t, "b@example.com", models.RoleApplicant)

	status, err := svc.TrackStatus(ctx, Actor{ID: app.UserID, Role: models.RoleApplicant}, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, status.Status)
	assert.Empty(t, status.StatusHistory)
	assert.Equal(t, app.CreatedAt.Unix(), status.AppliedAt.Unix())

	_, err = svc.TrackStatus(ctx, other, app.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestInternshipTypeCountsReportsBothSources(t *testing.T) {
	env := newServiceEnv(t)
	svc := env.applicationService(NewNoopRateLimiter())
	ctx := context.Background()

	intern := env.createUser(t, "intern@example.com", models.RoleIntern)
	_, err := env.users.ClassifyIntern(ctx, intern.ID, nil, "beginner", models.InternshipPaid, nil)
	require.NoError(t, err)

	counts, err := svc.InternshipTypeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Interns["paid"])
	assert.Equal(t, int64(1), counts.Derived["unpaid"])
}

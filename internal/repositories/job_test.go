package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/models"
)

func TestJobRepository_ListFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	internship := true
	require.NoError(t, repo.Create(ctx, &models.Job{Title: "Go Intern", Type: "internship", IsInternship: true, Skills: []string{"Go"}, Category: "engineering"}))
	require.NoError(t, repo.Create(ctx, &models.Job{Title: "Designer", Type: "full-time", Skills: []string{"Figma"}, Category: "design"}))
	require.NoError(t, repo.Create(ctx, &models.Job{Title: "Old Role", Type: "full-time", Skills: []string{"go"}, Status: models.JobStatusClosed}))

	tests := []struct {
		name   string
		filter models.JobFilter
		want   []string
	}{
		{"internship flag", models.JobFilter{IsInternship: &internship}, []string{"Go Intern"}},
		{"category", models.JobFilter{Category: "design"}, []string{"Designer"}},
		{"skills any case", models.JobFilter{Skills: []string{"GO"}}, []string{"Old Role", "Go Intern"}},
		{"status", models.JobFilter{Status: models.JobStatusClosed}, []string{"Old Role"}},
		{"search", models.JobFilter{Search: "design"}, []string{"Designer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)

			titles := make([]string, 0, len(jobs))
			for _, job := range jobs {
				titles = append(titles, job.Title)
			}
			assert.ElementsMatch(t, tt.want, titles)
		})
	}
}

func TestJobRepository_DeleteCascadesApplications(t *testing.T) {
	db := newTestDB(t)
	jobs := NewJobRepository(db)
	apps := NewApplicationRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "applicant@example.com", models.RoleApplicant)
	job := seedJob(t, db, "Backend Engineer")
	require.NoError(t, apps.Create(ctx, &models.Application{UserID: user.ID, JobID: job.ID}))

	counts, err := jobs.CountApplicants(ctx, []uint{job.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[job.ID])

	require.NoError(t, jobs.Delete(ctx, job.ID))

	_, err = jobs.FindByID(ctx, job.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	var remaining int64
	require.NoError(t, db.Model(&models.ApplicationStatusEvent{}).Count(&remaining).Error)
	assert.Zero(t, remaining)

	assert.True(t, apperrors.IsCode(jobs.Delete(ctx, job.ID), apperrors.CodeNotFound))
}

func TestJobRepository_UpdateStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	job := seedJob(t, db, "Backend Engineer")

	updated, err := repo.UpdateStatus(ctx, job.ID, models.JobStatusArchived)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusArchived, updated.Status)

	_, err = repo.UpdateStatus(ctx, 404, models.JobStatusClosed)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

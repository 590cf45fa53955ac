package services

import (
	"context"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/logger"
	"debo-engineering/job-portal/internal/models"
)

func newJobService(env *serviceEnv, index JobIndexService) JobService {
	return NewJobService(env.jobs, env.users, index, env.audit, logger.NewNoOpLogger())
}

func TestCreateJobValidatesPayload(t *testing.T) {
	env := newServiceEnv(t)
	svc := newJobService(env, NewDisabledJobIndex())
	ctx := context.Background()
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)

	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{"missing title", `{"description": "d", "type": "full-time"}`, "title"},
		{"wrong type", `{"title": "t", "description": "d", "type": "full-time", "skills": "Go"}`, "skills"},
		{"bad status", `{"title": "t", "description": "d", "type": "full-time", "status": "open"}`, "status"},
		{"internship without level", `{"title": "t", "description": "d", "type": "internship"}`, "minGadaLevel"},
		{"unknown level", `{"title": "t", "description": "d", "type": "internship", "minGadaLevel": "guru"}`, "minGadaLevel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, admin, []byte(tt.payload))
			appErr, ok := apperrors.As(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, apperrors.CodeValidation, appErr.Code)
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}

	_, err := svc.Create(ctx, Actor{ID: 1, Role: models.RoleApplicant}, []byte(`{}`))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestCreateAndUpdateJob(t *testing.T) {
	env := newServiceEnv(t)
	store := &fakeVectorStore{}
	svc := newJobService(env, NewJobIndexService(store, &fakeEmbedder{}, "jobs", logger.NewNoOpLogger()))
	ctx := context.Background()
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)

	job, err := svc.Create(ctx, admin, []byte(`{
		"title": "Go Intern",
		"description": "Build services",
		"type": "internship",
		"skills": ["Go", "go", "SQL"],
		"minGadaLevel": "beginner",
		"internshipDuration": 12
	}`))
	require.NoError(t, err)
	assert.True(t, job.IsInternship)
	assert.Equal(t, models.JobStatusActive, job.Status)
	assert.Equal(t, []string{"Go", "SQL"}, []string(job.Skills))
	assert.Equal(t, admin.ID, *job.CreatedBy)
	assert.Len(t, store.upserts, 1)

	updated, err := svc.Update(ctx, admin, job.ID, []byte(`{"title": "Senior Go Intern", "minGadaLevel": "junior-developer"}`))
	require.NoError(t, err)
	assert.Equal(t, "Senior Go Intern", updated.Title)
	assert.Equal(t, "junior-developer", *updated.MinGadaLevel)
	assert.Equal(t, "Build services", updated.Description)

	_, err = svc.Update(ctx, admin, job.ID, []byte(`{}`))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = svc.Update(ctx, admin, 999, []byte(`{"title": "x"}`))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	closed, err := svc.UpdateStatus(ctx, admin, job.ID, models.JobStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusClosed, closed.Status)
	assert.NotEmpty(t, store.deletes)
}

func TestDeleteJobArchivesUnlessForced(t *testing.T) {
	env := newServiceEnv(t)
	svc := newJobService(env, NewDisabledJobIndex())
	ctx := context.Background()
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)

	job := env.createJob(t, &models.Job{})

	require.NoError(t, svc.Delete(ctx, admin, job.ID, false))
	archived, err := svc.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusArchived, archived.Status)

	require.NoError(t, svc.Delete(ctx, admin, job.ID, true))
	_, err = svc.Get(ctx, job.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestListJobsWithCounts(t *testing.T) {
	env := newServiceEnv(t)
	svc := newJobService(env, NewDisabledJobIndex())
	apps := env.applicationService(NewNoopRateLimiter())
	ctx := context.Background()

	goJob := env.createJob(t, &models.Job{Title: "Go", Skills: []string{"Go"}})
	env.createJob(t, &models.Job{Title: "Design", Skills: []string{"Figma"}})
	submitted(t, env, apps, "a@example.com", goJob)

	jobs, err := svc.List(ctx, models.JobFilter{Skills: []string{"go,kotlin"}})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, goJob.ID, jobs[0].ID)
	assert.Equal(t, int64(1), jobs[0].ApplicantCount)
}

func TestRecommendedJobs(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "a@example.com", models.RoleApplicant)
	require.NoError(t, env.users.Update(ctx, user.ID, map[string]interface{}{"skills": datatypes.JSONSlice[string]{"Go", "SQL"}}))

	full := env.createJob(t, &models.Job{Title: "Go + SQL", Skills: []string{"Go", "SQL"}})
	half := env.createJob(t, &models.Job{Title: "Go + K8s", Skills: []string{"Go", "Kubernetes"}})
	env.createJob(t, &models.Job{Title: "Closed Go", Skills: []string{"Go"}, Status: models.JobStatusClosed})
	env.createJob(t, &models.Job{Title: "Design", Skills: []string{"Figma"}})

	recs, err := newJobService(env, NewDisabledJobIndex()).Recommended(ctx, user)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, full.ID, recs[0].Job.ID)
	assert.Equal(t, half.ID, recs[1].Job.ID)
	assert.InDelta(t, 0.5, recs[1].Score, 0.001)

	store := &fakeVectorStore{results: []*qdrant.ScoredPoint{
		{Id: qdrant.NewIDNum(uint64(half.ID)), Score: 0.9},
		{Id: qdrant.NewIDNum(999), Score: 0.8},
	}}
	semantic := newJobService(env, NewJobIndexService(store, &fakeEmbedder{}, "jobs", logger.NewNoOpLogger()))

	recs, err = semantic.Recommended(ctx, user)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, half.ID, recs[0].Job.ID)
}

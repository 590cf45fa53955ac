package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/models"
)

func TestApplicationRepository_CreateStartsWithEmptyHistory(t *testing.T) {
	db := newTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "applicant@example.com", models.RoleApplicant)
	job := seedJob(t, db, "Backend Engineer")

	app := &models.Application{UserID: user.ID, JobID: job.ID, ResumePath: "resume.pdf", Skills: []string{"Go"}}
	require.NoError(t, repo.Create(ctx, app))
	assert.Equal(t, models.StatusSubmitted, app.Status)

	loaded, err := repo.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.StatusHistory)
	assert.False(t, loaded.CreatedAt.IsZero())
	require.NotNil(t, loaded.Job)
	assert.Equal(t, "Backend Engineer", loaded.Job.Title)
}

func TestApplicationRepository_DuplicateIsConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "applicant@example.com", models.RoleApplicant)
	job := seedJob(t, db, "Backend Engineer")

	require.NoError(t, repo.Create(ctx, &models.Application{UserID: user.ID, JobID: job.ID}))

	err := repo.Create(ctx, &models.Application{UserID: user.ID, JobID: job.ID})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	var count int64
	require.NoError(t, db.Model(&models.Application{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	exists, err := repo.ExistsForUserAndJob(ctx, user.ID, job.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestApplicationRepository_TransitionStatusAppendsHistory(t *testing.T) {
	db := newTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "applicant@example.com", models.RoleApplicant)
	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)
	job := seedJob(t, db, "Backend Engineer")
	app := &models.Application{UserID: user.ID, JobID: job.ID}
	require.NoError(t, repo.Create(ctx, app))

	steps := []models.ApplicationStatus{models.StatusUnderReview, models.StatusShortlisted, models.StatusInterview}
	from := models.StatusSubmitted
	for _, to := range steps {
		require.NoError(t, repo.TransitionStatus(ctx, app.ID, from, to, &admin.ID, ""))
		from = to
	}

	loaded, err := repo.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInterview, loaded.Status)
	require.Len(t, loaded.StatusHistory, len(steps))
	for i, to := range steps {
		assert.Equal(t, to, loaded.StatusHistory[i].Status)
		if i > 0 {
			assert.False(t, loaded.StatusHistory[i].CreatedAt.Before(loaded.StatusHistory[i-1].CreatedAt))
		}
	}
}

func TestApplicationRepository_TransitionStatusStaleSource(t *testing.T) {
	db := newTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "applicant@example.com", models.RoleApplicant)
	job := seedJob(t, db, "Backend Engineer")
	app := &models.Application{UserID: user.ID, JobID: job.ID}
	require.NoError(t, repo.Create(ctx, app))

	err := repo.TransitionStatus(ctx, app.ID, models.StatusUnderReview, models.StatusShortlisted, nil, "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))

	err = repo.TransitionStatus(ctx, 999, models.StatusSubmitted, models.StatusUnderReview, nil, "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	loaded, err := repo.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, loaded.Status)
	assert.Empty(t, loaded.StatusHistory)
}

func TestApplicationRepository_CountsAndDates(t *testing.T) {
	db := newTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	job := seedJob(t, db, "Intern")
	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		user := seedUser(t, db, email, models.RoleApplicant)
		app := &models.Application{UserID: user.ID, JobID: job.ID}
		require.NoError(t, repo.Create(ctx, app))
		if i == 0 {
			_, err := repo.UpdateFields(ctx, app.ID, map[string]interface{}{
				"gada_level":      "beginner",
				"internship_type": "unpaid",
			})
			require.NoError(t, err)
		}
	}

	byStatus, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), byStatus[string(models.StatusSubmitted)])

	byType, err := repo.CountByInternshipType(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"unpaid": 1}, byType)

	levels, err := repo.CountByGadaLevel(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.LevelCount{{Level: "beginner", Count: 1}}, levels)

	dates, err := repo.CreatedSince(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, dates, 3)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestApplicationRepository_PostgresUniqueViolation(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "applications"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	repo := NewApplicationRepository(db)
	err = repo.Create(context.Background(), &models.Application{UserID: 1, JobID: 2})

	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

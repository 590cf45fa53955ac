package repositories

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"debo-engineering/job-portal/internal/config"
	"debo-engineering/job-portal/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	source := filepath.Join(t.TempDir(), "portal.db") + "?_foreign_keys=on"
	db, err := config.OpenDatabase("sqlite", source, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{Name: "User " + email, Email: email, PasswordHash: "hash", Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedJob(t *testing.T, db *gorm.DB, title string) *models.Job {
	t.Helper()
	job := &models.Job{Title: title, Description: title + " role", Skills: []string{"Go", "SQL"}, Status: models.JobStatusActive}
	require.NoError(t, db.Create(job).Error)
	return job
}

func strPtr(s string) *string {
	return &s
}

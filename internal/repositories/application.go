package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/models"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	ExistsForUserAndJob(ctx context.Context, userID, jobID uint) (bool, error)
	FindByID(ctx context.Context, id uint) (*models.Application, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Application, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Application, error)
	ListByJob(ctx context.Context, jobID uint) ([]models.Application, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error)
	TransitionStatus(ctx context.Context, id uint, from, to models.ApplicationStatus, changedBy *uint, feedback string) error
	UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) (*models.Application, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	CountByInternshipType(ctx context.Context) (map[string]int64, error)
	CountByGadaLevel(ctx context.Context) ([]models.LevelCount, error)
	CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
	Count(ctx context.Context) (int64, error)
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

// Create inserts the application with an empty status history. The
// (user_id, job_id) unique index turns a racing duplicate into a Conflict.
func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.Status == "" {
		app.Status = models.StatusSubmitted
	}

	if err := r.db.WithContext(ctx).Omit("User", "Job", "StatusHistory").Create(app).Error; err != nil {
		return wrapError(err, "application for this job", "create application")
	}
	app.StatusHistory = []models.ApplicationStatusEvent{}
	return nil
}

func (r *applicationRepository) ExistsForUserAndJob(ctx context.Context, userID, jobID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check existing application: %w", err)
	}
	return count > 0, nil
}

func (r *applicationRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("User").
		Preload("Job")
}

func (r *applicationRepository) FindByID(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	if err := r.withRelations(ctx).First(&app, id).Error; err != nil {
		return nil, wrapError(err, "application", "find application")
	}
	return &app, nil
}

func (r *applicationRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Application, error) {
	if len(ids) == 0 {
		return []models.Application{}, nil
	}
	var apps []models.Application
	if err := r.withRelations(ctx).Where("id IN ?", ids).Order("id ASC").Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("failed to find applications: %w", err)
	}
	return apps, nil
}

func (r *applicationRepository) ListByUser(ctx context.Context, userID uint) ([]models.Application, error) {
	var apps []models.Application
	if err := r.withRelations(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("failed to list user applications: %w", err)
	}
	return apps, nil
}

func (r *applicationRepository) ListByJob(ctx context.Context, jobID uint) ([]models.Application, error) {
	return r.List(ctx, models.ApplicationFilter{JobID: jobID})
}

func (r *applicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error) {
	query := r.withRelations(ctx).Order("created_at DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.JobID != 0 {
		query = query.Where("job_id = ?", filter.JobID)
	}

	var apps []models.Application
	if err := query.Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// TransitionStatus moves an application from one status to another and
// appends the history entry in the same transaction. The update is
// conditional on the current status, so a concurrent transition makes this
// one fail instead of overwriting it.
func (r *applicationRepository) TransitionStatus(ctx context.Context, id uint, from, to models.ApplicationStatus, changedBy *uint, feedback string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		}
		if feedback != "" {
			updates["feedback"] = feedback
		}

		result := tx.Model(&models.Application{}).
			Where("id = ? AND status = ?", id, from).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update application status: %w", result.Error)
		}

		if result.RowsAffected == 0 {
			var current models.Application
			if err := tx.Select("id", "status").First(&current, id).Error; err != nil {
				return wrapError(err, "application", "find application")
			}
			return apperrors.NewInvalidTransition(string(current.Status), string(to))
		}

		event := models.ApplicationStatusEvent{
			ApplicationID: id,
			Status:        to,
			ChangedBy:     changedBy,
			Note:          feedback,
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}
		return nil
	})
}

func (r *applicationRepository) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) (*models.Application, error) {
	result := r.db.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update application: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NewNotFound("application")
	}
	return r.FindByID(ctx, id)
}

func (r *applicationRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []groupCount
	if err := r.db.WithContext(ctx).Model(&models.Application{}).
		Select("status AS group_key, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count applications by status: %w", err)
	}
	return toCountMap(rows), nil
}

func (r *applicationRepository) CountByInternshipType(ctx context.Context) (map[string]int64, error) {
	var rows []groupCount
	if err := r.db.WithContext(ctx).Model(&models.Application{}).
		Select("internship_type AS group_key, COUNT(*) AS count").
		Where("internship_type IS NOT NULL").
		Group("internship_type").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count applications by internship type: %w", err)
	}
	return toCountMap(rows), nil
}

func (r *applicationRepository) CountByGadaLevel(ctx context.Context) ([]models.LevelCount, error) {
	var rows []groupCount
	if err := r.db.WithContext(ctx).Model(&models.Application{}).
		Select("gada_level AS group_key, COUNT(*) AS count").
		Where("gada_level IS NOT NULL").
		Group("gada_level").
		Order("gada_level").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count applications by gada level: %w", err)
	}

	counts := make([]models.LevelCount, 0, len(rows))
	for _, row := range rows {
		if row.GroupKey == nil {
			continue
		}
		counts = append(counts, models.LevelCount{Level: *row.GroupKey, Count: row.Count})
	}
	return counts, nil
}

func (r *applicationRepository) CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	var times []time.Time
	if err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("created_at >= ?", since).
		Pluck("created_at", &times).Error; err != nil {
		return nil, fmt.Errorf("failed to load application dates: %w", err)
	}
	return times, nil
}

func (r *applicationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Application{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return count, nil
}

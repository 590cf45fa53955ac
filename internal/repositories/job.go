package repositories

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/models"
)

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	FindByID(ctx context.Context, id uint) (*models.Job, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Job, error)
	List(ctx context.Context, filter models.JobFilter) ([]models.Job, error)
	ListActive(ctx context.Context) ([]models.Job, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Job, error)
	UpdateStatus(ctx context.Context, id uint, status models.JobStatus) (*models.Job, error)
	Delete(ctx context.Context, id uint) error
	CountApplicants(ctx context.Context, jobIDs []uint) (map[uint]int64, error)
	Count(ctx context.Context) (int64, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.Status == "" {
		job.Status = models.JobStatusActive
	}
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return wrapError(err, "job", "create job")
	}
	return nil
}

func (r *jobRepository) FindByID(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).First(&job, id).Error; err != nil {
		return nil, wrapError(err, "job", "find job")
	}
	return &job, nil
}

func (r *jobRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Job, error) {
	if len(ids) == 0 {
		return []models.Job{}, nil
	}
	var jobs []models.Job
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to find jobs: %w", err)
	}
	return jobs, nil
}

// List applies column filters in SQL. The skills filter runs in Go since
// skills are a JSON column on both dialects.
func (r *jobRepository) List(ctx context.Context, filter models.JobFilter) ([]models.Job, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.ExperienceLevel != "" {
		query = query.Where("experience_level = ?", filter.ExperienceLevel)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.IsInternship != nil {
		query = query.Where("is_internship = ?", *filter.IsInternship)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var jobs []models.Job
	if err := query.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	if len(filter.Skills) == 0 {
		return jobs, nil
	}

	filtered := make([]models.Job, 0, len(jobs))
	for _, job := range jobs {
		if hasAnySkill(job.Skills, filter.Skills) {
			filtered = append(filtered, job)
		}
	}
	return filtered, nil
}

func (r *jobRepository) ListActive(ctx context.Context) ([]models.Job, error) {
	return r.List(ctx, models.JobFilter{Status: models.JobStatusActive})
}

func (r *jobRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Job, error) {
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, wrapError(result.Error, "job", "update job")
		}
		if result.RowsAffected == 0 {
			return nil, apperrors.NewNotFound("job")
		}
	}
	return r.FindByID(ctx, id)
}

func (r *jobRepository) UpdateStatus(ctx context.Context, id uint, status models.JobStatus) (*models.Job, error) {
	return r.Update(ctx, id, map[string]interface{}{"status": status})
}

// Delete removes the job along with its applications and their history.
func (r *jobRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appIDs := tx.Model(&models.Application{}).Select("id").Where("job_id = ?", id)
		if err := tx.Where("application_id IN (?)", appIDs).Delete(&models.ApplicationStatusEvent{}).Error; err != nil {
			return fmt.Errorf("failed to delete status history: %w", err)
		}
		if err := tx.Where("job_id = ?", id).Delete(&models.Application{}).Error; err != nil {
			return fmt.Errorf("failed to delete applications: %w", err)
		}

		result := tx.Delete(&models.Job{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete job: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NewNotFound("job")
		}
		return nil
	})
}

func (r *jobRepository) CountApplicants(ctx context.Context, jobIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(jobIDs))
	if len(jobIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		JobID uint
		Count int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Application{}).
		Select("job_id, COUNT(*) AS count").
		Where("job_id IN ?", jobIDs).
		Group("job_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count applicants: %w", err)
	}

	for _, row := range rows {
		counts[row.JobID] = row.Count
	}
	return counts, nil
}

func (r *jobRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Job{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return count, nil
}

func hasAnySkill(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(w)) {
				return true
			}
		}
	}
	return false
}

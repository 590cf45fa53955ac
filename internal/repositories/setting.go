package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/models"
)

type SettingRepository interface {
	List(ctx context.Context) ([]models.Setting, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	Create(ctx context.Context, setting *models.Setting) error
	Upsert(ctx context.Context, key, value string) (*models.Setting, error)
	Delete(ctx context.Context, key string) error
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) List(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

func (r *settingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error; err != nil {
		return nil, wrapError(err, "setting", "find setting")
	}
	return &setting, nil
}

func (r *settingRepository) Create(ctx context.Context, setting *models.Setting) error {
	if err := r.db.WithContext(ctx).Create(setting).Error; err != nil {
		return wrapError(err, "setting", "create setting")
	}
	return nil
}

func (r *settingRepository) Upsert(ctx context.Context, key, value string) (*models.Setting, error) {
	setting := models.Setting{Key: key, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"value": value, "updated_at": time.Now()}),
	}).Create(&setting).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert setting: %w", err)
	}
	return r.Get(ctx, key)
}

func (r *settingRepository) Delete(ctx context.Context, key string) error {
	result := r.db.WithContext(ctx).Where("key = ?", key).Delete(&models.Setting{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete setting: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("setting")
	}
	return nil
}

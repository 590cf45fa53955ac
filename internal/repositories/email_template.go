package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/models"
)

type EmailTemplateRepository interface {
	List(ctx context.Context) ([]models.EmailTemplate, error)
	FindByID(ctx context.Context, id uint) (*models.EmailTemplate, error)
	FindByName(ctx context.Context, name string) (*models.EmailTemplate, error)
	Create(ctx context.Context, tmpl *models.EmailTemplate) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.EmailTemplate, error)
	Delete(ctx context.Context, id uint) error
}

type emailTemplateRepository struct {
	db *gorm.DB
}

func NewEmailTemplateRepository(db *gorm.DB) EmailTemplateRepository {
	return &emailTemplateRepository{db: db}
}

func (r *emailTemplateRepository) List(ctx context.Context) ([]models.EmailTemplate, error) {
	var templates []models.EmailTemplate
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list email templates: %w", err)
	}
	return templates, nil
}

func (r *emailTemplateRepository) FindByID(ctx context.Context, id uint) (*models.EmailTemplate, error) {
	var tmpl models.EmailTemplate
	if err := r.db.WithContext(ctx).First(&tmpl, id).Error; err != nil {
		return nil, wrapError(err, "email template", "find email template")
	}
	return &tmpl, nil
}

func (r *emailTemplateRepository) FindByName(ctx context.Context, name string) (*models.EmailTemplate, error) {
	var tmpl models.EmailTemplate
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tmpl).Error; err != nil {
		return nil, wrapError(err, "email template", "find email template")
	}
	return &tmpl, nil
}

func (r *emailTemplateRepository) Create(ctx context.Context, tmpl *models.EmailTemplate) error {
	if err := r.db.WithContext(ctx).Create(tmpl).Error; err != nil {
		return wrapError(err, "email template with this name", "create email template")
	}
	return nil
}

func (r *emailTemplateRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.EmailTemplate, error) {
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&models.EmailTemplate{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, wrapError(result.Error, "email template with this name", "update email template")
		}
		if result.RowsAffected == 0 {
			return nil, apperrors.NewNotFound("email template")
		}
	}
	return r.FindByID(ctx, id)
}

func (r *emailTemplateRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.EmailTemplate{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete email template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("email template")
	}
	return nil
}

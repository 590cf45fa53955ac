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

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByResetToken(ctx context.Context, token string) (*models.User, error)
	List(ctx context.Context, role models.Role) ([]models.User, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	UpdateRole(ctx context.Context, id uint, role models.Role) (*models.User, error)
	UpdateInternStatus(ctx context.Context, id uint, status models.InternshipType) (*models.User, error)
	ClassifyIntern(ctx context.Context, id uint, expectedPrevious *string, level string, status models.InternshipType, changedBy *uint) (*models.User, error)
	ProgressionHistory(ctx context.Context, userID uint) ([]models.InternProgression, error)
	CountByRole(ctx context.Context) (map[string]int64, error)
	CountInternsByLevel(ctx context.Context) ([]models.LevelCount, error)
	CountInternsByStatus(ctx context.Context) (map[string]int64, error)
	InternLevels(ctx context.Context) ([]string, error)
	ConversionTimes(ctx context.Context, since time.Time) ([]time.Time, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return wrapError(err, "user with this email", "create user")
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, wrapError(err, "user", "find user")
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrapError(err, "user", "find user by email")
	}
	return &user, nil
}

func (r *userRepository) FindByResetToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("reset_token = ?", token).First(&user).Error; err != nil {
		return nil, wrapError(err, "reset token", "find user by reset token")
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, role models.Role) ([]models.User, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return wrapError(result.Error, "user", "update user")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("user")
	}
	return nil
}

// UpdateRole changes a role while keeping at least one super-admin. The
// super-admin rows are locked so concurrent demotions serialise.
func (r *userRepository) UpdateRole(ctx context.Context, id uint, role models.Role) (*models.User, error) {
	var updated models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var superAdmins []models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("role = ?", models.RoleSuperAdmin).
			Find(&superAdmins).Error; err != nil {
			return fmt.Errorf("failed to lock super-admins: %w", err)
		}

		if err := tx.First(&updated, id).Error; err != nil {
			return wrapError(err, "user", "find user")
		}

		if updated.Role == models.RoleSuperAdmin && role != models.RoleSuperAdmin && len(superAdmins) <= 1 {
			return apperrors.NewValidation("cannot demote the only super-admin", map[string]string{"role": "last super-admin"})
		}

		if err := tx.Model(&updated).Update("role", role).Error; err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *userRepository) UpdateInternStatus(ctx context.Context, id uint, status models.InternshipType) (*models.User, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND role = ?", id, models.RoleIntern).
		Update("status", status)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update intern status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NewNotFound("intern")
	}
	return r.FindByID(ctx, id)
}

// ClassifyIntern sets level and status together and appends a progression
// row when the level changes. The update only applies while the stored level
// still equals expectedPrevious; otherwise it returns a Conflict.
func (r *userRepository) ClassifyIntern(ctx context.Context, id uint, expectedPrevious *string, level string, status models.InternshipType, changedBy *uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND role = ?", id, models.RoleIntern).First(&user).Error; err != nil {
			return wrapError(err, "intern", "find intern")
		}

		previous := user.ExperienceLevel
		if !sameLevel(previous, expectedPrevious) {
			return apperrors.NewConflict("intern level changed concurrently, retry")
		}

		query := tx.Model(&models.User{}).Where("id = ?", id)
		if previous == nil {
			query = query.Where("experience_level IS NULL")
		} else {
			query = query.Where("experience_level = ?", *previous)
		}

		result := query.Updates(map[string]interface{}{
			"experience_level": level,
			"status":           status,
			"updated_at":       time.Now(),
		})
		if result.Error != nil {
			return fmt.Errorf("failed to classify intern: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NewConflict("intern level changed concurrently, retry")
		}

		if previous == nil || *previous != level {
			progression := &models.InternProgression{
				UserID:    id,
				FromLevel: previous,
				ToLevel:   level,
				Status:    &status,
				ChangedBy: changedBy,
			}
			if err := tx.Create(progression).Error; err != nil {
				return fmt.Errorf("failed to record progression: %w", err)
			}
		}

		user.ExperienceLevel = &level
		user.Status = &status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func sameLevel(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *userRepository) ProgressionHistory(ctx context.Context, userID uint) ([]models.InternProgression, error) {
	var history []models.InternProgression
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&history).Error; err != nil {
		return nil, fmt.Errorf("failed to load progression history: %w", err)
	}
	return history, nil
}

type groupCount struct {
	GroupKey *string
	Count    int64
}

func (r *userRepository) CountByRole(ctx context.Context) (map[string]int64, error) {
	var rows []groupCount
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("role AS group_key, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count users by role: %w", err)
	}
	return toCountMap(rows), nil
}

func (r *userRepository) CountInternsByLevel(ctx context.Context) ([]models.LevelCount, error) {
	var rows []groupCount
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("experience_level AS group_key, COUNT(*) AS count").
		Where("role = ?", models.RoleIntern).
		Group("experience_level").
		Order("experience_level").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count interns by level: %w", err)
	}

	counts := make([]models.LevelCount, 0, len(rows))
	for _, row := range rows {
		level := "unassigned"
		if row.GroupKey != nil && *row.GroupKey != "" {
			level = *row.GroupKey
		}
		counts = append(counts, models.LevelCount{Level: level, Count: row.Count})
	}
	return counts, nil
}

func (r *userRepository) CountInternsByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []groupCount
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("status AS group_key, COUNT(*) AS count").
		Where("role = ?", models.RoleIntern).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count interns by status: %w", err)
	}
	return toCountMap(rows), nil
}

func (r *userRepository) InternLevels(ctx context.Context) ([]string, error) {
	var levels []string
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND experience_level IS NOT NULL", models.RoleIntern).
		Pluck("experience_level", &levels).Error; err != nil {
		return nil, fmt.Errorf("failed to load intern levels: %w", err)
	}
	return levels, nil
}

// ConversionTimes returns update times of interns converted to full-time since the given time.
func (r *userRepository) ConversionTimes(ctx context.Context, since time.Time) ([]time.Time, error) {
	var times []time.Time
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND status = ? AND updated_at >= ?", models.RoleIntern, models.InternshipFullTime, since).
		Pluck("updated_at", &times).Error; err != nil {
		return nil, fmt.Errorf("failed to load conversions: %w", err)
	}
	return times, nil
}

func toCountMap(rows []groupCount) map[string]int64 {
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		key := "unassigned"
		if row.GroupKey != nil && *row.GroupKey != "" {
			key = *row.GroupKey
		}
		counts[key] += row.Count
	}
	return counts
}

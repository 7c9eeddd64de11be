package repository

import (
	"context"
	"errors"

	"devlink/internal/cache"
	"devlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository defines persistence operations for profiles and their
// work-history and schooling entries.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	GetByHandle(ctx context.Context, handle string) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
	AddExperience(ctx context.Context, exp *models.Experience) error
	RemoveExperience(ctx context.Context, profileID, expID uint) error
	AddEducation(ctx context.Context, edu *models.Education) error
	RemoveEducation(ctx context.Context, profileID, eduID uint) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Entries come back newest-first; id breaks ties between same-day entries.
func entryOrder(db *gorm.DB) *gorm.DB {
	return db.Order(`"from" DESC, id DESC`)
}

func (r *profileRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("Experience", entryOrder).
		Preload("Education", entryOrder)
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	key := cache.ProfileKey(userID)

	err := cache.Aside(ctx, key, &profile, cache.ProfileTTL, func() error {
		if err := r.preloaded(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("noprofile", "There is no profile for this user")
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) GetByHandle(ctx context.Context, handle string) (*models.Profile, error) {
	var profile models.Profile
	key := cache.ProfileHandleKey(handle)

	err := cache.Aside(ctx, key, &profile, cache.ProfileTTL, func() error {
		if err := r.preloaded(ctx).Where("handle = ?", handle).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("noprofile", "There is no profile for this user")
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) List(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile

	err := cache.Aside(ctx, cache.ProfileListKey, &profiles, cache.ProfileListTTL, func() error {
		if err := r.preloaded(ctx).Order("created_at DESC").Find(&profiles).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// Upsert creates or replaces the caller's profile in a single statement.
// The insert lands on the user_id unique index, so two concurrent upserts
// for the same account cannot produce two rows; the loser's values win the
// update. A handle collision with another account surfaces as a duplicate.
func (r *profileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	prevHandle := r.currentHandle(ctx, profile.UserID)

	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"handle", "status", "skills", "company", "website", "location",
				"bio", "github_username", "youtube", "twitter", "linkedin",
				"instagram", "updated_at", "deleted_at",
			}),
		}).
		Create(profile).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateError("handle", "That handle already exists")
		}
		return models.NewInternalError(err)
	}

	cache.InvalidateProfile(ctx, profile.UserID, profile.Handle)
	if prevHandle != "" && prevHandle != profile.Handle {
		// A rename must also drop the old handle's cached lookup.
		cache.Invalidate(ctx, cache.ProfileHandleKey(prevHandle))
	}
	return nil
}

// currentHandle returns the stored handle for an account, or "" when the
// account has no profile.
func (r *profileRepository) currentHandle(ctx context.Context, userID uint) string {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Select("handle").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return ""
	}
	return profile.Handle
}

func (r *profileRepository) AddExperience(ctx context.Context, exp *models.Experience) error {
	if err := r.db.WithContext(ctx).Create(exp).Error; err != nil {
		return models.NewInternalError(err)
	}
	r.invalidateByProfileID(ctx, exp.ProfileID)
	return nil
}

// RemoveExperience deletes by (id, profile_id) in one statement. Zero rows
// affected means the entry never existed, belonged to another profile, or a
// concurrent request already removed it.
func (r *profileRepository) RemoveExperience(ctx context.Context, profileID, expID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", expID, profileID).
		Delete(&models.Experience{})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("experiencenotfound", "Experience entry does not exist")
	}
	r.invalidateByProfileID(ctx, profileID)
	return nil
}

func (r *profileRepository) AddEducation(ctx context.Context, edu *models.Education) error {
	if err := r.db.WithContext(ctx).Create(edu).Error; err != nil {
		return models.NewInternalError(err)
	}
	r.invalidateByProfileID(ctx, edu.ProfileID)
	return nil
}

// RemoveEducation mirrors RemoveExperience for schooling entries.
func (r *profileRepository) RemoveEducation(ctx context.Context, profileID, eduID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", eduID, profileID).
		Delete(&models.Education{})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("educationnotfound", "Education entry does not exist")
	}
	r.invalidateByProfileID(ctx, profileID)
	return nil
}

func (r *profileRepository) invalidateByProfileID(ctx context.Context, profileID uint) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Select("user_id", "handle").First(&profile, profileID).Error; err != nil {
		return
	}
	cache.InvalidateProfile(ctx, profile.UserID, profile.Handle)
}

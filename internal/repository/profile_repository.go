package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"mentorchat/internal/model"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Get() (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query profile failed: %w", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) Create(profile *model.Profile) error {
	if err := r.db.Create(profile).Error; err != nil {
		return fmt.Errorf("create profile failed: %w", err)
	}
	return nil
}

func (r *ProfileRepository) Save(profile *model.Profile) error {
	if err := r.db.Save(profile).Error; err != nil {
		return fmt.Errorf("save profile failed: %w", err)
	}
	return nil
}

// DeleteAll removes the singleton row; the next Get recreates defaults
// through the service.
func (r *ProfileRepository) DeleteAll() error {
	if err := r.db.Where("1 = 1").Delete(&model.Profile{}).Error; err != nil {
		return fmt.Errorf("delete profile failed: %w", err)
	}
	return nil
}

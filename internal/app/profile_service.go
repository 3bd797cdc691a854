package app

import (
	"errors"

	"mentorchat/internal/model"
	"mentorchat/internal/repository"
)

const maxNotesChars = 500

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotesTooLong = errors.New("notes too long (max 500 chars)")
)

type ProfileService struct {
	profileRepo *repository.ProfileRepository
}

func NewProfileService(profileRepo *repository.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

// UpdateProfileInput carries partial updates; nil fields keep their stored
// value.
type UpdateProfileInput struct {
	Name     *string
	Timezone *string
	Tone     *string
	Notes    *string
}

// Ensure returns the singleton profile, creating it with defaults when the
// row is absent. Calling it repeatedly without an intervening delete always
// yields the same row.
func (s *ProfileService) Ensure() (*model.Profile, error) {
	profile, err := s.profileRepo.Get()
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	profile = &model.Profile{
		Timezone: model.DefaultTimezone,
		Tone:     model.DefaultTone,
	}
	if err := s.profileRepo.Create(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) Update(input UpdateProfileInput) (*model.Profile, error) {
	profile, err := s.Ensure()
	if err != nil {
		return nil, err
	}

	if input.Notes != nil && len([]rune(*input.Notes)) > maxNotesChars {
		return nil, ErrNotesTooLong
	}

	if input.Name != nil {
		profile.Name = *input.Name
	}
	if input.Timezone != nil {
		profile.Timezone = *input.Timezone
	}
	if input.Tone != nil {
		profile.Tone = *input.Tone
	}
	if input.Notes != nil {
		profile.Notes = *input.Notes
	}

	if err := s.profileRepo.Save(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) Delete() error {
	return s.profileRepo.DeleteAll()
}

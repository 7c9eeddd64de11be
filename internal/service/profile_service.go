package service

import (
	"context"
	"strings"

	"devlink/internal/models"
	"devlink/internal/repository"
	"devlink/internal/validation"
)

// ProfileService handles profile upserts, lookups, and work-history and
// schooling entries.
type ProfileService struct {
	profileRepo repository.ProfileRepository
}

// NewProfileService returns a new ProfileService.
func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

// SplitSkills converts a comma-separated skills string into a trimmed list,
// dropping empty segments.
func SplitSkills(s string) []string {
	parts := strings.Split(s, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}
	return skills
}

// Upsert creates the caller's profile or replaces it wholesale. Omitted
// optional fields clear their stored values.
func (s *ProfileService) Upsert(ctx context.Context, userID uint, in validation.ProfileInput) (*models.Profile, error) {
	profile := &models.Profile{
		UserID:         userID,
		Handle:         in.Handle,
		Status:         in.Status,
		Skills:         SplitSkills(in.Skills),
		Company:        in.Company,
		Website:        in.Website,
		Location:       in.Location,
		Bio:            in.Bio,
		GithubUsername: in.GithubUsername,
		Youtube:        in.Youtube,
		Twitter:        in.Twitter,
		Linkedin:       in.Linkedin,
		Instagram:      in.Instagram,
	}
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return s.profileRepo.GetByUserID(ctx, userID)
}

// GetMine returns the caller's profile.
func (s *ProfileService) GetMine(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.profileRepo.GetByUserID(ctx, userID)
}

// GetByHandle returns a profile by its public handle.
func (s *ProfileService) GetByHandle(ctx context.Context, handle string) (*models.Profile, error) {
	return s.profileRepo.GetByHandle(ctx, handle)
}

// GetByUserID returns a profile by account id.
func (s *ProfileService) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.profileRepo.GetByUserID(ctx, userID)
}

// List returns all profiles.
func (s *ProfileService) List(ctx context.Context) ([]models.Profile, error) {
	return s.profileRepo.List(ctx)
}

// AddExperience appends a work-history entry to the caller's profile and
// returns the updated profile.
func (s *ProfileService) AddExperience(ctx context.Context, userID uint, in validation.ExperienceInput) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	from, err := validation.ParseDate(in.From)
	if err != nil {
		return nil, models.NewFieldValidationError(map[string]string{"from": "From date is invalid"})
	}

	exp := &models.Experience{
		ProfileID:   profile.ID,
		Title:       in.Title,
		Company:     in.Company,
		Location:    in.Location,
		From:        from,
		Current:     in.Current,
		Description: in.Description,
	}
	if in.To != "" {
		to, err := validation.ParseDate(in.To)
		if err != nil {
			return nil, models.NewFieldValidationError(map[string]string{"to": "To date is invalid"})
		}
		exp.To = &to
	}

	if err := s.profileRepo.AddExperience(ctx, exp); err != nil {
		return nil, err
	}
	return s.profileRepo.GetByUserID(ctx, userID)
}

// RemoveExperience deletes a work-history entry from the caller's profile and
// returns the updated profile.
func (s *ProfileService) RemoveExperience(ctx context.Context, userID, expID uint) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.profileRepo.RemoveExperience(ctx, profile.ID, expID); err != nil {
		return nil, err
	}
	return s.profileRepo.GetByUserID(ctx, userID)
}

// AddEducation appends a schooling entry to the caller's profile and returns
// the updated profile.
func (s *ProfileService) AddEducation(ctx context.Context, userID uint, in validation.EducationInput) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	from, err := validation.ParseDate(in.From)
	if err != nil {
		return nil, models.NewFieldValidationError(map[string]string{"from": "From date is invalid"})
	}

	edu := &models.Education{
		ProfileID:    profile.ID,
		School:       in.School,
		Degree:       in.Degree,
		FieldOfStudy: in.FieldOfStudy,
		From:         from,
		Current:      in.Current,
		Description:  in.Description,
	}
	if in.To != "" {
		to, err := validation.ParseDate(in.To)
		if err != nil {
			return nil, models.NewFieldValidationError(map[string]string{"to": "To date is invalid"})
		}
		edu.To = &to
	}

	if err := s.profileRepo.AddEducation(ctx, edu); err != nil {
		return nil, err
	}
	return s.profileRepo.GetByUserID(ctx, userID)
}

// RemoveEducation deletes a schooling entry from the caller's profile and
// returns the updated profile.
func (s *ProfileService) RemoveEducation(ctx context.Context, userID, eduID uint) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.profileRepo.RemoveEducation(ctx, profile.ID, eduID); err != nil {
		return nil, err
	}
	return s.profileRepo.GetByUserID(ctx, userID)
}

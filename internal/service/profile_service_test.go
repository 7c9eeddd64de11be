package service

import (
	"context"
	"testing"

	"devlink/internal/models"
	"devlink/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	getByUserIDFn      func(context.Context, uint) (*models.Profile, error)
	getByHandleFn      func(context.Context, string) (*models.Profile, error)
	listFn             func(context.Context) ([]models.Profile, error)
	upsertFn           func(context.Context, *models.Profile) error
	addExperienceFn    func(context.Context, *models.Experience) error
	removeExperienceFn func(context.Context, uint, uint) error
	addEducationFn     func(context.Context, *models.Education) error
	removeEducationFn  func(context.Context, uint, uint) error
}

func (s *profileRepoStub) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.getByUserIDFn(ctx, userID)
}
func (s *profileRepoStub) GetByHandle(ctx context.Context, handle string) (*models.Profile, error) {
	return s.getByHandleFn(ctx, handle)
}
func (s *profileRepoStub) List(ctx context.Context) ([]models.Profile, error) {
	return s.listFn(ctx)
}
func (s *profileRepoStub) Upsert(ctx context.Context, profile *models.Profile) error {
	return s.upsertFn(ctx, profile)
}
func (s *profileRepoStub) AddExperience(ctx context.Context, exp *models.Experience) error {
	return s.addExperienceFn(ctx, exp)
}
func (s *profileRepoStub) RemoveExperience(ctx context.Context, profileID, expID uint) error {
	return s.removeExperienceFn(ctx, profileID, expID)
}
func (s *profileRepoStub) AddEducation(ctx context.Context, edu *models.Education) error {
	return s.addEducationFn(ctx, edu)
}
func (s *profileRepoStub) RemoveEducation(ctx context.Context, profileID, eduID uint) error {
	return s.removeEducationFn(ctx, profileID, eduID)
}

func noopProfileRepo() *profileRepoStub {
	return &profileRepoStub{
		getByUserIDFn: func(_ context.Context, userID uint) (*models.Profile, error) {
			return &models.Profile{ID: 100, UserID: userID}, nil
		},
		getByHandleFn:      func(_ context.Context, _ string) (*models.Profile, error) { return &models.Profile{}, nil },
		listFn:             func(_ context.Context) ([]models.Profile, error) { return nil, nil },
		upsertFn:           func(_ context.Context, _ *models.Profile) error { return nil },
		addExperienceFn:    func(_ context.Context, _ *models.Experience) error { return nil },
		removeExperienceFn: func(_ context.Context, _, _ uint) error { return nil },
		addEducationFn:     func(_ context.Context, _ *models.Education) error { return nil },
		removeEducationFn:  func(_ context.Context, _, _ uint) error { return nil },
	}
}

func TestSplitSkills(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"Simple", "Go,SQL,Redis", []string{"Go", "SQL", "Redis"}},
		{"Spaces trimmed", " Go , SQL ", []string{"Go", "SQL"}},
		{"Empty segments dropped", "Go,,SQL,", []string{"Go", "SQL"}},
		{"Only separators", ",,,", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSkills(tt.input))
		})
	}
}

func TestProfileService_Upsert_MapsInput(t *testing.T) {
	repo := noopProfileRepo()
	var saved *models.Profile
	repo.upsertFn = func(_ context.Context, profile *models.Profile) error {
		saved = profile
		return nil
	}

	svc := NewProfileService(repo)
	_, err := svc.Upsert(context.Background(), 8, validation.ProfileInput{
		Handle: "janedoe",
		Status: "Developer",
		Skills: "Go, SQL",
	})
	require.NoError(t, err)

	assert.Equal(t, uint(8), saved.UserID)
	assert.Equal(t, "janedoe", saved.Handle)
	assert.Equal(t, []string{"Go", "SQL"}, saved.Skills)
}

func TestProfileService_AddExperience(t *testing.T) {
	repo := noopProfileRepo()
	var added *models.Experience
	repo.addExperienceFn = func(_ context.Context, exp *models.Experience) error {
		added = exp
		return nil
	}

	svc := NewProfileService(repo)
	_, err := svc.AddExperience(context.Background(), 8, validation.ExperienceInput{
		Title:   "Engineer",
		Company: "Acme",
		From:    "2020-01-15",
		To:      "2022-06-30",
	})
	require.NoError(t, err)

	assert.Equal(t, uint(100), added.ProfileID, "entry must attach to the caller's profile")
	assert.Equal(t, "Engineer", added.Title)
	require.NotNil(t, added.To)
	assert.True(t, added.To.After(added.From))
}

func TestProfileService_AddExperience_NoProfile(t *testing.T) {
	repo := noopProfileRepo()
	repo.getByUserIDFn = func(_ context.Context, _ uint) (*models.Profile, error) {
		return nil, models.NewNotFoundError("noprofile", "There is no profile for this user")
	}

	svc := NewProfileService(repo)
	_, err := svc.AddExperience(context.Background(), 8, validation.ExperienceInput{
		Title: "Engineer", Company: "Acme", From: "2020-01-15",
	})

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "noprofile", appErr.Key)
}

func TestProfileService_RemoveExperience_UsesProfileID(t *testing.T) {
	repo := noopProfileRepo()
	var gotProfileID, gotExpID uint
	repo.removeExperienceFn = func(_ context.Context, profileID, expID uint) error {
		gotProfileID, gotExpID = profileID, expID
		return nil
	}

	svc := NewProfileService(repo)
	_, err := svc.RemoveExperience(context.Background(), 8, 55)
	require.NoError(t, err)

	assert.Equal(t, uint(100), gotProfileID, "removal must be scoped to the caller's profile id, not the account id")
	assert.Equal(t, uint(55), gotExpID)
}

func TestProfileService_AddEducation_InvalidDate(t *testing.T) {
	svc := NewProfileService(noopProfileRepo())
	_, err := svc.AddEducation(context.Background(), 8, validation.EducationInput{
		School: "MIT", Degree: "BSc", From: "not-a-date",
	})

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "from")
}

package server

import (
	"devlink/internal/models"
	"devlink/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetProfiles handles GET /api/profiles
func (s *Server) GetProfiles(c *fiber.Ctx) error {
	profiles, err := s.profileService.List(c.Context())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profiles)
}

// GetMyProfile handles GET /api/profiles/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.GetMine(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profile)
}

// GetProfileByHandle handles GET /api/profiles/handle/:handle
func (s *Server) GetProfileByHandle(c *fiber.Ctx) error {
	profile, err := s.profileService.GetByHandle(c.Context(), c.Params("handle"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profile)
}

// GetProfileByUserID handles GET /api/profiles/owner/:id
func (s *Server) GetProfileByUserID(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	profile, err := s.profileService.GetByUserID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profile)
}

// UpsertProfile handles POST /api/profiles. Creating and updating share one
// endpoint; the store decides which based on the caller's existing row.
func (s *Server) UpsertProfile(c *fiber.Ctx) error {
	var req validation.ProfileInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	if errs, ok := validation.ValidateProfile(req); !ok {
		return models.RespondWithError(c, models.NewFieldValidationError(errs))
	}

	profile, err := s.profileService.Upsert(c.Context(), currentUserID(c), req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profile)
}

// AddExperience handles POST /api/profiles/experience
func (s *Server) AddExperience(c *fiber.Ctx) error {
	var req validation.ExperienceInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	if errs, ok := validation.ValidateExperience(req); !ok {
		return models.RespondWithError(c, models.NewFieldValidationError(errs))
	}

	profile, err := s.profileService.AddExperience(c.Context(), currentUserID(c), req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profile)
}

// DeleteExperience handles DELETE /api/profiles/experience/:id
func (s *Server) DeleteExperience(c *fiber.Ctx) error {
	expID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	profile, err := s.profileService.RemoveExperience(c.Context(), currentUserID(c), expID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profile)
}

// AddEducation handles POST /api/profiles/education
func (s *Server) AddEducation(c *fiber.Ctx) error {
	var req validation.EducationInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	if errs, ok := validation.ValidateEducation(req); !ok {
		return models.RespondWithError(c, models.NewFieldValidationError(errs))
	}

	profile, err := s.profileService.AddEducation(c.Context(), currentUserID(c), req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profile)
}

// DeleteEducation handles DELETE /api/profiles/education/:id
func (s *Server) DeleteEducation(c *fiber.Ctx) error {
	eduID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	profile, err := s.profileService.RemoveEducation(c.Context(), currentUserID(c), eduID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profile)
}

// DeleteAccount handles DELETE /api/profiles. It removes the account and its
// profile; posts stay up under the author's snapshotted name.
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	if err := s.userService.DeleteAccount(c.Context(), currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

package server

import (
	"devlink/internal/auth"
	"devlink/internal/models"
	"devlink/internal/service"
	"devlink/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/accounts/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req validation.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	if errs, ok := validation.ValidateRegister(req); !ok {
		return models.RespondWithError(c, models.NewFieldValidationError(errs))
	}

	user, err := s.userService.Register(c.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login handles POST /api/accounts/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req validation.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	if errs, ok := validation.ValidateLogin(req); !ok {
		return models.RespondWithError(c, models.NewFieldValidationError(errs))
	}

	token, _, err := s.userService.Authenticate(c.Context(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
	})
}

// GetCurrentUser handles GET /api/accounts/me. The identity is echoed from
// the verified claims plus the account record; no session state is consulted.
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	userID := currentUserID(c)

	user, err := s.userService.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	claims := c.Locals("claims").(*auth.Claims)
	return c.JSON(fiber.Map{
		"id":     user.ID,
		"name":   claims.Name,
		"email":  user.Email,
		"avatar": claims.Avatar,
	})
}

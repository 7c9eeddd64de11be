package server

import (
	"devlink/internal/models"
	"devlink/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.List(c.Context())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.GetByID(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req validation.PostInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	if errs, ok := validation.ValidatePost(req); !ok {
		return models.RespondWithError(c, models.NewFieldValidationError(errs))
	}

	post, err := s.postService.Create(c.Context(), currentUserID(c), req.Text)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.postService.Delete(c.Context(), currentUserID(c), postID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.Like(c.Context(), currentUserID(c), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post.Likes)
}

// UnlikePost handles POST /api/posts/:id/unlike
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.Unlike(c.Context(), currentUserID(c), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post.Likes)
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req validation.PostInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	if errs, ok := validation.ValidatePost(req); !ok {
		return models.RespondWithError(c, models.NewFieldValidationError(errs))
	}

	post, err := s.postService.Comment(c.Context(), currentUserID(c), postID, req.Text)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post.Comments)
}

// DeleteComment handles DELETE /api/posts/:id/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.RemoveComment(c.Context(), postID, commentID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post.Comments)
}

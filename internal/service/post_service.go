package service

import (
	"context"

	"devlink/internal/models"
	"devlink/internal/repository"
)

// PostService handles posts, likes, and comments.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo}
}

// Create stores a new post. The author's name and avatar are snapshotted
// from the account record, never taken from the request body.
func (s *PostService) Create(ctx context.Context, userID uint, text string) (*models.Post, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID: userID,
		Text:   text,
		Name:   user.Name,
		Avatar: user.Avatar,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	return s.postRepo.List(ctx)
}

// GetByID returns a single post with its likes and comments.
func (s *PostService) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// Delete removes a post. Only the author may delete it.
func (s *PostService) Delete(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("notauthorized", "User not authorized")
	}
	return s.postRepo.Delete(ctx, postID)
}

// Like records the caller's like and returns the updated post. Liking a post
// twice fails regardless of how close together the two requests land.
func (s *PostService) Like(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if err := s.postRepo.Like(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

// Unlike removes the caller's like and returns the updated post.
func (s *PostService) Unlike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

// Comment appends a comment to a post and returns the updated post. The
// commenter's name and avatar are snapshotted from the account record.
func (s *PostService) Comment(ctx context.Context, userID, postID uint, text string) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID: postID,
		UserID: userID,
		Text:   text,
		Name:   user.Name,
		Avatar: user.Avatar,
	}
	if err := s.postRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

// RemoveComment deletes a comment from a post and returns the updated post.
// Any authenticated account may remove a comment.
func (s *PostService) RemoveComment(ctx context.Context, postID, commentID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if err := s.postRepo.RemoveComment(ctx, postID, commentID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

package service

import (
	"context"
	"testing"

	"devlink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	listFn          func(context.Context) ([]models.Post, error)
	deleteFn        func(context.Context, uint) error
	likeFn          func(context.Context, uint, uint) error
	unlikeFn        func(context.Context, uint, uint) error
	addCommentFn    func(context.Context, *models.Comment) error
	removeCommentFn func(context.Context, uint, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context) ([]models.Post, error) {
	return s.listFn(ctx)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) AddComment(ctx context.Context, comment *models.Comment) error {
	return s.addCommentFn(ctx, comment)
}
func (s *postRepoStub) RemoveComment(ctx context.Context, postID, commentID uint) error {
	return s.removeCommentFn(ctx, postID, commentID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:        func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:       func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listFn:          func(_ context.Context) ([]models.Post, error) { return nil, nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
		likeFn:          func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:        func(_ context.Context, _, _ uint) error { return nil },
		addCommentFn:    func(_ context.Context, _ *models.Comment) error { return nil },
		removeCommentFn: func(_ context.Context, _, _ uint) error { return nil },
	}
}

func TestPostService_Create_SnapshotsAuthor(t *testing.T) {
	userRepo := noopUserRepo()
	userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Name: "Jane", Avatar: "jane.png"}, nil
	}

	postRepo := noopPostRepo()
	var created *models.Post
	postRepo.createFn = func(_ context.Context, post *models.Post) error {
		created = post
		post.ID = 10
		return nil
	}

	svc := NewPostService(postRepo, userRepo)
	post, err := svc.Create(context.Background(), 3, "hello world")
	require.NoError(t, err)

	assert.Equal(t, uint(3), created.UserID)
	assert.Equal(t, "Jane", created.Name)
	assert.Equal(t, "jane.png", created.Avatar)
	assert.Equal(t, uint(10), post.ID)
}

func TestPostService_Delete_OnlyAuthor(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 1}, nil
	}
	deleted := false
	postRepo.deleteFn = func(_ context.Context, _ uint) error {
		deleted = true
		return nil
	}

	svc := NewPostService(postRepo, noopUserRepo())

	err := svc.Delete(context.Background(), 2, 5)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeForbidden, appErr.Code)
	assert.False(t, deleted, "a non-author must never reach the delete")

	require.NoError(t, svc.Delete(context.Background(), 1, 5))
	assert.True(t, deleted)
}

func TestPostService_Like_ChecksPostFirst(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("nopostfound", "No post found with that ID")
	}
	liked := false
	postRepo.likeFn = func(_ context.Context, _, _ uint) error {
		liked = true
		return nil
	}

	svc := NewPostService(postRepo, noopUserRepo())
	_, err := svc.Like(context.Background(), 1, 99)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "nopostfound", appErr.Key)
	assert.False(t, liked)
}

func TestPostService_Like_PropagatesAlreadyLiked(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.likeFn = func(_ context.Context, _, _ uint) error {
		return models.NewAlreadyLikedError()
	}

	svc := NewPostService(postRepo, noopUserRepo())
	_, err := svc.Like(context.Background(), 1, 5)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeAlreadyLiked, appErr.Code)
}

func TestPostService_Comment_SnapshotsAuthor(t *testing.T) {
	userRepo := noopUserRepo()
	userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Name: "Bob", Avatar: "bob.png"}, nil
	}

	postRepo := noopPostRepo()
	var added *models.Comment
	postRepo.addCommentFn = func(_ context.Context, comment *models.Comment) error {
		added = comment
		return nil
	}

	svc := NewPostService(postRepo, userRepo)
	_, err := svc.Comment(context.Background(), 4, 5, "nice post")
	require.NoError(t, err)

	assert.Equal(t, uint(5), added.PostID)
	assert.Equal(t, uint(4), added.UserID)
	assert.Equal(t, "Bob", added.Name)
	assert.Equal(t, "bob.png", added.Avatar)
}

func TestPostService_RemoveComment_Propagates(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.removeCommentFn = func(_ context.Context, _, _ uint) error {
		return models.NewNotFoundError("commentnotexist", "Comment does not exist")
	}

	svc := NewPostService(postRepo, noopUserRepo())
	_, err := svc.RemoveComment(context.Background(), 5, 99)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "commentnotexist", appErr.Key)
}

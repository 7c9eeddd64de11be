// Package service implements the application business logic on top of the
// repository layer.
package service

import (
	"context"
	"crypto/md5"
	"fmt"
	"strings"
	"time"

	"devlink/internal/auth"
	"devlink/internal/models"
	"devlink/internal/repository"
)

// UserService handles account registration, authentication, and removal.
type UserService struct {
	userRepo  repository.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

// RegisterInput carries a validated registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// NewUserService returns a UserService issuing tokens with the given secret
// and lifetime.
func NewUserService(userRepo repository.UserRepository, jwtSecret string, tokenTTL time.Duration) *UserService {
	return &UserService{userRepo: userRepo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// GravatarURL derives the avatar URL for an email address. The hash input is
// the trimmed, lowercased address.
func GravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=200&r=pg&d=mm", md5.Sum([]byte(normalized)))
}

// Register creates a new account. Email uniqueness is enforced by the store's
// unique index, not by a lookup beforehand, so two concurrent registrations
// with the same address cannot both succeed.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Avatar:   GravatarURL(in.Email),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials and issues a bearer token. Unknown email
// and wrong password return the same error so the endpoint cannot be used to
// enumerate registered addresses.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !auth.CheckPassword(password, user.Password) {
		return "", nil, models.NewUnauthorizedError("Invalid credentials")
	}

	token, err := auth.IssueToken(user.ID, user.Name, user.Avatar, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}
	return token, user, nil
}

// GetByID returns the account for an authenticated session.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// DeleteAccount removes the account and its profile. Posts are retained.
func (s *UserService) DeleteAccount(ctx context.Context, id uint) error {
	return s.userRepo.DeleteCascade(ctx, id)
}

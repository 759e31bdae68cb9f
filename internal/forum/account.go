package forum

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/alpost/backend/internal/models"
)

// RegisterInput carries a new account.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=64,excludes=@"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginInput carries login credentials. UsernameOrEmail is treated as an
// email when it contains '@'.
type LoginInput struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.check(input); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hash),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, storeFailure(err)
	}
	return user, nil
}

// Login checks credentials and returns the matching user.
func (s *Service) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	input.UsernameOrEmail = strings.TrimSpace(input.UsernameOrEmail)
	if err := s.check(input); err != nil {
		return nil, err
	}

	login := input.UsernameOrEmail
	if strings.Contains(login, "@") {
		login = strings.ToLower(login)
	}
	user, err := s.store.UserByLogin(ctx, login)
	if err != nil {
		return nil, storeFailure(err)
	}
	if user == nil {
		return nil, invalid("usernameOrEmail", "that user doesn't exist")
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, invalid("password", "incorrect password")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Me returns the session user, or nil when there is no session or the
// account is gone.
func (s *Service) Me(ctx context.Context, userID int64) (*models.User, error) {
	if userID <= 0 {
		return nil, nil
	}
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return user, nil
}

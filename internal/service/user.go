package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cfmconsole/cfm/internal/apperr"
	"github.com/cfmconsole/cfm/internal/model"
	"github.com/cfmconsole/cfm/internal/repository"
	"github.com/cfmconsole/cfm/internal/validation"
)

type UserService struct {
	users repository.UserRepository
	auth  *AuthService
}

func NewUserService(users repository.UserRepository, auth *AuthService) *UserService {
	return &UserService{users: users, auth: auth}
}

type CreateUserInput struct {
	Email       string `json:"email" validate:"required"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"displayName" validate:"max=100"`
	Role        string `json:"role" validate:"required,oneof=admin editor viewer"`
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	in.Email = validation.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := s.auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Storage("failed to hash password", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		DisplayName:  in.DisplayName,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperr.Conflict("email already exists")
		}
		return nil, apperr.Storage("failed to create user", err)
	}

	slog.Info("user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *UserService) ByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.ByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Storage("failed to load user", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Storage("failed to list users", err)
	}
	return users, nil
}

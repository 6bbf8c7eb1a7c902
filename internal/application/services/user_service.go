package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avatarctic/auth-workflow/internal/core/domain/user"
	"github.com/avatarctic/auth-workflow/internal/core/ports"
	"github.com/avatarctic/auth-workflow/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type UserService struct {
	repo   ports.UserRepository
	logger *logrus.Logger
}

func NewUserService(repo ports.UserRepository, logger *logrus.Logger) ports.UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	email := normalizeEmail(req.Email)

	// Validate email uniqueness
	if err := s.ensureEmailAvailable(ctx, email, uuid.Nil); err != nil {
		return nil, err
	}

	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", user.ErrWeakPassword, err)
	}

	hashedPassword, err := user.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if !role.IsValid() {
		role = user.RoleUser
	}

	now := time.Now()
	newUser := &user.User{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(req.Name),
		Email:         email,
		PasswordHash:  hashedPassword,
		Role:          role,
		EmailVerified: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"user_id": newUser.ID}).Info("user registered")
	}

	return newUser, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.repo.GetByEmail(ctx, normalizeEmail(email))
}

func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, req *user.UpdateUserRequest) (*user.User, error) {
	existingUser, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		existingUser.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != existingUser.Email {
			if err := s.ensureEmailAvailable(ctx, email, id); err != nil {
				return nil, err
			}
			existingUser.Email = email
		}
	}
	if req.Password != nil {
		if err := utils.ValidatePassword(*req.Password); err != nil {
			return nil, fmt.Errorf("%w: %v", user.ErrWeakPassword, err)
		}
		hashedPassword, err := user.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		existingUser.PasswordHash = hashedPassword
	}
	if req.EmailVerified != nil {
		existingUser.EmailVerified = *req.EmailVerified
	}
	existingUser.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, existingUser); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return existingUser, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *UserService) ensureEmailAvailable(ctx context.Context, email string, excludeID uuid.UUID) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil && existing.ID != excludeID:
		return fmt.Errorf("%w: %s", user.ErrEmailTaken, email)
	case err != nil && !errors.Is(err, user.ErrNotFound):
		return fmt.Errorf("failed to check email: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

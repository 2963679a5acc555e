package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"task-planner/internal/model"
	"task-planner/internal/repository"
)

// AuthService covers registration, login and profile updates. Passwords
// are stored as bcrypt hashes and never leave this package.
type AuthService struct {
	users *repository.UserRepository
}

func NewAuthService(users *repository.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register creates an account after uniqueness and password checks.
func (s *AuthService) Register(ctx context.Context, username, email, password, confirm string) (*model.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}
	if password != confirm {
		return nil, fmt.Errorf("%w: passwords do not match", ErrValidation)
	}
	if taken, err := s.emailTaken(ctx, email); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: email already exists", ErrValidation)
	}
	if taken, err := s.usernameTaken(ctx, username); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: username already exists", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{Username: username, Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login resolves an account by email and checks the password. A missing
// account and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrInvalidCredentials
	default:
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// UpdateProfile changes username and/or email, skipping empty or unchanged
// fields and enforcing uniqueness on the rest.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, username, email string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	if username != "" && username != user.Username {
		if taken, err := s.usernameTaken(ctx, username); err != nil {
			return nil, err
		} else if taken {
			return nil, fmt.Errorf("%w: username already exists", ErrValidation)
		}
		user.Username = username
	}
	if email != "" && email != user.Email {
		if taken, err := s.emailTaken(ctx, email); err != nil {
			return nil, err
		} else if taken {
			return nil, fmt.Errorf("%w: email already exists", ErrValidation)
		}
		user.Email = email
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetEmail applies a verified email change.
func (s *AuthService) SetEmail(ctx context.Context, userID uint, email string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if taken, err := s.emailTaken(ctx, email); err != nil {
		return err
	} else if taken {
		return fmt.Errorf("%w: email already exists", ErrValidation)
	}
	user.Email = email
	return s.users.Save(ctx, user)
}

// SetPassword applies a verified password change.
func (s *AuthService) SetPassword(ctx context.Context, userID uint, password string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	return s.users.Save(ctx, user)
}

func (s *AuthService) emailTaken(ctx context.Context, email string) (bool, error) {
	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *AuthService) usernameTaken(ctx context.Context, username string) (bool, error) {
	_, err := s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	default:
		return false, err
	}
}

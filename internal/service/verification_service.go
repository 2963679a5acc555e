package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"gorm.io/gorm"

	"task-planner/internal/mailer"
	"task-planner/internal/repository"
)

// Verification purposes.
const (
	PurposeEmailChange    = "email_change"
	PurposePasswordChange = "password_change"
)

// codeTTL is how long a mailed code stays valid.
const codeTTL = 10 * time.Minute

// VerificationService mails six-digit codes and applies the profile change
// they confirm. One live code exists per user and purpose; consuming or
// replacing it invalidates the old one.
type VerificationService struct {
	codes  *repository.VerificationRepository
	users  *repository.UserRepository
	auth   *AuthService
	sender mailer.Sender
}

func NewVerificationService(codes *repository.VerificationRepository, users *repository.UserRepository, auth *AuthService, sender mailer.Sender) *VerificationService {
	return &VerificationService{codes: codes, users: users, auth: auth, sender: sender}
}

// SendCode generates a fresh code for the purpose and mails it to the
// user's current address.
func (s *VerificationService) SendCode(ctx context.Context, userID uint, purpose string) error {
	if purpose != PurposeEmailChange && purpose != PurposePasswordChange {
		return fmt.Errorf("%w: unknown verification purpose %q", ErrValidation, purpose)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return err
	}

	code := fmt.Sprintf("%06d", rand.IntN(900000)+100000)
	if err := s.codes.Put(ctx, userID, purpose, code, time.Now().Add(codeTTL)); err != nil {
		return err
	}

	body := fmt.Sprintf("Your verification code for %s is: %s\n\nThis code will expire in 10 minutes.",
		strings.ReplaceAll(purpose, "_", " "), code)
	if err := s.sender.Send(user.Email, "Verification Code", body); err != nil {
		return fmt.Errorf("send verification code: %w", err)
	}
	return nil
}

// VerifyEmailChange consumes a valid code and applies the new address.
func (s *VerificationService) VerifyEmailChange(ctx context.Context, userID uint, code, newEmail string) error {
	if err := s.consume(ctx, userID, PurposeEmailChange, code); err != nil {
		return err
	}
	return s.auth.SetEmail(ctx, userID, newEmail)
}

// VerifyPasswordChange consumes a valid code and applies the new password.
func (s *VerificationService) VerifyPasswordChange(ctx context.Context, userID uint, code, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	if err := s.consume(ctx, userID, PurposePasswordChange, code); err != nil {
		return err
	}
	return s.auth.SetPassword(ctx, userID, newPassword)
}

// PurgeExpired drops stale codes; wired to a periodic job.
func (s *VerificationService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.codes.PurgeExpired(ctx, time.Now())
}

func (s *VerificationService) consume(ctx context.Context, userID uint, purpose, code string) error {
	stored, err := s.codes.Find(ctx, userID, purpose)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: invalid verification code", ErrValidation)
	default:
		return err
	}

	if time.Now().After(stored.ExpiresAt) || stored.Code != code || code == "" {
		return fmt.Errorf("%w: invalid verification code", ErrValidation)
	}
	return s.codes.Delete(ctx, userID, purpose)
}

package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"task-planner/internal/model"
)

// VerificationRepository stores pending verification codes.
type VerificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// Put stores the latest code for a user and purpose, replacing any
// previous one.
func (r *VerificationRepository) Put(ctx context.Context, userID uint, purpose, code string, expiresAt time.Time) error {
	var existing model.VerificationCode
	db := r.db.WithContext(ctx)
	err := db.Where("user_id = ? AND purpose = ?", userID, purpose).First(&existing).Error
	switch {
	case err == nil:
		existing.Code = code
		existing.ExpiresAt = expiresAt
		if err := db.Save(&existing).Error; err != nil {
			return fmt.Errorf("replace verification code: %w", err)
		}
		return nil
	case err == gorm.ErrRecordNotFound:
		fresh := model.VerificationCode{UserID: userID, Purpose: purpose, Code: code, ExpiresAt: expiresAt}
		if err := db.Create(&fresh).Error; err != nil {
			return fmt.Errorf("create verification code: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find verification code: %w", err)
	}
}

func (r *VerificationRepository) Find(ctx context.Context, userID uint, purpose string) (*model.VerificationCode, error) {
	var code model.VerificationCode
	if err := r.db.WithContext(ctx).Where("user_id = ? AND purpose = ?", userID, purpose).First(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

// Delete removes a consumed or invalidated code.
func (r *VerificationRepository) Delete(ctx context.Context, userID uint, purpose string) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND purpose = ?", userID, purpose).
		Delete(&model.VerificationCode{}).Error; err != nil {
		return fmt.Errorf("delete verification code: %w", err)
	}
	return nil
}

// PurgeExpired drops every code past its expiry. Run periodically.
func (r *VerificationRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&model.VerificationCode{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge verification codes: %w", res.Error)
	}
	return res.RowsAffected, nil
}

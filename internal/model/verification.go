package model

import "time"

// VerificationCode is a short-lived code mailed to a user before a
// sensitive profile change is applied. At most one live code exists per
// user and purpose.
type VerificationCode struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index:idx_user_purpose,unique"`
	Purpose   string `gorm:"index:idx_user_purpose,unique"`
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// WaitlistUser is one subscriber on the marketing waitlist. Email is stored
// exactly as submitted; the unique index makes the store the final arbiter
// of duplicates.
type WaitlistUser struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"type:text;not null;uniqueIndex:idx_waitlist_users_email" json:"email"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (WaitlistUser) TableName() string {
	return "waitlist_users"
}

func (u *WaitlistUser) BeforeCreate(_ *gorm.DB) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	return nil
}

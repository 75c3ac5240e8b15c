package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account managed by the service.
type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Username        string         `gorm:"uniqueIndex;size:40;not null" json:"username"`
	Email           string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password        string         `gorm:"size:255;not null" json:"-"` // Hashed, never exposed in JSON
	Status          UserStatus     `gorm:"size:20;not null;default:active;index" json:"status"`
	EmailVerifiedAt *time.Time     `json:"email_verified_at,omitempty"`
	// ProfileID links the user to an authorization profile.
	// A nil value means the user has no profile assigned (limited access).
	ProfileID *uint    `gorm:"index" json:"profile_id,omitempty"`
	Profile   *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}

// GetUserID makes a user its own owner.
func (u *User) GetUserID() uint { return u.ID }

// Trashed reports whether the user is soft-deleted.
func (u *User) Trashed() bool { return u.DeletedAt.Valid }

// CanLogin reports whether the account may authenticate.
func (u *User) CanLogin() bool { return !u.Trashed() && u.Status == StatusActive }

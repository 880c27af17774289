package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an authenticated user in the system. A user may hold a
// password credential, a linked Google identity, or both; Google-only
// accounts still carry a (random, unusable) password hash.
type User struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email          string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name           string    `json:"name" gorm:"size:255;not null"`
	PasswordHash   string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	GoogleID       *string   `json:"-" gorm:"uniqueIndex;size:255"`
	ProfilePicture string    `json:"profile_picture,omitempty" gorm:"size:1024"`
	EmailVerified  bool      `json:"email_verified" gorm:"default:false"`

	// Google Calendar OAuth credentials.
	GoogleAccessToken  string     `json:"-" gorm:"size:4096"`
	GoogleRefreshToken string     `json:"-" gorm:"size:4096"`
	TokenExpiresAt     *time.Time `json:"-"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`

	// Relations; rows are cascade-deleted with the user.
	Sessions []Session `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Meetings []Meeting `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// CalendarConnected reports whether the user holds a refresh token for
// calendar access.
func (u *User) CalendarConnected() bool {
	return u.GoogleRefreshToken != ""
}

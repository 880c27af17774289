package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session is an audit and revocation record for an issued bearer token.
// Only a SHA-256 hash of the token is stored, never the raw token, so a
// database read compromise cannot replay sessions. Token validity is
// decided by the token's own signature and expiry, not by this table;
// logout deletes the matching row (see auth.SessionRegistry).
type Session struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	TokenHash string    `json:"-" gorm:"size:64;not null;index"`
	UserAgent string    `json:"user_agent" gorm:"size:1024"`
	IPAddress string    `json:"ip_address" gorm:"size:50"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meeting lifecycle statuses.
const (
	MeetingStatusPending         = "pending"
	MeetingStatusPendingApproval = "pending_approval"
	MeetingStatusApproved        = "approved"
	MeetingStatusSent            = "sent"
	MeetingStatusRejected        = "rejected"
)

// StringList is a JSONB-backed string slice column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported source type %T for StringList", src)
	}
}

// GormDataType tells GORM to use jsonb for this type.
func (StringList) GormDataType() string {
	return "jsonb"
}

// Meeting represents a tracked meeting and its approval lifecycle:
// pending -> pending_approval -> approved -> sent, with rejected as the
// terminal outcome of an explicit reject action.
type Meeting struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Title         string     `json:"title" gorm:"size:500;not null"`
	MeetingDate   time.Time  `json:"meeting_date"`
	Transcript    string     `json:"transcript,omitempty" gorm:"type:text"`
	Summary       string     `json:"summary,omitempty" gorm:"type:text"`
	ActionItems   StringList `json:"action_items,omitempty"`
	Status        string     `json:"status" gorm:"size:50;default:'pending';index"`
	HostEmail     string     `json:"host_email" gorm:"size:255"`
	Attendees     StringList `json:"attendees,omitempty"`
	GoogleEventID *string    `json:"google_event_id,omitempty" gorm:"size:255;index"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (m *Meeting) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"esecretary/internal/model"
)

// MeetingStats holds per-status counts for the dashboard.
type MeetingStats struct {
	TotalMeetings int64 `json:"total_meetings"`
	Pending       int64 `json:"pending"`
	PendingReview int64 `json:"pending_approval"`
	Approved      int64 `json:"approved"`
	Sent          int64 `json:"sent"`
	Rejected      int64 `json:"rejected"`
}

// MeetingRepository defines meeting persistence operations.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *model.Meeting) error
	FindByID(ctx context.Context, id, userID uuid.UUID) (*model.Meeting, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Meeting, error)
	Stats(ctx context.Context, userID uuid.UUID) (*MeetingStats, error)
	SetSummary(ctx context.Context, id uuid.UUID, summary string, actionItems model.StringList) error
	Approve(ctx context.Context, id uuid.UUID, suggestions string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	LinkGoogleEvent(ctx context.Context, id, userID uuid.UUID, eventID string) error
	UnlinkGoogleEvent(ctx context.Context, userID uuid.UUID, eventID string) error
}

type meetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository builds a GORM-backed repository.
func NewMeetingRepository(db *gorm.DB) MeetingRepository {
	return &meetingRepository{db: db}
}

func (r *meetingRepository) Create(ctx context.Context, meeting *model.Meeting) error {
	return r.db.WithContext(ctx).Create(meeting).Error
}

// FindByID scopes the lookup to the owning user.
func (r *meetingRepository) FindByID(ctx context.Context, id, userID uuid.UUID) (*model.Meeting, error) {
	var meeting model.Meeting
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&meeting).Error; err != nil {
		return nil, err
	}
	return &meeting, nil
}

func (r *meetingRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Meeting, error) {
	var meetings []model.Meeting
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

func (r *meetingRepository) Stats(ctx context.Context, userID uuid.UUID) (*MeetingStats, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&model.Meeting{}).
		Select("status, COUNT(*) as count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := &MeetingStats{}
	for _, rw := range rows {
		stats.TotalMeetings += rw.Count
		switch rw.Status {
		case model.MeetingStatusPending:
			stats.Pending = rw.Count
		case model.MeetingStatusPendingApproval:
			stats.PendingReview = rw.Count
		case model.MeetingStatusApproved:
			stats.Approved = rw.Count
		case model.MeetingStatusSent:
			stats.Sent = rw.Count
		case model.MeetingStatusRejected:
			stats.Rejected = rw.Count
		}
	}
	return stats, nil
}

// SetSummary stores the transcript-derived summary and moves the meeting to
// pending_approval.
func (r *meetingRepository) SetSummary(ctx context.Context, id uuid.UUID, summary string, actionItems model.StringList) error {
	return r.db.WithContext(ctx).Model(&model.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"summary":      summary,
			"action_items": actionItems,
			"status":       model.MeetingStatusPendingApproval,
		}).Error
}

// Approve marks the meeting approved, stamping approved_at and appending
// host suggestions to the summary when supplied.
func (r *meetingRepository) Approve(ctx context.Context, id uuid.UUID, suggestions string) error {
	updates := map[string]interface{}{
		"status":      model.MeetingStatusApproved,
		"approved_at": time.Now(),
	}
	if suggestions != "" {
		updates["summary"] = gorm.Expr("COALESCE(summary, '') || ?", "\n\n---\nHost Suggestions: "+suggestions)
	}
	return r.db.WithContext(ctx).Model(&model.Meeting{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *meetingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Meeting{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *meetingRepository) LinkGoogleEvent(ctx context.Context, id, userID uuid.UUID, eventID string) error {
	return r.db.WithContext(ctx).Model(&model.Meeting{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("google_event_id", eventID).Error
}

func (r *meetingRepository) UnlinkGoogleEvent(ctx context.Context, userID uuid.UUID, eventID string) error {
	return r.db.WithContext(ctx).Model(&model.Meeting{}).
		Where("google_event_id = ? AND user_id = ?", eventID, userID).
		Update("google_event_id", nil).Error
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"esecretary/internal/model"
	"esecretary/internal/repository"
)

const meetingListLimit = 50

// ErrMeetingNotFound is returned when a meeting does not exist or is not
// owned by the requesting user.
var ErrMeetingNotFound = errors.New("meeting not found")

// CreateMeetingInput describes a new meeting. Zero values fall back to
// defaults: MeetingDate to now, HostEmail to the creator's email.
type CreateMeetingInput struct {
	Title       string
	MeetingDate *time.Time
	HostEmail   string
	Attendees   []string
	Transcript  string
}

// MeetingService handles the meeting approval lifecycle.
type MeetingService interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.Meeting, error)
	Stats(ctx context.Context, userID uuid.UUID) (*repository.MeetingStats, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*model.Meeting, error)
	Create(ctx context.Context, userID uuid.UUID, creatorEmail string, input CreateMeetingInput) (*model.Meeting, error)
	Approve(ctx context.Context, userID, id uuid.UUID, suggestions string) error
	Reject(ctx context.Context, userID, id uuid.UUID) error
}

type meetingService struct {
	meetings repository.MeetingRepository
}

// NewMeetingService creates a new meeting service.
func NewMeetingService(meetings repository.MeetingRepository) MeetingService {
	return &meetingService{meetings: meetings}
}

func (s *meetingService) List(ctx context.Context, userID uuid.UUID) ([]model.Meeting, error) {
	return s.meetings.ListByUser(ctx, userID, meetingListLimit)
}

func (s *meetingService) Stats(ctx context.Context, userID uuid.UUID) (*repository.MeetingStats, error) {
	return s.meetings.Stats(ctx, userID)
}

func (s *meetingService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Meeting, error) {
	meeting, err := s.meetings.FindByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMeetingNotFound
		}
		return nil, fmt.Errorf("find meeting: %w", err)
	}
	return meeting, nil
}

func (s *meetingService) Create(ctx context.Context, userID uuid.UUID, creatorEmail string, input CreateMeetingInput) (*model.Meeting, error) {
	meetingDate := time.Now()
	if input.MeetingDate != nil {
		meetingDate = *input.MeetingDate
	}
	hostEmail := input.HostEmail
	if hostEmail == "" {
		hostEmail = creatorEmail
	}

	meeting := &model.Meeting{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       input.Title,
		MeetingDate: meetingDate,
		Transcript:  input.Transcript,
		Status:      model.MeetingStatusPending,
		HostEmail:   hostEmail,
		Attendees:   input.Attendees,
	}
	if err := s.meetings.Create(ctx, meeting); err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}
	return meeting, nil
}

// Approve moves the meeting to approved, stamping the approval time and
// appending optional host suggestions to the summary.
func (s *meetingService) Approve(ctx context.Context, userID, id uuid.UUID, suggestions string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.meetings.Approve(ctx, id, suggestions)
}

// Reject marks the meeting rejected, the terminal counterpart to approval.
func (s *meetingService) Reject(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.meetings.UpdateStatus(ctx, id, model.MeetingStatusRejected)
}

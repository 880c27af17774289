package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"esecretary/internal/model"
	"esecretary/internal/repository"
)

// MockMeetingRepository is a mock implementation of MeetingRepository.
type MockMeetingRepository struct {
	mock.Mock
}

func (m *MockMeetingRepository) Create(ctx context.Context, meeting *model.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

func (m *MockMeetingRepository) FindByID(ctx context.Context, id, userID uuid.UUID) (*model.Meeting, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Meeting, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) Stats(ctx context.Context, userID uuid.UUID) (*repository.MeetingStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.MeetingStats), args.Error(1)
}

func (m *MockMeetingRepository) SetSummary(ctx context.Context, id uuid.UUID, summary string, actionItems model.StringList) error {
	args := m.Called(ctx, id, summary, actionItems)
	return args.Error(0)
}

func (m *MockMeetingRepository) Approve(ctx context.Context, id uuid.UUID, suggestions string) error {
	args := m.Called(ctx, id, suggestions)
	return args.Error(0)
}

func (m *MockMeetingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockMeetingRepository) LinkGoogleEvent(ctx context.Context, id, userID uuid.UUID, eventID string) error {
	args := m.Called(ctx, id, userID, eventID)
	return args.Error(0)
}

func (m *MockMeetingRepository) UnlinkGoogleEvent(ctx context.Context, userID uuid.UUID, eventID string) error {
	args := m.Called(ctx, userID, eventID)
	return args.Error(0)
}

func TestMeetingService_Create(t *testing.T) {
	userID := uuid.New()

	t.Run("defaults fill in date and host", func(t *testing.T) {
		mockRepo := new(MockMeetingRepository)
		var created *model.Meeting
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Meeting")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*model.Meeting)
			}).Return(nil)

		service := NewMeetingService(mockRepo)
		meeting, err := service.Create(context.Background(), userID, "creator@example.com", CreateMeetingInput{
			Title: "Weekly Sync",
		})

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, meeting, created)
		assert.Equal(t, userID, created.UserID)
		assert.Equal(t, "Weekly Sync", created.Title)
		assert.Equal(t, "creator@example.com", created.HostEmail)
		assert.Equal(t, model.MeetingStatusPending, created.Status)
		assert.WithinDuration(t, time.Now(), created.MeetingDate, time.Minute)
	})

	t.Run("explicit values win over defaults", func(t *testing.T) {
		mockRepo := new(MockMeetingRepository)
		var created *model.Meeting
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Meeting")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*model.Meeting)
			}).Return(nil)

		meetingDate := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
		service := NewMeetingService(mockRepo)
		_, err := service.Create(context.Background(), userID, "creator@example.com", CreateMeetingInput{
			Title:       "Quarterly Review",
			MeetingDate: &meetingDate,
			HostEmail:   "host@example.com",
			Attendees:   []string{"a@example.com", "b@example.com"},
		})

		require.NoError(t, err)
		assert.Equal(t, meetingDate, created.MeetingDate)
		assert.Equal(t, "host@example.com", created.HostEmail)
		assert.Len(t, created.Attendees, 2)
	})
}

func TestMeetingService_Get(t *testing.T) {
	userID := uuid.New()
	meetingID := uuid.New()

	t.Run("found", func(t *testing.T) {
		mockRepo := new(MockMeetingRepository)
		mockRepo.On("FindByID", mock.Anything, meetingID, userID).
			Return(&model.Meeting{ID: meetingID, UserID: userID}, nil)

		service := NewMeetingService(mockRepo)
		meeting, err := service.Get(context.Background(), userID, meetingID)

		require.NoError(t, err)
		assert.Equal(t, meetingID, meeting.ID)
	})

	t.Run("another user's meeting is not found", func(t *testing.T) {
		mockRepo := new(MockMeetingRepository)
		mockRepo.On("FindByID", mock.Anything, meetingID, userID).Return(nil, gorm.ErrRecordNotFound)

		service := NewMeetingService(mockRepo)
		meeting, err := service.Get(context.Background(), userID, meetingID)

		assert.ErrorIs(t, err, ErrMeetingNotFound)
		assert.Nil(t, meeting)
	})
}

func TestMeetingService_Approve(t *testing.T) {
	userID := uuid.New()
	meetingID := uuid.New()

	t.Run("approves owned meeting with suggestions", func(t *testing.T) {
		mockRepo := new(MockMeetingRepository)
		mockRepo.On("FindByID", mock.Anything, meetingID, userID).
			Return(&model.Meeting{ID: meetingID, UserID: userID, Status: model.MeetingStatusPendingApproval}, nil)
		mockRepo.On("Approve", mock.Anything, meetingID, "shorten the intro").Return(nil)

		service := NewMeetingService(mockRepo)
		require.NoError(t, service.Approve(context.Background(), userID, meetingID, "shorten the intro"))
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown meeting", func(t *testing.T) {
		mockRepo := new(MockMeetingRepository)
		mockRepo.On("FindByID", mock.Anything, meetingID, userID).Return(nil, gorm.ErrRecordNotFound)

		service := NewMeetingService(mockRepo)
		err := service.Approve(context.Background(), userID, meetingID, "")

		assert.ErrorIs(t, err, ErrMeetingNotFound)
		mockRepo.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestMeetingService_Reject(t *testing.T) {
	userID := uuid.New()
	meetingID := uuid.New()

	mockRepo := new(MockMeetingRepository)
	mockRepo.On("FindByID", mock.Anything, meetingID, userID).
		Return(&model.Meeting{ID: meetingID, UserID: userID, Status: model.MeetingStatusPendingApproval}, nil)
	mockRepo.On("UpdateStatus", mock.Anything, meetingID, model.MeetingStatusRejected).Return(nil)

	service := NewMeetingService(mockRepo)
	require.NoError(t, service.Reject(context.Background(), userID, meetingID))
	mockRepo.AssertExpectations(t)
}

func TestMeetingService_Stats(t *testing.T) {
	userID := uuid.New()
	mockRepo := new(MockMeetingRepository)
	mockRepo.On("Stats", mock.Anything, userID).Return(&repository.MeetingStats{
		TotalMeetings: 5,
		Pending:       2,
		Approved:      2,
		Sent:          1,
	}, nil)

	service := NewMeetingService(mockRepo)
	stats, err := service.Stats(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalMeetings)
	assert.Equal(t, int64(1), stats.Sent)
}

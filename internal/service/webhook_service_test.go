package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"esecretary/internal/model"
)

func TestWebhookService_RelayMeetingEnd(t *testing.T) {
	t.Run("forwards event with callback url injected", func(t *testing.T) {
		var received MeetingEndEvent
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &received))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"accepted":true}`))
		}))
		defer server.Close()

		service := NewWebhookService(new(MockMeetingRepository), server.URL, "http://localhost:3001/api/webhook/callback")
		response, err := service.RelayMeetingEnd(context.Background(), MeetingEndEvent{
			MeetingID: "meeting-1",
			Title:     "Weekly Sync",
			HostEmail: "host@example.com",
		})

		require.NoError(t, err)
		assert.JSONEq(t, `{"accepted":true}`, string(response))
		assert.Equal(t, "meeting-1", received.MeetingID)
		assert.Equal(t, "http://localhost:3001/api/webhook/callback", received.CallbackURL)
	})

	t.Run("non-json relay response is wrapped", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("OK"))
		}))
		defer server.Close()

		service := NewWebhookService(new(MockMeetingRepository), server.URL, "http://localhost:3001/api/webhook/callback")
		response, err := service.RelayMeetingEnd(context.Background(), MeetingEndEvent{MeetingID: "meeting-1"})

		require.NoError(t, err)
		assert.Equal(t, `"OK"`, string(response))
	})

	t.Run("unreachable relay target", func(t *testing.T) {
		service := NewWebhookService(new(MockMeetingRepository), "http://127.0.0.1:1", "http://localhost:3001/api/webhook/callback")
		_, err := service.RelayMeetingEnd(context.Background(), MeetingEndEvent{MeetingID: "meeting-1"})
		assert.Error(t, err)
	})
}

func TestWebhookService_HandleCallback(t *testing.T) {
	meetingID := uuid.New()

	t.Run("summary_ready stores summary and moves to pending approval", func(t *testing.T) {
		mockRepo := new(MockMeetingRepository)
		mockRepo.On("SetSummary", mock.Anything, meetingID, "the summary", model.StringList{"follow up"}).Return(nil)

		service := NewWebhookService(mockRepo, "http://relay", "http://callback")
		err := service.HandleCallback(context.Background(), meetingID, CallbackActionSummaryReady, "the summary", []string{"follow up"})

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("summary_ready with no action items stores an empty list", func(t *testing.T) {
		mockRepo := new(MockMeetingRepository)
		mockRepo.On("SetSummary", mock.Anything, meetingID, "the summary", model.StringList{}).Return(nil)

		service := NewWebhookService(mockRepo, "http://relay", "http://callback")
		err := service.HandleCallback(context.Background(), meetingID, CallbackActionSummaryReady, "the summary", nil)

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("host_approved approves without suggestions", func(t *testing.T) {
		mockRepo := new(MockMeetingRepository)
		mockRepo.On("Approve", mock.Anything, meetingID, "").Return(nil)

		service := NewWebhookService(mockRepo, "http://relay", "http://callback")
		err := service.HandleCallback(context.Background(), meetingID, CallbackActionHostApproved, "", nil)

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("emails_sent marks the meeting sent", func(t *testing.T) {
		mockRepo := new(MockMeetingRepository)
		mockRepo.On("UpdateStatus", mock.Anything, meetingID, model.MeetingStatusSent).Return(nil)

		service := NewWebhookService(mockRepo, "http://relay", "http://callback")
		err := service.HandleCallback(context.Background(), meetingID, CallbackActionEmailsSent, "", nil)

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown action", func(t *testing.T) {
		service := NewWebhookService(new(MockMeetingRepository), "http://relay", "http://callback")
		err := service.HandleCallback(context.Background(), meetingID, "reticulate_splines", "", nil)
		assert.ErrorIs(t, err, ErrUnknownAction)
	})
}

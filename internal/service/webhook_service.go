package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"esecretary/internal/model"
	"esecretary/internal/repository"
)

// Callback actions the automation tool reports back with.
const (
	CallbackActionSummaryReady = "summary_ready"
	CallbackActionHostApproved = "host_approved"
	CallbackActionEmailsSent   = "emails_sent"
)

// ErrUnknownAction is returned for an unrecognized callback action.
var ErrUnknownAction = errors.New("unknown action")

// MeetingEndEvent is the payload forwarded to the automation tool when a
// meeting ends.
type MeetingEndEvent struct {
	MeetingID   string   `json:"meeting_id"`
	Title       string   `json:"title,omitempty"`
	HostEmail   string   `json:"host_email,omitempty"`
	Attendees   []string `json:"attendees,omitempty"`
	Transcript  string   `json:"transcript,omitempty"`
	CallbackURL string   `json:"callback_url"`
}

// WebhookService relays meeting-end events to the external automation tool
// and applies its status callbacks. The tool is an opaque HTTP collaborator.
type WebhookService struct {
	meetings    repository.MeetingRepository
	relayURL    string
	callbackURL string
	client      *http.Client
}

// NewWebhookService creates the webhook relay. callbackURL is the absolute
// URL of this service's callback endpoint, handed to the automation tool.
func NewWebhookService(meetings repository.MeetingRepository, relayURL, callbackURL string) *WebhookService {
	return &WebhookService{
		meetings:    meetings,
		relayURL:    relayURL,
		callbackURL: callbackURL,
		client:      http.DefaultClient,
	}
}

// RelayMeetingEnd forwards the event to the automation tool and returns its
// raw response. A relay failure is the caller's to report; nothing is
// retried.
func (s *WebhookService) RelayMeetingEnd(ctx context.Context, event MeetingEndEvent) (json.RawMessage, error) {
	event.CallbackURL = s.callbackURL

	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal relay payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.relayURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay meeting end: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read relay response: %w", err)
	}
	if !json.Valid(data) {
		data, _ = json.Marshal(string(data))
	}
	return json.RawMessage(data), nil
}

// HandleCallback applies a status callback from the automation tool to the
// meeting lifecycle.
func (s *WebhookService) HandleCallback(ctx context.Context, meetingID uuid.UUID, action, summary string, actionItems []string) error {
	switch action {
	case CallbackActionSummaryReady:
		items := model.StringList(actionItems)
		if items == nil {
			items = model.StringList{}
		}
		return s.meetings.SetSummary(ctx, meetingID, summary, items)
	case CallbackActionHostApproved:
		return s.meetings.Approve(ctx, meetingID, "")
	case CallbackActionEmailsSent:
		return s.meetings.UpdateStatus(ctx, meetingID, model.MeetingStatusSent)
	default:
		return ErrUnknownAction
	}
}

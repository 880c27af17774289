package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"esecretary/internal/cache"
	"esecretary/internal/repository"
)

const defaultCalendarBaseURL = "https://www.googleapis.com/calendar/v3"

const eventsCacheTTL = time.Minute

// CalendarEvent is the formatted event shape exposed to clients.
type CalendarEvent struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Location    string   `json:"location"`
	Attendees   []string `json:"attendees"`
	MeetLink    string   `json:"meet_link,omitempty"`
	HTMLLink    string   `json:"html_link,omitempty"`
	Status      string   `json:"status,omitempty"`
}

// CreateEventInput describes a new calendar event.
type CreateEventInput struct {
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Attendees   []string
	AddMeetLink bool
	MeetingID   *uuid.UUID // optional meeting to link the event to
}

// CalendarService lists, creates and deletes events on the user's primary
// Google calendar. Access tokens come from the OAuth lifecycle manager,
// which refreshes transparently.
type CalendarService struct {
	oauth    *OAuthService
	meetings repository.MeetingRepository
	cache    *cache.Client
	baseURL  string
	client   *http.Client
}

// NewCalendarService creates a calendar service against the Google
// Calendar v3 API.
func NewCalendarService(oauth *OAuthService, meetings repository.MeetingRepository, cacheClient *cache.Client) *CalendarService {
	return &CalendarService{
		oauth:    oauth,
		meetings: meetings,
		cache:    cacheClient,
		baseURL:  defaultCalendarBaseURL,
		client:   http.DefaultClient,
	}
}

// Wire types for the Calendar v3 API.

type gcalTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

func (t gcalTime) value() string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

type gcalAttendee struct {
	Email string `json:"email"`
}

type gcalEntryPoint struct {
	URI string `json:"uri"`
}

type gcalConferenceData struct {
	EntryPoints   []gcalEntryPoint `json:"entryPoints,omitempty"`
	CreateRequest *struct {
		RequestID             string            `json:"requestId"`
		ConferenceSolutionKey map[string]string `json:"conferenceSolutionKey"`
	} `json:"createRequest,omitempty"`
}

type gcalEvent struct {
	ID             string              `json:"id,omitempty"`
	Summary        string              `json:"summary,omitempty"`
	Description    string              `json:"description,omitempty"`
	Location       string              `json:"location,omitempty"`
	Start          gcalTime            `json:"start,omitempty"`
	End            gcalTime            `json:"end,omitempty"`
	Attendees      []gcalAttendee      `json:"attendees,omitempty"`
	HangoutLink    string              `json:"hangoutLink,omitempty"`
	ConferenceData *gcalConferenceData `json:"conferenceData,omitempty"`
	HTMLLink       string              `json:"htmlLink,omitempty"`
	Status         string              `json:"status,omitempty"`
	Reminders      *struct {
		UseDefault bool `json:"useDefault"`
		Overrides  []struct {
			Method  string `json:"method"`
			Minutes int    `json:"minutes"`
		} `json:"overrides,omitempty"`
	} `json:"reminders,omitempty"`
}

func (e *gcalEvent) meetLink() string {
	if e.HangoutLink != "" {
		return e.HangoutLink
	}
	if e.ConferenceData != nil && len(e.ConferenceData.EntryPoints) > 0 {
		return e.ConferenceData.EntryPoints[0].URI
	}
	return ""
}

func (e *gcalEvent) format() CalendarEvent {
	attendees := make([]string, 0, len(e.Attendees))
	for _, a := range e.Attendees {
		attendees = append(attendees, a.Email)
	}
	title := e.Summary
	if title == "" {
		title = "No title"
	}
	return CalendarEvent{
		ID:          e.ID,
		Title:       title,
		Description: e.Description,
		Start:       e.Start.value(),
		End:         e.End.value(),
		Location:    e.Location,
		Attendees:   attendees,
		MeetLink:    e.meetLink(),
		HTMLLink:    e.HTMLLink,
		Status:      e.Status,
	}
}

// ListEvents fetches up to 50 upcoming events within the next month from
// the user's primary calendar. Results are briefly cached per user.
func (s *CalendarService) ListEvents(ctx context.Context, userID uuid.UUID) ([]CalendarEvent, error) {
	cacheKey := "calendar:events:" + userID.String()
	var cached []CalendarEvent
	if s.cache.GetJSON(ctx, cacheKey, &cached) {
		return cached, nil
	}

	token, err := s.oauth.ValidAccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	params := url.Values{}
	params.Set("timeMin", now.Format(time.RFC3339))
	params.Set("timeMax", now.AddDate(0, 1, 0).Format(time.RFC3339))
	params.Set("maxResults", "50")
	params.Set("singleEvents", "true")
	params.Set("orderBy", "startTime")

	endpoint := s.baseURL + "/calendars/primary/events?" + params.Encode()
	var payload struct {
		Items []gcalEvent `json:"items"`
	}
	if err := s.doJSON(ctx, http.MethodGet, endpoint, token, nil, &payload); err != nil {
		return nil, err
	}

	events := make([]CalendarEvent, 0, len(payload.Items))
	for i := range payload.Items {
		events = append(events, payload.Items[i].format())
	}

	s.cache.SetJSON(ctx, cacheKey, events, eventsCacheTTL)
	return events, nil
}

// CreateEvent creates an event on the primary calendar, optionally with a
// Meet link, sends invites to attendees, and links the resulting event to
// a meeting when MeetingID is set.
func (s *CalendarService) CreateEvent(ctx context.Context, userID uuid.UUID, input CreateEventInput) (*CalendarEvent, error) {
	token, err := s.oauth.ValidAccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"summary":     input.Title,
		"description": input.Description,
		"start": gcalTime{
			DateTime: input.StartTime.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		"end": gcalTime{
			DateTime: input.EndTime.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		"reminders": map[string]interface{}{
			"useDefault": false,
			"overrides": []map[string]interface{}{
				{"method": "email", "minutes": 24 * 60},
				{"method": "popup", "minutes": 30},
			},
		},
	}
	if len(input.Attendees) > 0 {
		attendees := make([]gcalAttendee, 0, len(input.Attendees))
		for _, email := range input.Attendees {
			attendees = append(attendees, gcalAttendee{Email: email})
		}
		body["attendees"] = attendees
	}

	params := url.Values{}
	params.Set("sendUpdates", "all")
	if input.AddMeetLink {
		params.Set("conferenceDataVersion", "1")
		body["conferenceData"] = map[string]interface{}{
			"createRequest": map[string]interface{}{
				"requestId":             fmt.Sprintf("esec-%d", time.Now().UnixNano()),
				"conferenceSolutionKey": map[string]string{"type": "hangoutsMeet"},
			},
		}
	} else {
		params.Set("conferenceDataVersion", "0")
	}

	endpoint := s.baseURL + "/calendars/primary/events?" + params.Encode()
	var created gcalEvent
	if err := s.doJSON(ctx, http.MethodPost, endpoint, token, body, &created); err != nil {
		return nil, err
	}

	if input.MeetingID != nil {
		if err := s.meetings.LinkGoogleEvent(ctx, *input.MeetingID, userID, created.ID); err != nil {
			return nil, fmt.Errorf("link google event: %w", err)
		}
	}

	s.cache.Delete(ctx, "calendar:events:"+userID.String())

	event := created.format()
	return &event, nil
}

// DeleteEvent removes an event from the primary calendar and clears its
// linkage from any meeting that referenced it.
func (s *CalendarService) DeleteEvent(ctx context.Context, userID uuid.UUID, eventID string) error {
	token, err := s.oauth.ValidAccessToken(ctx, userID)
	if err != nil {
		return err
	}

	endpoint := s.baseURL + "/calendars/primary/events/" + url.PathEscape(eventID)
	if err := s.doJSON(ctx, http.MethodDelete, endpoint, token, nil, nil); err != nil {
		return err
	}

	if err := s.meetings.UnlinkGoogleEvent(ctx, userID, eventID); err != nil {
		return fmt.Errorf("unlink google event: %w", err)
	}

	s.cache.Delete(ctx, "calendar:events:"+userID.String())
	return nil
}

func (s *CalendarService) doJSON(ctx context.Context, method, endpoint, token string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal calendar request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build calendar request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("call calendar api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrReauthorizationRequired
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("calendar api: unexpected status %d", resp.StatusCode)
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode calendar response: %w", err)
	}
	return nil
}

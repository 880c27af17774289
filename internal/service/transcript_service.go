package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"esecretary/internal/cache"
)

const defaultFirefliesEndpoint = "https://api.fireflies.ai/graphql"

const (
	transcriptListCacheTTL   = time.Minute
	transcriptDetailCacheTTL = 5 * time.Minute
)

var (
	// ErrTranscriptNotFound is returned when no transcript exists for an id.
	ErrTranscriptNotFound = errors.New("transcript not found")
	// ErrTranscriptionAPI wraps failures reported by the transcription API.
	ErrTranscriptionAPI = errors.New("transcription api error")
)

const recentTranscriptsQuery = `
	query RecentTranscripts($limit: Int) {
		transcripts(limit: $limit) {
			id
			title
			date
			duration
			transcript_url
			audio_url
			video_url
			participants
			summary {
				overview
				action_items
				keywords
			}
			sentences {
				text
				speaker_name
			}
			meeting_attendees {
				displayName
				email
				name
			}
		}
	}`

const transcriptDetailQuery = `
	query TranscriptDetail($id: String!) {
		transcript(id: $id) {
			id
			title
			date
			duration
			transcript_url
			audio_url
			video_url
			participants
			summary {
				overview
				action_items
				keywords
				outline
				shorthand_bullet
			}
			sentences {
				text
				speaker_name
				start_time
				end_time
			}
			meeting_attendees {
				displayName
				email
				name
			}
		}
	}`

const statusQuery = `{ user { email name } }`

// Raw transcription API shapes.

type firefliesSummary struct {
	Overview        string   `json:"overview"`
	ActionItems     []string `json:"action_items"`
	Keywords        []string `json:"keywords"`
	Outline         string   `json:"outline"`
	ShorthandBullet string   `json:"shorthand_bullet"`
}

type firefliesSentence struct {
	Text        string  `json:"text"`
	SpeakerName string  `json:"speaker_name"`
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
}

type firefliesAttendee struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Name        string `json:"name"`
}

type firefliesTranscript struct {
	ID               string              `json:"id"`
	Title            string              `json:"title"`
	Date             float64             `json:"date"`
	Duration         int                 `json:"duration"`
	TranscriptURL    string              `json:"transcript_url"`
	AudioURL         string              `json:"audio_url"`
	VideoURL         string              `json:"video_url"`
	Participants     []string            `json:"participants"`
	Summary          *firefliesSummary   `json:"summary"`
	Sentences        []firefliesSentence `json:"sentences"`
	MeetingAttendees []firefliesAttendee `json:"meeting_attendees"`
}

// TranscriptSummary is the list-item shape exposed to clients.
type TranscriptSummary struct {
	ID                string              `json:"id"`
	Title             string              `json:"title"`
	Date              float64             `json:"date"`
	Duration          int                 `json:"duration"`
	DurationFormatted string              `json:"duration_formatted"`
	TranscriptURL     string              `json:"transcript_url,omitempty"`
	AudioURL          string              `json:"audio_url,omitempty"`
	VideoURL          string              `json:"video_url,omitempty"`
	Participants      []string            `json:"participants"`
	Attendees         []firefliesAttendee `json:"attendees"`
	Summary           string              `json:"summary,omitempty"`
	ActionItems       []string            `json:"action_items"`
	Keywords          []string            `json:"keywords"`
	SentenceCount     int                 `json:"sentence_count"`
}

// TranscriptSentence is one sentence of a detailed transcript.
type TranscriptSentence struct {
	Text      string  `json:"text"`
	Speaker   string  `json:"speaker"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// TranscriptDetail is the full transcript shape exposed to clients.
type TranscriptDetail struct {
	ID                string               `json:"id"`
	Title             string               `json:"title"`
	Date              float64              `json:"date"`
	Duration          int                  `json:"duration"`
	DurationFormatted string               `json:"duration_formatted"`
	TranscriptURL     string               `json:"transcript_url,omitempty"`
	AudioURL          string               `json:"audio_url,omitempty"`
	VideoURL          string               `json:"video_url,omitempty"`
	Participants      []string             `json:"participants"`
	Attendees         []firefliesAttendee  `json:"attendees"`
	Summary           TranscriptSummaryDoc `json:"summary"`
	Sentences         []TranscriptSentence `json:"sentences"`
}

// TranscriptSummaryDoc is the summary block of a detailed transcript.
type TranscriptSummaryDoc struct {
	Overview    string   `json:"overview"`
	ActionItems []string `json:"action_items"`
	Keywords    []string `json:"keywords"`
	Outline     string   `json:"outline,omitempty"`
	Bullets     string   `json:"bullets,omitempty"`
}

// TranscriptService queries the transcription provider's GraphQL API for
// meeting transcripts, summaries and sentence-level text.
type TranscriptService struct {
	apiKey   string
	endpoint string
	client   *http.Client
	cache    *cache.Client
}

// NewTranscriptService creates a transcript service. An empty API key is
// allowed; Status reports it as not configured and queries fail.
func NewTranscriptService(apiKey string, cacheClient *cache.Client) *TranscriptService {
	return &TranscriptService{
		apiKey:   apiKey,
		endpoint: defaultFirefliesEndpoint,
		client:   http.DefaultClient,
		cache:    cacheClient,
	}
}

// Recent returns up to limit recent transcripts, formatted for clients.
func (s *TranscriptService) Recent(ctx context.Context, limit int) ([]TranscriptSummary, error) {
	cacheKey := fmt.Sprintf("fireflies:transcripts:%d", limit)
	var cached []TranscriptSummary
	if s.cache.GetJSON(ctx, cacheKey, &cached) {
		return cached, nil
	}

	var payload struct {
		Transcripts []firefliesTranscript `json:"transcripts"`
	}
	if err := s.query(ctx, recentTranscriptsQuery, map[string]interface{}{"limit": limit}, &payload); err != nil {
		return nil, err
	}

	summaries := make([]TranscriptSummary, 0, len(payload.Transcripts))
	for i := range payload.Transcripts {
		summaries = append(summaries, formatTranscriptSummary(&payload.Transcripts[i]))
	}

	s.cache.SetJSON(ctx, cacheKey, summaries, transcriptListCacheTTL)
	return summaries, nil
}

// Detail returns a single transcript with sentence-level text.
func (s *TranscriptService) Detail(ctx context.Context, id string) (*TranscriptDetail, error) {
	cacheKey := "fireflies:transcript:" + id
	var cached TranscriptDetail
	if s.cache.GetJSON(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	var payload struct {
		Transcript *firefliesTranscript `json:"transcript"`
	}
	if err := s.query(ctx, transcriptDetailQuery, map[string]interface{}{"id": id}, &payload); err != nil {
		return nil, err
	}
	if payload.Transcript == nil {
		return nil, ErrTranscriptNotFound
	}

	detail := formatTranscriptDetail(payload.Transcript)
	s.cache.SetJSON(ctx, cacheKey, detail, transcriptDetailCacheTTL)
	return detail, nil
}

// Status reports whether the transcription API is configured and reachable.
func (s *TranscriptService) Status(ctx context.Context) (connected bool, userEmail, message string) {
	if s.apiKey == "" {
		return false, "", "Transcription API key not configured"
	}

	var payload struct {
		User struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"user"`
	}
	if err := s.query(ctx, statusQuery, nil, &payload); err != nil {
		return false, "", err.Error()
	}
	return true, payload.User.Email, ""
}

func (s *TranscriptService) query(ctx context.Context, query string, variables map[string]interface{}, dest interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("call transcription api: %w", err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode graphql response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("%w: %s", ErrTranscriptionAPI, envelope.Errors[0].Message)
	}
	if dest != nil && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, dest); err != nil {
			return fmt.Errorf("unmarshal graphql data: %w", err)
		}
	}
	return nil
}

func formatTranscriptSummary(t *firefliesTranscript) TranscriptSummary {
	out := TranscriptSummary{
		ID:                t.ID,
		Title:             titleOrDefault(t.Title),
		Date:              t.Date,
		Duration:          t.Duration,
		DurationFormatted: FormatDuration(t.Duration),
		TranscriptURL:     t.TranscriptURL,
		AudioURL:          t.AudioURL,
		VideoURL:          t.VideoURL,
		Participants:      emptyIfNil(t.Participants),
		Attendees:         t.MeetingAttendees,
		ActionItems:       []string{},
		Keywords:          []string{},
		SentenceCount:     len(t.Sentences),
	}
	if out.Attendees == nil {
		out.Attendees = []firefliesAttendee{}
	}
	if t.Summary != nil {
		out.Summary = t.Summary.Overview
		out.ActionItems = emptyIfNil(t.Summary.ActionItems)
		out.Keywords = emptyIfNil(t.Summary.Keywords)
	}
	return out
}

func formatTranscriptDetail(t *firefliesTranscript) *TranscriptDetail {
	detail := &TranscriptDetail{
		ID:                t.ID,
		Title:             titleOrDefault(t.Title),
		Date:              t.Date,
		Duration:          t.Duration,
		DurationFormatted: FormatDuration(t.Duration),
		TranscriptURL:     t.TranscriptURL,
		AudioURL:          t.AudioURL,
		VideoURL:          t.VideoURL,
		Participants:      emptyIfNil(t.Participants),
		Attendees:         t.MeetingAttendees,
		Sentences:         make([]TranscriptSentence, 0, len(t.Sentences)),
	}
	if detail.Attendees == nil {
		detail.Attendees = []firefliesAttendee{}
	}
	if t.Summary != nil {
		detail.Summary = TranscriptSummaryDoc{
			Overview:    t.Summary.Overview,
			ActionItems: emptyIfNil(t.Summary.ActionItems),
			Keywords:    emptyIfNil(t.Summary.Keywords),
			Outline:     t.Summary.Outline,
			Bullets:     t.Summary.ShorthandBullet,
		}
	}
	for _, sentence := range t.Sentences {
		detail.Sentences = append(detail.Sentences, TranscriptSentence{
			Text:      sentence.Text,
			Speaker:   sentence.SpeakerName,
			StartTime: sentence.StartTime,
			EndTime:   sentence.EndTime,
		})
	}
	return detail
}

func titleOrDefault(title string) string {
	if title == "" {
		return "Untitled Meeting"
	}
	return title
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// FormatDuration renders a duration in minutes as a human-readable string.
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "Unknown"
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dh", hours)
}

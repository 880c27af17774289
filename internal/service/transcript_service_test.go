package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGraphQL serves a fixed GraphQL data payload, capturing the last query.
func fakeGraphQL(t *testing.T, data string) (*TranscriptService, *string) {
	t.Helper()
	var lastQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		lastQuery = req.Query
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":` + data + `}`))
	}))
	t.Cleanup(server.Close)

	service := NewTranscriptService("test-key", nil)
	service.endpoint = server.URL
	return service, &lastQuery
}

func TestTranscriptService_Recent(t *testing.T) {
	service, lastQuery := fakeGraphQL(t, `{
		"transcripts": [{
			"id": "tr-1",
			"title": "",
			"date": 1756500000000,
			"duration": 95,
			"participants": ["a@example.com"],
			"summary": {
				"overview": "Discussed the launch.",
				"action_items": ["ship it"],
				"keywords": ["launch"]
			},
			"sentences": [
				{"text": "Hello", "speaker_name": "Alice"},
				{"text": "Hi", "speaker_name": "Bob"}
			]
		}]
	}`)

	transcripts, err := service.Recent(context.Background(), 10)

	require.NoError(t, err)
	assert.Contains(t, *lastQuery, "transcripts(limit: $limit)")
	require.Len(t, transcripts, 1)
	got := transcripts[0]
	assert.Equal(t, "tr-1", got.ID)
	assert.Equal(t, "Untitled Meeting", got.Title)
	assert.Equal(t, "1h 35m", got.DurationFormatted)
	assert.Equal(t, "Discussed the launch.", got.Summary)
	assert.Equal(t, []string{"ship it"}, got.ActionItems)
	assert.Equal(t, 2, got.SentenceCount)
	assert.NotNil(t, got.Attendees)
}

func TestTranscriptService_Detail(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		service, _ := fakeGraphQL(t, `{
			"transcript": {
				"id": "tr-1",
				"title": "Planning",
				"duration": 60,
				"summary": {"overview": "Plans.", "shorthand_bullet": "- plan"},
				"sentences": [{"text": "Hello", "speaker_name": "Alice", "start_time": 0.5, "end_time": 1.2}]
			}
		}`)

		detail, err := service.Detail(context.Background(), "tr-1")

		require.NoError(t, err)
		assert.Equal(t, "Planning", detail.Title)
		assert.Equal(t, "1h", detail.DurationFormatted)
		assert.Equal(t, "- plan", detail.Summary.Bullets)
		require.Len(t, detail.Sentences, 1)
		assert.Equal(t, "Alice", detail.Sentences[0].Speaker)
		assert.Equal(t, 0.5, detail.Sentences[0].StartTime)
	})

	t.Run("not found", func(t *testing.T) {
		service, _ := fakeGraphQL(t, `{"transcript": null}`)

		detail, err := service.Detail(context.Background(), "missing")

		assert.ErrorIs(t, err, ErrTranscriptNotFound)
		assert.Nil(t, detail)
	})
}

func TestTranscriptService_Status(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		service := NewTranscriptService("", nil)
		connected, email, message := service.Status(context.Background())

		assert.False(t, connected)
		assert.Empty(t, email)
		assert.Equal(t, "Transcription API key not configured", message)
	})

	t.Run("configured and reachable", func(t *testing.T) {
		service, _ := fakeGraphQL(t, `{"user": {"email": "owner@example.com", "name": "Owner"}}`)
		connected, email, message := service.Status(context.Background())

		assert.True(t, connected)
		assert.Equal(t, "owner@example.com", email)
		assert.Empty(t, message)
	})

	t.Run("api error is surfaced", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"errors": [{"message": "invalid api key"}]}`))
		}))
		defer server.Close()

		service := NewTranscriptService("bad-key", nil)
		service.endpoint = server.URL

		connected, _, message := service.Status(context.Background())
		assert.False(t, connected)
		assert.Contains(t, message, "invalid api key")
	})
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes  int
		expected string
	}{
		{0, "Unknown"},
		{-5, "Unknown"},
		{45, "45m"},
		{60, "1h"},
		{95, "1h 35m"},
		{120, "2h"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatDuration(tt.minutes))
	}
}

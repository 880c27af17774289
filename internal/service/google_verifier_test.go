package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenInfoVerifier(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "the-id-token", r.URL.Query().Get("id_token"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"email": "user@example.com",
				"name": "Some User",
				"sub": "google-sub-9",
				"picture": "https://example.com/p.png"
			}`))
		}))
		defer server.Close()

		verifier := &tokenInfoVerifier{baseURL: server.URL, client: server.Client()}
		identity, err := verifier.VerifyIDToken(context.Background(), "the-id-token")

		require.NoError(t, err)
		assert.Equal(t, "user@example.com", identity.Email)
		assert.Equal(t, "Some User", identity.Name)
		assert.Equal(t, "google-sub-9", identity.Subject)
		assert.Equal(t, "https://example.com/p.png", identity.Picture)
	})

	t.Run("rejected token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": "invalid_token"}`))
		}))
		defer server.Close()

		verifier := &tokenInfoVerifier{baseURL: server.URL, client: server.Client()}
		identity, err := verifier.VerifyIDToken(context.Background(), "bad-token")

		assert.ErrorIs(t, err, ErrInvalidGoogleToken)
		assert.Nil(t, identity)
	})

	t.Run("response without email is invalid", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"sub": "google-sub-9"}`))
		}))
		defer server.Close()

		verifier := &tokenInfoVerifier{baseURL: server.URL, client: server.Client()}
		_, err := verifier.VerifyIDToken(context.Background(), "odd-token")

		assert.ErrorIs(t, err, ErrInvalidGoogleToken)
	})
}

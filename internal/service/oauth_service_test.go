package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"esecretary/internal/model"
)

// fakeTokenEndpoint serves the OAuth token endpoint, counting refresh calls.
func fakeTokenEndpoint(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func newTestOAuthService(users *MockUserRepository, tokenURL string) *OAuthService {
	service := NewOAuthService(users, "client-id", "client-secret", "http://localhost:3001/api/auth/google/callback")
	service.config.Endpoint = oauth2.Endpoint{
		AuthURL:  tokenURL + "/auth",
		TokenURL: tokenURL + "/token",
	}
	return service
}

func TestOAuthService_AuthURL(t *testing.T) {
	service := NewOAuthService(new(MockUserRepository), "client-id", "client-secret", "http://localhost:3001/api/auth/google/callback")
	userID := uuid.New().String()

	authURL := service.AuthURL(userID)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	query := parsed.Query()
	assert.Equal(t, userID, query.Get("state"))
	assert.Equal(t, "offline", query.Get("access_type"))
	assert.Equal(t, "consent", query.Get("prompt"))
	assert.Contains(t, query.Get("scope"), "calendar")
}

func TestOAuthService_ValidAccessToken(t *testing.T) {
	userID := uuid.New()
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Second)

	t.Run("not connected", func(t *testing.T) {
		server, hits := fakeTokenEndpoint(t, http.StatusOK, `{}`)
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID}, nil)

		service := newTestOAuthService(mockUsers, server.URL)
		token, err := service.ValidAccessToken(context.Background(), userID)

		assert.ErrorIs(t, err, ErrCalendarNotConnected)
		assert.Empty(t, token)
		assert.Equal(t, int64(0), hits.Load())
	})

	t.Run("unexpired token is returned without refresh", func(t *testing.T) {
		server, hits := fakeTokenEndpoint(t, http.StatusOK, `{}`)
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByID", mock.Anything, userID).Return(&model.User{
			ID:                 userID,
			GoogleAccessToken:  "stored-access",
			GoogleRefreshToken: "stored-refresh",
			TokenExpiresAt:     &future,
		}, nil)

		service := newTestOAuthService(mockUsers, server.URL)
		token, err := service.ValidAccessToken(context.Background(), userID)

		require.NoError(t, err)
		assert.Equal(t, "stored-access", token)
		assert.Equal(t, int64(0), hits.Load())
	})

	t.Run("expired token is refreshed exactly once and persisted", func(t *testing.T) {
		server, hits := fakeTokenEndpoint(t, http.StatusOK,
			`{"access_token":"new-access","token_type":"Bearer","expires_in":3600}`)
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByID", mock.Anything, userID).Return(&model.User{
			ID:                 userID,
			GoogleAccessToken:  "stored-access",
			GoogleRefreshToken: "stored-refresh",
			TokenExpiresAt:     &past,
		}, nil)

		var storedExpiry *time.Time
		// The provider issued no new refresh token, so the stored one must
		// not be overwritten (empty string means keep).
		mockUsers.On("StoreOAuthTokens", mock.Anything, userID, "new-access", "", mock.AnythingOfType("*time.Time")).
			Run(func(args mock.Arguments) {
				storedExpiry = args.Get(4).(*time.Time)
			}).Return(nil)

		service := newTestOAuthService(mockUsers, server.URL)
		token, err := service.ValidAccessToken(context.Background(), userID)

		require.NoError(t, err)
		assert.Equal(t, "new-access", token)
		assert.Equal(t, int64(1), hits.Load())
		require.NotNil(t, storedExpiry)
		assert.True(t, storedExpiry.After(time.Now()))
		mockUsers.AssertExpectations(t)
	})

	t.Run("rotated refresh token is persisted", func(t *testing.T) {
		server, _ := fakeTokenEndpoint(t, http.StatusOK,
			`{"access_token":"new-access","token_type":"Bearer","expires_in":3600,"refresh_token":"rotated-refresh"}`)
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByID", mock.Anything, userID).Return(&model.User{
			ID:                 userID,
			GoogleAccessToken:  "stored-access",
			GoogleRefreshToken: "stored-refresh",
			TokenExpiresAt:     &past,
		}, nil)
		mockUsers.On("StoreOAuthTokens", mock.Anything, userID, "new-access", "rotated-refresh", mock.AnythingOfType("*time.Time")).Return(nil)

		service := newTestOAuthService(mockUsers, server.URL)
		token, err := service.ValidAccessToken(context.Background(), userID)

		require.NoError(t, err)
		assert.Equal(t, "new-access", token)
		mockUsers.AssertExpectations(t)
	})

	t.Run("failed refresh requires reauthorization", func(t *testing.T) {
		server, _ := fakeTokenEndpoint(t, http.StatusBadRequest, `{"error":"invalid_grant"}`)
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByID", mock.Anything, userID).Return(&model.User{
			ID:                 userID,
			GoogleAccessToken:  "stored-access",
			GoogleRefreshToken: "revoked-refresh",
			TokenExpiresAt:     &past,
		}, nil)

		service := newTestOAuthService(mockUsers, server.URL)
		token, err := service.ValidAccessToken(context.Background(), userID)

		assert.ErrorIs(t, err, ErrReauthorizationRequired)
		assert.Empty(t, token)
		mockUsers.AssertNotCalled(t, "StoreOAuthTokens", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOAuthService_ConnectedAndDisconnect(t *testing.T) {
	userID := uuid.New()

	t.Run("connected", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByID", mock.Anything, userID).Return(&model.User{
			ID:                 userID,
			GoogleRefreshToken: "stored-refresh",
		}, nil)

		service := NewOAuthService(mockUsers, "client-id", "client-secret", "http://localhost/cb")
		connected, err := service.Connected(context.Background(), userID)

		require.NoError(t, err)
		assert.True(t, connected)
	})

	t.Run("never connected", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID}, nil)

		service := NewOAuthService(mockUsers, "client-id", "client-secret", "http://localhost/cb")
		connected, err := service.Connected(context.Background(), userID)

		require.NoError(t, err)
		assert.False(t, connected)
	})

	t.Run("disconnect clears credentials", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("ClearOAuthTokens", mock.Anything, userID).Return(nil)

		service := NewOAuthService(mockUsers, "client-id", "client-secret", "http://localhost/cb")
		assert.NoError(t, service.Disconnect(context.Background(), userID))
		mockUsers.AssertExpectations(t)
	})
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"esecretary/internal/repository"
)

var (
	// ErrCalendarNotConnected is returned when the user has never
	// authorized calendar access (no stored refresh token).
	ErrCalendarNotConnected = errors.New("calendar not connected")
	// ErrReauthorizationRequired is returned when a refresh attempt fails,
	// typically because the refresh token was revoked or expired.
	ErrReauthorizationRequired = errors.New("calendar authorization expired")
)

// calendarScopes requests identity plus full calendar access, needed to
// create events on the user's behalf.
var calendarScopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/calendar",
}

// OAuthService maintains valid Google access tokens for calendar
// operations, refreshing transparently through the stored refresh token.
type OAuthService struct {
	users  repository.UserRepository
	config *oauth2.Config
}

// NewOAuthService creates the OAuth lifecycle manager.
func NewOAuthService(users repository.UserRepository, clientID, clientSecret, redirectURL string) *OAuthService {
	return &OAuthService{
		users: users,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       calendarScopes,
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL builds the consent URL for the connect flow. Offline access and
// a forced consent screen are required to obtain a refresh token; the user
// id rides in the opaque state parameter and keys the callback.
func (s *OAuthService) AuthURL(userID string) string {
	return s.config.AuthCodeURL(userID,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// ExchangeCode performs the one-shot exchange of an authorization code for
// the initial access+refresh token pair and persists both.
func (s *OAuthService) ExchangeCode(ctx context.Context, userID uuid.UUID, code string) error {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}

	expiry := token.Expiry
	if err := s.users.StoreOAuthTokens(ctx, userID, token.AccessToken, token.RefreshToken, &expiry); err != nil {
		return fmt.Errorf("store oauth tokens: %w", err)
	}
	return nil
}

// ValidAccessToken returns a usable access token for the user, refreshing
// it first when the stored one has expired. A failed refresh surfaces once
// as ErrReauthorizationRequired and is not retried. Concurrent refreshes
// are last-write-wins; the token endpoint issues a fresh token either way.
func (s *OAuthService) ValidAccessToken(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	if user.GoogleRefreshToken == "" {
		return "", ErrCalendarNotConnected
	}

	if user.TokenExpiresAt != nil && user.TokenExpiresAt.After(time.Now()) {
		return user.GoogleAccessToken, nil
	}

	stored := &oauth2.Token{
		AccessToken:  user.GoogleAccessToken,
		RefreshToken: user.GoogleRefreshToken,
	}
	if user.TokenExpiresAt != nil {
		stored.Expiry = *user.TokenExpiresAt
	} else {
		stored.Expiry = time.Now().Add(-time.Minute)
	}

	refreshed, err := s.config.TokenSource(ctx, stored).Token()
	if err != nil {
		return "", ErrReauthorizationRequired
	}

	expiry := refreshed.Expiry
	newRefresh := ""
	if refreshed.RefreshToken != user.GoogleRefreshToken {
		newRefresh = refreshed.RefreshToken
	}
	if err := s.users.StoreOAuthTokens(ctx, userID, refreshed.AccessToken, newRefresh, &expiry); err != nil {
		return "", fmt.Errorf("store refreshed tokens: %w", err)
	}

	return refreshed.AccessToken, nil
}

// Connected reports whether the user has calendar access authorized.
func (s *OAuthService) Connected(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("find user: %w", err)
	}
	return user.CalendarConnected(), nil
}

// Disconnect removes the stored calendar credentials.
func (s *OAuthService) Disconnect(ctx context.Context, userID uuid.UUID) error {
	return s.users.ClearOAuthTokens(ctx, userID)
}

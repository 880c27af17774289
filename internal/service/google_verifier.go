package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ErrInvalidGoogleToken is returned when Google rejects an identity token.
var ErrInvalidGoogleToken = errors.New("invalid Google token")

// GoogleIdentity holds the verified fields Google reports for an identity
// token.
type GoogleIdentity struct {
	Email   string
	Name    string
	Subject string
	Picture string
}

// GoogleVerifier verifies provider-issued identity tokens.
type GoogleVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

type tokenInfoVerifier struct {
	baseURL string
	client  *http.Client
}

// NewGoogleVerifier returns a verifier backed by Google's tokeninfo
// endpoint.
func NewGoogleVerifier() GoogleVerifier {
	return &tokenInfoVerifier{
		baseURL: "https://oauth2.googleapis.com",
		client:  http.DefaultClient,
	}
}

func (v *tokenInfoVerifier) VerifyIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	endpoint := v.baseURL + "/tokeninfo?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build tokeninfo request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call tokeninfo: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Sub     string `json:"sub"`
		Picture string `json:"picture"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode tokeninfo response: %w", err)
	}
	if payload.Error != "" || payload.Email == "" {
		return nil, ErrInvalidGoogleToken
	}

	return &GoogleIdentity{
		Email:   payload.Email,
		Name:    payload.Name,
		Subject: payload.Sub,
		Picture: payload.Picture,
	}, nil
}

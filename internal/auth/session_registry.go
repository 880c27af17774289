package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"esecretary/internal/model"
	"esecretary/internal/repository"
)

// SessionRegistry is the audit trail and explicit-revocation store for
// issued bearer tokens. It is not the source of truth for token validity:
// verification stays stateless (JWTService), so revoking here only removes
// the audit record, and the signed token keeps verifying until its own
// expiry. That soft-logout semantic is intentional.
type SessionRegistry struct {
	sessions repository.SessionRepository
}

// NewSessionRegistry creates a registry over the given session store.
func NewSessionRegistry(sessions repository.SessionRepository) *SessionRegistry {
	return &SessionRegistry{sessions: sessions}
}

// HashToken returns the hex-encoded SHA-256 digest of a raw token. The raw
// token is never persisted.
func HashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// Record persists a session row for a freshly issued token with client
// metadata for audit. Expiry mirrors the token's own lifetime.
func (r *SessionRegistry) Record(ctx context.Context, userID uuid.UUID, rawToken, userAgent, ipAddress string) error {
	return r.sessions.Create(ctx, &model.Session{
		UserID:    userID,
		TokenHash: HashToken(rawToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: time.Now().Add(TokenExpiry),
	})
}

// Revoke deletes the session matching the presented token's hash.
// Idempotent: revoking an unknown token is not an error.
func (r *SessionRegistry) Revoke(ctx context.Context, rawToken string) error {
	return r.sessions.DeleteByTokenHash(ctx, HashToken(rawToken))
}

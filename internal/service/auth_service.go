package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"esecretary/internal/auth"
	"esecretary/internal/model"
	"esecretary/internal/repository"
)

const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserAlreadyExists is returned when registering an email that is taken.
	ErrUserAlreadyExists = errors.New("an account with this email already exists")
	// ErrInvalidEmail is returned for a malformed email address.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrPasswordTooShort is returned for passwords under 6 characters.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	// ErrUserNotFound is returned when a user row no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrNoAccountForEmail is returned by Google sign-in in login mode when
	// no account exists for the verified email.
	ErrNoAccountForEmail = errors.New("no account found with this email, please sign up first")
)

// LinkOutcome describes how a verified Google identity was resolved against
// local accounts. The merge is keyed by normalized email: the first
// verification of an email wins the account.
type LinkOutcome int

const (
	// LinkNewUser means a fresh account was created for the identity.
	LinkNewUser LinkOutcome = iota
	// LinkExisting means the identity was associated with an existing
	// account (without overwriting a prior linkage).
	LinkExisting
)

// SessionMeta carries client metadata recorded with each session.
type SessionMeta struct {
	UserAgent string
	IPAddress string
}

// AuthService handles registration, login, Google sign-in and session
// lifecycle.
type AuthService interface {
	Register(ctx context.Context, email, name, password string, meta SessionMeta) (token string, user *model.User, err error)
	Login(ctx context.Context, email, password string, meta SessionMeta) (token string, user *model.User, err error)
	GoogleAuth(ctx context.Context, idToken, mode string, meta SessionMeta) (token string, user *model.User, outcome LinkOutcome, err error)
	Verify(ctx context.Context, userID string) (*model.User, error)
	Profile(ctx context.Context, userID string) (*model.User, error)
	Logout(ctx context.Context, rawToken string) error
}

type authService struct {
	users    repository.UserRepository
	registry *auth.SessionRegistry
	jwt      *auth.JWTService
	verifier GoogleVerifier
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, registry *auth.SessionRegistry, jwt *auth.JWTService, verifier GoogleVerifier) AuthService {
	return &authService{
		users:    users,
		registry: registry,
		jwt:      jwt,
		verifier: verifier,
	}
}

// Register creates a local account with a bcrypt-hashed password, issues a
// bearer token and records its session.
func (s *authService) Register(ctx context.Context, email, name, password string, meta SessionMeta) (string, *model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return "", nil, ErrInvalidEmail
	}
	if len(password) < 6 {
		return "", nil, ErrPasswordTooShort
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return "", nil, ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, fmt.Errorf("check user existence: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Two concurrent registrations can both pass the duplicate check;
		// the unique constraint resolves the race.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", nil, ErrUserAlreadyExists
		}
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	return s.openSession(ctx, user, meta)
}

// Login authenticates a password credential and issues a bearer token.
func (s *authService) Login(ctx context.Context, email, password string, meta SessionMeta) (string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		return "", nil, fmt.Errorf("record login: %w", err)
	}

	return s.openSession(ctx, user, meta)
}

// GoogleAuth verifies a Google identity token and resolves it against
// local accounts. In login mode an unknown email fails with
// ErrNoAccountForEmail instead of creating an account.
func (s *authService) GoogleAuth(ctx context.Context, idToken, mode string, meta SessionMeta) (string, *model.User, LinkOutcome, error) {
	identity, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		if errors.Is(err, ErrInvalidGoogleToken) {
			return "", nil, 0, err
		}
		return "", nil, 0, fmt.Errorf("verify google token: %w", err)
	}

	email := strings.ToLower(identity.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, 0, fmt.Errorf("lookup user: %w", err)
	}

	if user == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		if mode == "login" {
			return "", nil, 0, ErrNoAccountForEmail
		}

		created, err := s.createGoogleUser(ctx, email, identity)
		if err != nil {
			return "", nil, 0, err
		}
		token, u, err := s.openSession(ctx, created, meta)
		return token, u, LinkNewUser, err
	}

	if err := s.users.LinkGoogleIdentity(ctx, user.ID, identity.Subject, identity.Picture); err != nil {
		return "", nil, 0, fmt.Errorf("link google identity: %w", err)
	}
	user.EmailVerified = true

	token, u, err := s.openSession(ctx, user, meta)
	return token, u, LinkExisting, err
}

// createGoogleUser creates an account for a Google-only identity. The
// schema requires a password hash, so a random unusable one is generated.
func (s *authService) createGoogleUser(ctx context.Context, email string, identity *GoogleIdentity) (*model.User, error) {
	random := make([]byte, 32)
	if _, err := rand.Read(random); err != nil {
		return nil, fmt.Errorf("generate random password: %w", err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(random)), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash random password: %w", err)
	}

	googleID := identity.Subject
	user := &model.User{
		ID:             uuid.New(),
		Email:          email,
		Name:           identity.Name,
		PasswordHash:   string(hashed),
		GoogleID:       &googleID,
		ProfilePicture: identity.Picture,
		EmailVerified:  true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create google user: %w", err)
	}
	return user, nil
}

// Verify re-fetches the user row to confirm the account still exists. This
// is the one place stale claims are double-checked; regular protected
// routes trust claims for the token's lifetime.
func (s *authService) Verify(ctx context.Context, userID string) (*model.User, error) {
	return s.findUser(ctx, userID)
}

// Profile returns the current user's profile fields.
func (s *authService) Profile(ctx context.Context, userID string) (*model.User, error) {
	return s.findUser(ctx, userID)
}

func (s *authService) findUser(ctx context.Context, userID string) (*model.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Logout revokes the session recorded for the presented token. The token
// itself stays cryptographically valid until its expiry; only the audit
// record is removed.
func (s *authService) Logout(ctx context.Context, rawToken string) error {
	return s.registry.Revoke(ctx, rawToken)
}

// openSession issues a bearer token and records its session row.
func (s *authService) openSession(ctx context.Context, user *model.User, meta SessionMeta) (string, *model.User, error) {
	token, err := s.jwt.GenerateToken(user.ID.String(), user.Email, user.Name)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	if err := s.registry.Record(ctx, user.ID, token, meta.UserAgent, meta.IPAddress); err != nil {
		return "", nil, fmt.Errorf("record session: %w", err)
	}
	return token, user, nil
}

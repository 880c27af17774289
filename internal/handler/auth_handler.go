package handler

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "esecretary/internal/errors"
	"esecretary/internal/middleware"
	"esecretary/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService  service.AuthService
	oauthService *service.OAuthService
	dashboardURL string
}

// NewAuthHandler creates a new auth handler. dashboardURL is where the
// OAuth callback redirects the browser.
func NewAuthHandler(authService service.AuthService, oauthService *service.OAuthService, dashboardURL string) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		oauthService: oauthService,
		dashboardURL: dashboardURL,
	}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleAuthRequest carries a Google-issued identity token. Mode "login"
// refuses to create an account for an unknown email.
type GoogleAuthRequest struct {
	Token string `json:"token" validate:"required"`
	Mode  string `json:"mode"`
}

func sessionMeta(c echo.Context) service.SessionMeta {
	return service.SessionMeta{
		UserAgent: c.Request().UserAgent(),
		IPAddress: c.RealIP(),
	}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("Missing required fields: email, name, password"))
	}

	token, user, err := h.authService.Register(c.Request().Context(), req.Email, req.Name, req.Password, sessionMeta(c))
	if err != nil {
		switch err {
		case service.ErrUserAlreadyExists:
			return c.JSON(http.StatusConflict, apperrors.New(err.Error()))
		case service.ErrInvalidEmail, service.ErrPasswordTooShort:
			return c.JSON(http.StatusBadRequest, apperrors.New(err.Error()))
		}
		log.Printf("register error: %v", err)
		return c.JSON(http.StatusInternalServerError, apperrors.New("Server error during registration"))
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Account created successfully",
		"token":   token,
		"user":    user,
	})
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("Email and password are required"))
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, sessionMeta(c))
	if err != nil {
		if err == service.ErrInvalidCredentials {
			return c.JSON(http.StatusUnauthorized, apperrors.New(err.Error()))
		}
		log.Printf("login error: %v", err)
		return c.JSON(http.StatusInternalServerError, apperrors.New("Server error during login"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// GoogleAuth godoc
// @Summary Sign in or sign up with a Google identity token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GoogleAuthRequest true "Google identity token"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/google [post]
func (h *AuthHandler) GoogleAuth(c echo.Context) error {
	var req GoogleAuthRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("Token required"))
	}

	token, user, _, err := h.authService.GoogleAuth(c.Request().Context(), req.Token, req.Mode, sessionMeta(c))
	if err != nil {
		switch err {
		case service.ErrInvalidGoogleToken:
			return c.JSON(http.StatusUnauthorized, apperrors.New("Invalid Google token"))
		case service.ErrNoAccountForEmail:
			return c.JSON(http.StatusNotFound, apperrors.New("No account found with this email. Please sign up first."))
		}
		log.Printf("google auth error: %v", err)
		return c.JSON(http.StatusInternalServerError, apperrors.New("Server error during Google auth"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Google login successful",
		"token":   token,
		"user":    user,
	})
}

// GoogleCallback godoc
// @Summary OAuth2 callback for the calendar connect flow
// @Tags auth
// @Param code query string true "Authorization code"
// @Param state query string true "User id carried through the flow"
// @Success 302
// @Router /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	code := c.QueryParam("code")
	state := c.QueryParam("state")
	if code == "" || state == "" {
		return c.Redirect(http.StatusFound, h.dashboardURL+"?error=missing_params")
	}

	userID, err := uuid.Parse(state)
	if err != nil {
		return c.Redirect(http.StatusFound, h.dashboardURL+"?error=missing_params")
	}

	if err := h.oauthService.ExchangeCode(c.Request().Context(), userID, code); err != nil {
		log.Printf("oauth callback error: %v", err)
		return c.Redirect(http.StatusFound, h.dashboardURL+"?error=oauth_failed")
	}

	return c.Redirect(http.StatusFound, h.dashboardURL+"?calendar=connected")
}

// Verify godoc
// @Summary Verify the bearer token and confirm the account still exists
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/verify [get]
func (h *AuthHandler) Verify(c echo.Context) error {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apperrors.New("Invalid or expired token"))
	}

	// Unlike other protected routes, this one re-fetches the user row so
	// deleted accounts are detected despite still-valid tokens.
	user, err := h.authService.Verify(c.Request().Context(), claims.UserID)
	if err != nil {
		if err == service.ErrUserNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"success": false,
				"valid":   false,
				"error":   "User not found",
			})
		}
		log.Printf("verify error: %v", err)
		return c.JSON(http.StatusInternalServerError, apperrors.New("Server error"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"valid":   true,
		"user":    user,
	})
}

// Me godoc
// @Summary Get the current user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apperrors.New("Invalid or expired token"))
	}

	user, err := h.authService.Profile(c.Request().Context(), claims.UserID)
	if err != nil {
		if err == service.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, apperrors.New("User not found"))
		}
		log.Printf("profile error: %v", err)
		return c.JSON(http.StatusInternalServerError, apperrors.New("Server error"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    user,
	})
}

// Logout godoc
// @Summary Revoke the current session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	rawToken := middleware.RawToken(c)
	if rawToken == "" {
		return c.JSON(http.StatusUnauthorized, apperrors.New("Authentication required"))
	}

	if err := h.authService.Logout(c.Request().Context(), rawToken); err != nil {
		log.Printf("logout error: %v", err)
		return c.JSON(http.StatusInternalServerError, apperrors.New("Server error during logout"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

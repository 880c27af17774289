package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"esecretary/internal/config"
	"esecretary/internal/handler"
	"esecretary/internal/middleware"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	meetingHandler *handler.MeetingHandler,
	calendarHandler *handler.CalendarHandler,
	transcriptHandler *handler.TranscriptHandler,
	webhookHandler *handler.WebhookHandler,
) *middleware.RateLimiter {
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	jwtGate := middleware.JWT(cfg.JWTSecret)

	// Auth routes share a per-IP rate limit. The gate also covers the
	// token-bearing routes inside the group.
	limiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	authGroup := api.Group("/auth", limiter.Middleware())
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/google", authHandler.GoogleAuth)
	authGroup.GET("/google/callback", authHandler.GoogleCallback)
	authGroup.GET("/verify", authHandler.Verify, jwtGate)
	authGroup.GET("/me", authHandler.Me, jwtGate)
	authGroup.POST("/logout", authHandler.Logout, jwtGate)

	// Webhook routes are public: the automation tool authenticates by
	// shared knowledge of the callback URL, not by user token.
	api.POST("/webhook/meeting-end", webhookHandler.MeetingEnd)
	api.POST("/webhook/callback", webhookHandler.Callback)

	// Secured routes (require JWT authentication)
	secured := api.Group("", jwtGate)

	// Meeting routes
	secured.GET("/meetings", meetingHandler.List)
	secured.POST("/meetings", meetingHandler.Create)
	secured.GET("/meetings/stats", meetingHandler.Stats)
	secured.GET("/meetings/:id", meetingHandler.Get)
	secured.POST("/meetings/:id/approve", meetingHandler.Approve)
	secured.POST("/meetings/:id/reject", meetingHandler.Reject)

	// Calendar routes
	secured.GET("/calendar/auth-url", calendarHandler.AuthURL)
	secured.GET("/calendar/status", calendarHandler.Status)
	secured.POST("/calendar/disconnect", calendarHandler.Disconnect)
	secured.GET("/calendar/events", calendarHandler.ListEvents)
	secured.POST("/calendar/events", calendarHandler.CreateEvent)
	secured.DELETE("/calendar/events/:id", calendarHandler.DeleteEvent)

	// Transcript routes
	secured.GET("/transcripts", transcriptHandler.List)
	secured.GET("/transcripts/status", transcriptHandler.Status)
	secured.GET("/transcripts/:id", transcriptHandler.Detail)

	return limiter
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

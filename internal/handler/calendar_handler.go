package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "esecretary/internal/errors"
	"esecretary/internal/service"
)

// CalendarHandler handles Google Calendar endpoints.
type CalendarHandler struct {
	oauthService    *service.OAuthService
	calendarService *service.CalendarService
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(oauthService *service.OAuthService, calendarService *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{
		oauthService:    oauthService,
		calendarService: calendarService,
	}
}

// CreateEventRequest represents a calendar event creation request.
type CreateEventRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	StartTime   string   `json:"start_time" validate:"required"`
	EndTime     string   `json:"end_time" validate:"required"`
	Attendees   []string `json:"attendees"`
	AddMeetLink bool     `json:"add_meet_link"`
	MeetingID   string   `json:"meeting_id"`
}

// translateCalendarError maps OAuth lifecycle failures to 401 responses
// carrying the needs_auth marker; anything else is a 500.
func translateCalendarError(c echo.Context, err error, fallback string) error {
	switch err {
	case service.ErrCalendarNotConnected:
		return c.JSON(http.StatusUnauthorized,
			apperrors.NewNeedsAuth("Calendar not connected. Please authorize calendar access."))
	case service.ErrReauthorizationRequired:
		return c.JSON(http.StatusUnauthorized,
			apperrors.NewNeedsAuth("Calendar authorization expired. Please re-authorize."))
	}
	log.Printf("calendar error: %v", err)
	return c.JSON(http.StatusInternalServerError, apperrors.New(fallback))
}

// AuthURL godoc
// @Summary Generate the Google OAuth consent URL for calendar access
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /calendar/auth-url [get]
func (h *CalendarHandler) AuthURL(c echo.Context) error {
	_, claims, err := identity(c)
	if err != nil {
		return unauthenticated(c)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"auth_url": h.oauthService.AuthURL(claims.UserID),
	})
}

// Status godoc
// @Summary Check whether the user has connected their calendar
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /calendar/status [get]
func (h *CalendarHandler) Status(c echo.Context) error {
	userID, _, err := identity(c)
	if err != nil {
		return unauthenticated(c)
	}

	connected, err := h.oauthService.Connected(c.Request().Context(), userID)
	if err != nil {
		log.Printf("calendar status error: %v", err)
		return c.JSON(http.StatusInternalServerError, apperrors.New("Failed to check calendar status"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"connected": connected,
	})
}

// Disconnect godoc
// @Summary Remove the calendar connection
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /calendar/disconnect [post]
func (h *CalendarHandler) Disconnect(c echo.Context) error {
	userID, _, err := identity(c)
	if err != nil {
		return unauthenticated(c)
	}

	if err := h.oauthService.Disconnect(c.Request().Context(), userID); err != nil {
		log.Printf("calendar disconnect error: %v", err)
		return c.JSON(http.StatusInternalServerError, apperrors.New("Failed to disconnect calendar"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Calendar disconnected successfully",
	})
}

// ListEvents godoc
// @Summary Fetch upcoming events from the user's primary calendar
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /calendar/events [get]
func (h *CalendarHandler) ListEvents(c echo.Context) error {
	userID, _, err := identity(c)
	if err != nil {
		return unauthenticated(c)
	}

	events, err := h.calendarService.ListEvents(c.Request().Context(), userID)
	if err != nil {
		return translateCalendarError(c, err, "Failed to fetch calendar events")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"events":  events,
		"count":   len(events),
	})
}

// CreateEvent godoc
// @Summary Create a calendar event, optionally with a Meet link
// @Tags calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateEventRequest true "Event data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /calendar/events [post]
func (h *CalendarHandler) CreateEvent(c echo.Context) error {
	userID, _, err := identity(c)
	if err != nil {
		return unauthenticated(c)
	}

	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("Title, start_time, and end_time are required"))
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("invalid start_time"))
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("invalid end_time"))
	}

	input := service.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   startTime,
		EndTime:     endTime,
		Attendees:   req.Attendees,
		AddMeetLink: req.AddMeetLink,
	}
	if req.MeetingID != "" {
		meetingID, err := uuid.Parse(req.MeetingID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, apperrors.New("invalid meeting_id"))
		}
		input.MeetingID = &meetingID
	}

	event, err := h.calendarService.CreateEvent(c.Request().Context(), userID, input)
	if err != nil {
		return translateCalendarError(c, err, "Failed to create calendar event")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"event":   event,
	})
}

// DeleteEvent godoc
// @Summary Delete a calendar event
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Param id path string true "Google Calendar event ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /calendar/events/{id} [delete]
func (h *CalendarHandler) DeleteEvent(c echo.Context) error {
	userID, _, err := identity(c)
	if err != nil {
		return unauthenticated(c)
	}

	eventID := c.Param("id")
	if eventID == "" {
		return c.JSON(http.StatusBadRequest, apperrors.New("event id is required"))
	}

	if err := h.calendarService.DeleteEvent(c.Request().Context(), userID, eventID); err != nil {
		return translateCalendarError(c, err, "Failed to delete calendar event")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Event deleted successfully",
	})
}

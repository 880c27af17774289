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

// MeetingHandler handles meeting lifecycle endpoints.
type MeetingHandler struct {
	meetingService service.MeetingService
}

// NewMeetingHandler creates a new meeting handler.
func NewMeetingHandler(meetingService service.MeetingService) *MeetingHandler {
	return &MeetingHandler{meetingService: meetingService}
}

// CreateMeetingRequest represents a meeting creation request.
type CreateMeetingRequest struct {
	Title       string     `json:"title" validate:"required"`
	MeetingDate *time.Time `json:"meeting_date"`
	HostEmail   string     `json:"host_email"`
	Attendees   []string   `json:"attendees"`
	Transcript  string     `json:"transcript"`
}

// ApproveMeetingRequest carries optional host suggestions.
type ApproveMeetingRequest struct {
	Suggestions string `json:"suggestions"`
}

// List godoc
// @Summary List the user's meetings
// @Tags meetings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /meetings [get]
func (h *MeetingHandler) List(c echo.Context) error {
	userID, _, err := identity(c)
	if err != nil {
		return unauthenticated(c)
	}

	meetings, err := h.meetingService.List(c.Request().Context(), userID)
	if err != nil {
		log.Printf("list meetings error: %v", err)
		return c.JSON(http.StatusInternalServerError, apperrors.New("Failed to fetch meetings"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"meetings": meetings,
	})
}

// Stats godoc
// @Summary Dashboard statistics for the user's meetings
// @Tags meetings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /meetings/stats [get]
func (h *MeetingHandler) Stats(c echo.Context) error {
	userID, _, err := identity(c)
	if err != nil {
		return unauthenticated(c)
	}

	stats, err := h.meetingService.Stats(c.Request().Context(), userID)
	if err != nil {
		log.Printf("meeting stats error: %v", err)
		return c.JSON(http.StatusInternalServerError, apperrors.New("Failed to fetch stats"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"stats":   stats,
	})
}

// Get godoc
// @Summary Get a meeting with full details
// @Tags meetings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Meeting ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /meetings/{id} [get]
func (h *MeetingHandler) Get(c echo.Context) error {
	userID, _, err := identity(c)
	if err != nil {
		return unauthenticated(c)
	}
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("invalid meeting id"))
	}

	meeting, err := h.meetingService.Get(c.Request().Context(), userID, meetingID)
	if err != nil {
		if err == service.ErrMeetingNotFound {
			return c.JSON(http.StatusNotFound, apperrors.New("Meeting not found"))
		}
		log.Printf("get meeting error: %v", err)
		return c.JSON(http.StatusInternalServerError, apperrors.New("Failed to fetch meeting"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"meeting": meeting,
	})
}

// Create godoc
// @Summary Create a new meeting
// @Tags meetings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateMeetingRequest true "Meeting data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /meetings [post]
func (h *MeetingHandler) Create(c echo.Context) error {
	userID, claims, err := identity(c)
	if err != nil {
		return unauthenticated(c)
	}

	var req CreateMeetingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("Title is required"))
	}

	meeting, err := h.meetingService.Create(c.Request().Context(), userID, claims.Email, service.CreateMeetingInput{
		Title:       req.Title,
		MeetingDate: req.MeetingDate,
		HostEmail:   req.HostEmail,
		Attendees:   req.Attendees,
		Transcript:  req.Transcript,
	})
	if err != nil {
		log.Printf("create meeting error: %v", err)
		return c.JSON(http.StatusInternalServerError, apperrors.New("Failed to create meeting"))
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Meeting created",
		"meeting": meeting,
	})
}

// Approve godoc
// @Summary Approve a meeting summary
// @Tags meetings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Meeting ID"
// @Param request body ApproveMeetingRequest false "Optional suggestions"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /meetings/{id}/approve [post]
func (h *MeetingHandler) Approve(c echo.Context) error {
	userID, _, err := identity(c)
	if err != nil {
		return unauthenticated(c)
	}
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("invalid meeting id"))
	}

	var req ApproveMeetingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("invalid request body"))
	}

	if err := h.meetingService.Approve(c.Request().Context(), userID, meetingID, req.Suggestions); err != nil {
		if err == service.ErrMeetingNotFound {
			return c.JSON(http.StatusNotFound, apperrors.New("Meeting not found"))
		}
		log.Printf("approve meeting error: %v", err)
		return c.JSON(http.StatusInternalServerError, apperrors.New("Failed to approve meeting"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Meeting approved",
		"status":  "approved",
	})
}

// Reject godoc
// @Summary Reject a meeting summary
// @Tags meetings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Meeting ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /meetings/{id}/reject [post]
func (h *MeetingHandler) Reject(c echo.Context) error {
	userID, _, err := identity(c)
	if err != nil {
		return unauthenticated(c)
	}
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("invalid meeting id"))
	}

	if err := h.meetingService.Reject(c.Request().Context(), userID, meetingID); err != nil {
		if err == service.ErrMeetingNotFound {
			return c.JSON(http.StatusNotFound, apperrors.New("Meeting not found"))
		}
		log.Printf("reject meeting error: %v", err)
		return c.JSON(http.StatusInternalServerError, apperrors.New("Failed to reject meeting"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Meeting rejected",
		"status":  "rejected",
	})
}

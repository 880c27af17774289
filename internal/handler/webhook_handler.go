package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "esecretary/internal/errors"
	"esecretary/internal/service"
)

// WebhookHandler handles the automation relay endpoints. These routes are
// unauthenticated: the automation tool is an external collaborator calling
// back into the service.
type WebhookHandler struct {
	webhookService *service.WebhookService
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(webhookService *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// MeetingEndRequest is the inbound meeting-end event.
type MeetingEndRequest struct {
	MeetingID  string   `json:"meeting_id" validate:"required"`
	Title      string   `json:"title"`
	HostEmail  string   `json:"host_email"`
	Attendees  []string `json:"attendees"`
	Transcript string   `json:"transcript"`
}

// CallbackRequest is the automation tool's status callback.
type CallbackRequest struct {
	MeetingID   string   `json:"meeting_id" validate:"required"`
	Action      string   `json:"action" validate:"required"`
	Summary     string   `json:"summary"`
	ActionItems []string `json:"action_items"`
}

// MeetingEnd godoc
// @Summary Forward a meeting-end event to the automation tool
// @Tags webhooks
// @Accept json
// @Produce json
// @Param request body MeetingEndRequest true "Meeting end event"
// @Success 200 {object} map[string]interface{}
// @Success 202 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /webhook/meeting-end [post]
func (h *WebhookHandler) MeetingEnd(c echo.Context) error {
	var req MeetingEndRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("meeting_id is required"))
	}

	relayResponse, err := h.webhookService.RelayMeetingEnd(c.Request().Context(), service.MeetingEndEvent{
		MeetingID:  req.MeetingID,
		Title:      req.Title,
		HostEmail:  req.HostEmail,
		Attendees:  req.Attendees,
		Transcript: req.Transcript,
	})
	if err != nil {
		// The event was accepted even though the relay failed; the
		// automation tool will not be retried.
		log.Printf("relay error: %v", err)
		return c.JSON(http.StatusAccepted, echo.Map{
			"success": true,
			"message": "Webhook received but relay failed",
			"error":   err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":        true,
		"message":        "Webhook forwarded to automation tool",
		"relay_response": relayResponse,
	})
}

// Callback godoc
// @Summary Apply a status callback from the automation tool
// @Tags webhooks
// @Accept json
// @Produce json
// @Param request body CallbackRequest true "Status callback"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /webhook/callback [post]
func (h *WebhookHandler) Callback(c echo.Context) error {
	var req CallbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("meeting_id and action are required"))
	}

	meetingID, err := uuid.Parse(req.MeetingID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.New("invalid meeting_id"))
	}

	if err := h.webhookService.HandleCallback(c.Request().Context(), meetingID, req.Action, req.Summary, req.ActionItems); err != nil {
		if errors.Is(err, service.ErrUnknownAction) {
			return c.JSON(http.StatusBadRequest, apperrors.New("Unknown action"))
		}
		log.Printf("callback error: %v", err)
		return c.JSON(http.StatusInternalServerError, apperrors.New("Callback processing failed"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Callback processed",
		"action":  req.Action,
	})
}

package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "esecretary/internal/errors"
	"esecretary/internal/service"
)

// TranscriptHandler handles transcription provider endpoints.
type TranscriptHandler struct {
	transcriptService *service.TranscriptService
}

// NewTranscriptHandler creates a new transcript handler.
func NewTranscriptHandler(transcriptService *service.TranscriptService) *TranscriptHandler {
	return &TranscriptHandler{transcriptService: transcriptService}
}

// List godoc
// @Summary Fetch recent meeting transcripts
// @Tags transcripts
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max transcripts to return (default 10)"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /transcripts [get]
func (h *TranscriptHandler) List(c echo.Context) error {
	if _, _, err := identity(c); err != nil {
		return unauthenticated(c)
	}

	limit := 10
	if v := c.QueryParam("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	transcripts, err := h.transcriptService.Recent(c.Request().Context(), limit)
	if err != nil {
		log.Printf("transcripts error: %v", err)
		return c.JSON(http.StatusInternalServerError, apperrors.New("Failed to fetch transcripts"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"transcripts": transcripts,
		"count":       len(transcripts),
	})
}

// Detail godoc
// @Summary Fetch a detailed transcript by id
// @Tags transcripts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transcript ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /transcripts/{id} [get]
func (h *TranscriptHandler) Detail(c echo.Context) error {
	if _, _, err := identity(c); err != nil {
		return unauthenticated(c)
	}

	transcript, err := h.transcriptService.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrTranscriptNotFound) {
			return c.JSON(http.StatusNotFound, apperrors.New("Transcript not found"))
		}
		log.Printf("transcript detail error: %v", err)
		return c.JSON(http.StatusInternalServerError, apperrors.New("Failed to fetch transcript"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"transcript": transcript,
	})
}

// Status godoc
// @Summary Check whether the transcription API is configured and reachable
// @Tags transcripts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /transcripts/status [get]
func (h *TranscriptHandler) Status(c echo.Context) error {
	if _, _, err := identity(c); err != nil {
		return unauthenticated(c)
	}

	connected, userEmail, message := h.transcriptService.Status(c.Request().Context())
	resp := echo.Map{
		"success":   true,
		"connected": connected,
	}
	if userEmail != "" {
		resp["user_email"] = userEmail
	}
	if message != "" {
		resp["message"] = message
	}
	return c.JSON(http.StatusOK, resp)
}

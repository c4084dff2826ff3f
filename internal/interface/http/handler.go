package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/activity-for-you/internal/domain/activity"
	apperrors "github.com/yanqian/activity-for-you/pkg/errors"
)

// Handler wires the HTTP transport to the activity domain.
type Handler struct {
	svc      activity.Service
	sessions *activity.Sessions
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(svc activity.Service, sessions *activity.Sessions, logger *slog.Logger) *Handler {
	return &Handler{
		svc:      svc,
		sessions: sessions,
		logger:   logger.With("component", "http.handler"),
	}
}

type selectionRequest struct {
	City      string `json:"city" binding:"required"`
	SessionID string `json:"sessionId"`
}

type selectionResponse struct {
	SessionID string         `json:"sessionId"`
	LoadID    string         `json:"loadId"`
	State     activity.State `json:"state"`
}

// CityView returns the weather card and activity list for one city without touching the session.
func (h *Handler) CityView(c *gin.Context) {
	city := strings.TrimSpace(c.Param("city"))
	view, err := h.svc.View(c.Request.Context(), city)
	if err != nil {
		abortWithError(c, domainError(err, "view_failed"))
		return
	}
	c.JSON(http.StatusOK, view)
}

// Select starts loading a city in the caller's session and reports the loading state.
// Requests without a known sessionId get a new session.
func (h *Handler) Select(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	city := strings.TrimSpace(req.City)
	if !activity.ValidCityKey(city) {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "city must be a lowercase snake_case key", nil))
		return
	}

	sessionID, session := h.sessions.Open(strings.TrimSpace(req.SessionID))
	loadID := session.Select(c.Request.Context(), city)
	c.JSON(http.StatusAccepted, selectionResponse{SessionID: sessionID, LoadID: loadID, State: session.Snapshot()})
}

// State returns the selection snapshot of the session named by the session query parameter.
func (h *Handler) State(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Query("session"))
	if sessionID == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "session query parameter is required", nil))
		return
	}
	session, ok := h.sessions.Lookup(sessionID)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusNotFound, apperrors.CodeNotFound, "session is unknown or has expired", nil))
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func domainError(err error, fallbackCode string) *HTTPError {
	code := apperrors.CodeOf(err)
	switch code {
	case apperrors.CodeInvalidInput:
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	case apperrors.CodeNotFound:
		return NewHTTPError(http.StatusNotFound, code, errMessage(err), err)
	case apperrors.CodeFetchFailed, apperrors.CodeParseFailed, apperrors.CodeTimestampInvalid:
		return NewHTTPError(http.StatusBadGateway, code, errMessage(err), err)
	default:
		return NewHTTPError(http.StatusInternalServerError, fallbackCode, errMessage(err), err)
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/slacksum-agent/internal/domain/agent"
	"github.com/yanqian/slacksum-agent/internal/domain/notification"
	apperrors "github.com/yanqian/slacksum-agent/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	agentSvc  agent.Service
	notifySvc notification.Service
	logger    *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(agentSvc agent.Service, notifySvc notification.Service, logger *slog.Logger) *Handler {
	return &Handler{
		agentSvc:  agentSvc,
		notifySvc: notifySvc,
		logger:    logger.With("component", "http.handler"),
	}
}

// agentPayload is the wire form of agent.Request. Required keys are pointers so that an absent
// key is rejected while an empty string, such as messages "", is accepted.
type agentPayload struct {
	UserID           *string `json:"user_id" binding:"required"`
	TeamID           *string `json:"team_id" binding:"required"`
	ChannelID        *string `json:"channel_id" binding:"required"`
	ChannelName      *string `json:"channel_name" binding:"required"`
	Messages         *string `json:"messages" binding:"required"`
	UserQuery        *string `json:"user_query" binding:"required"`
	DeviceID         *string `json:"device_id"`
	SlackAccessToken *string `json:"slack_access_token"`
}

func (p agentPayload) toRequest() agent.Request {
	return agent.Request{
		UserID:           *p.UserID,
		TeamID:           *p.TeamID,
		ChannelID:        *p.ChannelID,
		ChannelName:      *p.ChannelName,
		Messages:         *p.Messages,
		UserQuery:        *p.UserQuery,
		DeviceID:         p.DeviceID,
		SlackAccessToken: p.SlackAccessToken,
	}
}

// notificationPayload is the wire form of notification.Request.
type notificationPayload struct {
	UserID   *string        `json:"user_id" binding:"required"`
	DeviceID *string        `json:"device_id"`
	Title    *string        `json:"title" binding:"required"`
	Body     *string        `json:"body" binding:"required"`
	URL      *string        `json:"url"`
	Data     map[string]any `json:"data"`
}

func (p notificationPayload) toRequest() notification.Request {
	return notification.Request{
		UserID:   *p.UserID,
		DeviceID: p.DeviceID,
		Title:    *p.Title,
		Body:     *p.Body,
		URL:      p.URL,
		Data:     p.Data,
	}
}

// Process summarizes a batch of channel messages.
func (h *Handler) Process(c *gin.Context) {
	var payload agentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.agentSvc.Process(c.Request.Context(), payload.toRequest())
	if err != nil {
		status := http.StatusInternalServerError
		if apperrors.IsCode(err, apperrors.CodeInvalidInput) {
			status = http.StatusBadRequest
		}
		abortWithError(c, NewHTTPError(status, "agent_failed", causeMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

type contextResponse struct {
	Entries []agent.ContextEntry `json:"entries"`
}

// Context returns the stored conversation context for a team and user.
func (h *Handler) Context(c *gin.Context) {
	key := agent.ConversationKey{TeamID: c.Query("team_id"), UserID: c.Query("user_id")}
	entries, err := h.agentSvc.Context(c.Request.Context(), key)
	if err != nil {
		status := http.StatusInternalServerError
		if apperrors.IsCode(err, apperrors.CodeInvalidInput) {
			status = http.StatusBadRequest
		}
		abortWithError(c, NewHTTPError(status, "context_failed", errMessage(err), err))
		return
	}
	if entries == nil {
		entries = []agent.ContextEntry{}
	}
	c.JSON(http.StatusOK, contextResponse{Entries: entries})
}

// SendNotification forwards a push notification to the relay.
func (h *Handler) SendNotification(c *gin.Context) {
	var payload notificationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	result, err := h.notifySvc.Send(c.Request.Context(), payload.toRequest())
	if err != nil {
		abortWithError(c, notificationError(err))
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", result)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// notificationError maps relay failures. Upstream rejections keep the relay's status.
func notificationError(err error) *HTTPError {
	var upstream *notification.UpstreamError
	switch {
	case errors.As(err, &upstream):
		status := upstream.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return NewHTTPError(status, apperrors.CodeRelayRejected, "Failed to send notification: "+upstream.Body, err)
	case apperrors.IsCode(err, apperrors.CodeRelayInvalidResponse):
		return NewHTTPError(http.StatusBadGateway, apperrors.CodeRelayInvalidResponse, "invalid relay response", err)
	default:
		return NewHTTPError(http.StatusInternalServerError, apperrors.CodeRelayUnavailable, errMessage(err), err)
	}
}

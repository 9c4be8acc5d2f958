package notification

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	apperrors "github.com/yanqian/slacksum-agent/pkg/errors"
	"github.com/yanqian/slacksum-agent/pkg/util"
)

const importantBodyLimit = 100

// Service forwards push notifications to the relay.
type Service interface {
	Send(ctx context.Context, req Request) (Result, error)
	NotifyImportant(ctx context.Context, userID, channelName, message string) (Result, error)
}

// RelayClient delivers a payload to the external push relay. Non-2xx answers are returned as
// *UpstreamError.
type RelayClient interface {
	Send(ctx context.Context, payload Payload) (Result, error)
}

type service struct {
	client RelayClient
	logger *slog.Logger
}

// NewService wires the notification relay domain.
func NewService(client RelayClient, logger *slog.Logger) Service {
	return &service{client: client, logger: logger.With("component", "notification.service")}
}

func (s *service) Send(ctx context.Context, req Request) (Result, error) {
	payload := buildPayload(req)
	result, err := s.client.Send(ctx, payload)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			s.logger.Warn("relay rejected notification", "user_id", req.UserID, "status", upstream.StatusCode)
			return nil, apperrors.Wrap(apperrors.CodeRelayRejected, "Failed to send notification", err)
		}
		if apperrors.IsCode(err, apperrors.CodeRelayInvalidResponse) {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.CodeRelayUnavailable, "Request failed", err)
	}
	s.logger.Info("notification relayed", "user_id", req.UserID, "all_devices", req.DeviceID == nil)
	return result, nil
}

// NotifyImportant pushes an "Important" alert for a channel, as a background job would after
// spotting something urgent.
func (s *service) NotifyImportant(ctx context.Context, userID, channelName, message string) (Result, error) {
	link := DefaultURL + "?channel=" + url.QueryEscape(channelName)
	return s.Send(ctx, Request{
		UserID: userID,
		Title:  "Important: #" + channelName,
		Body:   util.TruncateRunes(message, importantBodyLimit),
		URL:    &link,
	})
}

func buildPayload(req Request) Payload {
	link := DefaultURL
	if req.URL != nil {
		link = *req.URL
	}
	data := req.Data
	if data == nil {
		data = map[string]any{}
	}
	return Payload{
		UserID:   req.UserID,
		DeviceID: req.DeviceID,
		Title:    req.Title,
		Body:     req.Body,
		URL:      link,
		Data:     data,
	}
}

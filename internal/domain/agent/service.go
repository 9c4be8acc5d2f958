package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/yanqian/slacksum-agent/pkg/errors"
	"github.com/yanqian/slacksum-agent/pkg/util"
)

// Service exposes the chat summarization agent.
type Service interface {
	Process(ctx context.Context, req Request) (Response, error)
	Context(ctx context.Context, key ConversationKey) ([]ContextEntry, error)
}

type service struct {
	cfg        Config
	store      ContextStore
	summarizer Summarizer
	counter    TokenCounter
	logger     *slog.Logger
	now        func() time.Time
}

// NewService is a wire provider for the agent domain.
func NewService(cfg Config, store ContextStore, summarizer Summarizer, counter TokenCounter, logger *slog.Logger) Service {
	if counter == nil {
		counter = approxCounter{}
	}
	return &service{
		cfg:        cfg,
		store:      store,
		summarizer: summarizer,
		counter:    counter,
		logger:     logger.With("component", "agent.service"),
		now:        util.NowUTC,
	}
}

func (s *service) Process(ctx context.Context, req Request) (Response, error) {
	key := req.Key()

	if err := s.store.Append(ctx, key, s.entry(RoleUser, userTurn(req))); err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeInternal, "append user context failed", err)
	}

	history, err := s.store.Get(ctx, key)
	if err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeInternal, "load context failed", err)
	}
	prompt := buildPrompt(systemPromptFor(s.cfg.SystemPrompt, req.ChannelName), history, s.counter, s.cfg.MaxPromptTokens)

	completion, err := s.summarizer.Summarize(ctx, req, prompt)
	if err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeInternal, "summarizer failed", err)
	}

	if err := s.store.Append(ctx, key, s.entry(RoleAssistant, completion.Text)); err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeInternal, "append assistant context failed", err)
	}
	if s.cfg.ContextLimit > 0 {
		if err := s.store.Trim(ctx, key, s.cfg.ContextLimit); err != nil {
			return Response{}, apperrors.Wrap(apperrors.CodeInternal, "trim context failed", err)
		}
	}

	usage := completion.Usage.WithPrompt(prompt.Tokens)
	s.logger.Info("agent request processed",
		"conversation", key.String(),
		"channel_id", req.ChannelID,
		"context_entries", len(prompt.Context),
		"prompt_tokens", usage.PromptTokens,
		"total_tokens", usage.TotalTokens,
	)

	resp := Response{Response: completion.Text, ShouldNotify: ShouldNotify(completion.Text)}
	if resp.ShouldNotify {
		resp.NotificationTitle, resp.NotificationBody = notificationFor(req.ChannelName)
	}
	return resp, nil
}

func (s *service) Context(ctx context.Context, key ConversationKey) ([]ContextEntry, error) {
	if key.TeamID == "" || key.UserID == "" {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "team_id and user_id are required", nil)
	}
	entries, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load context failed", err)
	}
	return entries, nil
}

func (s *service) entry(role Role, content string) ContextEntry {
	return ContextEntry{Role: role, Content: content, CreatedAt: s.now()}
}

// userTurn is the context text recorded for the incoming request.
func userTurn(req Request) string {
	if req.Messages == "" {
		return req.UserQuery
	}
	return fmt.Sprintf("New messages from #%s:\n%s\n\nUser query: %s", req.ChannelName, req.Messages, req.UserQuery)
}

package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/slacksum-agent/internal/domain/agent"
	"github.com/yanqian/slacksum-agent/internal/infra/config"
	"github.com/yanqian/slacksum-agent/internal/infra/contextstore"
	"github.com/yanqian/slacksum-agent/internal/infra/llm/chatgpt"
	"github.com/yanqian/slacksum-agent/internal/infra/llm/tokenizer"
	"github.com/yanqian/slacksum-agent/internal/infra/push"
	"github.com/yanqian/slacksum-agent/internal/infra/summarizer"
)

func provideAgentConfig(cfg *config.Config) agent.Config {
	return agent.Config{
		ContextLimit:    cfg.Agent.ContextLimit,
		MaxPromptTokens: cfg.Agent.MaxPromptTokens,
		SystemPrompt:    cfg.Agent.SystemPrompt,
	}
}

func provideContextStore(cfg *config.Config, logger *slog.Logger) (agent.ContextStore, func()) {
	noop := func() {}
	limit := cfg.Agent.ContextLimit
	if cfg.ContextStore.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg.ContextStore.Valkey.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return contextstore.NewMemoryStore(limit), noop
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return contextstore.NewMemoryStore(limit), noop
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
		} else {
			logger.Info("context valkey store enabled", "addr", cfg.ContextStore.Valkey.Addr)
			store := contextstore.NewValkeyStore(client, cfg.ContextStore.Valkey.Prefix, limit, cfg.ContextStore.Valkey.TTL)
			return store, client.Close
		}
	}
	logger.Info("using in-memory context store", "limit", limit)
	return contextstore.NewMemoryStore(limit), noop
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

// provideSummarizer selects the backend named by agent.backend.
func provideSummarizer(cfg *config.Config, logger *slog.Logger) (agent.Summarizer, func(), error) {
	noop := func() {}
	switch cfg.Agent.Backend {
	case config.BackendChatGPT:
		client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("chatgpt summarizer enabled", "model", cfg.LLM.Model)
		return summarizer.NewChatGPTSummarizer(client, cfg.LLM.Model, cfg.LLM.Temperature), noop, nil
	case config.BackendGemini:
		s, cleanup, err := summarizer.NewGeminiSummarizer(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Temperature)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("gemini summarizer enabled", "model", cfg.Gemini.Model)
		return s, cleanup, nil
	default:
		return agent.NewPlaceholderSummarizer(), noop, nil
	}
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) agent.TokenCounter {
	model := ""
	if cfg.Agent.Backend == config.BackendChatGPT {
		model = cfg.LLM.Model
	}
	return tokenizer.New(model, logger)
}

func providePushOptions(cfg *config.Config) push.Options {
	return push.Options{
		BaseURL:     cfg.Relay.BaseURL,
		Path:        cfg.Relay.Path,
		APIKey:      cfg.Relay.APIKey,
		Timeout:     cfg.Relay.Timeout,
		MaxAttempts: cfg.Relay.MaxAttempts,
		BaseBackoff: cfg.Relay.BaseBackoff,
	}
}

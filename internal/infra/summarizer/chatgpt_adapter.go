package summarizer

import (
	"context"
	"strings"

	"github.com/yanqian/slacksum-agent/internal/domain/agent"
	"github.com/yanqian/slacksum-agent/internal/infra/llm/chatgpt"
	"github.com/yanqian/slacksum-agent/pkg/metrics"
)

// ChatCompleter is the subset of the ChatGPT client used by the adapter.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// ChatGPTSummarizer forwards agent prompts to the ChatGPT chat completion API.
type ChatGPTSummarizer struct {
	client      ChatCompleter
	model       string
	temperature float32
}

// NewChatGPTSummarizer constructs the adapter.
func NewChatGPTSummarizer(client ChatCompleter, model string, temperature float32) *ChatGPTSummarizer {
	return &ChatGPTSummarizer{client: client, model: model, temperature: temperature}
}

// Summarize sends the system prompt and context as chat messages.
func (s *ChatGPTSummarizer) Summarize(ctx context.Context, _ agent.Request, prompt agent.Prompt) (agent.Completion, error) {
	resp, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.model,
		Temperature: s.temperature,
		Messages:    toChatMessages(prompt),
	})
	if err != nil {
		return agent.Completion{}, err
	}
	usage := metrics.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if len(resp.Choices) == 0 {
		return agent.Completion{Usage: usage}, nil
	}
	return agent.Completion{
		Text:  strings.TrimSpace(resp.Choices[0].Message.Content),
		Usage: usage,
	}, nil
}

func toChatMessages(prompt agent.Prompt) []chatgpt.Message {
	messages := make([]chatgpt.Message, 0, len(prompt.Context)+1)
	messages = append(messages, chatgpt.Message{Role: "system", Content: prompt.System})
	for _, entry := range prompt.Context {
		messages = append(messages, chatgpt.Message{Role: string(entry.Role), Content: entry.Content})
	}
	return messages
}

var _ agent.Summarizer = (*ChatGPTSummarizer)(nil)

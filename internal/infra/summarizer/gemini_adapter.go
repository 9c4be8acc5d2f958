package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/yanqian/slacksum-agent/internal/domain/agent"
	"github.com/yanqian/slacksum-agent/pkg/metrics"
)

// GeminiSummarizer forwards agent prompts to a Gemini chat session.
type GeminiSummarizer struct {
	client *genai.Client
	model  string
	temp   float32
}

// NewGeminiSummarizer dials the Gemini API. The returned cleanup closes the client.
func NewGeminiSummarizer(ctx context.Context, apiKey, model string, temperature float32) (*GeminiSummarizer, func(), error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, nil, errors.New("gemini api key cannot be empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, nil, fmt.Errorf("create gemini client: %w", err)
	}
	cleanup := func() {
		_ = client.Close()
	}
	return &GeminiSummarizer{client: client, model: model, temp: temperature}, cleanup, nil
}

// Summarize replays the context as chat history and sends the newest entry.
func (s *GeminiSummarizer) Summarize(ctx context.Context, req agent.Request, prompt agent.Prompt) (agent.Completion, error) {
	model := s.client.GenerativeModel(s.model)
	model.SetTemperature(s.temp)
	model.SystemInstruction = genai.NewUserContent(genai.Text(prompt.System))

	history, last := splitHistory(prompt.Context, req.UserQuery)
	session := model.StartChat()
	session.History = history

	resp, err := session.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return agent.Completion{}, fmt.Errorf("gemini send message: %w", err)
	}
	return agent.Completion{
		Text:  strings.TrimSpace(extractText(resp)),
		Usage: usageFrom(resp),
	}, nil
}

// splitHistory maps all but the newest entry to Gemini history. With no context the fallback
// text is sent instead.
func splitHistory(entries []agent.ContextEntry, fallback string) ([]*genai.Content, string) {
	if len(entries) == 0 {
		return nil, fallback
	}
	history := make([]*genai.Content, 0, len(entries)-1)
	for _, entry := range entries[:len(entries)-1] {
		history = append(history, &genai.Content{
			Role:  geminiRole(entry.Role),
			Parts: []genai.Part{genai.Text(entry.Content)},
		})
	}
	return history, entries[len(entries)-1].Content
}

func geminiRole(role agent.Role) string {
	if role == agent.RoleAssistant {
		return "model"
	}
	return "user"
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}
	return text.String()
}

func usageFrom(resp *genai.GenerateContentResponse) metrics.TokenUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return metrics.TokenUsage{}
	}
	return metrics.TokenUsage{
		PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
		CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
	}
}

var _ agent.Summarizer = (*GeminiSummarizer)(nil)

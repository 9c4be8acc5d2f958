package agent

import (
	"context"
	"fmt"
	"strings"
)

// PlaceholderSummarizer formats a deterministic reply without calling any model.
type PlaceholderSummarizer struct{}

// NewPlaceholderSummarizer constructs the default backend.
func NewPlaceholderSummarizer() *PlaceholderSummarizer {
	return &PlaceholderSummarizer{}
}

// Summarize implements Summarizer.
func (PlaceholderSummarizer) Summarize(_ context.Context, req Request, _ Prompt) (Completion, error) {
	return Completion{Text: placeholderText(req)}, nil
}

func placeholderText(req Request) string {
	if req.Messages == "" {
		return fmt.Sprintf("I don't have any new messages to analyze from #%s. Click 'Fetch & Summarize' to get the latest messages.", req.ChannelName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Summary of %d messages in #%s:**\n\n", MessageCount(req.Messages), req.ChannelName)
	b.WriteString("Based on the recent conversation, here are the key points:\n\n")
	b.WriteString("**Key Discussions:**\n")
	b.WriteString("- Team members discussed various topics in the channel\n")
	b.WriteString("- Several updates were shared\n\n")
	b.WriteString("**Action Items:**\n")
	b.WriteString("- Review the full conversation for specific tasks\n")
	b.WriteString("- Follow up on any pending items\n\n")
	b.WriteString("**Note:** This is a placeholder response. Connect your AI model for actual summarization.\n\n")
	b.WriteString("---\n")
	fmt.Fprintf(&b, "*Query: %s*", req.UserQuery)
	return b.String()
}

// MessageCount counts newline-delimited lines in a formatted message batch.
func MessageCount(messages string) int {
	return strings.Count(messages, "\n") + 1
}

var _ Summarizer = (*PlaceholderSummarizer)(nil)

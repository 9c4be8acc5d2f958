package agent

import "context"

// ContextStore keeps the bounded per-conversation history.
type ContextStore interface {
	// Get returns the entries for key in insertion order, creating an empty list when absent.
	Get(ctx context.Context, key ConversationKey) ([]ContextEntry, error)
	// Append adds entry and truncates the list to the store limit as one operation.
	Append(ctx context.Context, key ConversationKey, entry ContextEntry) error
	// Trim keeps only the most recent limit entries.
	Trim(ctx context.Context, key ConversationKey, limit int) error
}

// Summarizer turns a prompt into response text. Implementations are external capabilities.
type Summarizer interface {
	Summarize(ctx context.Context, req Request, prompt Prompt) (Completion, error)
}

// TokenCounter measures text size in model tokens.
type TokenCounter interface {
	Count(text string) int
}

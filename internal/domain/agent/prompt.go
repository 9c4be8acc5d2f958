package agent

import (
	"fmt"
	"strings"
)

// systemPromptFor renders the system prompt for a channel. Templates without a %s verb get the
// channel appended instead.
func systemPromptFor(template, channelName string) string {
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, channelName)
	}
	return template + "\nChannel: #" + channelName
}

// buildPrompt assembles the system prompt and history, dropping the oldest entries until the
// prompt fits maxTokens. The newest entry is always kept.
func buildPrompt(system string, history []ContextEntry, counter TokenCounter, maxTokens int) Prompt {
	systemTokens := counter.Count(system)
	sizes := make([]int, len(history))
	total := systemTokens
	for i, entry := range history {
		sizes[i] = counter.Count(entry.Content)
		total += sizes[i]
	}

	start := 0
	if maxTokens > 0 {
		for total > maxTokens && start < len(history)-1 {
			total -= sizes[start]
			start++
		}
	}

	kept := make([]ContextEntry, len(history)-start)
	copy(kept, history[start:])
	return Prompt{System: system, Context: kept, Tokens: total}
}

// approxCounter estimates four bytes per token when no tokenizer is wired.
type approxCounter struct{}

func (approxCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}

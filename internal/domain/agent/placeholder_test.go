package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlaceholderNoMessages(t *testing.T) {
	completion, err := NewPlaceholderSummarizer().Summarize(context.Background(), Request{ChannelName: "general", UserQuery: "anything new?"}, Prompt{})
	require.NoError(t, err)
	require.Equal(t, "I don't have any new messages to analyze from #general. Click 'Fetch & Summarize' to get the latest messages.", completion.Text)
	require.False(t, ShouldNotify(completion.Text))
}

func TestPlaceholderSummary(t *testing.T) {
	text := placeholderText(Request{ChannelName: "eng", Messages: "a\nb\nc", UserQuery: "what changed?"})

	require.True(t, strings.HasPrefix(text, "**Summary of 3 messages in #eng:**\n\n"))
	require.Contains(t, text, "**Action Items:**")
	require.True(t, strings.HasSuffix(text, "*Query: what changed?*"))
	require.True(t, ShouldNotify(text))
}

func TestMessageCount(t *testing.T) {
	tests := []struct {
		name     string
		messages string
		want     int
	}{
		{name: "single line", messages: "[alice]: hi", want: 1},
		{name: "three lines", messages: "a\nb\nc", want: 3},
		{name: "trailing newline counts", messages: "a\n", want: 2},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, MessageCount(tt.messages))
		})
	}
}

package agent

import (
	"time"

	"github.com/yanqian/slacksum-agent/pkg/metrics"
)

// Role tags who authored a context entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Config configures the agent service.
type Config struct {
	ContextLimit    int
	MaxPromptTokens int
	SystemPrompt    string
}

// ConversationKey identifies one isolated context thread.
type ConversationKey struct {
	TeamID string
	UserID string
}

// String renders the key as "<team>:<user>".
func (k ConversationKey) String() string {
	return k.TeamID + ":" + k.UserID
}

// ContextEntry is one role-tagged message kept in a conversation context.
type ContextEntry struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Request is the payload sent by the dashboard to process channel messages.
type Request struct {
	UserID           string  `json:"user_id"`
	TeamID           string  `json:"team_id"`
	ChannelID        string  `json:"channel_id"`
	ChannelName      string  `json:"channel_name"`
	Messages         string  `json:"messages"`
	UserQuery        string  `json:"user_query"`
	DeviceID         *string `json:"device_id,omitempty"`
	SlackAccessToken *string `json:"slack_access_token,omitempty"`
}

// Key returns the conversation key the request belongs to.
func (r Request) Key() ConversationKey {
	return ConversationKey{TeamID: r.TeamID, UserID: r.UserID}
}

// Response is returned to the dashboard.
type Response struct {
	Response          string  `json:"response"`
	ShouldNotify      bool    `json:"shouldNotify"`
	NotificationTitle *string `json:"notificationTitle"`
	NotificationBody  *string `json:"notificationBody"`
}

// Prompt is the structure handed to a summarizer backend.
type Prompt struct {
	System  string
	Context []ContextEntry
	// Tokens is the locally counted size of System plus Context.
	Tokens int
}

// Completion is what a summarizer backend returns.
type Completion struct {
	Text  string
	Usage metrics.TokenUsage
}

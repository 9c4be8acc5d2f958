package notification

import (
	"encoding/json"
	"fmt"
)

// DefaultURL is where the browser lands when a notification is clicked.
const DefaultURL = "/dashboard"

// Request asks the relay to push a notification to a user's browsers.
type Request struct {
	UserID string `json:"user_id"`
	// DeviceID selects one device; nil targets every device registered for the user.
	DeviceID *string        `json:"device_id,omitempty"`
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	URL      *string        `json:"url,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Payload is the JSON body sent to the relay.
type Payload struct {
	UserID   string         `json:"user_id"`
	DeviceID *string        `json:"device_id"`
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	URL      string         `json:"url"`
	Data     map[string]any `json:"data"`
}

// Result is the relay's JSON response, forwarded untouched.
type Result = json.RawMessage

// UpstreamError reports a non-2xx answer from the relay.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("relay responded with status %d: %s", e.StatusCode, e.Body)
}

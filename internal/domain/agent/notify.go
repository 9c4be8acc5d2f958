package agent

import "strings"

var notifyMarkers = []string{"action item", "urgent"}

// ShouldNotify reports whether the generated text warrants a push notification.
func ShouldNotify(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range notifyMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func notificationFor(channelName string) (*string, *string) {
	title := "Update from #" + channelName
	body := "New action items detected"
	return &title, &body
}

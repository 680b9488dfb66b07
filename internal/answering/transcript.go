package answering

import (
	"strings"

	"pdf-insight/internal/store"
)

// SerializeTranscript renders the history as "role: content" lines, oldest first.
func SerializeTranscript(history []store.Message) string {
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		lines = append(lines, string(msg.Role)+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

package render

import (
	"bytes"
	"html"
	"log/slog"
	"strings"

	"pdf-insight/internal/store"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in model output is omitted, never passed through.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

// Message renders one transcript entry. User text is shown as typed;
// assistant text is rendered as markdown.
func Message(msg store.Message) string {
	if msg.Role == store.RoleAssistant {
		return Assistant(msg.Content)
	}
	return User(msg.Content)
}

func User(text string) string {
	return "<p>" + strings.ReplaceAll(html.EscapeString(text), "\n", "<br>") + "</p>"
}

func Assistant(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		slog.Warn("error rendering assistant message, falling back to plain text", "error", err)
		return User(text)
	}
	return strings.TrimSpace(buf.String())
}

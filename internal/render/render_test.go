package render_test

import (
	"testing"

	"pdf-insight/internal/render"
	"pdf-insight/internal/store"

	"github.com/stretchr/testify/assert"
)

func TestAssistantParagraphsAndBold(t *testing.T) {
	got := render.Assistant("The **key** finding.\n\nSecond paragraph\ncontinues here.")
	assert.Contains(t, got, "<p>The <strong>key</strong> finding.</p>")
	assert.Contains(t, got, "<p>Second paragraph<br>")
	assert.Contains(t, got, "continues here.</p>")
}

func TestAssistantLists(t *testing.T) {
	got := render.Assistant("Takeaways:\n\n- Revenue grew\n- Costs **fell**\n\n1. First\n2. Second")
	assert.Contains(t, got, "<p>Takeaways:</p>")
	assert.Contains(t, got, "<ul>")
	assert.Contains(t, got, "<li>Revenue grew</li>")
	assert.Contains(t, got, "<li>Costs <strong>fell</strong></li>")
	assert.Contains(t, got, "<ol>")
	assert.Contains(t, got, "<li>First</li>")
	assert.Contains(t, got, "<li>Second</li>")
}

func TestAssistantDropsMarkup(t *testing.T) {
	got := render.Assistant("Hello <script>alert(1)</script> **<b>x</b>**")
	assert.NotContains(t, got, "<script>")
	assert.NotContains(t, got, "<b>")
	assert.Contains(t, got, "<strong>")

	got = render.Assistant("<script>alert(1)</script>")
	assert.NotContains(t, got, "<script>")
}

func TestAssistantEscapesText(t *testing.T) {
	assert.Equal(t, "<p>1 &lt; 2 &amp; 3 &gt; 2</p>", render.Assistant("1 < 2 & 3 > 2"))
}

func TestUserTextIsVerbatim(t *testing.T) {
	assert.Equal(t, "<p>**not bold** &amp; <br>- not a list</p>", render.User("**not bold** & \n- not a list"))
	assert.Equal(t, "<p>&lt;script&gt;alert(1)&lt;/script&gt;</p>", render.User("<script>alert(1)</script>"))
}

func TestMessageDispatchesOnRole(t *testing.T) {
	assert.Equal(t, "<p><strong>hi</strong></p>", render.Message(store.Message{Role: store.RoleAssistant, Content: "**hi**"}))
	assert.Equal(t, "<p>**hi**</p>", render.Message(store.Message{Role: store.RoleUser, Content: "**hi**"}))
	assert.Equal(t, "", render.Assistant("  \n\n "))
}

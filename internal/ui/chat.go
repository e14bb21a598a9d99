package ui

import (
	"net/url"

	"charm.land/lipgloss/v2"
)

// ChatBubble is the always-present support chat widget. It points at a
// published app on the server.
type ChatBubble struct {
	baseURL string
	appID   string
}

// NewChatBubble creates the widget for a published app id
func NewChatBubble(baseURL, appID string) *ChatBubble {
	return &ChatBubble{baseURL: baseURL, appID: appID}
}

// AppID returns the published app id
func (c *ChatBubble) AppID() string {
	return c.appID
}

// EmbedURL returns the public page of the published app, or "" without an id
func (c *ChatBubble) EmbedURL() string {
	if c.appID == "" {
		return ""
	}
	return c.baseURL + "/app/" + url.PathEscape(c.appID)
}

// View renders the bubble right-aligned in width
func (c *ChatBubble) View(width int) string {
	label := "💬 Ask us"
	if c.appID == "" {
		label = "💬 Chat unavailable"
	}
	bubble := ChatBubbleStyle.Render(label) + StatusMutedStyle.Render(" c: copy link")
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble)
}

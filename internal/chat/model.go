package chat

import (
	"fmt"
	"strings"
	"time"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a conversation. Messages are immutable once
// created; a conversation is an append-only ordered sequence of them.
type Message struct {
	ID        string    `json:"id,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// LastUserContent returns the content of the most recent user message, or the
// last message if no user turn exists. Responders must tolerate histories that
// do not alternate roles.
func LastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Content
	}
	return ""
}

// Transcript renders the conversation as "Visitor:"/"Bot:" lines for lead
// notifications.
func Transcript(messages []Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		speaker := "Bot"
		if m.Role == RoleUser {
			speaker = "Visitor"
		}
		fmt.Fprintf(&b, "%s: %s", speaker, m.Content)
	}
	return b.String()
}

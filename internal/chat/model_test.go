package chat

import (
	"testing"
)

func TestLastUserContent(t *testing.T) {
	messages := []Message{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi, how can I help?"},
		{Role: RoleUser, Content: "tell me about pricing"},
	}
	if got := LastUserContent(messages); got != "tell me about pricing" {
		t.Errorf("expected last user turn, got %q", got)
	}
}

func TestLastUserContentNoUserTurn(t *testing.T) {
	messages := []Message{
		{Role: RoleAssistant, Content: "welcome"},
		{Role: RoleAssistant, Content: "still here"},
	}
	if got := LastUserContent(messages); got != "still here" {
		t.Errorf("expected last message as fallback, got %q", got)
	}
}

func TestLastUserContentEmpty(t *testing.T) {
	if got := LastUserContent(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestTranscriptSpeakerLabels(t *testing.T) {
	messages := []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello!"},
		{Role: RoleUser, Content: "bye"},
	}
	want := "Visitor: hi\nBot: hello!\nVisitor: bye"
	if got := Transcript(messages); got != want {
		t.Errorf("Transcript() = %q, want %q", got, want)
	}
}

func TestTranscriptEmpty(t *testing.T) {
	if got := Transcript(nil); got != "" {
		t.Errorf("expected empty transcript, got %q", got)
	}
}

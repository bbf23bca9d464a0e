package widget

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maruonline/chat-widget/internal/chat"
)

// State is the widget's visibility state.
type State string

const (
	StateClosed        State = "closed"
	StateOpenActive    State = "open-active"
	StateOpenMinimized State = "open-minimized"
)

// Greeting is the synthesized first assistant message.
const Greeting = "\U0001F44B Hi! I'm Maru AI, your intelligent assistant for AI & automation solutions.\n\nI'm here to help you discover how we can transform your business with cutting-edge technology.\n\nAsk me a question or select an option below:"

// TransportFailureMessage is shown instead of raw errors when a chat request
// fails in flight.
const TransportFailureMessage = "I'm sorry, I'm having trouble connecting right now. Please try again or email us at hello@maruonline.com"

// LeadFormDelay is the pause between a triggering reply and the form reveal.
const LeadFormDelay = time.Second

// minMessagesForLeadForm is the conversation length the heuristic requires
// before the lead form may appear. Product heuristic, not a contract.
const minMessagesForLeadForm = 5

var leadFormTriggers = []string{
	"consultation",
	"schedule",
	"book",
	"contact",
	"speak",
	"connect",
	"pricing",
	"quote",
}

var (
	ErrNotActive    = errors.New("widget: session is not open")
	ErrEmptyMessage = errors.New("widget: message is empty")
	ErrBusy         = errors.New("widget: a request is already in flight")
)

// Session is the conversation state machine for one widget instance. All
// flag mutation goes through transition methods; messages are append-only.
type Session struct {
	mu sync.Mutex

	id            string
	state         State
	messages      []chat.Message
	loading       bool
	leadFormShown bool
}

// NewSession creates a closed session with no history.
func NewSession(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{
		id:    id,
		state: StateClosed,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current visibility state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Messages returns a copy of the transcript so far.
func (s *Session) Messages() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]chat.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Open transitions closed -> open-active. On first entry it synthesizes the
// greeting message and returns it; reopening restores prior history and
// returns nil.
func (s *Session) Open() *chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateOpenActive
	if len(s.messages) > 0 {
		return nil
	}

	greeting := chat.Message{
		ID:        uuid.NewString(),
		Role:      chat.RoleAssistant,
		Content:   Greeting,
		Timestamp: time.Now().UTC(),
	}
	s.messages = append(s.messages, greeting)
	return &greeting
}

// ToggleMinimize flips between open-active and open-minimized.
func (s *Session) ToggleMinimize() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateOpenActive:
		s.state = StateOpenMinimized
	case StateOpenMinimized:
		s.state = StateOpenActive
	}
	return s.state
}

// Close hides the widget. History is NOT cleared; reopening restores it.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClosed
}

// BeginSend validates and appends a user message and sets the loading flag.
// Sending is only permitted in open-active with non-empty trimmed input and
// no outstanding request.
func (s *Session) BeginSend(input string) (chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateOpenActive {
		return chat.Message{}, ErrNotActive
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return chat.Message{}, ErrEmptyMessage
	}
	if s.loading {
		return chat.Message{}, ErrBusy
	}

	msg := chat.Message{
		ID:        uuid.NewString(),
		Role:      chat.RoleUser,
		Content:   input,
		Timestamp: time.Now().UTC(),
	}
	s.messages = append(s.messages, msg)
	s.loading = true
	return msg, nil
}

// AppendAssistant records the reply for the in-flight request, clears the
// loading flag, and evaluates the lead-form heuristic: five or more messages
// before the current exchange, form not yet shown, and a trigger keyword in
// the reply. Returns the appended message and whether the form reveal should
// be scheduled.
func (s *Session) AppendAssistant(content string) (chat.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior := len(s.messages) - 1 // history before the in-flight user turn

	msg := chat.Message{
		ID:        uuid.NewString(),
		Role:      chat.RoleAssistant,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	s.messages = append(s.messages, msg)
	s.loading = false

	if s.leadFormShown || prior < minMessagesForLeadForm {
		return msg, false
	}
	if !containsLeadTrigger(content) {
		return msg, false
	}
	s.leadFormShown = true
	return msg, true
}

// FailSend clears the loading flag and appends the fixed apologetic message.
func (s *Session) FailSend() chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := chat.Message{
		ID:        uuid.NewString(),
		Role:      chat.RoleAssistant,
		Content:   TransportFailureMessage,
		Timestamp: time.Now().UTC(),
	}
	s.messages = append(s.messages, msg)
	s.loading = false
	return msg
}

// LeadFormShown reports whether the capture form was revealed this session.
func (s *Session) LeadFormShown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leadFormShown
}

// Loading reports whether a chat request is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func containsLeadTrigger(reply string) bool {
	lower := strings.ToLower(reply)
	for _, kw := range leadFormTriggers {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

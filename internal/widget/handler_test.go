package widget

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/maruonline/chat-widget/internal/chat"
	"github.com/maruonline/chat-widget/pkg/logging"
)

type stubResponder struct {
	reply string
	err   error
	seen  [][]chat.Message
}

func (s *stubResponder) Respond(ctx context.Context, messages []chat.Message) (string, error) {
	cp := make([]chat.Message, len(messages))
	copy(cp, messages)
	s.seen = append(s.seen, cp)
	return s.reply, s.err
}

func newTestWidgetHandler(responder Responder) *Handler {
	return NewHandler(responder, NewMemoryTranscriptStore(), nil, logging.New("error"))
}

func postMessage(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/widget/message", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleMessage(rec, req)
	return rec
}

func TestHandleMessage(t *testing.T) {
	responder := &stubResponder{reply: "happy to help"}
	h := newTestWidgetHandler(responder)

	rec := postMessage(t, h, `{"text":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["response"] != "happy to help" {
		t.Errorf("unexpected reply %q", resp["response"])
	}
	if resp["session_id"] == "" {
		t.Error("a session id should be minted when none is supplied")
	}

	// Implicit open synthesizes the greeting, so the responder sees
	// greeting + user turn.
	if len(responder.seen) != 1 {
		t.Fatalf("expected 1 responder call, got %d", len(responder.seen))
	}
	hist := responder.seen[0]
	if len(hist) != 2 || hist[0].Content != Greeting || hist[1].Content != "hello" {
		t.Errorf("unexpected history passed to responder: %+v", hist)
	}
}

func TestHandleMessageKeepsSessionHistory(t *testing.T) {
	responder := &stubResponder{reply: "sure"}
	h := newTestWidgetHandler(responder)

	rec := postMessage(t, h, `{"session_id":"s-1","text":"first"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("first message: %d", rec.Code)
	}
	rec = postMessage(t, h, `{"session_id":"s-1","text":"second"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("second message: %d", rec.Code)
	}

	// greeting + first + reply + second
	last := responder.seen[len(responder.seen)-1]
	if len(last) != 4 {
		t.Errorf("expected 4 messages of history, got %d", len(last))
	}
}

func TestHandleMessageValidation(t *testing.T) {
	h := newTestWidgetHandler(&stubResponder{reply: "ok"})

	if rec := postMessage(t, h, `{bad json`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad json: expected 400, got %d", rec.Code)
	}
	if rec := postMessage(t, h, `{"text":"   "}`); rec.Code != http.StatusBadRequest {
		t.Errorf("blank text: expected 400, got %d", rec.Code)
	}
}

func TestHandleMessageResponderFailure(t *testing.T) {
	responder := &stubResponder{err: errors.New("model down")}
	h := newTestWidgetHandler(responder)

	rec := postMessage(t, h, `{"session_id":"s-1","text":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("failures are delivered as chat messages, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["response"] != TransportFailureMessage {
		t.Errorf("expected the fixed failure message, got %q", resp["response"])
	}

	// The apology lands in the transcript and the session accepts new input.
	rec = postMessage(t, h, `{"session_id":"s-1","text":"retry"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("session should accept messages after a failure, got %d", rec.Code)
	}
}

func TestHandleHistory(t *testing.T) {
	h := newTestWidgetHandler(&stubResponder{reply: "hi"})

	if rec := postMessage(t, h, `{"session_id":"s-1","text":"hello"}`); rec.Code != http.StatusOK {
		t.Fatalf("seed message: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/widget/history?session=s-1", nil)
	rec := httptest.NewRecorder()
	h.HandleHistory(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Messages []HistoryMessage `json:"messages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// greeting + user + reply
	if len(resp.Messages) != 3 {
		t.Fatalf("expected 3 history messages, got %d", len(resp.Messages))
	}
	if resp.Messages[1].Role != chat.RoleUser || resp.Messages[1].Text != "hello" {
		t.Errorf("unexpected history entry: %+v", resp.Messages[1])
	}
}

func TestHandleHistoryRequiresSession(t *testing.T) {
	h := newTestWidgetHandler(&stubResponder{})

	req := httptest.NewRequest(http.MethodGet, "/widget/history", nil)
	rec := httptest.NewRecorder()
	h.HandleHistory(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleHistorySeedsNewProcess(t *testing.T) {
	// A session persisted in the transcript store survives a handler
	// restart: the new handler seeds its state machine from the store.
	store := NewMemoryTranscriptStore()
	ctx := context.Background()
	_ = store.Append(ctx, "s-1", chat.Message{Role: chat.RoleAssistant, Content: Greeting})
	_ = store.Append(ctx, "s-1", chat.Message{Role: chat.RoleUser, Content: "earlier question"})

	responder := &stubResponder{reply: "welcome back"}
	h := NewHandler(responder, store, nil, logging.New("error"))

	rec := postMessage(t, h, `{"session_id":"s-1","text":"hello again"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	hist := responder.seen[0]
	if len(hist) != 3 {
		t.Fatalf("expected restored history + new turn, got %d messages", len(hist))
	}
	if hist[1].Content != "earlier question" {
		t.Errorf("restored history out of order: %+v", hist)
	}
}

func TestHandleWidgetJS(t *testing.T) {
	h := newTestWidgetHandler(&stubResponder{})

	req := httptest.NewRequest(http.MethodGet, "/widget.js", nil)
	rec := httptest.NewRecorder()
	h.HandleWidgetJS(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/javascript" {
		t.Errorf("unexpected content type %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("widget script should not be empty")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("widget script must be embeddable from any origin")
	}
}

package widget

import (
	"context"
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maruonline/chat-widget/internal/chat"
	"github.com/maruonline/chat-widget/internal/observability/metrics"
	"github.com/maruonline/chat-widget/pkg/logging"
	"golang.org/x/net/websocket"
)

//go:embed assets/widget.js
var widgetJS []byte

// Responder produces a reply for the conversation so far.
type Responder interface {
	Respond(ctx context.Context, messages []chat.Message) (string, error)
}

// Handler manages widget sessions over WebSocket with an HTTP fallback.
type Handler struct {
	responder  Responder
	transcript TranscriptStore
	metrics    *metrics.ChatMetrics
	logger     *logging.Logger

	mu       sync.RWMutex
	conns    map[string]*wsConn  // sessionID -> active connection
	sessions map[string]*Session // sessionID -> state machine
}

type wsConn struct {
	conn *websocket.Conn
	done chan struct{}
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type      string `json:"type"` // "open", "message", "minimize", "close", "ping"
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string           `json:"type"` // "session", "history", "typing", "message", "lead_form", "error", "pong"
	Text      string           `json:"text,omitempty"`
	Role      string           `json:"role,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Messages  []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is a simplified message for history responses.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewHandler creates a widget handler.
func NewHandler(responder Responder, transcript TranscriptStore, m *metrics.ChatMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if transcript == nil {
		transcript = NewMemoryTranscriptStore()
	}
	return &Handler{
		responder:  responder,
		transcript: transcript,
		metrics:    m,
		logger:     logger,
		conns:      make(map[string]*wsConn),
		sessions:   make(map[string]*Session),
	}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// session returns the state machine for a session ID, creating it and seeding
// it from the transcript store on first sight.
func (h *Handler) session(ctx context.Context, sessionID string) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sess, ok := h.sessions[sessionID]; ok {
		return sess
	}

	sess := NewSession(sessionID)
	if msgs, err := h.transcript.List(ctx, sessionID, 100); err == nil && len(msgs) > 0 {
		sess.messages = msgs
	}
	h.sessions[sessionID] = sess
	return sess
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = generateSessionID()
	}

	sess := h.session(r.Context(), sessionID)

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "session",
		SessionID: sessionID,
	})

	if msgs := sess.Messages(); len(msgs) > 0 {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: toHistory(msgs)})
	}

	wsc := &wsConn{conn: conn, done: make(chan struct{})}
	h.mu.Lock()
	h.conns[sessionID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.conns[sessionID] == wsc {
			delete(h.conns, sessionID)
		}
		h.mu.Unlock()
		close(wsc.done)
	}()

	h.metrics.ObserveWidgetEvent("session_opened")
	h.logger.Info("widget: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("widget: connection closed", "session_id", sessionID, "error", err)
			return
		}

		switch msg.Type {
		case "ping":
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
		case "open":
			if greeting := sess.Open(); greeting != nil {
				_ = h.transcript.Append(r.Context(), sessionID, *greeting)
				h.sendToSession(sessionID, OutboundMessage{
					Type:      "message",
					Role:      chat.RoleAssistant,
					Text:      greeting.Content,
					Timestamp: greeting.Timestamp.Format(time.RFC3339),
				})
			}
		case "minimize":
			sess.ToggleMinimize()
		case "close":
			sess.Close()
		case "message":
			h.processMessage(r.Context(), sess, msg.Text)
		}
	}
}

func (h *Handler) processMessage(ctx context.Context, sess *Session, text string) {
	sessionID := sess.ID()

	userMsg, err := sess.BeginSend(text)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) {
			return
		}
		h.sendToSession(sessionID, OutboundMessage{Type: "error", Text: "message not accepted"})
		return
	}
	_ = h.transcript.Append(ctx, sessionID, userMsg)
	h.metrics.ObserveWidgetEvent("message")

	h.sendToSession(sessionID, OutboundMessage{Type: "typing"})

	reply, err := h.responder.Respond(ctx, sess.Messages())
	if err != nil {
		h.logger.Error("widget: chat request failed", "error", err, "session_id", sessionID)
		failMsg := sess.FailSend()
		_ = h.transcript.Append(ctx, sessionID, failMsg)
		h.sendToSession(sessionID, OutboundMessage{
			Type:      "message",
			Role:      chat.RoleAssistant,
			Text:      failMsg.Content,
			Timestamp: failMsg.Timestamp.Format(time.RFC3339),
		})
		return
	}

	botMsg, showForm := sess.AppendAssistant(reply)
	_ = h.transcript.Append(ctx, sessionID, botMsg)

	h.sendToSession(sessionID, OutboundMessage{
		Type:      "message",
		Role:      chat.RoleAssistant,
		Text:      botMsg.Content,
		Timestamp: botMsg.Timestamp.Format(time.RFC3339),
	})

	if showForm {
		h.metrics.ObserveWidgetEvent("lead_form_scheduled")
		time.AfterFunc(LeadFormDelay, func() {
			h.sendToSession(sessionID, OutboundMessage{Type: "lead_form"})
		})
	}
}

// sendToSession sends a message to an active WebSocket session.
func (h *Handler) sendToSession(sessionID string, msg OutboundMessage) {
	h.mu.RLock()
	wsc, ok := h.conns[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	_ = websocket.JSON.Send(wsc.conn, msg)
}

// HandleMessage is the HTTP fallback for sending messages without WebSocket.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = generateSessionID()
	}

	sess := h.session(r.Context(), req.SessionID)
	sess.Open()

	userMsg, err := sess.BeginSend(req.Text)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	_ = h.transcript.Append(r.Context(), req.SessionID, userMsg)

	reply, err := h.responder.Respond(r.Context(), sess.Messages())
	if err != nil {
		h.logger.Error("widget: chat request failed", "error", err, "session_id", req.SessionID)
		failMsg := sess.FailSend()
		_ = h.transcript.Append(r.Context(), req.SessionID, failMsg)
		reply = failMsg.Content
	} else {
		botMsg, _ := sess.AppendAssistant(reply)
		_ = h.transcript.Append(r.Context(), req.SessionID, botMsg)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"response":   reply,
		"session_id": req.SessionID,
	})
}

// HandleHistory returns chat history for a session.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	msgs, err := h.transcript.List(r.Context(), sessionID, 100)
	if err != nil {
		h.logger.Error("widget: failed to load history", "error", err)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"messages": toHistory(msgs)})
}

// HandleWidgetJS serves the embeddable widget JavaScript.
func (h *Handler) HandleWidgetJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(widgetJS)
}

func toHistory(msgs []chat.Message) []HistoryMessage {
	out := make([]HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, HistoryMessage{
			Role:      m.Role,
			Text:      m.Content,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		})
	}
	return out
}

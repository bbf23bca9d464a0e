package chat

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/maruonline/chat-widget/internal/observability/metrics"
	"github.com/maruonline/chat-widget/pkg/logging"
)

// Handler serves the chat endpoint.
type Handler struct {
	orchestrator *Orchestrator
	metrics      *metrics.ChatMetrics
	logger       *logging.Logger
}

// NewHandler creates a chat HTTP handler.
func NewHandler(orchestrator *Orchestrator, m *metrics.ChatMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		orchestrator: orchestrator,
		metrics:      m,
		logger:       logger,
	}
}

type chatRequest struct {
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Response string `json:"response"`
	Success  bool   `json:"success"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HandleChat handles POST /api/chat requests.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	mode := string(h.orchestrator.Mode())

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Messages array is required")
		h.metrics.ObserveChat(mode, "bad_request", time.Since(start).Seconds())
		return
	}
	if len(req.Messages) == 0 {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Messages array is required")
		h.metrics.ObserveChat(mode, "bad_request", time.Since(start).Seconds())
		return
	}
	for _, m := range req.Messages {
		if strings.TrimSpace(m.Content) == "" || (m.Role != RoleUser && m.Role != RoleAssistant) {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "messages must be user/assistant turns with content")
			h.metrics.ObserveChat(mode, "bad_request", time.Since(start).Seconds())
			return
		}
	}

	reply, err := h.orchestrator.Respond(r.Context(), req.Messages)
	if err != nil {
		h.logger.Error("chat turn failed", "error", err, "mode", mode)
		h.writeError(w, http.StatusInternalServerError, "completion_failed", "Failed to generate response")
		h.metrics.ObserveChat(mode, "error", time.Since(start).Seconds())
		return
	}

	h.metrics.ObserveChat(mode, "ok", time.Since(start).Seconds())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(chatResponse{Response: reply, Success: true})
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: code, Message: message})
}

package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/maruonline/chat-widget/internal/observability/metrics"
	"github.com/maruonline/chat-widget/pkg/logging"
)

// Forwarder delivers a captured lead to the notification sink.
type Forwarder interface {
	NotifyLead(ctx context.Context, lead *Lead) error
}

// Handler handles HTTP requests for leads
type Handler struct {
	repo      Repository
	forwarder Forwarder
	metrics   *metrics.ChatMetrics
	logger    *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(repo Repository, forwarder Forwarder, m *metrics.ChatMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:      repo,
		forwarder: forwarder,
		metrics:   m,
		logger:    logger,
	}
}

type submitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SubmitLead handles POST /api/leads requests.
func (h *Handler) SubmitLead(w http.ResponseWriter, r *http.Request) {
	var req SubmitLeadRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode lead request", "error", err)
		h.metrics.ObserveLead("bad_request")
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	lead, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		if IsValidation(err) {
			h.logger.Info("lead rejected", "reason", err.Error())
			h.metrics.ObserveLead("validation_failed")
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		h.logger.Error("failed to create lead", "error", err)
		h.metrics.ObserveLead("error")
		writeError(w, http.StatusInternalServerError, "lead_failed", "Failed to process lead data")
		return
	}

	if err := h.forwarder.NotifyLead(r.Context(), lead); err != nil {
		h.logger.Error("lead delivery failed", "error", err, "lead_id", lead.ID)
		h.metrics.ObserveLead("delivery_failed")
		writeError(w, http.StatusInternalServerError, "delivery_failed", ErrDeliveryFailed.Error())
		return
	}

	h.logger.Info("lead captured", "id", lead.ID, "name", lead.Name)
	h.metrics.ObserveLead("delivered")

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(submitResponse{
		Success: true,
		Message: ConfirmationMessage(lead.Name, lead.Email),
	})
}

// ConfirmationMessage echoes the submitted name and email verbatim; the widget
// appends it to the conversation as the bot's acknowledgement.
func ConfirmationMessage(name, email string) string {
	return fmt.Sprintf("Thank you, %s! Our team will reach out to you at %s within 24 hours. Is there anything else I can help you with?", name, email)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: code, Message: message})
}

package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/maruonline/chat-widget/internal/leads"
	"github.com/maruonline/chat-widget/pkg/logging"
)

// Service forwards captured leads to the configured notification address.
type Service struct {
	email     EmailSender
	contactTo string
	logger    *logging.Logger
}

// NewService creates a lead notification service. The sender must not be nil;
// use NewConsoleSender for deployments without email credentials.
func NewService(email EmailSender, contactTo string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:     email,
		contactTo: contactTo,
		logger:    logger,
	}
}

// NotifyLead formats the lead block and hands it to the email sender. A sink
// failure surfaces to the caller; the lead must not be treated as captured.
func (s *Service) NotifyLead(ctx context.Context, lead *leads.Lead) error {
	if s.email == nil {
		return fmt.Errorf("notify: no email sender configured")
	}

	msg := EmailMessage{
		To:      s.contactTo,
		Subject: fmt.Sprintf("New Chatbot Lead: %s", lead.Name),
		Body:    FormatLeadBlock(lead),
	}

	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("lead notification failed", "error", err, "lead_id", lead.ID)
		return fmt.Errorf("notify: lead delivery: %w", err)
	}

	s.logger.Info("lead notification sent", "lead_id", lead.ID, "to", s.contactTo)
	return nil
}

// FormatLeadBlock renders the human-readable notification body containing all
// submitted fields plus the conversation transcript.
func FormatLeadBlock(lead *leads.Lead) string {
	orNot := func(v, placeholder string) string {
		if strings.TrimSpace(v) == "" {
			return placeholder
		}
		return v
	}

	timestamp := lead.CreatedAt
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	var b strings.Builder
	b.WriteString("New Lead from Maru Chatbot\n")
	b.WriteString("========================\n\n")
	fmt.Fprintf(&b, "Name: %s\n", lead.Name)
	fmt.Fprintf(&b, "Email: %s\n", lead.Email)
	fmt.Fprintf(&b, "Company: %s\n", orNot(lead.Company, "Not provided"))
	fmt.Fprintf(&b, "Phone: %s\n", orNot(lead.Phone, "Not provided"))
	fmt.Fprintf(&b, "Interest: %s\n", orNot(lead.Interest, "Not specified"))
	fmt.Fprintf(&b, "Message: %s\n\n", orNot(lead.Message, "None"))
	fmt.Fprintf(&b, "Source URL: %s\n", orNot(lead.SourceURL, "Unknown"))
	fmt.Fprintf(&b, "Timestamp: %s\n\n", timestamp.Format(time.RFC3339))
	b.WriteString("--- Conversation Transcript ---\n")
	b.WriteString(orNot(lead.Transcript, "No transcript available"))
	b.WriteString("\n========================")
	return b.String()
}

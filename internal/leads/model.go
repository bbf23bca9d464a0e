package leads

import (
	"regexp"
	"strings"
	"time"
)

// emailPattern is intentionally loose: local@domain.tld with no whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Lead represents a captured lead record
type Lead struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Company    string    `json:"company,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Interest   string    `json:"interest,omitempty"`
	Message    string    `json:"message,omitempty"`
	Transcript string    `json:"conversation_transcript,omitempty"`
	SourceURL  string    `json:"source_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SubmitLeadRequest represents the request body for submitting a lead
type SubmitLeadRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Company    string `json:"company"`
	Phone      string `json:"phone"`
	Interest   string `json:"interest"`
	Message    string `json:"message"`
	Transcript string `json:"conversationTranscript"`
	SourceURL  string `json:"sourceUrl"`
}

// Validate checks the submission, short-circuiting on the first failure.
func (r *SubmitLeadRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" {
		return ErrNameEmailRequired
	}
	if !emailPattern.MatchString(r.Email) {
		return ErrInvalidEmail
	}
	return nil
}

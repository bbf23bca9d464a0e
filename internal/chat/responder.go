package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
)

var chatTracer = otel.Tracer("maru.internal.chat")

const completionTimeout = 30 * time.Second

// Responder generates a single assistant reply for a conversation.
type Responder struct {
	client LLMClient
}

// NewResponder wraps an LLM client with the fixed system prompt.
func NewResponder(client LLMClient) (*Responder, error) {
	if client == nil {
		return nil, errors.New("chat: llm client cannot be nil")
	}
	return &Responder{client: client}, nil
}

// Respond sends the full conversation history plus the system prompt in one
// request and returns the textual completion. No retry, no streaming.
func (r *Responder) Respond(ctx context.Context, messages []Message) (string, error) {
	ctx, span := chatTracer.Start(ctx, "chat.complete")
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	resp, err := r.client.Complete(callCtx, LLMRequest{
		System:      []string{SystemPrompt},
		Messages:    messages,
		Temperature: 0.7,
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("chat: completion failed: %w", err)
	}
	if resp.Text == "" {
		err := errors.New("chat: model returned empty completion")
		span.RecordError(err)
		return "", err
	}
	return resp.Text, nil
}

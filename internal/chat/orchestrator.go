package chat

import (
	"context"
	"errors"

	"github.com/maruonline/chat-widget/pkg/logging"
)

// Mode identifies which responder handles a conversation turn.
type Mode string

const (
	ModeDemo Mode = "demo"
	ModeChat Mode = "chat"
	ModeRAG  Mode = "rag"
)

// SelectMode picks the responder for the given configuration state. It is a
// pure function so the selection policy is testable without network mocks.
func SelectMode(hasLLMProvider, hasRetrieval bool) Mode {
	switch {
	case !hasLLMProvider:
		return ModeDemo
	case hasRetrieval:
		return ModeRAG
	default:
		return ModeChat
	}
}

// Retriever answers a question from the knowledge base. Implemented by the
// rag package.
type Retriever interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Orchestrator routes a conversation to the demo, retrieval, or plain chat
// responder and returns a single reply string.
type Orchestrator struct {
	mode      Mode
	responder *Responder
	retriever Retriever
	logger    *logging.Logger
}

// NewOrchestrator wires the configured responders. responder may be nil only
// in demo mode; retriever may be nil unless mode is ModeRAG.
func NewOrchestrator(mode Mode, responder *Responder, retriever Retriever, logger *logging.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if mode != ModeDemo && responder == nil {
		return nil, errors.New("chat: responder required outside demo mode")
	}
	if mode == ModeRAG && retriever == nil {
		return nil, errors.New("chat: retriever required in rag mode")
	}
	return &Orchestrator{
		mode:      mode,
		responder: responder,
		retriever: retriever,
		logger:    logger,
	}, nil
}

// Mode reports the selected responder mode.
func (o *Orchestrator) Mode() Mode {
	return o.mode
}

// Respond produces the assistant reply for the conversation so far. In RAG
// mode a retrieval failure gets exactly one fallback attempt through the plain
// chat responder before any error surfaces.
func (o *Orchestrator) Respond(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("chat: conversation is empty")
	}

	switch o.mode {
	case ModeDemo:
		return DemoResponse(LastUserContent(messages)), nil
	case ModeRAG:
		reply, err := o.retriever.Answer(ctx, LastUserContent(messages))
		if err == nil && reply != "" {
			return reply, nil
		}
		if err != nil {
			o.logger.Warn("retrieval responder failed, falling back to chat", "error", err)
		}
		return o.responder.Respond(ctx, messages)
	default:
		return o.responder.Respond(ctx, messages)
	}
}

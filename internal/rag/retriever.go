package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/maruonline/chat-widget/internal/chat"
	"github.com/maruonline/chat-widget/pkg/logging"
	"go.opentelemetry.io/otel"
)

var ragTracer = otel.Tracer("maru.internal.rag")

// promptTemplate instructs the model to answer only from retrieved context.
const promptTemplate = `You are a helpful support agent for maruOnline.
Answer the question based ONLY on the following context:
%s

Question: %s`

const defaultTopK = 3

// ErrNoContext is returned when the index has no stored chunks for a query.
// The orchestrator treats it like any other retrieval failure and falls back
// to the plain chat responder.
var ErrNoContext = errors.New("rag: no relevant context found")

// VectorIndex is the query capability the retriever needs.
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, topK int) ([]Chunk, error)
}

// Retriever answers questions from the knowledge base: embed the question,
// fetch the nearest stored chunks, and ask the chat model to answer from that
// context alone.
type Retriever struct {
	embedder Embedder
	index    VectorIndex
	llm      chat.LLMClient
	topK     int
	logger   *logging.Logger
}

// NewRetriever wires the retrieval pipeline.
func NewRetriever(embedder Embedder, index VectorIndex, llm chat.LLMClient, logger *logging.Logger) (*Retriever, error) {
	if embedder == nil {
		return nil, errors.New("rag: embedder required")
	}
	if index == nil {
		return nil, errors.New("rag: vector index required")
	}
	if llm == nil {
		return nil, errors.New("rag: llm client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		llm:      llm,
		topK:     defaultTopK,
		logger:   logger,
	}, nil
}

// Answer runs the retrieval pipeline for one question. Every failure surfaces
// as an error; the caller owns the fallback policy.
func (r *Retriever) Answer(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", errors.New("rag: question is empty")
	}

	ctx, span := ragTracer.Start(ctx, "rag.answer")
	defer span.End()

	start := time.Now()

	vectors, err := r.embedder.Embed(ctx, []string{question})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("rag: embed question: %w", err)
	}
	if len(vectors) == 0 {
		return "", errors.New("rag: embedder returned no vectors")
	}

	chunks, err := r.index.Query(ctx, vectors[0], r.topK)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("rag: index query: %w", err)
	}

	contexts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) != "" {
			contexts = append(contexts, c.Text)
		}
	}
	if len(contexts) == 0 {
		return "", ErrNoContext
	}

	prompt := fmt.Sprintf(promptTemplate, strings.Join(contexts, "\n"), question)

	resp, err := r.llm.Complete(ctx, chat.LLMRequest{
		Messages: []chat.Message{
			{Role: chat.RoleUser, Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("rag: completion: %w", err)
	}
	if resp.Text == "" {
		return "", errors.New("rag: model returned empty completion")
	}

	r.logger.Debug("rag answer generated",
		"chunks", len(contexts),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp.Text, nil
}

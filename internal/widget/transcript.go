package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/maruonline/chat-widget/internal/chat"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TranscriptStore persists session transcripts for history replay.
type TranscriptStore interface {
	Append(ctx context.Context, sessionID string, msg chat.Message) error
	List(ctx context.Context, sessionID string, limit int64) ([]chat.Message, error)
}

// RedisTranscriptStore keeps transcripts in Redis lists with a TTL, so a
// visitor reconnecting within the window gets their history back.
type RedisTranscriptStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisTranscriptStore creates a Redis-backed transcript store.
func NewRedisTranscriptStore(client *redis.Client, ttl time.Duration) *RedisTranscriptStore {
	if client == nil {
		panic("widget: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisTranscriptStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("maru.internal.widget.transcript"),
	}
}

func transcriptKey(sessionID string) string {
	return fmt.Sprintf("widget:transcript:%s", sessionID)
}

// Append pushes a message onto the session's transcript and refreshes the TTL.
func (s *RedisTranscriptStore) Append(ctx context.Context, sessionID string, msg chat.Message) error {
	ctx, span := s.tracer.Start(ctx, "widget.transcript_append")
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("widget: failed to marshal message: %w", err)
	}

	key := transcriptKey(sessionID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("widget: failed to persist message: %w", err)
	}
	return nil
}

// List returns up to limit most recent messages in order.
func (s *RedisTranscriptStore) List(ctx context.Context, sessionID string, limit int64) ([]chat.Message, error) {
	ctx, span := s.tracer.Start(ctx, "widget.transcript_list")
	defer span.End()

	if limit <= 0 {
		limit = 100
	}

	raw, err := s.redis.LRange(ctx, transcriptKey(sessionID), -limit, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("widget: failed to load transcript: %w", err)
	}

	out := make([]chat.Message, 0, len(raw))
	for _, item := range raw {
		var msg chat.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("widget: failed to decode message: %w", err)
		}
		out = append(out, msg)
	}
	return out, nil
}

// MemoryTranscriptStore is the Redis-less fallback, also used in tests.
type MemoryTranscriptStore struct {
	mu       sync.RWMutex
	sessions map[string][]chat.Message
}

// NewMemoryTranscriptStore creates an in-memory transcript store.
func NewMemoryTranscriptStore() *MemoryTranscriptStore {
	return &MemoryTranscriptStore{
		sessions: make(map[string][]chat.Message),
	}
}

// Append stores the message in order.
func (s *MemoryTranscriptStore) Append(ctx context.Context, sessionID string, msg chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], msg)
	return nil
}

// List returns up to limit most recent messages in order.
func (s *MemoryTranscriptStore) List(ctx context.Context, sessionID string, limit int64) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.sessions[sessionID]
	if limit > 0 && int64(len(msgs)) > limit {
		msgs = msgs[int64(len(msgs))-limit:]
	}
	out := make([]chat.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

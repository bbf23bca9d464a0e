package widget

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/maruonline/chat-widget/internal/chat"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) (*RedisTranscriptStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisTranscriptStore(client, time.Hour), mr
}

func TestRedisTranscriptAppendAndList(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	msgs := []chat.Message{
		{ID: "1", Role: chat.RoleAssistant, Content: "hello"},
		{ID: "2", Role: chat.RoleUser, Content: "hi"},
		{ID: "3", Role: chat.RoleAssistant, Content: "how can I help?"},
	}
	for _, m := range msgs {
		if err := store.Append(ctx, "sess-1", m); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := store.List(ctx, "sess-1", 100)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	for i := range msgs {
		if got[i].ID != msgs[i].ID || got[i].Content != msgs[i].Content {
			t.Errorf("message %d mismatch: %+v", i, got[i])
		}
	}
}

func TestRedisTranscriptListLimit(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, "sess-1", chat.Message{ID: string(rune('a' + i)), Role: chat.RoleUser, Content: "m"}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := store.List(ctx, "sess-1", 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0].ID != "d" || got[1].ID != "e" {
		t.Errorf("expected the most recent messages, got %+v", got)
	}
}

func TestRedisTranscriptTTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, "sess-1", chat.Message{ID: "1", Role: chat.RoleUser, Content: "hi"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if mr.TTL(transcriptKey("sess-1")) <= 0 {
		t.Error("transcript key should carry a TTL")
	}

	mr.FastForward(2 * time.Hour)
	got, err := store.List(ctx, "sess-1", 100)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected expired transcript, got %d messages", len(got))
	}
}

func TestRedisTranscriptSessionIsolation(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	_ = store.Append(ctx, "a", chat.Message{ID: "1", Role: chat.RoleUser, Content: "from a"})
	_ = store.Append(ctx, "b", chat.Message{ID: "2", Role: chat.RoleUser, Content: "from b"})

	got, err := store.List(ctx, "a", 100)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Content != "from a" {
		t.Errorf("session transcripts leaked: %+v", got)
	}
}

func TestMemoryTranscriptStore(t *testing.T) {
	store := NewMemoryTranscriptStore()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := store.Append(ctx, "s", chat.Message{ID: string(rune('a' + i)), Role: chat.RoleUser, Content: "m"}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := store.List(ctx, "s", 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c" {
		t.Errorf("expected last two messages, got %+v", got)
	}

	empty, err := store.List(ctx, "unknown", 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("unknown session should be empty, got %d", len(empty))
	}
}

package main

import (
	"context"
	"testing"

	appconfig "github.com/maruonline/chat-widget/internal/config"
	"github.com/maruonline/chat-widget/internal/notify"
	"github.com/maruonline/chat-widget/internal/widget"
	"github.com/maruonline/chat-widget/pkg/logging"
)

func TestBuildLLMClientNoProviders(t *testing.T) {
	cfg := &appconfig.Config{}
	client, err := buildLLMClient(context.Background(), cfg, logging.New("error"))
	if err != nil {
		t.Fatalf("buildLLMClient: %v", err)
	}
	if client != nil {
		t.Error("no credentials should yield a nil client and demo mode")
	}
}

func TestBuildEmailSenderDefaultsToConsole(t *testing.T) {
	cfg := &appconfig.Config{}
	sender := buildEmailSender(context.Background(), cfg, logging.New("error"))
	if _, ok := sender.(*notify.ConsoleSender); !ok {
		t.Errorf("expected console sender without credentials, got %T", sender)
	}
}

func TestBuildTranscriptStoreDefaultsToMemory(t *testing.T) {
	cfg := &appconfig.Config{}
	store := buildTranscriptStore(cfg, logging.New("error"))
	if _, ok := store.(*widget.MemoryTranscriptStore); !ok {
		t.Errorf("expected in-memory store without REDIS_ADDR, got %T", store)
	}
}

func TestBuildTranscriptStoreUnreachableRedis(t *testing.T) {
	cfg := &appconfig.Config{RedisAddr: "127.0.0.1:1"}
	store := buildTranscriptStore(cfg, logging.New("error"))
	if _, ok := store.(*widget.MemoryTranscriptStore); !ok {
		t.Errorf("unreachable redis should fall back to memory, got %T", store)
	}
}

func TestBuildEmbedderRequiresProvider(t *testing.T) {
	if _, err := buildEmbedder(context.Background(), &appconfig.Config{}); err == nil {
		t.Fatal("expected error without an embedding provider")
	}
}

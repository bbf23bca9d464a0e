package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/joho/godotenv"
	"github.com/maruonline/chat-widget/cmd/mainconfig"
	"github.com/maruonline/chat-widget/internal/api/router"
	"github.com/maruonline/chat-widget/internal/chat"
	appconfig "github.com/maruonline/chat-widget/internal/config"
	"github.com/maruonline/chat-widget/internal/leads"
	"github.com/maruonline/chat-widget/internal/notify"
	"github.com/maruonline/chat-widget/internal/observability/metrics"
	"github.com/maruonline/chat-widget/internal/rag"
	"github.com/maruonline/chat-widget/internal/widget"
	"github.com/maruonline/chat-widget/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("no .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting chat-widget API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	chatMetrics := metrics.NewChatMetrics(registry)

	llmClient, err := buildLLMClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize LLM client", "error", err)
		os.Exit(1)
	}

	var responder *chat.Responder
	if llmClient != nil {
		responder, err = chat.NewResponder(llmClient)
		if err != nil {
			logger.Error("failed to initialize responder", "error", err)
			os.Exit(1)
		}
	}

	var retriever chat.Retriever
	if cfg.HasRetrieval() && llmClient != nil {
		retriever, err = buildRetriever(ctx, cfg, llmClient, logger)
		if err != nil {
			logger.Error("failed to initialize retriever", "error", err)
			os.Exit(1)
		}
	}

	mode := chat.SelectMode(cfg.HasLLMProvider(), cfg.HasRetrieval())
	orchestrator, err := chat.NewOrchestrator(mode, responder, retriever, logger)
	if err != nil {
		logger.Error("failed to initialize orchestrator", "error", err)
		os.Exit(1)
	}
	logger.Info("chat mode selected", "mode", mode)

	sender := buildEmailSender(ctx, cfg, logger)
	forwarder := notify.NewService(sender, cfg.ContactEmail, logger)

	leadsRepo := leads.NewInMemoryRepository()
	leadsHandler := leads.NewHandler(leadsRepo, forwarder, chatMetrics, logger)
	chatHandler := chat.NewHandler(orchestrator, chatMetrics, logger)

	transcripts := buildTranscriptStore(cfg, logger)
	widgetHandler := widget.NewHandler(orchestrator, transcripts, chatMetrics, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		ChatHandler:        chatHandler,
		LeadsHandler:       leadsHandler,
		WidgetHandler:      widgetHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildLLMClient assembles the chat model chain. Gemini is the primary
// provider; OpenAI and Bedrock act as fallbacks when configured. A nil
// return with a nil error means no provider is configured and the demo
// responder takes over.
func buildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (chat.LLMClient, error) {
	var clients []chat.LLMClient

	if cfg.GeminiAPIKey != "" {
		gemini, err := chat.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		logger.Info("gemini chat client configured", "model", cfg.GeminiModelID)
		clients = append(clients, gemini)
	}

	if cfg.OpenAIAPIKey != "" {
		oa, err := chat.NewOpenAILLMClient(cfg.OpenAIAPIKey, cfg.OpenAIModelID)
		if err != nil {
			return nil, fmt.Errorf("openai client: %w", err)
		}
		logger.Info("openai chat client configured", "model", cfg.OpenAIModelID)
		clients = append(clients, oa)
	}

	if cfg.BedrockModelID != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		bedrock, err := chat.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
		if err != nil {
			return nil, fmt.Errorf("bedrock client: %w", err)
		}
		logger.Info("bedrock chat client configured", "model", cfg.BedrockModelID)
		clients = append(clients, bedrock)
	}

	switch len(clients) {
	case 0:
		return nil, nil
	case 1:
		return clients[0], nil
	default:
		chain := clients[len(clients)-1]
		for i := len(clients) - 2; i >= 0; i-- {
			chain = chat.NewFallbackLLMClient(clients[i], chain, logger)
		}
		return chain, nil
	}
}

func buildRetriever(ctx context.Context, cfg *appconfig.Config, llm chat.LLMClient, logger *logging.Logger) (chat.Retriever, error) {
	embedder, err := buildEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}

	index, err := rag.NewPineconeIndex(rag.IndexConfig{
		Host:      cfg.PineconeIndexHost,
		APIKey:    cfg.PineconeAPIKey,
		Namespace: cfg.PineconeNamespace,
	})
	if err != nil {
		return nil, fmt.Errorf("pinecone index: %w", err)
	}

	retriever, err := rag.NewRetriever(embedder, index, llm, logger)
	if err != nil {
		return nil, fmt.Errorf("retriever: %w", err)
	}
	logger.Info("retrieval configured", "host", cfg.PineconeIndexHost, "namespace", cfg.PineconeNamespace)
	return retriever, nil
}

func buildEmbedder(ctx context.Context, cfg *appconfig.Config) (rag.Embedder, error) {
	if cfg.GeminiAPIKey != "" {
		embedder, err := rag.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.GeminiEmbeddingModel)
		if err != nil {
			return nil, fmt.Errorf("gemini embedder: %w", err)
		}
		return embedder, nil
	}
	if cfg.OpenAIAPIKey != "" {
		embedder, err := rag.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIEmbeddingModel)
		if err != nil {
			return nil, fmt.Errorf("openai embedder: %w", err)
		}
		return embedder, nil
	}
	return nil, fmt.Errorf("retrieval requires a Gemini or OpenAI API key for embeddings")
}

// buildEmailSender prefers SendGrid, then SES, then the console sink so a
// bare deployment still surfaces captured leads in the logs.
func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sender != nil {
		logger.Info("lead notifications via SendGrid", "from", cfg.SendGridFromEmail)
		return sender
	}

	if cfg.SESFromEmail != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Warn("aws config unavailable, falling back to console sender", "error", err)
		} else if sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); sender != nil {
			logger.Info("lead notifications via SES", "from", cfg.SESFromEmail)
			return sender
		}
	}

	logger.Warn("no email provider configured, leads will be logged only")
	return notify.NewConsoleSender(logger)
}

func buildTranscriptStore(cfg *appconfig.Config, logger *logging.Logger) widget.TranscriptStore {
	if cfg.RedisAddr == "" {
		logger.Info("using in-memory transcript store")
		return widget.NewMemoryTranscriptStore()
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, using in-memory transcript store", "addr", cfg.RedisAddr, "error", err)
		return widget.NewMemoryTranscriptStore()
	}

	logger.Info("using redis transcript store", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL)
	return widget.NewRedisTranscriptStore(client, cfg.SessionTTL)
}

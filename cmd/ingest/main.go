// Command ingest loads the knowledge base markdown into the Pinecone index.
// Run it whenever the source documents change:
//
//	go run ./cmd/ingest -file testdata/knowledge.md
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	appconfig "github.com/maruonline/chat-widget/internal/config"
	"github.com/maruonline/chat-widget/internal/rag"
	"github.com/maruonline/chat-widget/pkg/logging"
)

func main() {
	file := flag.String("file", "testdata/knowledge.md", "path to the knowledge base markdown file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Println("no .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if !cfg.HasRetrieval() {
		logger.Error("PINECONE_API_KEY and PINECONE_INDEX_HOST must be set")
		os.Exit(1)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Error("failed to read knowledge file", "file", *file, "error", err)
		os.Exit(1)
	}

	chunks := splitChunks(string(data))
	if len(chunks) == 0 {
		logger.Error("knowledge file contains no content", "file", *file)
		os.Exit(1)
	}
	logger.Info("chunked knowledge base", "file", *file, "chunks", len(chunks))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	embedder, err := buildEmbedder(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize embedder", "error", err)
		os.Exit(1)
	}

	vectors, err := embedder.Embed(ctx, chunks)
	if err != nil {
		logger.Error("failed to embed chunks", "error", err)
		os.Exit(1)
	}
	if len(vectors) != len(chunks) {
		logger.Error("embedding count mismatch", "chunks", len(chunks), "vectors", len(vectors))
		os.Exit(1)
	}

	index, err := rag.NewPineconeIndex(rag.IndexConfig{
		Host:      cfg.PineconeIndexHost,
		APIKey:    cfg.PineconeAPIKey,
		Namespace: cfg.PineconeNamespace,
	})
	if err != nil {
		logger.Error("failed to initialize pinecone index", "error", err)
		os.Exit(1)
	}

	records := make([]rag.Vector, len(chunks))
	for i, chunk := range chunks {
		records[i] = rag.Vector{
			ID:     fmt.Sprintf("chunk-%d", i),
			Values: vectors[i],
			Text:   chunk,
		}
	}

	if err := index.Upsert(ctx, records); err != nil {
		logger.Error("failed to upsert vectors", "error", err)
		os.Exit(1)
	}

	logger.Info("ingest complete", "vectors", len(records))
}

// splitChunks breaks markdown into blank-line separated blocks. Heading
// lines attach to the block that follows them so each chunk carries its
// section context.
func splitChunks(doc string) []string {
	blocks := strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n\n")

	var chunks []string
	var heading string
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if strings.HasPrefix(block, "#") && !strings.Contains(block, "\n") {
			heading = block
			continue
		}
		if heading != "" {
			block = heading + "\n" + block
			heading = ""
		}
		chunks = append(chunks, block)
	}
	return chunks
}

func buildEmbedder(ctx context.Context, cfg *appconfig.Config) (rag.Embedder, error) {
	if cfg.GeminiAPIKey != "" {
		return rag.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.GeminiEmbeddingModel)
	}
	if cfg.OpenAIAPIKey != "" {
		return rag.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIEmbeddingModel)
	}
	return nil, fmt.Errorf("an embedding provider requires GEMINI_API_KEY or OPENAI_API_KEY")
}

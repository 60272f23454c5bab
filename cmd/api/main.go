package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"secrecy-ai/internal/auth"
	"secrecy-ai/internal/config"
	"secrecy-ai/internal/events"
	"secrecy-ai/internal/http"
	"secrecy-ai/internal/ledger"
	"secrecy-ai/internal/llm"
	"secrecy-ai/internal/service"
	"secrecy-ai/internal/storage"
	"secrecy-ai/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	ctx := context.Background()
	bus := events.NewBus()

	chatRepo := storage.NewChatRepo(db, bus)
	noteRepo := storage.NewNoteRepo(db, bus)
	userRepo := storage.NewUserRepo(db)
	tokens := ledger.New(storage.NewTokenRepo(db), cfg.InitialTokenAllowance)

	// Semantic note search is optional; without Qdrant the note endpoints
	// fall back to substring search.
	var vectorStore vectorstore.VectorStore
	var embedder service.Embedder
	if cfg.QdrantURL != "" {
		qdrantStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		if err := qdrantStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection: %v", err)
		}
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

		embeddings := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
		// Validate embedding vector size up front (fail-fast)
		if _, err := embeddings.EmbedOne(ctx, "test"); err != nil {
			log.Fatalf("Failed to validate embedding client: %v", err)
		}
		slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

		vectorStore = qdrantStore
		embedder = embeddings
	}

	completions := llm.NewClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel)

	noteService := service.NewNoteService(noteRepo, chatRepo, embedder, vectorStore, cfg.QdrantCollection)
	chatService := service.NewChatService(chatRepo, tokens, completions)
	analyzerService := service.NewAnalyzerService(completions, tokens, noteService)

	jwtSvc := auth.NewJWT(cfg.JWTSecret)
	router := http.NewRouter(&http.Deps{
		Config:      cfg,
		DB:          db,
		Bus:         bus,
		JWT:         jwtSvc,
		Users:       userRepo,
		Tokens:      tokens,
		Chats:       chatService,
		Notes:       noteService,
		Analyzer:    analyzerService,
		VectorStore: vectorStore,
	})

	srv := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("Server listening", "port", cfg.APIPort)
		if err := srv.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}

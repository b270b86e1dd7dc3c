package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"multichat/internal/config"
	"multichat/internal/http"
	"multichat/internal/llm"
	"multichat/internal/service"
	"multichat/internal/storage"
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
	logger := slog.New(handler)
	slog.SetDefault(logger)
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

	// Create repository instances
	botRepo := storage.NewBotRepo(db)
	convRepo := storage.NewConversationRepo(db)
	msgRepo := storage.NewMessageRepo(db)

	// Seed the default bot set on first startup
	ctx := context.Background()
	if err := storage.SeedDefaultBots(ctx, botRepo, cfg.DefaultModel); err != nil {
		log.Fatalf("Failed to seed default bots: %v", err)
	}

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.DefaultModel)

	// Create routing, responding, and orchestration services
	router := service.NewRouter(llmClient, cfg.DefaultModel)
	responder := service.NewResponder(llmClient)
	chatService := service.NewChatService(botRepo, convRepo, msgRepo, router, responder, cfg.DefaultModel)
	slog.Info("Chat service initialized")

	// Create router with dependencies
	deps := &http.Deps{
		ChatService: chatService,
		DB:          db,
	}
	httpRouter := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "default_model", cfg.DefaultModel)
	if err := nethttp.ListenAndServe(addr, httpRouter); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

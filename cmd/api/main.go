package main

import (
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"chatbox-ai/internal/config"
	"chatbox-ai/internal/http"
	"chatbox-ai/internal/llm"
	"chatbox-ai/internal/render"
	"chatbox-ai/internal/service"
	"chatbox-ai/internal/storage"
	"chatbox-ai/internal/web"
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

	// Initialize the in-memory conversation store
	db, err := storage.New()
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Conversation store initialized")

	sessionRepo := storage.NewSessionRepo(db)

	// Create completion client (external service layer)
	completionClient := llm.NewClient(cfg.LLMBaseURL, cfg.APIKey, cfg.RequestTimeout)
	if cfg.APIKey == "" {
		slog.Warn("No API key configured; completions will fail until ANTHROPIC_API_KEY is set")
	}

	chatService := service.NewChatService(sessionRepo, completionClient, service.Defaults{
		Model:           cfg.DefaultModel,
		Temperature:     config.Temperature,
		MaxTokens:       cfg.MaxTokens,
		AvailableModels: cfg.AvailableModels,
	})

	// Create router with dependencies
	deps := &http.Deps{
		ChatService: chatService,
		Markdown:    render.NewMarkdown(),
		DB:          db,
		IndexHTML:   web.IndexHTML,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("Completion configuration",
		"base_url", cfg.LLMBaseURL, "default_model", cfg.DefaultModel, "max_tokens", cfg.MaxTokens)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}

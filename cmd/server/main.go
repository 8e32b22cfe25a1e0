package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kapwa-backend/internal/config"
	"kapwa-backend/internal/handlers"
	"kapwa-backend/internal/router"
	"kapwa-backend/internal/services"
)

func main() {
	// Logging is configured once here and never touched again.
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.SetOutput(os.Stderr)

	log.Println("🚀 Starting Kapwa Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("✗ Configuration failed: %v", err)
	}
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Completion Backend ────
	ctx := context.Background()
	completer, closeCompleter, err := services.NewCompleter(ctx, cfg)
	if err != nil {
		// Keep serving: every call reports the problem instead.
		log.Printf("✗ %s client unavailable: %v", cfg.LLMProvider, err)
		completer = services.NewUnavailableCompleter(cfg.LLMProvider, err)
	} else {
		log.Printf("✓ %s client initialized", completer.Name())
	}
	defer closeCompleter()

	llmService := services.NewLLMService(completer, cfg.LLMTimeout())

	summarizer, err := services.NewSummarizer(cfg.SummarySystemPrompt, cfg.SummaryUserTemplate)
	if err != nil {
		log.Fatalf("✗ Summary prompt invalid: %v", err)
	}

	// ──── Step 3: Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(llmService)
	summarizeHandler := handlers.NewSummarizeHandler(llmService, summarizer)

	// ──── Step 4: Start HTTP Server ────
	r := router.New(chatHandler, summarizeHandler, cfg.Debug())

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Kapwa Backend ready on http://%s (env=%s)", cfg.Addr(), cfg.Env)
	log.Printf("  POST /chat")
	log.Printf("  POST /summarize_chat")

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

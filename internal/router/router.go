package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"kapwa-backend/internal/handlers"
	"kapwa-backend/internal/middleware"
)

func New(
	chatHandler *handlers.ChatHandler,
	summarizeHandler *handlers.SummarizeHandler,
	debug bool,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	if debug {
		r.Use(chimiddleware.Logger)
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/chat", chatHandler.Chat)
	r.Post("/summarize_chat", summarizeHandler.Summarize)

	return r
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"kapwa-backend/internal/models"
)

// completionInvoker is satisfied by *services.LLMService. It never returns
// an error: upstream failures arrive as text.
type completionInvoker interface {
	Complete(ctx context.Context, messages []models.ChatMessage) string
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(message string) models.ErrorResponse {
	return models.ErrorResponse{Error: message}
}

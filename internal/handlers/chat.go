package handlers

import (
	"encoding/json"
	"net/http"

	"kapwa-backend/internal/models"
)

type ChatHandler struct {
	llm completionInvoker
}

func NewChatHandler(llm completionInvoker) *ChatHandler {
	return &ChatHandler{llm: llm}
}

// Chat relays the message list to the model and returns its reply.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("No messages provided"))
		return
	}

	// Malformed entries are skipped, not rejected. senderName is not forwarded.
	llmMessages := make([]models.ChatMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if msg.Valid() {
			llmMessages = append(llmMessages, models.ChatMessage{Role: msg.Role, Content: msg.Content})
		}
	}

	if len(llmMessages) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("No valid messages for LLM"))
		return
	}

	reply := h.llm.Complete(r.Context(), llmMessages)
	writeJSON(w, http.StatusOK, models.ChatResponse{Response: reply})
}

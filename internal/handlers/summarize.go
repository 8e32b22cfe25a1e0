package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"kapwa-backend/internal/models"
	"kapwa-backend/internal/services"
)

type SummarizeHandler struct {
	llm        completionInvoker
	summarizer *services.Summarizer
}

func NewSummarizeHandler(llm completionInvoker, summarizer *services.Summarizer) *SummarizeHandler {
	return &SummarizeHandler{llm: llm, summarizer: summarizer}
}

// Summarize folds a conversation batch, plus any carried-over summary, into
// a single paragraph. It only ever answers 200.
func (h *SummarizeHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req models.SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req.Messages = nil
	}

	log.Printf("Received summarization request with %d messages.", len(req.Messages))

	conv := services.ExtractConversation(req.Messages)
	if conv.Empty() {
		writeJSON(w, http.StatusOK, models.SummarizeResponse{Summary: services.NoSummarySentinel})
		return
	}

	prompt, err := h.summarizer.BuildPrompt(conv)
	if err != nil {
		log.Printf("Summarization prompt failed: %v", err)
		writeJSON(w, http.StatusOK, models.SummarizeResponse{Summary: services.CleanSummary(services.FormatError(err))})
		return
	}

	summary := services.CleanSummary(h.llm.Complete(r.Context(), prompt))
	log.Printf("LLM returned cumulative summary (cleaned): %s", summary)

	writeJSON(w, http.StatusOK, models.SummarizeResponse{Summary: summary})
}

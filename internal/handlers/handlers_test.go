package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kapwa-backend/internal/config"
	"kapwa-backend/internal/models"
	"kapwa-backend/internal/services"
)

type stubInvoker struct {
	reply string
	calls int
	got   []models.ChatMessage
}

func (s *stubInvoker) Complete(ctx context.Context, messages []models.ChatMessage) string {
	s.calls++
	s.got = messages
	return s.reply
}

type failingCompleter struct{}

func (failingCompleter) Name() string { return "Failing" }

func (failingCompleter) CreateChatCompletion(ctx context.Context, messages []models.ChatMessage) (string, error) {
	return "", errors.New("dial tcp: i/o timeout")
}

func newSummarizer(t *testing.T) *services.Summarizer {
	t.Helper()
	s, err := services.NewSummarizer(config.DefaultSummarySystemPrompt, config.DefaultSummaryUserTemplate)
	if err != nil {
		t.Fatalf("failed to build summarizer: %v", err)
	}
	return s
}

func postJSON(t *testing.T, path, body string, handler http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var payload map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}

// ─── Chat Handler Tests ───

func TestChatHandler_EmptyMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty array", `{"messages": []}`},
		{"missing key", `{}`},
		{"invalid json", `not json`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubInvoker{}
			h := NewChatHandler(stub)

			rr := postJSON(t, "/chat", tc.body, h.Chat)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
			}
			if got := decode(t, rr)["error"]; got != "No messages provided" {
				t.Fatalf("unexpected error: %q", got)
			}
			if stub.calls != 0 {
				t.Fatalf("invoker should not be called")
			}
		})
	}
}

func TestChatHandler_NoValidMessages(t *testing.T) {
	stub := &stubInvoker{}
	h := NewChatHandler(stub)

	rr := postJSON(t, "/chat", `{"messages": [{"role": "user"}, {"content": "orphan"}]}`, h.Chat)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if got := decode(t, rr)["error"]; got != "No valid messages for LLM" {
		t.Fatalf("unexpected error: %q", got)
	}
	if stub.calls != 0 {
		t.Fatalf("invoker should not be called")
	}
}

func TestChatHandler_RelaysReply(t *testing.T) {
	stub := &stubInvoker{reply: "Hi there!"}
	h := NewChatHandler(stub)

	rr := postJSON(t, "/chat", `{"messages": [{"role": "user", "content": "Hello!"}]}`, h.Chat)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected JSON content type, got %q", rr.Header().Get("Content-Type"))
	}
	if got := decode(t, rr)["response"]; got != "Hi there!" {
		t.Fatalf("expected 'Hi there!', got %q", got)
	}
}

func TestChatHandler_DropsMalformedMessages(t *testing.T) {
	stub := &stubInvoker{reply: "ok"}
	h := NewChatHandler(stub)

	body := `{"messages": [
		{"role": "user", "content": "Hello!", "senderName": "Ana"},
		{"role": "assistant"}
	]}`
	rr := postJSON(t, "/chat", body, h.Chat)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if len(stub.got) != 1 {
		t.Fatalf("expected 1 message to reach the invoker, got %d", len(stub.got))
	}
	got := stub.got[0]
	if got.Role != "user" || got.Content != "Hello!" || got.SenderName != nil {
		t.Fatalf("unexpected forwarded message: %+v", got)
	}
}

func TestChatHandler_WronglyTypedMessageIsSkipped(t *testing.T) {
	stub := &stubInvoker{reply: "Hi there!"}
	h := NewChatHandler(stub)

	body := `{"messages": [{"role": "user", "content": "Hello!"}, {"role": "user", "content": 42}]}`
	rr := postJSON(t, "/chat", body, h.Chat)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if stub.calls != 1 {
		t.Fatalf("expected one invoker call, got %d", stub.calls)
	}
	if len(stub.got) != 1 || stub.got[0].Content != "Hello!" {
		t.Fatalf("only the well-formed message should be forwarded, got %+v", stub.got)
	}
	if got := decode(t, rr)["response"]; got != "Hi there!" {
		t.Fatalf("expected 'Hi there!', got %q", got)
	}
}

func TestChatHandler_UpstreamFailureIsStill200(t *testing.T) {
	h := NewChatHandler(services.NewLLMService(failingCompleter{}, 0))

	rr := postJSON(t, "/chat", `{"messages": [{"role": "user", "content": "Hello!"}]}`, h.Chat)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	want := "Error: Failed to get response from AI. Details: dial tcp: i/o timeout"
	if got := decode(t, rr)["response"]; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

// ─── Summarize Handler Tests ───

func TestSummarizeHandler_EmptyMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty array", `{"messages": []}`},
		{"missing key", `{}`},
		{"only malformed", `{"messages": [{"role": "user"}]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubInvoker{reply: "should not be used"}
			h := NewSummarizeHandler(stub, newSummarizer(t))

			rr := postJSON(t, "/summarize_chat", tc.body, h.Summarize)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
			}
			if got := decode(t, rr)["summary"]; got != services.NoSummarySentinel {
				t.Fatalf("expected sentinel, got %q", got)
			}
			if stub.calls != 0 {
				t.Fatalf("invoker should not be called")
			}
		})
	}
}

func TestSummarizeHandler_PreviousSummaryOnly(t *testing.T) {
	stub := &stubInvoker{reply: "X continued."}
	h := NewSummarizeHandler(stub, newSummarizer(t))

	body := `{"messages": [{"role": "system", "content": "Continuing from our last conversation: X"}]}`
	rr := postJSON(t, "/summarize_chat", body, h.Summarize)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if stub.calls != 1 {
		t.Fatalf("expected one invoker call, got %d", stub.calls)
	}
	if len(stub.got) != 2 || stub.got[0].Role != "system" || stub.got[1].Role != "user" {
		t.Fatalf("unexpected prompt shape: %+v", stub.got)
	}
	if !strings.Contains(stub.got[1].Content, "Previous summary: X") {
		t.Fatalf("prompt should embed the previous summary, got %q", stub.got[1].Content)
	}
	if got := decode(t, rr)["summary"]; got != "X continued." {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestSummarizeHandler_TranscriptAndCleaning(t *testing.T) {
	stub := &stubInvoker{reply: "Line1\nLine2\n"}
	h := NewSummarizeHandler(stub, newSummarizer(t))

	body := `{"messages": [
		{"role": "user", "content": "Hello, how are you?", "senderName": "John"},
		{"role": "assistant", "content": "I'm doing well, thank you for asking!"}
	]}`
	rr := postJSON(t, "/summarize_chat", body, h.Summarize)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if got := decode(t, rr)["summary"]; got != "Line1 Line2" {
		t.Fatalf("expected 'Line1 Line2', got %q", got)
	}

	prompt := stub.got[1].Content
	if !strings.Contains(prompt, "User: John: Hello, how are you?\nAssistant: I'm doing well, thank you for asking!\n") {
		t.Fatalf("unexpected transcript in prompt: %q", prompt)
	}
	if strings.Contains(prompt, "Previous summary:") {
		t.Fatalf("prompt should not mention a previous summary")
	}
}

func TestSummarizeHandler_NonStringSenderName(t *testing.T) {
	stub := &stubInvoker{reply: "A short exchange."}
	h := NewSummarizeHandler(stub, newSummarizer(t))

	body := `{"messages": [
		{"role": "user", "content": "Hello", "senderName": 7},
		{"role": "assistant", "content": "Hi"},
		{"role": "assistant", "content": false}
	]}`
	rr := postJSON(t, "/summarize_chat", body, h.Summarize)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if stub.calls != 1 {
		t.Fatalf("expected one invoker call, got %d", stub.calls)
	}
	if !strings.Contains(stub.got[1].Content, "User: 7: Hello\nAssistant: Hi\n") {
		t.Fatalf("unexpected transcript in prompt: %q", stub.got[1].Content)
	}
	if got := decode(t, rr)["summary"]; got != "A short exchange." {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestSummarizeHandler_UpstreamFailureIsCleaned(t *testing.T) {
	h := NewSummarizeHandler(services.NewLLMService(failingCompleter{}, 0), newSummarizer(t))

	rr := postJSON(t, "/summarize_chat", `{"messages": [{"role": "user", "content": "hi"}]}`, h.Summarize)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	got := decode(t, rr)["summary"]
	if !strings.HasPrefix(got, services.ErrorPrefix) {
		t.Fatalf("expected error-prefixed summary, got %q", got)
	}
}

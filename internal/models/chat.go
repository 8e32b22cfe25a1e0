package models

import (
	"bytes"
	"encoding/json"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role       string  `json:"role"` // "user" | "assistant" | "system"
	Content    string  `json:"content"`
	SenderName *string `json:"senderName,omitempty"`
}

// UnmarshalJSON decodes one message on its own so a badly typed entry never
// fails the whole list. A non-string role or content is left empty, which
// makes the message invalid; a non-string senderName keeps its JSON text.
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	*m = ChatMessage{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}

	m.Role = jsonString(fields["role"])
	m.Content = jsonString(fields["content"])
	if raw, ok := fields["senderName"]; ok {
		m.SenderName = senderName(raw)
	}
	return nil
}

// Valid reports whether the message carries both a role and content.
func (m ChatMessage) Valid() bool {
	return m.Role != "" && m.Content != ""
}

func jsonString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// senderName returns nil for null, so the default sender applies.
func senderName(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		text := string(raw)
		return &text
	}
	text := compact.String()
	return &text
}

// ChatRequest is the payload accepted by /chat.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatResponse is the reply from the AI chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// SummarizeRequest is the payload accepted by /summarize_chat.
type SummarizeRequest struct {
	Messages []ChatMessage `json:"messages"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

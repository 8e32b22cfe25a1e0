package services

import (
	"fmt"
	"strings"

	"github.com/cbroglie/mustache"

	"kapwa-backend/internal/models"
)

const (
	// NoSummarySentinel is returned when there is nothing to summarize. It is
	// never echoed back into a prompt as a previous summary.
	NoSummarySentinel = "No sufficient conversation to summarize."

	previousSummaryMarker = "Continuing from our last conversation:"
	previousSummaryPrefix = "Continuing from our last conversation: "

	defaultSenderName = "Participant"
)

// Summarizer turns a conversation batch into a summarization prompt.
type Summarizer struct {
	systemPrompt string
	userTemplate *mustache.Template
}

func NewSummarizer(systemPrompt, userTemplate string) (*Summarizer, error) {
	tmpl, err := mustache.ParseString(userTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse summary template: %w", err)
	}
	return &Summarizer{systemPrompt: systemPrompt, userTemplate: tmpl}, nil
}

// Conversation is one batch split into its carried-over summary and the
// entries that make up the transcript.
type Conversation struct {
	PreviousSummary string
	Entries         []models.ChatMessage
}

func (c Conversation) HasPrevious() bool {
	return c.PreviousSummary != ""
}

// Empty reports whether there is neither a previous summary nor anything new.
func (c Conversation) Empty() bool {
	return !c.HasPrevious() && len(c.Entries) == 0
}

// ExtractConversation pulls the previous summary out of marker system
// messages (the last one wins) and keeps the user/assistant messages that
// have both role and content. User entries get their sender name prefixed.
func ExtractConversation(messages []models.ChatMessage) Conversation {
	var conv Conversation
	for _, msg := range messages {
		if msg.Role == "system" && strings.Contains(msg.Content, previousSummaryMarker) {
			conv.PreviousSummary = strings.TrimSpace(strings.ReplaceAll(msg.Content, previousSummaryPrefix, ""))
			continue
		}
		if !msg.Valid() {
			continue
		}

		switch msg.Role {
		case "user":
			sender := defaultSenderName
			if msg.SenderName != nil {
				sender = *msg.SenderName
			}
			conv.Entries = append(conv.Entries, models.ChatMessage{
				Role:    "user",
				Content: fmt.Sprintf("%s: %s", sender, msg.Content),
			})
		case "assistant":
			conv.Entries = append(conv.Entries, models.ChatMessage{Role: "assistant", Content: msg.Content})
		}
	}
	return conv
}

// Transcript flattens entries into "User: ..." / "Assistant: ..." lines.
// User content already carries the sender name, so a user line reads
// "User: Alice: hi".
func Transcript(entries []models.ChatMessage) string {
	var b strings.Builder
	for _, e := range entries {
		switch e.Role {
		case "user":
			b.WriteString("User: " + e.Content + "\n")
		case "assistant":
			b.WriteString("Assistant: " + e.Content + "\n")
		}
	}
	return b.String()
}

// BuildPrompt renders the two-message summarization prompt.
func (s *Summarizer) BuildPrompt(conv Conversation) ([]models.ChatMessage, error) {
	previous := ""
	if conv.HasPrevious() && conv.PreviousSummary != NoSummarySentinel {
		previous = conv.PreviousSummary
	}

	userPrompt, err := s.userTemplate.Render(map[string]interface{}{
		"previous_summary": previous,
		"has_previous":     conv.HasPrevious(),
		"transcript":       Transcript(conv.Entries),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render summary prompt: %w", err)
	}

	return []models.ChatMessage{
		{Role: "system", Content: s.systemPrompt},
		{Role: "user", Content: userPrompt},
	}, nil
}

// CleanSummary collapses the reply onto one line. Applying it twice gives
// the same result as applying it once.
func CleanSummary(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"kapwa-backend/internal/models"
)

const DefaultGeminiModel = "gemini-2.0-flash"

type GeminiService struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiService(ctx context.Context, apiKey string, opts CompletionOptions) (*GeminiService, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	name := opts.Model
	if name == "" {
		name = DefaultGeminiModel
	}
	model := client.GenerativeModel(name)
	model.SetTemperature(opts.Temperature)
	model.SetMaxOutputTokens(opts.MaxTokens)

	return &GeminiService{client: client, model: model}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

func (s *GeminiService) Name() string { return "Gemini" }

func (s *GeminiService) CreateChatCompletion(ctx context.Context, messages []models.ChatMessage) (string, error) {
	system, history, last, err := toGeminiContents(messages)
	if err != nil {
		return "", err
	}

	// Per-call copy so the system instruction never leaks across requests.
	model := *s.model
	model.SystemInstruction = system

	cs := model.StartChat()
	cs.History = history
	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", errors.New("Gemini returned empty text")
	}
	return text, nil
}

// toGeminiContents folds system messages into one instruction and maps
// assistant turns onto Gemini's "model" role. The final turn is split off
// because ChatSession sends it separately from the history, always as the
// user's turn, so a conversation must end on a user message.
func toGeminiContents(messages []models.ChatMessage) (*genai.Content, []*genai.Content, *genai.Content, error) {
	var system *genai.Content
	var turns []*genai.Content

	for _, m := range messages {
		switch m.Role {
		case "system":
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, genai.Text(m.Content))
		case "user":
			turns = append(turns, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		case "assistant":
			turns = append(turns, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(m.Content)}})
		default:
			return nil, nil, nil, fmt.Errorf("unsupported message role %q", m.Role)
		}
	}

	if len(turns) == 0 {
		return nil, nil, nil, errors.New("no user or assistant messages to send")
	}
	last := turns[len(turns)-1]
	if last.Role != "user" {
		return nil, nil, nil, errors.New("conversation must end with a user message")
	}

	return system, turns[:len(turns)-1], last, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String()
}

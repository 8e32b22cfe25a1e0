package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"kapwa-backend/internal/models"
)

// ErrorPrefix starts every invoker failure string. Existing callers match on
// it to tell a wrapped failure from a model answer.
const ErrorPrefix = "Error: Failed to get response from AI. Details: "

// Completer is a chat-completion backend. Implementations make exactly one
// upstream call per invocation and return the first choice's text.
type Completer interface {
	Name() string
	CreateChatCompletion(ctx context.Context, messages []models.ChatMessage) (string, error)
}

// Sampling settings sent on every call.
const (
	Temperature float32 = 0.7
	MaxTokens   int32   = 500
)

// CompletionOptions are the settings a backend sends on every call.
type CompletionOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int32
}

// LLMService is the single call-out point shared by every handler.
type LLMService struct {
	completer Completer
	timeout   time.Duration
}

// NewLLMService bounds each upstream call by timeout; zero means no bound.
// Keep it below the server's write timeout so a slow call still gets its
// error string written back.
func NewLLMService(completer Completer, timeout time.Duration) *LLMService {
	return &LLMService{completer: completer, timeout: timeout}
}

// Complete never fails: upstream errors come back as ErrorPrefix strings.
func (s *LLMService) Complete(ctx context.Context, messages []models.ChatMessage) string {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := s.completer.CreateChatCompletion(ctx, messages)
	if err != nil {
		log.Printf("Error calling %s LLM: %v", s.completer.Name(), err)
		return FormatError(err)
	}
	log.Printf("%s LLM call took %.2f seconds.", s.completer.Name(), time.Since(start).Seconds())
	return reply
}

func FormatError(err error) string {
	return fmt.Sprintf("%s%v", ErrorPrefix, err)
}

// unavailableCompleter stands in for a backend that could not be built, so
// the failure shows up per request instead of at startup.
type unavailableCompleter struct {
	name string
	err  error
}

func NewUnavailableCompleter(name string, err error) Completer {
	return &unavailableCompleter{name: name, err: err}
}

func (u *unavailableCompleter) Name() string { return u.name }

func (u *unavailableCompleter) CreateChatCompletion(ctx context.Context, messages []models.ChatMessage) (string, error) {
	return "", u.err
}

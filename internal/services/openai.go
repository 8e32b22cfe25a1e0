package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"

	"kapwa-backend/internal/models"
)

const DefaultOpenAIModel = "gpt-4.1-nano"

// OpenAIService talks to the public OpenAI API or an Azure OpenAI resource
// through the same azopenai client.
type OpenAIService struct {
	name   string
	client *azopenai.Client
	opts   CompletionOptions
}

// NewOpenAIService connects to the public OpenAI endpoint (baseURL is
// usually https://api.openai.com/v1).
func NewOpenAIService(baseURL, apiKey string, opts CompletionOptions, transport policy.Transporter) (*OpenAIService, error) {
	client, err := azopenai.NewClientForOpenAI(baseURL, azcore.NewKeyCredential(apiKey), clientOptions(transport))
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	if opts.Model == "" {
		opts.Model = DefaultOpenAIModel
	}
	return &OpenAIService{name: "OpenAI", client: client, opts: opts}, nil
}

// NewAzureOpenAIService connects to an Azure OpenAI resource. The model is
// used as the deployment name.
func NewAzureOpenAIService(endpoint, apiKey string, opts CompletionOptions, transport policy.Transporter) (*OpenAIService, error) {
	if endpoint == "" {
		return nil, errors.New("azure openai endpoint is not set")
	}
	client, err := azopenai.NewClientWithKeyCredential(endpoint, azcore.NewKeyCredential(apiKey), clientOptions(transport))
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure OpenAI client: %w", err)
	}
	if opts.Model == "" {
		opts.Model = DefaultOpenAIModel
	}
	return &OpenAIService{name: "Azure OpenAI", client: client, opts: opts}, nil
}

// clientOptions disables the SDK retry policy: one request per call.
func clientOptions(transport policy.Transporter) *azopenai.ClientOptions {
	opts := &azopenai.ClientOptions{}
	opts.Retry = policy.RetryOptions{MaxRetries: -1}
	if transport != nil {
		opts.Transport = transport
	}
	return opts
}

func (s *OpenAIService) Name() string { return s.name }

func (s *OpenAIService) CreateChatCompletion(ctx context.Context, messages []models.ChatMessage) (string, error) {
	reqMessages, err := toAzureMessages(messages)
	if err != nil {
		return "", err
	}

	resp, err := s.client.GetChatCompletions(ctx, azopenai.ChatCompletionsOptions{
		Messages:       reqMessages,
		DeploymentName: to.Ptr(s.opts.Model),
		Temperature:    to.Ptr(s.opts.Temperature),
		MaxTokens:      to.Ptr(s.opts.MaxTokens),
	}, nil)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	choice := resp.Choices[0]
	if choice.Message == nil || choice.Message.Content == nil {
		return "", nil
	}
	return *choice.Message.Content, nil
}

func toAzureMessages(messages []models.ChatMessage) ([]azopenai.ChatRequestMessageClassification, error) {
	out := make([]azopenai.ChatRequestMessageClassification, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			out = append(out, &azopenai.ChatRequestSystemMessage{Content: to.Ptr(m.Content)})
		case "user":
			out = append(out, &azopenai.ChatRequestUserMessage{Content: azopenai.NewChatRequestUserMessageContent(m.Content)})
		case "assistant":
			out = append(out, &azopenai.ChatRequestAssistantMessage{Content: to.Ptr(m.Content)})
		default:
			return nil, fmt.Errorf("unsupported message role %q", m.Role)
		}
	}
	return out, nil
}

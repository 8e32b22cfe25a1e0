package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"kapwa-backend/internal/models"
)

const DefaultBedrockModel = "anthropic.claude-3-haiku-20240307-v1:0"

// converser is the slice of the bedrockruntime client we use.
type converser interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type BedrockService struct {
	client converser
	opts   CompletionOptions
}

// NewBedrockService loads credentials from the default AWS chain.
func NewBedrockService(ctx context.Context, region string, opts CompletionOptions) (*BedrockService, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := bedrockruntime.NewFromConfig(cfg, func(o *bedrockruntime.Options) {
		o.RetryMaxAttempts = 1
	})
	if opts.Model == "" {
		opts.Model = DefaultBedrockModel
	}
	return &BedrockService{client: client, opts: opts}, nil
}

func (s *BedrockService) Name() string { return "Bedrock" }

func (s *BedrockService) CreateChatCompletion(ctx context.Context, messages []models.ChatMessage) (string, error) {
	system, turns, err := toBedrockMessages(messages)
	if err != nil {
		return "", err
	}

	out, err := s.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:  aws.String(s.opts.Model),
		Messages: turns,
		System:   system,
		InferenceConfig: &types.InferenceConfiguration{
			Temperature: aws.Float32(s.opts.Temperature),
			MaxTokens:   aws.Int32(s.opts.MaxTokens),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Bedrock converse error: %w", err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", errors.New("Bedrock returned no message")
	}
	var text strings.Builder
	for _, block := range msg.Value.Content {
		if t, ok := block.(*types.ContentBlockMemberText); ok {
			text.WriteString(t.Value)
		}
	}
	return text.String(), nil
}

func toBedrockMessages(messages []models.ChatMessage) ([]types.SystemContentBlock, []types.Message, error) {
	var system []types.SystemContentBlock
	var turns []types.Message

	for _, m := range messages {
		var role types.ConversationRole
		switch m.Role {
		case "system":
			system = append(system, &types.SystemContentBlockMemberText{Value: m.Content})
			continue
		case "user":
			role = types.ConversationRoleUser
		case "assistant":
			role = types.ConversationRoleAssistant
		default:
			return nil, nil, fmt.Errorf("unsupported message role %q", m.Role)
		}
		turns = append(turns, types.Message{
			Role:    role,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
		})
	}

	if len(turns) == 0 {
		return nil, nil, errors.New("no user or assistant messages to send")
	}
	return system, turns, nil
}

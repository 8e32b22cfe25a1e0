package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/require"

	"kapwa-backend/internal/models"
)

type fakeConverser struct {
	input *bedrockruntime.ConverseInput
	out   *bedrockruntime.ConverseOutput
	err   error
}

func (f *fakeConverser) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.input = params
	return f.out, f.err
}

func TestBedrockService_CreateChatCompletion(t *testing.T) {
	fake := &fakeConverser{
		out: &bedrockruntime.ConverseOutput{
			Output: &types.ConverseOutputMemberMessage{
				Value: types.Message{
					Role:    types.ConversationRoleAssistant,
					Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: "Hi there!"}},
				},
			},
		},
	}
	svc := &BedrockService{client: fake, opts: CompletionOptions{Model: DefaultBedrockModel, Temperature: 0.7, MaxTokens: 500}}

	reply, err := svc.CreateChatCompletion(context.Background(), []models.ChatMessage{
		{Role: "system", Content: "rules"},
		{Role: "user", Content: "Hello!"},
	})
	require.NoError(t, err)
	require.Equal(t, "Hi there!", reply)

	require.Equal(t, DefaultBedrockModel, aws.ToString(fake.input.ModelId))
	require.Len(t, fake.input.System, 1)
	require.Len(t, fake.input.Messages, 1)
	require.Equal(t, types.ConversationRoleUser, fake.input.Messages[0].Role)
	require.Equal(t, int32(500), aws.ToInt32(fake.input.InferenceConfig.MaxTokens))
	require.InDelta(t, 0.7, aws.ToFloat32(fake.input.InferenceConfig.Temperature), 0.0001)
}

func TestBedrockService_ConverseError(t *testing.T) {
	fake := &fakeConverser{err: errors.New("throttled")}
	svc := &BedrockService{client: fake}

	_, err := svc.CreateChatCompletion(context.Background(), []models.ChatMessage{{Role: "user", Content: "Hello!"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "throttled")
}

func TestToBedrockMessages_RejectsUnknownRole(t *testing.T) {
	_, _, err := toBedrockMessages([]models.ChatMessage{{Role: "developer", Content: "x"}})
	require.Error(t, err)
}

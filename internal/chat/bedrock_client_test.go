package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type fakeConverseAPI struct {
	out  *bedrockruntime.ConverseOutput
	err  error
	last *bedrockruntime.ConverseInput
}

func (f *fakeConverseAPI) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.last = params
	return f.out, f.err
}

func converseReply(text string) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{
			Value: brtypes.Message{
				Role: brtypes.ConversationRoleAssistant,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: text},
				},
			},
		},
		StopReason: brtypes.StopReasonEndTurn,
		Usage: &brtypes.TokenUsage{
			InputTokens:  aws.Int32(10),
			OutputTokens: aws.Int32(5),
			TotalTokens:  aws.Int32(15),
		},
	}
}

func TestBedrockComplete(t *testing.T) {
	api := &fakeConverseAPI{out: converseReply("  hello there  ")}
	c, err := NewBedrockLLMClient(api, "anthropic.claude-3-haiku")
	if err != nil {
		t.Fatalf("NewBedrockLLMClient: %v", err)
	}

	resp, err := c.Complete(context.Background(), LLMRequest{
		System:   []string{"you are helpful"},
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "hello there" {
		t.Errorf("expected trimmed text, got %q", resp.Text)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("expected 15 total tokens, got %d", resp.Usage.TotalTokens)
	}
	if len(api.last.System) != 1 {
		t.Errorf("expected 1 system block, got %d", len(api.last.System))
	}
}

func TestBedrockCompleteSkipsEmptyTurns(t *testing.T) {
	api := &fakeConverseAPI{out: converseReply("ok")}
	c, _ := NewBedrockLLMClient(api, "model-id")

	_, err := c.Complete(context.Background(), LLMRequest{
		Messages: []Message{
			{Role: RoleUser, Content: "   "},
			{Role: RoleUser, Content: "real question"},
		},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(api.last.Messages) != 1 {
		t.Errorf("blank turns should be dropped, got %d messages", len(api.last.Messages))
	}
}

func TestBedrockCompleteAPIError(t *testing.T) {
	api := &fakeConverseAPI{err: errors.New("throttled")}
	c, _ := NewBedrockLLMClient(api, "model-id")

	if _, err := c.Complete(context.Background(), LLMRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}); err == nil {
		t.Fatal("expected API error to surface")
	}
}

func TestNewBedrockLLMClientValidation(t *testing.T) {
	if _, err := NewBedrockLLMClient(nil, "model"); err == nil {
		t.Error("nil api should fail")
	}
	if _, err := NewBedrockLLMClient(&fakeConverseAPI{}, " "); err == nil {
		t.Error("blank model id should fail")
	}
}

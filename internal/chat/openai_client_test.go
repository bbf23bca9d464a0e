package chat

import (
	"context"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type fakeOpenAIChat struct {
	resp openai.ChatCompletionResponse
	err  error
	last openai.ChatCompletionRequest
}

func (f *fakeOpenAIChat) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.last = request
	return f.resp, f.err
}

func TestOpenAIComplete(t *testing.T) {
	api := &fakeOpenAIChat{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Content: " a reply "},
			FinishReason: openai.FinishReasonStop,
		}},
		Usage: openai.Usage{PromptTokens: 8, CompletionTokens: 4, TotalTokens: 12},
	}}
	c := &OpenAILLMClient{api: api, modelID: "gpt-4o"}

	resp, err := c.Complete(context.Background(), LLMRequest{
		System:   []string{"be brief"},
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "a reply" {
		t.Errorf("expected trimmed reply, got %q", resp.Text)
	}
	if resp.Usage.TotalTokens != 12 {
		t.Errorf("expected 12 total tokens, got %d", resp.Usage.TotalTokens)
	}
	if api.last.Model != "gpt-4o" {
		t.Errorf("expected default model, got %q", api.last.Model)
	}
	if len(api.last.Messages) != 2 {
		t.Errorf("expected system + user message, got %d", len(api.last.Messages))
	}
	if api.last.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Errorf("first message should carry the system prompt, got role %q", api.last.Messages[0].Role)
	}
}

func TestOpenAICompleteNoChoices(t *testing.T) {
	api := &fakeOpenAIChat{resp: openai.ChatCompletionResponse{}}
	c := &OpenAILLMClient{api: api, modelID: "gpt-4o"}

	if _, err := c.Complete(context.Background(), LLMRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestNewOpenAILLMClientRequiresKey(t *testing.T) {
	if _, err := NewOpenAILLMClient("", "gpt-4o"); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

package chat

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// LLMRequest is a provider-neutral completion request.
type LLMRequest struct {
	System      []string
	Messages    []Message
	MaxTokens   int32
	Temperature float32
}

// LLMResponse carries the completion text.
type LLMResponse struct {
	Text string
}

// LLMClient abstracts the external completion service.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

package domain

import (
	"context"

	"github.com/xdamman/stripe-mcp-fridge/internal/domain/entity"
)

// ProviderRequest is one streaming completion call to the model provider.
type ProviderRequest struct {
	Model       string
	Messages    []entity.Message
	Tools       []entity.ToolDefinition
	Temperature *float64
	MaxTokens   *int
}

// ModelProvider is the outbound streaming chat-completion collaborator.
//
// StreamChat returns *ProviderError when the provider answers with a
// non-success status; the raw response body is preserved for relay. The
// event channel is closed after the end sentinel, or when ctx is canceled.
type ModelProvider interface {
	StreamChat(ctx context.Context, req *ProviderRequest) (<-chan entity.StreamEvent, error)
}

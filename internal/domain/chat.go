package domain

import (
	"context"

	"github.com/xdamman/stripe-mcp-fridge/internal/domain/entity"
)

// ChatRequest is the usecase-level chat request: the caller's conversation
// so far plus optional sampling overrides.
type ChatRequest struct {
	Messages    []entity.Message
	Model       string
	Temperature *float64
	MaxTokens   *int
}

// ChatResponse is the aggregated outcome of a non-streaming chat.
type ChatResponse struct {
	Content      string
	Conversation []entity.Message
	Usage        *entity.Usage
	Turns        int
}

// ChatUsecase drives the streaming tool-calling loop for one request.
type ChatUsecase interface {
	// Chat runs the loop to completion and returns the final assistant text.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// ChatStreaming runs the loop and relays events as they are produced.
	// The channel is closed once the turn ends, after either the end
	// sentinel or a terminal error event.
	ChatStreaming(ctx context.Context, req *ChatRequest) (<-chan entity.StreamEvent, error)
}

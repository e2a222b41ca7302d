package types

// ChatMessage represents a chat message
type ChatMessage struct {
	Role    string `json:"role"`    // user, assistant, system
	Content string `json:"content"` // Message content
}

// ChatRequest represents a chat request
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`          // Always true for streaming
	Model    string        `json:"model,omitempty"` // Server default when empty
}

// ChatStreamChunk represents a streaming chat response chunk
type ChatStreamChunk struct {
	ID      string                  `json:"id"`
	Object  string                  `json:"object"`
	Created int64                   `json:"created"`
	Model   string                  `json:"model"`
	Choices []ChatStreamChunkChoice `json:"choices"`
	Usage   *ChatUsage              `json:"usage,omitempty"` // Final chunk only
}

// ChatStreamChunkChoice represents a choice in stream chunk
type ChatStreamChunkChoice struct {
	Index        int                  `json:"index"`
	Delta        ChatStreamChunkDelta `json:"delta"`
	FinishReason *string              `json:"finish_reason"`
}

// ChatStreamChunkDelta represents delta content
type ChatStreamChunkDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// ChatUsage represents token accounting for a completed turn
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StreamError represents an error record sent on the SSE stream
type StreamError struct {
	Error StreamErrorDetail `json:"error"`
}

// StreamErrorDetail carries the error message and type
type StreamErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

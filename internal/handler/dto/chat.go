package dto

// OpenAI-compatible chat completion shapes for the HTTP layer.

// ChatMessage is one conversation message.
type ChatMessage struct {
	Role       string     `json:"role"`    // system, user, assistant, tool
	Content    string     `json:"content"` // message text
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // set on tool results
}

// ToolCall is a completed tool invocation attached to an assistant message.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"` // always "function"
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction names the tool and carries its raw JSON arguments.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatCompletionRequest is the body of POST /v1/chat/completions.
type ChatCompletionRequest struct {
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Model       string        `json:"model,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

// ChatCompletionResponse is the non-streaming response.
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"` // "chat.completion"
	Created int64                  `json:"created"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices"`
	Usage   *ChatCompletionUsage   `json:"usage,omitempty"`

	// Extension fields: the full conversation including tool turns, and how
	// many model round-trips the answer took.
	Conversation []ChatMessage `json:"conversation,omitempty"`
	Turns        int           `json:"turns,omitempty"`
}

// ChatCompletionChoice is one answer option.
type ChatCompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatCompletionUsage is the token accounting for one completion.
type ChatCompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionChunk is one streamed response record.
type ChatCompletionChunk struct {
	ID      string                       `json:"id"`
	Object  string                       `json:"object"` // "chat.completion.chunk"
	Created int64                        `json:"created"`
	Model   string                       `json:"model"`
	Choices []ChatCompletionStreamChoice `json:"choices"`
	Usage   *ChatCompletionUsage         `json:"usage,omitempty"` // trailer chunk only
}

// ChatCompletionStreamChoice is the choice entry of a streamed record.
type ChatCompletionStreamChoice struct {
	Index        int                 `json:"index"`
	Delta        ChatCompletionDelta `json:"delta"`
	FinishReason *string             `json:"finish_reason"`
}

// ChatCompletionDelta is the incremental payload of a streamed record.
type ChatCompletionDelta struct {
	Role    string `json:"role,omitempty"` // first chunk only
	Content string `json:"content,omitempty"`
}

// StreamError is the error record sent before [DONE] when a stream dies.
type StreamError struct {
	Error StreamErrorDetail `json:"error"`
}

// StreamErrorDetail carries the failure text relayed to the client.
type StreamErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

package entity

// StreamEventType discriminates StreamEvent variants.
type StreamEventType string

const (
	// EventContentDelta carries a fragment of assistant text.
	EventContentDelta StreamEventType = "content_delta"
	// EventToolCallDelta carries one ToolCallFragment.
	EventToolCallDelta StreamEventType = "tool_call_delta"
	// EventToolCalls carries a complete, non-streamed tool_calls list.
	EventToolCalls StreamEventType = "tool_calls"
	// EventFinish carries the provider's finish reason for the turn.
	EventFinish StreamEventType = "finish"
	// EventUsage carries token accounting; later events overwrite earlier ones.
	EventUsage StreamEventType = "usage"
	// EventError is terminal: the turn failed and the stream is closing.
	EventError StreamEventType = "error"
	// EventStreamEnd is the end-of-stream sentinel, distinct from content.
	EventStreamEnd StreamEventType = "stream_end"
)

// StreamEvent is one decoded event of a model stream. Only the fields
// matching Type are set.
type StreamEvent struct {
	Type         StreamEventType
	Content      string
	Fragment     *ToolCallFragment
	ToolCalls    []ToolCall
	FinishReason string
	Usage        *Usage
	Err          string
}

// Finish reasons that signal tool invocation. "function_call" is the
// pre-tools legacy spelling some gateways still emit.
const (
	FinishReasonToolCalls    = "tool_calls"
	FinishReasonFunctionCall = "function_call"
	FinishReasonStop         = "stop"
)

// Usage is the provider's token accounting for one turn.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

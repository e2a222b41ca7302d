package entity

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one conversation entry (domain object, wire-agnostic).
//
// Exactly one request's orchestration loop owns a conversation; messages are
// appended, never mutated. A tool message always carries the ToolCallID of a
// call emitted by an earlier assistant message in the same conversation.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// Conversation is the ordered, append-only message sequence of one request.
type Conversation []Message

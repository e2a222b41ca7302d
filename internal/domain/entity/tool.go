package entity

// ToolCall is a complete, executable tool invocation emitted by the model.
//
// Arguments is the raw text the model produced. It is expected to be JSON but
// arrives incrementally and is not guaranteed well-formed; it must be parsed
// and validated before use.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolCallFragment is a partial tool-call update from one stream chunk,
// keyed by the call's position within the model turn. Zero values mean the
// fragment does not touch that field.
type ToolCallFragment struct {
	Index          int
	ID             string
	Name           string
	ArgumentsDelta string
}

// ToolDefinition describes one callable tool as advertised to the model.
// Parameters holds the tool's JSON schema. Definitions are cached and
// replaced as a whole list, never merged field by field.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ToolResult is the normalized outcome of one tool invocation as returned
// by the tool transport. IsError marks a remote-side tool failure whose
// explanation lives in the content blocks.
type ToolResult struct {
	Blocks  []ContentBlock
	IsError bool
}

// Content block types.
const (
	BlockTypeText = "text"
	BlockTypeJSON = "json"
)

// ContentBlock is one typed block of a tool result. Non-text blocks carry
// their raw JSON encoding in Text.
type ContentBlock struct {
	Type string
	Text string
}

package types

// APIResponse represents a generic API response with typed data
type APIResponse[T any] struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// ToolDefinition represents one entry from the tool catalog
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"` // JSON Schema
}

// ListToolsData represents the data returned by the tool listing endpoint
type ListToolsData struct {
	Tools []ToolDefinition `json:"tools"`
	Count int              `json:"count"`
}

// CallToolRequest represents a direct tool invocation payload. Arguments is
// the raw JSON object handed to the tool, kept as text.
type CallToolRequest struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// CallToolData represents the result of a direct tool invocation
type CallToolData struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

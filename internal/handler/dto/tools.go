package dto

import "github.com/xdamman/stripe-mcp-fridge/internal/domain/entity"

// Tool catalog and direct invocation shapes.

// ToolDefinition is one catalog entry.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// ListToolsResponse is the body of GET /v1/tools.
type ListToolsResponse struct {
	Tools []ToolDefinition `json:"tools"`
	Count int              `json:"count"`
}

// CallToolRequest is the body of POST /v1/tools/call. Arguments is the raw
// JSON object handed to the tool, kept as text so it round-trips the same
// way model-produced arguments do.
type CallToolRequest struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// CallToolResponse carries the normalized tool output.
type CallToolResponse struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// ToListToolsResponse converts catalog entries to the response shape.
func ToListToolsResponse(tools []entity.ToolDefinition) ListToolsResponse {
	out := make([]ToolDefinition, 0, len(tools))
	for _, t := range tools {
		out = append(out, ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		})
	}
	return ListToolsResponse{Tools: out, Count: len(out)}
}

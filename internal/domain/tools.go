package domain

import (
	"context"

	"github.com/xdamman/stripe-mcp-fridge/internal/domain/entity"
)

// ToolTransport is the outbound RPC collaborator exposing the callable
// payment-platform tools. Any two-way transport satisfies the contract as
// long as it can list tools, signal success or failure per call, and carry
// structured parameters.
type ToolTransport interface {
	// ListTools fetches the current tool definitions.
	ListTools(ctx context.Context) ([]entity.ToolDefinition, error)

	// CallTool invokes one tool with already-parsed arguments.
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*entity.ToolResult, error)
}

// ToolCatalog serves tool definitions from a TTL cache with stale-on-error
// fallback. With no prior cache a refresh failure propagates to the caller.
type ToolCatalog interface {
	List(ctx context.Context, forceRefresh bool) ([]entity.ToolDefinition, error)
}

// ToolsUsecase exposes the catalog and direct tool invocation to operator
// endpoints. Call follows the executor's boundary contract: failures come
// back encoded in the content, flagged by isError, never as an error value.
type ToolsUsecase interface {
	List(ctx context.Context, forceRefresh bool) ([]entity.ToolDefinition, error)
	Call(ctx context.Context, name, rawArguments string) (content string, isError bool)
}

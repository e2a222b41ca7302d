package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xdamman/stripe-mcp-fridge/internal/domain"
	"github.com/xdamman/stripe-mcp-fridge/internal/domain/entity"
)

// toolsUsecase serves the operator tool endpoints. It shares the catalog
// instance with the chat loop so both sides see one cache, and normalizes
// direct calls with the same helpers the executor uses.
type toolsUsecase struct {
	transport   domain.ToolTransport
	catalog     domain.ToolCatalog
	callTimeout time.Duration
	logger      *slog.Logger
}

// NewToolsUsecase creates the operator-facing tools usecase.
func NewToolsUsecase(transport domain.ToolTransport, catalog domain.ToolCatalog, callTimeout time.Duration, logger *slog.Logger) domain.ToolsUsecase {
	return &toolsUsecase{
		transport:   transport,
		catalog:     catalog,
		callTimeout: callTimeout,
		logger:      logger,
	}
}

func (u *toolsUsecase) List(ctx context.Context, forceRefresh bool) ([]entity.ToolDefinition, error) {
	return u.catalog.List(ctx, forceRefresh)
}

func (u *toolsUsecase) Call(ctx context.Context, name, rawArguments string) (string, bool) {
	args, err := parseToolArguments(rawArguments)
	if err != nil {
		u.logger.Warn("direct tool call has malformed arguments", "tool", name, "error", err)
		return errorText(fmt.Sprintf("invalid arguments for tool %q: %v", name, err)), true
	}

	callCtx := ctx
	if u.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, u.callTimeout)
		defer cancel()
	}

	result, err := u.transport.CallTool(callCtx, name, args)
	if err != nil {
		u.logger.Warn("direct tool call failed", "tool", name, "error", err)
		return errorText(fmt.Sprintf("tool %q failed: %v", name, err)), true
	}

	return renderToolResult(result), result.IsError
}

package handler

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/xdamman/stripe-mcp-fridge/internal/domain"
	"github.com/xdamman/stripe-mcp-fridge/internal/handler/dto"
)

// ToolsHandler serves the tool catalog and direct invocation endpoints.
type ToolsHandler struct {
	usecase domain.ToolsUsecase
	logger  *slog.Logger
}

// NewToolsHandler creates the tools handler.
func NewToolsHandler(usecase domain.ToolsUsecase, logger *slog.Logger) *ToolsHandler {
	return &ToolsHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// List returns the tool catalog
//
//	@Summary		List tools
//	@Description	Returns the tool catalog. refresh=true bypasses the cache TTL and refetches from the tool server.
//	@Tags			Tools
//	@Produce		json
//	@Param			refresh	query		bool											false	"Force a catalog refresh"
//	@Success		200		{object}	handler.Response{data=dto.ListToolsResponse}	"Tool catalog"
//	@Failure		503		{object}	handler.Response								"Tool server unreachable and no cached catalog"
//	@Router			/tools [get]
func (h *ToolsHandler) List(ctx context.Context, c *app.RequestContext) {
	refresh, _ := strconv.ParseBool(c.Query("refresh"))

	tools, err := h.usecase.List(ctx, refresh)
	if err != nil {
		h.logger.Error("failed to list tools", "error", err)
		ErrorResponse(c, domain.NewUnavailableError("tool server", err))
		return
	}

	SuccessResponse(c, dto.ToListToolsResponse(tools))
}

// Call invokes one tool directly
//
//	@Summary		Call a tool
//	@Description	Invokes one tool with raw JSON arguments. Failures come back inside the content with is_error set, the same way the model sees them.
//	@Tags			Tools
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CallToolRequest								true	"Tool invocation"
//	@Success		200		{object}	handler.Response{data=dto.CallToolResponse}		"Normalized tool output"
//	@Failure		400		{object}	handler.Response								"Invalid request parameters"
//	@Router			/tools/call [post]
func (h *ToolsHandler) Call(ctx context.Context, c *app.RequestContext) {
	var req dto.CallToolRequest
	if err := c.BindJSON(&req); err != nil {
		h.logger.Error("failed to bind request", "error", err)
		ErrorResponse(c, domain.ErrInvalidInput)
		return
	}
	if req.Name == "" {
		BadRequestResponse(c, "tool name is required")
		return
	}

	h.logger.Info("direct tool call", "tool", req.Name)

	content, isError := h.usecase.Call(ctx, req.Name, req.Arguments)
	SuccessResponse(c, dto.CallToolResponse{
		Name:    req.Name,
		Content: content,
		IsError: isError,
	})
}

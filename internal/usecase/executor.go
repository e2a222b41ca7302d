package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/xdamman/stripe-mcp-fridge/internal/domain"
	"github.com/xdamman/stripe-mcp-fridge/internal/domain/entity"
)

// maxParallelToolCalls caps the workers draining one turn's call list.
const maxParallelToolCalls = 10

// toolExecutor dispatches complete tool calls over the tool transport and
// normalizes every outcome, success or failure, into result text. No
// failure crosses this boundary as an error: the model reads its own
// malformed calls and the transport's failures as tool output and the
// conversation continues.
type toolExecutor struct {
	transport   domain.ToolTransport
	callTimeout time.Duration
	logger      *slog.Logger
}

func newToolExecutor(transport domain.ToolTransport, callTimeout time.Duration, logger *slog.Logger) *toolExecutor {
	return &toolExecutor{
		transport:   transport,
		callTimeout: callTimeout,
		logger:      logger,
	}
}

// execute runs one call and returns the normalized result text.
func (e *toolExecutor) execute(ctx context.Context, call entity.ToolCall) string {
	args, err := parseToolArguments(call.Arguments)
	if err != nil {
		e.logger.Warn("tool call has malformed arguments",
			"tool", call.Name, "call_id", call.ID, "error", err)
		return errorText(fmt.Sprintf("invalid arguments for tool %q: %v", call.Name, err))
	}

	callCtx := ctx
	if e.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
	}

	result, err := e.transport.CallTool(callCtx, call.Name, args)
	if err != nil {
		e.logger.Warn("tool call failed",
			"tool", call.Name, "call_id", call.ID, "error", err)
		return errorText(fmt.Sprintf("tool %q failed: %v", call.Name, err))
	}

	return renderToolResult(result)
}

// executeAll runs every call of one turn concurrently and returns one tool
// message per call in the original call order, keyed by tool_call_id.
// Completion order never leaks into the conversation. Returns nil when ctx
// is canceled mid-flight; the caller abandons the turn.
func (e *toolExecutor) executeAll(ctx context.Context, calls []entity.ToolCall) []entity.Message {
	if len(calls) == 0 {
		return nil
	}

	type indexedResult struct {
		pos  int
		text string
	}

	jobs := make(chan int, len(calls))
	results := make(chan indexedResult, len(calls))

	workers := len(calls)
	if workers > maxParallelToolCalls {
		workers = maxParallelToolCalls
	}
	for w := 0; w < workers; w++ {
		go func() {
			for pos := range jobs {
				results <- indexedResult{pos: pos, text: e.safeExecute(ctx, calls[pos])}
			}
		}()
	}

	for pos := range calls {
		jobs <- pos
	}
	close(jobs)

	texts := make([]string, len(calls))
	for range calls {
		select {
		case r := <-results:
			texts[r.pos] = r.text
		case <-ctx.Done():
			// Both channels are buffered to len(calls), so the workers
			// finish and exit on their own.
			return nil
		}
	}

	messages := make([]entity.Message, len(calls))
	for pos, call := range calls {
		messages[pos] = entity.Message{
			Role:       entity.RoleTool,
			Content:    texts[pos],
			ToolCallID: call.ID,
		}
	}
	return messages
}

// safeExecute contains panics from transport implementations; a panicking
// tool becomes an error result like any other failure.
func (e *toolExecutor) safeExecute(ctx context.Context, call entity.ToolCall) (text string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tool call panicked",
				"tool", call.Name, "panic", r, "stack", string(debug.Stack()))
			text = errorText(fmt.Sprintf("tool %q panicked: %v", call.Name, r))
		}
	}()
	return e.execute(ctx, call)
}

// parseToolArguments decodes the model-produced argument text. Empty text
// means no arguments, not an error.
func parseToolArguments(raw string) (map[string]interface{}, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return map[string]interface{}{}, nil
	}

	var args map[string]interface{}
	if err := sonic.UnmarshalString(trimmed, &args); err != nil {
		return nil, err
	}
	return args, nil
}

// renderToolResult flattens a transport result to text: the first text
// block wins, otherwise the whole block list is serialized.
func renderToolResult(result *entity.ToolResult) string {
	if result == nil {
		return ""
	}
	for _, block := range result.Blocks {
		if block.Type == entity.BlockTypeText {
			return block.Text
		}
	}

	out, err := sonic.MarshalString(result.Blocks)
	if err != nil {
		return fmt.Sprintf("%v", result.Blocks)
	}
	return out
}

// errorText serializes a structured error payload as result text so the
// conversation survives the failure.
func errorText(message string) string {
	out, err := sonic.MarshalString(map[string]string{"error": message})
	if err != nil {
		return `{"error":"tool execution failed"}`
	}
	return out
}

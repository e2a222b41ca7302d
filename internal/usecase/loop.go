package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xdamman/stripe-mcp-fridge/internal/domain"
	"github.com/xdamman/stripe-mcp-fridge/internal/domain/entity"
)

// chatLoop owns one request's conversation and drives the turn state
// machine: request the model, consume its stream, execute any tool calls,
// feed the results back, repeat until the model answers without tools or
// the turn ceiling is reached. Nothing here is shared across requests.
type chatLoop struct {
	provider domain.ModelProvider
	catalog  domain.ToolCatalog
	executor *toolExecutor
	settings ChatSettings
	logger   *slog.Logger

	model       string
	temperature *float64
	maxTokens   *int

	out   chan<- entity.StreamEvent
	conv  []entity.Message
	usage *entity.Usage
	turns int
}

// run drives the loop to completion and closes out. The caller decides
// whether to run it synchronously or on its own goroutine.
func (l *chatLoop) run(ctx context.Context, out chan<- entity.StreamEvent) {
	defer close(out)
	l.out = out

	for i := 0; i < l.settings.MaxTurns; i++ {
		done, ok := l.runTurn(ctx)
		if !ok || done {
			return
		}
	}

	// The model requested tools on every allowed round-trip. Terminate with
	// an explicit error instead of hanging the connection.
	l.logger.Warn("turn ceiling reached", "max_turns", l.settings.MaxTurns)
	if l.emit(ctx, entity.StreamEvent{
		Type: entity.EventError,
		Err:  fmt.Sprintf("conversation exceeded %d tool turns without a final answer", l.settings.MaxTurns),
	}) {
		l.emit(ctx, entity.StreamEvent{Type: entity.EventStreamEnd})
	}
}

// runTurn executes one model round-trip. done reports that the
// conversation reached its final answer; ok=false means the stream was
// terminated, either because an error was relayed or the caller is gone.
func (l *chatLoop) runTurn(ctx context.Context) (done, ok bool) {
	l.turns++

	// Best effort: a turn without tools beats no turn at all.
	tools, err := l.catalog.List(ctx, false)
	if err != nil {
		l.logger.Warn("tool catalog unavailable, continuing without tools", "error", err)
		tools = nil
	}

	events, err := l.provider.StreamChat(ctx, &domain.ProviderRequest{
		Model:       l.model,
		Messages:    l.conv,
		Tools:       tools,
		Temperature: l.temperature,
		MaxTokens:   l.maxTokens,
	})
	if err != nil {
		// Provider-level failures are not assumed transient: relay the raw
		// error body as a single error event and stop.
		msg := err.Error()
		var perr *domain.ProviderError
		if errors.As(err, &perr) {
			msg = perr.Body
		}
		l.logger.Error("provider request failed", "turn", l.turns, "error", err)
		if l.emit(ctx, entity.StreamEvent{Type: entity.EventError, Err: msg}) {
			l.emit(ctx, entity.StreamEvent{Type: entity.EventStreamEnd})
		}
		return false, false
	}

	acc := newToolCallAccumulator()
	var turnText strings.Builder
	var directCalls []entity.ToolCall
	finishReason := ""

consume:
	for {
		select {
		case <-ctx.Done():
			return false, false
		case ev, open := <-events:
			if !open {
				break consume
			}
			switch ev.Type {
			case entity.EventContentDelta:
				// Buffered for the assistant message and relayed live, in
				// provider order.
				turnText.WriteString(ev.Content)
				if !l.emit(ctx, ev) {
					return false, false
				}
			case entity.EventToolCallDelta:
				acc.apply(ev.Fragment)
			case entity.EventToolCalls:
				directCalls = ev.ToolCalls
			case entity.EventFinish:
				finishReason = ev.FinishReason
			case entity.EventUsage:
				l.usage = ev.Usage // last write wins
			case entity.EventError:
				l.logger.Error("provider stream error", "turn", l.turns, "error", ev.Err)
				if l.emit(ctx, ev) {
					l.emit(ctx, entity.StreamEvent{Type: entity.EventStreamEnd})
				}
				return false, false
			case entity.EventStreamEnd:
				break consume
			}
		}
	}

	// Three independent signals, any one of which means the model wants
	// tools executed before it can answer.
	needTools := acc.count() > 0 ||
		finishSignalsTools(finishReason) ||
		len(directCalls) > 0

	if !needTools {
		l.conv = append(l.conv, entity.Message{
			Role:    entity.RoleAssistant,
			Content: turnText.String(),
		})
		if l.usage != nil {
			if !l.emit(ctx, entity.StreamEvent{Type: entity.EventUsage, Usage: l.usage}) {
				return false, false
			}
		}
		l.emit(ctx, entity.StreamEvent{Type: entity.EventStreamEnd})
		return true, true
	}

	calls := acc.freeze()
	if len(calls) == 0 {
		calls = directCalls
	}

	l.conv = append(l.conv, entity.Message{
		Role:      entity.RoleAssistant,
		Content:   turnText.String(),
		ToolCalls: calls,
	})

	l.logger.Info("executing tool calls", "turn", l.turns, "count", len(calls))
	results := l.executor.executeAll(ctx, calls)
	if ctx.Err() != nil {
		return false, false
	}
	l.conv = append(l.conv, results...)
	return false, true
}

// emit forwards one event to the caller, giving up when the caller is gone
// so an abandoned request never blocks the loop.
func (l *chatLoop) emit(ctx context.Context, ev entity.StreamEvent) bool {
	select {
	case l.out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// finalContent returns the text of the last assistant message.
func (l *chatLoop) finalContent() string {
	for i := len(l.conv) - 1; i >= 0; i-- {
		if l.conv[i].Role == entity.RoleAssistant {
			return l.conv[i].Content
		}
	}
	return ""
}

// finishSignalsTools reports whether the finish reason explicitly asks for
// tool execution.
func finishSignalsTools(reason string) bool {
	return reason == entity.FinishReasonToolCalls || reason == entity.FinishReasonFunctionCall
}

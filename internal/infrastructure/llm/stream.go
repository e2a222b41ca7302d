package llm

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/xdamman/stripe-mcp-fridge/internal/domain/entity"
)

const (
	dataPrefix = "data:"
	doneMarker = "[DONE]"

	// maxScanTokenSize bounds a single stream record. Argument deltas for
	// large tool payloads can make individual records several hundred KB.
	maxScanTokenSize = 1024 * 1024
)

// parseStream reads newline-delimited `data:` records from the response
// body and converts them to stream events. Records that do not parse as
// JSON are dropped without interrupting the stream. The terminal [DONE]
// marker becomes a stream-end event.
func parseStream(ctx context.Context, body io.Reader, events chan<- entity.StreamEvent, logger *slog.Logger) {
	send := func(ev entity.StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), maxScanTokenSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
		if payload == doneMarker {
			send(entity.StreamEvent{Type: entity.EventStreamEnd})
			return
		}

		var chunk streamChunk
		if err := sonic.UnmarshalString(payload, &chunk); err != nil {
			logger.Debug("dropping malformed stream record", slog.String("error", err.Error()))
			continue
		}
		if !emitChunk(&chunk, send) {
			return
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		logger.Warn("completion stream broken", slog.String("error", err.Error()))
		if !send(entity.StreamEvent{Type: entity.EventError, Err: "stream read failed: " + err.Error()}) {
			return
		}
	}

	// The provider closed the stream without a [DONE] marker. Treat it as a
	// normal end so the conversation loop can settle on what it received.
	send(entity.StreamEvent{Type: entity.EventStreamEnd})
}

// emitChunk fans one decoded record out into events. Returns false when the
// consumer went away.
func emitChunk(chunk *streamChunk, send func(entity.StreamEvent) bool) bool {
	for _, choice := range chunk.Choices {
		if delta := choice.Delta; delta != nil {
			if delta.Content != "" {
				if !send(entity.StreamEvent{Type: entity.EventContentDelta, Content: delta.Content}) {
					return false
				}
			}
			for _, tc := range delta.ToolCalls {
				fragment := &entity.ToolCallFragment{
					Index:          tc.Index,
					ID:             tc.ID,
					Name:           tc.Function.Name,
					ArgumentsDelta: tc.Function.Arguments,
				}
				if !send(entity.StreamEvent{Type: entity.EventToolCallDelta, Fragment: fragment}) {
					return false
				}
			}
		}

		// Some gateways answer a streamed request with one complete
		// message instead of deltas.
		if msg := choice.Message; msg != nil {
			if msg.Content != "" {
				if !send(entity.StreamEvent{Type: entity.EventContentDelta, Content: msg.Content}) {
					return false
				}
			}
			if len(msg.ToolCalls) > 0 {
				if !send(entity.StreamEvent{Type: entity.EventToolCalls, ToolCalls: toToolCalls(msg.ToolCalls)}) {
					return false
				}
			}
		}

		if choice.FinishReason != "" {
			if !send(entity.StreamEvent{Type: entity.EventFinish, FinishReason: choice.FinishReason}) {
				return false
			}
		}
	}

	if chunk.Usage != nil {
		usage := &entity.Usage{
			PromptTokens:     chunk.Usage.PromptTokens,
			CompletionTokens: chunk.Usage.CompletionTokens,
			TotalTokens:      chunk.Usage.TotalTokens,
		}
		if !send(entity.StreamEvent{Type: entity.EventUsage, Usage: usage}) {
			return false
		}
	}
	return true
}

package llm

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/xdamman/stripe-mcp-fridge/internal/domain"
	"github.com/xdamman/stripe-mcp-fridge/internal/domain/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// collectEvents runs the parser over input and drains everything it emits.
func collectEvents(t *testing.T, input string) []entity.StreamEvent {
	t.Helper()

	events := make(chan entity.StreamEvent, 64)
	go func() {
		parseStream(context.Background(), strings.NewReader(input), events, testLogger())
		close(events)
	}()

	var got []entity.StreamEvent
	for ev := range events {
		got = append(got, ev)
	}
	return got
}

func TestParseStreamContentDeltas(t *testing.T) {
	input := `data: {"choices":[{"delta":{"content":"Hello"}}]}
data: {"choices":[{"delta":{"content":" world"}}]}
data: [DONE]
data: {"choices":[{"delta":{"content":"after done, never seen"}}]}
`
	got := collectEvents(t, input)

	if len(got) != 3 {
		t.Fatalf("got %d events, want 3: %v", len(got), got)
	}
	if got[0].Type != entity.EventContentDelta || got[0].Content != "Hello" {
		t.Errorf("event 0 = %+v", got[0])
	}
	if got[1].Type != entity.EventContentDelta || got[1].Content != " world" {
		t.Errorf("event 1 = %+v", got[1])
	}
	if got[2].Type != entity.EventStreamEnd {
		t.Errorf("event 2 = %+v, want stream end at [DONE]", got[2])
	}
}

func TestParseStreamDropsMalformedRecords(t *testing.T) {
	input := `data: {"choices":[{"delta":{"content":"ok"}}]}
data: {this is not json
data: {"choices":[{"delta":{"content":"still ok"}}]}
data: [DONE]
`
	got := collectEvents(t, input)

	if len(got) != 3 {
		t.Fatalf("got %d events, want the malformed record silently dropped: %v", len(got), got)
	}
	if got[0].Content != "ok" || got[1].Content != "still ok" {
		t.Errorf("contents = %q, %q", got[0].Content, got[1].Content)
	}
}

func TestParseStreamSkipsNonDataLines(t *testing.T) {
	input := `: keepalive comment

event: message
data: {"choices":[{"delta":{"content":"hi"}}]}
data:[DONE]
`
	got := collectEvents(t, input)

	if len(got) != 2 {
		t.Fatalf("got %d events, want 2: %v", len(got), got)
	}
	if got[0].Content != "hi" {
		t.Errorf("content = %q", got[0].Content)
	}
	// "data:[DONE]" without a space still terminates the stream.
	if got[1].Type != entity.EventStreamEnd {
		t.Errorf("event 1 = %+v", got[1])
	}
}

func TestParseStreamToolCallFragments(t *testing.T) {
	input := `data: {"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"retrieve_balance"}}]}}]}
data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"currency\":"}}]}}]}
data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"usd\"}"}}]}}]}
data: {"choices":[{"delta":{},"finish_reason":"tool_calls"}]}
data: [DONE]
`
	got := collectEvents(t, input)

	if len(got) != 5 {
		t.Fatalf("got %d events, want 5: %v", len(got), got)
	}

	first := got[0]
	if first.Type != entity.EventToolCallDelta || first.Fragment == nil {
		t.Fatalf("event 0 = %+v, want a tool-call fragment", first)
	}
	if first.Fragment.Index != 0 || first.Fragment.ID != "call_1" || first.Fragment.Name != "retrieve_balance" {
		t.Errorf("fragment 0 = %+v", first.Fragment)
	}

	if got[1].Fragment.ArgumentsDelta != `{"currency":` {
		t.Errorf("fragment 1 delta = %q", got[1].Fragment.ArgumentsDelta)
	}
	if got[2].Fragment.ArgumentsDelta != `"usd"}` {
		t.Errorf("fragment 2 delta = %q", got[2].Fragment.ArgumentsDelta)
	}

	if got[3].Type != entity.EventFinish || got[3].FinishReason != entity.FinishReasonToolCalls {
		t.Errorf("event 3 = %+v, want the finish reason", got[3])
	}
	if got[4].Type != entity.EventStreamEnd {
		t.Errorf("event 4 = %+v", got[4])
	}
}

func TestParseStreamDirectToolCallsList(t *testing.T) {
	// Some gateways answer a streamed request with one complete message
	// instead of deltas.
	input := `data: {"choices":[{"message":{"tool_calls":[{"id":"call_9","type":"function","function":{"name":"list_customers","arguments":"{\"limit\":3}"}}]},"finish_reason":"tool_calls"}]}
data: [DONE]
`
	got := collectEvents(t, input)

	if len(got) != 3 {
		t.Fatalf("got %d events, want 3: %v", len(got), got)
	}
	if got[0].Type != entity.EventToolCalls || len(got[0].ToolCalls) != 1 {
		t.Fatalf("event 0 = %+v, want the complete call list", got[0])
	}
	call := got[0].ToolCalls[0]
	if call.ID != "call_9" || call.Name != "list_customers" || call.Arguments != `{"limit":3}` {
		t.Errorf("call = %+v", call)
	}
	if got[1].Type != entity.EventFinish {
		t.Errorf("event 1 = %+v", got[1])
	}
}

func TestParseStreamUsageTrailer(t *testing.T) {
	input := `data: {"choices":[{"delta":{"content":"hi"},"finish_reason":"stop"}]}
data: {"choices":[],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}
data: [DONE]
`
	got := collectEvents(t, input)

	if len(got) != 4 {
		t.Fatalf("got %d events, want 4: %v", len(got), got)
	}
	usage := got[2]
	if usage.Type != entity.EventUsage || usage.Usage == nil {
		t.Fatalf("event 2 = %+v, want usage", usage)
	}
	if usage.Usage.PromptTokens != 10 || usage.Usage.CompletionTokens != 5 || usage.Usage.TotalTokens != 15 {
		t.Errorf("usage = %+v", usage.Usage)
	}
}

func TestParseStreamEOFWithoutDone(t *testing.T) {
	input := `data: {"choices":[{"delta":{"content":"cut"}}]}
`
	got := collectEvents(t, input)

	if len(got) != 2 {
		t.Fatalf("got %d events, want 2: %v", len(got), got)
	}
	// A clean EOF without [DONE] still ends the stream normally.
	if got[1].Type != entity.EventStreamEnd {
		t.Errorf("event 1 = %+v, want stream end", got[1])
	}
}

func TestBuildRequest(t *testing.T) {
	temperature := 0.2
	maxTokens := 256
	req := buildRequest(&domain.ProviderRequest{
		Model: "fridge-agent",
		Messages: []entity.Message{
			{Role: entity.RoleUser, Content: "balance?"},
			{Role: entity.RoleAssistant, ToolCalls: []entity.ToolCall{
				{ID: "call_1", Name: "retrieve_balance", Arguments: "{}"},
			}},
			{Role: entity.RoleTool, Content: "$10.00", ToolCallID: "call_1"},
		},
		Tools: []entity.ToolDefinition{
			{Name: "retrieve_balance", Description: "Current balance", Parameters: map[string]interface{}{"type": "object"}},
		},
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})

	if !req.Stream {
		t.Error("requests are always streamed upstream")
	}
	if req.StreamOptions == nil || !req.StreamOptions.IncludeUsage {
		t.Error("stream_options.include_usage must be set to get the usage trailer")
	}
	if len(req.Tools) != 1 || req.Tools[0].Type != toolTypeFunction || req.Tools[0].Function.Name != "retrieve_balance" {
		t.Errorf("tools = %+v", req.Tools)
	}

	if len(req.Messages) != 3 {
		t.Fatalf("messages = %d, want 3", len(req.Messages))
	}
	assistant := req.Messages[1]
	if len(assistant.ToolCalls) != 1 || assistant.ToolCalls[0].ID != "call_1" || assistant.ToolCalls[0].Type != toolTypeFunction {
		t.Errorf("assistant wire message = %+v", assistant)
	}
	tool := req.Messages[2]
	if tool.Role != entity.RoleTool || tool.ToolCallID != "call_1" || tool.Content != "$10.00" {
		t.Errorf("tool wire message = %+v", tool)
	}
}

package usecase

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xdamman/stripe-mcp-fridge/internal/domain/entity"
)

// fakeTransport is a scriptable tool transport shared by the tests in this
// package.
type fakeTransport struct {
	mu        sync.Mutex
	listCalls int
	callCalls int
	lastName  string
	lastArgs  map[string]interface{}

	listFunc func(ctx context.Context) ([]entity.ToolDefinition, error)
	callFunc func(ctx context.Context, name string, args map[string]interface{}) (*entity.ToolResult, error)
}

func (f *fakeTransport) ListTools(ctx context.Context) ([]entity.ToolDefinition, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	if f.listFunc != nil {
		return f.listFunc(ctx)
	}
	return nil, nil
}

func (f *fakeTransport) CallTool(ctx context.Context, name string, args map[string]interface{}) (*entity.ToolResult, error) {
	f.mu.Lock()
	f.callCalls++
	f.lastName = name
	f.lastArgs = args
	f.mu.Unlock()
	if f.callFunc != nil {
		return f.callFunc(ctx, name, args)
	}
	return textResult("ok"), nil
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCalls
}

func textResult(text string) *entity.ToolResult {
	return &entity.ToolResult{Blocks: []entity.ContentBlock{{Type: entity.BlockTypeText, Text: text}}}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestExecuteAllKeepsCallOrder(t *testing.T) {
	// Completion order is deliberately scrambled: the first call is the
	// slowest and the second the fastest. The result messages must still
	// line up with the call list, not with completion.
	delays := map[string]time.Duration{
		"slow":   30 * time.Millisecond,
		"fast":   10 * time.Millisecond,
		"medium": 20 * time.Millisecond,
	}
	transport := &fakeTransport{
		callFunc: func(ctx context.Context, name string, args map[string]interface{}) (*entity.ToolResult, error) {
			time.Sleep(delays[name])
			return textResult("result of " + name), nil
		},
	}

	executor := newToolExecutor(transport, 0, testLogger())
	calls := []entity.ToolCall{
		{ID: "call_0", Name: "slow", Arguments: "{}"},
		{ID: "call_1", Name: "fast", Arguments: "{}"},
		{ID: "call_2", Name: "medium", Arguments: "{}"},
	}

	messages := executor.executeAll(context.Background(), calls)
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}

	for i, call := range calls {
		msg := messages[i]
		if msg.Role != entity.RoleTool {
			t.Errorf("message %d role = %q, want %q", i, msg.Role, entity.RoleTool)
		}
		if msg.ToolCallID != call.ID {
			t.Errorf("message %d ToolCallID = %q, want %q", i, msg.ToolCallID, call.ID)
		}
		if want := "result of " + call.Name; msg.Content != want {
			t.Errorf("message %d content = %q, want %q", i, msg.Content, want)
		}
	}
}

func TestExecuteMalformedArguments(t *testing.T) {
	transport := &fakeTransport{}
	executor := newToolExecutor(transport, 0, testLogger())

	text := executor.execute(context.Background(), entity.ToolCall{
		ID:        "call_1",
		Name:      "create_customer",
		Arguments: `{"name": "Ada`,
	})

	// The failure is encoded in the result text, never surfaced as an
	// error, so the conversation can continue.
	if !strings.Contains(text, `"error"`) {
		t.Errorf("expected structured error text, got %q", text)
	}
	if !strings.Contains(text, "invalid arguments") {
		t.Errorf("expected invalid-arguments message, got %q", text)
	}
	if !strings.Contains(text, "create_customer") {
		t.Errorf("expected tool name in message, got %q", text)
	}
	if transport.calls() != 0 {
		t.Errorf("transport called %d times for malformed arguments, want 0", transport.calls())
	}
}

func TestExecuteTransportFailure(t *testing.T) {
	transport := &fakeTransport{
		callFunc: func(ctx context.Context, name string, args map[string]interface{}) (*entity.ToolResult, error) {
			return nil, context.DeadlineExceeded
		},
	}
	executor := newToolExecutor(transport, 0, testLogger())

	text := executor.execute(context.Background(), entity.ToolCall{
		ID: "call_1", Name: "retrieve_balance", Arguments: "{}",
	})

	if !strings.Contains(text, `"error"`) || !strings.Contains(text, "retrieve_balance") {
		t.Errorf("expected structured transport failure text, got %q", text)
	}
}

func TestExecuteAllContainsPanics(t *testing.T) {
	transport := &fakeTransport{
		callFunc: func(ctx context.Context, name string, args map[string]interface{}) (*entity.ToolResult, error) {
			if name == "explode" {
				panic("tool went sideways")
			}
			return textResult("fine"), nil
		},
	}
	executor := newToolExecutor(transport, 0, testLogger())

	messages := executor.executeAll(context.Background(), []entity.ToolCall{
		{ID: "call_0", Name: "explode", Arguments: "{}"},
		{ID: "call_1", Name: "retrieve_balance", Arguments: "{}"},
	})

	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if !strings.Contains(messages[0].Content, "panicked") {
		t.Errorf("expected panic to become an error result, got %q", messages[0].Content)
	}
	if messages[1].Content != "fine" {
		t.Errorf("sibling call content = %q, want %q", messages[1].Content, "fine")
	}
}

func TestExecuteEmptyArgumentsMeansNoArguments(t *testing.T) {
	transport := &fakeTransport{}
	executor := newToolExecutor(transport, 0, testLogger())

	text := executor.execute(context.Background(), entity.ToolCall{
		ID: "call_1", Name: "retrieve_balance", Arguments: "",
	})

	if text != "ok" {
		t.Errorf("content = %q, want %q", text, "ok")
	}
	if transport.lastArgs == nil || len(transport.lastArgs) != 0 {
		t.Errorf("transport args = %v, want empty map", transport.lastArgs)
	}
}

func TestExecuteToolErrorResultIsStillText(t *testing.T) {
	transport := &fakeTransport{
		callFunc: func(ctx context.Context, name string, args map[string]interface{}) (*entity.ToolResult, error) {
			return &entity.ToolResult{
				Blocks:  []entity.ContentBlock{{Type: entity.BlockTypeText, Text: "no such account"}},
				IsError: true,
			}, nil
		},
	}
	executor := newToolExecutor(transport, 0, testLogger())

	text := executor.execute(context.Background(), entity.ToolCall{
		ID: "call_1", Name: "retrieve_balance", Arguments: "{}",
	})

	if text != "no such account" {
		t.Errorf("content = %q, want the tool's own explanation", text)
	}
}

func TestExecuteAllWithNoCalls(t *testing.T) {
	executor := newToolExecutor(&fakeTransport{}, 0, testLogger())
	if got := executor.executeAll(context.Background(), nil); got != nil {
		t.Errorf("executeAll(nil) = %v, want nil", got)
	}
}

func TestRenderToolResult(t *testing.T) {
	tests := []struct {
		name   string
		result *entity.ToolResult
		want   string
	}{
		{
			name:   "first text block wins",
			result: &entity.ToolResult{Blocks: []entity.ContentBlock{{Type: entity.BlockTypeJSON, Text: `{"a":1}`}, {Type: entity.BlockTypeText, Text: "hello"}, {Type: entity.BlockTypeText, Text: "ignored"}}},
			want:   "hello",
		},
		{
			name:   "no text blocks serializes the list",
			result: &entity.ToolResult{Blocks: []entity.ContentBlock{{Type: entity.BlockTypeJSON, Text: `{"a":1}`}}},
			want:   `[{"Type":"json","Text":"{\"a\":1}"}]`,
		},
		{
			name:   "nil result is empty",
			result: nil,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderToolResult(tt.result); got != tt.want {
				t.Errorf("renderToolResult() = %q, want %q", got, tt.want)
			}
		})
	}
}

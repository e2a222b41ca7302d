package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xdamman/stripe-mcp-fridge/internal/domain/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// setupTestToolbox boots an in-memory tool server and points the toolbox at
// it through the transport builder override.
func setupTestToolbox(t *testing.T, connectCounter *atomic.Int32) (*Toolbox, func()) {
	t.Helper()

	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "payment-test-tools", Version: "test"}, nil)
	registerPaymentTools(server)

	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		session, err := server.Connect(ctx, serverTransport, nil)
		if err != nil {
			ready <- err
			return
		}
		ready <- nil
		<-ctx.Done()
		_ = session.Close()
	}()

	original := transportBuilder
	transportBuilder = func(ctx context.Context, spec string) (mcpsdk.Transport, error) {
		if connectCounter != nil {
			connectCounter.Add(1)
		}
		return clientTransport, nil
	}
	t.Cleanup(func() { transportBuilder = original })

	toolbox := NewToolbox("inmemory", 5*time.Second, testLogger())
	cleanup := func() {
		_ = toolbox.Close()
		cancel()
		<-done
		if err := <-ready; err != nil {
			t.Fatalf("tool server connect failed: %v", err)
		}
	}
	return toolbox, cleanup
}

func registerPaymentTools(server *mcpsdk.Server) {
	server.AddTool(&mcpsdk.Tool{
		Name:        "retrieve_balance",
		Description: "Retrieve the current account balance",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"currency": map[string]any{"type": "string"},
			},
		},
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args map[string]string
		if err := sonic.Unmarshal(req.Params.Arguments, &args); err != nil {
			return nil, err
		}
		currency := args["currency"]
		if currency == "" {
			currency = "usd"
		}
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "available: 4200 " + currency}},
		}, nil
	})

	server.AddTool(&mcpsdk.Tool{
		Name:        "create_refund",
		Description: "Refund a payment",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"payment_intent": map[string]any{"type": "string"},
			},
			"required": []any{"payment_intent"},
		},
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return &mcpsdk.CallToolResult{
			IsError: true,
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "charge already refunded"}},
		}, nil
	})
}

func TestToolboxListTools(t *testing.T) {
	var connects atomic.Int32
	toolbox, cleanup := setupTestToolbox(t, &connects)
	defer cleanup()

	defs, err := toolbox.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("got %d tools, want 2: %+v", len(defs), defs)
	}

	byName := map[string]entity.ToolDefinition{}
	for _, def := range defs {
		byName[def.Name] = def
	}
	balance, ok := byName["retrieve_balance"]
	if !ok {
		t.Fatalf("retrieve_balance missing: %+v", defs)
	}
	if balance.Description != "Retrieve the current account balance" {
		t.Errorf("description = %q", balance.Description)
	}
	if balance.Parameters["type"] != "object" {
		t.Errorf("parameters = %+v, want an object schema", balance.Parameters)
	}
	if _, ok := balance.Parameters["properties"]; !ok {
		t.Errorf("parameters lost the properties: %+v", balance.Parameters)
	}

	// A second listing reuses the established session.
	if _, err := toolbox.ListTools(context.Background()); err != nil {
		t.Fatalf("second ListTools failed: %v", err)
	}
	if connects.Load() != 1 {
		t.Errorf("connected %d times, want exactly one lazy connect", connects.Load())
	}
}

func TestToolboxCallTool(t *testing.T) {
	var connects atomic.Int32
	toolbox, cleanup := setupTestToolbox(t, &connects)
	defer cleanup()

	result, err := toolbox.CallTool(context.Background(), "retrieve_balance", map[string]interface{}{"currency": "eur"})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("result flagged as error: %+v", result)
	}
	if len(result.Blocks) != 1 || result.Blocks[0].Type != entity.BlockTypeText {
		t.Fatalf("blocks = %+v", result.Blocks)
	}
	if result.Blocks[0].Text != "available: 4200 eur" {
		t.Errorf("text = %q, arguments did not reach the server", result.Blocks[0].Text)
	}

	// Nil arguments are sent as an empty object, not null.
	result, err = toolbox.CallTool(context.Background(), "retrieve_balance", nil)
	if err != nil {
		t.Fatalf("CallTool with nil args failed: %v", err)
	}
	if result.Blocks[0].Text != "available: 4200 usd" {
		t.Errorf("text = %q", result.Blocks[0].Text)
	}

	if connects.Load() != 1 {
		t.Errorf("connected %d times, want one", connects.Load())
	}
}

func TestToolboxCallToolServerSideError(t *testing.T) {
	toolbox, cleanup := setupTestToolbox(t, nil)
	defer cleanup()

	// A tool-level failure comes back as a result, not a transport error.
	result, err := toolbox.CallTool(context.Background(), "create_refund", map[string]interface{}{"payment_intent": "pi_123"})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if !result.IsError {
		t.Fatalf("result not flagged as error: %+v", result)
	}
	if result.Blocks[0].Text != "charge already refunded" {
		t.Errorf("text = %q", result.Blocks[0].Text)
	}
}

func TestToolboxCallUnknownTool(t *testing.T) {
	toolbox, cleanup := setupTestToolbox(t, nil)
	defer cleanup()

	_, err := toolbox.CallTool(context.Background(), "missing_tool", nil)
	if err == nil {
		t.Fatal("expected an error for an unknown tool")
	}
	if !strings.Contains(err.Error(), "missing_tool") {
		t.Errorf("error %q does not name the tool", err.Error())
	}
}

func TestToolboxConnectFailureIsSticky(t *testing.T) {
	original := transportBuilder
	t.Cleanup(func() { transportBuilder = original })

	var attempts atomic.Int32
	transportBuilder = func(context.Context, string) (mcpsdk.Transport, error) {
		attempts.Add(1)
		return nil, fmt.Errorf("no such transport")
	}

	toolbox := NewToolbox("bad://spec", time.Second, testLogger())
	if _, err := toolbox.ListTools(context.Background()); err == nil {
		t.Fatal("expected a connect error")
	}
	if _, err := toolbox.CallTool(context.Background(), "retrieve_balance", nil); err == nil {
		t.Fatal("expected the cached connect error")
	}
	if attempts.Load() != 1 {
		t.Errorf("builder ran %d times, want one attempt", attempts.Load())
	}
}

type failingTransport struct{}

func (failingTransport) Connect(context.Context) (mcpsdk.Connection, error) {
	return nil, fmt.Errorf("connect refused")
}

func TestToolboxConnectFailure(t *testing.T) {
	original := transportBuilder
	t.Cleanup(func() { transportBuilder = original })

	transportBuilder = func(context.Context, string) (mcpsdk.Transport, error) {
		return failingTransport{}, nil
	}

	toolbox := NewToolbox("unreachable", time.Second, testLogger())
	_, err := toolbox.ListTools(context.Background())
	if err == nil {
		t.Fatal("expected a connect error")
	}
	if !strings.Contains(err.Error(), "failed to connect to tool server") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestToolboxCloseWithoutSession(t *testing.T) {
	toolbox := NewToolbox("never-connected", time.Second, testLogger())
	if err := toolbox.Close(); err != nil {
		t.Errorf("Close without a session = %v, want nil", err)
	}
}

func TestToToolDefinition(t *testing.T) {
	tests := []struct {
		name       string
		tool       *mcpsdk.Tool
		wantParams string
	}{
		{
			name: "map schema is kept as is",
			tool: &mcpsdk.Tool{
				Name:        "list_customers",
				InputSchema: map[string]interface{}{"type": "object", "properties": map[string]interface{}{"limit": map[string]interface{}{"type": "integer"}}},
			},
			wantParams: "properties",
		},
		{
			name: "structured schema is converted through JSON",
			tool: &mcpsdk.Tool{
				Name: "create_payment_link",
				InputSchema: struct {
					Type       string                 `json:"type"`
					Properties map[string]interface{} `json:"properties"`
				}{Type: "object", Properties: map[string]interface{}{"price": map[string]interface{}{"type": "string"}}},
			},
			wantParams: "properties",
		},
		{
			name:       "missing schema defaults to an empty object",
			tool:       &mcpsdk.Tool{Name: "ping"},
			wantParams: "type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := toToolDefinition(tt.tool)
			if def.Name != tt.tool.Name {
				t.Errorf("name = %q, want %q", def.Name, tt.tool.Name)
			}
			if def.Parameters == nil {
				t.Fatal("parameters must never be nil")
			}
			if def.Parameters["type"] != "object" {
				t.Errorf("parameters = %+v, want an object schema", def.Parameters)
			}
			if _, ok := def.Parameters[tt.wantParams]; !ok {
				t.Errorf("parameters = %+v, want key %q", def.Parameters, tt.wantParams)
			}
		})
	}
}

func TestToToolResult(t *testing.T) {
	result := toToolResult(&mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: "receipt sent"},
			&mcpsdk.ImageContent{Data: []byte{0x1}, MIMEType: "image/png"},
		},
	})

	if !result.IsError {
		t.Error("error flag lost")
	}
	if len(result.Blocks) != 2 {
		t.Fatalf("blocks = %+v", result.Blocks)
	}
	if result.Blocks[0].Type != entity.BlockTypeText || result.Blocks[0].Text != "receipt sent" {
		t.Errorf("block 0 = %+v", result.Blocks[0])
	}
	if result.Blocks[1].Type != entity.BlockTypeJSON {
		t.Errorf("block 1 = %+v, non-text content must become a JSON block", result.Blocks[1])
	}
	if !strings.Contains(result.Blocks[1].Text, "image/png") {
		t.Errorf("block 1 text = %q", result.Blocks[1].Text)
	}

	if empty := toToolResult(nil); empty == nil || len(empty.Blocks) != 0 {
		t.Errorf("nil result = %+v, want an empty result", empty)
	}
}

func TestBuildTransportSpecs(t *testing.T) {
	tests := []struct {
		name     string
		spec     string
		wantKind string
		wantErr  bool
	}{
		{name: "stdio scheme", spec: "stdio://npx -y @stripe/mcp --tools=all", wantKind: "stdio"},
		{name: "bare command is stdio", spec: "npx -y @stripe/mcp", wantKind: "stdio"},
		{name: "sse scheme guesses https", spec: "sse://tools.example.com/mcp", wantKind: "sse"},
		{name: "plain http URL is served over sse", spec: "http://localhost:9000/mcp", wantKind: "sse"},
		{name: "http+stream forces streamable http", spec: "http+stream://localhost:9000/mcp", wantKind: "http"},
		{name: "https+sse forces sse", spec: "https+sse://tools.example.com/mcp", wantKind: "sse"},
		{name: "empty spec", spec: "", wantErr: true},
		{name: "empty stdio command", spec: "stdio://", wantErr: true},
		{name: "unknown http hint", spec: "http+carrier-pigeon://localhost:9000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport, err := buildTransport(context.Background(), tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("buildTransport(%q) expected an error", tt.spec)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildTransport(%q) failed: %v", tt.spec, err)
			}

			var kind string
			switch transport.(type) {
			case *mcpsdk.CommandTransport:
				kind = "stdio"
			case *mcpsdk.SSEClientTransport:
				kind = "sse"
			case *mcpsdk.StreamableClientTransport:
				kind = "http"
			default:
				t.Fatalf("unexpected transport type %T", transport)
			}
			if kind != tt.wantKind {
				t.Errorf("buildTransport(%q) = %s transport, want %s", tt.spec, kind, tt.wantKind)
			}
		})
	}
}

func TestBuildTransportEndpoints(t *testing.T) {
	transport, err := buildTransport(context.Background(), "sse://tools.example.com/mcp")
	if err != nil {
		t.Fatalf("buildTransport failed: %v", err)
	}
	sse, ok := transport.(*mcpsdk.SSEClientTransport)
	if !ok {
		t.Fatalf("transport type = %T", transport)
	}
	if sse.Endpoint != "https://tools.example.com/mcp" {
		t.Errorf("endpoint = %q, want the https scheme filled in", sse.Endpoint)
	}

	transport, err = buildTransport(context.Background(), "http+stream://localhost:9000/mcp")
	if err != nil {
		t.Fatalf("buildTransport failed: %v", err)
	}
	stream, ok := transport.(*mcpsdk.StreamableClientTransport)
	if !ok {
		t.Fatalf("transport type = %T", transport)
	}
	if stream.Endpoint != "http://localhost:9000/mcp" {
		t.Errorf("endpoint = %q, the transport hint must not leak into the URL", stream.Endpoint)
	}

	transport, err = buildTransport(context.Background(), "stdio://npx -y @stripe/mcp --tools=all")
	if err != nil {
		t.Fatalf("buildTransport failed: %v", err)
	}
	command, ok := transport.(*mcpsdk.CommandTransport)
	if !ok {
		t.Fatalf("transport type = %T", transport)
	}
	args := command.Command.Args
	if len(args) != 4 || args[0] != "npx" || args[3] != "--tools=all" {
		t.Errorf("command args = %v", args)
	}
}

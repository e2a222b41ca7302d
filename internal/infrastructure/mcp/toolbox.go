// Package mcp connects the service to a Model Context Protocol tool server
// and adapts its tools to the domain model.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xdamman/stripe-mcp-fridge/internal/domain/entity"
)

// transportBuilder is overridden in tests to stub the transport factory.
var transportBuilder = buildTransport

// Toolbox is an MCP client session that implements domain.ToolTransport.
// The connection is established lazily on first use so the service can
// start before the tool server is reachable.
type Toolbox struct {
	client         *mcpsdk.Client
	session        *mcpsdk.ClientSession
	transportSpec  string
	connectTimeout time.Duration
	logger         *slog.Logger
	once           sync.Once
	connectErr     error
}

// NewToolbox creates a toolbox for the given transport spec. Supported
// forms: "stdio://<command>", "sse://<host>", "http(s)://<url>" (served
// over SSE) and "http+stream://<url>" for streamable HTTP.
func NewToolbox(transportSpec string, connectTimeout time.Duration, logger *slog.Logger) *Toolbox {
	if logger == nil {
		logger = slog.Default()
	}
	impl := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "stripe-mcp-fridge", Version: "dev"}, nil)
	return &Toolbox{
		client:         impl,
		transportSpec:  transportSpec,
		connectTimeout: connectTimeout,
		logger:         logger,
	}
}

func (t *Toolbox) ensureConnected(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	t.once.Do(func() {
		// The transport owns any spawned subprocess, so it is built against
		// the background context rather than the first caller's.
		transport, err := transportBuilder(context.Background(), t.transportSpec)
		if err != nil {
			t.connectErr = fmt.Errorf("failed to build tool transport: %w", err)
			return
		}

		connectCtx := ctx
		if t.connectTimeout > 0 {
			var cancel context.CancelFunc
			connectCtx, cancel = context.WithTimeout(ctx, t.connectTimeout)
			defer cancel()
		}

		session, err := t.client.Connect(connectCtx, transport, nil)
		if err != nil {
			t.connectErr = fmt.Errorf("failed to connect to tool server: %w", err)
			return
		}
		t.session = session
		t.logger.Info("connected to tool server", slog.String("transport", t.transportSpec))
	})
	return t.connectErr
}

// ListTools fetches the complete tool list from the server.
func (t *Toolbox) ListTools(ctx context.Context) ([]entity.ToolDefinition, error) {
	if err := t.ensureConnected(ctx); err != nil {
		return nil, err
	}
	var defs []entity.ToolDefinition
	for tool, err := range t.session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("failed to list tools: %w", err)
		}
		defs = append(defs, toToolDefinition(tool))
	}
	return defs, nil
}

// CallTool invokes a tool by name with already-parsed arguments.
func (t *Toolbox) CallTool(ctx context.Context, name string, args map[string]interface{}) (*entity.ToolResult, error) {
	if err := t.ensureConnected(ctx); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	result, err := t.session.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("tool call %q failed: %w", name, err)
	}
	return toToolResult(result), nil
}

// Close shuts down the server session, if one was established.
func (t *Toolbox) Close() error {
	if t == nil || t.session == nil {
		return nil
	}
	err := t.session.Close()
	t.session = nil
	return err
}

func toToolDefinition(tool *mcpsdk.Tool) entity.ToolDefinition {
	def := entity.ToolDefinition{
		Name:        tool.Name,
		Description: tool.Description,
	}
	if tool.InputSchema != nil {
		if schema, ok := tool.InputSchema.(map[string]interface{}); ok {
			def.Parameters = schema
		} else if raw, err := sonic.Marshal(tool.InputSchema); err == nil {
			var schema map[string]interface{}
			if sonic.Unmarshal(raw, &schema) == nil {
				def.Parameters = schema
			}
		}
	}
	// OpenAI-compatible endpoints reject tools without an object schema.
	if def.Parameters == nil {
		def.Parameters = map[string]interface{}{"type": "object"}
	}
	return def
}

func toToolResult(result *mcpsdk.CallToolResult) *entity.ToolResult {
	if result == nil {
		return &entity.ToolResult{}
	}
	out := &entity.ToolResult{IsError: result.IsError}
	for _, content := range result.Content {
		switch block := content.(type) {
		case *mcpsdk.TextContent:
			out.Blocks = append(out.Blocks, entity.ContentBlock{Type: entity.BlockTypeText, Text: block.Text})
		default:
			raw, err := sonic.MarshalString(content)
			if err != nil {
				continue
			}
			out.Blocks = append(out.Blocks, entity.ContentBlock{Type: entity.BlockTypeJSON, Text: raw})
		}
	}
	return out
}

const (
	stdioSchemePrefix = "stdio://"
	sseSchemePrefix   = "sse://"
	httpHintType      = "http"
	sseHintType       = "sse"
)

func buildTransport(ctx context.Context, spec string) (mcpsdk.Transport, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("tool transport spec is empty")
	}

	lowered := strings.ToLower(spec)
	switch {
	case strings.HasPrefix(lowered, stdioSchemePrefix):
		return buildStdioTransport(ctx, spec[len(stdioSchemePrefix):])
	case strings.HasPrefix(lowered, sseSchemePrefix):
		target := strings.TrimSpace(spec[len(sseSchemePrefix):])
		endpoint, err := normalizeHTTPURL(target, true)
		if err != nil {
			return nil, fmt.Errorf("invalid SSE endpoint: %w", err)
		}
		return buildSSETransport(endpoint)
	}

	if kind, endpoint, matched, err := parseHTTPFamilySpec(spec); err != nil {
		return nil, err
	} else if matched {
		if kind == httpHintType {
			return buildHTTPTransport(endpoint)
		}
		return buildSSETransport(endpoint)
	}

	if strings.HasPrefix(lowered, "http://") || strings.HasPrefix(lowered, "https://") {
		return buildSSETransport(spec)
	}

	// A bare command line is treated as a stdio server.
	return buildStdioTransport(ctx, spec)
}

func buildStdioTransport(ctx context.Context, cmdSpec string) (mcpsdk.Transport, error) {
	parts := strings.Fields(strings.TrimSpace(cmdSpec))
	if len(parts) == 0 {
		return nil, fmt.Errorf("stdio tool command is empty")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	// #nosec G204 -- the command line comes from service configuration, not request input
	command := exec.CommandContext(ctx, parts[0], parts[1:]...)
	return &mcpsdk.CommandTransport{Command: command}, nil
}

func buildSSETransport(endpoint string) (mcpsdk.Transport, error) {
	normalized, err := normalizeHTTPURL(endpoint, false)
	if err != nil {
		return nil, fmt.Errorf("invalid SSE endpoint: %w", err)
	}
	return &mcpsdk.SSEClientTransport{Endpoint: normalized}, nil
}

func buildHTTPTransport(endpoint string) (mcpsdk.Transport, error) {
	normalized, err := normalizeHTTPURL(endpoint, false)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP endpoint: %w", err)
	}
	return &mcpsdk.StreamableClientTransport{Endpoint: normalized}, nil
}

// parseHTTPFamilySpec resolves "http+<hint>://" specs that force a specific
// HTTP-family transport, e.g. "http+sse://" or "https+stream://".
func parseHTTPFamilySpec(spec string) (kind string, endpoint string, matched bool, err error) {
	u, parseErr := url.Parse(strings.TrimSpace(spec))
	if parseErr != nil || u.Scheme == "" {
		return "", "", false, nil
	}
	scheme := strings.ToLower(u.Scheme)
	base, hint, hasHint := strings.Cut(scheme, "+")
	if !hasHint {
		return "", "", false, nil
	}
	if base != "http" && base != "https" {
		return "", "", false, nil
	}
	if idx := strings.IndexByte(hint, '+'); idx >= 0 {
		hint = hint[:idx]
	}
	var resolvedKind string
	switch hint {
	case "sse":
		resolvedKind = sseHintType
	case "stream", "streamable", "http", "json":
		resolvedKind = httpHintType
	default:
		return "", "", true, fmt.Errorf("unsupported HTTP transport hint %q", hint)
	}
	normalized := *u
	normalized.Scheme = base
	endpoint, normErr := normalizeHTTPURL(normalized.String(), false)
	if normErr != nil {
		return "", "", true, fmt.Errorf("invalid %s endpoint: %w", resolvedKind, normErr)
	}
	return resolvedKind, endpoint, true, nil
}

func normalizeHTTPURL(raw string, allowSchemeGuess bool) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("endpoint is empty")
	}
	if allowSchemeGuess && !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	parsed.Scheme = scheme
	return parsed.String(), nil
}

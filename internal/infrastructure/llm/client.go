// Package llm provides the streaming chat-completion client for
// OpenAI-compatible model endpoints.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/xdamman/stripe-mcp-fridge/internal/domain"
	"github.com/xdamman/stripe-mcp-fridge/internal/domain/entity"
)

const (
	completionsPath = "/v1/chat/completions"

	// eventBufferSize is the capacity of the event channel handed to callers.
	eventBufferSize = 100

	// maxErrorBodyBytes caps how much of a failed response body is relayed.
	maxErrorBodyBytes = 32 * 1024
)

// Client talks to an OpenAI-compatible chat completions endpoint over the
// Hertz HTTP client and implements domain.ModelProvider.
type Client struct {
	httpClient  *client.Client
	baseURL     string
	apiKey      string
	callTimeout time.Duration
	logger      *slog.Logger
}

// NewClient creates a streaming provider client.
// The netpoll transport does not support response body streaming, so the
// client is pinned to the standard dialer.
func NewClient(baseURL, apiKey string, callTimeout time.Duration, logger *slog.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("provider base URL is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient, err := client.NewClient(
		client.WithDialTimeout(10*time.Second),
		client.WithMaxIdleConnDuration(60*time.Second),
		client.WithResponseBodyStream(true),
		client.WithDialer(standard.NewDialer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		callTimeout: callTimeout,
		logger:      logger,
	}, nil
}

// StreamChat sends a chat completion request and returns a channel of
// stream events. The channel is closed when the stream ends, fails, or the
// context is canceled. A non-success HTTP status is returned synchronously
// as a *domain.ProviderError carrying the raw response body.
func (c *Client) StreamChat(ctx context.Context, req *domain.ProviderRequest) (<-chan entity.StreamEvent, error) {
	body, err := sonic.Marshal(buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	callCtx := ctx
	cancel := context.CancelFunc(func() {})
	if c.callTimeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, c.callTimeout)
	}

	httpReq := protocol.AcquireRequest()
	httpResp := protocol.AcquireResponse()
	release := func() {
		cancel()
		protocol.ReleaseRequest(httpReq)
		protocol.ReleaseResponse(httpResp)
	}

	httpReq.SetMethod(consts.MethodPost)
	httpReq.SetRequestURI(c.baseURL + completionsPath)
	httpReq.Header.SetContentTypeBytes([]byte("application/json"))
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	httpReq.SetBody(body)

	c.logger.Debug("starting completion stream",
		slog.String("model", req.Model),
		slog.Int("messages", len(req.Messages)),
		slog.Int("tools", len(req.Tools)))

	if err := c.httpClient.Do(callCtx, httpReq, httpResp); err != nil {
		release()
		return nil, fmt.Errorf("provider request failed: %w", err)
	}

	if status := httpResp.StatusCode(); status < 200 || status >= 300 {
		errBody := httpResp.Body()
		if len(errBody) > maxErrorBodyBytes {
			errBody = errBody[:maxErrorBodyBytes]
		}
		release()
		return nil, &domain.ProviderError{StatusCode: status, Body: string(errBody)}
	}

	bodyStream := httpResp.BodyStream()
	if bodyStream == nil {
		release()
		return nil, fmt.Errorf("provider response has no body stream")
	}

	events := make(chan entity.StreamEvent, eventBufferSize)
	go func() {
		defer func() {
			close(events)
			release()
		}()
		parseStream(callCtx, bodyStream, events, c.logger)
	}()

	return events, nil
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xdamman/stripe-mcp-fridge/internal/domain"
	"github.com/xdamman/stripe-mcp-fridge/internal/domain/entity"
)

const (
	// eventBufferSize decouples the loop from slow SSE writes a little
	// without letting an abandoned caller pin much memory.
	eventBufferSize = 100

	maxMessageLength = 10000
)

// ChatSettings carries the loop tuning taken from configuration.
type ChatSettings struct {
	DefaultModel string
	Temperature  float64
	MaxTokens    int
	MaxTurns     int
	SystemPrompt string
	ToolTimeout  time.Duration
}

// chatUsecase implements domain.ChatUsecase. It wires the model provider,
// the tool catalog and the tool executor into per-request loops.
type chatUsecase struct {
	provider domain.ModelProvider
	catalog  domain.ToolCatalog
	executor *toolExecutor
	settings ChatSettings
	logger   *slog.Logger
}

// NewChatUsecase builds the chat usecase.
//
// Parameters:
//   - provider: streaming chat-completion client
//   - transport: tool RPC transport, used for execution
//   - catalog: cached tool definitions, used per turn
//   - settings: loop tuning (model defaults, turn ceiling, timeouts)
//   - logger: structured logger
func NewChatUsecase(
	provider domain.ModelProvider,
	transport domain.ToolTransport,
	catalog domain.ToolCatalog,
	settings ChatSettings,
	logger *slog.Logger,
) domain.ChatUsecase {
	if settings.MaxTurns < 1 {
		settings.MaxTurns = 10
	}
	return &chatUsecase{
		provider: provider,
		catalog:  catalog,
		executor: newToolExecutor(transport, settings.ToolTimeout, logger),
		settings: settings,
		logger:   logger,
	}
}

// Chat runs the full loop and returns the aggregated result.
func (u *chatUsecase) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	if err := validateChatRequest(req); err != nil {
		return nil, err
	}

	loop := u.newLoop(req)
	events := make(chan entity.StreamEvent, eventBufferSize)

	var streamErr string
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			if ev.Type == entity.EventError {
				streamErr = ev.Err
			}
		}
	}()

	loop.run(ctx, events)
	<-done

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if streamErr != "" {
		return nil, fmt.Errorf("chat failed: %s", streamErr)
	}

	return &domain.ChatResponse{
		Content:      loop.finalContent(),
		Conversation: loop.conv,
		Usage:        loop.usage,
		Turns:        loop.turns,
	}, nil
}

// ChatStreaming runs the loop on its own goroutine and hands the event
// channel to the caller. The channel closes when the loop ends; the caller
// cancels ctx to abandon the request.
func (u *chatUsecase) ChatStreaming(ctx context.Context, req *domain.ChatRequest) (<-chan entity.StreamEvent, error) {
	if err := validateChatRequest(req); err != nil {
		return nil, err
	}

	loop := u.newLoop(req)
	events := make(chan entity.StreamEvent, eventBufferSize)
	go loop.run(ctx, events)
	return events, nil
}

// newLoop assembles the per-request loop state: the conversation seeded
// with the configured system prompt (unless the caller brought one) and
// the effective sampling parameters.
func (u *chatUsecase) newLoop(req *domain.ChatRequest) *chatLoop {
	conv := make([]entity.Message, 0, len(req.Messages)+2)
	if u.settings.SystemPrompt != "" &&
		(len(req.Messages) == 0 || req.Messages[0].Role != entity.RoleSystem) {
		conv = append(conv, entity.Message{Role: entity.RoleSystem, Content: u.settings.SystemPrompt})
	}
	conv = append(conv, req.Messages...)

	model := req.Model
	if model == "" {
		model = u.settings.DefaultModel
	}

	temperature := req.Temperature
	if temperature == nil {
		t := u.settings.Temperature
		temperature = &t
	}

	maxTokens := req.MaxTokens
	if maxTokens == nil && u.settings.MaxTokens > 0 {
		mt := u.settings.MaxTokens
		maxTokens = &mt
	}

	return &chatLoop{
		provider:    u.provider,
		catalog:     u.catalog,
		executor:    u.executor,
		settings:    u.settings,
		logger:      u.logger,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		conv:        conv,
	}
}

// validateChatRequest rejects requests the loop could not run.
func validateChatRequest(req *domain.ChatRequest) error {
	if req == nil || len(req.Messages) == 0 {
		return fmt.Errorf("%w: messages are required", domain.ErrInvalidInput)
	}

	for i, msg := range req.Messages {
		switch msg.Role {
		case entity.RoleSystem, entity.RoleUser, entity.RoleAssistant, entity.RoleTool:
		default:
			return fmt.Errorf("%w: message %d has unknown role %q", domain.ErrInvalidInput, i, msg.Role)
		}
	}

	last := req.Messages[len(req.Messages)-1]
	if last.Role != entity.RoleUser {
		return fmt.Errorf("%w: last message must be from the user", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(last.Content) == "" {
		return fmt.Errorf("%w: message content is required", domain.ErrInvalidInput)
	}
	if len(last.Content) > maxMessageLength {
		return fmt.Errorf("%w: message too long (max %d characters)", domain.ErrInvalidInput, maxMessageLength)
	}

	return nil
}

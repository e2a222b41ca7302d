package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/protocol/sse"

	"github.com/xdamman/stripe-mcp-fridge/internal/domain"
	"github.com/xdamman/stripe-mcp-fridge/internal/domain/entity"
	"github.com/xdamman/stripe-mcp-fridge/internal/handler/dto"
)

const doneMarker = "[DONE]"

// ChatHandler serves the OpenAI-compatible chat completion endpoint.
type ChatHandler struct {
	usecase      domain.ChatUsecase
	defaultModel string
	logger       *slog.Logger
}

// NewChatHandler creates the chat handler.
func NewChatHandler(usecase domain.ChatUsecase, defaultModel string, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		usecase:      usecase,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

// CreateChatCompletion handles a chat request (OpenAI format).
//
//	@Summary		Chat completions
//	@Description	OpenAI-compatible chat endpoint. Tool calls requested by the model run server-side; the client receives content deltas, a usage trailer and the final answer.
//	@Tags			Chat
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.ChatCompletionRequest	true	"Chat request"
//	@Success		200		{object}	dto.ChatCompletionResponse	"Chat response"
//	@Failure		400		{object}	handler.Response			"Invalid request parameters"
//	@Failure		500		{object}	handler.Response			"Internal error"
//	@Router			/chat/completions [post]
func (h *ChatHandler) CreateChatCompletion(ctx context.Context, c *app.RequestContext) {
	var req dto.ChatCompletionRequest
	if err := c.BindJSON(&req); err != nil {
		h.logger.Error("failed to bind request", "error", err)
		ErrorResponse(c, domain.ErrInvalidInput)
		return
	}

	if len(req.Messages) == 0 {
		h.logger.Error("messages is required")
		ErrorResponse(c, domain.ErrInvalidInput)
		return
	}

	chatReq := &domain.ChatRequest{
		Messages:    toEntityMessages(req.Messages),
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	h.logger.Info("chat request received",
		"messages", len(req.Messages),
		"model", req.Model,
		"stream", req.Stream)

	if req.Stream {
		h.handleStreaming(ctx, c, chatReq)
	} else {
		h.handleNonStreaming(ctx, c, chatReq)
	}
}

func (h *ChatHandler) handleNonStreaming(ctx context.Context, c *app.RequestContext, chatReq *domain.ChatRequest) {
	resp, err := h.usecase.Chat(ctx, chatReq)
	if err != nil {
		h.logger.Error("chat failed", "error", err)
		ErrorResponse(c, err)
		return
	}

	openaiResp := dto.ChatCompletionResponse{
		ID:      fmt.Sprintf("chatcmpl-%d", time.Now().Unix()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   h.getModel(chatReq.Model),
		Choices: []dto.ChatCompletionChoice{
			{
				Index: 0,
				Message: dto.ChatMessage{
					Role:    entity.RoleAssistant,
					Content: resp.Content,
				},
				FinishReason: "stop",
			},
		},
		Usage:        fromUsage(resp.Usage),
		Conversation: fromEntityMessages(resp.Conversation),
		Turns:        resp.Turns,
	}

	c.JSON(consts.StatusOK, openaiResp)
}

// handleStreaming relays loop events as SSE records. Tool-call progress stays
// server-side; the client sees content deltas from every model turn, a usage
// trailer when the provider reported one, and a closing finish chunk.
func (h *ChatHandler) handleStreaming(ctx context.Context, c *app.RequestContext, chatReq *domain.ChatRequest) {
	streamCh, err := h.usecase.ChatStreaming(ctx, chatReq)
	if err != nil {
		h.logger.Error("streaming chat failed", "error", err)
		ErrorResponse(c, err)
		return
	}

	// The status code must be set before the SSE writer takes over.
	c.SetStatusCode(consts.StatusOK)

	writer := sse.NewWriter(c)
	defer writer.Close()

	chatID := fmt.Sprintf("chatcmpl-%d", time.Now().Unix())
	created := time.Now().Unix()
	modelName := h.getModel(chatReq.Model)

	firstChunk := true
	var usage *dto.ChatCompletionUsage

	for ev := range streamCh {
		switch ev.Type {
		case entity.EventContentDelta:
			chunk := dto.ChatCompletionChunk{
				ID:      chatID,
				Object:  "chat.completion.chunk",
				Created: created,
				Model:   modelName,
				Choices: []dto.ChatCompletionStreamChoice{
					{
						Index: 0,
						Delta: dto.ChatCompletionDelta{Content: ev.Content},
					},
				},
			}
			if firstChunk {
				chunk.Choices[0].Delta.Role = entity.RoleAssistant
				firstChunk = false
			}
			if err := h.writeSSEJSON(writer, chunk); err != nil {
				h.logger.Error("failed to write sse event", "error", err)
				return
			}

		case entity.EventUsage:
			usage = fromUsage(ev.Usage)

		case entity.EventError:
			h.logger.Error("stream error", "error", ev.Err)
			errRecord := dto.StreamError{
				Error: dto.StreamErrorDetail{Message: ev.Err, Type: "server_error"},
			}
			if err := h.writeSSEJSON(writer, errRecord); err != nil {
				h.logger.Error("failed to write error event", "error", err)
				return
			}
			if err := writer.WriteEvent("", "", []byte(doneMarker)); err != nil {
				h.logger.Error("failed to write done event", "error", err)
			}
			return

		case entity.EventStreamEnd:
			finishReason := "stop"
			finalChunk := dto.ChatCompletionChunk{
				ID:      chatID,
				Object:  "chat.completion.chunk",
				Created: created,
				Model:   modelName,
				Choices: []dto.ChatCompletionStreamChoice{
					{
						Index:        0,
						Delta:        dto.ChatCompletionDelta{},
						FinishReason: &finishReason,
					},
				},
			}
			if err := h.writeSSEJSON(writer, finalChunk); err != nil {
				h.logger.Error("failed to write final event", "error", err)
				return
			}
			if usage != nil {
				usageChunk := dto.ChatCompletionChunk{
					ID:      chatID,
					Object:  "chat.completion.chunk",
					Created: created,
					Model:   modelName,
					Choices: []dto.ChatCompletionStreamChoice{},
					Usage:   usage,
				}
				if err := h.writeSSEJSON(writer, usageChunk); err != nil {
					h.logger.Error("failed to write usage event", "error", err)
					return
				}
			}
			if err := writer.WriteEvent("", "", []byte(doneMarker)); err != nil {
				h.logger.Error("failed to write done event", "error", err)
			}
			return
		}
	}
}

// writeSSEJSON sends one JSON record through the Hertz SSE writer.
// WriteEvent adds the "data: " framing and flushes on its own.
func (h *ChatHandler) writeSSEJSON(writer *sse.Writer, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal json: %w", err)
	}
	return writer.WriteEvent("", "", jsonData)
}

func (h *ChatHandler) getModel(model string) string {
	if model != "" {
		return model
	}
	if h.defaultModel != "" {
		return h.defaultModel
	}
	return "fridge-agent"
}

func toEntityMessages(msgs []dto.ChatMessage) []entity.Message {
	out := make([]entity.Message, 0, len(msgs))
	for _, m := range msgs {
		msg := entity.Message{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, entity.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		out = append(out, msg)
	}
	return out
}

func fromEntityMessages(msgs []entity.Message) []dto.ChatMessage {
	out := make([]dto.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		msg := dto.ChatMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, dto.ToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: dto.ToolCallFunction{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func fromUsage(u *entity.Usage) *dto.ChatCompletionUsage {
	if u == nil {
		return nil
	}
	return &dto.ChatCompletionUsage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

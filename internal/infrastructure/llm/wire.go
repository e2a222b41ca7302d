package llm

import (
	"github.com/xdamman/stripe-mcp-fridge/internal/domain"
	"github.com/xdamman/stripe-mcp-fridge/internal/domain/entity"
)

// OpenAI-compatible chat completions wire format. Only the fields this
// service depends on are modeled; everything else passes through untouched.

const toolTypeFunction = "function"

type chatCompletionRequest struct {
	Model         string         `json:"model"`
	Messages      []wireMessage  `json:"messages"`
	Stream        bool           `json:"stream"`
	StreamOptions *streamOptions `json:"stream_options,omitempty"`
	Tools         []wireTool     `json:"tools,omitempty"`
	Temperature   *float64       `json:"temperature,omitempty"`
	MaxTokens     *int           `json:"max_tokens,omitempty"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

type wireTool struct {
	Type     string           `json:"type"`
	Function wireToolFunction `json:"function"`
}

type wireToolFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// streamChunk is one decoded `data:` record of the response stream.
type streamChunk struct {
	Choices []chunkChoice `json:"choices"`
	Usage   *chunkUsage   `json:"usage"`
}

type chunkChoice struct {
	Delta        *chunkDelta   `json:"delta"`
	Message      *chunkMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type chunkDelta struct {
	Content   string           `json:"content"`
	ToolCalls []chunkToolDelta `json:"tool_calls"`
}

// chunkMessage is the non-streamed message form some gateways emit inside
// a stream: a complete tool_calls list instead of fragments.
type chunkMessage struct {
	Content   string           `json:"content"`
	ToolCalls []chunkToolDelta `json:"tool_calls"`
}

type chunkToolDelta struct {
	Index    int          `json:"index"`
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type chunkUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// buildRequest converts a provider request to the wire form.
func buildRequest(req *domain.ProviderRequest) *chatCompletionRequest {
	messages := make([]wireMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, toWireMessage(msg))
	}

	var tools []wireTool
	for _, def := range req.Tools {
		tools = append(tools, wireTool{
			Type: toolTypeFunction,
			Function: wireToolFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}

	return &chatCompletionRequest{
		Model:         req.Model,
		Messages:      messages,
		Stream:        true,
		StreamOptions: &streamOptions{IncludeUsage: true},
		Tools:         tools,
		Temperature:   req.Temperature,
		MaxTokens:     req.MaxTokens,
	}
}

func toWireMessage(msg entity.Message) wireMessage {
	out := wireMessage{
		Role:       msg.Role,
		Content:    msg.Content,
		ToolCallID: msg.ToolCallID,
	}
	for _, call := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, wireToolCall{
			ID:   call.ID,
			Type: toolTypeFunction,
			Function: wireFunction{
				Name:      call.Name,
				Arguments: call.Arguments,
			},
		})
	}
	return out
}

// toToolCalls converts a complete wire tool_calls list to domain calls,
// preserving wire order.
func toToolCalls(deltas []chunkToolDelta) []entity.ToolCall {
	calls := make([]entity.ToolCall, 0, len(deltas))
	for _, d := range deltas {
		calls = append(calls, entity.ToolCall{
			ID:        d.ID,
			Name:      d.Function.Name,
			Arguments: d.Function.Arguments,
		})
	}
	return calls
}

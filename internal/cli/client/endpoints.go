package client

const (
	// API version prefix
	apiV1Prefix = "/v1"

	// Tool endpoints
	endpointTools     = apiV1Prefix + "/tools"      // GET
	endpointToolsCall = apiV1Prefix + "/tools/call" // POST

	// Chat endpoints
	endpointChatCompletions = apiV1Prefix + "/chat/completions" // OpenAI-compatible endpoint

	// Health endpoints
	endpointPing = "/ping" // GET
)

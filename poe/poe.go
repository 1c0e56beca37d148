// Package poe implements [poegate.Provider] for the Poe bot-query API.
//
// Generation requests go over SSE: the bot endpoint emits text events that
// are surfaced one chunk at a time through the pull-based [poegate.Stream]
// interface. Model enumeration is a plain JSON GET.
package poe

const (
	defaultBaseURL = "https://api.poe.com"
	botPathPrefix  = "/bot/"
	modelsPath     = "/api/available_models"
	protocolVer    = "1.0"
)

// apiRequest is the JSON body sent to the bot-query endpoint.
type apiRequest struct {
	Version string       `json:"version"`
	Type    string       `json:"type"` // always "query"
	Query   []apiMessage `json:"query"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SSE event payloads.

type textEvent struct {
	Text string `json:"text"`
}

type errorEvent struct {
	Text       string `json:"text"`
	AllowRetry bool   `json:"allow_retry"`
}

// modelsResponse is the body of the available-models endpoint.
type modelsResponse struct {
	Models []struct {
		Slug string `json:"slug"`
	} `json:"models"`
}

// apiErrorResponse is the JSON body returned on non-200 HTTP responses.
type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// DefaultModels is the static bot list served when the upstream cannot be
// reached. It lags whatever Poe actually serves; ListModels is
// authoritative.
func DefaultModels() []string {
	return []string{
		"GPT-3.5-Turbo",
		"GPT-4",
		"GPT-4o",
		"Claude-3-Opus-200k",
		"Claude-3-Sonnet-7k",
		"Claude-3-Haiku-3k",
		"Claude-2-100k",
		"Gemini-Pro",
		"Llama-3-70b",
		"Llama-3-8b",
		"Mistral-7B",
		"Mistral-Large",
		"Perplexity-Online",
	}
}

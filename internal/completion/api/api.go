// Package api holds the /ai-completion wire format shared by the server and its clients.
package api

// NoSuggestion is what the server answers when the assistant produced no text.
// Clients treat it as nothing to show.
const NoSuggestion = "No response generated."

type CompletionRequest struct {
	Code *string `json:"code" binding:"required"`
}

type CompletionResponse struct {
	Suggestion string `json:"suggestion"`
}

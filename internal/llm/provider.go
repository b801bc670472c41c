// Package llm is the generative-language layer used for recall grading.
// Providers return JSON; when a request carries a Schema the output is
// validated before it reaches the caller.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates a response for a prompt.
type Provider interface {
	// Generate sends req and returns the model output. With req.Schema set,
	// Content is JSON that validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model the provider talks to.
	ModelID() string
}

// Request is a single-turn or short multi-turn prompt.
type Request struct {
	System   string
	Messages []Message

	// Schema requests structured output. Nil means free text.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserPrompt is shorthand for a one-message conversation.
func UserPrompt(text string) []Message {
	return []Message{{Role: RoleUser, Content: text}}
}

// Schema is a named JSON Schema document.
type Schema struct {
	// Name is kebab-case and doubles as the schema cache key.
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the model output.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string

	// StopReason is "end" or "max_tokens".
	StopReason string
}

// Usage is the token accounting of one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

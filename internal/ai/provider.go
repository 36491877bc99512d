// Package ai wraps the chat completion service used to generate plans.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Provider sends one completion request. Implementations make a single
// attempt and report failures as *UpstreamServiceError.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

type Message struct {
	Role    string
	Content string
}

// ResponseSchema asks the service for JSON that matches Schema.
type ResponseSchema struct {
	Name   string
	Schema json.RawMessage
}

type CompletionRequest struct {
	// Purpose labels the request for logs and canned mock answers, e.g. "workout".
	Purpose     string
	Messages    []Message
	MaxTokens   int
	Temperature *float64
	Schema      *ResponseSchema
}

type Completion struct {
	Text         string
	Model        string
	FinishReason string
	TotalTokens  int
}

// UpstreamServiceError reports a failed or unusable completion call.
type UpstreamServiceError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *UpstreamServiceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: upstream status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *UpstreamServiceError) Unwrap() error { return e.Err }

// UserPrompt builds a request holding a single user message.
func UserPrompt(purpose, prompt string) CompletionRequest {
	return CompletionRequest{
		Purpose:  purpose,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}

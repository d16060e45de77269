// Package llm talks to hosted language models on behalf of the AI tutor.
//
// Every backend implements Provider. Decorators add retry and logging, and
// MockProvider answers offline.
package llm

import (
	"context"
	"encoding/json"
	"strconv"
)

// Provider generates one completion per call.
type Provider interface {
	// Generate sends req and returns the model output. When req.Schema is set
	// the output has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the concrete model the provider targets.
	ModelID() string
}

type Request struct {
	System   string
	Messages []Message

	// Schema asks the backend for structured JSON. Without it, Content is
	// the raw reply text encoded as a JSON string.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserPrompt builds the single-turn request shape used by the tutor.
func UserPrompt(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}

// Schema is a named JSON Schema. The name doubles as the cache key for the
// compiled validator.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Stop reasons, normalized across backends.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

// Text returns Content as plain text, unquoting it when it is a JSON string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	if s, err := strconv.Unquote(string(r.Content)); err == nil {
		return s
	}
	return string(r.Content)
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

func usage(in, out int) Usage {
	return Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}

// rawText wraps unstructured reply text so Content is always valid JSON.
func rawText(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

// finish validates structured output and assembles the response.
func finish(req Request, content json.RawMessage, model, stop string, u Usage) (*Response, error) {
	if req.Schema == nil {
		content = rawText(string(content))
	} else {
		if stop == StopMaxTokens {
			return nil, &ErrMaxTokensExceeded{Content: content}
		}
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}
	return &Response{Content: content, Usage: u, Model: model, StopReason: stop}, nil
}

// resolveModel maps an alias to a model ID. Unknown names pass through.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}

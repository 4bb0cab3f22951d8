package llm

import (
	"context"
	"errors"
)

// Client abstracts model providers behind a single text-in/text-out call.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GenerateRequest captures one prompt for the model capability.
type GenerateRequest struct {
	System   string
	Prompt   string
	WantJSON bool
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Generate returns ErrNotImplemented.
func (PlaceholderClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotImplemented
}

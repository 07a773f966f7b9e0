package agent

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// MessageSender sends one Messages API request. The indirection exists so
// tests can script model behavior without the network.
type MessageSender interface {
	Send(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

type anthropicSender struct {
	client anthropic.Client
}

// NewAnthropicSender creates a sender backed by the Anthropic API.
func NewAnthropicSender(apiKey string) MessageSender {
	return &anthropicSender{client: anthropic.NewClient(option.WithAPIKey(apiKey))}
}

func (s *anthropicSender) Send(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return s.client.Messages.New(ctx, params)
}

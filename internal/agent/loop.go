package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/teemow/calagent/internal/logging"
	"github.com/teemow/calagent/internal/tools"
)

// DefaultMaxTokens bounds the size of each assistant turn.
const DefaultMaxTokens = 1024

// DefaultRequestTimeout bounds each individual model request.
const DefaultRequestTimeout = 120 * time.Second

// SystemPrompt renders the assistant instructions, anchored to the current
// time so relative dates ("tomorrow at 3pm") resolve correctly.
func SystemPrompt(now time.Time) string {
	return fmt.Sprintf(`You are a calendar assistant. You help the user manage their Google Calendar using the available tools.

The current date and time is %s.

Keep replies short and factual. When the user asks about their schedule, use the tools rather than guessing.`,
		now.Format(time.RFC3339))
}

// Config tunes a conversation loop. Zero values get defaults.
type Config struct {
	Model          string
	MaxTokens      int64
	SystemPrompt   string
	RequestTimeout time.Duration
}

// Loop drives the turn-by-turn exchange between the model and the tool
// registry. One loop owns one conversation: the full message history is
// re-sent on every round and retained across Run calls so successive REPL
// queries share context.
//
// The loop is strictly sequential. One model request is in flight at a time,
// and tool calls within a round are dispatched one after another in the
// order the model issued them, so mutating operations keep a deterministic
// effect order.
type Loop struct {
	sender   MessageSender
	registry *tools.Registry
	cfg      Config
	logger   *slog.Logger
	messages []anthropic.MessageParam
}

// NewLoop creates a conversation loop over the given sender and registry.
func NewLoop(sender MessageSender, registry *tools.Registry, cfg Config, logger *slog.Logger) *Loop {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		sender:   sender,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run appends the user message to the conversation and drives rounds until
// the model produces a final answer, which is returned as concatenated text.
//
// Tool-level failures never surface here: they are fed back to the model as
// error-flagged results. Model or protocol failures abort the invocation,
// keeping the history accumulated so far.
func (l *Loop) Run(ctx context.Context, userMessage string) (string, error) {
	l.messages = append(l.messages, anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)))

	for round := 1; ; round++ {
		msg, err := l.request(ctx)
		if err != nil {
			return "", &ModelRequestError{Err: err}
		}
		l.messages = append(l.messages, msg.ToParam())

		switch string(msg.StopReason) {
		case string(anthropic.StopReasonEndTurn):
			l.logger.Debug("conversation complete", logging.Round(round))
			return collectText(msg), nil

		case string(anthropic.StopReasonToolUse):
			results := l.dispatchCalls(ctx, msg, round)
			l.messages = append(l.messages, anthropic.NewUserMessage(results...))

		default:
			return "", &ProtocolError{StopReason: string(msg.StopReason)}
		}
	}
}

func (l *Loop) request(ctx context.Context) (*anthropic.Message, error) {
	reqCtx, cancel := context.WithTimeout(ctx, l.cfg.RequestTimeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(l.cfg.Model),
		MaxTokens: l.cfg.MaxTokens,
		Messages:  l.messages,
		Tools:     toolParams(l.registry.Specs()),
	}
	if l.cfg.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: l.cfg.SystemPrompt}}
	}
	return l.sender.Send(reqCtx, params)
}

// dispatchCalls executes every tool call of the assistant turn in the order
// presented and returns one result block per call, ids preserved.
func (l *Loop) dispatchCalls(ctx context.Context, msg *anthropic.Message, round int) []anthropic.ContentBlockParamUnion {
	var results []anthropic.ContentBlockParamUnion
	for _, block := range msg.Content {
		if block.Type != "tool_use" {
			continue
		}

		var input map[string]any
		if len(block.Input) > 0 {
			if err := json.Unmarshal(block.Input, &input); err != nil {
				l.logger.Warn("undecodable tool input",
					logging.Tool(block.Name), logging.Err(err), logging.Round(round))
				results = append(results, anthropic.NewToolResultBlock(
					block.ID, fmt.Sprintf("invalid tool input: %v", err), true))
				continue
			}
		}

		res := l.registry.Dispatch(ctx, block.Name, input)
		results = append(results, anthropic.NewToolResultBlock(block.ID, res.Content, res.IsError))
	}
	return results
}

func collectText(msg *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

func toolParams(specs []tools.Spec) []anthropic.ToolUnionParam {
	params := make([]anthropic.ToolUnionParam, 0, len(specs))
	for _, s := range specs {
		params = append(params, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        s.Name,
				Description: anthropic.String(s.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: s.InputSchema.Properties,
					Required:   s.InputSchema.Required,
				},
			},
		})
	}
	return params
}

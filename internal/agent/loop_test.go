package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calagent/internal/tools"
)

type fakeSender struct {
	t         *testing.T
	responses []*anthropic.Message
	params    []anthropic.MessageNewParams
	err       error
	onSend    func()
}

func (f *fakeSender) Send(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	if f.onSend != nil {
		f.onSend()
	}
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		f.t.Fatal("model called more often than scripted")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func assistantText(text string) *anthropic.Message {
	return &anthropic.Message{
		Role:       "assistant",
		Content:    []anthropic.ContentBlockUnion{{Type: "text", Text: text}},
		StopReason: "end_turn",
	}
}

func toolUse(id, name, input string) anthropic.ContentBlockUnion {
	return anthropic.ContentBlockUnion{
		Type:  "tool_use",
		ID:    id,
		Name:  name,
		Input: json.RawMessage(input),
	}
}

func assistantToolCalls(blocks ...anthropic.ContentBlockUnion) *anthropic.Message {
	return &anthropic.Message{
		Role:       "assistant",
		Content:    blocks,
		StopReason: "tool_use",
	}
}

// resultTurn decodes the tool-result user turn out of captured params.
type resultTurn struct {
	Role    string `json:"role"`
	Content []struct {
		Type      string `json:"type"`
		ToolUseID string `json:"tool_use_id"`
		IsError   bool   `json:"is_error"`
		Content   []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"content"`
}

func decodeTurn(t *testing.T, param anthropic.MessageParam) resultTurn {
	t.Helper()
	data, err := json.Marshal(param)
	require.NoError(t, err)
	var turn resultTurn
	require.NoError(t, json.Unmarshal(data, &turn))
	return turn
}

func newLoop(t *testing.T, sender MessageSender, reg *tools.Registry) *Loop {
	t.Helper()
	return NewLoop(sender, reg, Config{Model: "claude-sonnet-4-5"}, nil)
}

func TestRunFinalAnswer(t *testing.T) {
	sender := &fakeSender{t: t, responses: []*anthropic.Message{assistantText("Your day is free.")}}
	loop := newLoop(t, sender, tools.NewRegistry(nil))

	got, err := loop.Run(context.Background(), "what's on today?")
	require.NoError(t, err)
	assert.Equal(t, "Your day is free.", got)
	require.Len(t, sender.params, 1)
	assert.Len(t, sender.params[0].Messages, 1)
}

func TestRunConcatenatesTextBlocks(t *testing.T) {
	msg := &anthropic.Message{
		Role: "assistant",
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: "Part one. "},
			{Type: "text", Text: "Part two."},
		},
		StopReason: "end_turn",
	}
	sender := &fakeSender{t: t, responses: []*anthropic.Message{msg}}
	loop := newLoop(t, sender, tools.NewRegistry(nil))

	got, err := loop.Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Part one. Part two.", got)
}

func TestRunToolRound(t *testing.T) {
	var events []string
	reg := tools.NewRegistry(nil)
	require.NoError(t, reg.Register(tools.Spec{Name: "list_events"}, func(ctx context.Context, input map[string]any) (string, error) {
		events = append(events, "list_events")
		return "No upcoming events found.", nil
	}))
	require.NoError(t, reg.Register(tools.Spec{Name: "search_events"}, func(ctx context.Context, input map[string]any) (string, error) {
		events = append(events, "search_events")
		q, _ := input["query"].(string)
		return `No events found matching "` + q + `".`, nil
	}))

	sender := &fakeSender{t: t, responses: []*anthropic.Message{
		assistantToolCalls(
			toolUse("call_1", "list_events", `{}`),
			toolUse("call_2", "search_events", `{"query":"standup"}`),
		),
		assistantText("Nothing scheduled."),
	}}
	sender.onSend = func() { events = append(events, "request") }

	loop := newLoop(t, sender, reg)
	got, err := loop.Run(context.Background(), "am I busy?")
	require.NoError(t, err)
	assert.Equal(t, "Nothing scheduled.", got)

	// Both tools ran, in the order presented, before the second request.
	assert.Equal(t, []string{"request", "list_events", "search_events", "request"}, events)

	// The second request carries user, assistant, and one bundled result turn.
	require.Len(t, sender.params, 2)
	require.Len(t, sender.params[1].Messages, 3)

	turn := decodeTurn(t, sender.params[1].Messages[2])
	assert.Equal(t, "user", turn.Role)
	require.Len(t, turn.Content, 2, "one result per call")
	assert.Equal(t, "tool_result", turn.Content[0].Type)
	assert.Equal(t, "call_1", turn.Content[0].ToolUseID)
	assert.Equal(t, "call_2", turn.Content[1].ToolUseID)
	assert.False(t, turn.Content[0].IsError)
	require.NotEmpty(t, turn.Content[0].Content)
	assert.Equal(t, "No upcoming events found.", turn.Content[0].Content[0].Text)
	assert.Equal(t, `No events found matching "standup".`, turn.Content[1].Content[0].Text)
}

func TestRunToolFailureContinues(t *testing.T) {
	reg := tools.NewRegistry(nil)
	require.NoError(t, reg.Register(tools.Spec{Name: "delete_event"}, func(ctx context.Context, input map[string]any) (string, error) {
		return "", errors.New("event not found")
	}))

	sender := &fakeSender{t: t, responses: []*anthropic.Message{
		assistantToolCalls(toolUse("call_1", "delete_event", `{"eventId":"gone"}`)),
		assistantText("That event does not exist."),
	}}

	loop := newLoop(t, sender, reg)
	got, err := loop.Run(context.Background(), "delete it")
	require.NoError(t, err, "tool failures must not abort the run")
	assert.Equal(t, "That event does not exist.", got)

	turn := decodeTurn(t, sender.params[1].Messages[2])
	require.Len(t, turn.Content, 1)
	assert.True(t, turn.Content[0].IsError)
	assert.Contains(t, turn.Content[0].Content[0].Text, "event not found")
}

func TestRunUnknownToolContinues(t *testing.T) {
	sender := &fakeSender{t: t, responses: []*anthropic.Message{
		assistantToolCalls(toolUse("call_1", "send_email", `{}`)),
		assistantText("I can't do that."),
	}}

	loop := newLoop(t, sender, tools.NewRegistry(nil))
	_, err := loop.Run(context.Background(), "email my boss")
	require.NoError(t, err)

	turn := decodeTurn(t, sender.params[1].Messages[2])
	require.Len(t, turn.Content, 1)
	assert.True(t, turn.Content[0].IsError)
}

func TestRunUndecodableToolInput(t *testing.T) {
	reg := tools.NewRegistry(nil)
	dispatched := false
	require.NoError(t, reg.Register(tools.Spec{Name: "list_events"}, func(ctx context.Context, input map[string]any) (string, error) {
		dispatched = true
		return "ok", nil
	}))

	sender := &fakeSender{t: t, responses: []*anthropic.Message{
		assistantToolCalls(toolUse("call_1", "list_events", `[1,2`)),
		assistantText("done"),
	}}

	loop := newLoop(t, sender, reg)
	_, err := loop.Run(context.Background(), "list")
	require.NoError(t, err)
	assert.False(t, dispatched, "handler must not run on undecodable input")

	turn := decodeTurn(t, sender.params[1].Messages[2])
	require.Len(t, turn.Content, 1, "even a bad call gets exactly one result")
	assert.True(t, turn.Content[0].IsError)
	assert.Equal(t, "call_1", turn.Content[0].ToolUseID)
}

func TestRunUnexpectedStopReason(t *testing.T) {
	msg := &anthropic.Message{
		Role:       "assistant",
		Content:    []anthropic.ContentBlockUnion{{Type: "text", Text: "truncat"}},
		StopReason: "max_tokens",
	}
	sender := &fakeSender{t: t, responses: []*anthropic.Message{msg}}

	loop := newLoop(t, sender, tools.NewRegistry(nil))
	_, err := loop.Run(context.Background(), "hi")

	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, "max_tokens", protoErr.StopReason)
}

func TestRunModelFailureKeepsHistory(t *testing.T) {
	sender := &fakeSender{t: t, err: errors.New("connection refused")}
	loop := newLoop(t, sender, tools.NewRegistry(nil))

	_, err := loop.Run(context.Background(), "hello")
	var reqErr *ModelRequestError
	require.ErrorAs(t, err, &reqErr)

	// The user turn stays in the conversation for a caller-driven retry.
	assert.Len(t, loop.messages, 1)
}

func TestRunRetainsConversationAcrossCalls(t *testing.T) {
	sender := &fakeSender{t: t, responses: []*anthropic.Message{
		assistantText("Monday."),
		assistantText("Nothing after that."),
	}}
	loop := newLoop(t, sender, tools.NewRegistry(nil))

	_, err := loop.Run(context.Background(), "when is my next meeting?")
	require.NoError(t, err)
	_, err = loop.Run(context.Background(), "and after?")
	require.NoError(t, err)

	require.Len(t, sender.params, 2)
	assert.Len(t, sender.params[1].Messages, 3, "second run re-sends the whole prefix")
}

func TestRequestCarriesToolSpecs(t *testing.T) {
	reg := tools.NewRegistry(nil)
	require.NoError(t, reg.Register(tools.Spec{
		Name:        "list_events",
		Description: "List upcoming calendar events",
		InputSchema: tools.ObjectSchema(map[string]tools.Property{
			"timeMin": {Type: "string"},
		}),
	}, func(ctx context.Context, input map[string]any) (string, error) { return "", nil }))

	sender := &fakeSender{t: t, responses: []*anthropic.Message{assistantText("ok")}}
	loop := NewLoop(sender, reg, Config{Model: "claude-sonnet-4-5", SystemPrompt: "be brief"}, nil)

	_, err := loop.Run(context.Background(), "hi")
	require.NoError(t, err)

	require.Len(t, sender.params[0].Tools, 1)
	require.NotNil(t, sender.params[0].Tools[0].OfTool)
	assert.Equal(t, "list_events", sender.params[0].Tools[0].OfTool.Name)
	require.Len(t, sender.params[0].System, 1)
	assert.Equal(t, "be brief", sender.params[0].System[0].Text)
}

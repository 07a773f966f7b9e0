package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func noopHandler(ctx context.Context, input map[string]any) (string, error) {
	return "ok", nil
}

func TestRegisterAndDispatch(t *testing.T) {
	r := NewRegistry(nil)
	spec := Spec{
		Name:        "echo",
		Description: "Echo the message back",
		InputSchema: ObjectSchema(map[string]Property{
			"message": {Type: "string", Description: "Text to echo"},
		}, "message"),
	}

	err := r.Register(spec, func(ctx context.Context, input map[string]any) (string, error) {
		msg, _ := input["message"].(string)
		return "echo: " + msg, nil
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	res := r.Dispatch(context.Background(), "echo", map[string]any{"message": "hi"})
	if res.IsError {
		t.Fatalf("Dispatch() unexpected error result: %s", res.Content)
	}
	if res.Content != "echo: hi" {
		t.Errorf("Dispatch() content = %q", res.Content)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry(nil)
	spec := Spec{Name: "echo"}

	if err := r.Register(spec, noopHandler); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	if err := r.Register(spec, noopHandler); err == nil {
		t.Error("duplicate Register() should fail")
	}
}

func TestRegisterInvalid(t *testing.T) {
	r := NewRegistry(nil)

	if err := r.Register(Spec{Name: ""}, noopHandler); err == nil {
		t.Error("Register() with empty name should fail")
	}
	if err := r.Register(Spec{Name: "x"}, nil); err == nil {
		t.Error("Register() with nil handler should fail")
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	r := NewRegistry(nil)

	res := r.Dispatch(context.Background(), "nope", nil)
	if !res.IsError {
		t.Fatal("Dispatch() of unknown tool must be an error result")
	}
	if !strings.Contains(res.Content, "nope") {
		t.Errorf("error result should name the tool, got %q", res.Content)
	}
}

func TestDispatchHandlerError(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register(Spec{Name: "boom"}, func(ctx context.Context, input map[string]any) (string, error) {
		return "", errors.New("downstream unavailable")
	}); err != nil {
		t.Fatal(err)
	}

	res := r.Dispatch(context.Background(), "boom", nil)
	if !res.IsError {
		t.Fatal("handler error must yield an error result")
	}
	if !strings.Contains(res.Content, "downstream unavailable") {
		t.Errorf("result should carry the failure text, got %q", res.Content)
	}
}

func TestDispatchHandlerPanic(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register(Spec{Name: "panic"}, func(ctx context.Context, input map[string]any) (string, error) {
		panic("nil map write")
	}); err != nil {
		t.Fatal(err)
	}

	res := r.Dispatch(context.Background(), "panic", nil)
	if !res.IsError {
		t.Fatal("handler panic must yield an error result, not propagate")
	}
	if !strings.Contains(res.Content, "nil map write") {
		t.Errorf("result should carry the panic value, got %q", res.Content)
	}
}

func TestSpecsPreserveRegistrationOrder(t *testing.T) {
	r := NewRegistry(nil)
	names := []string{"zulu", "alpha", "mike"}
	for _, name := range names {
		if err := r.Register(Spec{Name: name}, noopHandler); err != nil {
			t.Fatal(err)
		}
	}

	specs := r.Specs()
	if len(specs) != len(names) {
		t.Fatalf("Specs() returned %d entries, want %d", len(specs), len(names))
	}
	for i, name := range names {
		if specs[i].Name != name {
			t.Errorf("Specs()[%d] = %q, want %q", i, specs[i].Name, name)
		}
	}
}

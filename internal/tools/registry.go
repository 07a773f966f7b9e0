package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/calagent/internal/logging"
)

// Property describes one field of a tool input schema.
type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

// Schema is the JSON-schema-shaped description of a tool's accepted input.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// ObjectSchema builds an object schema over the given properties.
func ObjectSchema(properties map[string]Property, required ...string) Schema {
	return Schema{Type: "object", Properties: properties, Required: required}
}

// Spec declares a callable operation: its dispatch name, a description for
// the model, and the input schema.
type Spec struct {
	Name        string
	Description string
	InputSchema Schema
}

// Handler executes one tool call. Input has been structurally shaped against
// the schema by the model; handlers surface type mismatches as errors.
type Handler func(ctx context.Context, input map[string]any) (string, error)

// Result is the outcome of a dispatched call, always textual.
type Result struct {
	Content string
	IsError bool
}

// Registry keeps the mapping between tool names and handlers.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]entry
	logger  *slog.Logger
}

type entry struct {
	spec    Spec
	handler Handler
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries: make(map[string]entry),
		logger:  logger,
	}
}

// Register inserts a tool when its name is not in use.
func (r *Registry) Register(spec Spec, handler Handler) error {
	if spec.Name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if handler == nil {
		return fmt.Errorf("tool %s has no handler", spec.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[spec.Name]; exists {
		return fmt.Errorf("tool %s already registered", spec.Name)
	}

	r.entries[spec.Name] = entry{spec: spec, handler: handler}
	r.order = append(r.order, spec.Name)
	return nil
}

// Specs returns all registered tool specs in registration order.
func (r *Registry) Specs() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.entries[name].spec)
	}
	return specs
}

// Dispatch runs the named tool with the given input. Every failure, including
// an unknown name, a handler error, or a handler panic, becomes an
// error-flagged textual Result; Dispatch never raises past its boundary, so
// the conversation loop always gets a result for every call.
func (r *Registry) Dispatch(ctx context.Context, name string, input map[string]any) Result {
	r.mu.RLock()
	e, exists := r.entries[name]
	r.mu.RUnlock()

	logger := r.logger.With(logging.Tool(name))
	if !exists {
		logger.Warn("dispatch of unknown tool")
		return Result{Content: fmt.Sprintf("unknown tool %q", name), IsError: true}
	}

	content, err := r.execute(ctx, e.handler, input)
	if err != nil {
		logger.Warn("tool execution failed", logging.Err(err))
		return Result{Content: fmt.Sprintf("tool %s failed: %v", name, err), IsError: true}
	}

	logger.Debug("tool executed", logging.Status(logging.StatusSuccess))
	return Result{Content: content}
}

func (r *Registry) execute(ctx context.Context, h Handler, input map[string]any) (content string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panicked: %v", rec)
		}
	}()
	return h(ctx, input)
}

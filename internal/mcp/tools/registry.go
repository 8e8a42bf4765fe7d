package tools

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/LicTony/TonyMcpServer/internal/mcp/protocol"
)

// ErrToolNotFound is returned by Invoke for names that were never registered
var ErrToolNotFound = errors.New("tool not found")

// ToolHandler is a function that executes a tool and returns its text output
type ToolHandler func(ctx context.Context, arguments map[string]interface{}) (string, error)

// Registry keeps tools in registration order
type Registry struct {
	mu    sync.RWMutex
	order []string
	tools map[string]*LocalTool
}

// LocalTool represents a registered tool
type LocalTool struct {
	Tool    protocol.Tool
	Handler ToolHandler
}

// NewRegistry creates a new tool registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*LocalTool),
	}
}

// Register adds a tool. Names must be unique.
func (r *Registry) Register(tool protocol.Tool, handler ToolHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tool.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if handler == nil {
		return fmt.Errorf("tool %s has no handler", tool.Name)
	}
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %s already registered", tool.Name)
	}

	r.tools[tool.Name] = &LocalTool{
		Tool:    tool,
		Handler: handler,
	}
	r.order = append(r.order, tool.Name)
	return nil
}

// List returns all tool descriptors in registration order
func (r *Registry) List() []protocol.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]protocol.Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name].Tool)
	}
	return tools
}

// Invoke runs the named tool and wraps its text output as a tool result.
// Unknown names yield an error matching ErrToolNotFound that carries the
// method-not-found code.
func (r *Registry) Invoke(ctx context.Context, name string, arguments map[string]interface{}) (*protocol.ToolCallResult, error) {
	r.mu.RLock()
	localTool, exists := r.tools[name]
	r.mu.RUnlock()

	if !exists {
		return nil, &notFoundError{MCPError: protocol.NewToolNotFoundError(name)}
	}

	if arguments == nil {
		arguments = map[string]interface{}{}
	}
	text, err := localTool.Handler(ctx, arguments)
	if err != nil {
		return nil, fmt.Errorf("tool %s failed: %w", name, err)
	}
	return protocol.NewTextResult(text), nil
}

// notFoundError lets callers match ErrToolNotFound while the protocol layer
// still sees the MCPError inside.
type notFoundError struct {
	*protocol.MCPError
}

func (e *notFoundError) Is(target error) bool {
	return target == ErrToolNotFound
}

func (e *notFoundError) Unwrap() error {
	return e.MCPError
}

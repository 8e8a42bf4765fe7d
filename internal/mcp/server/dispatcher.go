package server

import (
	"context"
	"fmt"

	"github.com/LicTony/TonyMcpServer/internal/mcp/protocol"
	"github.com/LicTony/TonyMcpServer/internal/mcp/tools"
)

// Method enumerates the methods the dispatcher knows about
type Method int

const (
	MethodUnsupported Method = iota
	MethodInitialize
	MethodInitialized
	MethodListTools
	MethodCallTool
)

var methodsByName = map[string]Method{
	protocol.MethodInitialize:  MethodInitialize,
	protocol.MethodInitialized: MethodInitialized,
	protocol.MethodListTools:   MethodListTools,
	protocol.MethodCallTool:    MethodCallTool,
}

// ParseMethod maps a method name onto the enumeration. Unknown names map to
// MethodUnsupported.
func ParseMethod(name string) Method {
	if m, ok := methodsByName[name]; ok {
		return m
	}
	return MethodUnsupported
}

func (m Method) String() string {
	switch m {
	case MethodInitialize:
		return protocol.MethodInitialize
	case MethodInitialized:
		return protocol.MethodInitialized
	case MethodListTools:
		return protocol.MethodListTools
	case MethodCallTool:
		return protocol.MethodCallTool
	default:
		return "unsupported"
	}
}

// Logger receives debug log entries
type Logger interface {
	Logf(format string, args ...interface{})
}

type handlerFunc func(ctx context.Context, method string, msg *protocol.Message) (interface{}, error)

// Dispatcher routes messages to method handlers
type Dispatcher struct {
	config   *Config
	registry *tools.Registry
	logger   Logger
	handlers map[Method]handlerFunc
}

// NewDispatcher creates a dispatcher over the given tool registry
func NewDispatcher(config *Config, registry *tools.Registry, logger Logger) *Dispatcher {
	d := &Dispatcher{
		config:   config,
		registry: registry,
		logger:   logger,
	}
	d.handlers = map[Method]handlerFunc{
		MethodInitialize:  d.handleInitialize,
		MethodInitialized: d.handleInitialized,
		MethodListTools:   d.handleListTools,
		MethodCallTool:    d.handleCallTool,
		MethodUnsupported: d.handleUnsupported,
	}
	return d
}

// Dispatch runs the handler for method and returns its result payload.
// A nil result with a nil error means the method never produces a reply.
// Errors are either *protocol.MCPError or internal failures.
func (d *Dispatcher) Dispatch(ctx context.Context, method string, msg *protocol.Message) (interface{}, error) {
	m := ParseMethod(method)
	d.logger.Logf("Procesando método '%s' (%s)", method, m)
	return d.handlers[m](ctx, method, msg)
}

func (d *Dispatcher) handleInitialize(ctx context.Context, method string, msg *protocol.Message) (interface{}, error) {
	return &protocol.InitializeResult{
		ProtocolVersion: d.config.ProtocolVersion,
		ServerInfo: protocol.ServerInfo{
			Name:    d.config.Name,
			Version: d.config.Version,
		},
		Capabilities: protocol.Capabilities{
			Tools: &protocol.ToolsCapability{},
		},
	}, nil
}

func (d *Dispatcher) handleInitialized(ctx context.Context, method string, msg *protocol.Message) (interface{}, error) {
	d.logger.Logf("Recibida notificación 'initialized' - no responder")
	return nil, nil
}

func (d *Dispatcher) handleListTools(ctx context.Context, method string, msg *protocol.Message) (interface{}, error) {
	return &protocol.ListToolsResult{Tools: d.registry.List()}, nil
}

func (d *Dispatcher) handleCallTool(ctx context.Context, method string, msg *protocol.Message) (interface{}, error) {
	req, err := callToolRequest(msg)
	if err != nil {
		return nil, err
	}

	d.logger.Logf("Ejecutando herramienta: %s", req.Name)
	result, err := d.registry.Invoke(ctx, req.Name, req.Arguments)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (d *Dispatcher) handleUnsupported(ctx context.Context, method string, msg *protocol.Message) (interface{}, error) {
	return nil, protocol.NewMethodNotFoundError(method)
}

// callToolRequest extracts params.name and params.arguments. Missing
// arguments are an empty object.
func callToolRequest(msg *protocol.Message) (*protocol.CallToolRequest, error) {
	name, ok := msg.StringAt("params", "name")
	if !ok {
		return nil, fmt.Errorf("tools/call requires a string params.name")
	}

	req := &protocol.CallToolRequest{
		Name:      name,
		Arguments: map[string]interface{}{},
	}

	raw, present := msg.Lookup("params", "arguments")
	if !present || raw == nil {
		return req, nil
	}
	args, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("tools/call params.arguments must be an object")
	}
	req.Arguments = args
	return req, nil
}

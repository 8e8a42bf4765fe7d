package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/LicTony/TonyMcpServer/internal/mcp/protocol"

	"github.com/mark3labs/mcp-go/mcp"
)

// Names of the builtin tools. They are part of the external contract.
const (
	ToolSaludar        = "saludar"
	ToolFilePrefix     = "get-pre-fijo-archivo-yyyymmddhhmmss"
	ToolEnableLogging  = "activar_log"
	ToolDisableLogging = "desactivar_log"
)

const (
	filePrefixLayout    = "20060102_150405"
	greetingTemplate    = "Hola %s, saludo desde TonyMcpServer 👋"
	enabledLoggingText  = "Log activado"
	disabledLoggingText = "Log desactivado"
)

// LogSwitch turns the server's debug log on and off
type LogSwitch interface {
	Enable() error
	Disable() error
}

// Builtins provides the fixed tool set
type Builtins struct {
	logs LogSwitch
	now  func() time.Time
}

// NewBuiltins creates the builtin tools. now defaults to time.Now.
func NewBuiltins(logs LogSwitch, now func() time.Time) *Builtins {
	if now == nil {
		now = time.Now
	}
	return &Builtins{
		logs: logs,
		now:  now,
	}
}

// Register adds every builtin tool to the registry in listing order
func (b *Builtins) Register(r *Registry) error {
	entries := []struct {
		tool    mcp.Tool
		handler ToolHandler
	}{
		{
			tool: mcp.NewTool(ToolSaludar,
				mcp.WithDescription("Devuelve un saludo personalizado"),
				mcp.WithString("nombre",
					mcp.Required(),
					mcp.Description("Nombre de la persona a saludar"),
				),
			),
			handler: b.handleSaludar,
		},
		{
			tool: mcp.NewTool(ToolFilePrefix,
				mcp.WithDescription("Devuelve la fecha y hora local actual con formato yyyyMMdd_HHmmss, útil como prefijo de archivo"),
			),
			handler: b.handleFilePrefix,
		},
		{
			tool: mcp.NewTool(ToolEnableLogging,
				mcp.WithDescription("Activa el log de depuración del servidor"),
			),
			handler: b.handleEnableLogging,
		},
		{
			tool: mcp.NewTool(ToolDisableLogging,
				mcp.WithDescription("Desactiva el log de depuración del servidor"),
			),
			handler: b.handleDisableLogging,
		},
	}

	for _, entry := range entries {
		if err := r.Register(protocol.ToolFromMCP(entry.tool), entry.handler); err != nil {
			return fmt.Errorf("failed to register builtin tool: %w", err)
		}
	}
	return nil
}

func (b *Builtins) handleSaludar(ctx context.Context, args map[string]interface{}) (string, error) {
	raw, ok := args["nombre"]
	if !ok {
		return "", fmt.Errorf("missing required argument: nombre")
	}
	nombre, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("argument nombre must be a string")
	}
	return fmt.Sprintf(greetingTemplate, nombre), nil
}

func (b *Builtins) handleFilePrefix(ctx context.Context, args map[string]interface{}) (string, error) {
	return b.now().Format(filePrefixLayout), nil
}

func (b *Builtins) handleEnableLogging(ctx context.Context, args map[string]interface{}) (string, error) {
	if err := b.logs.Enable(); err != nil {
		return "", err
	}
	return enabledLoggingText, nil
}

func (b *Builtins) handleDisableLogging(ctx context.Context, args map[string]interface{}) (string, error) {
	if err := b.logs.Disable(); err != nil {
		return "", err
	}
	return disabledLoggingText, nil
}

package protocol

import (
	"errors"
	"fmt"
)

// MCPError is an error that carries the JSON-RPC code it is reported with
type MCPError struct {
	Code    int
	Message string
}

// Error implements the error interface
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// ToJSONRPCError converts MCPError to JSONRPCError
func (e *MCPError) ToJSONRPCError() *JSONRPCError {
	return &JSONRPCError{
		Code:    e.Code,
		Message: e.Message,
	}
}

// NewParseError reports a line that is not valid JSON
func NewParseError(err error) *MCPError {
	return &MCPError{
		Code:    ParseError,
		Message: fmt.Sprintf("Parse error: %v", err),
	}
}

// NewInvalidRequestError reports valid JSON that is not a request object
func NewInvalidRequestError(message string) *MCPError {
	return &MCPError{
		Code:    InvalidRequest,
		Message: message,
	}
}

// NewMethodNotFoundError creates a new unsupported method error
func NewMethodNotFoundError(method string) *MCPError {
	return &MCPError{
		Code:    MethodNotFound,
		Message: fmt.Sprintf("Método no soportado: %s", method),
	}
}

// NewToolNotFoundError creates a new tool not found error
func NewToolNotFoundError(toolName string) *MCPError {
	return &MCPError{
		Code:    MethodNotFound,
		Message: fmt.Sprintf("Tool no soportada: %s", toolName),
	}
}

// NewInternalError wraps any failure raised while handling a request
func NewInternalError(err error) *MCPError {
	return &MCPError{
		Code:    InternalError,
		Message: err.Error(),
	}
}

// AsMCPError returns the MCPError carried by err, or an internal error
// built from its message.
func AsMCPError(err error) *MCPError {
	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}
	return NewInternalError(err)
}

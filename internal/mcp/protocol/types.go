package protocol

import "github.com/mark3labs/mcp-go/mcp"

// JSON-RPC 2.0 Protocol Types

// JSONRPCVersion is the JSON-RPC version
const JSONRPCVersion = mcp.JSONRPC_VERSION

// MCPProtocolVersion is the protocol version advertised during initialize
const MCPProtocolVersion = "2024-11-05"

// JSONRPCResponse represents a JSON-RPC 2.0 response.
// Exactly one of Result and Error is set.
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      ID            `json:"id"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC 2.0 error
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// JSON-RPC 2.0 Standard Error Codes
const (
	ParseError     = mcp.PARSE_ERROR
	InvalidRequest = mcp.INVALID_REQUEST
	MethodNotFound = mcp.METHOD_NOT_FOUND
	InternalError  = mcp.INTERNAL_ERROR
)

// ServerInfo holds information about the server
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Capabilities defines what features are supported
type Capabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// ToolsCapability indicates tools support
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// InitializeResult represents an initialize response
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
	Capabilities    Capabilities `json:"capabilities"`
}

// InputSchema is the JSON-schema shaped description of a tool's arguments.
// Required is always serialized, as an empty array when nothing is required.
type InputSchema struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Required   []string               `json:"required"`
}

// Tool describes a callable tool as listed by tools/list
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// ToolFromMCP converts a tool declared with the mcp-go builder into the
// descriptor shape this server lists.
func ToolFromMCP(t mcp.Tool) Tool {
	props := make(map[string]interface{}, len(t.InputSchema.Properties))
	for name, schema := range t.InputSchema.Properties {
		props[name] = schema
	}
	required := make([]string, 0, len(t.InputSchema.Required))
	required = append(required, t.InputSchema.Required...)

	schemaType := t.InputSchema.Type
	if schemaType == "" {
		schemaType = "object"
	}

	return Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: InputSchema{
			Type:       schemaType,
			Properties: props,
			Required:   required,
		},
	}
}

// ListToolsResult represents a tools/list response
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// Content is a single text item of a tool result
type Content = mcp.TextContent

// ToolCallResult represents the result of calling a tool
type ToolCallResult struct {
	Content []Content `json:"content"`
}

// NewTextResult wraps text as a single-item tool result
func NewTextResult(text string) *ToolCallResult {
	return &ToolCallResult{
		Content: []Content{mcp.NewTextContent(text)},
	}
}

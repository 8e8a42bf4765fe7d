package protocol

// Method names understood by the server
const (
	MethodInitialize  = "initialize"
	MethodInitialized = "notifications/initialized"
	MethodListTools   = "tools/list"
	MethodCallTool    = "tools/call"
)

// CallToolRequest holds the params of a tools/call request
type CallToolRequest struct {
	Name      string
	Arguments map[string]interface{}
}

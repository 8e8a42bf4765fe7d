package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LicTony/TonyMcpServer/internal/debuglog"
	"github.com/LicTony/TonyMcpServer/internal/mcp/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	session   *Session
	logs      *debuglog.State
	registry  *tools.Registry
	logPath   string
	statePath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		logPath:   filepath.Join(dir, "mcp_debug.log"),
		statePath: filepath.Join(dir, "mcp_log_state.txt"),
	}

	logs, err := debuglog.Load(debuglog.Options{LogPath: env.logPath, StatePath: env.statePath})
	require.NoError(t, err)
	env.logs = logs

	env.registry = tools.NewRegistry()
	require.NoError(t, tools.NewBuiltins(logs, nil).Register(env.registry))

	env.session = NewSession(DefaultConfig(), env.registry, logs)
	return env
}

// serve runs the session over input and returns the output lines
func (e *testEnv) serve(t *testing.T, input string) []string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, e.session.Serve(context.Background(), strings.NewReader(input), &out))
	if out.Len() == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
}

func decodeLine(t *testing.T, line string) map[string]interface{} {
	t.Helper()
	var v map[string]interface{}
	dec := json.NewDecoder(strings.NewReader(line))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&v))
	return v
}

func TestSession_Initialize(t *testing.T) {
	env := newTestEnv(t)

	lines := env.serve(t, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"1999-01-01","clientInfo":{"name":"x"}}}`+"\n")
	require.Len(t, lines, 1)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":{"protocolVersion":"2024-11-05","serverInfo":{"name":"TonyMcpServer","version":"1.0"},"capabilities":{"tools":{}}}}`, lines[0])
}

func TestSession_IDEcho(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		wantID string
	}{
		{"integer", `{"id":7,"method":"tools/list"}`, `7`},
		{"string that looks numeric", `{"id":"7","method":"tools/list"}`, `"7"`},
		{"string", `{"id":"req-abc","method":"tools/list"}`, `"req-abc"`},
		{"zero", `{"id":0,"method":"tools/list"}`, `0`},
		{"negative", `{"id":-3,"method":"tools/list"}`, `-3`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			lines := env.serve(t, tt.line+"\n")
			require.Len(t, lines, 1)

			var envelope struct {
				ID json.RawMessage `json:"id"`
			}
			require.NoError(t, json.Unmarshal([]byte(lines[0]), &envelope))
			assert.Equal(t, tt.wantID, string(envelope.ID))
		})
	}
}

func TestSession_NotificationsNeverAnswered(t *testing.T) {
	inputs := []string{
		`{"method":"notifications/initialized"}`,
		`{"id":1,"method":"notifications/initialized"}`,
		`{"method":"bogus"}`,
		`{"method":"tools/call","params":{"name":"nope"}}`,
		`{"method":"tools/call","params":{"name":"saludar","arguments":{}}}`,
		`{"method":"tools/call"}`,
		`{"method":"tools/list"}`,
		`{"method":"initialize"}`,
		`{"id":null,"method":"bogus"}`,
		`{"id":"","method":"bogus"}`,
		`{"id":{"nested":true},"method":"bogus"}`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			env := newTestEnv(t)
			assert.Empty(t, env.serve(t, input+"\n"))
		})
	}
}

func TestSession_UnknownMethod(t *testing.T) {
	env := newTestEnv(t)

	lines := env.serve(t, `{"id":5,"method":"bogus"}`+"\n")
	require.Len(t, lines, 1)

	resp := decodeLine(t, lines[0])
	assert.Equal(t, "2.0", resp["jsonrpc"])
	assert.Equal(t, json.Number("5"), resp["id"])
	assert.NotContains(t, resp, "result")
	rpcErr := resp["error"].(map[string]interface{})
	assert.Equal(t, json.Number("-32601"), rpcErr["code"])
	assert.Contains(t, rpcErr["message"], "bogus")
}

func TestSession_ToolsList(t *testing.T) {
	env := newTestEnv(t)

	lines := env.serve(t, `{"id":2,"method":"tools/list"}`+"\n")
	require.Len(t, lines, 1)

	var resp struct {
		Result struct {
			Tools []struct {
				Name        string `json:"name"`
				Description string `json:"description"`
				InputSchema struct {
					Type       string                 `json:"type"`
					Properties map[string]interface{} `json:"properties"`
					Required   []string               `json:"required"`
				} `json:"inputSchema"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &resp))

	got := resp.Result.Tools
	require.Len(t, got, 4)
	assert.Equal(t, "saludar", got[0].Name)
	assert.Equal(t, []string{"nombre"}, got[0].InputSchema.Required)
	assert.Contains(t, got[0].InputSchema.Properties, "nombre")
	assert.Equal(t, "get-pre-fijo-archivo-yyyymmddhhmmss", got[1].Name)
	assert.Equal(t, "activar_log", got[2].Name)
	assert.Equal(t, "desactivar_log", got[3].Name)
	for _, tool := range got[1:] {
		assert.Equal(t, "object", tool.InputSchema.Type)
		assert.NotNil(t, tool.InputSchema.Required)
		assert.Empty(t, tool.InputSchema.Required)
	}
}

func TestSession_ToolsCall(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantText string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "saludar",
			line:     `{"id":3,"method":"tools/call","params":{"name":"saludar","arguments":{"nombre":"Ana"}}}`,
			wantText: "Hola Ana, saludo desde TonyMcpServer 👋",
		},
		{
			name:     "unknown tool",
			line:     `{"id":3,"method":"tools/call","params":{"name":"volar"}}`,
			wantCode: -32601,
			wantMsg:  "volar",
		},
		{
			name:     "missing nombre is an internal error",
			line:     `{"id":3,"method":"tools/call","params":{"name":"saludar","arguments":{}}}`,
			wantCode: -32603,
			wantMsg:  "nombre",
		},
		{
			name:     "missing arguments is an internal error for saludar",
			line:     `{"id":3,"method":"tools/call","params":{"name":"saludar"}}`,
			wantCode: -32603,
			wantMsg:  "nombre",
		},
		{
			name:     "missing params.name",
			line:     `{"id":3,"method":"tools/call","params":{}}`,
			wantCode: -32603,
			wantMsg:  "params.name",
		},
		{
			name:     "arguments not an object",
			line:     `{"id":3,"method":"tools/call","params":{"name":"saludar","arguments":[1]}}`,
			wantCode: -32603,
			wantMsg:  "arguments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			lines := env.serve(t, tt.line+"\n")
			require.Len(t, lines, 1)
			resp := decodeLine(t, lines[0])
			assert.Equal(t, json.Number("3"), resp["id"])

			if tt.wantCode != 0 {
				rpcErr := resp["error"].(map[string]interface{})
				code, err := rpcErr["code"].(json.Number).Int64()
				require.NoError(t, err)
				assert.Equal(t, int64(tt.wantCode), code)
				assert.Contains(t, rpcErr["message"], tt.wantMsg)
				return
			}

			result := resp["result"].(map[string]interface{})
			content := result["content"].([]interface{})
			require.Len(t, content, 1)
			item := content[0].(map[string]interface{})
			assert.Equal(t, "text", item["type"])
			assert.Equal(t, tt.wantText, item["text"])
		})
	}
}

func TestSession_FilePrefixTool(t *testing.T) {
	env := newTestEnv(t)

	lines := env.serve(t, `{"id":4,"method":"tools/call","params":{"name":"get-pre-fijo-archivo-yyyymmddhhmmss"}}`+"\n")
	require.Len(t, lines, 1)
	resp := decodeLine(t, lines[0])
	text := resp["result"].(map[string]interface{})["content"].([]interface{})[0].(map[string]interface{})["text"].(string)
	assert.Regexp(t, `^\d{8}_\d{6}$`, text)
}

func TestSession_MalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	lines := env.serve(t, strings.Join([]string{
		`{"id":1,"method":`,
		`not json at all`,
		`[1,2,3]`,
		`"just a string"`,
		`{"id":2,"method":"tools/list"}`,
	}, "\n")+"\n")

	// Only the final, well-formed request is answered.
	require.Len(t, lines, 1)
	assert.Equal(t, json.Number("2"), decodeLine(t, lines[0])["id"])
}

func TestSession_MissingMethodIsDropped(t *testing.T) {
	env := newTestEnv(t)

	lines := env.serve(t, `{"id":1}`+"\n"+`{"id":2,"method":42}`+"\n")
	assert.Empty(t, lines)
}

func TestSession_BlankLinesSkipped(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.logs.Enable())

	input := "\n   \n\t\n" + `{"id":1,"method":"tools/list"}` + "\n\n  \n" + `{"id":2,"method":"tools/list"}` + "\n\n"
	lines := env.serve(t, input)
	require.Len(t, lines, 2)
	assert.Equal(t, json.Number("1"), decodeLine(t, lines[0])["id"])
	assert.Equal(t, json.Number("2"), decodeLine(t, lines[1])["id"])

	data, err := os.ReadFile(env.logPath)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "REQUEST:"))
}

func TestSession_LastLineWithoutNewline(t *testing.T) {
	env := newTestEnv(t)

	lines := env.serve(t, `{"id":1,"method":"tools/list"}`+"\r\n"+`{"id":2,"method":"tools/list"}`)
	require.Len(t, lines, 2)
}

func TestSession_EmptyInput(t *testing.T) {
	env := newTestEnv(t)
	assert.Empty(t, env.serve(t, ""))
}

func TestSession_LoggingToggle(t *testing.T) {
	env := newTestEnv(t)

	lines := env.serve(t, strings.Join([]string{
		`{"id":1,"method":"tools/call","params":{"name":"activar_log"}}`,
		`{"id":2,"method":"tools/call","params":{"name":"activar_log"}}`,
		`{"id":3,"method":"tools/list"}`,
		`{"id":4,"method":"tools/call","params":{"name":"desactivar_log"}}`,
		`{"id":5,"method":"tools/list"}`,
	}, "\n")+"\n")
	require.Len(t, lines, 5)
	for _, line := range lines {
		assert.NotContains(t, decodeLine(t, line), "error")
	}

	state, err := os.ReadFile(env.statePath)
	require.NoError(t, err)
	assert.Equal(t, "disabled", string(state))

	logData, err := os.ReadFile(env.logPath)
	require.NoError(t, err)
	logText := string(logData)
	assert.Contains(t, logText, `REQUEST: {"id":3,"method":"tools/list"}`)
	assert.NotContains(t, logText, `"id":5`)
	assert.Regexp(t, `(?m)^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}\] `, logText)
	assert.False(t, env.logs.Enabled())
}

func TestSession_EnableTwiceLeavesEnabled(t *testing.T) {
	env := newTestEnv(t)

	lines := env.serve(t, strings.Join([]string{
		`{"id":1,"method":"tools/call","params":{"name":"activar_log"}}`,
		`{"id":2,"method":"tools/call","params":{"name":"activar_log"}}`,
	}, "\n")+"\n")
	require.Len(t, lines, 2)

	state, err := os.ReadFile(env.statePath)
	require.NoError(t, err)
	assert.Equal(t, "enabled", string(state))

	logData, err := os.ReadFile(env.logPath)
	require.NoError(t, err)
	assert.Contains(t, string(logData), "=== SERVIDOR MCP TERMINADO (sesión "+env.session.ID()+") ===")
}

func TestSession_PanicIsRecovered(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.registry.Register(testTool("panico"), func(ctx context.Context, args map[string]interface{}) (string, error) {
		panic("algo salió mal")
	}))

	lines := env.serve(t, strings.Join([]string{
		`{"id":1,"method":"tools/call","params":{"name":"panico"}}`,
		`{"method":"tools/call","params":{"name":"panico"}}`,
		`{"id":2,"method":"tools/list"}`,
	}, "\n")+"\n")
	require.Len(t, lines, 2)

	first := decodeLine(t, lines[0])
	assert.Equal(t, json.Number("1"), first["id"])
	rpcErr := first["error"].(map[string]interface{})
	assert.Equal(t, json.Number("-32603"), rpcErr["code"])
	assert.Contains(t, rpcErr["message"], "algo salió mal")

	assert.Equal(t, json.Number("2"), decodeLine(t, lines[1])["id"])
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestSession_WriteFailureEndsLoop(t *testing.T) {
	env := newTestEnv(t)

	err := env.session.Serve(context.Background(), strings.NewReader(`{"id":1,"method":"tools/list"}`+"\n"), failingWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("stdin closed unexpectedly")
}

func TestSession_ReadFailureEndsLoop(t *testing.T) {
	env := newTestEnv(t)

	err := env.session.Serve(context.Background(), failingReader{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdin closed unexpectedly")
}

func TestSession_CancelledContext(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, env.session.Serve(ctx, strings.NewReader(`{"id":1,"method":"tools/list"}`+"\n"), &out))
	assert.Empty(t, out.String())
}

type countingWriter struct {
	writes  int
	flushes int
	buf     bytes.Buffer
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.buf.Write(p)
}

func (w *countingWriter) Flush() error {
	w.flushes++
	return nil
}

func TestSession_OneWriteAndFlushPerResponse(t *testing.T) {
	env := newTestEnv(t)
	w := &countingWriter{}

	input := `{"id":1,"method":"tools/list"}` + "\n" + `{"method":"notifications/initialized"}` + "\n" + `{"id":2,"method":"initialize"}` + "\n"
	require.NoError(t, env.session.Serve(context.Background(), strings.NewReader(input), w))

	assert.Equal(t, 2, w.writes)
	assert.Equal(t, 2, w.flushes)
	assert.Equal(t, 2, strings.Count(w.buf.String(), "\n"))
}

func TestSession_ShutdownRunsOnce(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.logs.Enable())

	require.NoError(t, env.session.Shutdown("señal de terminación"))
	require.NoError(t, env.session.Shutdown("otra vez"))
	env.serve(t, "")

	data, err := os.ReadFile(env.logPath)
	require.NoError(t, err)
	log := string(data)
	assert.Contains(t, log, "Cerrando sesión: señal de terminación")
	assert.NotContains(t, log, "otra vez")
	assert.Equal(t, 1, strings.Count(log, "=== SERVIDOR MCP TERMINADO"))
}

package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/LicTony/TonyMcpServer/internal/mcp/protocol"
	"github.com/LicTony/TonyMcpServer/internal/mcp/tools"

	"github.com/google/uuid"
)

// DebugLog is the session's switchable log
type DebugLog interface {
	Logger
	Close() error
}

// Session serves one newline-delimited JSON-RPC stream. Requests are handled
// strictly one at a time.
type Session struct {
	id         string
	dispatcher *Dispatcher
	logs       DebugLog

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewSession creates a session over the given registry and log
func NewSession(config *Config, registry *tools.Registry, logs DebugLog) *Session {
	return &Session{
		id:         uuid.NewString(),
		dispatcher: NewDispatcher(config, registry, logs),
		logs:       logs,
	}
}

// ID returns the session id written to the log banners
func (s *Session) ID() string {
	return s.id
}

// Serve reads requests from in until end of stream and writes one response
// line per answered request to out. Only read and write failures on the
// streams themselves are returned; request failures are answered or logged.
// The debug log is closed when Serve returns.
func (s *Session) Serve(ctx context.Context, in io.Reader, out io.Writer) (err error) {
	s.logs.Logf("=== SERVIDOR MCP INICIADO (sesión %s) ===", s.id)
	defer func() {
		reason := "fin de stream"
		if err != nil {
			s.logs.Logf("ERROR FATAL: %v", err)
			reason = "error fatal"
		}
		if closeErr := s.Shutdown(reason); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	reader := bufio.NewReader(in)
	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.logs.Logf("Sesión cancelada: %v", ctxErr)
			return nil
		}

		line, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return fmt.Errorf("failed to read request: %w", readErr)
		}

		if strings.TrimSpace(line) != "" {
			if err := s.processLine(ctx, line, out); err != nil {
				return err
			}
		}

		if readErr == io.EOF {
			s.logs.Logf("ReadString devolvió EOF - fin de stream")
			return nil
		}
	}
}

// Shutdown writes the final log entry and closes the debug log. Only the
// first call has an effect; it may run concurrently with Serve.
func (s *Session) Shutdown(reason string) error {
	s.shutdownOnce.Do(func() {
		s.logs.Logf("Cerrando sesión: %s", reason)
		s.logs.Logf("=== SERVIDOR MCP TERMINADO (sesión %s) ===", s.id)
		s.shutdownErr = s.logs.Close()
	})
	return s.shutdownErr
}

func (s *Session) processLine(ctx context.Context, line string, out io.Writer) error {
	line = strings.TrimRight(line, "\r\n")
	s.logs.Logf("REQUEST: %s", line)

	resp := s.handleLine(ctx, line)
	if resp == nil {
		return nil
	}
	return s.writeResponse(out, resp)
}

// handleLine turns one request line into a response line, or nil when no
// reply may be sent. Panics raised by handlers are recovered here.
func (s *Session) handleLine(ctx context.Context, line string) (resp []byte) {
	var id protocol.ID
	defer func() {
		if r := recover(); r != nil {
			s.logs.Logf("EXCEPCIÓN procesando request: %v", r)
			resp = s.errorResponse(id, protocol.NewInternalError(fmt.Errorf("%v", r)))
		}
	}()

	msg, err := protocol.Parse(line)
	if err != nil {
		// Without a parsed object there is no id to answer to.
		s.logs.Logf("ERROR JSON: %v", err)
		return nil
	}

	id = msg.ID()
	s.logs.Logf("ID extraído: %s", id)

	method, ok := msg.Method()
	if !ok {
		s.logs.Logf("ERROR: request sin propiedad 'method' de tipo string, descartada")
		return nil
	}

	result, err := s.dispatcher.Dispatch(ctx, method, msg)
	if err != nil {
		return s.errorResponse(id, protocol.AsMCPError(err))
	}
	if result == nil {
		return nil
	}
	if id.IsNotification() {
		s.logs.Logf("Notificación '%s' procesada sin respuesta", method)
		return nil
	}

	data, err := protocol.EncodeSuccess(id, result)
	if err != nil {
		return s.errorResponse(id, protocol.NewInternalError(err))
	}
	s.logs.Logf("RESPONSE %s: %s", method, strings.TrimSpace(string(data)))
	return data
}

func (s *Session) errorResponse(id protocol.ID, mcpErr *protocol.MCPError) []byte {
	if id.IsNotification() {
		s.logs.Logf("Error en notificación (sin ID): %d - %s", mcpErr.Code, mcpErr.Message)
		return nil
	}

	data, err := protocol.EncodeError(id, mcpErr.ToJSONRPCError())
	if err != nil {
		s.logs.Logf("ERROR codificando respuesta de error: %v", err)
		return nil
	}
	s.logs.Logf("RESPONSE error %d: %s", mcpErr.Code, strings.TrimSpace(string(data)))
	return data
}

type flusher interface {
	Flush() error
}

// writeResponse writes one complete line and flushes buffered writers
func (s *Session) writeResponse(out io.Writer, resp []byte) error {
	if _, err := out.Write(resp); err != nil {
		s.logs.Logf("ERROR enviando respuesta: %v", err)
		return fmt.Errorf("failed to write response: %w", err)
	}
	if f, ok := out.(flusher); ok {
		if err := f.Flush(); err != nil {
			s.logs.Logf("ERROR enviando respuesta: %v", err)
			return fmt.Errorf("failed to flush response: %w", err)
		}
	}
	return nil
}

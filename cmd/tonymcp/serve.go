package main

import (
	"bufio"
	"log"
	"os"

	"github.com/LicTony/TonyMcpServer/internal/debuglog"
	mcpserver "github.com/LicTony/TonyMcpServer/internal/mcp/server"
	"github.com/LicTony/TonyMcpServer/internal/mcp/tools"

	"github.com/spf13/cobra"
)

// signalExitCode is the conventional status for a process ended by SIGINT
const signalExitCode = 130

// exitProcess ends the process after a shutdown signal
var exitProcess = os.Exit

func newServeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP requests on stdin/stdout (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

// runServe wires the debug log, the builtin tools and the session, then
// serves until end of input or until the command context is cancelled.
func runServe(cmd *cobra.Command, opts *globalOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	// Diagnostics go to stderr; stdout carries protocol traffic only.
	logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)

	logs, err := debuglog.Load(debuglog.Options{
		LogPath:   cfg.LogFile,
		StatePath: cfg.StateFile,
	})
	if err != nil {
		logger.Printf("Warning: debug log unavailable, continuing with logging disabled: %v", err)
	}

	registry := tools.NewRegistry()
	if err := tools.NewBuiltins(logs, nil).Register(registry); err != nil {
		logs.Close()
		return err
	}

	session := mcpserver.NewSession(mcpserver.NewConfigFromUnified(cfg), registry, logs)

	ctx := cmd.Context()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			// A blocked stdin read cannot be interrupted: finish the log and
			// leave before another request can be answered.
			logger.Println("Received shutdown signal, shutting down...")
			if err := session.Shutdown("señal de terminación"); err != nil {
				logger.Printf("Failed to close debug log: %v", err)
			}
			exitProcess(signalExitCode)
		case <-done:
		}
	}()

	out := bufio.NewWriter(cmd.OutOrStdout())
	if err := session.Serve(ctx, cmd.InOrStdin(), out); err != nil {
		logger.Printf("MCP server error: %v", err)
		return err
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/LicTony/TonyMcpServer/internal/config"

	"github.com/spf13/cobra"
)

const rootLong = `tonymcp - minimal MCP server over stdin/stdout

Reads one JSON-RPC request per line on stdin and writes one response per line
on stdout. Exposed tools: saludar, get-pre-fijo-archivo-yyyymmddhhmmss,
activar_log, desactivar_log.

The debug log is off by default. It is switched with the activar_log and
desactivar_log tools or with "tonymcp log enable|disable", and the choice is
remembered across restarts.`

// globalOptions are the flags shared by every subcommand
type globalOptions struct {
	configPath string
	logFile    string
	stateFile  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "tonymcp",
		Short:         "Minimal MCP server over stdin/stdout",
		Long:          rootLong,
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to configuration file (.yaml, .yml or .json)")
	flags.StringVar(&opts.logFile, "log-file", "", "Debug log file (overrides config)")
	flags.StringVar(&opts.stateFile, "state-file", "", "File holding the persisted logging flag (overrides config)")

	cmd.AddCommand(
		newServeCmd(opts),
		newLogCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}

// loadConfig resolves the configuration file and command line overrides
func (o *globalOptions) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if o.configPath != "" {
		cfg, err = config.LoadConfig(o.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	// Override config with command line flags
	if o.logFile != "" {
		cfg.LogFile = o.logFile
	}
	if o.stateFile != "" {
		cfg.StateFile = o.stateFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

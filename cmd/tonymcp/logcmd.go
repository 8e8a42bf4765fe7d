package main

import (
	"fmt"

	"github.com/LicTony/TonyMcpServer/internal/debuglog"

	"github.com/spf13/cobra"
)

func newLogCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Inspect or switch the persisted debug log flag",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show whether the debug log is enabled",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := opts.loadConfig()
				if err != nil {
					return err
				}
				enabled, err := debuglog.NewFlagStore(cfg.StateFile).Load()
				palette := newStatusPalette(cmd.OutOrStdout())
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Debug log: %s (%v)\n", palette.err.Sprint("unreadable"), err)
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Debug log: %s\n", palette.state(enabled))
				fmt.Fprintf(cmd.OutOrStdout(), "State file: %s\n", cfg.StateFile)
				fmt.Fprintf(cmd.OutOrStdout(), "Log file: %s\n", cfg.LogFile)
				return nil
			},
		},
		newLogSwitchCmd(opts, "enable", "Enable the debug log", true),
		newLogSwitchCmd(opts, "disable", "Disable the debug log", false),
	)
	return cmd
}

// newLogSwitchCmd persists the flag the same way the activar_log and
// desactivar_log tools do.
func newLogSwitchCmd(opts *globalOptions, use, short string, enable bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			// A corrupt flag file is overwritten below, so the load error is not fatal.
			logs, _ := debuglog.Load(debuglog.Options{
				LogPath:   cfg.LogFile,
				StatePath: cfg.StateFile,
			})
			defer logs.Close()

			if enable {
				err = logs.Enable()
			} else {
				err = logs.Disable()
			}
			if err != nil {
				return fmt.Errorf("failed to %s debug log: %w", use, err)
			}

			palette := newStatusPalette(cmd.OutOrStdout())
			fmt.Fprintf(cmd.OutOrStdout(), "Debug log: %s\n", palette.state(logs.Enabled()))
			return nil
		},
	}
}

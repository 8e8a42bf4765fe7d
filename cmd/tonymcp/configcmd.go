package main

import (
	"fmt"
	"os"

	"github.com/LicTony/TonyMcpServer/internal/config"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "tonymcp.yaml"

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the effective configuration to a file",
		Long: `Write the effective configuration (defaults plus --log-file and
--state-file overrides) to path. The format follows the file extension:
.yaml, .yml or .json. Defaults to ` + defaultConfigPath + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
				}
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := config.SaveConfig(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

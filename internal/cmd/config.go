package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tooky/check-all-commits-have-jira-issue/internal/config"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the jiracheck configuration file",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Create a default config file",
		Long: `Create a config file with every available option at its default value.
The file is written to ` + config.DefaultFileName + ` unless a path is given,
and an existing file is never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConfigInit,
	})

	return configCmd
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultFileName
	if len(args) == 1 {
		path = args[0]
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", path)
	return nil
}

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Faultbox/valvesite/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Work with the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the effective configuration as YAML",
	Long: `Writes the configuration in effect, defaults merged with any config file
and flags. Without a path it goes to the user config directory, where the
next run picks it up.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(config.ConfigDir(), "config.yaml")
		var err error
		if len(args) == 1 {
			path = args[0]
			err = cfg.SaveTo(path)
		} else {
			err = cfg.Save()
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

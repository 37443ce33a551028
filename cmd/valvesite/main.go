// valvesite serves the valve catalog website and carries the catalog and
// asset tooling that goes with it.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/valvesite/internal/config"
	"github.com/Faultbox/valvesite/internal/logger"
)

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "valvesite",
	Short: "Industrial valve catalog site and tooling",
	Long: `valvesite serves the product catalog website with its interactive
3D viewer, and provides commands to inspect the catalog and its assets.

Configuration is read from ./valvesite.yaml or the user config directory,
then overridden by flags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}

		opts := logger.Options{
			Level:   cfg.Logging.Level,
			Console: true,
			JSON:    cfg.Logging.JSON,
		}
		if cfg.Logging.LogFile != "" {
			opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
		}
		if err := logger.InitWithOptions(opts); err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		logger.Sugar.Debugf("config: %+v", cfg)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	// The config package registers its flags on the standard flag set.
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(sitemapCmd)
	rootCmd.AddCommand(checkAssetsCmd)
	rootCmd.AddCommand(inspectModelCmd)
	rootCmd.AddCommand(sampleModelCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

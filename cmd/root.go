package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fitorfat/internal/config"
)

var (
	cfg *config.Config

	debugFlag      bool
	dataFlag       string
	boundariesFlag string
)

var rootCmd = &cobra.Command{
	Use:   "fitorfat",
	Short: "Fit or Fat? (Europe's Edition) BMI dashboard",
	Long:  "Loads the Eurostat EHIS body mass index extract and serves an interactive map of Europe with per-country breakdown charts.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyFlags(c)
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// applyFlags lets the global flags override file and environment settings.
func applyFlags(c *config.Config) {
	if dataFlag != "" {
		c.Data.SourcePath = dataFlag
	}
	if boundariesFlag != "" {
		c.Data.BoundariesPath = boundariesFlag
	}
	if debugFlag {
		c.Server.Debug = true
	}
	if c.Server.Debug {
		c.Log.Level = "debug"
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataFlag, "data", "", "survey extract path (default from config)")
	rootCmd.PersistentFlags().StringVar(&boundariesFlag, "boundaries", "", "GeoJSON or shapefile with country boundaries (default from config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

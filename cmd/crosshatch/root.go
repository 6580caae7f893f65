package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"crosshatch/internal/config"
	"crosshatch/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// cfg is the effective configuration, populated before any subcommand runs.
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "crosshatch",
	Short: "Cross-case correlation for digital forensic evidence",
	Long: "Crosshatch derives normalized correlation values (emails, phones, domains,\n" +
		"device ids, file hashes) from case artifacts and tracks them in a central\n" +
		"repository, so a value seen in one case can be found in every other.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: setupRun,
}

func setupRun(_ *cobra.Command, _ []string) error {
	if rootFlags.configPath != "" {
		c, err := config.LoadFromPath(rootFlags.configPath)
		if err != nil {
			return err
		}
		cfg = c
	}
	if rootFlags.logLevel != "" {
		cfg.LogLevel = rootFlags.logLevel
	}
	if rootFlags.logFormat != "" {
		cfg.LogFormat = rootFlags.logFormat
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	// MCP stdio transport owns stdout, so logs always go to stderr.
	logging.Init(level, cfg.LogFormat, os.Stderr)
	return nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "Config file (YAML or JSON)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(deriveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rollcall/internal/config"
	"rollcall/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rollcall",
	Short: "rollcall - reconcile check-in text against a roster",
	Long: `rollcall compares free-form check-in text (chat dumps, pasted lists)
against a two-group roster and reports who is present and who is missing.

Matching runs in one of two modes:
  turbo  substring matching on raw and normalized text (default, offline)
  ai     name extraction by a local Ollama model, falling back to a cloud API`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := logging.Initialize(logging.Options{
			Level:      cfg.Logging.Level,
			Format:     cfg.Logging.Format,
			File:       cfg.Logging.File,
			Categories: cfg.Logging.Categories,
		}); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = logging.Base()
		logging.Boot("rollcall %s: config %s", cmd.Name(), configPath)
		if !cfg.Local.Enabled && !cfg.HasCloudCredential() {
			logging.BootWarn("local model disabled and no %s API key set; ai mode will find nobody", cfg.Cloud.Provider)
		}
		logger.Debug("config loaded",
			zap.String("path", configPath),
			zap.String("roster", cfg.Roster.Path),
			zap.String("cloud_provider", cfg.Cloud.Provider),
			zap.Bool("cloud_credential", cfg.HasCloudCredential()),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath(), "Config file")

	// Roster subcommands
	rosterCmd.AddCommand(rosterShowCmd)
	rosterCmd.AddCommand(rosterReplaceCmd)

	// Add commands to root
	rootCmd.AddCommand(rosterCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

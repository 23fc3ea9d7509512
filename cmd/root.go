package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/go-rva-metrics/internal/config"
	"github.com/pable/go-rva-metrics/internal/logger"
)

var (
	dbPath    string
	debugFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "rvametrics",
	Short: "Off-ball run value tool",
	Long:  "Load SkillCorner tracking and event data and compute Run Value Added (RVA) metrics for off-ball runs.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultDB := filepath.Join(mustUserHome(), ".rvametrics", "rva.db")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "path to SQLite database")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(summaryCmd)
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// setup loads configuration and builds the logger shared by all commands.
func setup() (*config.Config, *zap.Logger, error) {
	cfg := config.Load()
	if debugFlag {
		cfg.Debug = true
	}
	log, err := logger.New(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

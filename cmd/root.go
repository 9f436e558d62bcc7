package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/KaramelBytes/autoeda/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool

	// Loaded configuration; cfgErr is kept so commands that need a valid
	// configuration can fail on it while `config init` still works.
	cfg         *config.Config
	cfgWarnings []string
	cfgErr      error
)

var rootCmd = &cobra.Command{
	Use:   "autoeda",
	Short: "autoeda: infer column types and profile tabular data",
	Long: `autoeda loads a CSV/TSV, XLSX or JSON-records file, infers a semantic type for every
column (numeric, categorical, datetime, boolean, identifier, text) and computes
type-specific statistics, correlations and outliers in one pass.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.autoeda/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging on stderr")
}

func loadConfig() {
	cfg, cfgWarnings, cfgErr = config.Load(cfgFile)
	if cfgErr != nil {
		cfg = nil
		return
	}
	// the only place config warnings are printed; runs carry them as data
	for _, w := range cfgWarnings {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "⚠ Warning: %s\n", w)
	}
}

// requireConfig returns the loaded configuration or the load error.
func requireConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	if cfg == nil {
		return nil, fmt.Errorf("no configuration loaded")
	}
	return cfg, nil
}

// logger returns a debug text logger on stderr when --debug is set; library
// code discards logs otherwise.
func logger() *slog.Logger {
	if !debug {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

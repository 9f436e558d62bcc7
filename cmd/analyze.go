package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/autoeda/internal/config"
	"github.com/KaramelBytes/autoeda/internal/dataset"
	"github.com/KaramelBytes/autoeda/internal/diag"
	"github.com/KaramelBytes/autoeda/internal/eda"
	"github.com/KaramelBytes/autoeda/internal/history"
	"github.com/KaramelBytes/autoeda/internal/infer"
	"github.com/KaramelBytes/autoeda/internal/report"
	"github.com/KaramelBytes/autoeda/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	anaOverrides  []string
	anaFormat     string
	anaOutputPath string
	anaSave       bool
	anaBy         string
	anaDelimiter  string
	anaSheetName  string
	anaSheetIndex int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Infer column types and compute per-type statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		overrides, err := infer.ParseOverrides(anaOverrides)
		if err != nil {
			return err
		}
		ds, err := loadDataset(args[0], c, anaDelimiter, anaSheetName, anaSheetIndex)
		if err != nil {
			return err
		}
		res, err := eda.Run(cmd.Context(), ds, c, overrides, eda.Options{
			Logger:         logger(),
			By:             anaBy,
			ConfigWarnings: cfgWarnings,
		})
		if err != nil {
			return err
		}
		out, err := render(res, anaFormat)
		if err != nil {
			return err
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote analysis to %s\n", anaOutputPath)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
		}
		if anaFormat != "markdown" {
			printWarnings(cmd.ErrOrStderr(), res)
		}

		if anaSave || c.History.Enabled {
			if err := saveRun(cmd.Context(), c, res); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Saved run %s to history\n", res.RunID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringArrayVar(&anaOverrides, "override", nil, "force a column type: column=category (repeatable)")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "markdown", "output format: markdown | json | yaml")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the result")
	analyzeCmd.Flags().BoolVar(&anaSave, "save", false, "store the run in the history database")
	analyzeCmd.Flags().StringVar(&anaBy, "by", "", "name recorded on override audit entries")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (overrides input.delimiter)")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	analyzeCmd.Flags().IntVar(&anaSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

// loadDataset reads a file with the configured null tokens. A non-empty
// delimiter flag wins over input.delimiter.
func loadDataset(path string, c *config.Config, delimiter, sheetName string, sheetIndex int) (*dataset.Dataset, error) {
	if delimiter == "" {
		delimiter = c.Input.Delimiter
	}
	opt := dataset.Options{
		NullValues: c.Input.NullValues,
		SheetName:  sheetName,
		SheetIndex: sheetIndex,
	}
	switch delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	default:
		return nil, fmt.Errorf("unsupported delimiter: %s", delimiter)
	}
	return dataset.LoadFile(path, opt)
}

func render(res *eda.Result, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "markdown", "md", "":
		return []byte(report.Markdown(res)), nil
	case "json":
		return utils.PrettyJSON(res)
	case "yaml", "yml":
		b, err := yaml.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported --format: %s (use markdown|json|yaml)", format)
	}
}

// printWarnings prints a run's warnings except the config ones, which
// loadConfig has already printed.
func printWarnings(w io.Writer, res *eda.Result) {
	for _, warn := range res.Warnings {
		if warn.Code == diag.CodeUnknownConfigKey {
			continue
		}
		fmt.Fprintf(w, "⚠ Warning: %s\n", warn)
	}
}

func saveRun(ctx context.Context, c *config.Config, res *eda.Result) error {
	s, err := openHistory(c)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Save(ctx, res)
}

func openHistory(c *config.Config) (*history.Store, error) {
	path, err := c.HistoryPath()
	if err != nil {
		return nil, err
	}
	return history.Open(path)
}

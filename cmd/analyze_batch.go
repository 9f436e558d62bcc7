package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/autoeda/internal/eda"
	"github.com/spf13/cobra"
)

var (
	abOutDir    string
	abFormat    string
	abDelimiter string
	abSheetName string
	abSave      bool
	abBy        string
	abQuiet     bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV/XLSX/JSON files with progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		if abOutDir != "" {
			if err := os.MkdirAll(abOutDir, 0o755); err != nil {
				return err
			}
		}
		ext := outputExt(abFormat)
		if ext == "" {
			return fmt.Errorf("unsupported --format: %s (use markdown|json|yaml)", abFormat)
		}

		out := cmd.OutOrStdout()
		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			ds, err := loadDataset(path, c, abDelimiter, abSheetName, 0)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			res, err := eda.Run(cmd.Context(), ds, c, nil, eda.Options{Logger: logger(), By: abBy, ConfigWarnings: cfgWarnings})
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			body, err := render(res, abFormat)
			if err != nil {
				return err
			}
			if abOutDir == "" {
				if !abQuiet {
					fmt.Fprintln(out, string(body))
				}
			} else {
				outFile := summaryPath(abOutDir, path, abSheetName, ext)
				if err := os.WriteFile(outFile, body, 0o644); err != nil {
					return fmt.Errorf("write summary: %w", err)
				}
				if !abQuiet {
					fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s\n", filepath.Base(outFile))
				}
			}
			if abSave || c.History.Enabled {
				if err := saveRun(cmd.Context(), c, res); err != nil {
					return err
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory for one summary file per input (default: stdout)")
	analyzeBatchCmd.Flags().StringVarP(&abFormat, "format", "f", "markdown", "output format: markdown | json | yaml")
	analyzeBatchCmd.Flags().StringVar(&abDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	analyzeBatchCmd.Flags().StringVar(&abSheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	analyzeBatchCmd.Flags().BoolVar(&abSave, "save", false, "store every run in the history database")
	analyzeBatchCmd.Flags().StringVar(&abBy, "by", "", "name recorded on override audit entries")
	analyzeBatchCmd.Flags().BoolVarP(&abQuiet, "quiet", "q", false, "suppress progress and stdout output")
}

// expandInputs resolves globs, keeps literal paths that exist, and returns a
// sorted list without duplicates.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func outputExt(format string) string {
	switch strings.ToLower(format) {
	case "markdown", "md", "":
		return ".summary.md"
	case "json":
		return ".summary.json"
	case "yaml", "yml":
		return ".summary.yaml"
	}
	return ""
}

// summaryPath picks <base>[__sheet-<name>]<ext> in dir, adding __2, __3, ...
// when the name is taken.
func summaryPath(dir, input, sheet, ext string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if sheet != "" {
		stem += "__sheet-" + slug(sheet)
	}
	out := filepath.Join(dir, stem+ext)
	if _, err := os.Stat(out); err != nil {
		return out
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d%s", stem, idx, ext))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand
		}
	}
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else if r == ' ' || r == '-' || r == '_' {
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "sheet"
	}
	return out
}

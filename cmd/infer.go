package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/autoeda/internal/infer"
	"github.com/KaramelBytes/autoeda/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	infOverrides []string
	infExplain   bool
	infFormat    string
	infBy        string
	infDelimiter string
)

var inferCmd = &cobra.Command{
	Use:   "infer <file>",
	Short: "Print the inferred type of every column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		overrides, err := infer.ParseOverrides(infOverrides)
		if err != nil {
			return err
		}
		ds, err := loadDataset(args[0], c, infDelimiter, "", 0)
		if err != nil {
			return err
		}
		tm, err := infer.Infer(cmd.Context(), ds, c, overrides, infer.Options{Logger: logger(), By: infBy})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		switch strings.ToLower(infFormat) {
		case "text", "":
			writeTypeMap(w, tm, infExplain)
		case "json":
			b, err := utils.PrettyJSON(tm)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(b))
		case "yaml", "yml":
			b, err := yaml.Marshal(tm)
			if err != nil {
				return fmt.Errorf("marshal yaml: %w", err)
			}
			fmt.Fprint(w, string(b))
		default:
			return fmt.Errorf("unsupported --format: %s (use text|json|yaml)", infFormat)
		}
		for _, warn := range tm.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %s\n", warn)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inferCmd)
	inferCmd.Flags().StringArrayVar(&infOverrides, "override", nil, "force a column type: column=category (repeatable)")
	inferCmd.Flags().BoolVar(&infExplain, "explain", false, "show every rule evaluated per column")
	inferCmd.Flags().StringVarP(&infFormat, "format", "f", "text", "output format: text | json | yaml")
	inferCmd.Flags().StringVar(&infBy, "by", "", "name recorded on override audit entries")
	inferCmd.Flags().StringVar(&infDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
}

func writeTypeMap(w io.Writer, tm *infer.TypeMap, explain bool) {
	for _, name := range tm.Order {
		v, _ := tm.Get(name)
		fmt.Fprintf(w, "%s: %s (confidence %.2f) [%s]\n", name, v.Category, v.Confidence, strings.Join(v.Rationale, "; "))
		if !explain {
			continue
		}
		if o, ok := tm.Audit(name); ok {
			fmt.Fprintf(w, "  override by %s: automatic %s -> %s\n", o.By, o.Automatic.Category, o.Forced)
		}
		for _, r := range v.Rules {
			state := "fail"
			switch {
			case r.Skipped:
				state = "skip"
			case r.Passed:
				state = "pass"
			}
			fmt.Fprintf(w, "  %-11s %s ratio=%.3f threshold=%.3f confidence=%.2f", r.Rule, state, r.Ratio, r.Threshold, r.Confidence)
			if r.Note != "" {
				fmt.Fprintf(w, " (%s)", r.Note)
			}
			fmt.Fprintln(w)
		}
	}
}

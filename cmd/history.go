package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	histLimit  int
	histFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse stored runs and their override audit trail",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		s, err := openHistory(c)
		if err != nil {
			return err
		}
		defer s.Close()
		runs, err := s.List(cmd.Context(), histLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs stored")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDATASET\tROWS\tCOLUMNS\tWARNINGS\tOVERRIDES\tCREATED")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n", r.ID, r.Name, r.Rows, r.Columns, r.Warnings, r.Overrides, r.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return tw.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Render a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		s, err := openHistory(c)
		if err != nil {
			return err
		}
		defer s.Close()
		res, err := s.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out, err := render(res, histFormat)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var historyAuditCmd = &cobra.Command{
	Use:   "audit [run-id]",
	Short: "List manual type overrides, optionally for one run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		s, err := openHistory(c)
		if err != nil {
			return err
		}
		defer s.Close()
		runID := ""
		if len(args) == 1 {
			runID = args[0]
		}
		entries, err := s.Overrides(cmd.Context(), runID)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tCOLUMN\tAUTOMATIC\tFORCED\tBY\tAT")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", e.RunID, e.Column, e.Automatic, e.Forced, e.By, e.At.Format("2006-01-02 15:04:05"))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyAuditCmd)
	historyListCmd.Flags().IntVarP(&histLimit, "limit", "n", 20, "maximum runs to list (0 = all)")
	historyShowCmd.Flags().StringVarP(&histFormat, "format", "f", "markdown", "output format: markdown | json | yaml")
}

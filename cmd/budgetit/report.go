package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/budgetit/internal/report"
	"github.com/MrJamesThe3rd/budgetit/internal/spreadsheet"
)

func templateCmd() *cobra.Command {
	var (
		year int
		out  string
	)

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the budget import template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()

			if err := spreadsheet.WriteTemplate(f, year); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "template written to %s\n", out)

			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", spreadsheet.DefaultTemplateYear, "fiscal year printed in the amount header")
	cmd.Flags().StringVarP(&out, "output", "o", spreadsheet.TemplateFileName, "output file")

	return cmd
}

func exportCmd(root *rootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the JSON report of all budgets and expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			path, err := a.Export.Export(dir)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", path)

			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "output directory")

	return cmd
}

func digestCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "Print every expense with its budget, then the totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprint(cmd.OutOrStdout(), a.Export.Digest())

			return nil
		},
	}
}

func summaryCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the budget totals and the unbudgeted share",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			st := a.Store.State()
			sum := report.Summarize(st)
			u := report.UnbudgetedStats(st, a.Config.Budget.UnbudgetedWarnThreshold)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Budget total:    %10.2f €\n", sum.TotalBudget)
			fmt.Fprintf(w, "Dépenses:        %10.2f €\n", sum.TotalExpenses)
			fmt.Fprintf(w, "Restant:         %10.2f €\n", sum.RemainingBudget)
			fmt.Fprintf(w, "Utilisé:         %9.1f %%\n", sum.PercentageUsed)
			fmt.Fprintf(w, "Hors budget:     %10.2f € (%.1f %%, %d dépenses)\n", u.UnbudgetedTotal, u.Percentage, u.UnbudgetedCount)

			if u.High {
				fmt.Fprintf(w, "attention: plus de %.0f %% des dépenses sont hors budget\n", u.Threshold)
			}

			return nil
		},
	}
}

func resetCmd(root *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every budget and expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}

			a, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Store.ResetAll(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "budgets and expenses deleted")

			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")

	return cmd
}

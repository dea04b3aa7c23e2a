package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/budgetit/internal/importer"
	"github.com/MrJamesThe3rd/budgetit/internal/spreadsheet"
)

type importOptions struct {
	replace    bool
	fiscalYear int
	mapping    map[string]string
	overrides  string
	remember   bool
	quiet      bool
}

func importCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import expenses or budgets from a spreadsheet",
	}

	cmd.AddCommand(
		importKindCmd(root, "expenses", "Import expenses from an xlsx or csv file"),
		importKindCmd(root, "budgets", "Import budgets from a file shaped like the template"),
	)

	return cmd
}

func importKindCmd(root *rootOptions, kind, short string) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   kind + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, root, opts, kind, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.replace, "replace", false, "drop the existing "+kind+" before importing")
	cmd.Flags().StringToStringVar(&opts.mapping, "map", nil, "pin a field to a column, e.g. --map amount=\"Prix HT\"")
	cmd.Flags().StringVar(&opts.overrides, "overrides", "", "JSON file of category/service/budget overrides keyed by cell text")
	cmd.Flags().BoolVar(&opts.remember, "remember", false, "keep the --overrides for later imports")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "hide the progress bar")

	if kind == "budgets" {
		cmd.Flags().IntVar(&opts.fiscalYear, "fiscal-year", 0, "year the imported budgets cover (default: read from the amount header)")
	}

	return cmd
}

func (o *importOptions) options(out io.Writer) (importer.Options, error) {
	opts := importer.Options{Replace: o.replace, FiscalYear: o.fiscalYear}

	if len(o.mapping) > 0 {
		opts.Mapping = importer.Mapping{}
		for field, column := range o.mapping {
			opts.Mapping[importer.Field(field)] = column
		}
	}

	if o.overrides != "" {
		raw, err := os.ReadFile(o.overrides)
		if err != nil {
			return opts, fmt.Errorf("read overrides: %w", err)
		}

		if err := json.Unmarshal(raw, &opts.Overrides); err != nil {
			return opts, fmt.Errorf("parse overrides: %w", err)
		}
	}

	if !o.quiet {
		var bar *progressbar.ProgressBar

		opts.Progress = func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(out),
					progressbar.OptionShowCount(),
					progressbar.OptionSetWidth(40),
					progressbar.OptionSetDescription("Importing rows"),
					progressbar.OptionOnCompletion(func() { fmt.Fprintln(out) }),
				)
			}

			_ = bar.Set(done)
		}
	}

	return opts, nil
}

func runImport(cmd *cobra.Command, root *rootOptions, o *importOptions, kind, path string) error {
	sheet, err := spreadsheet.ReadFile(path)
	if err != nil {
		return err
	}

	opts, err := o.options(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a, err := root.open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	explicit := opts.Overrides
	opts.Overrides = a.Matching.Merge(explicit)

	var res *importer.Result

	switch kind {
	case "budgets":
		res, err = a.Importer.ImportBudgets(cmd.Context(), sheet, opts)
	default:
		res, err = a.Importer.ImportExpenses(cmd.Context(), sheet, opts)
	}

	if err != nil {
		return fmt.Errorf("import %s: %w", kind, err)
	}

	if o.remember {
		if err := a.Matching.LearnAll(cmd.Context(), explicit); err != nil {
			return err
		}
	}

	printResult(cmd.OutOrStdout(), kind, res)

	return nil
}

func printResult(w io.Writer, kind string, res *importer.Result) {
	fmt.Fprintf(w, "%d/%d %s imported, %d duplicates skipped, %d rejected\n",
		res.Imported, res.Total, kind, res.SkippedDuplicate, res.RejectedMissingData)

	if res.CreatedCategories > 0 || res.CreatedServices > 0 {
		fmt.Fprintf(w, "created %d categories and %d services\n", res.CreatedCategories, res.CreatedServices)
	}

	for _, issue := range res.Issues {
		fmt.Fprintf(w, "  line %d: %s\n", issue.Line, issue.Reason)
	}
}

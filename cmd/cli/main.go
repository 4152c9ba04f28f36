package main

import (
	"fmt"
	"io"
	"os"

	"epistack/adapters/render"
	"epistack/internal/config"
	apperrors "epistack/internal/errors"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", apperrors.GetCode(err), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "tablestack",
		Short:         "Stacked summary tables for epidemiological datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv(envFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file loaded before reading configuration")

	rootCmd.AddCommand(
		newRunCmd(),
		newBatchCmd(),
		newGenerateCmd(),
	)
	return rootCmd
}

func newRunCmd() *cobra.Command {
	var (
		j      job
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Tabulate variables of one dataset",
		Long: `Tabulate variables of a CSV/XLSX file or a PostgreSQL query.

Without --by the variables form a scale: item frequencies, optional reversal
and composite scores. With --by each variable is broken down by the grouping
levels and compared with an automatically chosen test.

Variables are names, 0-based positions or inclusive ranges, comma separated.

Examples:
  tablestack run --file outbreak.csv --vars beefcurry:water --by case --prevalence
  tablestack run --file survey.xlsx --vars 3:9 --reverse
  DATABASE_URL=postgres://... tablestack run --query "SELECT * FROM visits" --vars age,sex --by clinic`,
		Args: cobra.NoArgs,
	}
	flags := bindOptionFlags(cmd, &j.Options)
	cmd.Flags().StringVar(&j.File, "file", "", "CSV or XLSX dataset")
	cmd.Flags().StringVar(&j.Sheet, "sheet", "", "XLSX sheet (default: first sheet)")
	cmd.Flags().StringVar(&j.Query, "query", "", "SQL query run against DATABASE_URL")
	cmd.Flags().StringVar(&j.Vars, "vars", "", "variables to tabulate")
	cmd.Flags().StringVar(&j.RunID, "run-id", "", "UUID recorded in logs (default: generated)")
	cmd.Flags().StringVar(&format, "format", "", "output format: text, markdown, html or json (default from TABLESTACK_FORMAT)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	_ = cmd.MarkFlagRequired("vars")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		flags.resolve()
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		f, err := outputFormat(cfg, format)
		if err != nil {
			return err
		}

		r := newRunner(cfg, cfg.Logger())
		defer r.close()
		res, err := r.run(cmd.Context(), "", j)
		if err != nil {
			return err
		}
		return withOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
			return render.Render(w, res.result, f)
		})
	}
	return cmd
}

func outputFormat(cfg *config.Config, flag string) (render.Format, error) {
	if flag == "" {
		flag = cfg.Table.Format
	}
	f, err := render.ParseFormat(flag)
	if err != nil {
		return "", apperrors.InvalidInput(err.Error())
	}
	return f, nil
}

// withOutput runs write against stdout or the named file
func withOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return apperrors.Wrapf(err, "failed to create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

package main

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"

	"epistack/adapters/render"
	"epistack/internal/config"
	apperrors "epistack/internal/errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// batchFile is the YAML job list read by the batch command
type batchFile struct {
	Concurrency int    `yaml:"concurrency"`
	Format      string `yaml:"format"`
	Jobs        []job  `yaml:"jobs"`
}

func loadBatchFile(path string) (*batchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to read %s", path)
	}
	var bf batchFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, fmt.Errorf("parse %s: %w", path, err))
	}
	if len(bf.Jobs) == 0 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("%s has no jobs", path))
	}
	return &bf, nil
}

func newBatchCmd() *cobra.Command {
	var (
		format      string
		output      string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch [jobs.yaml]",
		Short: "Run a list of tabulation jobs concurrently",
		Long: `Run the jobs of a YAML file concurrently and print the tables in job order.

Each job takes file or query, vars and any run option in snake case:

  concurrency: 2
  jobs:
    - name: Exposures by illness
      file: outbreak.csv
      vars: beefcurry:water
      by: case
      prevalence: true
    - name: Attitude scale
      file: attitudes.xlsx
      vars: qa1:qa7
      reverse: true

Relative file paths resolve against the directory of the YAML file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			bf, err := loadBatchFile(args[0])
			if err != nil {
				return err
			}
			if format == "" {
				format = bf.Format
			}
			f, err := outputFormat(cfg, format)
			if err != nil {
				return err
			}
			limit := cfg.Batch.Concurrency
			if bf.Concurrency > 0 {
				limit = bf.Concurrency
			}
			if cmd.Flags().Changed("concurrency") {
				limit = concurrency
			}

			r := newRunner(cfg, cfg.Logger())
			defer r.close()
			results, err := runBatch(cmd.Context(), r, filepath.Dir(args[0]), bf.Jobs, limit)
			if err != nil {
				return err
			}
			return withOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return renderBatch(w, results, f)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "output format: text, markdown, html or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "jobs run at once (default from TABLESTACK_BATCH_CONCURRENCY)")
	return cmd
}

// runBatch runs jobs with at most limit in flight. Results keep job order;
// the first failure cancels the remaining jobs.
func runBatch(ctx context.Context, r *runner, baseDir string, jobs []job, limit int) ([]*jobResult, error) {
	if limit < 1 {
		limit = 1
	}
	results := make([]*jobResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, j := range jobs {
		g.Go(func() error {
			res, err := r.run(gctx, baseDir, j)
			if err != nil {
				return apperrors.Wrapf(err, "job %d (%s)", i+1, j.title())
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func renderBatch(w io.Writer, results []*jobResult, f render.Format) error {
	for i, res := range results {
		if i > 0 && f != render.FormatJSON {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := writeTitle(w, res, f); err != nil {
			return err
		}
		if err := render.Render(w, res.result, f); err != nil {
			return err
		}
	}
	return nil
}

func writeTitle(w io.Writer, res *jobResult, f render.Format) error {
	var err error
	switch f {
	case render.FormatJSON:
		// results are self-describing; one document per job
	case render.FormatHTML:
		_, err = fmt.Fprintf(w, "<h2>%s</h2>\n<p>run %s</p>\n", html.EscapeString(res.job.title()), res.runID)
	case render.FormatMarkdown:
		_, err = fmt.Fprintf(w, "## %s\n\nrun %s\n\n", res.job.title(), res.runID)
	default:
		_, err = fmt.Fprintf(w, "%s (run %s)\n\n", res.job.title(), res.runID)
	}
	return err
}

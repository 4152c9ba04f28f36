package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"epistack/adapters/render"
	"epistack/app"
	"epistack/internal"
	"epistack/internal/config"
	apperrors "epistack/internal/errors"
	"epistack/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, testkit.WriteCSV(filepath.Join(dir, "outbreak.csv"), testkit.Outbreak()))
	require.NoError(t, testkit.WriteXLSX(filepath.Join(dir, "attitudes.xlsx"), testkit.Attitudes()))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestOptionSet_Apply(t *testing.T) {
	set := optionSet{
		By:          ptr("case"),
		Prevalence:  ptr(true),
		IQRVars:     ptr("age"),
		Percent:     ptr("row"),
		Decimal:     ptr(2),
		FactorVars:  ptr("1:2"),
		MinLevel:    ptr(1),
		TotalColumn: ptr(true),
	}
	opts, err := set.apply(app.DefaultOptions())
	require.NoError(t, err)

	require.NotNil(t, opts.By)
	assert.Equal(t, "case", opts.By.String())
	assert.True(t, opts.Prevalence)
	assert.Equal(t, app.IQRList, opts.IQR)
	assert.Len(t, opts.IQRVars, 1)
	assert.Equal(t, app.PercentRow, opts.Percent)
	assert.Equal(t, 2, opts.Decimal)
	assert.Len(t, opts.VarsToFactor, 1)
	assert.Equal(t, 1, *opts.MinLevel)
	assert.Nil(t, opts.MaxLevel)
	assert.True(t, opts.TotalColumn)
	// untouched fields keep the base
	assert.True(t, opts.Test)
}

func TestOptionSet_ApplyErrors(t *testing.T) {
	_, err := optionSet{Percent: ptr("diagonal")}.apply(app.DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	_, err = optionSet{ReverseVars: ptr("a:")}.apply(app.DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestBaseOptions_FollowConfig(t *testing.T) {
	t.Setenv("TABLESTACK_DECIMAL", "3")
	t.Setenv("TABLESTACK_PERCENT", "none")
	opts, err := baseOptions(testConfig(t))
	require.NoError(t, err)
	assert.Equal(t, 3, opts.Decimal)
	assert.Equal(t, app.PercentNone, opts.Percent)
}

func TestRunCommand_GroupedMarkdown(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	dir := writeFixtures(t)

	out, err := execute(t, "run",
		"--file", filepath.Join(dir, "outbreak.csv"),
		"--vars", "beefcurry:water",
		"--by", "case",
		"--prevalence",
		"--format", "markdown",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "| eclair = TRUE |")
	assert.Contains(t, out, "P-value")
}

func TestRunCommand_ScaleWithReversal(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	dir := writeFixtures(t)
	target := filepath.Join(dir, "scale.txt")

	_, err := execute(t, "run",
		"--file", filepath.Join(dir, "attitudes.xlsx"),
		"--vars", "qa1:qa7",
		"--reverse",
		"--output", target,
	)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, app.ColumnReversed)
	assert.Contains(t, out, strings.TrimSpace(app.TotalScoreLabel))
	assert.Contains(t, out, "Attitude item 3")
}

func TestRunCommand_Errors(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	dir := writeFixtures(t)

	_, err := execute(t, "run", "--file", filepath.Join(dir, "outbreak.csv"), "--vars", "nosuch")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeReferenceError, apperrors.GetCode(err))

	_, err = execute(t, "run", "--vars", "a")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	t.Setenv("DATABASE_URL", "")
	_, err = execute(t, "run", "--query", "SELECT 1", "--vars", "a")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
}

func TestBatch_OutputKeepsJobOrder(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	dir := writeFixtures(t)
	jobs := `concurrency: 3
jobs:
  - name: first
    file: outbreak.csv
    vars: eclair
    by: case
  - name: second
    file: attitudes.xlsx
    vars: qa1:qa4
  - name: third
    file: outbreak.csv
    vars: age
    by: sex
    iqr: none
`
	path := filepath.Join(dir, "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(jobs), 0o644))

	bf, err := loadBatchFile(path)
	require.NoError(t, err)
	require.Len(t, bf.Jobs, 3)
	assert.Equal(t, "none", *bf.Jobs[2].Options.IQR)

	r := newRunner(testConfig(t), internal.NopLogger())
	defer r.close()
	results, err := runBatch(context.Background(), r, dir, bf.Jobs, bf.Concurrency)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, name := range []string{"first", "second", "third"} {
		assert.Equal(t, name, results[i].job.Name)
		assert.NotEmpty(t, results[i].runID)
	}
	assert.True(t, results[0].result.Grouped)
	assert.False(t, results[1].result.Grouped)

	var buf bytes.Buffer
	require.NoError(t, renderBatch(&buf, results, render.FormatText))
	out := buf.String()
	first, second, third := strings.Index(out, "first (run"), strings.Index(out, "second (run"), strings.Index(out, "third (run")
	assert.True(t, first >= 0 && first < second && second < third, out)

	out, err = execute(t, "batch", path, "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, `"columns"`))
}

func TestBatch_FailingJobIsNamed(t *testing.T) {
	dir := writeFixtures(t)
	r := newRunner(testConfig(t), internal.NopLogger())
	defer r.close()

	_, err := runBatch(context.Background(), r, dir, []job{
		{Name: "ok", File: "outbreak.csv", Vars: "eclair"},
		{Name: "broken", File: "missing.csv", Vars: "eclair"},
	}, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, apperrors.CodeSourceError, apperrors.GetCode(err))
}

func TestRunner_RunID(t *testing.T) {
	dir := writeFixtures(t)
	r := newRunner(testConfig(t), internal.NopLogger())
	defer r.close()

	id := "0190a6d2-7c3e-7d41-9b9a-2f4c8e1d5a60"
	res, err := r.run(context.Background(), dir, job{File: "outbreak.csv", Vars: "eclair", RunID: id})
	require.NoError(t, err)
	assert.Equal(t, id, res.runID.String())

	_, err = r.run(context.Background(), dir, job{File: "outbreak.csv", Vars: "eclair", RunID: "run-7"})
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestLoadBatchFile_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("jobs: []\n"), 0o644))
	_, err := loadBatchFile(empty)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("jobs: [\n"), 0o644))
	_, err = loadBatchFile(bad)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestGenerateCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "att.csv")
	out, err := execute(t, "generate", "attitudes", "--out", target, "--rows", "25")
	require.NoError(t, err)
	assert.Contains(t, out, "25 rows")
	assert.FileExists(t, target)

	_, err = execute(t, "generate", "weather", "--out", target)
	assert.Error(t, err)
	_, err = execute(t, "generate", "outbreak", "--out", filepath.Join(t.TempDir(), "x.txt"))
	assert.Error(t, err)
}

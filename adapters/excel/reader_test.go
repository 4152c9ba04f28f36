package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"epistack/domain/dataset"
	apperrors "epistack/internal/errors"
	"epistack/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoad_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.csv")
	content := "id,grp,age,smoker\n1,ctrl,34,TRUE\n2,trt,NA,FALSE\n3,ctrl,51,\n4,trt,28,TRUE\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	frame, err := NewDataReader(DefaultExcelConfig(path), nil).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "grp", "age", "smoker"}, frame.Names())
	assert.Equal(t, 4, frame.NumRows())
	assert.Equal(t, dataset.KindNumeric, frame.ColumnByName("age").Kind())
	assert.True(t, frame.ColumnByName("age").IsMissing(1))
	assert.Equal(t, dataset.KindCategorical, frame.ColumnByName("grp").Kind())
	assert.Equal(t, []string{"ctrl", "trt"}, frame.ColumnByName("grp").Levels())
	assert.Equal(t, dataset.KindBoolean, frame.ColumnByName("smoker").Kind())
	assert.Equal(t, 3, frame.ColumnByName("smoker").ValidCount())
}

func TestLoad_ShortRowsArePadded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,x\n2\n"), 0o644))

	frame, err := NewDataReader(DefaultExcelConfig(path), nil).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, frame.ColumnByName("b").IsMissing(1))
}

func TestLoad_XLSXRoundTripWithLabels(t *testing.T) {
	source := testkit.Outbreak()
	path := filepath.Join(t.TempDir(), "outbreak.xlsx")
	require.NoError(t, testkit.WriteXLSX(path, source))

	frame, err := NewDataReader(DefaultExcelConfig(path), nil).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, source.Names(), frame.Names())
	assert.Equal(t, source.NumRows(), frame.NumRows())
	assert.Equal(t, "Age (years)", frame.ColumnByName("age").Label())
	assert.Equal(t, "Ill", frame.ColumnByName("case").Label())
	assert.Equal(t, source.ColumnByName("age").ValidCount(), frame.ColumnByName("age").ValidCount())
	assert.Equal(t, source.ColumnByName("sex").Levels(), frame.ColumnByName("sex").Levels())
}

func TestLoad_LabelsDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outbreak.xlsx")
	require.NoError(t, testkit.WriteXLSX(path, testkit.Outbreak()))

	cfg := DefaultExcelConfig(path)
	cfg.LabelsSheet = ""
	frame, err := NewDataReader(cfg, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "age", frame.ColumnByName("age").Label())
}

func TestLoad_NamedSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	f := excelize.NewFile()
	_, err := f.NewSheet("data")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("data", "A1", &[]interface{}{"x", "g"}))
	require.NoError(t, f.SetSheetRow("data", "A2", &[]interface{}{1.5, "a"}))
	require.NoError(t, f.SetSheetRow("data", "A3", &[]interface{}{2.5, "b"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	cfg := DefaultExcelConfig(path)
	cfg.Sheet = "data"
	frame, err := NewDataReader(cfg, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5}, frame.ColumnByName("x").Floats())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewDataReader(DefaultExcelConfig(filepath.Join(dir, "missing.csv")), nil).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeSourceError, apperrors.GetCode(err))

	headerOnly := filepath.Join(dir, "header.csv")
	require.NoError(t, os.WriteFile(headerOnly, []byte("a,b\n"), 0o644))
	_, err = NewDataReader(DefaultExcelConfig(headerOnly), nil).Load(context.Background())
	require.Error(t, err)

	dup := filepath.Join(dir, "dup.csv")
	require.NoError(t, os.WriteFile(dup, []byte("a,a\n1,2\n"), 0o644))
	_, err = NewDataReader(DefaultExcelConfig(dup), nil).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoad_CancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n1\n"), 0o644))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDataReader(DefaultExcelConfig(path), nil).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"epistack/adapters/datareadiness/coercer"
	"epistack/domain/dataset"
	"epistack/internal"
	apperrors "epistack/internal/errors"
	"epistack/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Open connects to a PostgreSQL database
func Open(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, apperrors.SourceError("postgres", err)
	}
	return db, nil
}

// TableQuery selects columns (all when empty) from table with quoted identifiers
func TableQuery(table string, columns ...string) string {
	cols := "*"
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, c := range columns {
			quoted[i] = pq.QuoteIdentifier(c)
		}
		cols = strings.Join(quoted, ", ")
	}
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return fmt.Sprintf("SELECT %s FROM %s", cols, strings.Join(parts, "."))
}

// QuerySource loads the result set of one query as a frame
type QuerySource struct {
	db      *sqlx.DB
	query   string
	args    []interface{}
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

var _ ports.DatasetSourcePort = (*QuerySource)(nil)

// NewQuerySource creates a source for query. Text cells matching one of the
// coercion missing tokens are read as missing.
func NewQuerySource(db *sqlx.DB, cfg coercer.CoercionConfig, logger *internal.Logger, query string, args ...interface{}) *QuerySource {
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &QuerySource{db: db, query: query, args: args, coercer: coercer.NewTypeCoercer(cfg), logger: logger}
}

// Describe names the source
func (s *QuerySource) Describe() string {
	return "postgres: " + s.query
}

// Load runs the query and types each column from its driver type
func (s *QuerySource) Load(ctx context.Context) (*dataset.Frame, error) {
	start := time.Now()
	rows, err := s.db.QueryxContext(ctx, s.query, s.args...)
	if err != nil {
		return nil, apperrors.SourceError(s.Describe(), fmt.Errorf("failed to run query: %w", err))
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, apperrors.SourceError(s.Describe(), err)
	}
	kinds := make([]dataset.Kind, len(types))
	for j, ct := range types {
		kinds[j] = kindFor(ct.DatabaseTypeName())
	}

	values := make([][]dataset.Value, len(types))
	for rows.Next() {
		cells, err := rows.SliceScan()
		if err != nil {
			return nil, apperrors.SourceError(s.Describe(), fmt.Errorf("failed to scan row: %w", err))
		}
		for j, cell := range cells {
			v, err := s.convertCell(cell, kinds[j])
			if err != nil {
				return nil, apperrors.SourceError(s.Describe(), fmt.Errorf("column %s: %w", types[j].Name(), err))
			}
			values[j] = append(values[j], v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.SourceError(s.Describe(), err)
	}

	columns := make([]*dataset.Column, len(types))
	for j, ct := range types {
		col, err := dataset.NewColumn(ct.Name(), kinds[j], values[j])
		if err != nil {
			return nil, apperrors.SourceError(s.Describe(), err)
		}
		columns[j] = col
	}
	frame, err := dataset.NewFrame(columns...)
	if err != nil {
		return nil, apperrors.SourceError(s.Describe(), err)
	}
	s.logger.Info("loaded query result: %d columns, %d rows in %s", frame.NumCols(), frame.NumRows(), time.Since(start))
	return frame, nil
}

// kindFor maps a PostgreSQL type name to a column kind
func kindFor(databaseType string) dataset.Kind {
	switch strings.ToUpper(databaseType) {
	case "INT2", "INT4", "INT8", "FLOAT4", "FLOAT8", "NUMERIC", "OID":
		return dataset.KindNumeric
	case "BOOL":
		return dataset.KindBoolean
	default:
		return dataset.KindCategorical
	}
}

// convertCell converts a scanned driver value. NULL is missing.
func (s *QuerySource) convertCell(cell interface{}, kind dataset.Kind) (dataset.Value, error) {
	if cell == nil {
		return dataset.MissingValue(), nil
	}
	switch kind {
	case dataset.KindNumeric:
		switch v := cell.(type) {
		case int64:
			return dataset.NumberValue(float64(v)), nil
		case int32:
			return dataset.NumberValue(float64(v)), nil
		case float64:
			return dataset.NumberValue(v), nil
		case float32:
			return dataset.NumberValue(float64(v)), nil
		case []byte:
			return s.numericText(string(v))
		case string:
			return s.numericText(v)
		}
		return dataset.Value{}, fmt.Errorf("unexpected numeric value of type %T", cell)
	case dataset.KindBoolean:
		if b, ok := cell.(bool); ok {
			return dataset.BoolValue(b), nil
		}
		return dataset.Value{}, fmt.Errorf("unexpected boolean value of type %T", cell)
	}
	return s.coercer.CoerceValue(textOf(cell), dataset.KindCategorical), nil
}

// numericText parses NUMERIC values, which the driver returns as text
func (s *QuerySource) numericText(text string) (dataset.Value, error) {
	v := s.coercer.CoerceValue(text, dataset.KindNumeric)
	if v.Missing && !s.coercer.IsMissing(text) {
		return dataset.Value{}, fmt.Errorf("cannot parse %q as a number", text)
	}
	return v, nil
}

func textOf(cell interface{}) string {
	switch v := cell.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

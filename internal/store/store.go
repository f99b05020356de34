// Package store persists extracted report records in PostgreSQL.
//
// Every shape gets its own table named after the shape key. Records are
// bulk-loaded with COPY inside one transaction per import, and each import
// is logged in the imports table.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/tablewrap/internal/report"
)

// ImportsTable logs one row per saved import.
const ImportsTable = "tablewrap_imports"

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Pool is a DBTX that can start transactions. *pgxpool.Pool satisfies it.
type Pool interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store writes report records to PostgreSQL.
type Store struct {
	pool Pool
}

// New creates a Store over pool.
func New(pool Pool) *Store {
	return &Store{pool: pool}
}

// Import identifies one saved extraction.
type Import struct {
	ID      uuid.UUID
	Shape   string
	Source  string
	Rows    int64
	SavedAt time.Time
}

// TableName returns the table that holds the records of def.
func TableName(def *report.Definition) string {
	return "report_" + strings.ToLower(def.Info.Key)
}

// fixed columns precede the field columns in every report table.
var fixedColumns = []string{"import_id", "source", "line"}

// EnsureTable creates the table for def if it does not exist yet.
func EnsureTable(ctx context.Context, db DBTX, def *report.Definition) error {
	cols := []string{
		"import_id uuid NOT NULL",
		"source text NOT NULL",
		"line integer NOT NULL",
	}
	for _, f := range def.Fields {
		cols = append(cols, fmt.Sprintf("%s %s", pgx.Identifier{string(f.ID)}.Sanitize(), columnType(f.Type)))
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		pgx.Identifier{TableName(def)}.Sanitize(), strings.Join(cols, ",\n\t"))
	if _, err := db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", TableName(def), err)
	}
	return nil
}

// EnsureSchema creates the imports log table.
func EnsureSchema(ctx context.Context, db DBTX) error {
	_, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+ImportsTable+` (
	id uuid PRIMARY KEY,
	shape text NOT NULL,
	source text NOT NULL,
	rows bigint NOT NULL,
	saved_at timestamptz NOT NULL DEFAULT now()
)`)
	if err != nil {
		return fmt.Errorf("create imports table: %w", err)
	}
	return nil
}

func columnType(t report.FieldType) string {
	switch t {
	case report.FieldInt:
		return "bigint"
	case report.FieldDecimal:
		return "numeric"
	case report.FieldFloat:
		return "double precision"
	case report.FieldDateTime:
		return "timestamp"
	case report.FieldInstant:
		return "timestamptz"
	default:
		return "text"
	}
}

// Save copies the records of res into the table of def and logs the import.
// All rows are written in one transaction; on error nothing is kept.
func (s *Store) Save(ctx context.Context, def *report.Definition, res *report.Result) (*Import, error) {
	if res == nil {
		return nil, errors.New("save: nil result")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("operation cancelled: %w", err)
	}

	imp := &Import{
		ID:      uuid.New(),
		Shape:   def.Info.Key,
		Source:  res.Source,
		SavedAt: time.Now().UTC(),
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	if err := EnsureSchema(ctx, tx); err != nil {
		return nil, err
	}
	if err := EnsureTable(ctx, tx, def); err != nil {
		return nil, err
	}

	columns := append(append([]string{}, fixedColumns...), def.Columns()...)
	src := pgx.CopyFromSlice(len(res.Records), func(i int) ([]any, error) {
		return recordRow(def, imp, res.Records[i])
	})
	n, err := tx.CopyFrom(ctx, pgx.Identifier{TableName(def)}, columns, src)
	if err != nil {
		return nil, fmt.Errorf("copy into %s: %w", TableName(def), err)
	}
	imp.Rows = n

	if _, err := tx.Exec(ctx,
		`INSERT INTO `+ImportsTable+` (id, shape, source, rows, saved_at) VALUES ($1, $2, $3, $4, $5)`,
		toPgUUID(imp.ID), imp.Shape, imp.Source, imp.Rows, imp.SavedAt,
	); err != nil {
		return nil, fmt.Errorf("log import: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return imp, nil
}

func recordRow(def *report.Definition, imp *Import, rec report.Record) ([]any, error) {
	row := make([]any, 0, len(fixedColumns)+len(def.Fields))
	row = append(row, toPgUUID(imp.ID), toPgText(imp.Source), toPgInt4(rec.Line))
	for _, f := range def.Fields {
		v, err := toPg(f.Type, rec.Values[string(f.ID)])
		if err != nil {
			return nil, fmt.Errorf("line %d field %s: %w", rec.Line, f.ID, err)
		}
		row = append(row, v)
	}
	return row, nil
}

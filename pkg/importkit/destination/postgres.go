package destination

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/arthur-debert/importkit/pkg/importkit/core"
)

// Postgres inserts each record as a row of a table. Column names are the record
// keys in sorted order.
type Postgres struct {
	db    *sql.DB
	table string
	owned bool
}

// NewPostgres writes rows into table using db. Closing the destination does not
// close db.
func NewPostgres(db *sql.DB, table string) *Postgres {
	return &Postgres{db: db, table: table}
}

// OpenPostgres connects to dsn with the lib/pq driver.
func OpenPostgres(ctx context.Context, dsn, table string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	p := NewPostgres(db, table)
	p.owned = true
	return p, nil
}

// Write implements Destination.
func (p *Postgres) Write(ctx context.Context, rec core.Record) error {
	if len(rec) == 0 {
		return fmt.Errorf("cannot insert an empty record into %s", p.table)
	}
	query, args, err := InsertStatement(p.table, rec)
	if err != nil {
		return err
	}
	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s failed: %w", p.table, err)
	}
	return nil
}

// Close implements Destination.
func (p *Postgres) Close() error {
	if p.owned {
		return p.db.Close()
	}
	return nil
}

// InsertStatement builds a parameterised INSERT for rec. Nested values are
// passed as Postgres arrays where possible.
func InsertStatement(table string, rec core.Record) (string, []any, error) {
	keys := rec.Keys()
	cols := make([]string, len(keys))
	params := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		cols[i] = pq.QuoteIdentifier(k)
		params[i] = fmt.Sprintf("$%d", i+1)
		arg, err := columnValue(k, rec[k])
		if err != nil {
			return "", nil, err
		}
		args[i] = arg
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteTable(table), strings.Join(cols, ", "), strings.Join(params, ", "))
	return query, args, nil
}

func quoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, part := range parts {
		parts[i] = pq.QuoteIdentifier(part)
	}
	return strings.Join(parts, ".")
}

func columnValue(field string, v any) (any, error) {
	switch val := v.(type) {
	case nil, string, bool, int, int64, uint64, float64:
		return val, nil
	case []string:
		return pq.Array(val), nil
	case []any:
		strs := make([]string, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, &UnsupportedValueError{Field: field, Value: v}
			}
			strs[i] = s
		}
		return pq.Array(strs), nil
	default:
		return nil, &UnsupportedValueError{Field: field, Value: v}
	}
}

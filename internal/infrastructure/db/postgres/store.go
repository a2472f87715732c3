package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"
)

// DBTX is the subset of *sql.DB and *sql.Tx the store needs.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Row is one result row keyed by column name.
type Row map[string]any

// String returns the column as text. NULL and missing columns read as "".
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Result is the outcome of a statement. For reads RowCount is len(Rows); for
// writes it is the number of affected rows and Rows is empty.
type Result struct {
	Rows     []Row
	RowCount int64
}

// Store runs parameterised statements against the credential database.
type Store struct {
	db DBTX
}

func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// Query executes statement with params. Statements whose first keyword is
// SELECT or WITH return rows; anything else is executed for its row count.
func (s *Store) Query(ctx context.Context, statement string, params ...any) (*Result, error) {
	if isRead(statement) {
		return s.read(ctx, statement, params)
	}

	res, err := s.db.ExecContext(ctx, statement, params...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &Result{RowCount: n}, nil
}

func (s *Store) read(ctx context.Context, statement string, params []any) (*Result, error) {
	rows, err := s.db.QueryContext(ctx, statement, params...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	out := &Result{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = values[i]
		}
		out.Rows = append(out.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	out.RowCount = int64(len(out.Rows))
	return out, nil
}

func isRead(statement string) bool {
	s := strings.TrimLeftFunc(statement, func(r rune) bool {
		return unicode.IsSpace(r) || r == '('
	})
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	if end >= 0 {
		s = s[:end]
	}
	switch strings.ToUpper(s) {
	case "SELECT", "WITH":
		return true
	}
	return false
}

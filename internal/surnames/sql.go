package surnames

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// SQLSource loads overrides from one column of a database table.
type SQLSource struct {
	DB     *sql.DB
	Table  string
	Column string
}

// Query returns the statement Load runs.
func (s SQLSource) Query() (string, []interface{}, error) {
	col := quoteIdentifier(s.Column)
	return sq.Select(col).
		From(quoteIdentifier(s.Table)).
		Where(sq.NotEq{col: nil}).
		OrderBy(col).
		PlaceholderFormat(sq.Question).
		ToSql()
}

func (s SQLSource) Load(ctx context.Context) (*Table, error) {
	query, args, err := s.Query()
	if err != nil {
		return nil, fmt.Errorf("build surname override query: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query surname overrides: %w", err)
	}
	defer rows.Close()

	var spellings []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan surname override: %w", err)
		}
		spellings = append(spellings, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate surname overrides: %w", err)
	}
	return NewTable(spellings), nil
}

func (s SQLSource) Describe() string { return "database:" + s.Table + "." + s.Column }

// quoteIdentifier backtick-quotes each dot-separated part of a MySQL
// identifier, escaping embedded backticks.
func quoteIdentifier(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = "`" + strings.ReplaceAll(p, "`", "``") + "`"
	}
	return strings.Join(parts, ".")
}

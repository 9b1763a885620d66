// Package querybuilder renders the handful of PostgreSQL statement shapes the
// repositories need, numbering placeholders ($1, $2, ...) across clauses.
package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// statement accumulates SQL text and its positional arguments.
type statement struct {
	sql  strings.Builder
	args []any
}

func (s *statement) write(parts ...string) {
	for _, p := range parts {
		s.sql.WriteString(p)
	}
}

func (s *statement) bind(value any) {
	s.args = append(s.args, value)
	s.sql.WriteString("$")
	s.sql.WriteString(strconv.Itoa(len(s.args)))
}

func (s *statement) list(keyword string, parts []string) {
	if len(parts) == 0 {
		return
	}
	s.write(" ", keyword, " ", strings.Join(parts, ", "))
}

func (s *statement) where(conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	s.write(" WHERE ")
	joinConditions(s, conditions, " AND ")
}

func (s *statement) suffix(sql string) {
	if sql != "" {
		s.write(" ", sql)
	}
}

func (s *statement) result() (string, []any, error) {
	return s.sql.String(), s.args, nil
}

type Condition interface {
	render(s *statement)
}

type conditionFunc func(s *statement)

func (f conditionFunc) render(s *statement) { f(s) }

func Eq(column string, value any) Condition {
	return conditionFunc(func(s *statement) {
		s.write(column, " = ")
		s.bind(value)
	})
}

// In matches nothing for an empty value list.
func In(column string, values []any) Condition {
	return conditionFunc(func(s *statement) {
		if len(values) == 0 {
			s.write("1=0")
			return
		}
		s.write(column, " IN (")
		for i, v := range values {
			if i > 0 {
				s.write(", ")
			}
			s.bind(v)
		}
		s.write(")")
	})
}

func IsNull(column string) Condition {
	return conditionFunc(func(s *statement) {
		s.write(column, " IS NULL")
	})
}

// Or groups conditions in parentheses.
func Or(conditions ...Condition) Condition {
	return conditionFunc(func(s *statement) {
		s.write("(")
		joinConditions(s, conditions, " OR ")
		s.write(")")
	})
}

func joinConditions(s *statement, conditions []Condition, sep string) {
	for i, c := range conditions {
		if i > 0 {
			s.write(sep)
		}
		c.render(s)
	}
}

type SelectBuilder struct {
	distinctOn []string
	columns    []string
	table      string
	where      []Condition
	orderBy    []string
	limit      int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

// DistinctOn keeps the first row of every group of the given expressions.
// ORDER BY must start with the same expressions.
func (b *SelectBuilder) DistinctOn(parts ...string) *SelectBuilder {
	b.distinctOn = append(b.distinctOn, parts...)
	return b
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

// Limit ignores values <= 0.
func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var s statement
	s.write("SELECT ")
	if len(b.distinctOn) > 0 {
		s.write("DISTINCT ON (", strings.Join(b.distinctOn, ", "), ") ")
	}
	s.write(strings.Join(b.columns, ", "), " FROM ", b.table)
	s.where(b.where)
	s.list("ORDER BY", b.orderBy)
	if b.limit > 0 {
		s.write(" LIMIT ", strconv.Itoa(b.limit))
	}
	return s.result()
}

type InsertBuilder struct {
	table   string
	columns []string
	values  []any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

// Values sets the single row to insert.
func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.values = append([]any(nil), values...)
	return b
}

func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.values) != len(b.columns) {
		return "", nil, fmt.Errorf("insert has %d values for %d columns", len(b.values), len(b.columns))
	}

	var s statement
	s.write("INSERT INTO ", b.table, " (", strings.Join(b.columns, ", "), ") VALUES (")
	for i, v := range b.values {
		if i > 0 {
			s.write(", ")
		}
		s.bind(v)
	}
	s.write(")")
	s.suffix(b.suffix)
	return s.result()
}

type UpdateBuilder struct {
	table   string
	columns []string
	values  []any
	where   []Condition
	suffix  string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.columns = append(b.columns, column)
	b.values = append(b.values, value)
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) Suffix(sql string) *UpdateBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

// ToSQL refuses an update without a WHERE clause.
func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("update of %s requires a where clause", b.table)
	}

	var s statement
	s.write("UPDATE ", b.table, " SET ")
	for i, column := range b.columns {
		if i > 0 {
			s.write(", ")
		}
		s.write(column, " = ")
		s.bind(b.values[i])
	}
	s.where(b.where)
	s.suffix(b.suffix)
	return s.result()
}

package querybuilder

import (
	"fmt"
	"strings"
)

type InsertBuilder struct {
	table      string
	columns    []string
	rows       [][]any
	conflict   []string
	updateCols []string
	returning  []string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// OnConflict names the unique key used by DoUpdate.
func (b *InsertBuilder) OnConflict(columns ...string) *InsertBuilder {
	b.conflict = append([]string(nil), columns...)
	return b
}

// DoUpdate overwrites the listed columns with the proposed row.
func (b *InsertBuilder) DoUpdate(columns ...string) *InsertBuilder {
	b.updateCols = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	b.returning = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}
	if len(b.updateCols) > 0 && len(b.conflict) == 0 {
		return "", nil, fmt.Errorf("conflict target is required")
	}

	var w writer
	w.args = make([]any, 0, len(b.rows)*len(b.columns))
	w.sql.WriteString("INSERT INTO ")
	w.sql.WriteString(b.table)
	w.sql.WriteString(" (")
	w.sql.WriteString(strings.Join(b.columns, ", "))
	w.sql.WriteString(") VALUES ")

	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			w.sql.WriteString(", ")
		}
		w.sql.WriteString("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				w.sql.WriteString(", ")
			}
			w.bind(value)
		}
		w.sql.WriteString(")")
	}

	if len(b.conflict) > 0 {
		w.sql.WriteString(" ON CONFLICT (")
		w.sql.WriteString(strings.Join(b.conflict, ", "))
		w.sql.WriteString(")")
		switch {
		case len(b.updateCols) > 0:
			w.sql.WriteString(" DO UPDATE SET ")
			for i, col := range b.updateCols {
				if i > 0 {
					w.sql.WriteString(", ")
				}
				w.sql.WriteString(col)
				w.sql.WriteString(" = EXCLUDED.")
				w.sql.WriteString(col)
			}
		default:
			w.sql.WriteString(" DO NOTHING")
		}
	}
	w.list("RETURNING", b.returning)

	return w.sql.String(), w.args, nil
}

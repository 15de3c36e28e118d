package postgres

import (
	"fmt"
	"slices"
	"strings"

	"github.com/phrazzld/task-api/internal/store"
)

// Assignment is one column value supplied for an insert or update.
type Assignment struct {
	Column string
	Value  any
}

// Table describes how an entity type maps onto a table.
type Table[T store.Entity, F any] struct {
	// Name is the SQL table name.
	Name string

	// Columns lists every selectable column. The first one is the primary key.
	Columns []string

	// New allocates an empty entity to scan into.
	New func() T

	// Targets returns scan destinations for entity, in Columns order.
	Targets func(entity T) []any

	// Assignments returns the supplied fields as column values.
	// Fields that were not supplied are left out.
	Assignments func(fields F) []Assignment
}

func (t Table[T, F]) keyColumn() string {
	return t.Columns[0]
}

func (t Table[T, F]) hasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

func (t Table[T, F]) selectList() string {
	return strings.Join(t.Columns, ", ")
}

func (t Table[T, F]) insertQuery(assignments []Assignment) (string, []any) {
	if len(assignments) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING %s", t.Name, t.selectList()), nil
	}

	columns := make([]string, len(assignments))
	placeholders := make([]string, len(assignments))
	args := make([]any, len(assignments))
	for i, a := range assignments {
		columns[i] = a.Column
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = a.Value
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		t.Name, strings.Join(columns, ", "), strings.Join(placeholders, ", "), t.selectList())
	return query, args
}

func (t Table[T, F]) updateQuery(id int64, assignments []Assignment) (string, []any) {
	sets := make([]string, len(assignments))
	args := make([]any, 0, len(assignments)+1)
	for i, a := range assignments {
		sets[i] = fmt.Sprintf("%s = $%d", a.Column, i+1)
		args = append(args, a.Value)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		t.Name, strings.Join(sets, ", "), t.keyColumn(), len(args))
	return query, args
}

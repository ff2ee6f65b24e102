package query

import (
	"fmt"
	"strings"
)

// Column names the builder refers to. They must match the tasks table.
const (
	ColumnCreatedAt      = "created_at"
	ColumnTitleKey       = "title_key"
	ColumnDescriptionKey = "description_key"
	ColumnCompleted      = "completed"
	ColumnSeq            = "seq"
)

// Clause is the storage-layer form of a Spec: a WHERE predicate with its
// positional arguments and an ORDER BY list.
type Clause struct {
	Where   string
	Args    []any
	OrderBy string
}

// SQL appends the clause to selectClause, which must select FROM tasks.
func (c Clause) SQL(selectClause string) string {
	q := selectClause
	if c.Where != "" {
		q += " WHERE " + c.Where
	}
	if c.OrderBy != "" {
		q += " ORDER BY " + c.OrderBy
	}
	return q
}

// Build constructs the predicate and ordering for spec. Invalid enum values
// fall back to the defaults, so Build never fails.
func Build(spec Spec) Clause {
	spec = spec.Normalize()

	var conditions []string
	var args []any

	switch spec.Filter {
	case FilterDone:
		conditions = append(conditions, ColumnCompleted+" = 1")
	case FilterUndone:
		conditions = append(conditions, ColumnCompleted+" = 0")
	}

	if spec.SearchText != "" {
		pattern := "%" + escapeLike(Fold(spec.SearchText)) + "%"
		conditions = append(conditions, fmt.Sprintf(
			`(%s LIKE ? ESCAPE '\' OR %s LIKE ? ESCAPE '\')`,
			ColumnTitleKey, ColumnDescriptionKey,
		))
		args = append(args, pattern, pattern)
	}

	sortBy := ColumnCreatedAt
	if spec.SortField == SortByTitle {
		sortBy = ColumnTitleKey
	}

	direction := "ASC"
	if spec.SortOrder == Descending {
		direction = "DESC"
	}

	return Clause{
		Where:   strings.Join(conditions, " AND "),
		Args:    args,
		OrderBy: fmt.Sprintf("%s %s, %s %s", sortBy, direction, ColumnSeq, direction),
	}
}

// escapeLike escapes the LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

package storage

import (
	"fmt"
	"strconv"
	"strings"

	"inventory/internal/core"
)

// Dialect captures the differences between the SQL backends that matter when
// building filter clauses.
type Dialect struct {
	Name        string
	Placeholder func(n int) string
	DateArg     func(d core.Date) any
}

var (
	// SQLiteDialect stores dates as YYYY-MM-DD text, which sorts chronologically.
	SQLiteDialect = Dialect{
		Name:        "sqlite",
		Placeholder: func(int) string { return "?" },
		DateArg:     func(d core.Date) any { return d.String() },
	}

	PostgresDialect = Dialect{
		Name:        "postgres",
		Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		DateArg:     func(d core.Date) any { return d.Time },
	}
)

// BuildExpenseWhere turns a filter into a conjunctive WHERE condition (without
// the keyword) and its positional arguments. Absent fields add no constraint.
func BuildExpenseWhere(f core.ExpenseFilter, d Dialect) (string, []any) {
	clauses := []string{"1=1"}
	var args []any

	add := func(format string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(format, d.Placeholder(len(args))))
	}

	if !f.StartDate.IsEmpty() {
		add("date >= %s", d.DateArg(f.StartDate))
	}
	if !f.EndDate.IsEmpty() {
		add("date <= %s", d.DateArg(f.EndDate))
	}
	if f.HasCategory() {
		add("category = %s", f.Category)
	}

	return strings.Join(clauses, " AND "), args
}

package storage

import (
	"testing"
	"time"

	"inventory/internal/core"
)

func TestBuildExpenseWhere(t *testing.T) {
	start := core.NewDate(2024, 1, 1)
	end := core.NewDate(2024, 1, 31)

	tests := []struct {
		name     string
		filter   core.ExpenseFilter
		dialect  Dialect
		wantSQL  string
		wantArgs int
	}{
		{
			name:    "no filter",
			dialect: SQLiteDialect,
			wantSQL: "1=1",
		},
		{
			name:    "all sentinel adds nothing",
			filter:  core.ExpenseFilter{Category: core.AllCategories},
			dialect: PostgresDialect,
			wantSQL: "1=1",
		},
		{
			name:     "sqlite full",
			filter:   core.ExpenseFilter{StartDate: start, EndDate: end, Category: "Office"},
			dialect:  SQLiteDialect,
			wantSQL:  "1=1 AND date >= ? AND date <= ? AND category = ?",
			wantArgs: 3,
		},
		{
			name:     "postgres numbering follows present fields",
			filter:   core.ExpenseFilter{EndDate: end, Category: "Office"},
			dialect:  PostgresDialect,
			wantSQL:  "1=1 AND date <= $1 AND category = $2",
			wantArgs: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := BuildExpenseWhere(tt.filter, tt.dialect)
			if sql != tt.wantSQL {
				t.Errorf("sql = %q, want %q", sql, tt.wantSQL)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("args = %v, want %d args", args, tt.wantArgs)
			}
		})
	}
}

func TestDialectDateArgs(t *testing.T) {
	d := core.NewDate(2024, 3, 5)
	if got := SQLiteDialect.DateArg(d); got != "2024-03-05" {
		t.Errorf("sqlite date arg = %v", got)
	}
	if got, ok := PostgresDialect.DateArg(d).(time.Time); !ok || !got.Equal(d.Time) {
		t.Errorf("postgres date arg = %v", got)
	}
}

package view

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"inventory/internal/core"
)

func rec(id string, y, m, d int, category, amount string) core.ExpenseByCategory {
	return core.ExpenseByCategory{ID: id, Date: core.NewDate(y, m, d), Category: category, Amount: decimal.RequireFromString(amount)}
}

func sample() []core.ExpenseByCategory {
	return []core.ExpenseByCategory{
		rec("1", 2024, 1, 5, "Office", "100"),
		rec("2", 2024, 1, 20, "Salaries", "200"),
		rec("3", 2024, 2, 10, "Office", "50"),
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		records   []core.ExpenseByCategory
		err       error
		sel       core.BreakdownFilter
		wantState State
		wantLen   int
	}{
		{name: "ready", records: sample(), wantState: Ready, wantLen: 2},
		{name: "empty list is ready", records: []core.ExpenseByCategory{}, wantState: Ready, wantLen: 0},
		{name: "missing list is an error", records: nil, wantState: Error},
		{name: "fetch failure", records: sample(), err: errors.New("timeout"), wantState: Error},
		{name: "category selection", records: sample(), sel: core.BreakdownFilter{Category: "Salaries"}, wantState: Ready, wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Build(tt.records, tt.err, tt.sel)
			if m.State != tt.wantState {
				t.Fatalf("state = %v, want %v", m.State, tt.wantState)
			}
			if len(m.Totals) != tt.wantLen {
				t.Fatalf("got %d totals, want %d", len(m.Totals), tt.wantLen)
			}
			if m.State == Error && m.Message != ErrorMessage {
				t.Fatalf("unexpected error message %q", m.Message)
			}
			if m.Selection.Category == "" {
				t.Fatalf("selection must default to All")
			}
		})
	}
}

func TestModelTotal(t *testing.T) {
	m := Build(sample(), nil, core.BreakdownFilter{})
	if got := m.Total().Amount; !got.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("total = %s, want 350", got)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Loading: "loading", Error: "error", Ready: "ready", State(9): "unknown"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}

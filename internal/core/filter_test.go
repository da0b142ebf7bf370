package core

import (
	"errors"
	"testing"
)

func TestParseExpenseFilter(t *testing.T) {
	tests := []struct {
		name                 string
		start, end, category string
		wantErr              bool
		wantKey              string
	}{
		{name: "empty", wantKey: "||All"},
		{name: "all sentinel", category: "All", wantKey: "||All"},
		{name: "full", start: "2024-01-01", end: "2024-01-31", category: "Office", wantKey: "2024-01-01|2024-01-31|Office"},
		{name: "only end", end: "2024-01-31", wantKey: "|2024-01-31|All"},
		{name: "bad start", start: "yesterday", wantErr: true},
		{name: "bad end", end: "2024-13-01", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseExpenseFilter(tt.start, tt.end, tt.category)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFilter) {
					t.Fatalf("expected ErrInvalidFilter, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := f.Key(); got != tt.wantKey {
				t.Fatalf("Key() = %q, want %q", got, tt.wantKey)
			}
		})
	}
}

func TestExpenseFilterMatches(t *testing.T) {
	records := sample()
	tests := []struct {
		name   string
		filter ExpenseFilter
		want   []string
	}{
		{name: "no constraint", filter: ExpenseFilter{}, want: []string{"1", "2", "3"}},
		{name: "start only", filter: ExpenseFilter{StartDate: NewDate(2024, 1, 20)}, want: []string{"2", "3"}},
		{name: "end only", filter: ExpenseFilter{EndDate: NewDate(2024, 1, 20)}, want: []string{"1", "3"}},
		{name: "category", filter: ExpenseFilter{Category: "Salaries"}, want: []string{"3"}},
		{name: "all sentinel", filter: ExpenseFilter{Category: AllCategories}, want: []string{"1", "2", "3"}},
		{
			name:   "conjunction",
			filter: ExpenseFilter{StartDate: NewDate(2024, 1, 1), EndDate: NewDate(2024, 1, 31), Category: "Office"},
			want:   []string{"1"},
		},
		{name: "category is exact", filter: ExpenseFilter{Category: "office"}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range records {
				if tt.filter.Matches(r) {
					got = append(got, r.ID)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

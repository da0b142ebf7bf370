package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"inventory/internal/cache"
	"inventory/internal/core"
	"inventory/internal/log"
	"inventory/internal/metrics"
)

func expense(id string, y, m, d int, category, amount string) core.ExpenseByCategory {
	return core.ExpenseByCategory{
		ID:       id,
		Date:     core.NewDate(y, m, d),
		Category: category,
		Amount:   decimal.RequireFromString(amount),
	}
}

func sampleExpenses() []core.ExpenseByCategory {
	return []core.ExpenseByCategory{
		expense("3", 2024, 2, 10, "Office", "50"),
		expense("2", 2024, 1, 20, "Salaries", "200"),
		expense("1", 2024, 1, 5, "Office", "100"),
	}
}

func listFromSample(_ context.Context, f core.ExpenseFilter) ([]core.ExpenseByCategory, error) {
	var out []core.ExpenseByCategory
	for _, e := range sampleExpenses() {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestExpensesByCategoryUsesCache(t *testing.T) {
	reader := &fakeExpenseReader{fn: listFromSample}
	svc := NewExpenseQueryService(reader, cache.NewLRUCache[[]core.ExpenseByCategory](10, time.Minute), metrics.New(), log.Discard())
	ctx := context.Background()
	f := core.ExpenseFilter{Category: "Office"}

	first, err := svc.ExpensesByCategory(ctx, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.ExpensesByCategory(ctx, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reader.calls != 1 {
		t.Fatalf("expected a single store read, got %d", reader.calls)
	}
	if len(first) != 2 || len(second) != 2 || first[0].ID != second[0].ID {
		t.Fatalf("identical queries must give identical results: %v vs %v", first, second)
	}

	// "All" and no category share a cache entry
	svc.ExpensesByCategory(ctx, core.ExpenseFilter{Category: core.AllCategories})
	svc.ExpensesByCategory(ctx, core.ExpenseFilter{})
	if reader.calls != 2 {
		t.Fatalf("expected All and empty category to share a key, got %d reads", reader.calls)
	}

	svc.Invalidate(ctx)
	svc.ExpensesByCategory(ctx, f)
	if reader.calls != 3 {
		t.Fatalf("expected a store read after invalidation, got %d", reader.calls)
	}
}

func TestExpensesByCategoryWithoutCache(t *testing.T) {
	reader := &fakeExpenseReader{fn: func(context.Context, core.ExpenseFilter) ([]core.ExpenseByCategory, error) {
		return nil, nil
	}}
	svc := NewExpenseQueryService(reader, nil, nil, log.Discard())

	got, err := svc.ExpensesByCategory(context.Background(), core.ExpenseFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	svc.Invalidate(context.Background())
}

func TestExpensesByCategoryError(t *testing.T) {
	boom := errors.New("connection refused")
	reader := &fakeExpenseReader{fn: func(context.Context, core.ExpenseFilter) ([]core.ExpenseByCategory, error) {
		return []core.ExpenseByCategory{expense("1", 2024, 1, 1, "Office", "1")}, boom
	}}
	c := cache.NewLRUCache[[]core.ExpenseByCategory](10, time.Minute)
	svc := NewExpenseQueryService(reader, c, nil, log.Discard())

	got, err := svc.ExpensesByCategory(context.Background(), core.ExpenseFilter{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if got != nil {
		t.Fatalf("no partial result expected, got %v", got)
	}
	if c.Size() != 0 {
		t.Fatalf("errors must not be cached")
	}
}

func TestBreakdown(t *testing.T) {
	reader := &fakeExpenseReader{fn: listFromSample}
	svc := NewExpenseQueryService(reader, nil, nil, log.Discard())

	tests := []struct {
		name   string
		filter core.BreakdownFilter
		want   map[string]string
	}{
		{
			name:   "all categories",
			filter: core.BreakdownFilter{Category: core.AllCategories},
			want:   map[string]string{"Office": "150", "Salaries": "200"},
		},
		{
			name:   "january",
			filter: core.BreakdownFilter{Category: core.AllCategories, StartDate: core.NewDate(2024, 1, 1), EndDate: core.NewDate(2024, 1, 31)},
			want:   map[string]string{"Office": "100", "Salaries": "200"},
		},
		{
			name:   "office only",
			filter: core.BreakdownFilter{Category: "Office"},
			want:   map[string]string{"Office": "150"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Breakdown(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for _, total := range got {
				if want, ok := tt.want[total.Name]; !ok || !total.Amount.Equal(decimal.RequireFromString(want)) {
					t.Errorf("%s = %s, want %s", total.Name, total.Amount, want)
				}
				if total.Color != core.ColorFor(total.Name) {
					t.Errorf("%s has color %s", total.Name, total.Color)
				}
			}
		})
	}

	if reader.calls != len(tests) {
		t.Fatalf("breakdown must fetch the unfiltered list once per call, got %d reads", reader.calls)
	}
}

func TestBreakdownError(t *testing.T) {
	reader := &fakeExpenseReader{fn: func(context.Context, core.ExpenseFilter) ([]core.ExpenseByCategory, error) {
		return nil, errors.New("down")
	}}
	svc := NewExpenseQueryService(reader, nil, nil, log.Discard())
	if _, err := svc.Breakdown(context.Background(), core.BreakdownFilter{}); err == nil {
		t.Fatalf("expected error")
	}
}

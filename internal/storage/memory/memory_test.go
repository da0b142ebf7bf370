package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"inventory/internal/core"
)

func TestStoreListExpensesFilterAndOrder(t *testing.T) {
	s := New(DefaultSeed())
	ctx := context.Background()

	all, err := s.ListExpensesByCategory(ctx, core.ExpenseFilter{Category: core.AllCategories})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 4 || all[0].ID != "ebc-4" || all[3].ID != "ebc-1" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	jan, _ := s.ListExpensesByCategory(ctx, core.ExpenseFilter{
		StartDate: core.NewDate(2024, 1, 1),
		EndDate:   core.NewDate(2024, 1, 31),
		Category:  "Office",
	})
	if len(jan) != 1 || jan[0].ID != "ebc-1" {
		t.Fatalf("unexpected january office records: %+v", jan)
	}
}

func TestStoreListExpensesHonoursCancellation(t *testing.T) {
	s := New(DefaultSeed())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.ListExpensesByCategory(ctx, core.ExpenseFilter{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestStoreSaveIsIdempotent(t *testing.T) {
	s := New(Seed{})
	ctx := context.Background()
	rec := core.ExpenseByCategory{ID: "x", Date: core.NewDate(2024, 5, 1), Category: "Office", Amount: decimal.NewFromInt(3)}

	if ok, err := s.SaveExpenseByCategory(ctx, rec); err != nil || !ok {
		t.Fatalf("first save: ok=%v err=%v", ok, err)
	}
	if ok, err := s.SaveExpenseByCategory(ctx, rec); err != nil || ok {
		t.Fatalf("second save: ok=%v err=%v", ok, err)
	}
	if _, err := s.SaveExpenseByCategory(ctx, core.ExpenseByCategory{ID: "y"}); err == nil {
		t.Fatalf("expected validation error")
	}

	got, _ := s.ListExpensesByCategory(ctx, core.ExpenseFilter{})
	if len(got) != 1 {
		t.Fatalf("expected a single record, got %d", len(got))
	}
}

func TestStoreProducts(t *testing.T) {
	s := New(DefaultSeed())
	ctx := context.Background()

	desks, _ := s.ListProducts(ctx, "Desk")
	if len(desks) != 2 || desks[0].Name != "Desk Lamp" {
		t.Fatalf("unexpected search result: %+v", desks)
	}
	if got, _ := s.ListProducts(ctx, "desk"); len(got) != 0 {
		t.Fatalf("search is case sensitive, got %+v", got)
	}

	if _, err := s.CreateProduct(ctx, core.Product{ProductID: "prod-9", Name: "Whiteboard", StockQuantity: 999}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if _, err := s.CreateProduct(ctx, core.Product{ProductID: "prod-9", Name: "Again"}); err == nil {
		t.Fatalf("expected duplicate id error")
	}

	popular, _ := s.PopularProducts(ctx, 2)
	if len(popular) != 2 || popular[0].ProductID != "prod-9" || popular[1].ProductID != "prod-2" {
		t.Fatalf("unexpected popular products: %+v", popular)
	}
}

func TestStoreDashboardReads(t *testing.T) {
	s := New(DefaultSeed())
	ctx := context.Background()

	sales, _ := s.LatestSalesSummaries(ctx, 1)
	if len(sales) != 1 || sales[0].SalesSummaryID != "ss-2" {
		t.Fatalf("unexpected sales: %+v", sales)
	}
	purchases, _ := s.LatestPurchaseSummaries(ctx, 5)
	if len(purchases) != 2 || purchases[0].PurchaseSummaryID != "ps-2" {
		t.Fatalf("unexpected purchases: %+v", purchases)
	}
	summaries, _ := s.LatestExpenseSummaries(ctx, 5)
	if len(summaries) != 2 || summaries[0].ExpenseSummaryID != "es-2" {
		t.Fatalf("unexpected expense summaries: %+v", summaries)
	}
	latest, _ := s.LatestExpensesByCategory(ctx, 2)
	if len(latest) != 2 || latest[0].ID != "ebc-4" {
		t.Fatalf("unexpected latest expenses: %+v", latest)
	}
	users, _ := s.ListUsers(ctx)
	if len(users) != 2 || users[0].Name != "Ada Park" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()

	// No file -> defaults
	s, err := NewFromFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := s.ListExpensesByCategory(context.Background(), core.ExpenseFilter{}); len(got) != 4 {
		t.Fatalf("expected default seed, got %d records", len(got))
	}

	seed := `{"expenseByCategory":[
		{"expenseByCategoryId":"a","expenseSummaryId":"s","date":"2024-03-01","category":"Office","amount":"10.10"},
		{"expenseByCategoryId":"a","expenseSummaryId":"s","date":"2024-03-01","category":"Office","amount":"10.10"},
		{"expenseByCategoryId":"b","date":"2024-03-02T10:00:00Z","category":"Travel","amount":5}
	]}`
	if err := os.WriteFile(filepath.Join(dir, "seed.json"), []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err = NewFromFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := s.ListExpensesByCategory(context.Background(), core.ExpenseFilter{})
	if len(got) != 2 || got[0].ID != "b" || got[1].Amount.String() != "10.1" {
		t.Fatalf("unexpected seeded records: %+v", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "seed.json"), []byte("{"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := NewFromFiles(dir); err == nil {
		t.Fatalf("expected decode error")
	}
}

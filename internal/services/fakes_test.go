package services

import (
	"context"

	"inventory/internal/core"
)

type fakeExpenseReader struct {
	calls int
	fn    func(ctx context.Context, f core.ExpenseFilter) ([]core.ExpenseByCategory, error)
}

func (f *fakeExpenseReader) ListExpensesByCategory(ctx context.Context, filter core.ExpenseFilter) ([]core.ExpenseByCategory, error) {
	f.calls++
	return f.fn(ctx, filter)
}

type fakeRecorder struct {
	saved map[string]core.ExpenseByCategory
	err   error
}

func (f *fakeRecorder) SaveExpenseByCategory(_ context.Context, e core.ExpenseByCategory) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.saved == nil {
		f.saved = map[string]core.ExpenseByCategory{}
	}
	if _, ok := f.saved[e.ID]; ok {
		return false, nil
	}
	f.saved[e.ID] = e
	return true, nil
}

type fakeProductStore struct {
	listFn   func(ctx context.Context, search string) ([]core.Product, error)
	createFn func(ctx context.Context, p core.Product) (core.Product, error)
}

func (f *fakeProductStore) ListProducts(ctx context.Context, search string) ([]core.Product, error) {
	return f.listFn(ctx, search)
}

func (f *fakeProductStore) CreateProduct(ctx context.Context, p core.Product) (core.Product, error) {
	return f.createFn(ctx, p)
}

type fakeDashboardReader struct {
	popularFn   func(ctx context.Context, limit int) ([]core.Product, error)
	salesFn     func(ctx context.Context, limit int) ([]core.SalesSummary, error)
	purchasesFn func(ctx context.Context, limit int) ([]core.PurchaseSummary, error)
	expensesFn  func(ctx context.Context, limit int) ([]core.ExpenseSummary, error)
	byCatFn     func(ctx context.Context, limit int) ([]core.ExpenseByCategory, error)
}

func (f *fakeDashboardReader) PopularProducts(ctx context.Context, limit int) ([]core.Product, error) {
	return f.popularFn(ctx, limit)
}

func (f *fakeDashboardReader) LatestSalesSummaries(ctx context.Context, limit int) ([]core.SalesSummary, error) {
	return f.salesFn(ctx, limit)
}

func (f *fakeDashboardReader) LatestPurchaseSummaries(ctx context.Context, limit int) ([]core.PurchaseSummary, error) {
	return f.purchasesFn(ctx, limit)
}

func (f *fakeDashboardReader) LatestExpenseSummaries(ctx context.Context, limit int) ([]core.ExpenseSummary, error) {
	return f.expensesFn(ctx, limit)
}

func (f *fakeDashboardReader) LatestExpensesByCategory(ctx context.Context, limit int) ([]core.ExpenseByCategory, error) {
	return f.byCatFn(ctx, limit)
}

type countingInvalidator struct{ n int }

func (c *countingInvalidator) Invalidate(context.Context) { c.n++ }

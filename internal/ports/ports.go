package ports

import (
	"context"

	"inventory/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseReader returns expense-by-category records matching a filter,
	// newest first.
	ExpenseReader interface {
		ListExpensesByCategory(ctx context.Context, f core.ExpenseFilter) ([]core.ExpenseByCategory, error)
	}

	// ExpenseRecorder persists ingested records. Inserting an existing id is a
	// no-op and reports inserted=false.
	ExpenseRecorder interface {
		SaveExpenseByCategory(ctx context.Context, e core.ExpenseByCategory) (inserted bool, err error)
	}

	ProductStore interface {
		// ListProducts returns products whose name contains search; an empty
		// search returns every product.
		ListProducts(ctx context.Context, search string) ([]core.Product, error)
		CreateProduct(ctx context.Context, p core.Product) (core.Product, error)
	}

	UserReader interface {
		ListUsers(ctx context.Context) ([]core.User, error)
	}

	// DashboardReader provides the "top N" and "latest N" reads of the dashboard.
	DashboardReader interface {
		PopularProducts(ctx context.Context, limit int) ([]core.Product, error)
		LatestSalesSummaries(ctx context.Context, limit int) ([]core.SalesSummary, error)
		LatestPurchaseSummaries(ctx context.Context, limit int) ([]core.PurchaseSummary, error)
		LatestExpenseSummaries(ctx context.Context, limit int) ([]core.ExpenseSummary, error)
		LatestExpensesByCategory(ctx context.Context, limit int) ([]core.ExpenseByCategory, error)
	}

	// Pinger reports whether the underlying store is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)

package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"inventory/internal/core"
	"inventory/internal/ports"
)

// Store keeps every entity in process memory. It backs local development
// and the handler tests.
type Store struct {
	mu        sync.RWMutex
	expenses  []core.ExpenseByCategory
	byID      map[string]struct{}
	products  []core.Product
	users     []core.User
	sales     []core.SalesSummary
	purchases []core.PurchaseSummary
	summaries []core.ExpenseSummary
}

var (
	_ ports.ExpenseReader   = (*Store)(nil)
	_ ports.ExpenseRecorder = (*Store)(nil)
	_ ports.ProductStore    = (*Store)(nil)
	_ ports.UserReader      = (*Store)(nil)
	_ ports.DashboardReader = (*Store)(nil)
	_ ports.Pinger          = (*Store)(nil)
)

// Seed is the on-disk and in-code shape of the initial data set.
type Seed struct {
	Expenses  []core.ExpenseByCategory `json:"expenseByCategory"`
	Products  []core.Product           `json:"products"`
	Users     []core.User              `json:"users"`
	Sales     []core.SalesSummary      `json:"salesSummary"`
	Purchases []core.PurchaseSummary   `json:"purchaseSummary"`
	Summaries []core.ExpenseSummary    `json:"expenseSummary"`
}

func New(seed Seed) *Store {
	s := &Store{byID: make(map[string]struct{})}
	for _, e := range seed.Expenses {
		if _, dup := s.byID[e.ID]; dup {
			continue
		}
		s.byID[e.ID] = struct{}{}
		s.expenses = append(s.expenses, e)
	}
	s.products = append(s.products, seed.Products...)
	s.users = append(s.users, seed.Users...)
	s.sales = append(s.sales, seed.Sales...)
	s.purchases = append(s.purchases, seed.Purchases...)
	s.summaries = append(s.summaries, seed.Summaries...)
	return s
}

// NewFromFiles loads seed.json from base. A missing or unreadable file falls
// back to DefaultSeed.
func NewFromFiles(base string) (*Store, error) {
	data, err := os.ReadFile(filepath.Join(base, "seed.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return New(DefaultSeed()), nil
		}
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return New(seed), nil
}

// DefaultSeed is a small demo data set.
func DefaultSeed() Seed {
	d := core.NewDate
	amt := decimal.RequireFromString
	rating := func(v float64) *float64 { return &v }
	change := func(v float64) *float64 { return &v }
	return Seed{
		Expenses: []core.ExpenseByCategory{
			{ID: "ebc-1", ExpenseSummaryID: "es-1", Date: d(2024, 1, 5), Category: "Office", Amount: amt("100")},
			{ID: "ebc-2", ExpenseSummaryID: "es-1", Date: d(2024, 1, 12), Category: "Salaries", Amount: amt("200")},
			{ID: "ebc-3", ExpenseSummaryID: "es-2", Date: d(2024, 2, 3), Category: "Office", Amount: amt("50")},
			{ID: "ebc-4", ExpenseSummaryID: "es-2", Date: d(2024, 2, 20), Category: "Professional", Amount: amt("75.50")},
		},
		Products: []core.Product{
			{ProductID: "prod-1", Name: "Standing Desk", Price: 349.99, Rating: rating(4.6), StockQuantity: 120},
			{ProductID: "prod-2", Name: "Desk Lamp", Price: 24.5, Rating: rating(3.9), StockQuantity: 310},
			{ProductID: "prod-3", Name: "Office Chair", Price: 189, StockQuantity: 75},
		},
		Users: []core.User{
			{UserID: "user-1", Name: "Ada Park", Email: "ada@example.com"},
			{UserID: "user-2", Name: "Luis Ortega", Email: "luis@example.com"},
		},
		Sales: []core.SalesSummary{
			{SalesSummaryID: "ss-1", TotalValue: 12500, ChangePercentage: change(4.2), Date: d(2024, 1, 31)},
			{SalesSummaryID: "ss-2", TotalValue: 13900, ChangePercentage: change(11.2), Date: d(2024, 2, 29)},
		},
		Purchases: []core.PurchaseSummary{
			{PurchaseSummaryID: "ps-1", TotalPurchased: 8300, Date: d(2024, 1, 31)},
			{PurchaseSummaryID: "ps-2", TotalPurchased: 7100, ChangePercentage: change(-14.5), Date: d(2024, 2, 29)},
		},
		Summaries: []core.ExpenseSummary{
			{ExpenseSummaryID: "es-1", TotalExpenses: 300, Date: d(2024, 1, 31)},
			{ExpenseSummaryID: "es-2", TotalExpenses: 125.5, Date: d(2024, 2, 29)},
		},
	}
}

func (s *Store) Ping(context.Context) error { return nil }

// ListExpensesByCategory returns the matching records, newest first.
func (s *Store) ListExpensesByCategory(ctx context.Context, f core.ExpenseFilter) ([]core.ExpenseByCategory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]core.ExpenseByCategory, 0, len(s.expenses))
	for _, e := range s.expenses {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()
	sortExpenses(out)
	return out, nil
}

func (s *Store) LatestExpensesByCategory(ctx context.Context, limit int) ([]core.ExpenseByCategory, error) {
	out, err := s.ListExpensesByCategory(ctx, core.ExpenseFilter{})
	if err != nil {
		return nil, err
	}
	return head(out, limit), nil
}

// SaveExpenseByCategory ignores records whose id is already stored.
func (s *Store) SaveExpenseByCategory(_ context.Context, e core.ExpenseByCategory) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[e.ID]; ok {
		return false, nil
	}
	s.byID[e.ID] = struct{}{}
	s.expenses = append(s.expenses, e)
	return true, nil
}

func (s *Store) ListProducts(ctx context.Context, search string) ([]core.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]core.Product, 0, len(s.products))
	for _, p := range s.products {
		if search == "" || strings.Contains(p.Name, search) {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, nil
}

func (s *Store) PopularProducts(_ context.Context, limit int) ([]core.Product, error) {
	s.mu.RLock()
	out := append([]core.Product(nil), s.products...)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StockQuantity != out[j].StockQuantity {
			return out[i].StockQuantity > out[j].StockQuantity
		}
		return out[i].ProductID < out[j].ProductID
	})
	return head(out, limit), nil
}

func (s *Store) CreateProduct(_ context.Context, p core.Product) (core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.products {
		if existing.ProductID == p.ProductID {
			return core.Product{}, fmt.Errorf("product %s already exists", p.ProductID)
		}
	}
	s.products = append(s.products, p)
	return p, nil
}

func (s *Store) ListUsers(context.Context) ([]core.User, error) {
	s.mu.RLock()
	out := append([]core.User{}, s.users...)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (s *Store) LatestSalesSummaries(_ context.Context, limit int) ([]core.SalesSummary, error) {
	s.mu.RLock()
	out := append([]core.SalesSummary{}, s.sales...)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return head(out, limit), nil
}

func (s *Store) LatestPurchaseSummaries(_ context.Context, limit int) ([]core.PurchaseSummary, error) {
	s.mu.RLock()
	out := append([]core.PurchaseSummary{}, s.purchases...)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return head(out, limit), nil
}

func (s *Store) LatestExpenseSummaries(_ context.Context, limit int) ([]core.ExpenseSummary, error) {
	s.mu.RLock()
	out := append([]core.ExpenseSummary{}, s.summaries...)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return head(out, limit), nil
}

func sortExpenses(out []core.ExpenseByCategory) {
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
}

func head[T any](in []T, limit int) []T {
	if limit >= 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}

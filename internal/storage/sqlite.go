package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"inventory/internal/core"
	"inventory/internal/ports"

	_ "modernc.org/sqlite"
)

const expenseColumns = "expense_by_category_id, expense_summary_id, date, category, amount"

// SQLiteRepository implements every storage port on top of a single sqlite
// database file. The handle is owned by the repository and released by Close.
type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ ports.ExpenseReader   = (*SQLiteRepository)(nil)
	_ ports.ExpenseRecorder = (*SQLiteRepository)(nil)
	_ ports.ProductStore    = (*SQLiteRepository)(nil)
	_ ports.UserReader      = (*SQLiteRepository)(nil)
	_ ports.DashboardReader = (*SQLiteRepository)(nil)
	_ ports.Pinger          = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunSQLiteMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListExpensesByCategory implements ports.ExpenseReader
func (r *SQLiteRepository) ListExpensesByCategory(ctx context.Context, f core.ExpenseFilter) (out []core.ExpenseByCategory, err error) {
	ctx, span := startSpan(ctx, "sqlite", "select", "expense_by_category")
	defer func() { endSpan(span, err) }()

	where, args := BuildExpenseWhere(f, SQLiteDialect)
	query := "SELECT " + expenseColumns + " FROM expense_by_category WHERE " + where +
		" ORDER BY date DESC, expense_by_category_id DESC"

	return r.queryExpenses(ctx, query, args...)
}

// LatestExpensesByCategory implements ports.DashboardReader
func (r *SQLiteRepository) LatestExpensesByCategory(ctx context.Context, limit int) (out []core.ExpenseByCategory, err error) {
	ctx, span := startSpan(ctx, "sqlite", "select", "expense_by_category")
	defer func() { endSpan(span, err) }()

	query := "SELECT " + expenseColumns + " FROM expense_by_category ORDER BY date DESC, expense_by_category_id DESC LIMIT ?"
	return r.queryExpenses(ctx, query, limit)
}

func (r *SQLiteRepository) queryExpenses(ctx context.Context, query string, args ...any) ([]core.ExpenseByCategory, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses by category: %w", err)
	}
	defer rows.Close()

	out := make([]core.ExpenseByCategory, 0)
	for rows.Next() {
		var (
			e            core.ExpenseByCategory
			date, amount string
		)
		if err := rows.Scan(&e.ID, &e.ExpenseSummaryID, &date, &e.Category, &amount); err != nil {
			return nil, fmt.Errorf("scan expense by category: %w", err)
		}
		if e.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("expense %s: parse amount %q: %w", e.ID, amount, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses by category: %w", err)
	}
	return out, nil
}

// SaveExpenseByCategory implements ports.ExpenseRecorder
func (r *SQLiteRepository) SaveExpenseByCategory(ctx context.Context, e core.ExpenseByCategory) (inserted bool, err error) {
	ctx, span := startSpan(ctx, "sqlite", "insert", "expense_by_category")
	defer func() { endSpan(span, err) }()

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO expense_by_category ("+expenseColumns+") VALUES (?, ?, ?, ?, ?) "+
			"ON CONFLICT(expense_by_category_id) DO NOTHING",
		e.ID, e.ExpenseSummaryID, e.Date.String(), e.Category, e.Amount.String())
	if err != nil {
		return false, fmt.Errorf("insert expense by category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// ListProducts implements ports.ProductStore
func (r *SQLiteRepository) ListProducts(ctx context.Context, search string) (out []core.Product, err error) {
	ctx, span := startSpan(ctx, "sqlite", "select", "products")
	defer func() { endSpan(span, err) }()

	query := "SELECT product_id, name, price, rating, stock_quantity FROM products"
	var args []any
	if search != "" {
		query += " WHERE instr(name, ?) > 0"
		args = append(args, search)
	}
	query += " ORDER BY name, product_id"
	return r.queryProducts(ctx, query, args...)
}

// PopularProducts implements ports.DashboardReader
func (r *SQLiteRepository) PopularProducts(ctx context.Context, limit int) (out []core.Product, err error) {
	ctx, span := startSpan(ctx, "sqlite", "select", "products")
	defer func() { endSpan(span, err) }()

	return r.queryProducts(ctx,
		"SELECT product_id, name, price, rating, stock_quantity FROM products ORDER BY stock_quantity DESC, product_id LIMIT ?",
		limit)
}

func (r *SQLiteRepository) queryProducts(ctx context.Context, query string, args ...any) ([]core.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	out := make([]core.Product, 0)
	for rows.Next() {
		var (
			p      core.Product
			rating sql.NullFloat64
		)
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Price, &rating, &p.StockQuantity); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if rating.Valid {
			v := rating.Float64
			p.Rating = &v
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

// CreateProduct implements ports.ProductStore
func (r *SQLiteRepository) CreateProduct(ctx context.Context, p core.Product) (_ core.Product, err error) {
	ctx, span := startSpan(ctx, "sqlite", "insert", "products")
	defer func() { endSpan(span, err) }()

	var rating sql.NullFloat64
	if p.Rating != nil {
		rating = sql.NullFloat64{Float64: *p.Rating, Valid: true}
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO products (product_id, name, price, rating, stock_quantity) VALUES (?, ?, ?, ?, ?)",
		p.ProductID, p.Name, p.Price, rating, p.StockQuantity)
	if err != nil {
		return core.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

// ListUsers implements ports.UserReader
func (r *SQLiteRepository) ListUsers(ctx context.Context) (out []core.User, err error) {
	ctx, span := startSpan(ctx, "sqlite", "select", "users")
	defer func() { endSpan(span, err) }()

	rows, err := r.db.QueryContext(ctx, "SELECT user_id, name, email FROM users ORDER BY name, user_id")
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	out = make([]core.User, 0)
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.UserID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

// LatestSalesSummaries implements ports.DashboardReader
func (r *SQLiteRepository) LatestSalesSummaries(ctx context.Context, limit int) (out []core.SalesSummary, err error) {
	ctx, span := startSpan(ctx, "sqlite", "select", "sales_summary")
	defer func() { endSpan(span, err) }()

	rows, err := r.db.QueryContext(ctx,
		"SELECT sales_summary_id, total_value, change_percentage, date FROM sales_summary ORDER BY date DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query sales summary: %w", err)
	}
	defer rows.Close()

	out = make([]core.SalesSummary, 0)
	for rows.Next() {
		var (
			s      core.SalesSummary
			change sql.NullFloat64
			date   string
		)
		if err := rows.Scan(&s.SalesSummaryID, &s.TotalValue, &change, &date); err != nil {
			return nil, fmt.Errorf("scan sales summary: %w", err)
		}
		if s.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("sales summary %s: %w", s.SalesSummaryID, err)
		}
		s.ChangePercentage = nullFloat(change)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales summary: %w", err)
	}
	return out, nil
}

// LatestPurchaseSummaries implements ports.DashboardReader
func (r *SQLiteRepository) LatestPurchaseSummaries(ctx context.Context, limit int) (out []core.PurchaseSummary, err error) {
	ctx, span := startSpan(ctx, "sqlite", "select", "purchase_summary")
	defer func() { endSpan(span, err) }()

	rows, err := r.db.QueryContext(ctx,
		"SELECT purchase_summary_id, total_purchased, change_percentage, date FROM purchase_summary ORDER BY date DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query purchase summary: %w", err)
	}
	defer rows.Close()

	out = make([]core.PurchaseSummary, 0)
	for rows.Next() {
		var (
			s      core.PurchaseSummary
			change sql.NullFloat64
			date   string
		)
		if err := rows.Scan(&s.PurchaseSummaryID, &s.TotalPurchased, &change, &date); err != nil {
			return nil, fmt.Errorf("scan purchase summary: %w", err)
		}
		if s.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("purchase summary %s: %w", s.PurchaseSummaryID, err)
		}
		s.ChangePercentage = nullFloat(change)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase summary: %w", err)
	}
	return out, nil
}

// LatestExpenseSummaries implements ports.DashboardReader
func (r *SQLiteRepository) LatestExpenseSummaries(ctx context.Context, limit int) (out []core.ExpenseSummary, err error) {
	ctx, span := startSpan(ctx, "sqlite", "select", "expense_summary")
	defer func() { endSpan(span, err) }()

	rows, err := r.db.QueryContext(ctx,
		"SELECT expense_summary_id, total_expenses, date FROM expense_summary ORDER BY date DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query expense summary: %w", err)
	}
	defer rows.Close()

	out = make([]core.ExpenseSummary, 0)
	for rows.Next() {
		var (
			s    core.ExpenseSummary
			date string
		)
		if err := rows.Scan(&s.ExpenseSummaryID, &s.TotalExpenses, &date); err != nil {
			return nil, fmt.Errorf("scan expense summary: %w", err)
		}
		if s.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("expense summary %s: %w", s.ExpenseSummaryID, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense summary: %w", err)
	}
	return out, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"inventory/internal/core"
	"inventory/internal/ports"
)

const pgExpenseColumns = "expense_by_category_id, expense_summary_id, date, category, amount::text"

// PostgresRepository implements the storage ports on a pgx connection pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var (
	_ ports.ExpenseReader   = (*PostgresRepository)(nil)
	_ ports.ExpenseRecorder = (*PostgresRepository)(nil)
	_ ports.ProductStore    = (*PostgresRepository)(nil)
	_ ports.UserReader      = (*PostgresRepository)(nil)
	_ ports.DashboardReader = (*PostgresRepository)(nil)
	_ ports.Pinger          = (*PostgresRepository)(nil)
)

// NewPostgresRepository migrates the schema and opens the pool.
func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	if err := RunPostgresMigrations(dsn); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 25
	cfg.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// ListExpensesByCategory implements ports.ExpenseReader
func (r *PostgresRepository) ListExpensesByCategory(ctx context.Context, f core.ExpenseFilter) (out []core.ExpenseByCategory, err error) {
	ctx, span := startSpan(ctx, "postgresql", "select", "expense_by_category")
	defer func() { endSpan(span, err) }()

	where, args := BuildExpenseWhere(f, PostgresDialect)
	query := "SELECT " + pgExpenseColumns + " FROM expense_by_category WHERE " + where +
		" ORDER BY date DESC, expense_by_category_id DESC"

	return r.queryExpenses(ctx, query, args...)
}

// LatestExpensesByCategory implements ports.DashboardReader
func (r *PostgresRepository) LatestExpensesByCategory(ctx context.Context, limit int) (out []core.ExpenseByCategory, err error) {
	ctx, span := startSpan(ctx, "postgresql", "select", "expense_by_category")
	defer func() { endSpan(span, err) }()

	return r.queryExpenses(ctx,
		"SELECT "+pgExpenseColumns+" FROM expense_by_category ORDER BY date DESC, expense_by_category_id DESC LIMIT $1",
		limit)
}

func (r *PostgresRepository) queryExpenses(ctx context.Context, query string, args ...any) ([]core.ExpenseByCategory, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses by category: %w", err)
	}
	defer rows.Close()

	out := make([]core.ExpenseByCategory, 0)
	for rows.Next() {
		var (
			e      core.ExpenseByCategory
			date   time.Time
			amount string
		)
		if err := rows.Scan(&e.ID, &e.ExpenseSummaryID, &date, &e.Category, &amount); err != nil {
			return nil, fmt.Errorf("scan expense by category: %w", err)
		}
		e.Date = core.NewDate(date.Year(), int(date.Month()), date.Day())
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
func (r *PostgresRepository) SaveExpenseByCategory(ctx context.Context, e core.ExpenseByCategory) (inserted bool, err error) {
	ctx, span := startSpan(ctx, "postgresql", "insert", "expense_by_category")
	defer func() { endSpan(span, err) }()

	tag, err := r.pool.Exec(ctx,
		"INSERT INTO expense_by_category (expense_by_category_id, expense_summary_id, date, category, amount) "+
			"VALUES ($1, $2, $3, $4, $5::numeric) ON CONFLICT (expense_by_category_id) DO NOTHING",
		e.ID, e.ExpenseSummaryID, e.Date.Time, e.Category, e.Amount.String())
	if err != nil {
		return false, fmt.Errorf("insert expense by category: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListProducts implements ports.ProductStore
func (r *PostgresRepository) ListProducts(ctx context.Context, search string) (out []core.Product, err error) {
	ctx, span := startSpan(ctx, "postgresql", "select", "products")
	defer func() { endSpan(span, err) }()

	query := "SELECT product_id, name, price, rating, stock_quantity FROM products"
	var args []any
	if search != "" {
		query += " WHERE strpos(name, $1) > 0"
		args = append(args, search)
	}
	query += " ORDER BY name, product_id"
	return r.queryProducts(ctx, query, args...)
}

// PopularProducts implements ports.DashboardReader
func (r *PostgresRepository) PopularProducts(ctx context.Context, limit int) (out []core.Product, err error) {
	ctx, span := startSpan(ctx, "postgresql", "select", "products")
	defer func() { endSpan(span, err) }()

	return r.queryProducts(ctx,
		"SELECT product_id, name, price, rating, stock_quantity FROM products ORDER BY stock_quantity DESC, product_id LIMIT $1",
		limit)
}

func (r *PostgresRepository) queryProducts(ctx context.Context, query string, args ...any) ([]core.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	out := make([]core.Product, 0)
	for rows.Next() {
		var p core.Product
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Price, &p.Rating, &p.StockQuantity); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

// CreateProduct implements ports.ProductStore
func (r *PostgresRepository) CreateProduct(ctx context.Context, p core.Product) (_ core.Product, err error) {
	ctx, span := startSpan(ctx, "postgresql", "insert", "products")
	defer func() { endSpan(span, err) }()

	_, err = r.pool.Exec(ctx,
		"INSERT INTO products (product_id, name, price, rating, stock_quantity) VALUES ($1, $2, $3, $4, $5)",
		p.ProductID, p.Name, p.Price, p.Rating, p.StockQuantity)
	if err != nil {
		return core.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

// ListUsers implements ports.UserReader
func (r *PostgresRepository) ListUsers(ctx context.Context) (out []core.User, err error) {
	ctx, span := startSpan(ctx, "postgresql", "select", "users")
	defer func() { endSpan(span, err) }()

	rows, err := r.pool.Query(ctx, "SELECT user_id, name, email FROM users ORDER BY name, user_id")
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.User, error) {
		var u core.User
		err := row.Scan(&u.UserID, &u.Name, &u.Email)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect users: %w", err)
	}
	return out, nil
}

// LatestSalesSummaries implements ports.DashboardReader
func (r *PostgresRepository) LatestSalesSummaries(ctx context.Context, limit int) (out []core.SalesSummary, err error) {
	ctx, span := startSpan(ctx, "postgresql", "select", "sales_summary")
	defer func() { endSpan(span, err) }()

	rows, err := r.pool.Query(ctx,
		"SELECT sales_summary_id, total_value, change_percentage, date FROM sales_summary ORDER BY date DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("query sales summary: %w", err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.SalesSummary, error) {
		var (
			s    core.SalesSummary
			date time.Time
		)
		err := row.Scan(&s.SalesSummaryID, &s.TotalValue, &s.ChangePercentage, &date)
		s.Date = core.NewDate(date.Year(), int(date.Month()), date.Day())
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect sales summary: %w", err)
	}
	return out, nil
}

// LatestPurchaseSummaries implements ports.DashboardReader
func (r *PostgresRepository) LatestPurchaseSummaries(ctx context.Context, limit int) (out []core.PurchaseSummary, err error) {
	ctx, span := startSpan(ctx, "postgresql", "select", "purchase_summary")
	defer func() { endSpan(span, err) }()

	rows, err := r.pool.Query(ctx,
		"SELECT purchase_summary_id, total_purchased, change_percentage, date FROM purchase_summary ORDER BY date DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("query purchase summary: %w", err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.PurchaseSummary, error) {
		var (
			s    core.PurchaseSummary
			date time.Time
		)
		err := row.Scan(&s.PurchaseSummaryID, &s.TotalPurchased, &s.ChangePercentage, &date)
		s.Date = core.NewDate(date.Year(), int(date.Month()), date.Day())
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect purchase summary: %w", err)
	}
	return out, nil
}

// LatestExpenseSummaries implements ports.DashboardReader
func (r *PostgresRepository) LatestExpenseSummaries(ctx context.Context, limit int) (out []core.ExpenseSummary, err error) {
	ctx, span := startSpan(ctx, "postgresql", "select", "expense_summary")
	defer func() { endSpan(span, err) }()

	rows, err := r.pool.Query(ctx,
		"SELECT expense_summary_id, total_expenses, date FROM expense_summary ORDER BY date DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("query expense summary: %w", err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.ExpenseSummary, error) {
		var (
			s    core.ExpenseSummary
			date time.Time
		)
		err := row.Scan(&s.ExpenseSummaryID, &s.TotalExpenses, &date)
		s.Date = core.NewDate(date.Year(), int(date.Month()), date.Day())
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect expense summary: %w", err)
	}
	return out, nil
}

package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar date at UTC midnight. The zero value means "not set".
	Date struct {
		time.Time
	}

	// ExpenseByCategory is one categorized expense line. Records are created by
	// ingestion and never modified afterwards.
	ExpenseByCategory struct {
		ID               string          `json:"expenseByCategoryId"`
		ExpenseSummaryID string          `json:"expenseSummaryId"`
		Date             Date            `json:"date"`
		Category         string          `json:"category"`
		Amount           decimal.Decimal `json:"amount"`
	}

	Product struct {
		ProductID     string   `json:"productId"`
		Name          string   `json:"name"`
		Price         float64  `json:"price"`
		Rating        *float64 `json:"rating,omitempty"`
		StockQuantity int      `json:"stockQuantity"`
	}

	User struct {
		UserID string `json:"userId"`
		Name   string `json:"name"`
		Email  string `json:"email"`
	}

	SalesSummary struct {
		SalesSummaryID   string   `json:"salesSummaryId"`
		TotalValue       float64  `json:"totalValue"`
		ChangePercentage *float64 `json:"changePercentage,omitempty"`
		Date             Date     `json:"date"`
	}

	PurchaseSummary struct {
		PurchaseSummaryID string   `json:"purchaseSummaryId"`
		TotalPurchased    float64  `json:"totalPurchased"`
		ChangePercentage  *float64 `json:"changePercentage,omitempty"`
		Date              Date     `json:"date"`
	}

	ExpenseSummary struct {
		ExpenseSummaryID string  `json:"expenseSummaryId"`
		TotalExpenses    float64 `json:"totalExpenses"`
		Date             Date    `json:"date"`
	}

	// DashboardMetrics is the payload of the dashboard endpoint.
	DashboardMetrics struct {
		PopularProducts          []Product           `json:"popularProducts"`
		SalesSummary             []SalesSummary      `json:"salesSummary"`
		PurchaseSummary          []PurchaseSummary   `json:"purchaseSummary"`
		ExpenseSummary           []ExpenseSummary    `json:"expenseSummary"`
		ExpenseByCategorySummary []ExpenseByCategory `json:"expenseByCategorySummary"`
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptyID         = errors.New("empty id")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidStock    = errors.New("invalid stock quantity")
	ErrInvalidRating   = errors.New("invalid rating")
	ErrInvalidFilter   = errors.New("invalid filter")
	ErrInvalidDateSpan = errors.New("start date after end date")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD as well as full RFC 3339 timestamps, which
// are truncated to their UTC calendar day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t = t.UTC()
	return NewDate(t.Year(), int(t.Month()), t.Day()), nil
}

// IsEmpty returns true if the date is unset.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(strings.Trim(s, `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks an ingested record before it is persisted.
func (e ExpenseByCategory) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if e.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	if p.StockQuantity < 0 {
		return ErrInvalidStock
	}
	if p.Rating != nil && (*p.Rating < 0 || *p.Rating > 5) {
		return ErrInvalidRating
	}
	return nil
}

package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultColor is used for categories missing from the color table.
const DefaultColor = "#000000"

var categoryColors = map[string]string{
	AllCategories:  "#8884d8",
	"Office":       "#82ca9d",
	"Professional": "#ffc658",
	"Salaries":     "#d0ed57",
}

// categoryOrder keeps the selector options stable.
var categoryOrder = []string{AllCategories, "Office", "Professional", "Salaries"}

// CategoryTotal is the summed amount of one category, ready for charting.
type CategoryTotal struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Color  string          `json:"color"`
}

// BreakdownFilter is the view-side selection. Unlike ExpenseFilter, the date
// range only applies when both bounds are set.
type BreakdownFilter struct {
	Category  string
	StartDate Date
	EndDate   Date
}

// ParseBreakdownFilter never fails: unparsable dates are treated as unset and
// an empty category means AllCategories.
func ParseBreakdownFilter(category, startDate, endDate string) BreakdownFilter {
	f := BreakdownFilter{Category: strings.TrimSpace(category)}
	if f.Category == "" {
		f.Category = AllCategories
	}
	if d, err := ParseDate(startDate); err == nil {
		f.StartDate = d
	}
	if d, err := ParseDate(endDate); err == nil {
		f.EndDate = d
	}
	return f
}

// HasRange reports whether the inclusive date range is active.
func (f BreakdownFilter) HasRange() bool {
	return !f.StartDate.IsEmpty() && !f.EndDate.IsEmpty()
}

func (f BreakdownFilter) keep(e ExpenseByCategory) bool {
	if f.Category != "" && f.Category != AllCategories && e.Category != f.Category {
		return false
	}
	if f.HasRange() {
		if e.Date.Before(f.StartDate.Time) || e.Date.After(f.EndDate.Time) {
			return false
		}
	}
	return true
}

// Aggregate groups the records kept by f per category and sums their amounts.
// Totals are emitted in order of first appearance.
func Aggregate(records []ExpenseByCategory, f BreakdownFilter) []CategoryTotal {
	index := make(map[string]int)
	totals := make([]CategoryTotal, 0)
	for _, r := range records {
		if !f.keep(r) {
			continue
		}
		if i, ok := index[r.Category]; ok {
			totals[i].Amount = totals[i].Amount.Add(r.Amount)
			continue
		}
		index[r.Category] = len(totals)
		totals = append(totals, CategoryTotal{
			Name:   r.Category,
			Amount: r.Amount,
			Color:  ColorFor(r.Category),
		})
	}
	return totals
}

// ColorFor returns the chart color of a category.
func ColorFor(category string) string {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return DefaultColor
}

// Categories lists the selectable categories, AllCategories first.
func Categories() []string {
	return append([]string(nil), categoryOrder...)
}

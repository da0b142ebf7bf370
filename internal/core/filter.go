package core

import (
	"fmt"
	"strings"
)

// AllCategories is the category value that disables category filtering.
const AllCategories = "All"

// ExpenseFilter selects expense records on the query side. Every field is
// optional and the set fields are combined with AND.
type ExpenseFilter struct {
	StartDate Date
	EndDate   Date
	Category  string
}

// ParseExpenseFilter builds a filter from raw query values. Empty values are
// treated as absent; malformed dates are reported as ErrInvalidFilter.
func ParseExpenseFilter(startDate, endDate, category string) (ExpenseFilter, error) {
	var f ExpenseFilter
	if s := strings.TrimSpace(startDate); s != "" {
		d, err := ParseDate(s)
		if err != nil {
			return ExpenseFilter{}, fmt.Errorf("%w: startDate: %v", ErrInvalidFilter, err)
		}
		f.StartDate = d
	}
	if s := strings.TrimSpace(endDate); s != "" {
		d, err := ParseDate(s)
		if err != nil {
			return ExpenseFilter{}, fmt.Errorf("%w: endDate: %v", ErrInvalidFilter, err)
		}
		f.EndDate = d
	}
	f.Category = strings.TrimSpace(category)
	return f, nil
}

// HasCategory reports whether the filter constrains the category.
func (f ExpenseFilter) HasCategory() bool {
	return f.Category != "" && f.Category != AllCategories
}

// Matches applies the filter to a single record.
func (f ExpenseFilter) Matches(e ExpenseByCategory) bool {
	if !f.StartDate.IsEmpty() && e.Date.Before(f.StartDate.Time) {
		return false
	}
	if !f.EndDate.IsEmpty() && e.Date.After(f.EndDate.Time) {
		return false
	}
	if f.HasCategory() && e.Category != f.Category {
		return false
	}
	return true
}

// Key is a stable identifier for caching query results.
func (f ExpenseFilter) Key() string {
	category := AllCategories
	if f.HasCategory() {
		category = f.Category
	}
	return f.StartDate.String() + "|" + f.EndDate.String() + "|" + category
}

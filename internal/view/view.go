// Package view turns a fetched expense list into what the expenses page and
// the report CLI render: a loading/error/ready state plus per-category totals.
package view

import (
	"inventory/internal/core"
)

type State int

const (
	Loading State = iota
	Error
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Error:
		return "error"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

const (
	LoadingMessage = "Loading data..."
	ErrorMessage   = "Failed to load expense data. Please try again later."
)

// Model is a render-ready snapshot.
type Model struct {
	State     State
	Message   string
	Selection core.BreakdownFilter
	Totals    []core.CategoryTotal
}

// Build derives the model of a finished fetch. A failed fetch or a missing
// list (nil) is an Error; an empty list is Ready with no totals.
func Build(records []core.ExpenseByCategory, fetchErr error, sel core.BreakdownFilter) Model {
	if sel.Category == "" {
		sel.Category = core.AllCategories
	}
	if fetchErr != nil || records == nil {
		return Model{State: Error, Message: ErrorMessage, Selection: sel}
	}
	return Model{
		State:     Ready,
		Selection: sel,
		Totals:    core.Aggregate(records, sel),
	}
}

// Total sums the amounts of every slice.
func (m Model) Total() core.CategoryTotal {
	t := core.CategoryTotal{Name: "Total", Color: core.DefaultColor}
	for _, c := range m.Totals {
		t.Amount = t.Amount.Add(c.Amount)
	}
	return t
}

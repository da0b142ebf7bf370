package http

import (
	"html/template"
	"net/http"

	"github.com/shopspring/decimal"

	"inventory/internal/core"
	"inventory/internal/log"
	"inventory/internal/view"
)

const errExpensesByCategory = "Error retrieving expenses by category"

var templateFuncs = template.FuncMap{
	"amount": func(d decimal.Decimal) string { return core.FormatAmount(d) },
}

// handleExpensesByCategory lists the records matching the optional
// startDate, endDate and category filters, newest first. Every failure,
// including a malformed date, gets the same 500 body.
func (s *Server) handleExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)
	q := ParseExpenseQuery(r.URL.Query())

	filter, err := q.Filter()
	if err != nil {
		logger.WarnContext(ctx, "Invalid expense filter",
			append(log.NewFields().
				WithFilter(q.StartDate, q.EndDate, q.Category).
				WithError(err).
				ToSlice(), "error_type", log.ErrorTypeValidation)...)
		writeMessage(w, http.StatusInternalServerError, errExpensesByCategory)
		return
	}

	qctx, cancel := withQueryTimeout(ctx)
	defer cancel()
	records, err := s.expenses.ExpensesByCategory(qctx, filter)
	if err != nil {
		log.NewStructuredLogger(logger).LogError(ctx, "Expenses by category query failed", err, log.OpQuery,
			log.NewFields().WithFilter(q.StartDate, q.EndDate, q.Category))
		writeMessage(w, http.StatusInternalServerError, errExpensesByCategory)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// handleExpenseBreakdown returns per-category totals computed the way the
// expenses page computes them.
func (s *Server) handleExpenseBreakdown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sel := ParseExpenseQuery(r.URL.Query()).Breakdown()

	qctx, cancel := withQueryTimeout(ctx)
	defer cancel()
	totals, err := s.expenses.Breakdown(qctx, sel)
	if err != nil {
		log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "Expense breakdown failed", err, log.OpAggregate,
			log.NewFields().WithFilter(sel.StartDate.String(), sel.EndDate.String(), sel.Category))
		writeMessage(w, http.StatusInternalServerError, "Error retrieving expense breakdown")
		return
	}

	writeJSON(w, http.StatusOK, totals)
}

type categoryOption struct {
	Name     string
	Selected bool
}

type expensesPage struct {
	Model      view.Model
	Total      core.CategoryTotal
	Categories []categoryOption
	StartDate  string
	EndDate    string
	Chart      []core.CategoryTotal
}

// handleExpensesPage renders the breakdown page with the current selection.
func (s *Server) handleExpensesPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	if s.templates == nil {
		logger.ErrorContext(ctx, "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	q := ParseExpenseQuery(r.URL.Query())
	sel := q.Breakdown()

	qctx, cancel := withQueryTimeout(ctx)
	defer cancel()
	records, err := s.expenses.ExpensesByCategory(qctx, core.ExpenseFilter{})
	if err != nil {
		log.NewStructuredLogger(logger).LogError(ctx, "Expenses page fetch failed", err, log.OpQuery, nil)
	}
	model := view.Build(records, err, sel)

	page := expensesPage{
		Model:     model,
		Total:     model.Total(),
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Chart:     model.Totals,
	}
	for _, c := range core.Categories() {
		page.Categories = append(page.Categories, categoryOption{Name: c, Selected: c == sel.Category})
	}
	if page.Chart == nil {
		page.Chart = []core.CategoryTotal{}
	}

	status := http.StatusOK
	if model.State == view.Error {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "expenses.html", page); err != nil {
		logger.ErrorContext(ctx, "Template execution failed",
			log.FieldError, err,
			"template", "expenses.html",
			log.FieldOperation, log.OpRender)
	}
}

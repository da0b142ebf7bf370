// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"inventory/internal/core"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrBadRequestBody is returned when a request body is not a single JSON value.
var ErrBadRequestBody = errors.New("malformed request body")

// ExpenseQuery holds the raw filter parameters shared by the expense
// endpoints and the expenses page.
type ExpenseQuery struct {
	StartDate string
	EndDate   string
	Category  string
}

// ParseExpenseQuery reads startDate, endDate and category from query values.
func ParseExpenseQuery(query url.Values) ExpenseQuery {
	return ExpenseQuery{
		StartDate: sanitizeInput(query.Get("startDate")),
		EndDate:   sanitizeInput(query.Get("endDate")),
		Category:  sanitizeInput(query.Get("category")),
	}
}

// Filter is the query-side interpretation: each set value constrains the
// result and malformed dates are an error.
func (q ExpenseQuery) Filter() (core.ExpenseFilter, error) {
	return core.ParseExpenseFilter(q.StartDate, q.EndDate, q.Category)
}

// Breakdown is the view-side interpretation: malformed dates are unset and
// the range applies only when both bounds are present.
func (q ExpenseQuery) Breakdown() core.BreakdownFilter {
	return core.ParseBreakdownFilter(q.Category, q.StartDate, q.EndDate)
}

// DecodeJSONBody decodes exactly one JSON value from the request body into dst.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequestBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", ErrBadRequestBody)
	}
	return nil
}

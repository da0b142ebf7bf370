package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inventory/internal/core"
)

func TestExpensesByCategory(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/expenses/category" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"expenseByCategoryId":"e1","expenseSummaryId":"s1","date":"2024-01-05","category":"Office","amount":"100.25"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	got, err := c.ExpensesByCategory(context.Background(), core.ExpenseFilter{
		StartDate: core.NewDate(2024, 1, 1),
		Category:  "Office",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "category=Office&startDate=2024-01-01" {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if len(got) != 1 || got[0].ID != "e1" || got[0].Amount.String() != "100.25" || got[0].Date.String() != "2024-01-05" {
		t.Fatalf("unexpected records %+v", got)
	}
}

func TestBreakdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/expenses/breakdown" || r.URL.Query().Get("category") != "All" {
			t.Errorf("unexpected request %s", r.URL)
		}
		w.Write([]byte(`[{"name":"Office","amount":"150","color":"#82ca9d"}]`))
	}))
	defer srv.Close()

	got, err := New(srv.URL).Breakdown(context.Background(), core.BreakdownFilter{Category: core.AllCategories})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Office" || got[0].Amount.String() != "150" {
		t.Fatalf("unexpected totals %+v", got)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
		apiErr  bool
	}{
		{name: "server error with message", status: 500, body: `{"message":"Error retrieving expenses by category"}`, wantMsg: "Error retrieving expenses by category", apiErr: true},
		{name: "server error without json", status: 502, body: "bad gateway", apiErr: true},
		{name: "undecodable body", status: 200, body: `[{"amount":"abc"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).ExpensesByCategory(context.Background(), core.ExpenseFilter{})
			if err == nil {
				t.Fatalf("expected error")
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) != tt.apiErr {
				t.Fatalf("APIError match = %v, want %v (%v)", !tt.apiErr, tt.apiErr, err)
			}
			if tt.apiErr && (apiErr.StatusCode != tt.status || apiErr.Message != tt.wantMsg) {
				t.Fatalf("unexpected api error %+v", apiErr)
			}
		})
	}
}

func TestCancellation(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := New(srv.URL).ExpensesByCategory(ctx, core.ExpenseFilter{})
		errc <- err
	}()

	<-started
	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("request was not aborted")
	}
}

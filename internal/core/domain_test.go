package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-01-15", "2024-01-15", true},
		{" 2024-02-29 ", "2024-02-29", true},
		{"2024-01-15T00:00:00.000Z", "2024-01-15", true},
		{"2024-01-15T23:30:00-02:00", "2024-01-16", true}, // normalized to UTC
		{"2023-02-29", "", false},
		{"15/01/2024", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.want {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestExpenseByCategoryJSON(t *testing.T) {
	rec := ExpenseByCategory{
		ID:               "e1",
		ExpenseSummaryID: "s1",
		Date:             NewDate(2024, 1, 15),
		Category:         "Office",
		Amount:           decimal.RequireFromString("100.25"),
	}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(b)
	for _, want := range []string{`"expenseByCategoryId":"e1"`, `"date":"2024-01-15"`, `"amount":"100.25"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in %s", want, body)
		}
	}
}

func TestExpenseByCategoryValidate(t *testing.T) {
	good := ExpenseByCategory{ID: "e1", Date: NewDate(2024, 1, 1), Category: "Office", Amount: decimal.NewFromInt(10)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		rec  ExpenseByCategory
		want error
	}{
		{ExpenseByCategory{Date: NewDate(2024, 1, 1), Category: "Office"}, ErrEmptyID},
		{ExpenseByCategory{ID: "e1", Category: "Office"}, ErrInvalidDate},
		{ExpenseByCategory{ID: "e1", Date: NewDate(2024, 1, 1), Category: "  "}, ErrEmptyCategory},
		{ExpenseByCategory{ID: "e1", Date: NewDate(2024, 1, 1), Category: "Office", Amount: decimal.NewFromInt(-1)}, ErrInvalidAmount},
	}
	for i, tc := range bads {
		if err := tc.rec.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestProductValidate(t *testing.T) {
	rating := 4.5
	badRating := 7.0
	cases := []struct {
		p    Product
		want error
	}{
		{Product{Name: "Chair", Price: 10, StockQuantity: 3, Rating: &rating}, nil},
		{Product{Name: " ", Price: 10}, ErrEmptyName},
		{Product{Name: "Chair", Price: -1}, ErrInvalidPrice},
		{Product{Name: "Chair", StockQuantity: -2}, ErrInvalidStock},
		{Product{Name: "Chair", Rating: &badRating}, ErrInvalidRating},
	}
	for i, tc := range cases {
		err := tc.p.Validate()
		if tc.want == nil && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

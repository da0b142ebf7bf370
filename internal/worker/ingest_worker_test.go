package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"inventory/internal/amqp"
	"inventory/internal/core"
	"inventory/internal/log"
	"inventory/internal/services"
	"inventory/internal/sheets/google"
	"inventory/internal/storage/memory"
)

type fakeSheet struct {
	records []core.ExpenseByCategory
	rowErrs []google.RowError
	err     error
	calls   int
}

func (f *fakeSheet) Fetch(context.Context) ([]core.ExpenseByCategory, []google.RowError, error) {
	f.calls++
	return f.records, f.rowErrs, f.err
}

func record(id, category, amount string) core.ExpenseByCategory {
	return core.ExpenseByCategory{
		ID:       id,
		Date:     core.NewDate(2024, 3, 1),
		Category: category,
		Amount:   decimal.RequireFromString(amount),
	}
}

func newWorker(sheet SheetSource, interval time.Duration) (*IngestWorker, *memory.Store) {
	store := memory.New(memory.Seed{})
	ingest := services.NewIngestService(store, nil, nil, log.Discard())
	return NewIngestWorker(ingest, sheet, interval, log.Discard()), store
}

func TestHandleExpenseRecorded(t *testing.T) {
	w, store := newWorker(nil, 0)
	ctx := context.Background()

	msg := amqp.NewExpenseRecordedMessage(record("r-1", "Office", "12.5"))
	if err := w.HandleExpenseRecorded(ctx, msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// redelivery is harmless
	if err := w.HandleExpenseRecorded(ctx, msg); err != nil {
		t.Fatalf("unexpected error on redelivery: %v", err)
	}

	got, err := store.ListExpensesByCategory(ctx, core.ExpenseFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "r-1" {
		t.Fatalf("expected one stored record, got %+v", got)
	}
}

func TestHandleExpenseRecorded_InvalidIsPermanent(t *testing.T) {
	w, _ := newWorker(nil, 0)

	msg := amqp.NewExpenseRecordedMessage(record("r-1", "", "1"))
	err := w.HandleExpenseRecorded(context.Background(), msg)
	if err == nil {
		t.Fatal("expected error for empty category")
	}
	if !amqp.IsPermanent(err) {
		t.Errorf("expected permanent error, got %v", err)
	}
	if !errors.Is(err, services.ErrInvalidRecord) {
		t.Errorf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestImportFromSheets(t *testing.T) {
	sheet := &fakeSheet{
		records: []core.ExpenseByCategory{
			record("s-1", "Office", "10"),
			record("s-2", "Salaries", "20"),
		},
		rowErrs: []google.RowError{{Row: 4, Err: core.ErrInvalidDate}},
	}
	w, _ := newWorker(sheet, 0)
	ctx := context.Background()

	res, err := w.ImportFromSheets(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Inserted != 2 || res.Rejected != 1 || res.Duplicates != 0 {
		t.Errorf("first import = %+v", res)
	}

	res, err = w.ImportFromSheets(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Inserted != 0 || res.Duplicates != 2 {
		t.Errorf("second import = %+v, want only duplicates", res)
	}
}

func TestImportFromSheets_Errors(t *testing.T) {
	w, _ := newWorker(nil, 0)
	if _, err := w.ImportFromSheets(context.Background()); err == nil {
		t.Error("expected error without a sheet source")
	}

	w, _ = newWorker(&fakeSheet{err: errors.New("quota exceeded")}, 0)
	if _, err := w.ImportFromSheets(context.Background()); err == nil {
		t.Error("expected fetch error to propagate")
	}
}

func TestRunImports(t *testing.T) {
	t.Run("single run without interval", func(t *testing.T) {
		sheet := &fakeSheet{}
		w, _ := newWorker(sheet, 0)
		if err := w.RunImports(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sheet.calls != 1 {
			t.Errorf("expected 1 fetch, got %d", sheet.calls)
		}
	})

	t.Run("stops with context", func(t *testing.T) {
		w, _ := newWorker(&fakeSheet{}, time.Hour)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() { done <- w.RunImports(ctx) }()
		cancel()

		select {
		case err := <-done:
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("RunImports did not stop after cancel")
		}
	})

	t.Run("no sheet is a no-op", func(t *testing.T) {
		w, _ := newWorker(nil, time.Millisecond)
		if err := w.RunImports(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

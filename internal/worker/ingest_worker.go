package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory/internal/amqp"
	"inventory/internal/core"
	"inventory/internal/log"
	"inventory/internal/services"
	"inventory/internal/sheets/google"
)

// SheetSource returns the records currently present in a spreadsheet along
// with the rows it had to skip.
type SheetSource interface {
	Fetch(ctx context.Context) ([]core.ExpenseByCategory, []google.RowError, error)
}

// IngestWorker feeds expense-by-category records into storage from the
// message queue and, optionally, from a spreadsheet on a fixed interval.
type IngestWorker struct {
	ingest   *services.IngestService
	sheets   SheetSource
	interval time.Duration
	logger   *log.Logger
}

// NewIngestWorker creates a worker. sheets may be nil to disable imports.
func NewIngestWorker(ingest *services.IngestService, sheets SheetSource, interval time.Duration, logger *log.Logger) *IngestWorker {
	return &IngestWorker{
		ingest:   ingest,
		sheets:   sheets,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleExpenseRecorded stores the record carried by msg. Records that fail
// validation are marked permanent so the consumer drops them.
func (w *IngestWorker) HandleExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	w.logger.DebugContext(ctx, "Processing expense record message",
		log.FieldRecordID, msg.ID,
		log.FieldCategory, msg.Category,
		"timestamp", msg.Timestamp)

	_, err := w.ingest.Record(ctx, services.SourceAMQP, msg.ToRecord())
	if errors.Is(err, services.ErrInvalidRecord) {
		return amqp.Permanent(err)
	}
	return err
}

// ImportFromSheets runs one spreadsheet import. Rows the sheet could not
// parse are counted as rejected.
func (w *IngestWorker) ImportFromSheets(ctx context.Context) (services.IngestResult, error) {
	if w.sheets == nil {
		return services.IngestResult{}, errors.New("no spreadsheet configured")
	}

	records, rowErrs, err := w.sheets.Fetch(ctx)
	if err != nil {
		return services.IngestResult{}, fmt.Errorf("fetch spreadsheet: %w", err)
	}

	res, err := w.ingest.RecordBatch(ctx, services.SourceSheets, records)
	res.Rejected += len(rowErrs)
	if err != nil {
		return res, fmt.Errorf("import spreadsheet: %w", err)
	}

	w.logger.InfoContext(ctx, "Spreadsheet import completed",
		log.FieldOperation, log.OpImport,
		"inserted", res.Inserted,
		"duplicates", res.Duplicates,
		"rejected", res.Rejected)
	return res, nil
}

// RunImports imports once immediately and then on every tick until ctx is
// done. With a non-positive interval it imports once and returns.
func (w *IngestWorker) RunImports(ctx context.Context) error {
	if w.sheets == nil {
		return nil
	}

	w.importLogged(ctx)
	if w.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Stopping spreadsheet imports")
			return nil
		case <-ticker.C:
			w.importLogged(ctx)
		}
	}
}

func (w *IngestWorker) importLogged(ctx context.Context) {
	if _, err := w.ImportFromSheets(ctx); err != nil && ctx.Err() == nil {
		w.logger.ErrorContext(ctx, "Spreadsheet import failed", log.FieldError, err)
	}
}

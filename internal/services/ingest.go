package services

import (
	"context"
	"errors"
	"fmt"

	"inventory/internal/core"
	"inventory/internal/log"
	"inventory/internal/metrics"
	"inventory/internal/ports"
)

// ErrInvalidRecord marks records that can never be stored. Message consumers
// drop them instead of retrying.
var ErrInvalidRecord = errors.New("invalid expense record")

// Ingestion sources, used as metric labels.
const (
	SourceAMQP   = "amqp"
	SourceSheets = "sheets"
)

// Invalidator drops cached query results.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// IngestResult counts the outcome of a batch.
type IngestResult struct {
	Inserted   int
	Duplicates int
	Rejected   int
}

// IngestService stores expense-by-category records coming from the message
// queue or a spreadsheet import.
type IngestService struct {
	recorder    ports.ExpenseRecorder
	invalidator Invalidator
	metrics     *metrics.Metrics
	logger      *log.StructuredLogger
}

// NewIngestService wires the service; invalidator and m may be nil.
func NewIngestService(recorder ports.ExpenseRecorder, invalidator Invalidator, m *metrics.Metrics, logger *log.Logger) *IngestService {
	return &IngestService{
		recorder:    recorder,
		invalidator: invalidator,
		metrics:     m,
		logger:      log.NewStructuredLogger(logger.WithComponent(log.ComponentWorker)),
	}
}

// Record validates and stores one record. Storing an id twice is not an
// error and reports inserted=false.
func (s *IngestService) Record(ctx context.Context, source string, e core.ExpenseByCategory) (bool, error) {
	inserted, err := s.record(ctx, source, e)
	if err == nil && inserted && s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
	return inserted, err
}

// RecordBatch stores records one by one. Invalid records are counted and
// skipped; the first storage error aborts the batch.
func (s *IngestService) RecordBatch(ctx context.Context, source string, records []core.ExpenseByCategory) (IngestResult, error) {
	var res IngestResult
	defer func() {
		if res.Inserted > 0 && s.invalidator != nil {
			s.invalidator.Invalidate(ctx)
		}
	}()

	for _, e := range records {
		inserted, err := s.record(ctx, source, e)
		switch {
		case errors.Is(err, ErrInvalidRecord):
			res.Rejected++
		case err != nil:
			return res, err
		case inserted:
			res.Inserted++
		default:
			res.Duplicates++
		}
	}
	return res, nil
}

func (s *IngestService) record(ctx context.Context, source string, e core.ExpenseByCategory) (bool, error) {
	if err := e.Validate(); err != nil {
		s.metrics.Ingested(source, "rejected")
		s.logger.LogError(ctx, "Expense record rejected", err, log.OpValidate,
			log.NewFields().WithExpenseRecord(e.ID, e.Category, e.Amount.String()))
		return false, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	inserted, err := s.recorder.SaveExpenseByCategory(ctx, e)
	if err != nil {
		return false, fmt.Errorf("save expense %s: %w", e.ID, err)
	}

	if inserted {
		s.metrics.Ingested(source, "inserted")
	} else {
		s.metrics.Ingested(source, "duplicate")
	}
	s.logger.LogExpenseRecorded(ctx, e.ID, e.Category, core.FormatAmount(e.Amount), inserted)
	return inserted, nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"inventory/internal/cache"
	"inventory/internal/core"
	"inventory/internal/log"
	"inventory/internal/metrics"
	"inventory/internal/ports"
)

var tracer = otel.Tracer("inventory/services")

// ExpenseQueryService answers expense-by-category queries, caching results
// per filter.
type ExpenseQueryService struct {
	reader  ports.ExpenseReader
	cache   cache.Cache[[]core.ExpenseByCategory]
	metrics *metrics.Metrics
	logger  *log.Logger
}

// NewExpenseQueryService wires the service. c and m may be nil.
func NewExpenseQueryService(reader ports.ExpenseReader, c cache.Cache[[]core.ExpenseByCategory], m *metrics.Metrics, logger *log.Logger) *ExpenseQueryService {
	return &ExpenseQueryService{
		reader:  reader,
		cache:   c,
		metrics: m,
		logger:  logger.WithComponent(log.ComponentExpense),
	}
}

// ExpensesByCategory returns every record matching f, newest first. Any
// failure is returned whole; no partial result is produced.
func (s *ExpenseQueryService) ExpensesByCategory(ctx context.Context, f core.ExpenseFilter) (out []core.ExpenseByCategory, err error) {
	ctx, span := tracer.Start(ctx, "ExpenseQueryService.ExpensesByCategory")
	span.SetAttributes(
		attribute.String("filter.start_date", f.StartDate.String()),
		attribute.String("filter.end_date", f.EndDate.String()),
		attribute.String("filter.category", f.Category),
	)
	start := time.Now()
	defer func() {
		s.metrics.ObserveQuery(time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	key := f.Key()
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			s.metrics.CacheHit()
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cached, nil
		}
		s.metrics.CacheMiss()
	}

	out, err = s.reader.ListExpensesByCategory(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list expenses by category: %w", err)
	}
	if out == nil {
		out = []core.ExpenseByCategory{}
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, out)
	}
	s.logger.DebugContext(ctx, "Expenses by category loaded",
		append(log.NewFields().
			WithFilter(f.StartDate.String(), f.EndDate.String(), f.Category).
			WithOperation(log.OpQuery).
			ToSlice(), log.FieldCount, len(out))...)
	return out, nil
}

// Breakdown fetches the whole list and aggregates it the way the expenses
// page does: category and range are applied in memory, the range only when
// both bounds are set.
func (s *ExpenseQueryService) Breakdown(ctx context.Context, f core.BreakdownFilter) ([]core.CategoryTotal, error) {
	records, err := s.ExpensesByCategory(ctx, core.ExpenseFilter{})
	if err != nil {
		return nil, err
	}
	return core.Aggregate(records, f), nil
}

// Invalidate drops every cached result. Called after new records land.
func (s *ExpenseQueryService) Invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Purge(ctx)
	}
}

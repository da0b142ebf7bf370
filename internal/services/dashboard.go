package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"inventory/internal/core"
	"inventory/internal/ports"
)

const (
	popularProductsLimit = 15
	latestSummaryLimit   = 5
)

type DashboardService struct {
	reader ports.DashboardReader
}

func NewDashboardService(reader ports.DashboardReader) *DashboardService {
	return &DashboardService{reader: reader}
}

// Metrics runs the five dashboard reads concurrently. The first failure
// cancels the others and is returned.
func (s *DashboardService) Metrics(ctx context.Context) (core.DashboardMetrics, error) {
	ctx, span := tracer.Start(ctx, "DashboardService.Metrics")
	defer span.End()

	var m core.DashboardMetrics
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		m.PopularProducts, err = s.reader.PopularProducts(ctx, popularProductsLimit)
		return wrap("popular products", err)
	})
	g.Go(func() (err error) {
		m.SalesSummary, err = s.reader.LatestSalesSummaries(ctx, latestSummaryLimit)
		return wrap("sales summary", err)
	})
	g.Go(func() (err error) {
		m.PurchaseSummary, err = s.reader.LatestPurchaseSummaries(ctx, latestSummaryLimit)
		return wrap("purchase summary", err)
	})
	g.Go(func() (err error) {
		m.ExpenseSummary, err = s.reader.LatestExpenseSummaries(ctx, latestSummaryLimit)
		return wrap("expense summary", err)
	})
	g.Go(func() (err error) {
		m.ExpenseByCategorySummary, err = s.reader.LatestExpensesByCategory(ctx, latestSummaryLimit)
		return wrap("expense by category summary", err)
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return core.DashboardMetrics{}, err
	}
	return m, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"inventory/internal/apiclient"
	"inventory/internal/cli"
	"inventory/internal/core"
	"inventory/internal/log"
	"inventory/internal/view"
)

const usage = `expense-report - expenses by category from the inventory API

Usage:
  expense-report [options]

Examples:
  # Totals for every category
  expense-report

  # Office expenses in January
  expense-report --category=Office --start=2024-01-01 --end=2024-01-31

  # Re-fetch every 30 seconds until interrupted
  expense-report --interval=30s

Options:
`

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentView)

	fs := flag.NewFlagSet("expense-report", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	apiURL := fs.String("api", cfg.APIBaseURL, "Base URL of the inventory API")
	category := fs.String("category", core.AllCategories, "Category to show, or All")
	start := fs.String("start", "", "Start date YYYY-MM-DD; applied only together with --end")
	end := fs.String("end", "", "End date YYYY-MM-DD; applied only together with --start")
	interval := fs.Duration("interval", 0, "Refresh interval; 0 prints once and exits")
	_ = fs.Parse(os.Args[1:])

	client := apiclient.New(*apiURL)
	fetch := func(ctx context.Context) ([]core.ExpenseByCategory, error) {
		return client.ExpensesByCategory(ctx, core.ExpenseFilter{})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := view.NewLoader(fetch, func(m view.Model) {
		if m.State == view.Loading {
			return
		}
		render(os.Stdout, m)
	})
	defer loader.Close()
	loader.Select(core.ParseBreakdownFilter(*category, *start, *end))

	loader.Refresh(ctx)
	loader.Wait()
	if *interval <= 0 {
		if loader.Model().State == view.Error {
			os.Exit(1)
		}
		return
	}

	logger.Info("Watching expenses", "api", *apiURL, "interval", interval.String())
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			loader.Refresh(ctx)
		}
	}
}

// render prints one model as a table.
func render(out io.Writer, m view.Model) {
	sel := m.Selection
	fmt.Fprintf(out, "\nCategory: %s", sel.Category)
	if sel.HasRange() {
		fmt.Fprintf(out, "  Range: %s .. %s", sel.StartDate, sel.EndDate)
	}
	fmt.Fprintln(out)

	if m.State != view.Ready {
		fmt.Fprintln(out, m.Message)
		return
	}
	if len(m.Totals) == 0 {
		fmt.Fprintln(out, "No expenses for this selection.")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "CATEGORY\tAMOUNT\tCOLOR\t")
	for _, t := range m.Totals {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", t.Name, core.FormatAmount(t.Amount), t.Color)
	}
	total := m.Total()
	fmt.Fprintf(tw, "%s\t%s\t\t\n", total.Name, core.FormatAmount(total.Amount))
	_ = tw.Flush()
}

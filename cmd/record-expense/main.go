package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"inventory/internal/amqp"
	"inventory/internal/cli"
	"inventory/internal/core"
	"inventory/internal/log"
)

const usage = `record-expense - publish one expense-by-category record to the ingestion queue

Usage:
  record-expense --category=<name> --amount=<decimal> [options]

Examples:
  record-expense --category=Office --amount=120.50
  record-expense --category=Salaries --amount=2000 --date=2024-01-31 --summary-id=es-1

Options:
`

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentAMQP)

	fs := flag.NewFlagSet("record-expense", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	category := fs.String("category", "", "Expense category (required)")
	amount := fs.String("amount", "", "Non-negative decimal amount (required)")
	date := fs.String("date", time.Now().UTC().Format(core.DateLayout), "Expense date YYYY-MM-DD")
	summaryID := fs.String("summary-id", "", "Expense summary the record belongs to")
	id := fs.String("id", "", "Record id; a random UUID when empty")
	_ = fs.Parse(os.Args[1:])

	record, err := buildRecord(*id, *summaryID, *date, *category, *amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid record: %v\n\n", err)
		fs.Usage()
		os.Exit(2)
	}

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is not set")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.PublishExpenseRecorded(ctx, record); err != nil {
		logger.Error("Failed to publish expense record", log.FieldError, err, log.FieldRecordID, record.ID)
		os.Exit(1)
	}

	fmt.Println(record.ID)
}

// buildRecord validates the flag values into a record.
func buildRecord(id, summaryID, date, category, amount string) (core.ExpenseByCategory, error) {
	d, err := core.ParseDate(date)
	if err != nil {
		return core.ExpenseByCategory{}, err
	}
	a, err := core.ParseAmount(amount)
	if err != nil {
		return core.ExpenseByCategory{}, err
	}
	if id == "" {
		id = uuid.NewString()
	}
	e := core.ExpenseByCategory{
		ID:               id,
		ExpenseSummaryID: summaryID,
		Date:             d,
		Category:         category,
		Amount:           a,
	}
	if err := e.Validate(); err != nil {
		return core.ExpenseByCategory{}, err
	}
	return e, nil
}

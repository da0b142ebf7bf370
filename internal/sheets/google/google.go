package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"inventory/internal/core"
	"inventory/internal/log"
)

// DefaultRange is read when no range is configured: one record per row,
// columns date, category, amount, expenseSummaryId, header on row 1.
const DefaultRange = "ExpensesByCategory!A2:D"

// Importer reads expense-by-category rows from a spreadsheet.
type Importer struct {
	svc           *gsheet.Service
	spreadsheetID string
	rng           string
	logger        *log.Logger
}

// NewImporter creates an importer authenticated with service account
// credentials taken from the environment.
func NewImporter(ctx context.Context, spreadsheetID, rng string, logger *log.Logger) (*Importer, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(rng) == "" {
		rng = DefaultRange
	}
	logger = logger.WithComponent(log.ComponentSheets)

	svc, err := newSheetsService(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Importer{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		rng:           rng,
		logger:        logger,
	}, nil
}

// newSheetsService initializes a read-only Sheets service using Service
// Account credentials from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, logger *log.Logger) (*gsheet.Service, error) {
	credentialsJSON, source, err := readCredentials()
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Creating Google Sheets service",
		"credentials_source", source,
		"scope", gsheet.SpreadsheetsReadonlyScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func readCredentials() ([]byte, string, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), "GOOGLE_SERVICE_ACCOUNT_JSON", nil
	}

	for _, key := range []string{"GOOGLE_SERVICE_ACCOUNT_FILE", "GOOGLE_APPLICATION_CREDENTIALS"} {
		path := strings.TrimSpace(os.Getenv(key))
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("read service account file: %w", err)
		}
		return data, key, nil
	}

	return nil, "", errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// Fetch reads the configured range. Rows that cannot be parsed are reported
// in the second result and left out of the first.
func (i *Importer) Fetch(ctx context.Context) ([]core.ExpenseByCategory, []RowError, error) {
	if i.svc == nil {
		return nil, nil, errors.New("sheets service not initialized")
	}

	resp, err := i.svc.Spreadsheets.Values.Get(i.spreadsheetID, i.rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", i.rng, err)
	}

	records, rowErrs := parseRows(resp.Values, firstRow(i.rng))
	for _, re := range rowErrs {
		i.logger.WarnContext(ctx, "Skipping spreadsheet row", "row", re.Row, log.FieldError, re.Err)
	}
	i.logger.InfoContext(ctx, "Spreadsheet range read",
		"range", i.rng,
		log.FieldCount, len(records),
		"skipped", len(rowErrs))

	return records, rowErrs, nil
}

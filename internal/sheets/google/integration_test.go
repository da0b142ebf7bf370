//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"inventory/internal/log"
)

// Integration tests require a real spreadsheet and service account.
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_FetchExpensesByCategory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	if _, _, err := readCredentials(); err != nil {
		t.Skipf("service account not configured, skipping integration test: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	imp, err := NewImporter(ctx, spreadsheetID, os.Getenv("GOOGLE_SHEET_RANGE"), log.Discard())
	if err != nil {
		t.Fatalf("Failed to create importer: %v", err)
	}

	records, rowErrs, err := imp.Fetch(ctx)
	if err != nil {
		t.Fatalf("Failed to fetch: %v", err)
	}
	t.Logf("Fetched %d records, %d rows skipped", len(records), len(rowErrs))

	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			t.Errorf("record %s does not validate: %v", r.ID, err)
		}
		if seen[r.ID] {
			t.Errorf("duplicate id %s", r.ID)
		}
		seen[r.ID] = true
	}
}

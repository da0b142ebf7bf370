package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"inventory/internal/core"
)

// recordNamespace scopes the ids derived from row content.
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("inventory/expense-by-category"))

// Spreadsheet serial dates count days from this epoch.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

const (
	colDate = iota
	colCategory
	colAmount
	colSummaryID
)

// RowError describes a row that could not be imported.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// parseRows converts a values matrix into records. startRow is the sheet row
// number of values[0] and is only used in errors. Blank rows are skipped
// silently.
//
// Record ids are derived from the row content plus the number of identical
// rows seen before it, so importing the same sheet twice yields the same ids
// and identical rows stay distinct.
func parseRows(values [][]interface{}, startRow int) ([]core.ExpenseByCategory, []RowError) {
	var (
		records []core.ExpenseByCategory
		errs    []RowError
		seen    = map[string]int{}
	)

	for i, row := range values {
		rowNum := startRow + i
		if isBlank(row) {
			continue
		}

		date, err := parseDateCell(cell(row, colDate))
		if err != nil {
			errs = append(errs, RowError{Row: rowNum, Err: err})
			continue
		}
		category := strings.TrimSpace(cellString(cell(row, colCategory)))
		if category == "" {
			errs = append(errs, RowError{Row: rowNum, Err: core.ErrEmptyCategory})
			continue
		}
		amount, err := parseAmountCell(cell(row, colAmount))
		if err != nil {
			errs = append(errs, RowError{Row: rowNum, Err: err})
			continue
		}
		summaryID := strings.TrimSpace(cellString(cell(row, colSummaryID)))

		content := strings.Join([]string{date.String(), category, amount.String(), summaryID}, "|")
		occurrence := seen[content]
		seen[content]++

		records = append(records, core.ExpenseByCategory{
			ID:               uuid.NewSHA1(recordNamespace, []byte(content+"|"+strconv.Itoa(occurrence))).String(),
			ExpenseSummaryID: summaryID,
			Date:             date,
			Category:         category,
			Amount:           amount,
		})
	}
	return records, errs
}

func parseDateCell(v interface{}) (core.Date, error) {
	switch t := v.(type) {
	case float64:
		d := serialEpoch.AddDate(0, 0, int(t))
		return core.NewDate(d.Year(), int(d.Month()), d.Day()), nil
	case string:
		return core.ParseDate(t)
	default:
		return core.Date{}, core.ErrInvalidDate
	}
}

func parseAmountCell(v interface{}) (decimal.Decimal, error) {
	switch t := v.(type) {
	case float64:
		if t < 0 {
			return decimal.Zero, core.ErrInvalidAmount
		}
		return decimal.NewFromFloat(t), nil
	case string:
		return core.ParseAmount(stripCurrency(t))
	default:
		return decimal.Zero, core.ErrInvalidAmount
	}
}

// stripCurrency removes currency symbols, spaces and thousands separators
// when both separators are present ("$1,234.50" -> "1234.50").
func stripCurrency(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Sc, r) || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if strings.Contains(s, ",") && strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", "")
	}
	return s
}

// firstRow extracts the starting row of an A1 range ("Sheet!A2:D" -> 2).
func firstRow(rng string) int {
	if i := strings.LastIndex(rng, "!"); i >= 0 {
		rng = rng[i+1:]
	}
	start := strings.SplitN(rng, ":", 2)[0]
	digits := strings.TrimLeftFunc(start, unicode.IsLetter)
	if n, err := strconv.Atoi(digits); err == nil && n > 0 {
		return n
	}
	return 1
}

func cell(row []interface{}, idx int) interface{} {
	if idx < len(row) {
		return row[idx]
	}
	return nil
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func isBlank(row []interface{}) bool {
	for _, v := range row {
		if strings.TrimSpace(cellString(v)) != "" {
			return false
		}
	}
	return true
}

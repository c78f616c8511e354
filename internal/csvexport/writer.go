package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"creditlens/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row, one row per credit account.
var columns = []string{
	"Account Number",
	"Subscriber Name",
	"Portfolio Type",
	"Account Type",
	"Account Status",
	"Current Balance",
	"Amount Overdue",
	"Open Date",
	"Credit Limit",
	"Highest Credit / Original Loan Amount",
	"Payment Rating",
	"Date Reported",
	"Date Closed",
	"History Months",
	"Max Days Past Due",
}

// Columns returns a copy of the header row.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// Writer wraps csv.Writer for exporting credit accounts as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteAccounts writes one row per account in source order.
func (w *Writer) WriteAccounts(accounts []domain.CreditAccount) error {
	for i := range accounts {
		if err := w.csv.Write(AccountRow(&accounts[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// AccountRow converts one account to a row aligned with Columns. Values are
// written exactly as reported; absent fields become empty cells.
func AccountRow(acc *domain.CreditAccount) []string {
	row := make([]string, len(columns))
	row[0] = str(acc.AccountNumber)
	row[1] = str(acc.SubscriberName)
	row[2] = str(acc.PortfolioType)
	row[3] = str(acc.AccountType)
	row[4] = str(acc.AccountStatus)
	row[5] = str(acc.CurrentBalance)
	row[6] = str(acc.AmountOverdue)
	row[7] = str(acc.OpenDate)
	row[8] = str(acc.CreditLimit)
	row[9] = str(acc.HighestCreditOrOriginalLoanAmount)
	row[10] = str(acc.PaymentRating)
	row[11] = str(acc.DateReported)
	row[12] = str(acc.DateClosed)
	row[13] = strconv.Itoa(len(acc.History))
	if dpd, ok := MaxDaysPastDue(acc.History); ok {
		row[14] = strconv.Itoa(dpd)
	}
	return row
}

// MaxDaysPastDue returns the worst numeric DPD across history entries.
// Non-numeric markers are skipped; ok is false when no entry was numeric.
func MaxDaysPastDue(history []domain.HistoryEntry) (worst int, ok bool) {
	for _, h := range history {
		if h.DaysPastDue == nil {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(*h.DaysPastDue))
		if err != nil {
			continue
		}
		if !ok || n > worst {
			worst = n
			ok = true
		}
	}
	return worst, ok
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a consumer name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_name}_{report_date}.{ext}, falling back to "credit_report"
// when the name sanitizes to nothing and dropping the date when it is empty.
func BuildFilename(name, reportDate, ext string) string {
	base := SanitizeFilename(name)
	if base == "" {
		base = "credit_report"
	}
	if date := SanitizeFilename(reportDate); date != "" {
		base = base + "_" + date
	}
	return fmt.Sprintf("%s.%s", base, ext)
}

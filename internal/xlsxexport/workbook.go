// Package xlsxexport renders a stored credit report as an Excel workbook with
// Summary, Accounts and History sheets.
package xlsxexport

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"creditlens/internal/csvexport"
	"creditlens/internal/domain"
	"creditlens/internal/xmltree"
)

const (
	SheetSummary  = "Summary"
	SheetAccounts = "Accounts"
	SheetHistory  = "History"
)

// amountColumns are the Accounts columns written as numbers when they parse.
var amountColumns = map[int]bool{5: true, 6: true, 8: true, 9: true}

var historyColumns = []string{
	"Account Number",
	"Subscriber Name",
	"Year",
	"Month",
	"Days Past Due",
	"Asset Classification",
}

// Build renders the report and returns the encoded .xlsx bytes.
func Build(report *domain.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("xlsxexport.Build: %w", err)
	}
	for _, name := range []string{SheetAccounts, SheetHistory} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("xlsxexport.Build: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsxexport.Build style: %w", err)
	}

	if err := writeSummary(f, report, bold); err != nil {
		return nil, fmt.Errorf("xlsxexport.Build summary: %w", err)
	}
	if err := writeAccounts(f, report.CreditAccounts, bold); err != nil {
		return nil, fmt.Errorf("xlsxexport.Build accounts: %w", err)
	}
	if err := writeHistory(f, report.CreditAccounts, bold); err != nil {
		return nil, fmt.Errorf("xlsxexport.Build history: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsxexport.Build write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, report *domain.Report, bold int) error {
	bd := report.BasicDetails

	var score interface{} = float64(bd.CreditScore)
	if bd.CreditScore.IsNaN() {
		score = "NaN"
	}

	rows := [][]interface{}{
		{"Field", "Value"},
		{"Name", bd.Name},
		{"PAN", str(bd.PAN)},
		{"Mobile Phone", str(bd.MobilePhone)},
		{"Date of Birth", str(bd.DateOfBirth)},
		{"Credit Score", score},
		{"Score Confidence Level", str(bd.ScoreConfidenceLevel)},
		{"Report Date", str(bd.ReportDate)},
		{"Credit Accounts", len(report.CreditAccounts)},
		{"Sum of Current Balance", TotalCurrentBalance(report.CreditAccounts).InexactFloat64()},
	}
	if report.ReportSummary.Present {
		rows = append(rows, leafRows(report.ReportSummary.CreditAccount)...)
		rows = append(rows, leafRows(report.ReportSummary.TotalOutstandingBalance)...)
	}

	for i, row := range rows {
		if err := setRow(f, SheetSummary, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(SheetSummary, 1, 1, bold); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "A", "A", 32)
}

func writeAccounts(f *excelize.File, accounts []domain.CreditAccount, bold int) error {
	header := csvexport.Columns()
	if err := setRow(f, SheetAccounts, 1, stringsToRow(header)); err != nil {
		return err
	}
	for i := range accounts {
		cells := csvexport.AccountRow(&accounts[i])
		row := make([]interface{}, len(cells))
		for c, v := range cells {
			row[c] = v
			if amountColumns[c] {
				if d, ok := parseAmount(v); ok {
					row[c] = d.InexactFloat64()
				}
			}
		}
		if err := setRow(f, SheetAccounts, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(SheetAccounts, 1, 1, bold); err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(SheetAccounts, "A", last, 18)
}

func writeHistory(f *excelize.File, accounts []domain.CreditAccount, bold int) error {
	if err := setRow(f, SheetHistory, 1, stringsToRow(historyColumns)); err != nil {
		return err
	}
	r := 2
	for i := range accounts {
		acc := &accounts[i]
		for _, h := range acc.History {
			row := []interface{}{
				str(acc.AccountNumber),
				strings.TrimSpace(str(acc.SubscriberName)),
				str(h.Year),
				str(h.Month),
				str(h.DaysPastDue),
				str(h.AssetClassification),
			}
			if err := setRow(f, SheetHistory, r, row); err != nil {
				return err
			}
			r++
		}
	}
	return f.SetRowStyle(SheetHistory, 1, 1, bold)
}

// TotalCurrentBalance sums the numeric current balances. Unparsable or absent
// balances contribute nothing.
func TotalCurrentBalance(accounts []domain.CreditAccount) decimal.Decimal {
	total := decimal.Zero
	for i := range accounts {
		if accounts[i].CurrentBalance == nil {
			continue
		}
		if d, ok := parseAmount(*accounts[i].CurrentBalance); ok {
			total = total.Add(d)
		}
	}
	return total
}

func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// leafRows lists the leaf children of an opaque summary block as label/value pairs.
func leafRows(n *xmltree.Node) [][]interface{} {
	var rows [][]interface{}
	for _, key := range n.Keys() {
		child := n.Child(key)
		if child == nil || child.Kind() != xmltree.KindLeaf {
			continue
		}
		rows = append(rows, []interface{}{key, child.Text()})
	}
	return rows
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func stringsToRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

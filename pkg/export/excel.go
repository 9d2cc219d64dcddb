package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"storeroom/pkg/ledger"
)

const (
	sheetSummary      = "Summary"
	sheetItems        = "Items"
	sheetTransactions = "Transactions"
)

// Excel writes a workbook with summary, per-item and detail sheets.
func Excel(report ledger.Report) ([]byte, error) {
	const op = "export.Excel"

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	writeHeaders := func(sheet string, headers []string) {
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
			f.SetCellStyle(sheet, cell, cell, headerStyle)
		}
	}

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	f.SetCellValue(sheetSummary, "A1", report.Title)
	f.SetCellStyle(sheetSummary, "A1", "A1", titleStyle)
	f.SetCellValue(sheetSummary, "A2", report.Period)
	summary := [][2]any{
		{"Total Stock In", report.Summary.TotalDeposits},
		{"Total Stock Out", report.Summary.TotalWithdrawals},
		{"Net Balance", report.Summary.FinalBalance},
		{"Transactions", report.Summary.TransactionCount},
	}
	for i, row := range summary {
		f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", i+4), row[0])
		f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", i+4), row[1])
	}
	f.SetColWidth(sheetSummary, "A", "A", 24)

	if _, err := f.NewSheet(sheetItems); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	writeHeaders(sheetItems, []string{"Item", "Stock In", "Stock Out", "Transactions"})
	for i, row := range itemRows(report) {
		r := i + 2
		f.SetCellValue(sheetItems, fmt.Sprintf("A%d", r), row.name)
		f.SetCellValue(sheetItems, fmt.Sprintf("B%d", r), row.Deposits)
		f.SetCellValue(sheetItems, fmt.Sprintf("C%d", r), row.Withdrawals)
		f.SetCellValue(sheetItems, fmt.Sprintf("D%d", r), row.Transactions)
	}
	f.SetColWidth(sheetItems, "A", "A", 28)
	f.AutoFilter(sheetItems, "A1:D1", []excelize.AutoFilterOptions{})
	f.SetPanes(sheetItems, &excelize.Panes{Freeze: true, Split: true, YSplit: 1})

	if _, err := f.NewSheet(sheetTransactions); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	writeHeaders(sheetTransactions, []string{"Date", "Item", "Stock In", "Stock Out", "Balance", "Requesting Unit"})
	for i, tx := range report.Transactions {
		r := i + 2
		f.SetCellValue(sheetTransactions, fmt.Sprintf("A%d", r), tx.Date.String())
		f.SetCellValue(sheetTransactions, fmt.Sprintf("B%d", r), tx.ItemName)
		f.SetCellValue(sheetTransactions, fmt.Sprintf("C%d", r), tx.Deposit)
		f.SetCellValue(sheetTransactions, fmt.Sprintf("D%d", r), tx.Withdrawal)
		f.SetCellValue(sheetTransactions, fmt.Sprintf("E%d", r), tx.Balance)
		f.SetCellValue(sheetTransactions, fmt.Sprintf("F%d", r), unitLabel(tx))
	}
	f.SetColWidth(sheetTransactions, "A", "B", 20)
	f.AutoFilter(sheetTransactions, "A1:F1", []excelize.AutoFilterOptions{})
	f.SetPanes(sheetTransactions, &excelize.Panes{Freeze: true, Split: true, YSplit: 1})

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

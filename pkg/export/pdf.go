package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/phpdave11/gofpdf"

	"storeroom/pkg/ledger"
)

// PDF lays the report out on A4 portrait pages.
func PDF(report ledger.Report) ([]byte, error) {
	const op = "export.PDF"

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, report.Title)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	if report.Period != "" {
		pdf.Cell(0, 6, report.Period)
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Transactions: %d", report.Summary.TransactionCount))
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)

	sumW := []float64{62, 62, 58}
	pdf.CellFormat(sumW[0], 10, "Stock In", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[1], 10, "Stock Out", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[2], 10, "Net Balance", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(sumW[0], 10, strconv.Itoa(report.Summary.TotalDeposits), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[1], 10, strconv.Itoa(report.Summary.TotalWithdrawals), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[2], 10, strconv.Itoa(report.Summary.FinalBalance), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	if rows := itemRows(report); len(rows) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Item Breakdown")
		pdf.Ln(9)

		itemW := []float64{82, 35, 35, 30}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(245, 245, 245)
		pdf.CellFormat(itemW[0], 8, "ITEM", "1", 0, "L", true, 0, "")
		pdf.CellFormat(itemW[1], 8, "IN", "1", 0, "R", true, 0, "")
		pdf.CellFormat(itemW[2], 8, "OUT", "1", 0, "R", true, 0, "")
		pdf.CellFormat(itemW[3], 8, "COUNT", "1", 1, "R", true, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		for _, row := range rows {
			pdf.CellFormat(itemW[0], 8, row.name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(itemW[1], 8, strconv.Itoa(row.Deposits), "1", 0, "R", false, 0, "")
			pdf.CellFormat(itemW[2], 8, strconv.Itoa(row.Withdrawals), "1", 0, "R", false, 0, "")
			pdf.CellFormat(itemW[3], 8, strconv.Itoa(row.Transactions), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(6)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Recent Transactions")
	pdf.Ln(9)

	colW := []float64{26, 58, 22, 22, 22, 32}
	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(245, 245, 245)
		pdf.CellFormat(colW[0], 8, "DATE", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[1], 8, "ITEM", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[2], 8, "IN", "1", 0, "R", true, 0, "")
		pdf.CellFormat(colW[3], 8, "OUT", "1", 0, "R", true, 0, "")
		pdf.CellFormat(colW[4], 8, "BALANCE", "1", 0, "R", true, 0, "")
		pdf.CellFormat(colW[5], 8, "UNIT", "1", 1, "C", true, 0, "")
		pdf.SetFont("Helvetica", "", 9)
	}
	header()

	if len(report.Transactions) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 8, "No transactions in this period", "1", 1, "C", false, 0, "")
	}
	for _, tx := range report.Transactions {
		if pdf.GetY() > 270 {
			pdf.AddPage()
			header()
		}
		pdf.CellFormat(colW[0], 8, tx.Date.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[1], 8, tx.ItemName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[2], 8, strconv.Itoa(tx.Deposit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colW[3], 8, strconv.Itoa(tx.Withdrawal), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colW[4], 8, strconv.Itoa(tx.Balance), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colW[5], 8, unitLabel(tx), "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

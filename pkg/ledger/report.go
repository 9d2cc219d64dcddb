package ledger

import (
	"strings"
)

// reportDetailLimit caps the detail rows embedded in a report.
const reportDetailLimit = 10

// Activity aggregates the movements of one calendar day.
type Activity struct {
	Count            int `json:"count"`
	TotalDeposits    int `json:"totalDeposits"`
	TotalWithdrawals int `json:"totalWithdrawals"`
}

// DailyActivity counts and sums the transactions dated exactly today.
func DailyActivity(txs []Transaction, today Date) Activity {
	var a Activity
	for _, tx := range txs {
		if tx.Date != today {
			continue
		}
		a.Count++
		a.TotalDeposits += tx.Deposit
		a.TotalWithdrawals += tx.Withdrawal
	}
	return a
}

// ReportFilter selects the transactions a report covers. Empty bounds are open.
type ReportFilter struct {
	ItemID string `json:"itemId"`
	Start  Date   `json:"startDate,omitempty"`
	End    Date   `json:"endDate,omitempty"`
}

func (f ReportFilter) allItems() bool {
	return f.ItemID == "" || strings.EqualFold(f.ItemID, AllItems)
}

func (f ReportFilter) matches(tx Transaction) bool {
	if !f.allItems() && tx.ItemID != f.ItemID {
		return false
	}
	return inRange(tx.Date, f.Start, f.End)
}

// inRange is inclusive on both ends; empty bounds do not constrain.
func inRange(d, start, end Date) bool {
	if start != "" && d < start {
		return false
	}
	if end != "" && d > end {
		return false
	}
	return true
}

type ReportSummary struct {
	TotalDeposits    int `json:"totalDeposits"`
	TotalWithdrawals int `json:"totalWithdrawals"`
	FinalBalance     int `json:"finalBalance"`
	TransactionCount int `json:"transactionCount"`
}

// ItemActivity is the per-item breakdown of a report.
type ItemActivity struct {
	Deposits     int `json:"deposits"`
	Withdrawals  int `json:"withdrawals"`
	Transactions int `json:"transactions"`
}

// Report is generated on demand and never stored.
type Report struct {
	Title        string                  `json:"title"`
	Period       string                  `json:"period,omitempty"`
	Filter       ReportFilter            `json:"filter"`
	Transactions []Transaction           `json:"transactions"`
	Summary      ReportSummary           `json:"summary"`
	ItemSummary  map[string]ItemActivity `json:"itemSummary"`
}

// GenerateReport filters txs and aggregates them in a single pass.
// Detail rows keep the incoming order and stop at the first ten matches; with the usual
// newest-first listing these are the ten most recent. Title is left for the caller, see ReportTitle.
func GenerateReport(txs []Transaction, filter ReportFilter) Report {
	report := Report{
		Period:       PeriodCaption(filter.Start, filter.End),
		Filter:       filter,
		Transactions: make([]Transaction, 0, reportDetailLimit),
		ItemSummary:  make(map[string]ItemActivity),
	}
	for _, tx := range txs {
		if !filter.matches(tx) {
			continue
		}
		if len(report.Transactions) < reportDetailLimit {
			report.Transactions = append(report.Transactions, tx)
		}
		report.Summary.TotalDeposits += tx.Deposit
		report.Summary.TotalWithdrawals += tx.Withdrawal
		report.Summary.TransactionCount++

		activity := report.ItemSummary[tx.ItemName]
		activity.Deposits += tx.Deposit
		activity.Withdrawals += tx.Withdrawal
		activity.Transactions++
		report.ItemSummary[tx.ItemName] = activity
	}
	report.Summary.FinalBalance = report.Summary.TotalDeposits - report.Summary.TotalWithdrawals
	return report
}

// ReportTitle names the report after the filtered item.
func ReportTitle(catalog *Catalog, itemID string) string {
	if itemID == "" || strings.EqualFold(itemID, AllItems) {
		return "Inventory Report On All Items"
	}
	item, ok := catalog.Lookup(itemID)
	if !ok {
		return "Inventory Report On Unknown Item"
	}
	return "Inventory Report On " + item.Name
}

// PeriodCaption describes the date bounds of a report, or returns "" when there are none.
func PeriodCaption(start, end Date) string {
	switch {
	case start != "" && end != "":
		if start == end {
			return "For: " + displayDate(start)
		}
		return "From: " + displayDate(start) + " To: " + displayDate(end)
	case start != "":
		return "From: " + displayDate(start)
	case end != "":
		return "Up to: " + displayDate(end)
	default:
		return ""
	}
}

func displayDate(d Date) string {
	return d.Time().Format("Jan 2, 2006")
}

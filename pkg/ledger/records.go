package ledger

import (
	"slices"
	"strings"
)

// RecordFilter drives the records view. Zero values match everything.
type RecordFilter struct {
	Search string
	ItemID string
	Start  Date
	End    Date
}

// FilterRecords keeps the incoming order of the matches.
func FilterRecords(txs []Transaction, f RecordFilter) []Transaction {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	allItems := f.ItemID == "" || strings.EqualFold(f.ItemID, AllItems)

	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if search != "" && !strings.Contains(strings.ToLower(tx.ItemName), search) {
			continue
		}
		if !allItems && tx.ItemID != f.ItemID {
			continue
		}
		if !inRange(tx.Date, f.Start, f.End) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// DayGroup holds the transactions of one day.
type DayGroup struct {
	Date         Date          `json:"date"`
	Transactions []Transaction `json:"transactions"`
}

// GroupByDate buckets transactions per day, newest day first and newest entry first within a day.
func GroupByDate(txs []Transaction) []DayGroup {
	var groups []DayGroup
	for _, tx := range SortNewestFirst(txs) {
		if n := len(groups); n > 0 && groups[n-1].Date == tx.Date {
			groups[n-1].Transactions = append(groups[n-1].Transactions, tx)
			continue
		}
		groups = append(groups, DayGroup{Date: tx.Date, Transactions: []Transaction{tx}})
	}
	return slices.Clip(groups)
}

package export

import (
	"sort"

	"storeroom/pkg/ledger"
)

type itemRow struct {
	name string
	ledger.ItemActivity
}

// itemRows orders the per-item breakdown by name so output is stable.
func itemRows(report ledger.Report) []itemRow {
	rows := make([]itemRow, 0, len(report.ItemSummary))
	for name, activity := range report.ItemSummary {
		rows = append(rows, itemRow{name: name, ItemActivity: activity})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].name < rows[j].name })
	return rows
}

func unitLabel(tx ledger.Transaction) string {
	if tx.Unit == "" {
		return "-"
	}
	return string(tx.Unit)
}

package ledger

// ClassifyStockStatus maps a balance onto the three-way stock status.
// A non-positive threshold falls back to DefaultLowStockThreshold.
func ClassifyStockStatus(balance, lowThreshold int) StockStatus {
	if lowThreshold <= 0 {
		lowThreshold = DefaultLowStockThreshold
	}
	switch {
	case balance <= 0:
		return Unavailable
	case balance <= lowThreshold:
		return LowStock
	default:
		return InStock
	}
}

// ItemStock is one row of the inventory summary.
type ItemStock struct {
	ItemID    string      `json:"itemId"`
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	Threshold int         `json:"threshold"`
	Status    StockStatus `json:"status"`
}

// InventorySummary lists every catalog item with its stock status and how many items fall in each status.
type InventorySummary struct {
	Items        []ItemStock         `json:"items"`
	Distribution map[StockStatus]int `json:"distribution"`
}

// Summarize classifies every catalog item, including items without any transactions.
func Summarize(txs []Transaction, catalog *Catalog) InventorySummary {
	balances := Balances(txs)
	summary := InventorySummary{
		Items: make([]ItemStock, 0, len(catalog.items)),
		Distribution: map[StockStatus]int{
			InStock:     0,
			LowStock:    0,
			Unavailable: 0,
		},
	}
	for _, item := range catalog.items {
		qty := balances[item.ID]
		status := ClassifyStockStatus(qty, item.Threshold())
		summary.Items = append(summary.Items, ItemStock{
			ItemID:    item.ID,
			Name:      item.Name,
			Quantity:  qty,
			Threshold: item.Threshold(),
			Status:    status,
		})
		summary.Distribution[status]++
	}
	return summary
}

package ledger

import (
	"slices"
	"strings"
)

// chronological orders oldest first: by date, then by creation time.
func chronological(a, b Transaction) int {
	if c := strings.Compare(string(a.Date), string(b.Date)); c != 0 {
		return c
	}
	return a.CreatedAt.Compare(b.CreatedAt)
}

// newestFirst is the display order used by every listing.
func newestFirst(a, b Transaction) int {
	return chronological(b, a)
}

// SortNewestFirst returns a copy ordered by date and creation time, most recent first.
func SortNewestFirst(txs []Transaction) []Transaction {
	out := slices.Clone(txs)
	slices.SortStableFunc(out, newestFirst)
	return out
}

// CurrentBalance folds deposits minus withdrawals over the item's whole history.
// The stored Balance fields are not consulted, so backdated entries cannot skew it.
func CurrentBalance(txs []Transaction, itemID string) int {
	balance := 0
	for _, tx := range txs {
		if tx.ItemID == itemID {
			balance += tx.Deposit - tx.Withdrawal
		}
	}
	return balance
}

// Balances folds every item at once.
func Balances(txs []Transaction) map[string]int {
	out := make(map[string]int)
	for _, tx := range txs {
		out[tx.ItemID] += tx.Deposit - tx.Withdrawal
	}
	return out
}

// RecordedBalance trusts the Balance stored on the item's latest record (latest date, then latest
// creation time). It agrees with CurrentBalance only while the list has been kept rebalanced.
func RecordedBalance(txs []Transaction, itemID string) int {
	var (
		latest Transaction
		found  bool
	)
	for _, tx := range txs {
		if tx.ItemID != itemID {
			continue
		}
		if !found || chronological(tx, latest) > 0 {
			latest = tx
			found = true
		}
	}
	if !found {
		return 0
	}
	return latest.Balance
}

// Rebalance rewrites every Balance as the running fold in chronological order.
// The returned slice keeps the input order.
func Rebalance(txs []Transaction) []Transaction {
	out := slices.Clone(txs)
	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return chronological(out[a], out[b])
	})

	running := make(map[string]int)
	for _, i := range order {
		running[out[i].ItemID] += out[i].Deposit - out[i].Withdrawal
		out[i].Balance = running[out[i].ItemID]
	}
	return out
}

// Drift describes a record whose stored balance disagrees with the fold.
type Drift struct {
	TransactionID string `json:"transactionId"`
	ItemID        string `json:"itemId"`
	Stored        int    `json:"stored"`
	Expected      int    `json:"expected"`
}

// BalanceDrift lists every stored balance that Rebalance would change.
func BalanceDrift(txs []Transaction) []Drift {
	expected := Rebalance(txs)
	var drift []Drift
	for i, tx := range txs {
		if tx.Balance != expected[i].Balance {
			drift = append(drift, Drift{
				TransactionID: tx.ID,
				ItemID:        tx.ItemID,
				Stored:        tx.Balance,
				Expected:      expected[i].Balance,
			})
		}
	}
	return drift
}

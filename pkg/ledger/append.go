package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is a requested stock movement before validation.
type Entry struct {
	ItemID     string `json:"itemId"`
	Deposit    int    `json:"stockIn"`
	Withdrawal int    `json:"stockOut"`
	Unit       string `json:"requestingUnit"`
}

// Append validates entry against the catalog and the current fold, then prepends the new
// transaction dated now. txs is never modified; on error it is returned as is.
func Append(txs []Transaction, catalog *Catalog, entry Entry, now time.Time) ([]Transaction, Transaction, error) {
	tx, err := newTransaction(txs, catalog, entry, now)
	if err != nil {
		return txs, Transaction{}, err
	}
	out := make([]Transaction, 0, len(txs)+1)
	out = append(out, tx)
	out = append(out, txs...)
	return out, tx, nil
}

func newTransaction(txs []Transaction, catalog *Catalog, entry Entry, now time.Time) (Transaction, error) {
	itemID := strings.TrimSpace(entry.ItemID)
	if itemID == "" {
		return Transaction{}, newValidationError("select an item")
	}
	item, ok := catalog.Lookup(itemID)
	if !ok {
		return Transaction{}, newValidationError(fmt.Sprintf("unknown item %q", itemID))
	}
	if entry.Deposit < 0 || entry.Withdrawal < 0 {
		return Transaction{}, newValidationError("stock in and stock out must not be negative")
	}
	if entry.Deposit == 0 && entry.Withdrawal == 0 {
		return Transaction{}, newValidationError("enter either stock in or stock out")
	}

	var unit Unit
	if entry.Withdrawal > 0 {
		if strings.TrimSpace(entry.Unit) == "" {
			return Transaction{}, newValidationError("select a requesting unit for stock out")
		}
		parsed, ok := ParseUnit(entry.Unit)
		if !ok {
			return Transaction{}, newValidationError(fmt.Sprintf("unknown requesting unit %q", entry.Unit))
		}
		unit = parsed
	}

	current := CurrentBalance(txs, item.ID)
	if entry.Withdrawal > current+entry.Deposit {
		return Transaction{}, fmt.Errorf("%w: %d requested, %d available", ErrInsufficientStock, entry.Withdrawal, current+entry.Deposit)
	}

	return Transaction{
		ID:         uuid.NewString(),
		Date:       DateOf(now),
		ItemID:     item.ID,
		ItemName:   item.Name,
		Deposit:    entry.Deposit,
		Withdrawal: entry.Withdrawal,
		Balance:    current + entry.Deposit - entry.Withdrawal,
		Unit:       unit,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Package mockdata fabricates a plausible transaction history for demo sessions.
package mockdata

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"storeroom/pkg/ledger"
)

// Options shapes the generated history. Zero values fall back to the defaults below.
type Options struct {
	Seed       uint64
	Days       int
	MinPerItem int
	MaxPerItem int
	Now        time.Time
}

const (
	defaultDays       = 30
	defaultMinPerItem = 5
	defaultMaxPerItem = 12
	maxAmount         = 50
	depositRatio      = 0.6
)

func (o Options) withDefaults() Options {
	if o.Days <= 0 {
		o.Days = defaultDays
	}
	if o.MinPerItem <= 0 {
		o.MinPerItem = defaultMinPerItem
	}
	if o.MaxPerItem < o.MinPerItem {
		o.MaxPerItem = max(defaultMaxPerItem, o.MinPerItem)
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

// Generate builds a newest-first history for every catalog item. Withdrawals never exceed the
// running balance, so the result is consistent with the ledger fold.
func Generate(catalog *ledger.Catalog, opts Options) []ledger.Transaction {
	opts = opts.withDefaults()
	r := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	units := ledger.Units()

	var out []ledger.Transaction
	for _, item := range catalog.Items() {
		n := opts.MinPerItem + r.IntN(opts.MaxPerItem-opts.MinPerItem+1)

		stamps := make([]time.Time, n)
		for i := range stamps {
			stamps[i] = stamp(r, opts.Now, r.IntN(opts.Days))
		}
		slices.SortFunc(stamps, time.Time.Compare)

		balance := 0
		for _, at := range stamps {
			amount := r.IntN(maxAmount) + 1
			tx := ledger.Transaction{
				ID:        uuid.NewString(),
				Date:      ledger.DateOf(at),
				ItemID:    item.ID,
				ItemName:  item.Name,
				CreatedAt: at,
				UpdatedAt: at,
			}
			if r.Float64() < depositRatio || balance == 0 {
				tx.Deposit = amount
			} else {
				tx.Withdrawal = min(amount, balance)
				tx.Unit = units[r.IntN(len(units))]
			}
			balance += tx.Deposit - tx.Withdrawal
			tx.Balance = balance
			out = append(out, tx)
		}
	}
	return ledger.SortNewestFirst(out)
}

// stamp picks a working-hours time daysAgo days before now, never later than now.
func stamp(r *rand.Rand, now time.Time, daysAgo int) time.Time {
	day := now.AddDate(0, 0, -daysAgo)
	at := time.Date(day.Year(), day.Month(), day.Day(), 8+r.IntN(10), r.IntN(60), r.IntN(60), 0, now.Location())
	if at.After(now) {
		return now
	}
	return at
}

package ledger

import (
	"context"
	"errors"
	"slices"
	"time"
)

// queueTimeout bounds how long a caller waits for the owning goroutine.
const queueTimeout = 2 * time.Second

// command defines a mutation so the goroutine can serialize writes through a channel.
type command struct {
	action string
	entry  Entry
	id     string
	reply  chan commandResult
}

// commandResult forwards either the affected transaction or an error back to the caller.
type commandResult struct {
	tx  Transaction
	err error
}

// snapshotQuery lets readers copy the list without touching shared memory.
type snapshotQuery struct {
	reply chan []Transaction
}

// Service owns the session's transaction list. Append and Remove are the only mutations.
type Service struct {
	catalog      *Catalog
	now          func() time.Time
	transactions []Transaction
	commands     chan command
	snapshots    chan snapshotQuery
	quit         chan struct{}
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService starts the owning goroutine. seed is sorted newest first and rebalanced.
func NewService(catalog *Catalog, seed []Transaction, opts ...Option) *Service {
	svc := &Service{
		catalog:      catalog,
		now:          time.Now,
		transactions: Rebalance(SortNewestFirst(seed)),
		commands:     make(chan command),
		snapshots:    make(chan snapshotQuery),
		quit:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(svc)
	}
	go svc.loop()
	return svc
}

// loop processes commands and queries sequentially so no mutexes are needed.
func (s *Service) loop() {
	for {
		select {
		case cmd := <-s.commands:
			switch cmd.action {
			case "append":
				updated, tx, err := Append(s.transactions, s.catalog, cmd.entry, s.now())
				if err == nil {
					// The clock may lag entries already on file, so re-fold instead of trusting tx.Balance.
					s.transactions = Rebalance(SortNewestFirst(updated))
					if i := slices.IndexFunc(s.transactions, func(t Transaction) bool { return t.ID == tx.ID }); i >= 0 {
						tx = s.transactions[i]
					}
				}
				cmd.reply <- commandResult{tx: tx, err: err}
			case "remove":
				idx := slices.IndexFunc(s.transactions, func(tx Transaction) bool { return tx.ID == cmd.id })
				if idx < 0 {
					cmd.reply <- commandResult{err: ErrNotFound}
					continue
				}
				removed := s.transactions[idx]
				rest := slices.Delete(slices.Clone(s.transactions), idx, idx+1)
				s.transactions = Rebalance(rest)
				cmd.reply <- commandResult{tx: removed}
			default:
				cmd.reply <- commandResult{err: errors.New("unknown ledger action")}
			}
		case q := <-s.snapshots:
			q.reply <- slices.Clone(s.transactions)
		case <-s.quit:
			return
		}
	}
}

// dispatch hands a command to the goroutine and waits for its reply.
func (s *Service) dispatch(ctx context.Context, cmd command) (Transaction, error) {
	// Buffered so the loop never blocks on a caller that already gave up.
	cmd.reply = make(chan commandResult, 1)

	select {
	case s.commands <- cmd:
	case <-ctx.Done():
		return Transaction{}, ctx.Err()
	case <-time.After(queueTimeout):
		return Transaction{}, errors.New("ledger queue is busy")
	}

	select {
	case res := <-cmd.reply:
		return res.tx, res.err
	case <-ctx.Done():
		return Transaction{}, ctx.Err()
	case <-time.After(queueTimeout):
		return Transaction{}, errors.New("ledger " + cmd.action + " timed out")
	}
}

// Append records a stock movement dated today.
func (s *Service) Append(ctx context.Context, entry Entry) (Transaction, error) {
	return s.dispatch(ctx, command{action: "append", entry: entry})
}

// Remove deletes a transaction and re-folds the balances of the remaining ones.
func (s *Service) Remove(ctx context.Context, id string) (Transaction, error) {
	return s.dispatch(ctx, command{action: "remove", id: id})
}

// Transactions returns a copy of the list, newest first.
func (s *Service) Transactions(ctx context.Context) ([]Transaction, error) {
	q := snapshotQuery{reply: make(chan []Transaction, 1)}

	select {
	case s.snapshots <- q:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(queueTimeout):
		return nil, errors.New("ledger queue is busy")
	}

	select {
	case txs := <-q.reply:
		return txs, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(queueTimeout):
		return nil, errors.New("ledger snapshot timed out")
	}
}

// Get finds one transaction by id.
func (s *Service) Get(ctx context.Context, id string) (Transaction, error) {
	txs, err := s.Transactions(ctx)
	if err != nil {
		return Transaction{}, err
	}
	idx := slices.IndexFunc(txs, func(tx Transaction) bool { return tx.ID == id })
	if idx < 0 {
		return Transaction{}, ErrNotFound
	}
	return txs[idx], nil
}

// Catalog exposes the immutable item catalog.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Today is the calendar day according to the service clock.
func (s *Service) Today() Date {
	return DateOf(s.now())
}

// Balance folds the current balance of one item.
func (s *Service) Balance(ctx context.Context, itemID string) (int, error) {
	txs, err := s.Transactions(ctx)
	if err != nil {
		return 0, err
	}
	return CurrentBalance(txs, itemID), nil
}

// Daily summarizes today's activity.
func (s *Service) Daily(ctx context.Context) (Activity, error) {
	txs, err := s.Transactions(ctx)
	if err != nil {
		return Activity{}, err
	}
	return DailyActivity(txs, s.Today()), nil
}

// Summary classifies every catalog item.
func (s *Service) Summary(ctx context.Context) (InventorySummary, error) {
	txs, err := s.Transactions(ctx)
	if err != nil {
		return InventorySummary{}, err
	}
	return Summarize(txs, s.catalog), nil
}

// Records filters the list for the records view.
func (s *Service) Records(ctx context.Context, filter RecordFilter) ([]Transaction, error) {
	txs, err := s.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	return FilterRecords(txs, filter), nil
}

// Report generates and titles a report over the current list.
func (s *Service) Report(ctx context.Context, filter ReportFilter) (Report, error) {
	txs, err := s.Transactions(ctx)
	if err != nil {
		return Report{}, err
	}
	report := GenerateReport(txs, filter)
	report.Title = ReportTitle(s.catalog, filter.ItemID)
	return report, nil
}

// Close stops the background goroutine when the application shuts down.
func (s *Service) Close() {
	close(s.quit)
}

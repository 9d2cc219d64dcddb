package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeroom/pkg/ledger"
)

func newTestService(t *testing.T, seed []ledger.Transaction) *ledger.Service {
	t.Helper()
	clock := at("2024-01-02", 12)
	svc := ledger.NewService(widgets(), seed, ledger.WithClock(func() time.Time { return clock }))
	t.Cleanup(svc.Close)
	return svc
}

func TestServiceAppendAndViews(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, []ledger.Transaction{tx("a", "1", "2024-01-01", 9, 20, 0, 0)})

	balance, err := svc.Balance(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 20, balance)

	added, err := svc.Append(ctx, ledger.Entry{ItemID: "1", Withdrawal: 15, Unit: "ICT"})
	require.NoError(t, err)
	assert.Equal(t, 5, added.Balance)

	_, err = svc.Append(ctx, ledger.Entry{ItemID: "1", Withdrawal: 10, Unit: "ICT"})
	assert.True(t, errors.Is(err, ledger.ErrInsufficientStock))

	txs, err := svc.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, added.ID, txs[0].ID)
	assert.Empty(t, ledger.BalanceDrift(txs))

	daily, err := svc.Daily(ctx)
	require.NoError(t, err)
	assert.Equal(t, ledger.Activity{Count: 1, TotalWithdrawals: 15}, daily)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, ledger.LowStock, summary.Items[0].Status)
	assert.Equal(t, ledger.Unavailable, summary.Items[1].Status)

	report, err := svc.Report(ctx, ledger.ReportFilter{ItemID: "1"})
	require.NoError(t, err)
	assert.Equal(t, "Inventory Report On Widgets", report.Title)
	assert.Equal(t, 5, report.Summary.FinalBalance)

	records, err := svc.Records(ctx, ledger.RecordFilter{Search: "gadg"})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestServiceSeedIsRebalanced(t *testing.T) {
	svc := newTestService(t, []ledger.Transaction{
		tx("a", "1", "2024-01-01", 9, 20, 0, 0),
		tx("b", "1", "2023-12-30", 9, 5, 0, 0),
	})
	txs, err := svc.Transactions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", txs[0].ID)
	assert.Equal(t, 25, txs[0].Balance)
	assert.Equal(t, 5, txs[1].Balance)
}

func TestServiceRemoveRefolds(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, []ledger.Transaction{
		tx("a", "1", "2024-01-01", 9, 20, 0, 0),
		tx("b", "1", "2024-01-01", 10, 10, 0, 0),
		tx("c", "1", "2024-01-02", 9, 0, 8, 0),
	})

	removed, err := svc.Remove(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", removed.ID)

	got, err := svc.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 12, got.Balance)

	_, err = svc.Remove(ctx, "b")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	_, err = svc.Get(ctx, "b")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestServiceSerializesConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Append(ctx, ledger.Entry{ItemID: "2", Deposit: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	balance, err := svc.Balance(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, 20, balance)
}

func TestServiceHonorsCancelledContext(t *testing.T) {
	svc := newTestService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Transactions(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

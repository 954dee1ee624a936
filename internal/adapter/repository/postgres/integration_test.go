package postgres_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/transferledger/internal/adapter/repository/postgres"
	"github.com/iho/transferledger/internal/domain"
	infra "github.com/iho/transferledger/internal/infrastructure/postgres"
	"github.com/iho/transferledger/internal/usecase"
)

const migrationsPath = "../../../infrastructure/postgres/migrations"

// testLedger wires the use cases over a real database.
type testLedger struct {
	pool      *pgxpool.Pool
	seeder    *postgres.Seeder
	balances  *usecase.BalanceUseCase
	transfers *usecase.TransferUseCase
	ledger    *usecase.LedgerUseCase
}

// newTestLedger migrates and truncates the test database.
func newTestLedger(t *testing.T) *testLedger {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := testDatabaseURL(t)

	require.NoError(t, infra.RunMigrations(dbURL, migrationsPath, zerolog.Nop()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infra.NewPool(ctx, dbURL, 20, 2)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE TABLE ledger_entries, accounts CASCADE`)
	require.NoError(t, err)

	txManager := postgres.NewTxManager(pool)
	accounts := postgres.NewAccountRepository(pool)
	entries := postgres.NewEntryRepository(pool)
	idGen := postgres.NewULIDGenerator()

	balances := usecase.NewBalanceUseCase(accounts, entries, zerolog.Nop())

	return &testLedger{
		pool:     pool,
		seeder:   postgres.NewSeeder(txManager, accounts, entries, idGen),
		balances: balances,
		transfers: usecase.NewTransferUseCase(txManager, accounts, entries, balances, idGen,
			usecase.WithRetrier(postgres.NewRetrier(zerolog.Nop()))),
		ledger: usecase.NewLedgerUseCase(entries),
	}
}

func (l *testLedger) balance(t *testing.T, number string) decimal.Decimal {
	t.Helper()

	b, err := l.balances.ComputeBalance(context.Background(), number)
	require.NoError(t, err)
	return b
}

func TestIntegration_TransferScenario(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	created, err := l.seeder.Seed(ctx, map[string]string{"1001": "200", "1002": "0"})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	input := usecase.TransferInput{
		SourceAccountNumber:      "1001",
		DestinationAccountNumber: "1002",
		Amount:                   decimal.NewFromInt(150),
	}
	require.NoError(t, l.transfers.Transfer(ctx, input))

	err = l.transfers.Transfer(ctx, input)
	require.Error(t, err)
	assert.Equal(t, domain.KindInsufficientFunds, domain.KindOf(err))

	assert.True(t, l.balance(t, "1001").Equal(decimal.NewFromInt(50)))
	assert.True(t, l.balance(t, "1002").Equal(decimal.NewFromInt(150)))

	report, err := l.ledger.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, int64(4), report.EntryCount)
}

func TestIntegration_SeedIsIdempotent(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	_, err := l.seeder.Seed(ctx, map[string]string{"1001": "10"})
	require.NoError(t, err)

	created, err := l.seeder.Seed(ctx, map[string]string{"1001": "10", "1003": "5.50"})
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.True(t, l.balance(t, "1001").Equal(decimal.NewFromInt(10)))
	assert.True(t, l.balance(t, "1003").Equal(decimal.RequireFromString("5.5")))
}

func TestIntegration_ConcurrentTransfersRejectOverdraft(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	_, err := l.seeder.Seed(ctx, map[string]string{"1001": "100", "1002": "0"})
	require.NoError(t, err)

	const workers = 20
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)

	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			err := l.transfers.Transfer(ctx, usecase.TransferInput{
				SourceAccountNumber:      "1001",
				DestinationAccountNumber: "1002",
				Amount:                   decimal.NewFromInt(10),
			})
			if err == nil {
				successes.Add(1)
				return
			}
			assert.Equal(t, domain.KindInsufficientFunds, domain.KindOf(err))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), successes.Load())
	assert.True(t, l.balance(t, "1001").IsZero())
	assert.True(t, l.balance(t, "1002").Equal(decimal.NewFromInt(100)))

	report, err := l.ledger.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
}

func TestIntegration_EntriesAreAppendOnly(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	_, err := l.seeder.Seed(ctx, map[string]string{"1001": "10"})
	require.NoError(t, err)

	_, err = l.pool.Exec(ctx, `UPDATE ledger_entries SET amount = amount * 2`)
	assert.Error(t, err)

	_, err = l.pool.Exec(ctx, `DELETE FROM ledger_entries`)
	assert.Error(t, err)
}

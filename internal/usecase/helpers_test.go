package usecase_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/transferledger/internal/adapter/repository/memory"
	"github.com/iho/transferledger/internal/domain"
	"github.com/iho/transferledger/internal/usecase"
)

type seqIDs struct {
	n atomic.Int64
}

func (g *seqIDs) Generate() string {
	return fmt.Sprintf("id-%04d", g.n.Add(1))
}

// ledgerFixture wires the use cases over the in-memory store.
type ledgerFixture struct {
	dir       *memory.AccountDirectory
	store     *memory.EntryStore
	balances  *usecase.BalanceUseCase
	transfers *usecase.TransferUseCase
	ledger    *usecase.LedgerUseCase
	ops       *usecase.OperationsService
}

func newLedgerFixture(t *testing.T, opening map[string]string, opts ...usecase.TransferOption) *ledgerFixture {
	t.Helper()

	dir := memory.NewAccountDirectory()
	store := memory.NewEntryStore()
	ids := &seqIDs{}

	require.NoError(t, memory.Seed(context.Background(), dir, store, ids, opening))

	balances := usecase.NewBalanceUseCase(dir, store, zerolog.Nop())
	transfers := usecase.NewTransferUseCase(memory.NewTxManager(store), dir, store, balances, ids, opts...)

	return &ledgerFixture{
		dir:       dir,
		store:     store,
		balances:  balances,
		transfers: transfers,
		ledger:    usecase.NewLedgerUseCase(store),
		ops:       usecase.NewOperationsService(balances, transfers, zerolog.Nop()),
	}
}

func (f *ledgerFixture) balance(t *testing.T, number string) decimal.Decimal {
	t.Helper()

	b, err := f.balances.ComputeBalance(context.Background(), number)
	require.NoError(t, err)

	return b
}

func (f *ledgerFixture) entryCount() int {
	return len(f.store.Entries())
}

func (f *ledgerFixture) account(t *testing.T, number string) *domain.Account {
	t.Helper()

	acc, err := f.dir.ResolveAccount(context.Background(), number)
	require.NoError(t, err)

	return acc
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

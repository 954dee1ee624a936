package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/transferledger/internal/domain"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	dir := NewAccountDirectory()
	store := NewEntryStore()

	err := Seed(ctx, dir, store, &seqIDs{}, map[string]string{
		"1001": "200.00",
		"1002": "0",
	})
	require.NoError(t, err)

	a, err := dir.ResolveAccount(ctx, "1001")
	require.NoError(t, err)
	entries, _ := store.ListByAccount(ctx, nil, a.ID)
	assert.True(t, domain.SumEntries(entries).Equal(decimal.NewFromInt(200)))

	b, err := dir.ResolveAccount(ctx, "1002")
	require.NoError(t, err)
	entries, _ = store.ListByAccount(ctx, nil, b.ID)
	assert.Empty(t, entries)

	totals, err := store.Totals(ctx)
	require.NoError(t, err)
	assert.True(t, totals.TotalAmount.IsZero(), "seeding must keep the ledger balanced")
	assert.Zero(t, totals.UnpairedEntries)
}

func TestSeed_InvalidAmount(t *testing.T) {
	err := Seed(context.Background(), NewAccountDirectory(), NewEntryStore(), &seqIDs{}, map[string]string{"1001": "abc"})
	assert.Error(t, err)

	store := NewEntryStore()
	err = Seed(context.Background(), NewAccountDirectory(), store, &seqIDs{}, map[string]string{"1001": "-5"})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Empty(t, store.Entries())
}

func TestSeed_FailureRegistersNoAccounts(t *testing.T) {
	ctx := context.Background()
	dir := NewAccountDirectory()
	store := NewEntryStore()

	err := Seed(ctx, dir, store, &seqIDs{}, map[string]string{"1001": "10", "1002": "abc"})
	require.Error(t, err)

	_, err = dir.ResolveAccount(ctx, "1001")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	_, err = dir.ResolveAccount(ctx, FundingAccount.Number)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.Empty(t, store.Entries())
}

func TestSeed_RejectsFundingAccountNumber(t *testing.T) {
	ctx := context.Background()
	dir := NewAccountDirectory()
	store := NewEntryStore()

	err := Seed(ctx, dir, store, &seqIDs{}, map[string]string{"1001": "10", FundingAccount.Number: "50"})
	assert.ErrorIs(t, err, domain.ErrReservedAccountNumber)

	_, err = dir.ResolveAccount(ctx, "1001")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.Empty(t, store.Entries())
}

func TestAccountDirectory(t *testing.T) {
	dir := NewAccountDirectory(&domain.Account{ID: "acc-1", Number: "1964"})

	acc, err := dir.ResolveAccount(context.Background(), "1964")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", acc.ID)

	_, err = dir.ResolveAccount(context.Background(), "0001")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

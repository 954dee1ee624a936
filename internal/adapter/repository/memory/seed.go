package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/transferledger/internal/domain"
	"github.com/iho/transferledger/internal/usecase"
)

// FundingAccount is the counterpart of opening balances created by Seed.
// Its balance is the negative of all seeded money, which keeps the ledger
// summing to zero.
var FundingAccount = &domain.Account{ID: "funding", Number: "0000"}

// Seed registers one account per number and credits it with its opening
// balance from FundingAccount. Numbers are processed in sorted order so IDs
// are assigned deterministically. Accounts become resolvable only once every
// opening balance has been committed.
func Seed(ctx context.Context, dir *AccountDirectory, store *EntryStore, idGen usecase.IDGenerator, balances map[string]string) error {
	numbers := make([]string, 0, len(balances))
	for number := range balances {
		if number == FundingAccount.Number {
			return fmt.Errorf("seed account %s: %w", number, domain.ErrReservedAccountNumber)
		}
		numbers = append(numbers, number)
	}
	sort.Strings(numbers)

	tx, err := NewTxManager(store).Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	accounts := make([]*domain.Account, 0, len(numbers))
	for _, number := range numbers {
		amount, err := decimal.NewFromString(balances[number])
		if err != nil {
			return fmt.Errorf("seed account %s: %w", number, err)
		}

		account := &domain.Account{ID: idGen.Generate(), Number: number}
		accounts = append(accounts, account)

		if amount.IsZero() {
			continue
		}

		if err := domain.ValidateTransferAmount(amount); err != nil {
			return fmt.Errorf("seed account %s: %w", number, err)
		}

		debit, credit := domain.NewTransferLegs(idGen.Generate(), idGen.Generate(), idGen.Generate(), FundingAccount, account, amount, now)
		if err := store.AppendPair(ctx, tx, debit, credit); err != nil {
			return fmt.Errorf("seed account %s: %w", number, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	dir.Add(FundingAccount)
	for _, account := range accounts {
		dir.Add(account)
	}

	return nil
}

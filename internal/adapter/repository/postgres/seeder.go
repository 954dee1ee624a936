package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/transferledger/internal/domain"
	"github.com/iho/transferledger/internal/usecase"
)

// FundingAccount is the counterpart of every opening balance.
var FundingAccount = &domain.Account{ID: "funding", Number: "0000"}

// Seeder provisions accounts with opening balances funded from FundingAccount.
type Seeder struct {
	txManager usecase.TransactionManager
	accounts  *AccountRepository
	entries   *EntryRepository
	idGen     usecase.IDGenerator
	now       func() time.Time
}

// NewSeeder creates a new Seeder.
func NewSeeder(txManager usecase.TransactionManager, accounts *AccountRepository, entries *EntryRepository, idGen usecase.IDGenerator) *Seeder {
	return &Seeder{
		txManager: txManager,
		accounts:  accounts,
		entries:   entries,
		idGen:     idGen,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Seed creates each missing account and credits it with its opening balance in
// a single transaction. Accounts that already exist are left untouched.
func (s *Seeder) Seed(ctx context.Context, balances map[string]string) (created int, err error) {
	numbers := make([]string, 0, len(balances))
	for number := range balances {
		if number == FundingAccount.Number {
			return 0, fmt.Errorf("seed account %s: %w", number, domain.ErrReservedAccountNumber)
		}
		numbers = append(numbers, number)
	}
	sort.Strings(numbers)

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := s.ensureAccount(ctx, tx, FundingAccount); err != nil {
		return 0, err
	}

	for _, number := range numbers {
		amount, err := decimal.NewFromString(balances[number])
		if err != nil {
			return 0, fmt.Errorf("seed account %s: %w", number, err)
		}

		account := &domain.Account{ID: s.idGen.Generate(), Number: number}
		isNew, err := s.ensureAccount(ctx, tx, account)
		if err != nil {
			return 0, fmt.Errorf("seed account %s: %w", number, err)
		}
		if !isNew {
			continue
		}
		created++

		if amount.IsZero() {
			continue
		}

		if err := domain.ValidateTransferAmount(amount); err != nil {
			return 0, fmt.Errorf("seed account %s: %w", number, err)
		}

		debit, credit := domain.NewTransferLegs(s.idGen.Generate(), s.idGen.Generate(), s.idGen.Generate(), FundingAccount, account, amount, s.now())
		if err := s.entries.AppendPair(ctx, tx, debit, credit); err != nil {
			return 0, fmt.Errorf("seed account %s: %w", number, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return created, nil
}

func (s *Seeder) ensureAccount(ctx context.Context, tx usecase.Transaction, account *domain.Account) (bool, error) {
	_, err := s.accounts.ResolveAccount(ctx, account.Number)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return false, err
	}

	if err := s.accounts.Create(ctx, tx, account); err != nil {
		return false, err
	}

	return true, nil
}

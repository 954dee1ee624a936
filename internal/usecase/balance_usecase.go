package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/transferledger/internal/domain"
)

const outcomeSuccess = "success"

// BalanceUseCase derives account balances from ledger entries.
type BalanceUseCase struct {
	accounts  AccountResolver
	entryRepo EntryRepository
	recorder  MetricsRecorder
	logger    zerolog.Logger
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(accounts AccountResolver, entryRepo EntryRepository, logger zerolog.Logger) *BalanceUseCase {
	return &BalanceUseCase{
		accounts:  accounts,
		entryRepo: entryRepo,
		recorder:  noopRecorder{},
		logger:    logger,
	}
}

// WithRecorder sets the metrics recorder and returns the use case.
func (uc *BalanceUseCase) WithRecorder(recorder MetricsRecorder) *BalanceUseCase {
	if recorder != nil {
		uc.recorder = recorder
	}

	return uc
}

// ComputeBalance returns the sum of all committed entries of the account.
// It takes no locks and may run alongside in-flight transfers.
func (uc *BalanceUseCase) ComputeBalance(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	start := time.Now()

	balance, err := uc.computeBalance(ctx, accountNumber)

	outcome := outcomeSuccess
	if err != nil {
		outcome = string(domain.KindOf(err))
		uc.logger.Debug().Err(err).Str("account_number", accountNumber).Msg("balance query failed")
	}
	uc.recorder.RecordBalanceQuery(outcome, time.Since(start))

	return balance, err
}

// FormattedBalance returns the account balance rendered for display.
func (uc *BalanceUseCase) FormattedBalance(ctx context.Context, accountNumber string) (string, error) {
	balance, err := uc.ComputeBalance(ctx, accountNumber)
	if err != nil {
		return "", err
	}

	return domain.FormatBalance(balance), nil
}

func (uc *BalanceUseCase) computeBalance(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	account, err := resolveAccount(ctx, uc.accounts, accountNumber, domain.KindAccountNotFound)
	if err != nil {
		return decimal.Zero, err
	}

	return uc.balanceOf(ctx, nil, account.ID)
}

// balanceOf folds the entries of accountID, reading through tx when non-nil.
func (uc *BalanceUseCase) balanceOf(ctx context.Context, tx Transaction, accountID string) (decimal.Decimal, error) {
	entries, err := uc.entryRepo.ListByAccount(ctx, tx, accountID)
	if err != nil {
		return decimal.Zero, domain.NewStorageError("list entries", err)
	}

	return domain.SumEntries(entries), nil
}

var notFoundErrors = map[domain.ErrorKind]error{
	domain.KindAccountNotFound:            domain.ErrAccountNotFound,
	domain.KindSourceAccountNotFound:      domain.ErrSourceAccountNotFound,
	domain.KindDestinationAccountNotFound: domain.ErrDestinationAccountNotFound,
}

// resolveAccount translates lookup failures into the given not-found kind.
func resolveAccount(ctx context.Context, resolver AccountResolver, number string, notFound domain.ErrorKind) (*domain.Account, error) {
	if !domain.ValidateAccountNumber(number) {
		return nil, domain.NewError(notFound, notFoundErrors[notFound].Error(), nil)
	}

	account, err := resolver.ResolveAccount(ctx, number)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.NewError(notFound, notFoundErrors[notFound].Error(), nil)
		}

		return nil, domain.NewStorageError("resolve account", err)
	}

	if account == nil {
		return nil, domain.NewError(notFound, notFoundErrors[notFound].Error(), nil)
	}

	return account, nil
}

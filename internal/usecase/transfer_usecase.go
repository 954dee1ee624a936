package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/transferledger/internal/domain"
)

// TransferUseCase executes transfers as atomic debit/credit entry pairs.
type TransferUseCase struct {
	txManager TransactionManager
	accounts  AccountResolver
	entryRepo EntryRepository
	balances  *BalanceUseCase
	idGen     IDGenerator
	locker    AccountLocker
	retrier   Retrier
	recorder  MetricsRecorder
	logger    zerolog.Logger
	now       func() time.Time
}

// TransferOption configures a TransferUseCase.
type TransferOption func(*TransferUseCase)

// WithAccountLocker adds a lock around each transfer, keyed by source account.
func WithAccountLocker(locker AccountLocker) TransferOption {
	return func(uc *TransferUseCase) {
		if locker != nil {
			uc.locker = locker
		}
	}
}

// WithRetrier retries transfers that hit transient storage conflicts.
func WithRetrier(retrier Retrier) TransferOption {
	return func(uc *TransferUseCase) {
		if retrier != nil {
			uc.retrier = retrier
		}
	}
}

// WithMetricsRecorder records transfer outcomes.
func WithMetricsRecorder(recorder MetricsRecorder) TransferOption {
	return func(uc *TransferUseCase) {
		if recorder != nil {
			uc.recorder = recorder
		}
	}
}

// WithLogger sets the transfer logger.
func WithLogger(logger zerolog.Logger) TransferOption {
	return func(uc *TransferUseCase) {
		uc.logger = logger
	}
}

// WithClock overrides the entry timestamp source.
func WithClock(now func() time.Time) TransferOption {
	return func(uc *TransferUseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	accounts AccountResolver,
	entryRepo EntryRepository,
	balances *BalanceUseCase,
	idGen IDGenerator,
	opts ...TransferOption,
) *TransferUseCase {
	uc := &TransferUseCase{
		txManager: txManager,
		accounts:  accounts,
		entryRepo: entryRepo,
		balances:  balances,
		idGen:     idGen,
		locker:    NoopLocker{},
		retrier:   noRetry{},
		recorder:  noopRecorder{},
		logger:    zerolog.Nop(),
		now:       func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// TransferInput represents input for a transfer.
type TransferInput struct {
	SourceAccountNumber      string
	DestinationAccountNumber string
	Amount                   decimal.Decimal
}

// Transfer moves Amount from the source to the destination account.
// Identical calls are independent transfers; nothing is deduplicated.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) error {
	start := time.Now()

	err := uc.transfer(ctx, input)

	outcome := outcomeSuccess
	if err != nil {
		outcome = string(domain.KindOf(err))
	}

	var logEvent *zerolog.Event
	switch outcome {
	case outcomeSuccess:
		logEvent = uc.logger.Info()
	case string(domain.KindStorageFailure):
		logEvent = uc.logger.Error().Err(err)
	default:
		logEvent = uc.logger.Warn().Err(err)
	}

	logEvent.
		Str("outcome", outcome).
		Str("source_account", input.SourceAccountNumber).
		Str("destination_account", input.DestinationAccountNumber).
		Str("amount", input.Amount.String()).
		Dur("elapsed", time.Since(start)).
		Msg("transfer processed")

	uc.recorder.RecordTransfer(outcome, input.Amount, time.Since(start))

	return err
}

func (uc *TransferUseCase) transfer(ctx context.Context, input TransferInput) error {
	// 1. Validate amount before touching storage
	if err := domain.ValidateTransferAmount(input.Amount); err != nil {
		return err
	}

	// 2. Resolve both accounts
	source, err := resolveAccount(ctx, uc.accounts, input.SourceAccountNumber, domain.KindSourceAccountNotFound)
	if err != nil {
		return err
	}

	destination, err := resolveAccount(ctx, uc.accounts, input.DestinationAccountNumber, domain.KindDestinationAccountNotFound)
	if err != nil {
		return err
	}

	if source.ID == destination.ID {
		return domain.NewError(domain.KindSameAccount, domain.ErrSameAccount.Error(), nil)
	}

	// 3. Check and append under the source account lock
	return uc.retrier.Retry(ctx, func() error {
		return uc.locker.WithAccountLock(ctx, source.ID, func(ctx context.Context) error {
			return uc.appendTransfer(ctx, source, destination, input.Amount)
		})
	})
}

// appendTransfer re-derives the source balance and appends both legs in one
// transaction while holding the source account lock.
func (uc *TransferUseCase) appendTransfer(ctx context.Context, source, destination *domain.Account, amount decimal.Decimal) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return domain.NewStorageError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := uc.entryRepo.LockAccount(ctx, tx, source.ID); err != nil {
		return domain.NewStorageError("lock source account", err)
	}

	balance, err := uc.balances.balanceOf(ctx, tx, source.ID)
	if err != nil {
		return err
	}

	if balance.LessThan(amount) {
		return domain.NewInsufficientFundsError(balance)
	}

	debit, credit := domain.NewTransferLegs(
		uc.idGen.Generate(), uc.idGen.Generate(), uc.idGen.Generate(),
		source, destination, amount, uc.now())

	if err := uc.entryRepo.AppendPair(ctx, tx, debit, credit); err != nil {
		return domain.NewStorageError("append entries", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.NewStorageError("commit transaction", err)
	}

	return nil
}

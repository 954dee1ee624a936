package usecase_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/transferledger/internal/domain"
	"github.com/iho/transferledger/internal/usecase"
	"github.com/iho/transferledger/internal/usecase/mocks"
)

func TestTransferUseCase_DepletingScenario(t *testing.T) {
	f := newLedgerFixture(t, map[string]string{"1001": "200", "1002": "0"})
	ctx := context.Background()

	err := f.transfers.Transfer(ctx, usecase.TransferInput{
		SourceAccountNumber:      "1001",
		DestinationAccountNumber: "1002",
		Amount:                   dec("150"),
	})
	require.NoError(t, err)

	assert.True(t, f.balance(t, "1001").Equal(dec("50")))
	assert.True(t, f.balance(t, "1002").Equal(dec("150")))

	before := f.entryCount()

	err = f.transfers.Transfer(ctx, usecase.TransferInput{
		SourceAccountNumber:      "1001",
		DestinationAccountNumber: "1002",
		Amount:                   dec("150"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, "your balance: R$ 50,00 is insufficient", err.Error())
	assert.Equal(t, before, f.entryCount(), "failed transfer must not append entries")
	assert.True(t, f.balance(t, "1001").Equal(dec("50")))
}

func TestTransferUseCase_ExactBalance(t *testing.T) {
	f := newLedgerFixture(t, map[string]string{"1001": "75.25", "1002": "10"})

	err := f.transfers.Transfer(context.Background(), usecase.TransferInput{
		SourceAccountNumber:      "1001",
		DestinationAccountNumber: "1002",
		Amount:                   dec("75.25"),
	})
	require.NoError(t, err)

	assert.True(t, f.balance(t, "1001").IsZero())
	assert.True(t, f.balance(t, "1002").Equal(dec("85.25")))
}

func TestTransferUseCase_WritesDebitAndCredit(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := newLedgerFixture(t, map[string]string{"1001": "100", "1002": "0"},
		usecase.WithClock(func() time.Time { return at }))

	before := f.entryCount()
	require.NoError(t, f.transfers.Transfer(context.Background(), usecase.TransferInput{
		SourceAccountNumber:      "1001",
		DestinationAccountNumber: "1002",
		Amount:                   dec("30"),
	}))

	entries := f.store.Entries()
	require.Len(t, entries, before+2)

	debit, credit := entries[before], entries[before+1]
	source, destination := f.account(t, "1001"), f.account(t, "1002")

	assert.Equal(t, source.ID, debit.AccountID)
	assert.Equal(t, domain.OperationKindDebit, debit.Kind)
	assert.True(t, debit.Amount.Equal(dec("-30")))

	assert.Equal(t, destination.ID, credit.AccountID)
	assert.Equal(t, domain.OperationKindCredit, credit.Kind)
	assert.True(t, credit.Amount.Equal(dec("30")))

	for _, e := range []*domain.Entry{debit, credit} {
		assert.Equal(t, source.ID, e.SourceAccountID)
		assert.Equal(t, destination.ID, e.DestinationAccountID)
		assert.Equal(t, domain.OperationCategoryTransfer, e.Category)
		assert.Equal(t, at, e.CreatedAt)
	}
	assert.Equal(t, debit.TransferID, credit.TransferID)
	assert.NotEqual(t, debit.ID, credit.ID)
}

func TestTransferUseCase_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		destination string
		amount      string
		wantKind    domain.ErrorKind
		wantErr     error
	}{
		{"zero amount", "1001", "1002", "0", domain.KindInvalidAmount, domain.ErrInvalidAmount},
		{"negative amount", "1001", "1002", "-10", domain.KindInvalidAmount, domain.ErrInvalidAmount},
		{"too many decimals", "1001", "1002", "0.001", domain.KindInvalidAmount, domain.ErrInvalidAmount},
		{"above maximum", "1001", "1002", "1000000000000.01", domain.KindInvalidAmount, domain.ErrInvalidAmount},
		{"amount checked before accounts", "9999", "8888", "-1", domain.KindInvalidAmount, domain.ErrInvalidAmount},
		{"unknown source", "9999", "1002", "10", domain.KindSourceAccountNotFound, domain.ErrSourceAccountNotFound},
		{"source checked before destination", "9999", "8888", "10", domain.KindSourceAccountNotFound, domain.ErrSourceAccountNotFound},
		{"unknown destination", "1001", "8888", "10", domain.KindDestinationAccountNotFound, domain.ErrDestinationAccountNotFound},
		{"same account", "1001", "1001", "10", domain.KindSameAccount, domain.ErrSameAccount},
		{"insufficient funds", "1001", "1002", "100.01", domain.KindInsufficientFunds, domain.ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture(t, map[string]string{"1001": "100", "1002": "0"})
			before := f.entryCount()

			err := f.transfers.Transfer(context.Background(), usecase.TransferInput{
				SourceAccountNumber:      tt.source,
				DestinationAccountNumber: tt.destination,
				Amount:                   dec(tt.amount),
			})

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
			assert.Equal(t, before, f.entryCount())
			assert.True(t, f.balance(t, "1001").Equal(dec("100")))
		})
	}
}

func TestTransferUseCase_IdenticalRequestsAreIndependent(t *testing.T) {
	f := newLedgerFixture(t, map[string]string{"1001": "100", "1002": "0"})
	input := usecase.TransferInput{SourceAccountNumber: "1001", DestinationAccountNumber: "1002", Amount: dec("10")}
	before := f.entryCount()

	require.NoError(t, f.transfers.Transfer(context.Background(), input))
	require.NoError(t, f.transfers.Transfer(context.Background(), input))

	assert.Equal(t, before+4, f.entryCount())
	assert.True(t, f.balance(t, "1002").Equal(dec("20")))
}

func TestTransferUseCase_ConcurrentTransfersNeverOverdraw(t *testing.T) {
	f := newLedgerFixture(t, map[string]string{"1001": "100", "1002": "0", "1003": "0"})

	const workers = 50
	amount := dec("7")

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
		start     = make(chan struct{})
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start

			destination := "1002"
			if i%2 == 1 {
				destination = "1003"
			}

			err := f.transfers.Transfer(context.Background(), usecase.TransferInput{
				SourceAccountNumber:      "1001",
				DestinationAccountNumber: destination,
				Amount:                   amount,
			})
			if err == nil {
				succeeded.Add(1)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		}(i)
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int64(14), succeeded.Load(), "exactly floor(100/7) transfers fit")

	remaining := f.balance(t, "1001")
	assert.False(t, remaining.IsNegative())
	assert.True(t, remaining.Equal(dec("2")))

	credited := f.balance(t, "1002").Add(f.balance(t, "1003"))
	assert.True(t, credited.Equal(amount.Mul(decimal.NewFromInt(succeeded.Load()))))

	report, err := f.ledger.CheckConsistency(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Consistent)
}

func TestTransferUseCase_ConcurrentOpposingTransfers(t *testing.T) {
	f := newLedgerFixture(t, map[string]string{"1001": "50", "1002": "50"})

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			source, destination := "1001", "1002"
			if i%2 == 1 {
				source, destination = destination, source
			}

			_ = f.transfers.Transfer(context.Background(), usecase.TransferInput{
				SourceAccountNumber:      source,
				DestinationAccountNumber: destination,
				Amount:                   dec("5"),
			})
		}(i)
	}
	wg.Wait()

	a, b := f.balance(t, "1001"), f.balance(t, "1002")
	assert.False(t, a.IsNegative())
	assert.False(t, b.IsNegative())
	assert.True(t, a.Add(b).Equal(dec("100")), "money is neither created nor destroyed")
}

func transferMocks(ctrl *gomock.Controller) (*mocks.MockTransactionManager, *mocks.MockTransaction, *mocks.MockAccountResolver, *mocks.MockEntryRepository, *mocks.MockIDGenerator) {
	txManager := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	accounts := mocks.NewMockAccountResolver(ctrl)
	entryRepo := mocks.NewMockEntryRepository(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	accounts.EXPECT().ResolveAccount(gomock.Any(), "1001").Return(&domain.Account{ID: "acc-1", Number: "1001"}, nil).AnyTimes()
	accounts.EXPECT().ResolveAccount(gomock.Any(), "1002").Return(&domain.Account{ID: "acc-2", Number: "1002"}, nil).AnyTimes()
	idGen.EXPECT().Generate().Return("generated-id").AnyTimes()

	return txManager, tx, accounts, entryRepo, idGen
}

func fundedEntries() []*domain.Entry {
	return []*domain.Entry{{ID: "e1", AccountID: "acc-1", Kind: domain.OperationKindCredit, Amount: dec("100")}}
}

func TestTransferUseCase_AppendFailureRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txManager, tx, accounts, entryRepo, idGen := transferMocks(ctrl)

	txManager.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	entryRepo.EXPECT().LockAccount(gomock.Any(), tx, "acc-1").Return(nil)
	entryRepo.EXPECT().ListByAccount(gomock.Any(), tx, "acc-1").Return(fundedEntries(), nil)
	entryRepo.EXPECT().AppendPair(gomock.Any(), tx, gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	tx.EXPECT().Commit(gomock.Any()).Times(0)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	balances := usecase.NewBalanceUseCase(accounts, entryRepo, zerolog.Nop())
	uc := usecase.NewTransferUseCase(txManager, accounts, entryRepo, balances, idGen)

	err := uc.Transfer(context.Background(), usecase.TransferInput{
		SourceAccountNumber: "1001", DestinationAccountNumber: "1002", Amount: dec("10"),
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindStorageFailure, domain.KindOf(err))
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
}

func TestTransferUseCase_CommitFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txManager, tx, accounts, entryRepo, idGen := transferMocks(ctrl)

	txManager.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	entryRepo.EXPECT().LockAccount(gomock.Any(), tx, "acc-1").Return(nil)
	entryRepo.EXPECT().ListByAccount(gomock.Any(), tx, "acc-1").Return(fundedEntries(), nil)
	entryRepo.EXPECT().AppendPair(gomock.Any(), tx, gomock.Any(), gomock.Any()).Return(nil)
	tx.EXPECT().Commit(gomock.Any()).Return(errors.New("serialization failure"))
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	balances := usecase.NewBalanceUseCase(accounts, entryRepo, zerolog.Nop())
	uc := usecase.NewTransferUseCase(txManager, accounts, entryRepo, balances, idGen)

	err := uc.Transfer(context.Background(), usecase.TransferInput{
		SourceAccountNumber: "1001", DestinationAccountNumber: "1002", Amount: dec("10"),
	})
	assert.Equal(t, domain.KindStorageFailure, domain.KindOf(err))
}

func TestTransferUseCase_BeginFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txManager, _, accounts, entryRepo, idGen := transferMocks(ctrl)
	txManager.EXPECT().Begin(gomock.Any()).Return(nil, errors.New("pool exhausted"))

	balances := usecase.NewBalanceUseCase(accounts, entryRepo, zerolog.Nop())
	uc := usecase.NewTransferUseCase(txManager, accounts, entryRepo, balances, idGen)

	err := uc.Transfer(context.Background(), usecase.TransferInput{
		SourceAccountNumber: "1001", DestinationAccountNumber: "1002", Amount: dec("10"),
	})
	assert.Equal(t, domain.KindStorageFailure, domain.KindOf(err))
}

func TestTransferUseCase_UsesLockerRetrierAndRecorder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	locker := mocks.NewMockAccountLocker(ctrl)
	retrier := mocks.NewMockRetrier(ctrl)
	recorder := mocks.NewMockMetricsRecorder(ctrl)

	retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, op func() error) error { return op() })
	recorder.EXPECT().RecordTransfer("success", dec("10"), gomock.Any())

	f := newLedgerFixture(t, map[string]string{"1001": "100", "1002": "0"},
		usecase.WithAccountLocker(locker),
		usecase.WithRetrier(retrier),
		usecase.WithMetricsRecorder(recorder),
		usecase.WithLogger(zerolog.Nop()))

	locker.EXPECT().WithAccountLock(gomock.Any(), f.account(t, "1001").ID, gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, fn func(context.Context) error) error { return fn(ctx) })

	require.NoError(t, f.transfers.Transfer(context.Background(), usecase.TransferInput{
		SourceAccountNumber: "1001", DestinationAccountNumber: "1002", Amount: dec("10"),
	}))
}

func TestTransferUseCase_LockerFailurePassesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	locker := mocks.NewMockAccountLocker(ctrl)
	lockErr := domain.NewStorageError("acquire account lock", errors.New("redis down"))
	locker.EXPECT().WithAccountLock(gomock.Any(), gomock.Any(), gomock.Any()).Return(lockErr)

	f := newLedgerFixture(t, map[string]string{"1001": "100", "1002": "0"}, usecase.WithAccountLocker(locker))
	before := f.entryCount()

	err := f.transfers.Transfer(context.Background(), usecase.TransferInput{
		SourceAccountNumber: "1001", DestinationAccountNumber: "1002", Amount: dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Equal(t, before, f.entryCount())
}

func TestTransferUseCase_ValidationSkipsStorage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No expectations: any repository call fails the test.
	accounts := mocks.NewMockAccountResolver(ctrl)
	entryRepo := mocks.NewMockEntryRepository(ctrl)
	balances := usecase.NewBalanceUseCase(accounts, entryRepo, zerolog.Nop())
	uc := usecase.NewTransferUseCase(mocks.NewMockTransactionManager(ctrl), accounts, entryRepo, balances, mocks.NewMockIDGenerator(ctrl))

	err := uc.Transfer(context.Background(), usecase.TransferInput{
		SourceAccountNumber: "1001", DestinationAccountNumber: "1002", Amount: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

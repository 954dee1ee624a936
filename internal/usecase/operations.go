package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/transferledger/internal/domain"
)

// BalanceView is the payload of a successful balance query.
type BalanceView struct {
	AccountNumber string
	Balance       decimal.Decimal
}

// FormattedBalanceView is the payload of a successful display balance query.
type FormattedBalanceView struct {
	AccountNumber string
	Display       string
}

// TransferReceipt is the payload of a successful transfer.
type TransferReceipt struct {
	Message string
}

// OperationsService is the public ledger contract. Every method returns a
// domain.Result and never panics.
type OperationsService struct {
	balances  *BalanceUseCase
	transfers *TransferUseCase
	logger    zerolog.Logger
}

// NewOperationsService creates a new OperationsService.
func NewOperationsService(balances *BalanceUseCase, transfers *TransferUseCase, logger zerolog.Logger) *OperationsService {
	return &OperationsService{
		balances:  balances,
		transfers: transfers,
		logger:    logger,
	}
}

// CheckBalance returns the numeric balance of an account.
func (s *OperationsService) CheckBalance(ctx context.Context, accountNumber string) (res domain.Result[BalanceView]) {
	defer recoverFailure(&res, s.logger, "check_balance")

	balance, err := s.balances.ComputeBalance(ctx, accountNumber)
	if err != nil {
		return domain.Fail[BalanceView](err)
	}

	return domain.OK(BalanceView{AccountNumber: accountNumber, Balance: balance})
}

// FormattedBalance returns the balance of an account rendered for display.
func (s *OperationsService) FormattedBalance(ctx context.Context, accountNumber string) (res domain.Result[FormattedBalanceView]) {
	defer recoverFailure(&res, s.logger, "formatted_balance")

	display, err := s.balances.FormattedBalance(ctx, accountNumber)
	if err != nil {
		return domain.Fail[FormattedBalanceView](err)
	}

	return domain.OK(FormattedBalanceView{AccountNumber: accountNumber, Display: display})
}

// Transfer moves money between two accounts.
func (s *OperationsService) Transfer(ctx context.Context, input TransferInput) (res domain.Result[TransferReceipt]) {
	defer recoverFailure(&res, s.logger, "transfer")

	if err := s.transfers.Transfer(ctx, input); err != nil {
		return domain.Fail[TransferReceipt](err)
	}

	return domain.OK(TransferReceipt{Message: SuccessfulTransferMessage})
}

func recoverFailure[T any](res *domain.Result[T], logger zerolog.Logger, op string) {
	if r := recover(); r != nil {
		logger.Error().
			Interface("panic", r).
			Str("operation", op).
			Msg("panic recovered in ledger operation")

		*res = domain.Fail[T](domain.NewStorageError(op, fmt.Errorf("panic: %v", r)))
	}
}

package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Account resolution errors
	ErrAccountNotFound            = errors.New("account not found")
	ErrSourceAccountNotFound      = errors.New("source account not found")
	ErrDestinationAccountNotFound = errors.New("destination account not found")

	// Transfer errors
	ErrInvalidAmount     = errors.New("invalid amount, use a value bigger than zero")
	ErrSameAccount       = errors.New("cannot transfer to same account")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Storage errors
	ErrStorageFailure = errors.New("storage failure")
	ErrInvalidEntry   = errors.New("invalid ledger entry")

	// Seeding errors
	ErrReservedAccountNumber = errors.New("account number is reserved for the funding account")
)

// ErrorKind is the machine-checkable category of a ledger failure.
type ErrorKind string

const (
	KindAccountNotFound            ErrorKind = "ACCOUNT_NOT_FOUND"
	KindSourceAccountNotFound      ErrorKind = "SOURCE_ACCOUNT_NOT_FOUND"
	KindDestinationAccountNotFound ErrorKind = "DESTINATION_ACCOUNT_NOT_FOUND"
	KindInvalidAmount              ErrorKind = "INVALID_AMOUNT"
	KindSameAccount                ErrorKind = "SAME_ACCOUNT"
	KindInsufficientFunds          ErrorKind = "INSUFFICIENT_FUNDS"
	KindStorageFailure             ErrorKind = "STORAGE_FAILURE"
)

var kindSentinels = map[ErrorKind]error{
	KindAccountNotFound:            ErrAccountNotFound,
	KindSourceAccountNotFound:      ErrSourceAccountNotFound,
	KindDestinationAccountNotFound: ErrDestinationAccountNotFound,
	KindInvalidAmount:              ErrInvalidAmount,
	KindSameAccount:                ErrSameAccount,
	KindInsufficientFunds:          ErrInsufficientFunds,
	KindStorageFailure:             ErrStorageFailure,
}

// Error is a ledger failure carrying its kind and a human-readable message.
type Error struct {
	Err     error
	Kind    ErrorKind
	Message string
}

// NewError creates a new Error. err may be nil.
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel error of this kind.
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// NewInsufficientFundsError reports the formatted balance that failed the check.
func NewInsufficientFundsError(balance decimal.Decimal) *Error {
	return NewError(
		KindInsufficientFunds,
		fmt.Sprintf("your balance: %s is insufficient", FormatBalance(balance)),
		ErrInsufficientFunds,
	)
}

// NewStorageError wraps a backing store failure.
func NewStorageError(op string, err error) *Error {
	return NewError(KindStorageFailure, "storage failure: "+op, err)
}

// KindOf returns the ErrorKind of err. Errors outside the ledger taxonomy are
// storage failures.
func KindOf(err error) ErrorKind {
	var ledgerErr *Error
	if errors.As(err, &ledgerErr) {
		return ledgerErr.Kind
	}

	for kind, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}

	return KindStorageFailure
}

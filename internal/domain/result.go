package domain

import "errors"

// Failure is the failure half of a Result.
type Failure struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Result is the envelope returned by every public ledger operation.
// Exactly one of Data or Failure is meaningful.
type Result[T any] struct {
	Data    T
	Failure *Failure
}

// OK wraps a successful value.
func OK[T any](data T) Result[T] {
	return Result[T]{Data: data}
}

// Fail converts err into a failed Result. Errors outside the ledger taxonomy
// become storage failures with a generic message so internal details do not
// leak to callers.
func Fail[T any](err error) Result[T] {
	var ledgerErr *Error
	if errors.As(err, &ledgerErr) && ledgerErr.Kind != KindStorageFailure {
		return Result[T]{Failure: &Failure{Kind: ledgerErr.Kind, Message: ledgerErr.Message}}
	}

	kind := KindOf(err)
	if kind == KindStorageFailure {
		return Result[T]{Failure: &Failure{Kind: kind, Message: "internal ledger failure, try again later"}}
	}

	return Result[T]{Failure: &Failure{Kind: kind, Message: err.Error()}}
}

// IsSuccess reports whether the result carries data.
func (r Result[T]) IsSuccess() bool {
	return r.Failure == nil
}

package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOK(t *testing.T) {
	r := OK("successful transfer")

	assert.True(t, r.IsSuccess())
	assert.Nil(t, r.Failure)
	assert.Equal(t, "successful transfer", r.Data)
}

func TestFail_KeepsLedgerKindAndMessage(t *testing.T) {
	r := Fail[string](fmt.Errorf("transfer: %w", NewError(KindDestinationAccountNotFound, "destination account not found", nil)))

	require.False(t, r.IsSuccess())
	assert.Equal(t, KindDestinationAccountNotFound, r.Failure.Kind)
	assert.Equal(t, "destination account not found", r.Failure.Message)
	assert.Empty(t, r.Data)
}

func TestFail_BareSentinel(t *testing.T) {
	r := Fail[int](ErrAccountNotFound)

	require.NotNil(t, r.Failure)
	assert.Equal(t, KindAccountNotFound, r.Failure.Kind)
	assert.Equal(t, "account not found", r.Failure.Message)
}

func TestFail_HidesStorageDetails(t *testing.T) {
	r := Fail[int](NewStorageError("append entries", errors.New("pq: password authentication failed")))

	require.NotNil(t, r.Failure)
	assert.Equal(t, KindStorageFailure, r.Failure.Kind)
	assert.NotContains(t, r.Failure.Message, "password")

	r = Fail[int](errors.New("unexpected"))
	assert.Equal(t, KindStorageFailure, r.Failure.Kind)
}

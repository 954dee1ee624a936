package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/transferledger/internal/domain"
	"github.com/iho/transferledger/internal/infrastructure/postgres/generated"
	"github.com/iho/transferledger/internal/usecase"
)

// AccountRepository resolves account numbers against the accounts table.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return newAccountRepository(pool)
}

func newAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// ResolveAccount implements usecase.AccountResolver.
func (r *AccountRepository) ResolveAccount(ctx context.Context, number string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	return &domain.Account{ID: row.ID, Number: row.Number}, nil
}

// Create inserts an account inside tx. Accounts are normally provisioned by
// account management; this is used for opening balances and tests.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	_, err = r.queries.WithTx(pgxTx).CreateAccount(ctx, generated.CreateAccountParams{
		ID:        account.ID,
		Number:    account.Number,
		CreatedAt: timeToPgTimestamptz(time.Now().UTC()),
	})

	return err
}

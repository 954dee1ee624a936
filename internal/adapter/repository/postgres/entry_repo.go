package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/transferledger/internal/domain"
	"github.com/iho/transferledger/internal/infrastructure/postgres/generated"
	"github.com/iho/transferledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository on the ledger_entries table.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return newEntryRepository(pool)
}

func newEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{queries: generated.New(db)}
}

// LockAccount takes a transaction-scoped advisory lock on the account.
func (r *EntryRepository) LockAccount(ctx context.Context, tx usecase.Transaction, accountID string) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	return r.queries.WithTx(pgxTx).LockAccount(ctx, accountID)
}

// ListByAccount returns every entry of the account. A nil tx reads through the pool.
func (r *EntryRepository) ListByAccount(ctx context.Context, tx usecase.Transaction, accountID string) ([]*domain.Entry, error) {
	queries := r.queries
	if tx != nil {
		pgxTx, err := pgxTxFrom(tx)
		if err != nil {
			return nil, err
		}
		queries = queries.WithTx(pgxTx)
	}

	rows, err := queries.ListLedgerEntriesByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries, nil
}

// AppendPair inserts both legs of a transfer inside tx.
func (r *EntryRepository) AppendPair(ctx context.Context, tx usecase.Transaction, debit, credit *domain.Entry) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	if err := domain.ValidatePair(debit, credit); err != nil {
		return err
	}

	queries := r.queries.WithTx(pgxTx)
	for _, entry := range []*domain.Entry{debit, credit} {
		if err := queries.CreateLedgerEntry(ctx, entryToParams(entry)); err != nil {
			return fmt.Errorf("insert %s leg: %w", entry.Kind, err)
		}
	}

	return nil
}

// Totals aggregates the whole ledger in a single query.
func (r *EntryRepository) Totals(ctx context.Context) (usecase.LedgerTotals, error) {
	row, err := r.queries.GetLedgerTotals(ctx)
	if err != nil {
		return usecase.LedgerTotals{}, err
	}

	return usecase.LedgerTotals{
		TotalAmount:     numericToDecimal(row.TotalAmount),
		EntryCount:      row.EntryCount,
		UnpairedEntries: row.UnpairedEntries,
	}, nil
}

func entryToParams(e *domain.Entry) generated.CreateLedgerEntryParams {
	return generated.CreateLedgerEntryParams{
		ID:                   e.ID,
		TransferID:           e.TransferID,
		AccountID:            e.AccountID,
		SourceAccountID:      e.SourceAccountID,
		DestinationAccountID: e.DestinationAccountID,
		OperationKind:        string(e.Kind),
		OperationCategory:    string(e.Category),
		Amount:               decimalToNumeric(e.Amount),
		CreatedAt:            timeToPgTimestamptz(e.CreatedAt),
	}
}

func rowToEntry(row generated.LedgerEntry) *domain.Entry {
	return &domain.Entry{
		ID:                   row.ID,
		TransferID:           row.TransferID,
		AccountID:            row.AccountID,
		SourceAccountID:      row.SourceAccountID,
		DestinationAccountID: row.DestinationAccountID,
		Kind:                 domain.OperationKind(row.OperationKind),
		Category:             domain.OperationCategory(row.OperationCategory),
		Amount:               numericToDecimal(row.Amount),
		CreatedAt:            row.CreatedAt.Time,
	}
}

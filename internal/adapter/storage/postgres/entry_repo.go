package postgres

import (
	"context"
	"fmt"
	"strings"

	"vault-ledger/internal/core/domain"
	"vault-ledger/internal/core/ports"
)

// EntryRepo implements ports.EntryRepository. The entries table is an
// append-only journal of emitted notifications; it is never read back to
// reconstruct balances.
type EntryRepo struct {
	pool Pool
}

// NewEntryRepo creates a new EntryRepo.
func NewEntryRepo(pool Pool) *EntryRepo {
	return &EntryRepo{pool: pool}
}

// Append inserts a journal entry.
func (r *EntryRepo) Append(ctx context.Context, e *domain.Entry) error {
	query := `INSERT INTO entries (id, event_type, account_id, amount, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.EventType, e.Account, e.Amount, e.BalanceAfter, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// List fetches journal entries with filtering and pagination, newest first.
func (r *EntryRepo) List(ctx context.Context, params ports.EntryListParams) ([]domain.Entry, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.Account != nil {
		conditions = append(conditions, fmt.Sprintf("account_id = $%d", argIdx))
		args = append(args, *params.Account)
		argIdx++
	}
	if params.Type != nil {
		conditions = append(conditions, fmt.Sprintf("event_type = $%d", argIdx))
		args = append(args, *params.Type)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM entries %s", where)
	var total int64
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	// Fetch page
	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT id, event_type, account_id, amount, balance_after, created_at
		FROM entries %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		e := domain.Entry{}
		err := rows.Scan(&e.ID, &e.EventType, &e.Account, &e.Amount, &e.BalanceAfter, &e.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate entry rows: %w", err)
	}
	return entries, total, nil
}

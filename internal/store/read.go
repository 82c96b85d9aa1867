package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/invitations/internal/invite"
	"github.com/roach88/invitations/internal/queryir"
	"github.com/roach88/invitations/internal/querysql"
)

// Get returns the record with the given id, in any state.
func (s *Store) Get(ctx context.Context, id int64) (invite.Record, error) {
	if id <= 0 {
		return invite.Record{}, invite.InvalidArgument("get", "id must be positive")
	}

	s.reads.Add(1)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", querysql.SelectColumns, querysql.Table)
	r, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return invite.Record{}, invite.NotFound("get", id)
	}
	if err != nil {
		return invite.Record{}, invite.Storage("get", fmt.Errorf("query record %d: %w", id, err))
	}
	return r, nil
}

// Query returns the records matching f, ordered and paginated as f asks.
//
// The result is never nil. For any filter it equals queryir.Apply(f, all)
// where all is every record in the table.
func (s *Store) Query(ctx context.Context, f queryir.Filter) ([]invite.Record, error) {
	c, err := querysql.Compile(f)
	if err != nil {
		return nil, err
	}

	s.reads.Add(1)
	rows, err := s.db.QueryContext(ctx, c.Select(), c.Params...)
	if err != nil {
		return nil, invite.Storage("query", fmt.Errorf("query records: %w", err))
	}
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, invite.Storage("query", err)
	}
	return recs, nil
}

// Count returns the number of records matching f, ignoring pagination.
func (s *Store) Count(ctx context.Context, f queryir.Filter) (int, error) {
	where, params, err := querysql.CompileWhere(f)
	if err != nil {
		return 0, err
	}

	s.reads.Add(1)
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", querysql.Table, where)
	if err := s.db.QueryRowContext(ctx, query, params...).Scan(&n); err != nil {
		return 0, invite.Storage("count", fmt.Errorf("count records: %w", err))
	}
	return n, nil
}

// queryTx resolves a match set inside a write transaction. It does not count
// as a caller-visible read.
func queryTx(ctx context.Context, tx *sql.Tx, where string, params []any) ([]invite.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY id ASC", querysql.SelectColumns, querysql.Table, where)
	rows, err := tx.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("resolve match set: %w", err)
	}
	return scanRecords(rows)
}

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/invitations/internal/invite"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one row in querysql.SelectColumns order.
func scanRecord(row rowScanner) (invite.Record, error) {
	var (
		r        invite.Record
		typ      string
		modified int64
	)
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.InviterID,
		&r.InviteeEmail,
		&r.ComponentName,
		&r.ComponentAction,
		&r.ItemID,
		&r.SecondaryItemID,
		&typ,
		&r.Content,
		&modified,
		&r.InviteSent,
		&r.Accepted,
	)
	if err != nil {
		return invite.Record{}, err
	}
	r.Type = invite.Type(typ)
	r.DateModified = fromNanos(modified)
	return r, nil
}

// scanRecords drains rows. The result is never nil.
func scanRecords(rows *sql.Rows) ([]invite.Record, error) {
	defer rows.Close()

	recs := []invite.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return recs, nil
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

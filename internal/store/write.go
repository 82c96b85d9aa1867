package store

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/invitations/internal/invite"
	"github.com/roach88/invitations/internal/queryir"
	"github.com/roach88/invitations/internal/querysql"
)

// Changes lists the columns an Update sets. Nil fields are left untouched.
// date_modified is always set to the store clock.
type Changes struct {
	UserID          *int64       `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	InviterID       *int64       `json:"inviter_id,omitempty" yaml:"inviter_id,omitempty"`
	InviteeEmail    *string      `json:"invitee_email,omitempty" yaml:"invitee_email,omitempty"`
	ComponentName   *string      `json:"component_name,omitempty" yaml:"component_name,omitempty"`
	ComponentAction *string      `json:"component_action,omitempty" yaml:"component_action,omitempty"`
	ItemID          *int64       `json:"item_id,omitempty" yaml:"item_id,omitempty"`
	SecondaryItemID *int64       `json:"secondary_item_id,omitempty" yaml:"secondary_item_id,omitempty"`
	Type            *invite.Type `json:"type,omitempty" yaml:"type,omitempty"`
	Content         *string      `json:"content,omitempty" yaml:"content,omitempty"`
	InviteSent      *bool        `json:"invite_sent,omitempty" yaml:"invite_sent,omitempty"`
	Accepted        *bool        `json:"accepted,omitempty" yaml:"accepted,omitempty"`
}

// MarkSent returns Changes setting invite_sent.
func MarkSent() Changes {
	sent := true
	return Changes{InviteSent: &sent}
}

// MarkAccepted returns Changes setting accepted.
func MarkAccepted() Changes {
	accepted := true
	return Changes{Accepted: &accepted}
}

// Empty reports whether c sets no column.
func (c Changes) Empty() bool {
	return c == Changes{}
}

// assignments lowers c to SET fragments and their parameters.
func (c Changes) assignments() ([]string, []any, error) {
	var (
		sets   []string
		params []any
	)
	set := func(col queryir.Column, v any) {
		sets = append(sets, string(col)+" = ?")
		params = append(params, v)
	}

	if c.UserID != nil {
		set(queryir.ColUserID, *c.UserID)
		if *c.UserID != 0 && c.InviteeEmail == nil {
			set(queryir.ColInviteeEmail, "")
		}
	}
	if c.InviterID != nil {
		set(queryir.ColInviterID, *c.InviterID)
	}
	if c.InviteeEmail != nil {
		set(queryir.ColInviteeEmail, invite.NormalizeEmail(*c.InviteeEmail))
	}
	if c.ComponentName != nil {
		set(queryir.ColComponentName, *c.ComponentName)
	}
	if c.ComponentAction != nil {
		set(queryir.ColComponentAction, *c.ComponentAction)
	}
	if c.ItemID != nil {
		set(queryir.ColItemID, *c.ItemID)
	}
	if c.SecondaryItemID != nil {
		set(queryir.ColSecondaryItemID, *c.SecondaryItemID)
	}
	if c.Type != nil {
		if !c.Type.Valid() {
			return nil, nil, invite.InvalidArgument("update", fmt.Sprintf("unknown type %q", *c.Type))
		}
		set(queryir.ColType, string(*c.Type))
	}
	if c.Content != nil {
		set(queryir.ColContent, *c.Content)
	}
	if c.InviteSent != nil {
		set(queryir.ColInviteSent, boolInt(*c.InviteSent))
	}
	if c.Accepted != nil {
		set(queryir.ColAccepted, boolInt(*c.Accepted))
	}
	return sets, params, nil
}

// Create validates and inserts r, returning it with its id and
// date_modified assigned.
//
// A pending record with the same key, inviter and type fails with
// invite.ErrDuplicate. The check is the partial unique index, so it holds
// under concurrent callers.
func (s *Store) Create(ctx context.Context, r invite.Record) (invite.Record, error) {
	r.ID = 0
	r.Normalize()
	if err := r.Validate(); err != nil {
		return invite.Record{}, err
	}
	r.DateModified = fromNanos(s.timestamp().UnixNano())

	ev := invite.NewMutationEvent(invite.OpCreate, []invite.Record{r})

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return invite.Record{}, invite.Storage("create", fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback()

	s.notify(ctx, ev)

	err = tx.QueryRowContext(ctx, `
		INSERT INTO invitations (user_id, inviter_id, invitee_email, component_name,
		                         component_action, item_id, secondary_item_id, type,
		                         content, date_modified, invite_sent, accepted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
		RETURNING id
	`,
		r.UserID, r.InviterID, r.InviteeEmail, r.ComponentName,
		r.ComponentAction, r.ItemID, r.SecondaryItemID, string(r.Type),
		r.Content, r.DateModified.UnixNano(), boolInt(r.InviteSent), boolInt(r.Accepted),
	).Scan(&r.ID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = invite.Duplicate("create", r.Key())
		tx.Rollback()
		s.notify(ctx, ev.After(nil, err))
		return invite.Record{}, err
	case err != nil:
		err = invite.Storage("create", fmt.Errorf("insert record: %w", err))
		tx.Rollback()
		s.notify(ctx, ev.After(nil, err))
		return invite.Record{}, err
	}

	if err := tx.Commit(); err != nil {
		err = invite.Storage("create", fmt.Errorf("commit: %w", err))
		s.notify(ctx, ev.After(nil, err))
		return invite.Record{}, err
	}

	s.notify(ctx, ev.After([]invite.Record{r}, nil))
	return r, nil
}

// Update applies c to every record matching f and returns the number of
// records changed. Zero matches is (0, nil).
//
// The match set is resolved and updated inside one IMMEDIATE transaction
// with a single UPDATE ... RETURNING, so the rows changed are exactly the
// rows matching f at commit time. Every updated row must still pass
// Record.Validate; otherwise nothing is written and the error is
// INVALID_ARGUMENT. Setting a non-zero UserID clears the e-mail unless c
// sets one.
func (s *Store) Update(ctx context.Context, c Changes, f queryir.Filter) (int, error) {
	if c.Empty() {
		return 0, invite.InvalidArgument("update", "no fields to update")
	}
	sets, setParams, err := c.assignments()
	if err != nil {
		return 0, err
	}
	sets = append(sets, string(queryir.ColDateModified)+" = ?")
	setParams = append(setParams, s.timestamp().UnixNano())

	stmt := func(where string) string {
		return fmt.Sprintf("UPDATE %s SET %s WHERE %s RETURNING %s",
			querysql.Table, strings.Join(sets, ", "), where, querysql.SelectColumns)
	}
	recs, err := s.mutate(ctx, invite.OpUpdate, f, stmt, setParams, validUpdate)
	return len(recs), err
}

// DeleteByID removes the record with the given id. A missing id is (0, nil).
func (s *Store) DeleteByID(ctx context.Context, id int64) (int, error) {
	if id <= 0 {
		return 0, invite.InvalidArgument("delete", "id must be positive")
	}
	return s.Delete(ctx, queryir.ByID(id))
}

// Delete removes every record matching f and returns how many were removed.
func (s *Store) Delete(ctx context.Context, f queryir.Filter) (int, error) {
	stmt := func(where string) string {
		return fmt.Sprintf("DELETE FROM %s WHERE %s RETURNING %s", querysql.Table, where, querysql.SelectColumns)
	}
	recs, err := s.mutate(ctx, invite.OpDelete, f, stmt, nil, nil)
	return len(recs), err
}

// validUpdate rejects rows an update left in a state Create would refuse.
func validUpdate(r invite.Record) error {
	if err := r.Validate(); err != nil {
		return invite.InvalidArgument("update", fmt.Sprintf("record %d: %v", r.ID, err))
	}
	return nil
}

// mutate runs a bulk UPDATE or DELETE over the records matching f.
// leading holds parameters that precede the WHERE clause parameters. check,
// when set, vets every affected row before commit.
//
// The transaction is finished before the after event goes out, so after
// phase observers may read the store.
func (s *Store) mutate(ctx context.Context, op invite.Op, f queryir.Filter, stmt func(where string) string, leading []any, check func(invite.Record) error) ([]invite.Record, error) {
	opName := string(op)
	if f.Paginated() {
		return nil, invite.InvalidArgument(opName, "pagination is not allowed on bulk writes")
	}
	where, params, err := querysql.CompileWhere(f)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, invite.Storage(opName, fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback()

	matches, err := queryTx(ctx, tx, where, params)
	if err != nil {
		return nil, invite.Storage(opName, err)
	}
	ev := invite.NewMutationEvent(op, matches)
	s.notify(ctx, ev)

	fail := func(err error) ([]invite.Record, error) {
		tx.Rollback()
		s.notify(ctx, ev.After(nil, err))
		return nil, err
	}

	if len(matches) == 0 {
		if err := tx.Commit(); err != nil {
			return fail(invite.Storage(opName, fmt.Errorf("commit: %w", err)))
		}
		s.notify(ctx, ev.After([]invite.Record{}, nil))
		return []invite.Record{}, nil
	}

	rows, err := tx.QueryContext(ctx, stmt(where), append(slices.Clone(leading), params...)...)
	if err != nil {
		return fail(classify(opName, err))
	}
	affected, err := scanRecords(rows)
	if err != nil {
		return fail(classify(opName, err))
	}
	slices.SortFunc(affected, func(a, b invite.Record) int {
		return cmp.Compare(a.ID, b.ID)
	})
	if check != nil {
		for _, r := range affected {
			if err := check(r); err != nil {
				return fail(err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fail(invite.Storage(opName, fmt.Errorf("commit: %w", err)))
	}

	s.notify(ctx, ev.After(affected, nil))
	return affected, nil
}

// classify maps a write failure to the error taxonomy. A unique constraint
// hit during an update means the new values collide with a pending record.
func classify(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return &invite.Error{Code: invite.CodeDuplicate, Op: op, Message: "update collides with a pending record", Err: err}
	}
	return invite.Storage(op, err)
}

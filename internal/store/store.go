package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/invitations/internal/invite"
)

//go:embed schema.sql
var schemaSQL string

// Store is the durable record store.
type Store struct {
	db  *sql.DB
	now func() time.Time

	mu        sync.RWMutex
	observers []invite.MutationObserver

	reads atomic.Int64
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for date_modified.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithObserver subscribes o to mutation notifications.
func WithObserver(o invite.MutationObserver) Option {
	return func(s *Store) { s.observers = append(s.observers, o) }
}

// Open opens the SQLite database at path, creating the schema when it is
// missing and migrating older databases forward.
//
// ":memory:" opens a private in-memory database; the single-connection pool
// keeps it alive for the lifetime of the Store.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One connection: writers serialise in SQLite anyway, and :memory:
	// databases are per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", path, err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// connParams are applied by the driver to every connection it opens.
var connParams = []string{
	"_journal_mode=WAL",
	"_synchronous=NORMAL",
	"_busy_timeout=5000",
	"_txlock=immediate",
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(connParams, "&")
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Subscribe adds an observer for mutation notifications.
func (s *Store) Subscribe(o invite.MutationObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Reads returns the number of read queries issued through Get, Query and
// Count since the store was opened.
func (s *Store) Reads() int64 {
	return s.reads.Load()
}

func (s *Store) notify(ctx context.Context, ev invite.MutationEvent) {
	s.mu.RLock()
	observers := s.observers
	s.mu.RUnlock()
	for _, o := range observers {
		o.OnMutation(ctx, ev)
	}
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// migration moves the schema from version-1 to version.
type migration struct {
	version int
	stmt    string
}

// migrations run in order inside one transaction each. Version 1 is the
// base table from schema.sql; databases created before the pending-record
// constraint existed report user_version 0 and pick it up here.
//
// Version 2 keys the constraint on the invitee identity: a row addressed to
// a user ignores any e-mail it carries, matching how keys compare.
var migrations = []migration{
	{version: 1, stmt: `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_invitations_pending_unique
		ON invitations (user_id, invitee_email, inviter_id, component_name,
		                component_action, item_id, secondary_item_id, type)
		WHERE accepted = 0`},
	{version: 2, stmt: `
		DROP INDEX IF EXISTS idx_invitations_pending_unique;
		UPDATE invitations SET invitee_email = '' WHERE user_id != 0;
		CREATE UNIQUE INDEX IF NOT EXISTS idx_invitations_pending_key
		ON invitations (user_id, (CASE WHEN user_id = 0 THEN invitee_email ELSE '' END),
		                inviter_id, component_name, component_action, item_id,
		                secondary_item_id, type)
		WHERE accepted = 0`},
}

// migrate creates missing tables and applies every migration newer than
// the database's user_version. Safe to run on every open.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
		// PRAGMA does not take bind parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
	}
	return nil
}

// schemaVersion is the user_version of a fully migrated database.
func schemaVersion() int {
	return migrations[len(migrations)-1].version
}

// pragma reads a connection setting. Tests use it to check the DSN took.
func (s *Store) pragma(name string) (string, error) {
	var value string
	err := s.db.QueryRow("PRAGMA " + name).Scan(&value)
	return value, err
}

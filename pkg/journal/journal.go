// Package journal persists constructed transfer requests and their approval
// state in a local SQLite database. The journal records what was proposed;
// whether and when an approved request is actually dispatched is entirely
// the host runtime's business. A pending entry has no timeout: it waits
// until a human approves or declines it.
package journal

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/handofflabs/baton/pkg/db"
	"github.com/handofflabs/baton/pkg/handoff"
	"github.com/handofflabs/baton/pkg/logger"
)

// Entry status values. A send:true request needs no approval and is recorded
// as auto; a send:false request starts pending and a human moves it to
// approved or declined.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDeclined = "declined"
	StatusAuto     = "auto"
)

// ErrEntryNotFound is returned when no journal entry has the requested ID.
var ErrEntryNotFound = errors.New("journal entry not found")

// ErrNotPending is returned when approving or declining an entry that is not
// awaiting a decision.
var ErrNotPending = errors.New("journal entry is not pending")

// Entry is one journaled transfer request.
type Entry struct {
	ID        string     `db:"id"`
	Source    string     `db:"source"`
	Target    string     `db:"target"`
	Label     string     `db:"label"`
	Prompt    string     `db:"prompt"`
	Send      bool       `db:"send"`
	Status    string     `db:"status"`
	CreatedAt time.Time  `db:"created_at"`
	DecidedAt *time.Time `db:"decided_at"`
}

// Store reads and writes journal entries.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open database handle.
func NewStore(database *sqlx.DB) *Store {
	return &Store{db: database}
}

// Open opens the journal at the given path, running migrations as needed.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	database, err := db.OpenAndMigrate(ctx, dbPath, Migrations())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open journal database")
	}

	return &Store{db: database}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrations returns the journal schema migrations.
func Migrations() []db.Migration {
	return []db.Migration{
		{
			Version:     20260815093000,
			Description: "create transfer journal",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`
					CREATE TABLE IF NOT EXISTS transfers (
						id TEXT PRIMARY KEY,
						source TEXT NOT NULL,
						target TEXT NOT NULL,
						label TEXT NOT NULL,
						prompt TEXT NOT NULL,
						send BOOLEAN NOT NULL,
						status TEXT NOT NULL,
						created_at DATETIME NOT NULL,
						decided_at DATETIME
					)
				`)
				return err
			},
			Down: func(tx *sql.Tx) error {
				_, err := tx.Exec("DROP TABLE transfers")
				return err
			},
		},
	}
}

// Record journals a freshly constructed transfer request. Requests with
// send:false are recorded as pending; send:true requests as auto.
func (s *Store) Record(ctx context.Context, req *handoff.TransferRequest) (*Entry, error) {
	status := StatusPending
	if req.Send {
		status = StatusAuto
	}

	entry := &Entry{
		ID:        req.ID,
		Source:    req.Source,
		Target:    req.Target,
		Label:     req.Label,
		Prompt:    req.Prompt,
		Send:      req.Send,
		Status:    status,
		CreatedAt: req.CreatedAt,
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO transfers (id, source, target, label, prompt, send, status, created_at)
		VALUES (:id, :source, :target, :label, :prompt, :send, :status, :created_at)
	`, entry)
	if err != nil {
		return nil, errors.Wrap(err, "failed to record transfer")
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"id":     entry.ID,
		"status": entry.Status,
	}).Debug("Journaled transfer request")

	return entry, nil
}

// Get returns the entry with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	var entry Entry
	err := s.db.GetContext(ctx, &entry, "SELECT * FROM transfers WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrEntryNotFound, "%q", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load journal entry")
	}
	return &entry, nil
}

// List returns entries, optionally filtered by status, newest first.
func (s *Store) List(ctx context.Context, status string) ([]Entry, error) {
	var entries []Entry
	var err error
	if status == "" {
		err = s.db.SelectContext(ctx, &entries, "SELECT * FROM transfers ORDER BY created_at DESC")
	} else {
		err = s.db.SelectContext(ctx, &entries, "SELECT * FROM transfers WHERE status = ? ORDER BY created_at DESC", status)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to list journal entries")
	}
	return entries, nil
}

// Approve marks a pending entry as approved by a human.
func (s *Store) Approve(ctx context.Context, id string) error {
	return s.decide(ctx, id, StatusApproved)
}

// Decline marks a pending entry as declined by a human.
func (s *Store) Decline(ctx context.Context, id string) error {
	return s.decide(ctx, id, StatusDeclined)
}

func (s *Store) decide(ctx context.Context, id, status string) error {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if entry.Status != StatusPending {
		return errors.Wrapf(ErrNotPending, "%q is %s", id, entry.Status)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		"UPDATE transfers SET status = ?, decided_at = ? WHERE id = ?",
		status, now, id)
	if err != nil {
		return errors.Wrapf(err, "failed to mark entry %q as %s", id, status)
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"id":     id,
		"status": status,
	}).Info("Recorded hand-off decision")

	return nil
}

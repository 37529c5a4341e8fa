package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/stag/internal/game/session"
)

// OutcomeOK is stored for commands that succeeded.
const OutcomeOK = "ok"

// ErrInvalidLimit is returned when a listing is requested with a non-positive limit.
var ErrInvalidLimit = errors.New("limit must be positive")

// Entry is one journaled command and the reply the player received.
type Entry struct {
	ID        uuid.UUID
	Player    string
	Command   string
	Response  string
	Outcome   string
	CreatedAt time.Time
}

// Failed reports whether the command was rejected.
func (e Entry) Failed() bool { return e.Outcome != OutcomeOK }

// JournalRepository persists handled commands.
type JournalRepository struct {
	db *pgxpool.Pool
}

// NewJournalRepository creates a JournalRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewJournalRepository(db *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{db: db}
}

// Insert stores an entry, assigning an ID and timestamp when unset.
//
// Precondition: e.Player must be non-empty.
// Postcondition: Returns the stored Entry with ID and CreatedAt set.
func (r *JournalRepository) Insert(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.Outcome == "" {
		e.Outcome = OutcomeOK
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO journal (id, player, command, response, outcome, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		e.ID, e.Player, e.Command, e.Response, e.Outcome, e.CreatedAt,
	).Scan(&e.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("inserting journal entry: %w", err)
	}
	return e, nil
}

// Record journals a handled exchange.
//
// Postcondition: The exchange is stored, or a non-nil error is returned.
func (r *JournalRepository) Record(ctx context.Context, x session.Exchange) error {
	_, err := r.Insert(ctx, EntryFromExchange(x))
	return err
}

// EntryFromExchange converts a routed exchange to a journal entry.
func EntryFromExchange(x session.Exchange) Entry {
	outcome := OutcomeOK
	if x.Failed() {
		outcome = x.Kind
	}
	return Entry{
		Player:    x.Player,
		Command:   x.Command,
		Response:  x.Response,
		Outcome:   outcome,
		CreatedAt: x.At,
	}
}

// Recent returns up to limit entries, newest first.
//
// Precondition: limit must be positive.
// Postcondition: Returns entries ordered by CreatedAt descending.
func (r *JournalRepository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, player, command, response, outcome, created_at
		 FROM journal ORDER BY created_at DESC, id LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	return collectEntries(rows)
}

// ByPlayer returns up to limit entries for player, newest first. The name is
// matched case-insensitively.
//
// Precondition: limit must be positive.
func (r *JournalRepository) ByPlayer(ctx context.Context, player string, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, player, command, response, outcome, created_at
		 FROM journal WHERE lower(player) = $1
		 ORDER BY created_at DESC, id LIMIT $2`,
		strings.ToLower(strings.TrimSpace(player)), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying journal for %s: %w", player, err)
	}
	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]Entry, error) {
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.ID, &e.Player, &e.Command, &e.Response, &e.Outcome, &e.CreatedAt)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning journal rows: %w", err)
	}
	return entries, nil
}

// Package game implements the progression engine: the game lifecycle
// state machine, the rendezvous barrier between teams, challenge
// resolution, attempt tracking with the mercy path, and session
// identity. All read-modify-write sequences run inside a single
// SQLite transaction that takes the write lock up front, so concurrent
// handlers acting on the same game serialize instead of losing updates.
package game

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultTeamNames are the teams created alongside a new game, in slot
// order. A game's teamCount selects a prefix of this list.
var DefaultTeamNames = []string{"pumpkin", "ghost"}

type Engine struct {
	db     *sql.DB
	cache  ProgressCache
	logger *slog.Logger

	now             func() time.Time
	minTotalPlayers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMinTotalPlayers sets the minimum number of active players across
// all teams required to start a game.
func WithMinTotalPlayers(n int) Option {
	return func(e *Engine) { e.minTotalPlayers = n }
}

// New builds an Engine over db. cache may be nil, in which case status
// snapshots are rebuilt on every read.
func New(db *sql.DB, cache ProgressCache, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		db:              db,
		cache:           cache,
		logger:          logger,
		now:             time.Now,
		minTotalPlayers: 2,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// writeTx runs fn inside a transaction whose first statement touches
// the game row. That write forces SQLite to take the reserved lock
// immediately, so two handlers mutating the same game queue on the
// busy timeout rather than both reading stale state and clobbering
// each other on commit. The rendezvous count in particular must be
// computed after this lock is held.
func (e *Engine) writeTx(ctx context.Context, gameID string, fn func(tx *sql.Tx) error) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE games SET status = status WHERE id = ?`, gameID); err != nil {
		return fmt.Errorf("locking game: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// invalidate drops the cached snapshot for gameID. Called only after
// the underlying transaction has committed.
func (e *Engine) invalidate(ctx context.Context, gameID string) {
	if e.cache == nil {
		return
	}
	e.cache.Invalidate(ctx, gameID)
}

func newID() string {
	return uuid.NewString()
}

// newToken returns an opaque session token with 256 bits of entropy.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newJoinCode returns a 6-character human-typeable game code. The
// alphabet omits easily-confused characters (0/O, 1/I).
func newJoinCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(buf), nil
}

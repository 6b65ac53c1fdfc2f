package game

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/questline/treasurehunt/internal/hunt"
)

// Session binds a valid token back to its player, team, and game.
type Session struct {
	Player hunt.Player
	Team   hunt.Team
	Game   hunt.Game
}

// issueToken mints a fresh session token for a player and stamps its
// creation time. Runs inside the caller's transaction.
func (e *Engine) issueToken(ctx context.Context, q querier, playerID string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	_, err = q.ExecContext(ctx, `
		UPDATE players SET session_token = ?, token_created_at = ? WHERE id = ?
	`, token, fmtTime(e.now()), playerID)
	if err != nil {
		return "", fmt.Errorf("storing session token: %w", err)
	}
	return token, nil
}

// tokenValid reports whether the player's token is present and inside
// its TTL.
func (e *Engine) tokenValid(p hunt.Player) bool {
	if p.SessionToken == "" || p.TokenCreatedAt == nil {
		return false
	}
	return e.now().Sub(*p.TokenCreatedAt) <= hunt.TokenTTL
}

// SessionByToken resolves a token to its player, team, and game.
// Expired or unknown tokens fail with ErrUnauthorized — distinct from
// ErrNotFound so clients know to re-join rather than retry.
func (e *Engine) SessionByToken(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, hunt.ErrUnauthorized
	}
	p, err := playerByToken(ctx, e.db, token)
	if err != nil {
		if err == hunt.ErrNotFound {
			return Session{}, hunt.ErrUnauthorized
		}
		return Session{}, err
	}
	if !e.tokenValid(p) {
		return Session{}, hunt.ErrUnauthorized
	}

	t, err := teamForPlayer(ctx, e.db, p)
	if err != nil {
		return Session{}, err
	}
	g, err := gameByID(ctx, e.db, t.GameID)
	if err != nil {
		return Session{}, err
	}
	return Session{Player: p, Team: t, Game: g}, nil
}

func teamForPlayer(ctx context.Context, q querier, p hunt.Player) (hunt.Team, error) {
	return scanTeam(q.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE id = ?`, p.TeamID).Scan)
}

// Pause soft-deactivates the player. The token is retained so the
// player can resume later.
func (e *Engine) Pause(ctx context.Context, token string) (Session, error) {
	sess, err := e.SessionByToken(ctx, token)
	if err != nil {
		return Session{}, err
	}

	err = e.writeTx(ctx, sess.Game.ID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE players SET is_active = 0 WHERE id = ?`, sess.Player.ID)
		return err
	})
	if err != nil {
		return Session{}, err
	}

	e.invalidate(ctx, sess.Game.ID)
	sess.Player.IsActive = false
	return sess, nil
}

// Resume reactivates a paused player and re-establishes their
// association with game, team, and player state.
func (e *Engine) Resume(ctx context.Context, token string) (Session, error) {
	sess, err := e.SessionByToken(ctx, token)
	if err != nil {
		return Session{}, err
	}

	if !sess.Player.IsActive {
		err = e.writeTx(ctx, sess.Game.ID, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `UPDATE players SET is_active = 1 WHERE id = ?`, sess.Player.ID)
			return err
		})
		if err != nil {
			return Session{}, err
		}
		e.invalidate(ctx, sess.Game.ID)
		sess.Player.IsActive = true
	}
	return sess, nil
}

// Logout deletes the player entirely; the token becomes permanently
// unusable. If the departure empties the team, the game reverts to
// waiting.
func (e *Engine) Logout(ctx context.Context, token string) (hunt.GameStatus, error) {
	sess, err := e.SessionByToken(ctx, token)
	if err != nil {
		return "", err
	}

	status := sess.Game.Status
	err = e.writeTx(ctx, sess.Game.ID, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, sess.Player.ID); err != nil {
			return err
		}
		n, err := countActivePlayers(ctx, tx, sess.Team.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			status = hunt.StatusWaiting
			return setGameStatus(ctx, tx, sess.Game.ID, status)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	e.invalidate(ctx, sess.Game.ID)
	e.logger.Info("player logged out", "player", sess.Player.Name, "game_id", sess.Game.ID)
	return status, nil
}

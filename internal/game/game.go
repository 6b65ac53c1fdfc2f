package game

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/questline/treasurehunt/internal/hunt"
)

const (
	defaultMeetingStation = 5
	defaultTeamMaxPlayers = 2
	defaultGameMaxPlayers = 4
)

// CreateGame creates a new game in the waiting state together with its
// team slots.
func (e *Engine) CreateGame(ctx context.Context, name, createdBy string) (hunt.Game, error) {
	name, err := normalizeGameName(name)
	if err != nil {
		return hunt.Game{}, err
	}

	code, err := newJoinCode()
	if err != nil {
		return hunt.Game{}, err
	}
	g := hunt.Game{
		ID:             newID(),
		JoinCode:       code,
		Name:           name,
		Status:         hunt.StatusWaiting,
		MeetingStation: defaultMeetingStation,
		MaxPlayers:     defaultGameMaxPlayers,
		TeamCount:      len(DefaultTeamNames),
		CreatedBy:      createdBy,
		CreatedAt:      e.now(),
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return hunt.Game{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO games (id, join_code, name, status, meeting_station, max_players, team_count, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, g.ID, g.JoinCode, g.Name, string(g.Status), g.MeetingStation, g.MaxPlayers, g.TeamCount, g.CreatedBy, fmtTime(g.CreatedAt))
	if err != nil {
		return hunt.Game{}, fmt.Errorf("inserting game: %w", err)
	}

	for _, teamName := range DefaultTeamNames {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO teams (id, game_id, name, max_players)
			VALUES (?, ?, ?, ?)
		`, newID(), g.ID, teamName, defaultTeamMaxPlayers)
		if err != nil {
			return hunt.Game{}, fmt.Errorf("inserting team %s: %w", teamName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return hunt.Game{}, fmt.Errorf("committing: %w", err)
	}
	e.logger.Info("game created", "game_id", g.ID, "join_code", g.JoinCode)
	return g, nil
}

// GameByCode finds a game by its human-typeable join code.
func (e *Engine) GameByCode(ctx context.Context, code string) (hunt.Game, error) {
	code, err := normalizeJoinCode(code)
	if err != nil {
		return hunt.Game{}, err
	}
	return gameByCode(ctx, e.db, code)
}

// Game fetches a game by ID.
func (e *Engine) Game(ctx context.Context, gameID string) (hunt.Game, error) {
	return gameByID(ctx, e.db, gameID)
}

// Join adds a player to a team and issues a session token. A game
// still in waiting is promoted to setup once someone is present.
func (e *Engine) Join(ctx context.Context, gameID, playerName, teamName string) (hunt.Player, string, error) {
	playerName, err := normalizePlayerName(playerName)
	if err != nil {
		return hunt.Player{}, "", err
	}

	var p hunt.Player
	var token string
	err = e.writeTx(ctx, gameID, func(tx *sql.Tx) error {
		g, err := gameByID(ctx, tx, gameID)
		if err != nil {
			return err
		}
		if g.Status != hunt.StatusWaiting && g.Status != hunt.StatusSetup {
			return hunt.Conflict("game has already started")
		}
		t, err := teamByName(ctx, tx, gameID, teamName)
		if err != nil {
			return err
		}

		taken, err := nameTaken(ctx, tx, gameID, playerName)
		if err != nil {
			return err
		}
		if taken {
			return hunt.Conflict("player name %q is already taken", playerName)
		}

		teamCount, err := countActivePlayers(ctx, tx, t.ID)
		if err != nil {
			return err
		}
		if teamCount >= t.MaxPlayers {
			return hunt.Conflict("team %s is full", t.Name)
		}
		gameCount, err := countActiveGamePlayers(ctx, tx, gameID)
		if err != nil {
			return err
		}
		if gameCount >= g.MaxPlayers {
			return hunt.Conflict("game is full")
		}

		p = hunt.Player{
			ID:       newID(),
			TeamID:   t.ID,
			Name:     playerName,
			IsActive: true,
			JoinedAt: e.now(),
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO players (id, team_id, name, is_active, joined_at)
			VALUES (?, ?, ?, 1, ?)
		`, p.ID, p.TeamID, p.Name, fmtTime(p.JoinedAt))
		if err != nil {
			return fmt.Errorf("inserting player: %w", err)
		}

		token, err = e.issueToken(ctx, tx, p.ID)
		if err != nil {
			return err
		}

		promote, err := shouldAutoAdvanceToSetup(ctx, tx, g)
		if err != nil {
			return err
		}
		if promote {
			return setGameStatus(ctx, tx, gameID, hunt.StatusSetup)
		}
		return nil
	})
	if err != nil {
		return hunt.Player{}, "", err
	}

	e.invalidate(ctx, gameID)
	e.logger.Info("player joined", "player", playerName, "team", teamName, "game_id", gameID)
	return p, token, nil
}

func nameTaken(ctx context.Context, q querier, gameID, playerName string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM players p
		JOIN teams t ON t.id = p.team_id
		WHERE t.game_id = ? AND p.name = ?
	`, gameID, playerName).Scan(&n)
	return n > 0, err
}

// MovePlayer moves a player to another team in the same game, subject
// to the target team's capacity.
func (e *Engine) MovePlayer(ctx context.Context, gameID, playerID, targetTeamName string) error {
	err := e.writeTx(ctx, gameID, func(tx *sql.Tx) error {
		p, err := playerByID(ctx, tx, playerID)
		if err != nil {
			return err
		}
		current, err := teamForPlayer(ctx, tx, p)
		if err != nil {
			return err
		}
		if current.GameID != gameID {
			return hunt.ErrNotFound
		}
		target, err := teamByName(ctx, tx, gameID, targetTeamName)
		if err != nil {
			return err
		}
		if target.ID == current.ID {
			return hunt.Conflict("player is already on team %s", target.Name)
		}

		n, err := countActivePlayers(ctx, tx, target.ID)
		if err != nil {
			return err
		}
		if n >= target.MaxPlayers {
			return hunt.Conflict("team %s is full", target.Name)
		}

		_, err = tx.ExecContext(ctx, `UPDATE players SET team_id = ? WHERE id = ?`, target.ID, p.ID)
		return err
	})
	if err != nil {
		return err
	}

	e.invalidate(ctx, gameID)
	return nil
}

// RemovePlayer hard-deletes a player (admin action). An emptied team
// sends the game back to waiting, same as a logout would.
func (e *Engine) RemovePlayer(ctx context.Context, gameID, playerID string) error {
	err := e.writeTx(ctx, gameID, func(tx *sql.Tx) error {
		p, err := playerByID(ctx, tx, playerID)
		if err != nil {
			return err
		}
		t, err := teamForPlayer(ctx, tx, p)
		if err != nil {
			return err
		}
		if t.GameID != gameID {
			return hunt.ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, p.ID); err != nil {
			return err
		}

		n, err := countActivePlayers(ctx, tx, t.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return setGameStatus(ctx, tx, gameID, hunt.StatusWaiting)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.invalidate(ctx, gameID)
	return nil
}

// AddPlayer is the admin variant of Join: it skips the started-game
// guard so an organizer can fill a roster mid-setup.
func (e *Engine) AddPlayer(ctx context.Context, gameID, playerName, teamName string) (hunt.Player, string, error) {
	playerName, err := normalizePlayerName(playerName)
	if err != nil {
		return hunt.Player{}, "", err
	}

	var p hunt.Player
	var token string
	err = e.writeTx(ctx, gameID, func(tx *sql.Tx) error {
		t, err := teamByName(ctx, tx, gameID, teamName)
		if err != nil {
			return err
		}
		taken, err := nameTaken(ctx, tx, gameID, playerName)
		if err != nil {
			return err
		}
		if taken {
			return hunt.Conflict("player name %q is already taken", playerName)
		}
		n, err := countActivePlayers(ctx, tx, t.ID)
		if err != nil {
			return err
		}
		if n >= t.MaxPlayers {
			return hunt.Conflict("team %s is full", t.Name)
		}

		p = hunt.Player{
			ID:       newID(),
			TeamID:   t.ID,
			Name:     playerName,
			IsActive: true,
			JoinedAt: e.now(),
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO players (id, team_id, name, is_active, joined_at)
			VALUES (?, ?, ?, 1, ?)
		`, p.ID, p.TeamID, p.Name, fmtTime(p.JoinedAt))
		if err != nil {
			return err
		}
		token, err = e.issueToken(ctx, tx, p.ID)
		return err
	})
	if err != nil {
		return hunt.Player{}, "", err
	}

	e.invalidate(ctx, gameID)
	return p, token, nil
}

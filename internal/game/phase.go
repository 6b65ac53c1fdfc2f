package game

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/questline/treasurehunt/internal/hunt"
)

// canStart reports whether the game may move into the separate phase:
// the game must not have started yet, every team slot must exist and
// hold at least one active player, and the configured total-player
// minimum must be met.
func (e *Engine) canStart(ctx context.Context, q querier, g hunt.Game, teams []hunt.Team) (bool, error) {
	if g.Status != hunt.StatusWaiting && g.Status != hunt.StatusSetup {
		return false, nil
	}
	if len(teams) < g.TeamCount {
		return false, nil
	}

	total := 0
	for _, t := range teams {
		n, err := countActivePlayers(ctx, q, t.ID)
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, nil
		}
		total += n
	}
	return total >= e.minTotalPlayers, nil
}

// Start moves the game into the separate phase and puts every team at
// station 1 with clean counters.
func (e *Engine) Start(ctx context.Context, gameID string) (hunt.Game, error) {
	var g hunt.Game
	err := e.writeTx(ctx, gameID, func(tx *sql.Tx) error {
		var err error
		g, err = gameByID(ctx, tx, gameID)
		if err != nil {
			return err
		}
		teams, err := listTeams(ctx, tx, gameID)
		if err != nil {
			return err
		}
		ok, err := e.canStart(ctx, tx, g, teams)
		if err != nil {
			return err
		}
		if !ok {
			return hunt.Conflict("game is not ready to start")
		}

		g.Status = hunt.StatusSeparate
		if err := setGameStatus(ctx, tx, gameID, g.Status); err != nil {
			return err
		}
		for _, t := range teams {
			resetTeam(&t)
			if err := saveTeam(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return hunt.Game{}, err
	}

	e.invalidate(ctx, gameID)
	e.logger.Info("game started", "game_id", gameID)
	return g, nil
}

// resetTeam returns a team to the starting line: station 1, counters
// cleared, save flags restored.
func resetTeam(t *hunt.Team) {
	t.CurrentStation = 1
	t.Attempts = 0
	t.HelpUsed = false
	t.CompletedAt = nil
	t.SeparateSaveUsed = false
	t.TogetherSaveUsed = false
}

// shouldAutoAdvanceToSetup reports whether a waiting game should be
// promoted to setup because someone is now present.
func shouldAutoAdvanceToSetup(ctx context.Context, q querier, g hunt.Game) (bool, error) {
	if g.Status != hunt.StatusWaiting {
		return false, nil
	}
	n, err := countActiveGamePlayers(ctx, q, g.ID)
	if err != nil {
		return false, err
	}
	return n >= 1, nil
}

// advanceTeam moves a team forward after a successful clear. It must
// run inside the same transaction as the progress write. A team parked
// at the meeting station during the separate phase is handed to the
// rendezvous barrier instead of being incremented.
func (e *Engine) advanceTeam(ctx context.Context, tx *sql.Tx, g hunt.Game, t hunt.Team) (hunt.AdvanceOutcome, error) {
	if t.CurrentStation == g.MeetingStation && g.Status == hunt.StatusSeparate {
		return e.arriveAtMeeting(ctx, tx, g, t)
	}

	t.CurrentStation++
	t.Attempts = 0
	t.HelpUsed = false
	if err := saveTeam(ctx, tx, t); err != nil {
		return hunt.AdvanceOutcome{}, err
	}

	total, err := countCourseStations(ctx, tx)
	if err != nil {
		return hunt.AdvanceOutcome{}, err
	}
	if t.CurrentStation > total {
		if err := setGameStatus(ctx, tx, g.ID, hunt.StatusFinished); err != nil {
			return hunt.AdvanceOutcome{}, err
		}
		e.logger.Info("game finished", "game_id", g.ID, "team", t.Name)
		return hunt.AdvanceOutcome{GameFinished: true}, nil
	}
	return hunt.AdvanceOutcome{}, nil
}

// arriveAtMeeting implements the counting barrier at the meeting
// station. The arrival is stamped and the count re-read inside the
// same locked transaction, so the team that observes the count
// reaching the total is guaranteed a consistent view and fires the
// phase change exactly once.
func (e *Engine) arriveAtMeeting(ctx context.Context, tx *sql.Tx, g hunt.Game, t hunt.Team) (hunt.AdvanceOutcome, error) {
	// The arrival stamp is written exactly once. A team resubmitting
	// the meeting code keeps its original timestamp and never earns
	// the first-arrival bonus twice.
	firstArrival := t.CompletedAt == nil
	if firstArrival {
		now := e.now()
		t.CompletedAt = &now
	}
	t.Attempts = 0
	t.HelpUsed = false
	if err := saveTeam(ctx, tx, t); err != nil {
		return hunt.AdvanceOutcome{}, err
	}

	var arrived, total int
	err := tx.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE current_station = ? AND completed_at IS NOT NULL),
			COUNT(*)
		FROM teams WHERE game_id = ?
	`, g.MeetingStation, g.ID).Scan(&arrived, &total)
	if err != nil {
		return hunt.AdvanceOutcome{}, fmt.Errorf("counting arrivals: %w", err)
	}

	switch {
	case arrived >= total:
		if err := e.beginTogetherPhase(ctx, tx, g); err != nil {
			return hunt.AdvanceOutcome{}, err
		}
		return hunt.AdvanceOutcome{PhaseChanged: true}, nil
	case firstArrival && arrived == 1:
		return hunt.AdvanceOutcome{Bonus: true, WaitingForOthers: true}, nil
	default:
		return hunt.AdvanceOutcome{WaitingForOthers: true}, nil
	}
}

// beginTogetherPhase flips the game to the together phase and moves
// every arrived team onto its first station.
func (e *Engine) beginTogetherPhase(ctx context.Context, tx *sql.Tx, g hunt.Game) error {
	if err := setGameStatus(ctx, tx, g.ID, hunt.StatusTogether); err != nil {
		return err
	}
	start, err := togetherStart(ctx, tx)
	if err != nil {
		return err
	}

	teams, err := listTeams(ctx, tx, g.ID)
	if err != nil {
		return err
	}
	for _, t := range teams {
		if t.CompletedAt == nil {
			continue
		}
		t.CurrentStation = start
		t.Attempts = 0
		t.HelpUsed = false
		if err := saveTeam(ctx, tx, t); err != nil {
			return err
		}
	}
	e.logger.Info("together phase began", "game_id", g.ID)
	return nil
}

// Reset returns the game to waiting and every team to the start. Valid
// from any state.
func (e *Engine) Reset(ctx context.Context, gameID string) error {
	err := e.writeTx(ctx, gameID, func(tx *sql.Tx) error {
		if _, err := gameByID(ctx, tx, gameID); err != nil {
			return err
		}
		if err := setGameStatus(ctx, tx, gameID, hunt.StatusWaiting); err != nil {
			return err
		}
		teams, err := listTeams(ctx, tx, gameID)
		if err != nil {
			return err
		}
		for _, t := range teams {
			resetTeam(&t)
			if err := saveTeam(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.invalidate(ctx, gameID)
	e.logger.Info("game reset", "game_id", gameID)
	return nil
}

// Stop finishes a running game early. Only valid while the game is in
// the separate or together phase.
func (e *Engine) Stop(ctx context.Context, gameID string) error {
	err := e.writeTx(ctx, gameID, func(tx *sql.Tx) error {
		g, err := gameByID(ctx, tx, gameID)
		if err != nil {
			return err
		}
		if !g.Status.Running() {
			return hunt.Conflict("game is not running")
		}
		return setGameStatus(ctx, tx, gameID, hunt.StatusFinished)
	})
	if err != nil {
		return err
	}

	e.invalidate(ctx, gameID)
	e.logger.Info("game stopped", "game_id", gameID)
	return nil
}

package game

import (
	"context"
	"database/sql"
	"errors"

	"github.com/questline/treasurehunt/internal/hunt"
)

// saveAvailable reports whether the team still holds its one-shot
// mercy save for the game's current phase.
func saveAvailable(status hunt.GameStatus, t hunt.Team) bool {
	switch status {
	case hunt.StatusSeparate:
		return !t.SeparateSaveUsed
	case hunt.StatusTogether:
		return !t.TogetherSaveUsed
	}
	return false
}

// resolveChallenge picks the challenge a team must solve right now.
//
// A team that has exhausted its attempts is redirected to the mercy
// station if its per-phase save is still available, and gets
// ErrExhausted otherwise. A team still parked on the meeting station
// after the barrier fired resolves against the first together-phase
// station, so callers see the next real challenge rather than the
// transient meeting marker.
//
// Candidate order within a station: in the separate phase a
// team-specific challenge wins over a shared one; in the together
// phase only shared challenges are considered.
func resolveChallenge(ctx context.Context, q querier, g hunt.Game, t hunt.Team) (hunt.Challenge, error) {
	station := t.CurrentStation

	if t.Attempts >= hunt.MaxAttempts {
		if !saveAvailable(g.Status, t) {
			return hunt.Challenge{}, hunt.ErrExhausted
		}
		station = hunt.SaveStation
	} else if g.Status == hunt.StatusTogether && station == g.MeetingStation {
		start, err := togetherStart(ctx, q)
		if err != nil {
			return hunt.Challenge{}, err
		}
		station = start
	}

	var order []string
	switch g.Status {
	case hunt.StatusSeparate:
		order = []string{t.Name, hunt.TeamTypeShared, ""}
	case hunt.StatusTogether:
		order = []string{"", hunt.TeamTypeShared}
	default:
		return hunt.Challenge{}, hunt.Conflict("game is not running")
	}

	// The mercy challenge is always shared.
	if station == hunt.SaveStation {
		order = []string{"", hunt.TeamTypeShared}
	}

	for _, teamType := range order {
		c, err := challengeForTeamType(ctx, q, station, teamType)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, hunt.ErrNotFound) {
			return hunt.Challenge{}, err
		}
	}
	return hunt.Challenge{}, hunt.ErrNotFound
}

// CurrentChallenge resolves the challenge the team should be working
// on, for display. Exhausted teams with a save left see the mercy
// challenge.
func (e *Engine) CurrentChallenge(ctx context.Context, gameID, teamID string) (hunt.Challenge, hunt.Station, error) {
	g, err := gameByID(ctx, e.db, gameID)
	if err != nil {
		return hunt.Challenge{}, hunt.Station{}, err
	}
	if !g.Status.Running() {
		return hunt.Challenge{}, hunt.Station{}, hunt.Conflict("game has not started")
	}
	t, err := teamByID(ctx, e.db, gameID, teamID)
	if err != nil {
		return hunt.Challenge{}, hunt.Station{}, err
	}

	c, err := resolveChallenge(ctx, e.db, g, t)
	if err != nil {
		return hunt.Challenge{}, hunt.Station{}, err
	}
	s, err := stationByNumber(ctx, e.db, c.StationNumber)
	if err != nil {
		return hunt.Challenge{}, hunt.Station{}, err
	}
	return c, s, nil
}

// Help returns the help text for the team's current challenge and
// marks the team's one-per-station help as used.
func (e *Engine) Help(ctx context.Context, gameID, teamID string) (string, error) {
	var helpText string
	err := e.writeTx(ctx, gameID, func(tx *sql.Tx) error {
		g, err := gameByID(ctx, tx, gameID)
		if err != nil {
			return err
		}
		if !g.Status.Running() {
			return hunt.Conflict("game has not started")
		}
		t, err := teamByID(ctx, tx, gameID, teamID)
		if err != nil {
			return err
		}

		c, err := resolveChallenge(ctx, tx, g, t)
		if err != nil {
			return err
		}
		if c.HelpText == "" {
			return hunt.ErrNotFound
		}
		helpText = c.HelpText

		if !t.HelpUsed {
			t.HelpUsed = true
			if err := saveTeam(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	e.invalidate(ctx, gameID)
	return helpText, nil
}

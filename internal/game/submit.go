package game

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/questline/treasurehunt/internal/hunt"
)

// Submit validates a station code for a team and drives every outcome
// of the attempt state machine: normal advance, failure counting, the
// mercy challenge, and the hard reset. The whole decision runs in one
// locked transaction so duplicate or racing submissions serialize.
func (e *Engine) Submit(ctx context.Context, gameID, teamID, code string) (hunt.SubmitOutcome, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return hunt.SubmitOutcome{}, hunt.Invalid("code", "code is required")
	}

	var out hunt.SubmitOutcome
	err := e.writeTx(ctx, gameID, func(tx *sql.Tx) error {
		g, err := gameByID(ctx, tx, gameID)
		if err != nil {
			return err
		}
		if !g.Status.Running() {
			return hunt.Conflict("game is not running")
		}
		t, err := teamByID(ctx, tx, gameID, teamID)
		if err != nil {
			return err
		}

		if t.Attempts >= hunt.MaxAttempts {
			out, err = e.submitMercy(ctx, tx, g, t, code)
			return err
		}
		out, err = e.submitNormal(ctx, tx, g, t, code)
		return err
	})
	if err != nil {
		return hunt.SubmitOutcome{}, err
	}

	e.invalidate(ctx, gameID)
	return out, nil
}

// submitNormal handles a team below the attempt limit.
func (e *Engine) submitNormal(ctx context.Context, tx *sql.Tx, g hunt.Game, t hunt.Team, code string) (hunt.SubmitOutcome, error) {
	c, err := resolveChallenge(ctx, tx, g, t)
	if err != nil {
		return hunt.SubmitOutcome{}, err
	}

	if !codeMatches(c.ExpectedCode, code) {
		return e.recordFailure(ctx, tx, g, t)
	}

	// A team already checked in at the meeting point may resubmit the
	// meeting code (a retry, or a second device). Nothing is written
	// again: the arrival stamp and its progress record are set once.
	if g.Status == hunt.StatusSeparate && t.CurrentStation == g.MeetingStation && t.CompletedAt != nil {
		return outcomeFromAdvance(hunt.AdvanceOutcome{WaitingForOthers: true}), nil
	}

	if err := recordProgress(ctx, tx, g.ID, t.ID, t.CurrentStation, t.Attempts+1, t.HelpUsed, e.now()); err != nil {
		return hunt.SubmitOutcome{}, err
	}
	adv, err := e.advanceTeam(ctx, tx, g, t)
	if err != nil {
		return hunt.SubmitOutcome{}, err
	}
	return outcomeFromAdvance(adv), nil
}

// submitMercy handles a team at the attempt limit. With a save in hand
// the submitted code is checked against the mercy challenge; without
// one, or on a wrong mercy code, the team is hard-reset.
func (e *Engine) submitMercy(ctx context.Context, tx *sql.Tx, g hunt.Game, t hunt.Team, code string) (hunt.SubmitOutcome, error) {
	c, err := resolveChallenge(ctx, tx, g, t)
	if errors.Is(err, hunt.ErrExhausted) {
		return e.hardReset(ctx, tx, t)
	}
	if err != nil {
		return hunt.SubmitOutcome{}, err
	}

	if !codeMatches(c.ExpectedCode, code) {
		return e.hardReset(ctx, tx, t)
	}

	// Mercy cleared: consume the save, log the mercy station, then
	// advance exactly like a normal clear.
	switch g.Status {
	case hunt.StatusSeparate:
		t.SeparateSaveUsed = true
	case hunt.StatusTogether:
		t.TogetherSaveUsed = true
	}
	attemptsMade := t.Attempts
	t.Attempts = 0
	t.HelpUsed = false
	if err := saveTeam(ctx, tx, t); err != nil {
		return hunt.SubmitOutcome{}, err
	}
	if err := recordProgress(ctx, tx, g.ID, t.ID, hunt.SaveStation, attemptsMade, false, e.now()); err != nil {
		return hunt.SubmitOutcome{}, err
	}

	adv, err := e.advanceTeam(ctx, tx, g, t)
	if err != nil {
		return hunt.SubmitOutcome{}, err
	}
	out := outcomeFromAdvance(adv)
	out.Message = "Mercy challenge solved, you are back in the game!"
	return out, nil
}

// recordFailure bumps the wrong-answer count and decides whether the
// team has just crossed into mercy territory.
func (e *Engine) recordFailure(ctx context.Context, tx *sql.Tx, g hunt.Game, t hunt.Team) (hunt.SubmitOutcome, error) {
	t.Attempts++
	if err := saveTeam(ctx, tx, t); err != nil {
		return hunt.SubmitOutcome{}, err
	}

	if t.Attempts >= hunt.MaxAttempts {
		if saveAvailable(g.Status, t) {
			e.logger.Info("team hit attempt limit, mercy available",
				"game_id", g.ID, "team", t.Name, "station", t.CurrentStation)
			return hunt.SubmitOutcome{
				Attempts:     t.Attempts,
				SaveRequired: true,
				Message:      "Attempt limit reached. Solve the mercy challenge to continue.",
			}, nil
		}
		return e.hardReset(ctx, tx, t)
	}

	return hunt.SubmitOutcome{
		Attempts: t.Attempts,
		Message:  "Wrong code.",
	}, nil
}

// hardReset sends the team back to station 1 without touching the
// game phase. Save flags are restored along with the counters: the
// team starts its run over from scratch.
func (e *Engine) hardReset(ctx context.Context, tx *sql.Tx, t hunt.Team) (hunt.SubmitOutcome, error) {
	resetTeam(&t)
	if err := saveTeam(ctx, tx, t); err != nil {
		return hunt.SubmitOutcome{}, err
	}
	e.logger.Info("team hard reset", "team", t.Name, "game_id", t.GameID)
	return hunt.SubmitOutcome{
		Reset:   true,
		Message: "Attempts exhausted. Back to the start.",
	}, nil
}

func outcomeFromAdvance(adv hunt.AdvanceOutcome) hunt.SubmitOutcome {
	out := hunt.SubmitOutcome{
		Correct:          true,
		Bonus:            adv.Bonus,
		WaitingForOthers: adv.WaitingForOthers,
		PhaseChanged:     adv.PhaseChanged,
		GameFinished:     adv.GameFinished,
	}
	switch {
	case adv.GameFinished:
		out.Message = "Course complete. Congratulations!"
	case adv.PhaseChanged:
		out.Message = "Everyone has arrived! The together phase begins."
	case adv.Bonus:
		out.Message = "First team at the meeting point! Wait for the others."
	case adv.WaitingForOthers:
		out.Message = "You made it to the meeting point. Wait for the remaining teams."
	default:
		out.Message = "Correct! Head to the next station."
	}
	return out
}

// codeMatches compares codes case-insensitively with surrounding
// whitespace ignored.
func codeMatches(expected, got string) bool {
	return strings.EqualFold(strings.TrimSpace(expected), strings.TrimSpace(got))
}

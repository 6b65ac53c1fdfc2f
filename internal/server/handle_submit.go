package server

import (
	"log/slog"
	"net/http"

	"github.com/questline/treasurehunt/internal/game"
	"github.com/questline/treasurehunt/internal/hunt"
)

// SubmitRequest is the request body for POST /api/session/submit.
type SubmitRequest struct {
	Code string `json:"code"`
}

// SubmitResponse reports what a code submission did to the team.
type SubmitResponse struct {
	Correct          bool   `json:"correct"`
	Message          string `json:"message"`
	Attempts         int    `json:"attempts"`
	SaveRequired     bool   `json:"saveRequired"`
	Reset            bool   `json:"reset"`
	Bonus            bool   `json:"bonus"`
	WaitingForOthers bool   `json:"waitingForOthers"`
	PhaseChanged     bool   `json:"phaseChanged"`
	GameFinished     bool   `json:"gameFinished"`
}

func handleSubmitCode(logger *slog.Logger, eng *game.Engine, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, eng)
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		var req SubmitRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		out, err := eng.Submit(r.Context(), sess.Game.ID, sess.Team.ID, req.Code)
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		publishSubmitEvents(broker, sess, out)
		writeJSON(w, http.StatusOK, SubmitResponse{
			Correct:          out.Correct,
			Message:          out.Message,
			Attempts:         out.Attempts,
			SaveRequired:     out.SaveRequired,
			Reset:            out.Reset,
			Bonus:            out.Bonus,
			WaitingForOthers: out.WaitingForOthers,
			PhaseChanged:     out.PhaseChanged,
			GameFinished:     out.GameFinished,
		})
	}
}

// publishSubmitEvents fans a submission outcome out to the game's event
// stream. Ordering matters for clients: the per-team event precedes the
// game-wide phase events.
func publishSubmitEvents(broker *Broker, sess game.Session, out hunt.SubmitOutcome) {
	gameID := sess.Game.ID
	teamEvent := map[string]any{
		"teamId":   sess.Team.ID,
		"teamName": sess.Team.Name,
		"message":  out.Message,
	}

	switch {
	case out.Correct:
		broker.Publish(gameID, "code_accepted", teamEvent)
	case out.Reset:
		broker.Publish(gameID, "team_reset", teamEvent)
	default:
		broker.Publish(gameID, "code_rejected", teamEvent)
	}

	if out.WaitingForOthers {
		broker.Publish(gameID, "team_at_meeting", teamEvent)
	}
	if out.PhaseChanged {
		broker.Publish(gameID, "phase_changed", map[string]string{"status": "together"})
	}
	if out.GameFinished {
		broker.Publish(gameID, "game_finished", map[string]string{"status": "finished"})
	}
}

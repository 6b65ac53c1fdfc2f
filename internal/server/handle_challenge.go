package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/questline/treasurehunt/internal/game"
)

// ChallengeResponse is the team's current challenge, without the
// expected code or help text.
type ChallengeResponse struct {
	StationNumber int    `json:"stationNumber"`
	StationName   string `json:"stationName"`
	Phase         string `json:"phase"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	HasHelp       bool   `json:"hasHelp"`
}

func handleCurrentChallenge(logger *slog.Logger, eng *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, eng)
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		ch, st, err := eng.CurrentChallenge(r.Context(), sess.Game.ID, sess.Team.ID)
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		writeJSON(w, http.StatusOK, ChallengeResponse{
			StationNumber: st.Number,
			StationName:   st.Name,
			Phase:         string(st.Phase),
			Title:         ch.Title,
			Description:   ch.Description,
			HasHelp:       ch.HelpText != "",
		})
	}
}

// ProgressEntry is one cleared station in the team's history.
type ProgressEntry struct {
	StationNumber int       `json:"stationNumber"`
	AttemptsMade  int       `json:"attemptsMade"`
	HelpUsed      bool      `json:"helpUsed"`
	CompletedAt   time.Time `json:"completedAt"`
}

func handleProgressLog(logger *slog.Logger, eng *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, eng)
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		records, err := eng.ProgressLog(r.Context(), sess.Game.ID, sess.Team.ID)
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		entries := make([]ProgressEntry, 0, len(records))
		for _, rec := range records {
			entries = append(entries, ProgressEntry{
				StationNumber: rec.StationNumber,
				AttemptsMade:  rec.AttemptsMade,
				HelpUsed:      rec.HelpUsed,
				CompletedAt:   rec.CompletedAt,
			})
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// HelpResponse carries the help text for the team's current challenge.
type HelpResponse struct {
	HelpText string `json:"helpText"`
}

func handleRequestHelp(logger *slog.Logger, eng *game.Engine, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, eng)
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		text, err := eng.Help(r.Context(), sess.Game.ID, sess.Team.ID)
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		broker.Publish(sess.Game.ID, "help_used", map[string]string{
			"teamId":   sess.Team.ID,
			"teamName": sess.Team.Name,
		})
		writeJSON(w, http.StatusOK, HelpResponse{HelpText: text})
	}
}

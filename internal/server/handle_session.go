package server

import (
	"log/slog"
	"net/http"

	"github.com/questline/treasurehunt/internal/game"
)

// SessionResponse describes the caller's own session.
type SessionResponse struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	IsActive   bool   `json:"isActive"`
	TeamID     string `json:"teamId"`
	TeamName   string `json:"teamName"`
	GameID     string `json:"gameId"`
	GameStatus string `json:"gameStatus"`
}

func sessionResponse(sess game.Session) SessionResponse {
	return SessionResponse{
		PlayerID:   sess.Player.ID,
		PlayerName: sess.Player.Name,
		IsActive:   sess.Player.IsActive,
		TeamID:     sess.Team.ID,
		TeamName:   sess.Team.Name,
		GameID:     sess.Game.ID,
		GameStatus: string(sess.Game.Status),
	}
}

func handleSessionMe(logger *slog.Logger, eng *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, eng)
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse(sess))
	}
}

func handlePause(logger *slog.Logger, eng *game.Engine, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := eng.Pause(r.Context(), bearerToken(r))
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		broker.Publish(sess.Game.ID, "player_paused", map[string]string{
			"playerName": sess.Player.Name,
		})
		writeJSON(w, http.StatusOK, sessionResponse(sess))
	}
}

func handleResume(logger *slog.Logger, eng *game.Engine, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := eng.Resume(r.Context(), bearerToken(r))
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		broker.Publish(sess.Game.ID, "player_resumed", map[string]string{
			"playerName": sess.Player.Name,
		})
		writeJSON(w, http.StatusOK, sessionResponse(sess))
	}
}

func handleLogout(logger *slog.Logger, eng *game.Engine, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, eng)
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		status, err := eng.Logout(r.Context(), bearerToken(r))
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		broker.Publish(sess.Game.ID, "player_left", map[string]string{
			"playerName": sess.Player.Name,
			"gameStatus": string(status),
		})
		writeJSON(w, http.StatusOK, map[string]string{"gameStatus": string(status)})
	}
}

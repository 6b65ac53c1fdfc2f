package server

import (
	"log/slog"
	"net/http"

	"github.com/questline/treasurehunt/internal/game"
)

// JoinRequest is the request body for POST /api/games/join.
type JoinRequest struct {
	JoinCode   string `json:"joinCode"`
	PlayerName string `json:"playerName"`
	TeamName   string `json:"teamName"`
}

// JoinResponse carries the new player identity and its session token.
// The token is returned exactly once; clients must store it.
type JoinResponse struct {
	PlayerID     string `json:"playerId"`
	PlayerName   string `json:"playerName"`
	TeamID       string `json:"teamId"`
	GameID       string `json:"gameId,omitempty"`
	SessionToken string `json:"sessionToken"`
}

func handleJoinGame(logger *slog.Logger, eng *game.Engine, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		g, err := eng.GameByCode(r.Context(), req.JoinCode)
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		p, token, err := eng.Join(r.Context(), g.ID, req.PlayerName, req.TeamName)
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		broker.Publish(g.ID, "player_joined", map[string]string{
			"playerName": p.Name,
			"teamId":     p.TeamID,
		})
		writeJSON(w, http.StatusCreated, JoinResponse{
			PlayerID:     p.ID,
			PlayerName:   p.Name,
			TeamID:       p.TeamID,
			GameID:       g.ID,
			SessionToken: token,
		})
	}
}

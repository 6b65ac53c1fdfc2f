package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/questline/treasurehunt/internal/game"
	"github.com/questline/treasurehunt/internal/hunt"
)

// GameResponse describes a game for callers outside a session.
type GameResponse struct {
	ID             string    `json:"id"`
	JoinCode       string    `json:"joinCode"`
	Name           string    `json:"name"`
	Status         string    `json:"status"`
	MeetingStation int       `json:"meetingStation"`
	MaxPlayers     int       `json:"maxPlayers"`
	TeamCount      int       `json:"teamCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

func gameResponse(g hunt.Game) GameResponse {
	return GameResponse{
		ID:             g.ID,
		JoinCode:       g.JoinCode,
		Name:           g.Name,
		Status:         string(g.Status),
		MeetingStation: g.MeetingStation,
		MaxPlayers:     g.MaxPlayers,
		TeamCount:      g.TeamCount,
		CreatedAt:      g.CreatedAt,
	}
}

// CreateGameRequest is the request body for POST /api/games.
type CreateGameRequest struct {
	Name      string `json:"name"`
	CreatedBy string `json:"createdBy"`
}

func handleCreateGame(logger *slog.Logger, eng *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateGameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		g, err := eng.CreateGame(r.Context(), req.Name, req.CreatedBy)
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, gameResponse(g))
	}
}

func handleGameByCode(logger *slog.Logger, eng *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := eng.GameByCode(r.Context(), chi.URLParam(r, "joinCode"))
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, gameResponse(g))
	}
}

func handleGameStatus(logger *slog.Logger, eng *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := eng.Status(r.Context(), chi.URLParam(r, "gameID"))
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func handleStartGame(logger *slog.Logger, eng *game.Engine, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")
		g, err := eng.Start(r.Context(), gameID)
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		broker.Publish(gameID, "game_started", map[string]string{"status": string(g.Status)})
		writeJSON(w, http.StatusOK, gameResponse(g))
	}
}

package server

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/questline/treasurehunt/internal/game"
)

// AdminLoginRequest is the request body for POST /api/admin/login.
type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminMeResponse is the response for GET /api/admin/me.
type AdminMeResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func handleAdminLogin(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminLoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		var adminID, passwordHash string
		err := db.QueryRowContext(r.Context(), `
			SELECT id, password_hash FROM admins WHERE email = ?
		`, req.Email).Scan(&adminID, &passwordHash)
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		sessionID := uuid.NewString()
		if _, err := db.ExecContext(r.Context(), `
			INSERT INTO admin_sessions (id, admin_id) VALUES (?, ?)
		`, sessionID, adminID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     adminCookieName,
			Value:    sessionID,
			Path:     "/",
			MaxAge:   int(7 * 24 * time.Hour / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		writeJSON(w, http.StatusOK, AdminMeResponse{
			ID:    adminID,
			Email: req.Email,
		})
	}
}

func handleAdminLogout(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(adminCookieName); err == nil && cookie.Value != "" {
			db.ExecContext(r.Context(), `DELETE FROM admin_sessions WHERE id = ?`, cookie.Value)
		}

		http.SetCookie(w, &http.Cookie{
			Name:     adminCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
	}
}

func handleAdminMe(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := adminFromRequest(r, db)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		writeJSON(w, http.StatusOK, AdminMeResponse{
			ID:    sess.AdminID,
			Email: sess.Email,
		})
	}
}

// MovePlayerRequest is the request body for POST /api/admin/games/{gameID}/players/{playerID}/move.
type MovePlayerRequest struct {
	TeamName string `json:"teamName"`
}

func handleAdminMovePlayer(logger *slog.Logger, eng *game.Engine, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MovePlayerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		gameID := chi.URLParam(r, "gameID")
		if err := eng.MovePlayer(r.Context(), gameID, chi.URLParam(r, "playerID"), req.TeamName); err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		broker.Publish(gameID, "roster_changed", map[string]string{"reason": "player moved"})
		writeJSON(w, http.StatusOK, map[string]string{"status": "moved"})
	}
}

func handleAdminRemovePlayer(logger *slog.Logger, eng *game.Engine, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")
		if err := eng.RemovePlayer(r.Context(), gameID, chi.URLParam(r, "playerID")); err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		broker.Publish(gameID, "roster_changed", map[string]string{"reason": "player removed"})
		writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
	}
}

// AddPlayerRequest is the request body for POST /api/admin/games/{gameID}/players.
type AddPlayerRequest struct {
	PlayerName string `json:"playerName"`
	TeamName   string `json:"teamName"`
}

func handleAdminAddPlayer(logger *slog.Logger, eng *game.Engine, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddPlayerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		gameID := chi.URLParam(r, "gameID")
		p, token, err := eng.AddPlayer(r.Context(), gameID, req.PlayerName, req.TeamName)
		if err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		broker.Publish(gameID, "roster_changed", map[string]string{"reason": "player added"})
		writeJSON(w, http.StatusCreated, JoinResponse{
			PlayerID:     p.ID,
			PlayerName:   p.Name,
			TeamID:       p.TeamID,
			SessionToken: token,
		})
	}
}

func handleAdminResetGame(logger *slog.Logger, eng *game.Engine, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")
		if err := eng.Reset(r.Context(), gameID); err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		broker.Publish(gameID, "game_reset", map[string]string{"status": "waiting"})
		writeJSON(w, http.StatusOK, map[string]string{"status": "waiting"})
	}
}

func handleAdminStopGame(logger *slog.Logger, eng *game.Engine, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")
		if err := eng.Stop(r.Context(), gameID); err != nil {
			writeEngineError(w, logger, r, err)
			return
		}

		broker.Publish(gameID, "game_finished", map[string]string{"status": "finished"})
		writeJSON(w, http.StatusOK, map[string]string{"status": "finished"})
	}
}

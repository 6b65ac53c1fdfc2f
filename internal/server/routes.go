package server

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/swaggest/swgui/v5emb"

	"github.com/questline/treasurehunt/internal/game"
)

func addRoutes(r chi.Router, logger *slog.Logger, eng *game.Engine, db *sql.DB, rdb *redis.Client) {
	broker := NewBroker()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("TreasureHunt API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db, rdb))
	r.Get("/ws/echo", handleWSEcho(logger))

	// Game lifecycle — no session required.
	r.Post("/api/games", handleCreateGame(logger, eng))
	r.Get("/api/games/code/{joinCode}", handleGameByCode(logger, eng))
	r.Post("/api/games/join", handleJoinGame(logger, eng, broker))
	r.Get("/api/games/{gameID}/status", handleGameStatus(logger, eng))
	r.Post("/api/games/{gameID}/start", handleStartGame(logger, eng, broker))
	r.Get("/api/games/{gameID}/events", handleEvents(eng, broker))

	// Player session routes — Bearer token resolved per handler.
	r.Route("/api/session", func(r chi.Router) {
		r.Get("/me", handleSessionMe(logger, eng))
		r.Get("/challenge", handleCurrentChallenge(logger, eng))
		r.Get("/progress", handleProgressLog(logger, eng))
		r.Post("/submit", handleSubmitCode(logger, eng, broker))
		r.Post("/help", handleRequestHelp(logger, eng, broker))
		r.Post("/pause", handlePause(logger, eng, broker))
		r.Post("/resume", handleResume(logger, eng, broker))
		r.Post("/logout", handleLogout(logger, eng, broker))
	})

	// Admin auth.
	r.Post("/api/admin/login", handleAdminLogin(db))
	r.Post("/api/admin/logout", handleAdminLogout(db))
	r.Get("/api/admin/me", handleAdminMe(db))

	// Admin game management — requires admin session.
	r.Route("/api/admin/games/{gameID}", func(r chi.Router) {
		r.Post("/players", requireAdmin(db, handleAdminAddPlayer(logger, eng, broker)))
		r.Post("/players/{playerID}/move", requireAdmin(db, handleAdminMovePlayer(logger, eng, broker)))
		r.Delete("/players/{playerID}", requireAdmin(db, handleAdminRemovePlayer(logger, eng, broker)))
		r.Post("/reset", requireAdmin(db, handleAdminResetGame(logger, eng, broker)))
		r.Post("/stop", requireAdmin(db, handleAdminStopGame(logger, eng, broker)))
	})
}

package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/questline/treasurehunt/internal/hunt"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "TreasureHunt API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the treasure hunt game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /ws/echo
	getWSEcho, _ := r.NewOperationContext(http.MethodGet, "/ws/echo")
	getWSEcho.SetSummary("WebSocket echo")
	getWSEcho.SetDescription("Upgrades to a WebSocket connection that echoes messages back.")
	getWSEcho.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWSEcho)

	// POST /api/games
	postGame, _ := r.NewOperationContext(http.MethodPost, "/api/games")
	postGame.SetSummary("Create game")
	postGame.SetDescription("Creates a game with its default teams and returns the join code.")
	postGame.AddReqStructure(CreateGameRequest{})
	postGame.AddRespStructure(GameResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postGame)

	// GET /api/games/code/{joinCode}
	getByCode, _ := r.NewOperationContext(http.MethodGet, "/api/games/code/{joinCode}")
	getByCode.SetSummary("Look up game")
	getByCode.SetDescription("Looks up a game by its join code before joining.")
	getByCode.AddRespStructure(GameResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getByCode.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getByCode)

	// POST /api/games/join
	postJoin, _ := r.NewOperationContext(http.MethodPost, "/api/games/join")
	postJoin.SetSummary("Join a game")
	postJoin.SetDescription("Player joins a team using the game's join code. Returns a session token.")
	postJoin.AddReqStructure(JoinRequest{})
	postJoin.AddRespStructure(JoinResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postJoin)

	// GET /api/games/{gameID}/status
	getStatus, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}/status")
	getStatus.SetSummary("Game status")
	getStatus.SetDescription("Returns the full game snapshot: teams, rosters, and progress.")
	getStatus.AddRespStructure(hunt.GameSnapshot{}, openapi.WithHTTPStatus(http.StatusOK))
	getStatus.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getStatus)

	// POST /api/games/{gameID}/start
	postStart, _ := r.NewOperationContext(http.MethodPost, "/api/games/{gameID}/start")
	postStart.SetSummary("Start game")
	postStart.SetDescription("Moves the game to the separate phase once every team is staffed.")
	postStart.AddRespStructure(GameResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postStart)

	// GET /api/session/me
	getMeSession, _ := r.NewOperationContext(http.MethodGet, "/api/session/me")
	getMeSession.SetSummary("Current session")
	getMeSession.SetDescription("Returns the caller's player, team, and game. Requires Bearer token.")
	getMeSession.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMeSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMeSession)

	// GET /api/session/challenge
	getChallenge, _ := r.NewOperationContext(http.MethodGet, "/api/session/challenge")
	getChallenge.SetSummary("Current challenge")
	getChallenge.SetDescription("Returns the team's current challenge. Requires Bearer token.")
	getChallenge.AddRespStructure(ChallengeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getChallenge.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	getChallenge.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(getChallenge)

	// GET /api/session/progress
	getProgress, _ := r.NewOperationContext(http.MethodGet, "/api/session/progress")
	getProgress.SetSummary("Progress log")
	getProgress.SetDescription("Returns the team's cleared stations in course order. Requires Bearer token.")
	getProgress.AddRespStructure([]ProgressEntry{}, openapi.WithHTTPStatus(http.StatusOK))
	getProgress.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getProgress)

	// POST /api/session/submit
	postSubmit, _ := r.NewOperationContext(http.MethodPost, "/api/session/submit")
	postSubmit.SetSummary("Submit code")
	postSubmit.SetDescription("Submit a challenge code for the team's current station. Requires Bearer token.")
	postSubmit.AddReqStructure(SubmitRequest{})
	postSubmit.AddRespStructure(SubmitResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postSubmit.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postSubmit.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postSubmit)

	// POST /api/session/help
	postHelp, _ := r.NewOperationContext(http.MethodPost, "/api/session/help")
	postHelp.SetSummary("Request help")
	postHelp.SetDescription("Returns the help text for the current challenge and marks the team as helped. Requires Bearer token.")
	postHelp.AddRespStructure(HelpResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postHelp.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postHelp.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postHelp)

	// POST /api/session/pause
	postPause, _ := r.NewOperationContext(http.MethodPost, "/api/session/pause")
	postPause.SetSummary("Pause session")
	postPause.SetDescription("Marks the player inactive while keeping the session token valid. Requires Bearer token.")
	postPause.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postPause.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postPause)

	// POST /api/session/resume
	postResume, _ := r.NewOperationContext(http.MethodPost, "/api/session/resume")
	postResume.SetSummary("Resume session")
	postResume.SetDescription("Reactivates a paused player. Requires Bearer token.")
	postResume.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postResume.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postResume)

	// POST /api/session/logout
	postPlayerLogout, _ := r.NewOperationContext(http.MethodPost, "/api/session/logout")
	postPlayerLogout.SetSummary("Leave game")
	postPlayerLogout.SetDescription("Removes the player from the game. An emptied team sends the game back to waiting. Requires Bearer token.")
	postPlayerLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	postPlayerLogout.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postPlayerLogout)

	// GET /api/games/{gameID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream for real-time game updates. Pass token as query parameter.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// POST /api/admin/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postLogin.SetSummary("Admin login")
	postLogin.SetDescription("Authenticate with email and password. Sets admin_session cookie.")
	postLogin.AddReqStructure(AdminLoginRequest{})
	postLogin.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/admin/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postLogout.SetSummary("Admin logout")
	postLogout.SetDescription("Clears admin session and cookie.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postLogout)

	// GET /api/admin/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getMe.SetSummary("Current admin")
	getMe.SetDescription("Returns the currently authenticated admin. Requires admin_session cookie.")
	getMe.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// POST /api/admin/games/{gameID}/players
	addPlayer, _ := r.NewOperationContext(http.MethodPost, "/api/admin/games/{gameID}/players")
	addPlayer.SetSummary("Add player")
	addPlayer.SetDescription("Adds a player to a team, bypassing the started-game guard. Requires admin_session cookie.")
	addPlayer.AddReqStructure(AddPlayerRequest{})
	addPlayer.AddRespStructure(JoinResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	addPlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(addPlayer)

	// POST /api/admin/games/{gameID}/players/{playerID}/move
	movePlayer, _ := r.NewOperationContext(http.MethodPost, "/api/admin/games/{gameID}/players/{playerID}/move")
	movePlayer.SetSummary("Move player")
	movePlayer.SetDescription("Moves a player to another team if it has room. Requires admin_session cookie.")
	movePlayer.AddReqStructure(MovePlayerRequest{})
	movePlayer.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	movePlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(movePlayer)

	// DELETE /api/admin/games/{gameID}/players/{playerID}
	removePlayer, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/games/{gameID}/players/{playerID}")
	removePlayer.SetSummary("Remove player")
	removePlayer.SetDescription("Removes a player from the game. Requires admin_session cookie.")
	removePlayer.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	removePlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(removePlayer)

	// POST /api/admin/games/{gameID}/reset
	resetGame, _ := r.NewOperationContext(http.MethodPost, "/api/admin/games/{gameID}/reset")
	resetGame.SetSummary("Reset game")
	resetGame.SetDescription("Sends every team back to station 1 and the game back to waiting. Requires admin_session cookie.")
	resetGame.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	resetGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(resetGame)

	// POST /api/admin/games/{gameID}/stop
	stopGame, _ := r.NewOperationContext(http.MethodPost, "/api/admin/games/{gameID}/stop")
	stopGame.SetSummary("Stop game")
	stopGame.SetDescription("Force-finishes a running game. Requires admin_session cookie.")
	stopGame.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	stopGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(stopGame)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

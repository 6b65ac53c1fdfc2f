package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/questline/treasurehunt/internal/database"
	"github.com/questline/treasurehunt/internal/game"
	"github.com/questline/treasurehunt/internal/hunt"
	"github.com/questline/treasurehunt/internal/migrations"
)

func newTestRouter(t *testing.T) (*chi.Mux, *game.Engine) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := game.New(db, nil, logger)
	if err := eng.SeedCourse(ctx); err != nil {
		t.Fatalf("seed course: %v", err)
	}
	if err := eng.SeedAdmin(ctx, "admin@test.local", "hunter2"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	r := chi.NewRouter()
	addRoutes(r, logger, eng, db, nil)
	return r, eng
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if v != nil {
		if err := json.NewEncoder(&buf).Encode(v); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	return &buf
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, jsonBody(t, body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func TestCreateAndJoinFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/games",
		CreateGameRequest{Name: "Saturday Hunt", CreatedBy: "organizer"}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	g := decode[GameResponse](t, rec)
	if g.JoinCode == "" || g.Status != "waiting" {
		t.Fatalf("game = %+v", g)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/games/join",
		JoinRequest{JoinCode: g.JoinCode, PlayerName: "alice", TeamName: "pumpkin"}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("join status = %d, body %s", rec.Code, rec.Body)
	}
	j := decode[JoinResponse](t, rec)
	if j.SessionToken == "" {
		t.Fatal("join returned no session token")
	}

	// The token authenticates /api/session/me.
	rec = doJSON(t, r, http.MethodGet, "/api/session/me", nil, j.SessionToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, body %s", rec.Code, rec.Body)
	}
	me := decode[SessionResponse](t, rec)
	if me.PlayerName != "alice" || me.TeamName != "pumpkin" {
		t.Errorf("session = %+v", me)
	}
}

func TestJoinUnknownCode(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/games/join",
		JoinRequest{JoinCode: "ZZZZZZ", PlayerName: "alice", TeamName: "pumpkin"}, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestJoinValidationErrorNamesField(t *testing.T) {
	r, eng := newTestRouter(t)
	g, err := eng.CreateGame(context.Background(), "Saturday Hunt", "")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	rec := doJSON(t, r, http.MethodPost, "/api/games/join",
		JoinRequest{JoinCode: g.JoinCode, PlayerName: "x", TeamName: "pumpkin"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["field"] != "playerName" {
		t.Errorf("field = %q, want playerName", body["field"])
	}
}

func TestGameStatus(t *testing.T) {
	r, eng := newTestRouter(t)
	ctx := context.Background()

	g, _ := eng.CreateGame(ctx, "Saturday Hunt", "")
	eng.Join(ctx, g.ID, "alice", "pumpkin")

	rec := doJSON(t, r, http.MethodGet, "/api/games/"+g.ID+"/status", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	snap := decode[hunt.GameSnapshot](t, rec)
	if len(snap.Teams) != 2 {
		t.Fatalf("teams = %d, want 2", len(snap.Teams))
	}
	if snap.TotalPlayers != 1 {
		t.Errorf("total players = %d, want 1", snap.TotalPlayers)
	}
}

func TestStartNotReadyIsConflict(t *testing.T) {
	r, eng := newTestRouter(t)
	ctx := context.Background()

	g, _ := eng.CreateGame(ctx, "Saturday Hunt", "")
	eng.Join(ctx, g.ID, "alice", "pumpkin")

	rec := doJSON(t, r, http.MethodPost, "/api/games/"+g.ID+"/start", nil, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestSubmitRequiresToken(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/session/submit",
		SubmitRequest{Code: "OAK-P1"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestSubmitFlow(t *testing.T) {
	r, eng := newTestRouter(t)
	ctx := context.Background()

	g, _ := eng.CreateGame(ctx, "Saturday Hunt", "")
	_, aliceToken, _ := eng.Join(ctx, g.ID, "alice", "pumpkin")
	eng.Join(ctx, g.ID, "bob", "ghost")
	if _, err := eng.Start(ctx, g.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	rec := doJSON(t, r, http.MethodPost, "/api/session/submit",
		SubmitRequest{Code: "wrong"}, aliceToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	out := decode[SubmitResponse](t, rec)
	if out.Correct || out.Attempts != 1 {
		t.Fatalf("outcome = %+v", out)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/session/submit",
		SubmitRequest{Code: "OAK-P1"}, aliceToken)
	out = decode[SubmitResponse](t, rec)
	if !out.Correct {
		t.Fatalf("outcome = %+v, want correct", out)
	}

	// The challenge endpoint now serves station 2.
	rec = doJSON(t, r, http.MethodGet, "/api/session/challenge", nil, aliceToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("challenge status = %d, body %s", rec.Code, rec.Body)
	}
	ch := decode[ChallengeResponse](t, rec)
	if ch.StationNumber != 2 {
		t.Errorf("station = %d, want 2", ch.StationNumber)
	}
}

func TestPauseResumeLogoutFlow(t *testing.T) {
	r, eng := newTestRouter(t)
	ctx := context.Background()

	g, _ := eng.CreateGame(ctx, "Saturday Hunt", "")
	_, token, _ := eng.Join(ctx, g.ID, "alice", "pumpkin")

	rec := doJSON(t, r, http.MethodPost, "/api/session/pause", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("pause status = %d, body %s", rec.Code, rec.Body)
	}
	sess := decode[SessionResponse](t, rec)
	if sess.IsActive {
		t.Error("active after pause")
	}

	rec = doJSON(t, r, http.MethodPost, "/api/session/resume", nil, token)
	sess = decode[SessionResponse](t, rec)
	if !sess.IsActive {
		t.Error("inactive after resume")
	}

	rec = doJSON(t, r, http.MethodPost, "/api/session/logout", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d, body %s", rec.Code, rec.Body)
	}

	// The token is dead afterwards.
	rec = doJSON(t, r, http.MethodGet, "/api/session/me", nil, token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me status = %d, want 401 after logout", rec.Code)
	}
}

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func adminCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == adminCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("expected admin_session cookie to be set")
	return nil
}

func TestAdminLogin(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/admin/login",
		AdminLoginRequest{Email: "admin@test.local", Password: "wrong"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/admin/login",
		AdminLoginRequest{Email: "admin@test.local", Password: "hunter2"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body)
	}
	cookie := adminCookie(t, rec)

	// The cookie authenticates /api/admin/me.
	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, body %s", rec.Code, rec.Body)
	}
	me := decode[AdminMeResponse](t, rec)
	if me.Email != "admin@test.local" {
		t.Errorf("email = %q", me.Email)
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	r, eng := newTestRouter(t)
	g, err := eng.CreateGame(context.Background(), "Saturday Hunt", "")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	rec := doJSON(t, r, http.MethodPost, "/api/admin/games/"+g.ID+"/reset", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without cookie", rec.Code)
	}
}

func TestAdminResetAndStop(t *testing.T) {
	r, eng := newTestRouter(t)
	ctx := context.Background()

	g, _ := eng.CreateGame(ctx, "Saturday Hunt", "")
	eng.Join(ctx, g.ID, "alice", "pumpkin")
	eng.Join(ctx, g.ID, "bob", "ghost")
	if _, err := eng.Start(ctx, g.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	login := doJSON(t, r, http.MethodPost, "/api/admin/login",
		AdminLoginRequest{Email: "admin@test.local", Password: "hunter2"}, "")
	cookie := adminCookie(t, login)

	do := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := do("/api/admin/games/" + g.ID + "/stop")
	if rec.Code != http.StatusOK {
		t.Fatalf("stop status = %d, body %s", rec.Code, rec.Body)
	}

	// Stopping again conflicts: the game is no longer running.
	rec = do("/api/admin/games/" + g.ID + "/stop")
	if rec.Code != http.StatusConflict {
		t.Fatalf("second stop status = %d, want 409", rec.Code)
	}

	// Reset works from any state.
	rec = do("/api/admin/games/" + g.ID + "/reset")
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d, body %s", rec.Code, rec.Body)
	}
	if got, _ := eng.Game(ctx, g.ID); got.Status != "waiting" {
		t.Errorf("status = %s, want waiting after reset", got.Status)
	}
}

func TestAdminMovePlayer(t *testing.T) {
	r, eng := newTestRouter(t)
	ctx := context.Background()

	g, _ := eng.CreateGame(ctx, "Saturday Hunt", "")
	alice, _, _ := eng.Join(ctx, g.ID, "alice", "pumpkin")

	login := doJSON(t, r, http.MethodPost, "/api/admin/login",
		AdminLoginRequest{Email: "admin@test.local", Password: "hunter2"}, "")
	cookie := adminCookie(t, login)

	rec := doJSON(t, r, http.MethodPost,
		"/api/admin/games/"+g.ID+"/players/"+alice.ID+"/move",
		MovePlayerRequest{TeamName: "ghost"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("move without cookie = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost,
		"/api/admin/games/"+g.ID+"/players/"+alice.ID+"/move",
		jsonBody(t, MovePlayerRequest{TeamName: "ghost"}))
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("move status = %d, body %s", rec.Code, rec.Body)
	}

	snap, _ := eng.Status(ctx, g.ID)
	for _, ts := range snap.Teams {
		if ts.Name == "ghost" && ts.PlayerCount != 1 {
			t.Errorf("ghost players = %d, want 1", ts.PlayerCount)
		}
	}
}

package server

import (
	"net/http"
	"strings"

	"github.com/questline/treasurehunt/internal/game"
	"github.com/questline/treasurehunt/internal/hunt"
)

// bearerToken extracts the player session token from the Authorization
// header, or from the token query parameter for EventSource clients
// that cannot set headers.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(auth, "Bearer "); found && token != "" {
		return token
	}
	return r.URL.Query().Get("token")
}

// sessionFromRequest resolves the caller's session token to its
// player, team, and game.
func sessionFromRequest(r *http.Request, eng *game.Engine) (game.Session, error) {
	token := bearerToken(r)
	if token == "" {
		return game.Session{}, hunt.ErrUnauthorized
	}
	return eng.SessionByToken(r.Context(), token)
}

package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/questline/treasurehunt/internal/game"
)

const (
	// eventBudget bounds how many writes a single SSE connection may
	// make before the client is told to reconnect. Long-lived streams
	// behind buffering proxies go stale; a bounded loop with an
	// explicit reconnect keeps them honest.
	eventBudget = 240

	heartbeatInterval = 30 * time.Second
)

func handleEvents(eng *game.Engine, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, eng)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}
		gameID := chi.URLParam(r, "gameID")
		if gameID != sess.Game.ID {
			writeError(w, http.StatusUnauthorized, "token does not belong to this game")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
		flusher.Flush()

		ch := broker.Subscribe(gameID)
		defer broker.Unsubscribe(gameID, ch)

		ping := time.NewTicker(heartbeatInterval)
		defer ping.Stop()

		for writes := 0; writes < eventBudget; writes++ {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				fmt.Fprintf(w, "event: game\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}

		// Budget exhausted: tell the client to reconnect instead of
		// holding the stream open indefinitely.
		fmt.Fprintf(w, "event: reconnect\ndata: {}\n\n")
		flusher.Flush()
	}
}

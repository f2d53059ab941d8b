package middleware

import (
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// maxDrainBytes caps how much of an unread body gets discarded, a bigger leftover
// costs the connection instead.
const maxDrainBytes = 256 << 10

// DrainAndCloseRequest discards what the handler left unread in the request body, up to
// maxDrainBytes, and closes it.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body == nil || r.Body == http.NoBody {
				return
			}
			if n, _ := io.CopyN(io.Discard, r.Body, maxDrainBytes); n > 0 {
				log.Tracef("drained %d unread body bytes: %s %s", n, r.Method, routeName(r))
			}
			_ = r.Body.Close()
		})
	}
}

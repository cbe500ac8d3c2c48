// Package recovery turns handler panics into JSON 500 answers.
package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/q-pitt/Medilense-3bros/internal/api/respond"
)

// Middleware logs the panic value and stack, then answers 500.
func Middleware(log zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error().
					Interface("panic", rec).
					Str("route", r.Method+" "+r.URL.Path).
					Str("stack", string(debug.Stack())).
					Msg("handler panicked")
				respond.WriteError(w, http.StatusInternalServerError, "internal error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

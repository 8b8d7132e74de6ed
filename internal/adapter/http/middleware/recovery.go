package middleware

import (
	"net/http"
	"runtime/debug"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Recovery converts a handler panic into a 500 detail body. A panic after the
// response has started (e.g. halfway through a report download) can only be
// logged; the client sees a truncated body.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			log.Ctx(r.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Bool("response_started", ww.Status() != 0).
				Msg("handler panicked")

			if ww.Status() == 0 {
				writeDetail(ww, http.StatusInternalServerError, "internal server error")
			}
		}()

		next.ServeHTTP(ww, r)
	})
}

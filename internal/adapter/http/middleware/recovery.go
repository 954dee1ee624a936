package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Recovery turns a panicking handler into a STORAGE_FAILURE envelope so a
// transfer caller never sees a dropped connection. http.ErrAbortHandler is
// re-raised for net/http to handle.
func Recovery(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				l := zerolog.Ctx(r.Context())
				if l.GetLevel() == zerolog.Disabled {
					l = &logger
				}
				l.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("route", routePattern(r)).
					Msg("handler panicked")

				writeError(w, http.StatusInternalServerError, "STORAGE_FAILURE", "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}

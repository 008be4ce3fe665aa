package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rohitkotecha14/sellscale-challenge/internal/apperr"
	"github.com/rohitkotecha14/sellscale-challenge/internal/metrics"
	"github.com/rohitkotecha14/sellscale-challenge/internal/models"
)

// sessionCookieName carries the signed session token. HttpOnly, so page
// scripts never see it.
const sessionCookieName = "session_token"

type userCtxKey struct{}

// userFromContext returns the authenticated user set by SessionMiddleware.
func userFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*models.User)
	return u, ok
}

// SessionMiddleware enforces the authentication gate: no cookie or an
// invalid/expired token yields 401, a token whose user no longer exists
// yields 404. On success the resolved user is placed in the request context.
func (h *Handler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		username, err := h.Auth.ParseSessionToken(cookie.Value)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		user, err := h.Users.GetUserByUsername(r.Context(), username)
		if err != nil {
			if errors.Is(err, apperr.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, "User not found")
				return
			}
			writeDomainError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userCtxKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Metrics records a counter and latency observation per request, labeled by
// chi route pattern rather than raw path to keep cardinality bounded.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

package controller

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/campusradio/server/internal/service/station"
	"github.com/campusradio/server/pkg/ctxlogger"
)

func (c controller) requestIdMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = ctxlogger.AppendCtx(ctx, slog.String("request_id", c.generateTimeBasedId()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c controller) requestLoggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"url", r.URL.String(),
			"remote_addr", r.RemoteAddr,
		)
		next.ServeHTTP(w, r)
	})
}

// authMw requires a valid bearer token and stores its claims in the request context.
func (c controller) authMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			c.writeError(w, r, station.ErrInvalidToken)
			return
		}

		claims, err := c.stationService.ParseToken(token)
		if err != nil {
			c.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsCtxKey, claims)
		ctx = ctxlogger.AppendCtx(ctx, slog.String("username", claims.Username))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c controller) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := c.getClaimsFromCtx(r.Context())
			if !ok {
				c.writeError(w, r, station.ErrInvalidToken)
				return
			}

			if err := c.stationService.Authorize(claims, role); err != nil {
				c.writeError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

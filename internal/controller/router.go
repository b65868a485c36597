package controller

import (
	"net/http"

	"github.com/campusradio/server/internal/service/station"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Route("/ws/session", func(r chi.Router) {
			r.Get("/", c.connectWidget)
			r.Get("/{session-id}", c.connectWidget)
		})
		r.Get("/sessions/{session-id}", c.getSessionState)

		r.Get("/player-config", c.getPlayerConfig)
		r.Get("/stream-config", c.getStreamConfig)

		r.Route("/podcasts", func(r chi.Router) {
			r.Get("/", c.listPodcasts)
			r.Get("/{slug}", c.getPodcast)
		})
		r.Get("/programs", c.listPrograms)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", c.login)

			r.Group(func(r chi.Router) {
				r.Use(c.authMw)

				r.Group(func(r chi.Router) {
					r.Use(c.requireRole(station.RoleAdmin))
					r.Put("/player-config", c.updatePlayerConfig)
					r.Put("/stream-config", c.updateStreamConfig)
				})

				r.Group(func(r chi.Router) {
					r.Use(c.requireRole(station.RoleEditor))
					r.Post("/podcasts", c.createPodcast)
					r.Post("/podcasts/sync", c.syncPodcasts)
					r.Delete("/podcasts/{id}", c.deletePodcast)
					r.Post("/programs", c.saveProgram)
					r.Put("/programs/{id}", c.saveProgram)
					r.Delete("/programs/{id}", c.deleteProgram)
				})
			})
		})
	})

	return r
}

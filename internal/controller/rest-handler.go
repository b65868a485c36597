package controller

import (
	"net/http"

	"github.com/campusradio/server/internal/service/station"
	"github.com/campusradio/server/pkg/rest"
	"github.com/go-chi/chi/v5"
)

// getPlayerConfig and getStreamConfig answer with bare objects and never fail, defaults are served instead.
func (c controller) getPlayerConfig(w http.ResponseWriter, r *http.Request) {
	cfg := c.stationService.GetPlayerConfig(r.Context())

	if err := rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"title":           cfg.Title,
		"subtitle":        cfg.Subtitle,
		"cover_image_url": cfg.CoverImageURL,
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to write player config", "error", err)
	}
}

func (c controller) getStreamConfig(w http.ResponseWriter, r *http.Request) {
	cfg := c.stationService.GetStreamConfig(r.Context())

	if err := rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"on_air":     cfg.OnAir,
		"stream_url": cfg.StreamURL,
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to write stream config", "error", err)
	}
}

func (c controller) getSessionState(w http.ResponseWriter, r *http.Request) {
	state, err := c.playbackService.GetState(r.Context(), chi.URLParam(r, "session-id"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	c.writeData(w, r, http.StatusOK, state)
}

func (c controller) listPodcasts(w http.ResponseWriter, r *http.Request) {
	limit, err := c.getIntQueryParam(r, "limit", 0)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	offset, err := c.getIntQueryParam(r, "offset", 0)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	list, err := c.stationService.ListPodcasts(r.Context(), &station.ListPodcastsParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	c.writeData(w, r, http.StatusOK, list)
}

func (c controller) getPodcast(w http.ResponseWriter, r *http.Request) {
	podcast, err := c.stationService.GetPodcast(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	c.writeData(w, r, http.StatusOK, podcast)
}

func (c controller) listPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := c.stationService.ListPrograms(r.Context())
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	c.writeData(w, r, http.StatusOK, programs)
}

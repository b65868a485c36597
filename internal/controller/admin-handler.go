package controller

import (
	"net/http"
	"time"

	"github.com/campusradio/server/internal/service/station"
	"github.com/campusradio/server/pkg/rest"
	"github.com/go-chi/chi/v5"
)

// readInput decodes and validates a request body. Failures are already written to w.
func (c controller) readInput(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := rest.ReadJSON(r, dst); err != nil {
		c.writeError(w, r, newInputError("body", "INVALID_JSON", err.Error()))
		return false
	}

	if err := c.validateInput(dst); err != nil {
		c.writeError(w, r, err)
		return false
	}

	return true
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=256"`
}

func (c controller) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !c.readInput(w, r, &req) {
		return
	}

	loginResp, err := c.stationService.Login(r.Context(), &station.LoginParams{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	c.logger.InfoContext(r.Context(), "admin logged in", "username", req.Username, "role", loginResp.Role)

	c.writeData(w, r, http.StatusOK, loginResp)
}

type updatePlayerConfigRequest struct {
	Title         string `json:"title" validate:"required,max=128"`
	Subtitle      string `json:"subtitle" validate:"max=256"`
	CoverImageURL string `json:"cover_image_url" validate:"omitempty,url"`
}

func (c controller) updatePlayerConfig(w http.ResponseWriter, r *http.Request) {
	var req updatePlayerConfigRequest
	if !c.readInput(w, r, &req) {
		return
	}

	cfg, err := c.stationService.UpdatePlayerConfig(r.Context(), &station.UpdatePlayerConfigParams{
		Title:         req.Title,
		Subtitle:      req.Subtitle,
		CoverImageURL: req.CoverImageURL,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	c.writeData(w, r, http.StatusOK, cfg)
}

type updateStreamConfigRequest struct {
	OnAir     bool   `json:"on_air"`
	StreamURL string `json:"stream_url" validate:"required,url"`
}

func (c controller) updateStreamConfig(w http.ResponseWriter, r *http.Request) {
	var req updateStreamConfigRequest
	if !c.readInput(w, r, &req) {
		return
	}

	cfg, err := c.stationService.UpdateStreamConfig(r.Context(), &station.UpdateStreamConfigParams{
		OnAir:     req.OnAir,
		StreamURL: req.StreamURL,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	c.writeData(w, r, http.StatusOK, cfg)
}

type createPodcastRequest struct {
	Slug        string    `json:"slug" validate:"required,slug,max=128"`
	Title       string    `json:"title" validate:"required,max=256"`
	Description string    `json:"description" validate:"max=4096"`
	Host        string    `json:"host" validate:"max=128"`
	CoverURL    string    `json:"cover_url" validate:"omitempty,url"`
	AudioKey    string    `json:"audio_key" validate:"required,max=1024"`
	DurationSec int       `json:"duration_sec" validate:"min=0"`
	PublishedAt time.Time `json:"published_at"`
}

func (c controller) createPodcast(w http.ResponseWriter, r *http.Request) {
	var req createPodcastRequest
	if !c.readInput(w, r, &req) {
		return
	}

	podcast, err := c.stationService.CreatePodcast(r.Context(), &station.CreatePodcastParams{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		Host:        req.Host,
		CoverURL:    req.CoverURL,
		AudioKey:    req.AudioKey,
		DurationSec: req.DurationSec,
		PublishedAt: req.PublishedAt,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	c.writeData(w, r, http.StatusCreated, podcast)
}

func (c controller) deletePodcast(w http.ResponseWriter, r *http.Request) {
	if err := c.stationService.DeletePodcast(r.Context(), chi.URLParam(r, "id")); err != nil {
		c.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c controller) syncPodcasts(w http.ResponseWriter, r *http.Request) {
	syncResp, err := c.stationService.SyncPodcasts(r.Context())
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	c.logger.InfoContext(r.Context(), "podcasts synced", "created", len(syncResp.Created), "skipped", syncResp.Skipped)

	c.writeData(w, r, http.StatusOK, syncResp)
}

type saveProgramRequest struct {
	Name        string `json:"name" validate:"required,max=128"`
	Host        string `json:"host" validate:"max=128"`
	Description string `json:"description" validate:"max=4096"`
	DayOfWeek   int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime   string `json:"start_time" validate:"required,clock"`
	EndTime     string `json:"end_time" validate:"required,clock"`
}

// saveProgram creates a program on POST and replaces the program of the path id on PUT.
func (c controller) saveProgram(w http.ResponseWriter, r *http.Request) {
	var req saveProgramRequest
	if !c.readInput(w, r, &req) {
		return
	}

	program, err := c.stationService.SaveProgram(r.Context(), &station.SaveProgramParams{
		Id:          chi.URLParam(r, "id"),
		Name:        req.Name,
		Host:        req.Host,
		Description: req.Description,
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if r.Method == http.MethodPost {
		status = http.StatusCreated
	}

	c.writeData(w, r, status, program)
}

func (c controller) deleteProgram(w http.ResponseWriter, r *http.Request) {
	if err := c.stationService.DeleteProgram(r.Context(), chi.URLParam(r, "id")); err != nil {
		c.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/campusradio/server/internal/service/playback"
	"github.com/campusradio/server/internal/service/station"
	"github.com/campusradio/server/pkg/validator"
	"github.com/campusradio/server/pkg/wsrouter"
	"github.com/gorilla/websocket"
)

type iPlaybackService interface {
	CheckWidgetSlot(context.Context, *playback.CheckWidgetSlotParams) error
	ConnectWidget(context.Context, *playback.ConnectWidgetParams) (playback.ConnectWidgetResponse, error)
	DisconnectWidget(context.Context, *playback.DisconnectWidgetParams) (playback.DisconnectWidgetResponse, error)
	GetState(context.Context, string) (playback.State, error)
	// radio
	PlayRadio(context.Context, *playback.PlayRadioParams) (playback.StateResponse, error)
	PauseRadio(context.Context, *playback.PauseRadioParams) (playback.StateResponse, error)
	ReportRadioStarted(context.Context, *playback.ReportRadioStartedParams) (playback.StateResponse, error)
	ReportRadioFailed(context.Context, *playback.ReportRadioFailedParams) (playback.StateResponse, error)
	SetVolume(context.Context, *playback.SetVolumeParams) (playback.SetVolumeResponse, error)
	// podcast
	SelectEpisode(context.Context, *playback.SelectEpisodeParams) (playback.StateResponse, error)
	PlayPodcast(context.Context, *playback.PlayPodcastParams) (playback.StateResponse, error)
	PausePodcast(context.Context, *playback.PausePodcastParams) (playback.StateResponse, error)
	Seek(context.Context, *playback.SeekParams) (playback.StateResponse, error)
	Skip(context.Context, *playback.SkipParams) (playback.StateResponse, error)
	SetRepeat(context.Context, *playback.SetRepeatParams) (playback.StateResponse, error)
	ReportPodcastProgress(context.Context, *playback.ReportPodcastProgressParams) (playback.StateResponse, error)
	ReportPodcastEnded(context.Context, *playback.ReportPodcastEndedParams) (playback.StateResponse, error)

	SetLoadingExpiredHandler(playback.LoadingExpiredHandler)
}

type iStationService interface {
	GetPlayerConfig(context.Context) station.PlayerConfig
	GetStreamConfig(context.Context) station.StreamConfig
	UpdatePlayerConfig(context.Context, *station.UpdatePlayerConfigParams) (station.PlayerConfig, error)
	UpdateStreamConfig(context.Context, *station.UpdateStreamConfigParams) (station.StreamConfig, error)
	// catalog
	ListPodcasts(context.Context, *station.ListPodcastsParams) (station.PodcastList, error)
	GetPodcast(context.Context, string) (station.Podcast, error)
	CreatePodcast(context.Context, *station.CreatePodcastParams) (station.Podcast, error)
	DeletePodcast(context.Context, string) error
	SyncPodcasts(context.Context) (station.SyncPodcastsResponse, error)
	// schedule
	ListPrograms(context.Context) ([]station.Program, error)
	SaveProgram(context.Context, *station.SaveProgramParams) (station.Program, error)
	DeleteProgram(context.Context, string) error
	// auth
	Login(context.Context, *station.LoginParams) (station.LoginResponse, error)
	ParseToken(string) (station.Claims, error)
	Authorize(station.Claims, string) error
}

type controller struct {
	playbackService iPlaybackService
	stationService  iStationService
	upgrader        websocket.Upgrader
	wsRouter        *wsrouter.WSRouter
	writers         *connWriters
	validate        *validator.Validator
	logger          *slog.Logger
}

func NewController(playbackService iPlaybackService, stationService iStationService, logger *slog.Logger) *controller {
	c := &controller{
		playbackService: playbackService,
		stationService:  stationService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		writers:  newConnWriters(),
		validate: validator.NewValidator(),
		logger:   logger,
	}
	c.wsRouter = c.getWSRouter()
	playbackService.SetLoadingExpiredHandler(c.handleLoadingExpired)

	return c
}

// Package playback coordinates radio and podcast playback across the widgets of a listener session.
// A session owns a single NowPlaying value, so the live stream and a podcast episode are never active together.
package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/campusradio/server/internal/repository/session"
	"github.com/campusradio/server/internal/service/station"
	"github.com/gorilla/websocket"
)

var (
	ErrSessionNotFound               = errors.New("session not found")
	ErrHostNotConnected              = errors.New("radio host widget not connected")
	ErrHostAlreadyConnected          = errors.New("radio host widget already connected")
	ErrPodcastWidgetNotConnected     = errors.New("podcast widget not connected")
	ErrPodcastWidgetAlreadyConnected = errors.New("podcast widget already connected")
	ErrEpisodeNotLoaded              = errors.New("no episode loaded")
	ErrPermissionDenied              = errors.New("permission denied")
	ErrWidgetNotFound                = errors.New("widget not found")
	ErrStreamNotConfigured           = errors.New("no stream url configured")
)

type iSessionRepo interface {
	CreateState(context.Context, *session.CreateStateParams) error
	GetState(context.Context, string) (session.State, error)
	SetState(context.Context, *session.SetStateParams) error
	AddWidget(context.Context, *session.AddWidgetParams) error
	RemoveWidget(context.Context, *session.RemoveWidgetParams) error
	GetWidgets(context.Context, string) ([]session.Widget, error)
	ExpireSession(context.Context, string) error
	RemoveSession(context.Context, string) error
}

type iConnRepo interface {
	Add(*websocket.Conn, string) error
	RemoveByWidgetId(string) (*websocket.Conn, error)
	GetConn(string) (*websocket.Conn, error)
}

type iStationService interface {
	GetPodcast(context.Context, string) (station.Podcast, error)
	GetStreamConfig(context.Context) station.StreamConfig
}

// LoadingExpiredHandler receives the transition made when a host did not confirm a play attempt in time.
type LoadingExpiredHandler func(context.Context, StateResponse)

type Config struct {
	// LoadingTimeout bounds how long a play attempt may stay loading without host confirmation.
	LoadingTimeout   time.Duration
	DefaultStreamURL string
	RetryBase        time.Duration
	RetryMax         time.Duration
}

type service struct {
	sessionRepo    iSessionRepo
	connRepo       iConnRepo
	stationService iStationService
	resolver       StreamResolver
	locks          *sessionLocks
	failsafe       *failsafe
	loadingTimeout time.Duration
	now            func() time.Time

	handlerMu        sync.RWMutex
	onLoadingExpired LoadingExpiredHandler
}

func NewService(sessionRepo iSessionRepo, connRepo iConnRepo, stationService iStationService, cfg *Config) *service {
	loadingTimeout := cfg.LoadingTimeout
	if loadingTimeout <= 0 {
		loadingTimeout = 5 * time.Second
	}

	s := &service{
		sessionRepo:    sessionRepo,
		connRepo:       connRepo,
		stationService: stationService,
		locks:          newSessionLocks(),
		failsafe:       newFailsafe(),
		loadingTimeout: loadingTimeout,
		now:            time.Now,
	}
	s.resolver = NewStreamResolver(cfg.DefaultStreamURL, cfg.RetryBase, cfg.RetryMax, s.nowFunc)

	return s
}

func (s *service) nowFunc() time.Time {
	return s.now()
}

func (s *service) SetLoadingExpiredHandler(h LoadingExpiredHandler) {
	s.handlerMu.Lock()
	defer s.handlerMu.Unlock()

	s.onLoadingExpired = h
}

// Close stops every pending loading failsafe.
func (s *service) Close() {
	s.failsafe.stopAll()
}

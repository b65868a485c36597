package station

import (
	"context"
	"errors"
	"time"

	"github.com/campusradio/server/internal/repository/audio"
	"github.com/campusradio/server/internal/repository/content"
)

var (
	ErrPodcastNotFound      = errors.New("podcast not found")
	ErrPodcastAlreadyExists = errors.New("podcast already exists")
	ErrProgramNotFound      = errors.New("program not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidToken         = errors.New("invalid token")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrStorageNotConfigured = errors.New("audio storage not configured")
)

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

type iContentStore interface {
	// settings
	GetSettings(context.Context) (content.Settings, error)
	SetSettings(context.Context, *content.SetSettingsParams) error
	// podcast
	CreatePodcast(context.Context, *content.CreatePodcastParams) (content.Podcast, error)
	ListPodcasts(context.Context, *content.ListPodcastsParams) ([]content.Podcast, error)
	CountPodcasts(context.Context) (int, error)
	GetPodcastBySlug(context.Context, string) (content.Podcast, error)
	DeletePodcast(context.Context, string) error
	GetPodcastAudioKeys(context.Context) ([]string, error)
	// program
	UpsertProgram(context.Context, *content.CreateProgramParams) (content.Program, error)
	ListPrograms(context.Context) ([]content.Program, error)
	DeleteProgram(context.Context, string) error
	// user
	GetUserByUsername(context.Context, string) (content.User, error)
}

type iCache interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

type iAudioStore interface {
	AudioURL(ctx context.Context, key string) (string, error)
	ListAudio(context.Context) ([]audio.Object, error)
}

type Config struct {
	Secret           string
	TokenTTL         time.Duration
	DefaultStreamURL string
	DefaultTitle     string
}

type service struct {
	store            iContentStore
	cache            iCache
	audio            iAudioStore
	secret           []byte
	tokenTTL         time.Duration
	defaultStreamURL string
	defaultTitle     string
	now              func() time.Time
}

// NewService builds the station service. audioStore may be nil when no bucket is configured.
func NewService(store iContentStore, cache iCache, audioStore iAudioStore, cfg *Config) *service {
	tokenTTL := cfg.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}

	return &service{
		store:            store,
		cache:            cache,
		audio:            audioStore,
		secret:           []byte(cfg.Secret),
		tokenTTL:         tokenTTL,
		defaultStreamURL: cfg.DefaultStreamURL,
		defaultTitle:     cfg.DefaultTitle,
		now:              time.Now,
	}
}

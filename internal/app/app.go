package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/campusradio/server/internal/controller"
	"github.com/campusradio/server/internal/repository/audio"
	"github.com/campusradio/server/internal/repository/audio/s3store"
	cacheRedis "github.com/campusradio/server/internal/repository/cache/redis"
	"github.com/campusradio/server/internal/repository/connection/inmemory"
	"github.com/campusradio/server/internal/repository/content/sqlstore"
	sessionRedis "github.com/campusradio/server/internal/repository/session/redis"
	"github.com/campusradio/server/internal/seed"
	"github.com/campusradio/server/internal/service/playback"
	"github.com/campusradio/server/internal/service/station"
	"github.com/campusradio/server/pkg/ctxlogger"
	"github.com/campusradio/server/pkg/redisclient"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type AppConfig struct {
	Secret   string `json:"-"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	LogLevel string `json:"log_level"`

	RedisHost     string `json:"redis_host"`
	RedisPort     int    `json:"redis_port"`
	RedisPassword string `json:"-"`
	RedisDB       int    `json:"redis_db"`

	// DatabaseDSN is a sqlite:// or postgres:// url.
	DatabaseDSN string `json:"-"`
	SeedPath    string `json:"seed_path"`

	R2Endpoint        string        `json:"r2_endpoint"`
	R2Region          string        `json:"r2_region"`
	R2AccessKeyId     string        `json:"-"`
	R2SecretAccessKey string        `json:"-"`
	R2Bucket          string        `json:"r2_bucket"`
	R2Prefix          string        `json:"r2_prefix"`
	R2PublicBaseURL   string        `json:"r2_public_base_url"`
	PresignExpiry     time.Duration `json:"presign_expiry"`

	DefaultStreamURL string        `json:"default_stream_url"`
	DefaultTitle     string        `json:"default_title"`
	LoadingTimeout   time.Duration `json:"loading_timeout"`
	SessionTTL       time.Duration `json:"session_ttl"`
	ConfigCacheTTL   time.Duration `json:"config_cache_ttl"`
	TokenTTL         time.Duration `json:"token_ttl"`
}

var logLevels = []any{"DEBUG", "INFO", "WARN", "ERROR"}

func (cfg *AppConfig) Validate() error {
	storageEnabled := cfg.R2Bucket != ""

	return validation.ValidateStruct(cfg,
		validation.Field(&cfg.Secret, validation.Required, validation.Length(16, 0)),
		validation.Field(&cfg.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&cfg.LogLevel, validation.Required, validation.By(func(value any) error {
			return validation.In(logLevels...).Validate(strings.ToUpper(value.(string)))
		})),
		validation.Field(&cfg.RedisHost, validation.Required),
		validation.Field(&cfg.RedisPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&cfg.DatabaseDSN, validation.Required),
		validation.Field(&cfg.R2Endpoint, validation.When(storageEnabled, validation.Required), is.URL),
		validation.Field(&cfg.R2AccessKeyId, validation.When(storageEnabled, validation.Required)),
		validation.Field(&cfg.R2SecretAccessKey, validation.When(storageEnabled, validation.Required)),
		validation.Field(&cfg.R2PublicBaseURL, is.URL),
		validation.Field(&cfg.DefaultStreamURL, is.URL),
		validation.Field(&cfg.LoadingTimeout, validation.Required, validation.Min(100*time.Millisecond)),
		validation.Field(&cfg.SessionTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&cfg.ConfigCacheTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&cfg.TokenTTL, validation.Required, validation.Min(time.Minute)),
	)
}

func newLogger(level string) (*slog.Logger, error) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(&h), nil
}

// iAudioStore stays a nil interface when no bucket is configured.
type iAudioStore interface {
	AudioURL(ctx context.Context, key string) (string, error)
	ListAudio(context.Context) ([]audio.Object, error)
}

type application struct {
	handler http.Handler
	closers []func() error
}

// Close releases resources in reverse order of acquisition.
func (a *application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// newApplication wires repositories, services and the controller. On error everything acquired so far is released.
func newApplication(ctx context.Context, cfg *AppConfig, logger *slog.Logger) (_ *application, err error) {
	a := &application{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	a.closers = append(a.closers, rc.Close)

	store, err := sqlstore.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open content store: %w", err)
	}
	a.closers = append(a.closers, store.Close)

	if cfg.SeedPath != "" {
		data, err := seed.Load(cfg.SeedPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load seed: %w", err)
		}

		if err := data.Apply(ctx, store); err != nil {
			return nil, fmt.Errorf("failed to apply seed: %w", err)
		}
	}

	var audioStore iAudioStore
	if cfg.R2Bucket != "" {
		audioStore, err = s3store.New(&s3store.Config{
			Endpoint:        cfg.R2Endpoint,
			Region:          cfg.R2Region,
			AccessKeyId:     cfg.R2AccessKeyId,
			SecretAccessKey: cfg.R2SecretAccessKey,
			Bucket:          cfg.R2Bucket,
			Prefix:          cfg.R2Prefix,
			PublicBaseURL:   cfg.R2PublicBaseURL,
			PresignExpiry:   cfg.PresignExpiry,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create audio store: %w", err)
		}
	} else {
		logger.WarnContext(ctx, "audio storage not configured, only absolute audio urls will play")
	}

	stationService := station.NewService(store, cacheRedis.NewRepo(rc, cfg.ConfigCacheTTL), audioStore, &station.Config{
		Secret:           cfg.Secret,
		TokenTTL:         cfg.TokenTTL,
		DefaultStreamURL: cfg.DefaultStreamURL,
		DefaultTitle:     cfg.DefaultTitle,
	})

	playbackService := playback.NewService(sessionRedis.NewRepo(rc, cfg.SessionTTL), inmemory.NewRepo(), stationService, &playback.Config{
		LoadingTimeout:   cfg.LoadingTimeout,
		DefaultStreamURL: cfg.DefaultStreamURL,
	})
	a.closers = append(a.closers, func() error {
		playbackService.Close()
		return nil
	})

	a.handler = controller.NewController(playbackService, stationService, logger).GetMux()

	return a, nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	a, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.WarnContext(ctx, "failed to release resources", "error", err)
		}
	}()

	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: a.handler}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}

package station

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campusradio/server/internal/repository/cache"
	"github.com/campusradio/server/internal/repository/content"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const settingsCacheKey = "station-settings"

// getSettings reads station settings through the cache. found is false when no settings row exists.
func (s service) getSettings(ctx context.Context) (content.Settings, bool, error) {
	var settings content.Settings
	err := s.cache.Get(ctx, settingsCacheKey, &settings)
	if err == nil {
		return settings, true, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		slog.WarnContext(ctx, "failed to read settings cache", "error", err)
	}

	settings, err = s.store.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, content.ErrSettingsNotFound) {
			return content.Settings{}, false, nil
		}

		return content.Settings{}, false, fmt.Errorf("failed to get settings: %w", err)
	}

	if err := s.cache.Set(ctx, settingsCacheKey, settings); err != nil {
		slog.WarnContext(ctx, "failed to cache settings", "error", err)
	}

	return settings, true, nil
}

func (s service) defaultPlayerConfig() PlayerConfig {
	return PlayerConfig{Title: s.defaultTitle}
}

// GetPlayerConfig never fails: any read error degrades to the defaults.
func (s service) GetPlayerConfig(ctx context.Context) PlayerConfig {
	settings, found, err := s.getSettings(ctx)
	if err != nil {
		slog.WarnContext(ctx, "falling back to default player config", "error", err)
		return s.defaultPlayerConfig()
	}
	if !found {
		return s.defaultPlayerConfig()
	}

	return PlayerConfig{
		Title:         settings.Title,
		Subtitle:      settings.Subtitle,
		CoverImageURL: settings.CoverImageURL,
	}
}

// GetStreamConfig never fails: any read error degrades to an off-air default stream.
func (s service) GetStreamConfig(ctx context.Context) StreamConfig {
	settings, found, err := s.getSettings(ctx)
	if err != nil {
		slog.WarnContext(ctx, "falling back to default stream config", "error", err)
		return StreamConfig{StreamURL: s.defaultStreamURL}
	}
	if !found {
		return StreamConfig{StreamURL: s.defaultStreamURL}
	}

	streamURL := settings.StreamURL
	if streamURL == "" {
		streamURL = s.defaultStreamURL
	}

	return StreamConfig{
		OnAir:     settings.OnAir,
		StreamURL: streamURL,
	}
}

type UpdatePlayerConfigParams struct {
	Title         string
	Subtitle      string
	CoverImageURL string
}

func (s service) UpdatePlayerConfig(ctx context.Context, params *UpdatePlayerConfigParams) (PlayerConfig, error) {
	if err := validation.ValidateStruct(params,
		validation.Field(&params.Title, validation.Required, validation.Length(1, 128)),
		validation.Field(&params.Subtitle, validation.Length(0, 256)),
		validation.Field(&params.CoverImageURL, OptionalURLRule...),
	); err != nil {
		return PlayerConfig{}, err
	}

	current, err := s.readSettings(ctx)
	if err != nil {
		return PlayerConfig{}, err
	}

	if err := s.writeSettings(ctx, &content.SetSettingsParams{
		Title:         params.Title,
		Subtitle:      params.Subtitle,
		CoverImageURL: params.CoverImageURL,
		OnAir:         current.OnAir,
		StreamURL:     current.StreamURL,
	}); err != nil {
		return PlayerConfig{}, err
	}

	return PlayerConfig{
		Title:         params.Title,
		Subtitle:      params.Subtitle,
		CoverImageURL: params.CoverImageURL,
	}, nil
}

type UpdateStreamConfigParams struct {
	OnAir     bool
	StreamURL string
}

func (s service) UpdateStreamConfig(ctx context.Context, params *UpdateStreamConfigParams) (StreamConfig, error) {
	if err := validation.ValidateStruct(params,
		validation.Field(&params.StreamURL, validation.Required, validation.Length(1, 2048), is.URL),
	); err != nil {
		return StreamConfig{}, err
	}

	current, err := s.readSettings(ctx)
	if err != nil {
		return StreamConfig{}, err
	}

	if err := s.writeSettings(ctx, &content.SetSettingsParams{
		Title:         current.Title,
		Subtitle:      current.Subtitle,
		CoverImageURL: current.CoverImageURL,
		OnAir:         params.OnAir,
		StreamURL:     params.StreamURL,
	}); err != nil {
		return StreamConfig{}, err
	}

	return StreamConfig{
		OnAir:     params.OnAir,
		StreamURL: params.StreamURL,
	}, nil
}

// readSettings bypasses the cache so that partial updates merge with the stored row.
func (s service) readSettings(ctx context.Context) (content.Settings, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, content.ErrSettingsNotFound) {
			return content.Settings{Title: s.defaultTitle}, nil
		}

		return content.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}

	return settings, nil
}

func (s service) writeSettings(ctx context.Context, params *content.SetSettingsParams) error {
	if err := s.store.SetSettings(ctx, params); err != nil {
		return fmt.Errorf("failed to set settings: %w", err)
	}

	if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
		slog.WarnContext(ctx, "failed to invalidate settings cache", "error", err)
	}

	return nil
}

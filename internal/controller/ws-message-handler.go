package controller

import (
	"context"
	"fmt"

	"github.com/campusradio/server/internal/service/playback"
	"github.com/gorilla/websocket"
)

type EmptyInput struct{}

func (c controller) handleAlive(_ context.Context, _ *websocket.Conn, _ EmptyInput) error {
	return nil
}

func (c controller) handleGetState(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	state, err := c.playbackService.GetState(ctx, c.getSessionIdFromCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to get state: %w", err)
	}

	return c.writeToConn(ctx, conn, &Output{
		Type: "SESSION_STATE",
		Payload: map[string]any{
			"state": state,
		},
	})
}

func (c controller) handlePlayRadio(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	resp, err := c.playbackService.PlayRadio(ctx, &playback.PlayRadioParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		SenderId:  c.getWidgetIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to play radio: %w", err)
	}

	return c.emit(ctx, &resp)
}

func (c controller) handlePauseRadio(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	resp, err := c.playbackService.PauseRadio(ctx, &playback.PauseRadioParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		SenderId:  c.getWidgetIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to pause radio: %w", err)
	}

	return c.emit(ctx, &resp)
}

type RadioStartedInput struct {
	Attempt int `json:"attempt" validate:"required,min=1"`
}

func (c controller) handleRadioStarted(ctx context.Context, _ *websocket.Conn, input RadioStartedInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	resp, err := c.playbackService.ReportRadioStarted(ctx, &playback.ReportRadioStartedParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		SenderId:  c.getWidgetIdFromCtx(ctx),
		Attempt:   input.Attempt,
	})
	if err != nil {
		return fmt.Errorf("failed to report radio started: %w", err)
	}

	return c.emit(ctx, &resp)
}

type RadioFailedInput struct {
	Attempt int    `json:"attempt" validate:"required,min=1"`
	Reason  string `json:"reason" validate:"max=256"`
}

func (c controller) handleRadioFailed(ctx context.Context, _ *websocket.Conn, input RadioFailedInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	resp, err := c.playbackService.ReportRadioFailed(ctx, &playback.ReportRadioFailedParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		SenderId:  c.getWidgetIdFromCtx(ctx),
		Attempt:   input.Attempt,
		Reason:    input.Reason,
	})
	if err != nil {
		return fmt.Errorf("failed to report radio failed: %w", err)
	}

	return c.emit(ctx, &resp)
}

type SetVolumeInput struct {
	Volume  *float64 `json:"volume" validate:"required,min=0,max=1"`
	IsMuted bool     `json:"is_muted"`
}

func (c controller) handleSetVolume(ctx context.Context, _ *websocket.Conn, input SetVolumeInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	resp, err := c.playbackService.SetVolume(ctx, &playback.SetVolumeParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		SenderId:  c.getWidgetIdFromCtx(ctx),
		Volume:    *input.Volume,
		IsMuted:   input.IsMuted,
	})
	if err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}

	return c.broadcast(ctx, resp.Conns, &Output{
		Type:    "VOLUME_UPDATED",
		Payload: resp.Volume,
	})
}

type SelectEpisodeInput struct {
	Slug string `json:"slug" validate:"required,slug"`
}

func (c controller) handleSelectEpisode(ctx context.Context, _ *websocket.Conn, input SelectEpisodeInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	resp, err := c.playbackService.SelectEpisode(ctx, &playback.SelectEpisodeParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		SenderId:  c.getWidgetIdFromCtx(ctx),
		Slug:      input.Slug,
	})
	if err != nil {
		return fmt.Errorf("failed to select episode: %w", err)
	}

	return c.emit(ctx, &resp)
}

func (c controller) handlePlayPodcast(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	resp, err := c.playbackService.PlayPodcast(ctx, &playback.PlayPodcastParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		SenderId:  c.getWidgetIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to play podcast: %w", err)
	}

	return c.emit(ctx, &resp)
}

func (c controller) handlePausePodcast(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	resp, err := c.playbackService.PausePodcast(ctx, &playback.PausePodcastParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		SenderId:  c.getWidgetIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to pause podcast: %w", err)
	}

	return c.emit(ctx, &resp)
}

type SeekInput struct {
	Position *float64 `json:"position" validate:"required"`
}

func (c controller) handleSeek(ctx context.Context, _ *websocket.Conn, input SeekInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	resp, err := c.playbackService.Seek(ctx, &playback.SeekParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		SenderId:  c.getWidgetIdFromCtx(ctx),
		Position:  *input.Position,
	})
	if err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	return c.emit(ctx, &resp)
}

type SkipInput struct {
	Delta *float64 `json:"delta" validate:"required"`
}

func (c controller) handleSkip(ctx context.Context, _ *websocket.Conn, input SkipInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	resp, err := c.playbackService.Skip(ctx, &playback.SkipParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		SenderId:  c.getWidgetIdFromCtx(ctx),
		Delta:     *input.Delta,
	})
	if err != nil {
		return fmt.Errorf("failed to skip: %w", err)
	}

	return c.emit(ctx, &resp)
}

type SetRepeatInput struct {
	Repeat bool `json:"repeat"`
}

func (c controller) handleSetRepeat(ctx context.Context, _ *websocket.Conn, input SetRepeatInput) error {
	resp, err := c.playbackService.SetRepeat(ctx, &playback.SetRepeatParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		SenderId:  c.getWidgetIdFromCtx(ctx),
		Repeat:    input.Repeat,
	})
	if err != nil {
		return fmt.Errorf("failed to set repeat: %w", err)
	}

	return c.emit(ctx, &resp)
}

type PodcastProgressInput struct {
	Position *float64 `json:"position" validate:"required,min=0"`
	Duration float64  `json:"duration" validate:"min=0"`
}

// handlePodcastProgress mirrors the podcast element to the other widgets. The reporting widget already knows.
func (c controller) handlePodcastProgress(ctx context.Context, conn *websocket.Conn, input PodcastProgressInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	resp, err := c.playbackService.ReportPodcastProgress(ctx, &playback.ReportPodcastProgressParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		SenderId:  c.getWidgetIdFromCtx(ctx),
		Position:  *input.Position,
		Duration:  input.Duration,
	})
	if err != nil {
		return fmt.Errorf("failed to report podcast progress: %w", err)
	}

	return c.broadcastPodcastUpdated(ctx, resp.Conns, conn, &resp)
}

func (c controller) handlePodcastEnded(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	resp, err := c.playbackService.ReportPodcastEnded(ctx, &playback.ReportPodcastEndedParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		SenderId:  c.getWidgetIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to report podcast ended: %w", err)
	}

	return c.emit(ctx, &resp)
}

package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/campusradio/server/internal/service/playback"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// errDeliveryFailed marks messages that could not be written to some widget of the session.
var errDeliveryFailed = errors.New("delivery failed")

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// connWriters serializes writes per connection. gorilla/websocket allows one concurrent writer.
type connWriters struct {
	mu    sync.Mutex
	locks map[*websocket.Conn]*sync.Mutex
}

func newConnWriters() *connWriters {
	return &connWriters{locks: make(map[*websocket.Conn]*sync.Mutex)}
}

func (w *connWriters) lockFor(conn *websocket.Conn) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()

	l, ok := w.locks[conn]
	if !ok {
		l = &sync.Mutex{}
		w.locks[conn] = l
	}

	return l
}

func (w *connWriters) forget(conn *websocket.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.locks, conn)
}

func (c controller) writeToConn(ctx context.Context, conn *websocket.Conn, output *Output) error {
	l := c.writers.lockFor(conn)
	l.Lock()
	defer l.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := conn.WriteJSON(output); err != nil {
		c.logger.DebugContext(ctx, "failed to write to conn", "type", output.Type, "error", err)
		return fmt.Errorf("%w: failed to write %s: %w", errDeliveryFailed, output.Type, err)
	}

	return nil
}

func (c controller) broadcast(ctx context.Context, conns []*websocket.Conn, output *Output) error {
	return c.broadcastExcept(ctx, conns, nil, output)
}

func (c controller) broadcastExcept(ctx context.Context, conns []*websocket.Conn, except *websocket.Conn, output *Output) error {
	var errs []error
	for _, conn := range conns {
		if conn == except {
			continue
		}

		if err := c.writeToConn(ctx, conn, output); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// emit sends the messages of a transition: stream commands to the host first, then state to every widget.
// A stop command goes out even for an unchanged transition.
func (c controller) emit(ctx context.Context, resp *playback.StateResponse) error {
	var errs []error
	if resp.HostConn != nil {
		if resp.StopStream != nil {
			if err := c.writeToConn(ctx, resp.HostConn, &Output{
				Type:    "STOP_STREAM",
				Payload: resp.StopStream,
			}); err != nil {
				errs = append(errs, err)
			}
		}

		if resp.PlayStream != nil {
			if err := c.writeToConn(ctx, resp.HostConn, &Output{
				Type:    "PLAY_STREAM",
				Payload: resp.PlayStream,
			}); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if !resp.Changed {
		return errors.Join(errs...)
	}

	if resp.Audio != nil {
		if err := c.broadcast(ctx, resp.Conns, &Output{
			Type:    "AUDIO_STATE_CHANGED",
			Payload: resp.Audio,
		}); err != nil {
			errs = append(errs, err)
		}
	}

	if resp.NowPlayingChanged {
		if err := c.broadcast(ctx, resp.Conns, &Output{
			Type: "NOW_PLAYING_UPDATED",
			Payload: map[string]any{
				"state": resp.State,
			},
		}); err != nil {
			errs = append(errs, err)
		}
	}

	if resp.PodcastChanged {
		if err := c.broadcastPodcastUpdated(ctx, resp.Conns, nil, resp); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (c controller) broadcastPodcastUpdated(ctx context.Context, conns []*websocket.Conn, except *websocket.Conn, resp *playback.StateResponse) error {
	return c.broadcastExcept(ctx, conns, except, &Output{
		Type: "PODCAST_UPDATED",
		Payload: map[string]any{
			"podcast":     resp.State.Podcast,
			"now_playing": resp.State.NowPlaying,
			"bars":        resp.State.Bars,
			"replay":      resp.Replay,
		},
	})
}

func (c controller) writeWSError(ctx context.Context, conn *websocket.Conn, err error) error {
	_, code := classifyError(err)

	payload := map[string]any{
		"code":    code,
		"message": err.Error(),
	}
	if code == "INTERNAL" {
		payload["message"] = "internal error"
	}
	if errs, ok := validationErrorsOf(err); ok {
		payload["errors"] = errs
	}

	return c.writeToConn(ctx, conn, &Output{
		Type:    "ERROR",
		Payload: payload,
	})
}

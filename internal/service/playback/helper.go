package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campusradio/server/internal/repository/session"
	"github.com/gorilla/websocket"
)

func (s *service) defaultState() session.State {
	return session.State{
		NowPlaying:  string(NowPlayingIdle),
		RadioStatus: RadioStatusIdle,
		Volume:      1,
		UpdatedAt:   s.now().UnixMilli(),
	}
}

func (s *service) getState(ctx context.Context, sessionId string) (session.State, error) {
	st, err := s.sessionRepo.GetState(ctx, sessionId)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return session.State{}, ErrSessionNotFound
		}

		return session.State{}, fmt.Errorf("failed to get state: %w", err)
	}

	return st, nil
}

func (s *service) saveState(ctx context.Context, sessionId string, st *session.State) error {
	st.UpdatedAt = s.now().UnixMilli()
	if err := s.sessionRepo.SetState(ctx, &session.SetStateParams{
		SessionId: sessionId,
		State:     *st,
	}); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return ErrSessionNotFound
		}

		return fmt.Errorf("failed to set state: %w", err)
	}

	return nil
}

type sessionConns struct {
	widgets  []session.Widget
	conns    []*websocket.Conn
	hostConn *websocket.Conn
}

func (sc sessionConns) roleOf(widgetId string) (string, bool) {
	for _, w := range sc.widgets {
		if w.Id == widgetId {
			return w.Role, true
		}
	}

	return "", false
}

func (sc sessionConns) hasRole(role string) bool {
	for _, w := range sc.widgets {
		if w.Role == role {
			return true
		}
	}

	return false
}

func (s *service) getSessionConns(ctx context.Context, sessionId string) (sessionConns, error) {
	widgets, err := s.sessionRepo.GetWidgets(ctx, sessionId)
	if err != nil {
		return sessionConns{}, fmt.Errorf("failed to get widgets: %w", err)
	}

	sc := sessionConns{
		widgets: widgets,
		conns:   make([]*websocket.Conn, 0, len(widgets)),
	}
	for _, w := range widgets {
		conn, err := s.connRepo.GetConn(w.Id)
		if err != nil {
			// widget of another instance or a conn that is going away
			slog.DebugContext(ctx, "conn not found", "widget_id", w.Id, "error", err)
			continue
		}

		sc.conns = append(sc.conns, conn)
		if w.Role == RoleHost {
			sc.hostConn = conn
		}
	}

	return sc, nil
}

func (s *service) toState(sessionId string, st session.State, widgets []session.Widget) State {
	radio := RadioState{
		Status:    st.RadioStatus,
		IsPlaying: st.RadioStatus == RadioStatusPlaying,
		IsLoading: st.RadioStatus == RadioStatusLoading,
		Attempt:   st.RadioAttempt,
		StreamURL: st.StreamURL,
		Failures:  st.StreamFailures,
	}
	if st.RadioStatus == RadioStatusIdle && st.StreamFailures > 0 {
		radio.RetryAfterMs = s.resolver.RetryAfter(st.StreamFailures).Milliseconds()
	}

	ws := make([]Widget, 0, len(widgets))
	for _, w := range widgets {
		ws = append(ws, Widget{Id: w.Id, Role: w.Role})
	}

	return State{
		SessionId:  sessionId,
		NowPlaying: NowPlaying(st.NowPlaying),
		Radio:      radio,
		Volume:     effectiveVolume(st.Volume, st.IsMuted),
		Podcast: PodcastState{
			EpisodeId: st.EpisodeId,
			Slug:      st.EpisodeSlug,
			Title:     st.EpisodeTitle,
			AudioURL:  st.AudioURL,
			IsPlaying: st.PodcastPlaying,
			Position:  st.Position,
			Duration:  st.Duration,
			Repeat:    st.Repeat,
		},
		Bars:      barsOf(st),
		Widgets:   ws,
		UpdatedAt: st.UpdatedAt,
	}
}

// barsOf shows the bar of the last source that started. The podcast bar also needs a loaded episode.
func barsOf(st session.State) Bars {
	return Bars{
		Radio:   st.LastSource == string(NowPlayingRadio),
		Podcast: st.LastSource == string(NowPlayingPodcast) && st.EpisodeId != "",
	}
}

func effectiveVolume(volume float64, isMuted bool) VolumeState {
	return VolumeState{
		Volume:  volume,
		IsMuted: isMuted || volume == 0,
	}
}

func radioActive(st *session.State) bool {
	return st.RadioStatus == RadioStatusLoading || st.RadioStatus == RadioStatusPlaying
}

// stopRadio moves the radio to idle and drops the stream source. It reports whether the radio was active.
// The failsafe is disarmed by transitionLocked once the idle state is saved.
func stopRadio(st *session.State) bool {
	wasActive := radioActive(st)

	st.RadioStatus = RadioStatusIdle
	st.StreamURL = ""
	st.LoadingSince = 0
	if st.NowPlaying == string(NowPlayingRadio) {
		st.NowPlaying = string(NowPlayingIdle)
	}

	return wasActive
}

// failRadio stops the radio and counts a stream failure.
func (s *service) failRadio(st *session.State) *AudioState {
	stopRadio(st)
	st.StreamFailures++

	return &AudioState{
		IsPlaying:    false,
		IsLoading:    false,
		RetryAfterMs: s.resolver.RetryAfter(st.StreamFailures).Milliseconds(),
	}
}

// stopPodcast pauses the podcast. It reports whether the podcast was playing.
func stopPodcast(st *session.State) bool {
	wasPlaying := st.PodcastPlaying

	st.PodcastPlaying = false
	if st.NowPlaying == string(NowPlayingPodcast) {
		st.NowPlaying = string(NowPlayingIdle)
	}

	return wasPlaying
}

func clampPosition(position, duration float64) float64 {
	if position < 0 {
		return 0
	}
	if duration > 0 && position > duration {
		return duration
	}

	return position
}

type transitionFunc func(st *session.State, sc *sessionConns, senderRole string, resp *StateResponse) error

// transition applies fn to the session state under the session lock and persists it when fn reports a change.
// senderId may be empty for transitions that no widget triggered.
func (s *service) transition(ctx context.Context, sessionId, senderId string, fn transitionFunc) (StateResponse, error) {
	unlock := s.locks.lock(sessionId)
	defer unlock()

	return s.transitionLocked(ctx, sessionId, senderId, fn)
}

func (s *service) transitionLocked(ctx context.Context, sessionId, senderId string, fn transitionFunc) (StateResponse, error) {
	st, err := s.getState(ctx, sessionId)
	if err != nil {
		return StateResponse{}, err
	}

	sc, err := s.getSessionConns(ctx, sessionId)
	if err != nil {
		return StateResponse{}, err
	}

	var senderRole string
	if senderId != "" {
		role, ok := sc.roleOf(senderId)
		if !ok {
			return StateResponse{}, ErrWidgetNotFound
		}
		senderRole = role
	}

	var resp StateResponse
	if err := fn(&st, &sc, senderRole, &resp); err != nil {
		return StateResponse{}, err
	}

	if resp.Changed {
		if err := s.saveState(ctx, sessionId, &st); err != nil {
			return StateResponse{}, err
		}

		// a pending timer exactly while the saved state is loading
		if st.RadioStatus != RadioStatusLoading {
			s.failsafe.stop(sessionId)
		} else if resp.PlayStream != nil {
			s.armFailsafe(sessionId, st.RadioAttempt)
		}
	}

	resp.State = s.toState(sessionId, st, sc.widgets)
	resp.Conns = sc.conns
	resp.HostConn = sc.hostConn

	return resp, nil
}

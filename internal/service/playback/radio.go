package playback

import (
	"context"
	"log/slog"

	"github.com/campusradio/server/internal/repository/session"
	"github.com/campusradio/server/pkg/ctxlogger"
)

type PlayRadioParams struct {
	SessionId string
	SenderId  string
}

// PlayRadio starts a new play attempt: the podcast is preempted, the host receives a fresh stream URL
// and the loading failsafe is armed. It is a no-op while the radio is loading or playing.
func (s *service) PlayRadio(ctx context.Context, params *PlayRadioParams) (StateResponse, error) {
	streamConfig := s.stationService.GetStreamConfig(ctx)

	return s.transition(ctx, params.SessionId, params.SenderId, func(st *session.State, sc *sessionConns, _ string, resp *StateResponse) error {
		if radioActive(st) {
			return nil
		}

		if sc.hostConn == nil {
			return ErrHostNotConnected
		}

		attempt := st.RadioAttempt + 1
		streamURL, err := s.resolver.Resolve(streamConfig.StreamURL, attempt)
		if err != nil {
			return err
		}

		resp.PodcastChanged = stopPodcast(st)

		st.RadioAttempt = attempt
		st.RadioStatus = RadioStatusLoading
		st.LoadingSince = s.now().UnixMilli()
		st.StreamURL = streamURL
		st.NowPlaying = string(NowPlayingRadio)
		st.LastSource = string(NowPlayingRadio)

		resp.Changed = true
		resp.NowPlayingChanged = true
		resp.Audio = &AudioState{IsLoading: true}
		resp.PlayStream = &StreamCommand{
			StreamURL: streamURL,
			Attempt:   attempt,
		}

		return nil
	})
}

type PauseRadioParams struct {
	SessionId string
	SenderId  string
}

// PauseRadio stops the radio and clears the stream source so that the host drops the connection.
func (s *service) PauseRadio(ctx context.Context, params *PauseRadioParams) (StateResponse, error) {
	return s.transition(ctx, params.SessionId, params.SenderId, func(st *session.State, _ *sessionConns, _ string, resp *StateResponse) error {
		if !stopRadio(st) {
			return nil
		}

		resp.Changed = true
		resp.NowPlayingChanged = true
		resp.StopStream = &StreamCommand{Attempt: st.RadioAttempt}
		resp.Audio = &AudioState{}

		return nil
	})
}

type ReportRadioStartedParams struct {
	SessionId string
	SenderId  string
	Attempt   int
}

// ReportRadioStarted confirms a play attempt. A host that started an attempt which was paused or superseded
// meanwhile is told to stop it, the session state is left as is.
func (s *service) ReportRadioStarted(ctx context.Context, params *ReportRadioStartedParams) (StateResponse, error) {
	return s.transition(ctx, params.SessionId, params.SenderId, func(st *session.State, _ *sessionConns, senderRole string, resp *StateResponse) error {
		if senderRole != RoleHost {
			return ErrPermissionDenied
		}

		if st.RadioStatus == RadioStatusPlaying && st.RadioAttempt == params.Attempt {
			return nil
		}

		if st.RadioStatus != RadioStatusLoading || st.RadioAttempt != params.Attempt {
			slog.InfoContext(ctx, "stopping superseded radio attempt", "attempt", params.Attempt, "current_attempt", st.RadioAttempt)
			resp.StopStream = &StreamCommand{Attempt: params.Attempt}
			return nil
		}

		st.RadioStatus = RadioStatusPlaying
		st.LoadingSince = 0
		st.StreamFailures = 0

		resp.Changed = true
		resp.NowPlayingChanged = true
		resp.Audio = &AudioState{IsPlaying: true}

		return nil
	})
}

type ReportRadioFailedParams struct {
	SessionId string
	SenderId  string
	Attempt   int
	Reason    string
}

// ReportRadioFailed records a rejected or interrupted play attempt. Retrying is left to the listener,
// who receives the retry hint.
func (s *service) ReportRadioFailed(ctx context.Context, params *ReportRadioFailedParams) (StateResponse, error) {
	return s.transition(ctx, params.SessionId, params.SenderId, func(st *session.State, _ *sessionConns, senderRole string, resp *StateResponse) error {
		if senderRole != RoleHost {
			return ErrPermissionDenied
		}

		if !radioActive(st) || st.RadioAttempt != params.Attempt {
			slog.DebugContext(ctx, "stale radio failed report", "attempt", params.Attempt, "current_attempt", st.RadioAttempt)
			return nil
		}

		slog.InfoContext(ctx, "radio playback failed", "attempt", params.Attempt, "reason", params.Reason)

		resp.Audio = s.failRadio(st)
		resp.Changed = true
		resp.NowPlayingChanged = true

		return nil
	})
}

func (s *service) armFailsafe(sessionId string, attempt int) {
	s.failsafe.start(sessionId, attempt, s.loadingTimeout, func() {
		s.expireLoading(sessionId, attempt)
	})
}

// expireLoading fails an attempt the host never confirmed and tells the host to give up on it.
func (s *service) expireLoading(sessionId string, attempt int) {
	s.failsafe.done(sessionId, attempt)

	ctx := ctxlogger.AppendCtx(context.Background(), slog.String("session_id", sessionId))

	resp, err := s.transition(ctx, sessionId, "", func(st *session.State, _ *sessionConns, _ string, resp *StateResponse) error {
		if st.RadioStatus != RadioStatusLoading || st.RadioAttempt != attempt {
			return nil
		}

		slog.InfoContext(ctx, "radio loading timed out", "attempt", attempt, "timeout", s.loadingTimeout)

		resp.Audio = s.failRadio(st)
		resp.Changed = true
		resp.NowPlayingChanged = true
		resp.StopStream = &StreamCommand{Attempt: attempt}

		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to expire radio loading", "error", err)
		return
	}

	if !resp.Changed {
		return
	}

	s.handlerMu.RLock()
	h := s.onLoadingExpired
	s.handlerMu.RUnlock()

	if h != nil {
		h(ctx, resp)
	}
}

package playback

import (
	"context"

	"github.com/campusradio/server/internal/repository/session"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type SelectEpisodeParams struct {
	SessionId string
	SenderId  string
	Slug      string
}

// SelectEpisode loads an episode into the shared podcast slot, paused at the start.
func (s *service) SelectEpisode(ctx context.Context, params *SelectEpisodeParams) (StateResponse, error) {
	episode, err := s.stationService.GetPodcast(ctx, params.Slug)
	if err != nil {
		return StateResponse{}, err
	}

	return s.transition(ctx, params.SessionId, params.SenderId, func(st *session.State, _ *sessionConns, _ string, resp *StateResponse) error {
		resp.NowPlayingChanged = stopPodcast(st)

		st.EpisodeId = episode.Id
		st.EpisodeSlug = episode.Slug
		st.EpisodeTitle = episode.Title
		st.AudioURL = episode.AudioURL
		st.Position = 0
		st.Duration = float64(episode.DurationSec)

		resp.Changed = true
		resp.PodcastChanged = true

		return nil
	})
}

type PlayPodcastParams struct {
	SessionId string
	SenderId  string
}

// PlayPodcast starts the loaded episode and preempts the radio in the same transition.
func (s *service) PlayPodcast(ctx context.Context, params *PlayPodcastParams) (StateResponse, error) {
	return s.transition(ctx, params.SessionId, params.SenderId, func(st *session.State, sc *sessionConns, _ string, resp *StateResponse) error {
		if st.EpisodeId == "" {
			return ErrEpisodeNotLoaded
		}

		if !sc.hasRole(RolePodcast) {
			return ErrPodcastWidgetNotConnected
		}

		if st.PodcastPlaying {
			return nil
		}

		if stopRadio(st) {
			resp.StopStream = &StreamCommand{Attempt: st.RadioAttempt}
			resp.Audio = &AudioState{}
		}

		st.PodcastPlaying = true
		st.NowPlaying = string(NowPlayingPodcast)
		st.LastSource = string(NowPlayingPodcast)

		resp.Changed = true
		resp.NowPlayingChanged = true
		resp.PodcastChanged = true

		return nil
	})
}

type PausePodcastParams struct {
	SessionId string
	SenderId  string
}

func (s *service) PausePodcast(ctx context.Context, params *PausePodcastParams) (StateResponse, error) {
	return s.transition(ctx, params.SessionId, params.SenderId, func(st *session.State, _ *sessionConns, _ string, resp *StateResponse) error {
		if !stopPodcast(st) {
			return nil
		}

		resp.Changed = true
		resp.NowPlayingChanged = true
		resp.PodcastChanged = true

		return nil
	})
}

type SeekParams struct {
	SessionId string
	SenderId  string
	Position  float64
}

// Seek moves the playhead, clamped to the episode bounds.
func (s *service) Seek(ctx context.Context, params *SeekParams) (StateResponse, error) {
	return s.transition(ctx, params.SessionId, params.SenderId, func(st *session.State, _ *sessionConns, _ string, resp *StateResponse) error {
		if st.EpisodeId == "" {
			return ErrEpisodeNotLoaded
		}

		st.Position = clampPosition(params.Position, st.Duration)
		resp.Changed = true
		resp.PodcastChanged = true

		return nil
	})
}

type SkipParams struct {
	SessionId string
	SenderId  string
	// Delta in seconds, usually plus or minus 10.
	Delta float64
}

func (s *service) Skip(ctx context.Context, params *SkipParams) (StateResponse, error) {
	if err := validation.ValidateStruct(params,
		validation.Field(&params.Delta, SkipDeltaRule...),
	); err != nil {
		return StateResponse{}, err
	}

	return s.transition(ctx, params.SessionId, params.SenderId, func(st *session.State, _ *sessionConns, _ string, resp *StateResponse) error {
		if st.EpisodeId == "" {
			return ErrEpisodeNotLoaded
		}

		st.Position = clampPosition(st.Position+params.Delta, st.Duration)
		resp.Changed = true
		resp.PodcastChanged = true

		return nil
	})
}

type SetRepeatParams struct {
	SessionId string
	SenderId  string
	Repeat    bool
}

func (s *service) SetRepeat(ctx context.Context, params *SetRepeatParams) (StateResponse, error) {
	return s.transition(ctx, params.SessionId, params.SenderId, func(st *session.State, _ *sessionConns, _ string, resp *StateResponse) error {
		if st.Repeat == params.Repeat {
			return nil
		}

		st.Repeat = params.Repeat
		resp.Changed = true
		resp.PodcastChanged = true

		return nil
	})
}

type ReportPodcastProgressParams struct {
	SessionId string
	SenderId  string
	Position  float64
	Duration  float64
}

// ReportPodcastProgress mirrors the position and duration of the podcast audio element.
func (s *service) ReportPodcastProgress(ctx context.Context, params *ReportPodcastProgressParams) (StateResponse, error) {
	if err := validation.ValidateStruct(params,
		validation.Field(&params.Position, PositionRule...),
		validation.Field(&params.Duration, PositionRule...),
	); err != nil {
		return StateResponse{}, err
	}

	return s.transition(ctx, params.SessionId, params.SenderId, func(st *session.State, _ *sessionConns, senderRole string, resp *StateResponse) error {
		if senderRole != RolePodcast {
			return ErrPermissionDenied
		}

		if st.EpisodeId == "" {
			return ErrEpisodeNotLoaded
		}

		if params.Duration > 0 {
			st.Duration = params.Duration
		}
		st.Position = clampPosition(params.Position, st.Duration)

		resp.Changed = true
		resp.PodcastChanged = true

		return nil
	})
}

type ReportPodcastEndedParams struct {
	SessionId string
	SenderId  string
}

// ReportPodcastEnded restarts the episode when repeat is on and stops it otherwise.
func (s *service) ReportPodcastEnded(ctx context.Context, params *ReportPodcastEndedParams) (StateResponse, error) {
	return s.transition(ctx, params.SessionId, params.SenderId, func(st *session.State, _ *sessionConns, senderRole string, resp *StateResponse) error {
		if senderRole != RolePodcast {
			return ErrPermissionDenied
		}

		if !st.PodcastPlaying {
			return nil
		}

		st.Position = 0
		if st.Repeat {
			resp.Replay = true
		} else {
			stopPodcast(st)
			resp.NowPlayingChanged = true
		}

		resp.Changed = true
		resp.PodcastChanged = true

		return nil
	})
}

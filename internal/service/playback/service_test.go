package playback

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/campusradio/server/internal/repository/connection/inmemory"
	"github.com/campusradio/server/internal/repository/session"
	sessionRedis "github.com/campusradio/server/internal/repository/session/redis"
	"github.com/campusradio/server/internal/service/station"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStation struct {
	streamURL string
	podcasts  map[string]station.Podcast
}

func (f *fakeStation) GetPodcast(_ context.Context, slug string) (station.Podcast, error) {
	p, ok := f.podcasts[slug]
	if !ok {
		return station.Podcast{}, station.ErrPodcastNotFound
	}

	return p, nil
}

func (f *fakeStation) GetStreamConfig(context.Context) station.StreamConfig {
	return station.StreamConfig{OnAir: true, StreamURL: f.streamURL}
}

// flakySessionRepo fails SetState on demand.
type flakySessionRepo struct {
	iSessionRepo
	failSetState atomic.Bool
}

func (r *flakySessionRepo) SetState(ctx context.Context, params *session.SetStateParams) error {
	if r.failSetState.Load() {
		return errors.New("redis unavailable")
	}

	return r.iSessionRepo.SetState(ctx, params)
}

type fixture struct {
	service     *service
	redis       *miniredis.Miniredis
	station     *fakeStation
	sessionRepo *flakySessionRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithTimeout(t, time.Minute)
}

func newFixtureWithTimeout(t *testing.T, loadingTimeout time.Duration) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	st := &fakeStation{
		streamURL: "https://stream.example.edu/live",
		podcasts: map[string]station.Podcast{
			"campus-news-1": {
				Id:          "ep-1",
				Slug:        "campus-news-1",
				Title:       "Campus News 1",
				AudioURL:    "https://cdn.example.edu/ep1.mp3",
				DurationSec: 600,
			},
		},
	}

	sessionRepo := &flakySessionRepo{iSessionRepo: sessionRedis.NewRepo(rc, time.Hour)}
	s := NewService(sessionRepo, inmemory.NewRepo(), st, &Config{
		LoadingTimeout:   loadingTimeout,
		DefaultStreamURL: "https://stream.example.edu/default",
	})
	t.Cleanup(s.Close)

	return &fixture{service: s, redis: mr, station: st, sessionRepo: sessionRepo}
}

type testWidget struct {
	sessionId string
	id        string
	conn      *websocket.Conn
}

func (f *fixture) connect(t *testing.T, sessionId, role string) testWidget {
	t.Helper()

	conn := &websocket.Conn{}
	resp, err := f.service.ConnectWidget(context.Background(), &ConnectWidgetParams{
		SessionId: sessionId,
		Role:      role,
		Conn:      conn,
	})
	require.NoError(t, err)

	return testWidget{sessionId: resp.SessionId, id: resp.Widget.Id, conn: conn}
}

// newSession connects a host, a remote, a bar and a podcast widget.
func (f *fixture) newSession(t *testing.T) (host, remote, bar, podcast testWidget) {
	host = f.connect(t, "", RoleHost)
	remote = f.connect(t, host.sessionId, RoleRemote)
	bar = f.connect(t, host.sessionId, RoleBar)
	podcast = f.connect(t, host.sessionId, RolePodcast)
	return
}

func assertExclusive(t *testing.T, st State) {
	t.Helper()

	radioActive := st.Radio.IsPlaying || st.Radio.IsLoading
	assert.False(t, radioActive && st.Podcast.IsPlaying, "radio and podcast active together")
	assert.Equal(t, st.NowPlaying == NowPlayingRadio, radioActive)
	assert.Equal(t, st.NowPlaying == NowPlayingPodcast, st.Podcast.IsPlaying)
}

func (f *fixture) startRadio(t *testing.T, host, sender testWidget) StateResponse {
	t.Helper()
	ctx := context.Background()

	resp, err := f.service.PlayRadio(ctx, &PlayRadioParams{SessionId: sender.sessionId, SenderId: sender.id})
	require.NoError(t, err)
	require.NotNil(t, resp.PlayStream)

	resp, err = f.service.ReportRadioStarted(ctx, &ReportRadioStartedParams{
		SessionId: host.sessionId,
		SenderId:  host.id,
		Attempt:   resp.PlayStream.Attempt,
	})
	require.NoError(t, err)

	return resp
}

func TestConnectWidget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	host := f.connect(t, "", RoleHost)
	assert.NotEmpty(t, host.sessionId)

	resp, err := f.service.ConnectWidget(ctx, &ConnectWidgetParams{SessionId: host.sessionId, Role: RoleRemote, Conn: &websocket.Conn{}})
	require.NoError(t, err)
	assert.Len(t, resp.Conns, 1, "conns must contain the other widgets only")
	assert.Len(t, resp.State.Widgets, 2)
	assert.Equal(t, NowPlayingIdle, resp.State.NowPlaying)
	assert.Equal(t, 1.0, resp.State.Volume.Volume)

	_, err = f.service.ConnectWidget(ctx, &ConnectWidgetParams{SessionId: host.sessionId, Role: RoleHost, Conn: &websocket.Conn{}})
	require.ErrorIs(t, err, ErrHostAlreadyConnected)
	require.ErrorIs(t, f.service.CheckWidgetSlot(ctx, &CheckWidgetSlotParams{SessionId: host.sessionId, Role: RoleHost}), ErrHostAlreadyConnected)

	f.connect(t, host.sessionId, RolePodcast)
	_, err = f.service.ConnectWidget(ctx, &ConnectWidgetParams{SessionId: host.sessionId, Role: RolePodcast, Conn: &websocket.Conn{}})
	require.ErrorIs(t, err, ErrPodcastWidgetAlreadyConnected)

	_, err = f.service.ConnectWidget(ctx, &ConnectWidgetParams{SessionId: host.sessionId, Role: "speaker", Conn: &websocket.Conn{}})
	require.Error(t, err)
	_, err = f.service.ConnectWidget(ctx, &ConnectWidgetParams{SessionId: "bad id!", Role: RoleBar, Conn: &websocket.Conn{}})
	require.Error(t, err)

	// joining an unknown id creates the session
	named := f.connect(t, "dorm-radio", RoleBar)
	assert.Equal(t, "dorm-radio", named.sessionId)
	assert.NoError(t, f.service.CheckWidgetSlot(ctx, &CheckWidgetSlotParams{SessionId: "unknown", Role: RoleHost}))
}

func TestRemotePlayIsConfirmedByHost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host, remote, _, _ := f.newSession(t)

	resp, err := f.service.PlayRadio(ctx, &PlayRadioParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.NoError(t, err)
	require.NotNil(t, resp.PlayStream)
	assert.Equal(t, host.conn, resp.HostConn)
	assert.Len(t, resp.Conns, 4)
	assert.Equal(t, 1, resp.PlayStream.Attempt)
	assert.True(t, strings.HasPrefix(resp.PlayStream.StreamURL, "https://stream.example.edu/live?t="))
	assert.True(t, strings.HasSuffix(resp.PlayStream.StreamURL, "-1"))
	assert.True(t, resp.State.Radio.IsLoading)
	assert.Equal(t, NowPlayingRadio, resp.State.NowPlaying)
	assertExclusive(t, resp.State)

	// idempotent while loading
	again, err := f.service.PlayRadio(ctx, &PlayRadioParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Nil(t, again.PlayStream)

	_, err = f.service.ReportRadioStarted(ctx, &ReportRadioStartedParams{SessionId: remote.sessionId, SenderId: remote.id, Attempt: 1})
	require.ErrorIs(t, err, ErrPermissionDenied)

	started, err := f.service.ReportRadioStarted(ctx, &ReportRadioStartedParams{SessionId: host.sessionId, SenderId: host.id, Attempt: 1})
	require.NoError(t, err)
	require.NotNil(t, started.Audio)
	assert.True(t, started.Audio.IsPlaying)
	assert.True(t, started.State.Radio.IsPlaying)
	assert.False(t, started.State.Radio.IsLoading)

	state, err := f.service.GetState(ctx, remote.sessionId)
	require.NoError(t, err)
	assert.True(t, state.Radio.IsPlaying)
	assert.False(t, state.Radio.IsLoading)
	assertExclusive(t, state)
}

func TestPlayRadioRequiresHost(t *testing.T) {
	f := newFixture(t)
	remote := f.connect(t, "", RoleRemote)

	_, err := f.service.PlayRadio(context.Background(), &PlayRadioParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.ErrorIs(t, err, ErrHostNotConnected)
}

func TestPlayRadioFallsBackToDefaultStream(t *testing.T) {
	f := newFixture(t)
	f.station.streamURL = ""
	host := f.connect(t, "", RoleHost)

	resp, err := f.service.PlayRadio(context.Background(), &PlayRadioParams{SessionId: host.sessionId, SenderId: host.id})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.PlayStream.StreamURL, "https://stream.example.edu/default?t="))
}

func TestPauseClearsStreamURL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host, remote, _, _ := f.newSession(t)
	f.startRadio(t, host, remote)

	resp, err := f.service.PauseRadio(ctx, &PauseRadioParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.NoError(t, err)
	require.NotNil(t, resp.StopStream)
	assert.Equal(t, 1, resp.StopStream.Attempt)
	assert.Equal(t, host.conn, resp.HostConn)
	assert.Empty(t, resp.State.Radio.StreamURL)
	assert.Equal(t, NowPlayingIdle, resp.State.NowPlaying)
	assert.False(t, resp.Audio.IsPlaying)

	again, err := f.service.PauseRadio(ctx, &PauseRadioParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.NoError(t, err)
	assert.False(t, again.Changed)
}

func TestPodcastPreemptsRadio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host, remote, _, podcast := f.newSession(t)
	f.startRadio(t, host, remote)

	_, err := f.service.SelectEpisode(ctx, &SelectEpisodeParams{SessionId: podcast.sessionId, SenderId: podcast.id, Slug: "campus-news-1"})
	require.NoError(t, err)

	resp, err := f.service.PlayPodcast(ctx, &PlayPodcastParams{SessionId: podcast.sessionId, SenderId: podcast.id})
	require.NoError(t, err)
	require.NotNil(t, resp.StopStream, "host must be told to stop in the same transition")
	assert.Equal(t, host.conn, resp.HostConn)
	assert.False(t, resp.State.Radio.IsPlaying)
	assert.Empty(t, resp.State.Radio.StreamURL)
	assert.True(t, resp.State.Podcast.IsPlaying)
	assert.Equal(t, NowPlayingPodcast, resp.State.NowPlaying)
	assertExclusive(t, resp.State)
}

func TestRadioPreemptsPodcast(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host, remote, _, podcast := f.newSession(t)

	_, err := f.service.SelectEpisode(ctx, &SelectEpisodeParams{SessionId: podcast.sessionId, SenderId: podcast.id, Slug: "campus-news-1"})
	require.NoError(t, err)
	_, err = f.service.PlayPodcast(ctx, &PlayPodcastParams{SessionId: podcast.sessionId, SenderId: podcast.id})
	require.NoError(t, err)

	resp, err := f.service.PlayRadio(ctx, &PlayRadioParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.NoError(t, err)
	assert.True(t, resp.PodcastChanged)
	assert.False(t, resp.State.Podcast.IsPlaying)
	assertExclusive(t, resp.State)

	resp, err = f.service.ReportRadioStarted(ctx, &ReportRadioStartedParams{
		SessionId: host.sessionId,
		SenderId:  host.id,
		Attempt:   resp.PlayStream.Attempt,
	})
	require.NoError(t, err)
	assert.True(t, resp.State.Radio.IsPlaying)
	assertExclusive(t, resp.State)
}

func TestExactlyOneBarVisible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host, remote, _, podcast := f.newSession(t)

	state, err := f.service.GetState(ctx, host.sessionId)
	require.NoError(t, err)
	assert.Equal(t, Bars{}, state.Bars, "nothing played yet")

	_, err = f.service.SelectEpisode(ctx, &SelectEpisodeParams{SessionId: podcast.sessionId, SenderId: podcast.id, Slug: "campus-news-1"})
	require.NoError(t, err)
	resp, err := f.service.PlayPodcast(ctx, &PlayPodcastParams{SessionId: podcast.sessionId, SenderId: podcast.id})
	require.NoError(t, err)
	assert.Equal(t, Bars{Podcast: true}, resp.State.Bars)

	// explicit pause keeps the podcast bar
	resp, err = f.service.PausePodcast(ctx, &PausePodcastParams{SessionId: podcast.sessionId, SenderId: podcast.id})
	require.NoError(t, err)
	assert.Equal(t, Bars{Podcast: true}, resp.State.Bars)

	_, err = f.service.PlayPodcast(ctx, &PlayPodcastParams{SessionId: podcast.sessionId, SenderId: podcast.id})
	require.NoError(t, err)

	resp = f.startRadio(t, host, remote)
	assert.Equal(t, Bars{Radio: true}, resp.State.Bars)

	// a paused radio keeps its bar
	resp, err = f.service.PauseRadio(ctx, &PauseRadioParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.NoError(t, err)
	assert.Equal(t, Bars{Radio: true}, resp.State.Bars)
}

func TestSetVolumeZeroMutesEveryWidget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, bar, _ := f.newSession(t)

	resp, err := f.service.SetVolume(ctx, &SetVolumeParams{SessionId: bar.sessionId, SenderId: bar.id, Volume: 0})
	require.NoError(t, err)
	assert.True(t, resp.Volume.IsMuted)
	assert.Len(t, resp.Conns, 4)

	resp, err = f.service.SetVolume(ctx, &SetVolumeParams{SessionId: bar.sessionId, SenderId: bar.id, Volume: 0.4})
	require.NoError(t, err)
	assert.False(t, resp.Volume.IsMuted)

	resp, err = f.service.SetVolume(ctx, &SetVolumeParams{SessionId: bar.sessionId, SenderId: bar.id, Volume: 0.4, IsMuted: true})
	require.NoError(t, err)
	assert.True(t, resp.Volume.IsMuted)
	assert.Equal(t, 0.4, resp.Volume.Volume)

	_, err = f.service.SetVolume(ctx, &SetVolumeParams{SessionId: bar.sessionId, SenderId: bar.id, Volume: 1.5})
	require.Error(t, err)
}

func TestRadioFailedReportsNotPlaying(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host, remote, _, _ := f.newSession(t)

	play, err := f.service.PlayRadio(ctx, &PlayRadioParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.NoError(t, err)

	stale, err := f.service.ReportRadioFailed(ctx, &ReportRadioFailedParams{SessionId: host.sessionId, SenderId: host.id, Attempt: play.PlayStream.Attempt + 1})
	require.NoError(t, err)
	assert.False(t, stale.Changed)

	resp, err := f.service.ReportRadioFailed(ctx, &ReportRadioFailedParams{
		SessionId: host.sessionId,
		SenderId:  host.id,
		Attempt:   play.PlayStream.Attempt,
		Reason:    "NotAllowedError",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Audio)
	assert.False(t, resp.Audio.IsPlaying)
	assert.Equal(t, int64(1000), resp.Audio.RetryAfterMs)
	assert.False(t, resp.State.Radio.IsLoading)
	assert.Equal(t, NowPlayingIdle, resp.State.NowPlaying)
	assert.Empty(t, resp.State.Radio.StreamURL)

	// a late confirmation of the failed attempt is ignored
	late, err := f.service.ReportRadioStarted(ctx, &ReportRadioStartedParams{SessionId: host.sessionId, SenderId: host.id, Attempt: play.PlayStream.Attempt})
	require.NoError(t, err)
	assert.False(t, late.Changed)

	play, err = f.service.PlayRadio(ctx, &PlayRadioParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.NoError(t, err)
	assert.Equal(t, 2, play.PlayStream.Attempt)

	resp, err = f.service.ReportRadioFailed(ctx, &ReportRadioFailedParams{SessionId: host.sessionId, SenderId: host.id, Attempt: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), resp.Audio.RetryAfterMs)
	assert.Equal(t, 2, resp.State.Radio.Failures)
}

func TestLoadingFailsafe(t *testing.T) {
	f := newFixtureWithTimeout(t, 50*time.Millisecond)
	ctx := context.Background()
	_, remote, _, _ := f.newSession(t)

	expired := make(chan StateResponse, 1)
	f.service.SetLoadingExpiredHandler(func(_ context.Context, resp StateResponse) {
		expired <- resp
	})

	_, err := f.service.PlayRadio(ctx, &PlayRadioParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.NoError(t, err)

	select {
	case resp := <-expired:
		require.NotNil(t, resp.Audio)
		assert.False(t, resp.Audio.IsPlaying)
		assert.False(t, resp.Audio.IsLoading)
		require.NotNil(t, resp.StopStream)
		assert.Equal(t, 1, resp.StopStream.Attempt)
		assert.Equal(t, NowPlayingIdle, resp.State.NowPlaying)
		assert.Equal(t, 1, resp.State.Radio.Failures)
	case <-time.After(2 * time.Second):
		t.Fatal("loading failsafe did not fire")
	}

	assert.False(t, f.service.failsafe.pending(remote.sessionId))
}

func TestConfirmedPlayDisarmsFailsafe(t *testing.T) {
	f := newFixtureWithTimeout(t, 50*time.Millisecond)
	host, remote, _, _ := f.newSession(t)

	fired := make(chan struct{}, 1)
	f.service.SetLoadingExpiredHandler(func(context.Context, StateResponse) {
		fired <- struct{}{}
	})

	f.startRadio(t, host, remote)
	assert.False(t, f.service.failsafe.pending(host.sessionId))

	select {
	case <-fired:
		t.Fatal("failsafe fired after confirmation")
	case <-time.After(150 * time.Millisecond):
	}

	state, err := f.service.GetState(context.Background(), host.sessionId)
	require.NoError(t, err)
	assert.True(t, state.Radio.IsPlaying)
}

func TestLateRadioStartedIsStopped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host, remote, _, _ := f.newSession(t)

	play, err := f.service.PlayRadio(ctx, &PlayRadioParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.NoError(t, err)
	_, err = f.service.PauseRadio(ctx, &PauseRadioParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.NoError(t, err)

	resp, err := f.service.ReportRadioStarted(ctx, &ReportRadioStartedParams{
		SessionId: host.sessionId,
		SenderId:  host.id,
		Attempt:   play.PlayStream.Attempt,
	})
	require.NoError(t, err)
	assert.False(t, resp.Changed)
	require.NotNil(t, resp.StopStream, "host playing a paused attempt must be stopped")
	assert.Equal(t, play.PlayStream.Attempt, resp.StopStream.Attempt)
	assert.Equal(t, host.conn, resp.HostConn)
	assert.Equal(t, NowPlayingIdle, resp.State.NowPlaying)
	assert.False(t, resp.State.Radio.IsPlaying)
}

func TestSupersededRadioStartedKeepsNewAttempt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host, remote, _, _ := f.newSession(t)

	first, err := f.service.PlayRadio(ctx, &PlayRadioParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.NoError(t, err)
	_, err = f.service.PauseRadio(ctx, &PauseRadioParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.NoError(t, err)
	second, err := f.service.PlayRadio(ctx, &PlayRadioParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.NoError(t, err)
	require.Equal(t, first.PlayStream.Attempt+1, second.PlayStream.Attempt)

	resp, err := f.service.ReportRadioStarted(ctx, &ReportRadioStartedParams{SessionId: host.sessionId, SenderId: host.id, Attempt: first.PlayStream.Attempt})
	require.NoError(t, err)
	require.NotNil(t, resp.StopStream)
	assert.Equal(t, first.PlayStream.Attempt, resp.StopStream.Attempt)
	assert.True(t, resp.State.Radio.IsLoading)
	assert.True(t, f.service.failsafe.pending(host.sessionId))

	resp, err = f.service.ReportRadioStarted(ctx, &ReportRadioStartedParams{SessionId: host.sessionId, SenderId: host.id, Attempt: second.PlayStream.Attempt})
	require.NoError(t, err)
	assert.Nil(t, resp.StopStream)
	assert.True(t, resp.State.Radio.IsPlaying)

	again, err := f.service.ReportRadioStarted(ctx, &ReportRadioStartedParams{SessionId: host.sessionId, SenderId: host.id, Attempt: second.PlayStream.Attempt})
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Nil(t, again.StopStream, "a repeated confirmation of the playing attempt is not a stop")
}

func TestFailedSaveKeepsFailsafeArmed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, remote, _, _ := f.newSession(t)

	_, err := f.service.PlayRadio(ctx, &PlayRadioParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.NoError(t, err)
	require.True(t, f.service.failsafe.pending(remote.sessionId))

	f.sessionRepo.failSetState.Store(true)
	_, err = f.service.PauseRadio(ctx, &PauseRadioParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.Error(t, err)
	assert.True(t, f.service.failsafe.pending(remote.sessionId), "loading state is still stored and needs its timer")

	f.sessionRepo.failSetState.Store(false)
	_, err = f.service.PauseRadio(ctx, &PauseRadioParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.NoError(t, err)
	assert.False(t, f.service.failsafe.pending(remote.sessionId))
}

func TestPodcastControls(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, remote, _, podcast := f.newSession(t)

	_, err := f.service.PlayPodcast(ctx, &PlayPodcastParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.ErrorIs(t, err, ErrEpisodeNotLoaded)

	_, err = f.service.SelectEpisode(ctx, &SelectEpisodeParams{SessionId: remote.sessionId, SenderId: remote.id, Slug: "missing"})
	require.ErrorIs(t, err, station.ErrPodcastNotFound)

	resp, err := f.service.SelectEpisode(ctx, &SelectEpisodeParams{SessionId: remote.sessionId, SenderId: remote.id, Slug: "campus-news-1"})
	require.NoError(t, err)
	assert.Equal(t, "Campus News 1", resp.State.Podcast.Title)
	assert.Equal(t, 600.0, resp.State.Podcast.Duration)
	assert.False(t, resp.State.Podcast.IsPlaying)

	resp, err = f.service.Seek(ctx, &SeekParams{SessionId: remote.sessionId, SenderId: remote.id, Position: 900})
	require.NoError(t, err)
	assert.Equal(t, 600.0, resp.State.Podcast.Position)

	resp, err = f.service.Skip(ctx, &SkipParams{SessionId: remote.sessionId, SenderId: remote.id, Delta: -10})
	require.NoError(t, err)
	assert.Equal(t, 590.0, resp.State.Podcast.Position)

	resp, err = f.service.Seek(ctx, &SeekParams{SessionId: remote.sessionId, SenderId: remote.id, Position: -5})
	require.NoError(t, err)
	assert.Equal(t, 0.0, resp.State.Podcast.Position)

	_, err = f.service.Skip(ctx, &SkipParams{SessionId: remote.sessionId, SenderId: remote.id, Delta: 4000})
	require.Error(t, err)

	_, err = f.service.ReportPodcastProgress(ctx, &ReportPodcastProgressParams{SessionId: remote.sessionId, SenderId: remote.id, Position: 3})
	require.ErrorIs(t, err, ErrPermissionDenied)

	resp, err = f.service.ReportPodcastProgress(ctx, &ReportPodcastProgressParams{SessionId: podcast.sessionId, SenderId: podcast.id, Position: 12.5, Duration: 612})
	require.NoError(t, err)
	assert.Equal(t, 12.5, resp.State.Podcast.Position)
	assert.Equal(t, 612.0, resp.State.Podcast.Duration)

	_, err = f.service.PlayPodcast(ctx, &PlayPodcastParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.NoError(t, err)

	resp, err = f.service.SetRepeat(ctx, &SetRepeatParams{SessionId: remote.sessionId, SenderId: remote.id, Repeat: true})
	require.NoError(t, err)
	assert.True(t, resp.State.Podcast.Repeat)

	resp, err = f.service.ReportPodcastEnded(ctx, &ReportPodcastEndedParams{SessionId: podcast.sessionId, SenderId: podcast.id})
	require.NoError(t, err)
	assert.True(t, resp.Replay)
	assert.True(t, resp.State.Podcast.IsPlaying)
	assert.Equal(t, 0.0, resp.State.Podcast.Position)

	_, err = f.service.SetRepeat(ctx, &SetRepeatParams{SessionId: remote.sessionId, SenderId: remote.id, Repeat: false})
	require.NoError(t, err)

	resp, err = f.service.ReportPodcastEnded(ctx, &ReportPodcastEndedParams{SessionId: podcast.sessionId, SenderId: podcast.id})
	require.NoError(t, err)
	assert.False(t, resp.Replay)
	assert.False(t, resp.State.Podcast.IsPlaying)
	assert.Equal(t, NowPlayingIdle, resp.State.NowPlaying)
	assert.Equal(t, Bars{Podcast: true}, resp.State.Bars)
}

func TestPlayPodcastRequiresPodcastWidget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	remote := f.connect(t, "", RoleRemote)

	_, err := f.service.SelectEpisode(ctx, &SelectEpisodeParams{SessionId: remote.sessionId, SenderId: remote.id, Slug: "campus-news-1"})
	require.NoError(t, err)

	_, err = f.service.PlayPodcast(ctx, &PlayPodcastParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.ErrorIs(t, err, ErrPodcastWidgetNotConnected)
}

func TestHostDisconnectStopsRadio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host, remote, _, _ := f.newSession(t)
	f.startRadio(t, host, remote)

	resp, err := f.service.DisconnectWidget(ctx, &DisconnectWidgetParams{SessionId: host.sessionId, WidgetId: host.id})
	require.NoError(t, err)
	assert.False(t, resp.IsSessionDeleted)
	assert.Equal(t, RoleHost, resp.Widget.Role)
	require.NotNil(t, resp.Audio)
	assert.False(t, resp.Audio.IsPlaying)
	assert.Equal(t, NowPlayingIdle, resp.State.NowPlaying)
	assert.Nil(t, resp.HostConn)
	assert.Len(t, resp.Conns, 3)

	// the host slot is free again
	f.connect(t, host.sessionId, RoleHost)
}

func TestPodcastWidgetDisconnectPausesPodcast(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, remote, _, podcast := f.newSession(t)

	_, err := f.service.SelectEpisode(ctx, &SelectEpisodeParams{SessionId: remote.sessionId, SenderId: remote.id, Slug: "campus-news-1"})
	require.NoError(t, err)
	_, err = f.service.PlayPodcast(ctx, &PlayPodcastParams{SessionId: remote.sessionId, SenderId: remote.id})
	require.NoError(t, err)

	resp, err := f.service.DisconnectWidget(ctx, &DisconnectWidgetParams{SessionId: podcast.sessionId, WidgetId: podcast.id})
	require.NoError(t, err)
	assert.True(t, resp.PodcastChanged)
	assert.False(t, resp.State.Podcast.IsPlaying)
	assertExclusive(t, resp.State)
}

func TestLastWidgetRemovesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.connect(t, "", RoleHost)
	bar := f.connect(t, host.sessionId, RoleBar)

	resp, err := f.service.DisconnectWidget(ctx, &DisconnectWidgetParams{SessionId: host.sessionId, WidgetId: bar.id})
	require.NoError(t, err)
	assert.False(t, resp.IsSessionDeleted)

	resp, err = f.service.DisconnectWidget(ctx, &DisconnectWidgetParams{SessionId: host.sessionId, WidgetId: host.id})
	require.NoError(t, err)
	assert.True(t, resp.IsSessionDeleted)
	assert.Empty(t, f.redis.Keys())

	_, err = f.service.GetState(ctx, host.sessionId)
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.service.DisconnectWidget(ctx, &DisconnectWidgetParams{SessionId: host.sessionId, WidgetId: host.id})
	require.ErrorIs(t, err, ErrWidgetNotFound)
}

func TestUnknownSenderIsRejected(t *testing.T) {
	f := newFixture(t)
	host := f.connect(t, "", RoleHost)

	_, err := f.service.PlayRadio(context.Background(), &PlayRadioParams{SessionId: host.sessionId, SenderId: "someone-else"})
	require.ErrorIs(t, err, ErrWidgetNotFound)
}

func TestRapidTogglingIsSerialized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host, remote, _, podcast := f.newSession(t)

	_, err := f.service.SelectEpisode(ctx, &SelectEpisodeParams{SessionId: podcast.sessionId, SenderId: podcast.id, Slug: "campus-news-1"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			resp, err := f.service.PlayRadio(ctx, &PlayRadioParams{SessionId: remote.sessionId, SenderId: remote.id})
			if err == nil {
				assertExclusive(t, resp.State)
			}
		}()
		go func() {
			defer wg.Done()
			resp, err := f.service.PlayPodcast(ctx, &PlayPodcastParams{SessionId: podcast.sessionId, SenderId: podcast.id})
			if err == nil {
				assertExclusive(t, resp.State)
			}
		}()
	}
	wg.Wait()

	state, err := f.service.GetState(ctx, host.sessionId)
	require.NoError(t, err)
	assertExclusive(t, state)
}

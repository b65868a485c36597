package playback

import "github.com/gorilla/websocket"

// NowPlaying is the single source of truth for what a session is playing.
type NowPlaying string

const (
	NowPlayingIdle    NowPlaying = "idle"
	NowPlayingRadio   NowPlaying = "radio"
	NowPlayingPodcast NowPlaying = "podcast"
)

const (
	RadioStatusIdle    = "idle"
	RadioStatusLoading = "loading"
	RadioStatusPlaying = "playing"
)

const (
	// RoleHost owns the real radio audio element.
	RoleHost = "host"
	// RoleRemote only requests and observes radio playback.
	RoleRemote = "remote"
	// RoleBar is the floating player bar.
	RoleBar = "bar"
	// RolePodcast is bound to the shared podcast audio element.
	RolePodcast = "podcast"
)

var Roles = []any{RoleHost, RoleRemote, RoleBar, RolePodcast}

type Widget struct {
	Id   string `json:"id"`
	Role string `json:"role"`
}

type RadioState struct {
	Status       string `json:"status"`
	IsPlaying    bool   `json:"is_playing"`
	IsLoading    bool   `json:"is_loading"`
	Attempt      int    `json:"attempt"`
	StreamURL    string `json:"stream_url"`
	Failures     int    `json:"failures"`
	RetryAfterMs int64  `json:"retry_after_ms"`
}

type VolumeState struct {
	Volume float64 `json:"volume"`
	// IsMuted is the effective mute: explicitly muted or volume at zero.
	IsMuted bool `json:"is_muted"`
}

type PodcastState struct {
	EpisodeId string  `json:"episode_id"`
	Slug      string  `json:"slug"`
	Title     string  `json:"title"`
	AudioURL  string  `json:"audio_url"`
	IsPlaying bool    `json:"is_playing"`
	Position  float64 `json:"position"`
	Duration  float64 `json:"duration"`
	Repeat    bool    `json:"repeat"`
}

// Bars tells which floating player bar is visible.
type Bars struct {
	Radio   bool `json:"radio"`
	Podcast bool `json:"podcast"`
}

type State struct {
	SessionId  string       `json:"session_id"`
	NowPlaying NowPlaying   `json:"now_playing"`
	Radio      RadioState   `json:"radio"`
	Volume     VolumeState  `json:"volume"`
	Podcast    PodcastState `json:"podcast"`
	Bars       Bars         `json:"bars"`
	Widgets    []Widget     `json:"widgets"`
	UpdatedAt  int64        `json:"updated_at"`
}

// AudioState is the radio outcome reported to every widget.
type AudioState struct {
	IsPlaying    bool  `json:"is_playing"`
	IsLoading    bool  `json:"is_loading"`
	RetryAfterMs int64 `json:"retry_after_ms,omitempty"`
}

// StreamCommand is sent to the host only. Hosts drop commands for attempts older than the newest one they saw,
// so a PLAY_STREAM delivered after the STOP_STREAM of the same attempt is never played.
type StreamCommand struct {
	StreamURL string `json:"stream_url,omitempty"`
	Attempt   int    `json:"attempt"`
}

// StateResponse describes the effects of one session transition.
type StateResponse struct {
	State State
	// Changed is false when the request was a no-op, a stale report for example.
	Changed           bool
	NowPlayingChanged bool
	PodcastChanged    bool
	// Replay is set when an ended episode restarts because repeat is on.
	Replay     bool
	Audio      *AudioState
	PlayStream *StreamCommand
	// StopStream may be set on an unchanged transition, when a host confirms an attempt that was superseded.
	StopStream *StreamCommand
	HostConn   *websocket.Conn
	Conns      []*websocket.Conn
}

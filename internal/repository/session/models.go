package session

// State is the persisted playback state of a listener session.
type State struct {
	NowPlaying     string  `redis:"now_playing"`
	LastSource     string  `redis:"last_source"`
	RadioStatus    string  `redis:"radio_status"`
	RadioAttempt   int     `redis:"radio_attempt"`
	LoadingSince   int64   `redis:"loading_since"`
	StreamURL      string  `redis:"stream_url"`
	StreamFailures int     `redis:"stream_failures"`
	Volume         float64 `redis:"volume"`
	IsMuted        bool    `redis:"is_muted"`
	EpisodeId      string  `redis:"episode_id"`
	EpisodeSlug    string  `redis:"episode_slug"`
	EpisodeTitle   string  `redis:"episode_title"`
	AudioURL       string  `redis:"audio_url"`
	PodcastPlaying bool    `redis:"podcast_playing"`
	Position       float64 `redis:"position"`
	Duration       float64 `redis:"duration"`
	Repeat         bool    `redis:"repeat"`
	UpdatedAt      int64   `redis:"updated_at"`
}

type Widget struct {
	Id   string
	Role string
}

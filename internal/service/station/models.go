package station

import "time"

type PlayerConfig struct {
	Title         string `json:"title"`
	Subtitle      string `json:"subtitle"`
	CoverImageURL string `json:"cover_image_url"`
}

type StreamConfig struct {
	OnAir     bool   `json:"on_air"`
	StreamURL string `json:"stream_url"`
}

type Podcast struct {
	Id          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Host        string    `json:"host"`
	CoverURL    string    `json:"cover_url"`
	AudioURL    string    `json:"audio_url,omitempty"`
	DurationSec int       `json:"duration_sec"`
	PublishedAt time.Time `json:"published_at"`
}

type PodcastList struct {
	Items  []Podcast `json:"items"`
	Total  int       `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

type Program struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Host        string `json:"host"`
	Description string `json:"description"`
	DayOfWeek   int    `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

type Claims struct {
	Username string
	Role     string
}

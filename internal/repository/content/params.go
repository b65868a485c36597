package content

import "time"

type CreatePodcastParams struct {
	Slug        string
	Title       string
	Description string
	Host        string
	CoverURL    string
	AudioKey    string
	DurationSec int
	PublishedAt time.Time
}

type ListPodcastsParams struct {
	Limit  int
	Offset int
}

type CreateProgramParams struct {
	Id          string
	Name        string
	Host        string
	Description string
	DayOfWeek   int
	StartTime   string
	EndTime     string
}

type SetSettingsParams struct {
	Title         string
	Subtitle      string
	CoverImageURL string
	OnAir         bool
	StreamURL     string
}

type SetUserParams struct {
	Username     string
	PasswordHash string
	Role         string
}

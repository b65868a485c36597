package content

import "time"

type Podcast struct {
	Id          string
	Slug        string
	Title       string
	Description string
	Host        string
	CoverURL    string
	AudioKey    string
	DurationSec int
	PublishedAt time.Time
	CreatedAt   time.Time
}

type Program struct {
	Id          string
	Name        string
	Host        string
	Description string
	DayOfWeek   int
	StartTime   string
	EndTime     string
}

type Settings struct {
	Title         string
	Subtitle      string
	CoverImageURL string
	OnAir         bool
	StreamURL     string
	UpdatedAt     time.Time
}

type User struct {
	Id           string
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

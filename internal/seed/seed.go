// Package seed loads station content from a YAML file and applies it to the content store.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/campusradio/server/internal/repository/content"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type Seed struct {
	Settings *Settings `yaml:"settings"`
	Programs []Program `yaml:"programs"`
	Podcasts []Podcast `yaml:"podcasts"`
	Users    []User    `yaml:"users"`
}

type Settings struct {
	Title         string `yaml:"title"`
	Subtitle      string `yaml:"subtitle"`
	CoverImageURL string `yaml:"cover_image_url"`
	OnAir         bool   `yaml:"on_air"`
	StreamURL     string `yaml:"stream_url"`
}

type Program struct {
	Id          string `yaml:"id"`
	Name        string `yaml:"name"`
	Host        string `yaml:"host"`
	Description string `yaml:"description"`
	DayOfWeek   int    `yaml:"day_of_week"`
	StartTime   string `yaml:"start_time"`
	EndTime     string `yaml:"end_time"`
}

type Podcast struct {
	Slug        string    `yaml:"slug"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Host        string    `yaml:"host"`
	CoverURL    string    `yaml:"cover_url"`
	AudioKey    string    `yaml:"audio_key"`
	DurationSec int       `yaml:"duration_sec"`
	PublishedAt time.Time `yaml:"published_at"`
}

// User carries either a bcrypt PasswordHash or a plain Password that is hashed on apply.
type User struct {
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"password_hash"`
	Role         string `yaml:"role"`
}

type iContentStore interface {
	SetSettings(context.Context, *content.SetSettingsParams) error
	UpsertProgram(context.Context, *content.CreateProgramParams) (content.Program, error)
	UpsertPodcast(context.Context, *content.CreatePodcastParams) error
	SetUser(context.Context, *content.SetUserParams) error
}

func Load(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Apply upserts the seed into store. Applying the same seed twice leaves the store unchanged.
func (s *Seed) Apply(ctx context.Context, store iContentStore) error {
	if s.Settings != nil {
		if err := store.SetSettings(ctx, &content.SetSettingsParams{
			Title:         s.Settings.Title,
			Subtitle:      s.Settings.Subtitle,
			CoverImageURL: s.Settings.CoverImageURL,
			OnAir:         s.Settings.OnAir,
			StreamURL:     s.Settings.StreamURL,
		}); err != nil {
			return fmt.Errorf("failed to seed settings: %w", err)
		}
	}

	for _, p := range s.Programs {
		if _, err := store.UpsertProgram(ctx, &content.CreateProgramParams{
			Id:          p.Id,
			Name:        p.Name,
			Host:        p.Host,
			Description: p.Description,
			DayOfWeek:   p.DayOfWeek,
			StartTime:   p.StartTime,
			EndTime:     p.EndTime,
		}); err != nil {
			return fmt.Errorf("failed to seed program %q: %w", p.Id, err)
		}
	}

	for _, p := range s.Podcasts {
		publishedAt := p.PublishedAt
		if publishedAt.IsZero() {
			publishedAt = time.Now()
		}

		if err := store.UpsertPodcast(ctx, &content.CreatePodcastParams{
			Slug:        p.Slug,
			Title:       p.Title,
			Description: p.Description,
			Host:        p.Host,
			CoverURL:    p.CoverURL,
			AudioKey:    p.AudioKey,
			DurationSec: p.DurationSec,
			PublishedAt: publishedAt,
		}); err != nil {
			return fmt.Errorf("failed to seed podcast %q: %w", p.Slug, err)
		}
	}

	for _, u := range s.Users {
		hash := u.PasswordHash
		if hash == "" {
			b, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password of %q: %w", u.Username, err)
			}
			hash = string(b)
		}

		if err := store.SetUser(ctx, &content.SetUserParams{
			Username:     u.Username,
			PasswordHash: hash,
			Role:         u.Role,
		}); err != nil {
			return fmt.Errorf("failed to seed user %q: %w", u.Username, err)
		}
	}

	slog.InfoContext(ctx, "seed applied",
		"programs", len(s.Programs),
		"podcasts", len(s.Podcasts),
		"users", len(s.Users),
	)

	return nil
}

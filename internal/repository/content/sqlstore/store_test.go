package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/campusradio/server/internal/repository/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "radio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestParseDSN(t *testing.T) {
	driver, _, err := parseDSN("postgres://radio@localhost/radio?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, driverPostgres, driver)

	driver, source, err := parseDSN("sqlite://data/radio.db")
	require.NoError(t, err)
	assert.Equal(t, driverSQLite, driver)
	assert.Contains(t, source, "data/radio.db?")

	_, _, err = parseDSN("mysql://nope")
	assert.ErrorIs(t, err, content.ErrUnsupportedDriver)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := "sqlite://" + filepath.Join(t.TempDir(), "radio.db")

	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestPodcasts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older, err := s.CreatePodcast(ctx, &content.CreatePodcastParams{
		Slug:        "campus-news-1",
		Title:       "Campus News #1",
		AudioKey:    "podcasts/campus-news-1.mp3",
		DurationSec: 1200,
		PublishedAt: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, older.Id)

	_, err = s.CreatePodcast(ctx, &content.CreatePodcastParams{
		Slug:        "campus-news-2",
		Title:       "Campus News #2",
		AudioKey:    "podcasts/campus-news-2.mp3",
		PublishedAt: time.Date(2026, 9, 8, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, err = s.CreatePodcast(ctx, &content.CreatePodcastParams{
		Slug:     "campus-news-1",
		Title:    "dup",
		AudioKey: "podcasts/other.mp3",
	})
	require.ErrorIs(t, err, content.ErrPodcastAlreadyExists)

	list, err := s.ListPodcasts(ctx, &content.ListPodcastsParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "campus-news-2", list[0].Slug)
	assert.Equal(t, "campus-news-1", list[1].Slug)

	count, err := s.CountPodcasts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := s.GetPodcastBySlug(ctx, "campus-news-1")
	require.NoError(t, err)
	assert.Equal(t, older.Id, got.Id)
	assert.Equal(t, 1200, got.DurationSec)
	assert.True(t, got.PublishedAt.Equal(time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)))

	require.NoError(t, s.UpsertPodcast(ctx, &content.CreatePodcastParams{
		Slug:        "campus-news-1",
		Title:       "Campus News #1 (remastered)",
		AudioKey:    "podcasts/campus-news-1.mp3",
		PublishedAt: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}))
	got, err = s.GetPodcastById(ctx, older.Id)
	require.NoError(t, err)
	assert.Equal(t, "Campus News #1 (remastered)", got.Title)

	keys, err := s.GetPodcastAudioKeys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"podcasts/campus-news-1.mp3", "podcasts/campus-news-2.mp3"}, keys)

	require.NoError(t, s.DeletePodcast(ctx, older.Id))
	require.ErrorIs(t, s.DeletePodcast(ctx, older.Id), content.ErrPodcastNotFound)
	_, err = s.GetPodcastBySlug(ctx, "campus-news-1")
	require.ErrorIs(t, err, content.ErrPodcastNotFound)
}

func TestPrograms(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	late, err := s.UpsertProgram(ctx, &content.CreateProgramParams{Name: "Late Jazz", DayOfWeek: 1, StartTime: "22:00", EndTime: "23:59"})
	require.NoError(t, err)
	_, err = s.UpsertProgram(ctx, &content.CreateProgramParams{Name: "Morning Show", DayOfWeek: 1, StartTime: "07:00", EndTime: "09:00"})
	require.NoError(t, err)
	_, err = s.UpsertProgram(ctx, &content.CreateProgramParams{Name: "Sunday Classics", DayOfWeek: 0, StartTime: "12:00", EndTime: "14:00"})
	require.NoError(t, err)

	programs, err := s.ListPrograms(ctx)
	require.NoError(t, err)
	require.Len(t, programs, 3)
	assert.Equal(t, "Sunday Classics", programs[0].Name)
	assert.Equal(t, "Morning Show", programs[1].Name)
	assert.Equal(t, "Late Jazz", programs[2].Name)

	_, err = s.UpsertProgram(ctx, &content.CreateProgramParams{Id: late.Id, Name: "Late Jazz", DayOfWeek: 2, StartTime: "22:00", EndTime: "23:59"})
	require.NoError(t, err)
	programs, err = s.ListPrograms(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Late Jazz", programs[2].Name)
	assert.Equal(t, 2, programs[2].DayOfWeek)

	require.NoError(t, s.DeleteProgram(ctx, late.Id))
	require.ErrorIs(t, s.DeleteProgram(ctx, late.Id), content.ErrProgramNotFound)
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetSettings(ctx)
	require.ErrorIs(t, err, content.ErrSettingsNotFound)

	require.NoError(t, s.SetSettings(ctx, &content.SetSettingsParams{
		Title:     "Radio Campus",
		OnAir:     true,
		StreamURL: "https://stream.example.edu/live",
	}))
	require.NoError(t, s.SetSettings(ctx, &content.SetSettingsParams{
		Title:     "Radio Campus",
		Subtitle:  "Live from the quad",
		OnAir:     true,
		StreamURL: "https://stream.example.edu/live",
	}))

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Live from the quad", settings.Subtitle)
	assert.True(t, settings.OnAir)
	assert.False(t, settings.UpdatedAt.IsZero())
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetUserByUsername(ctx, "dj")
	require.ErrorIs(t, err, content.ErrUserNotFound)

	require.NoError(t, s.SetUser(ctx, &content.SetUserParams{Username: "dj", PasswordHash: "h1", Role: "editor"}))
	require.NoError(t, s.SetUser(ctx, &content.SetUserParams{Username: "dj", PasswordHash: "h2", Role: "admin"}))

	user, err := s.GetUserByUsername(ctx, "dj")
	require.NoError(t, err)
	assert.Equal(t, "h2", user.PasswordHash)
	assert.Equal(t, "admin", user.Role)
}

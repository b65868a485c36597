package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/campusradio/server/internal/repository/content"
	"github.com/google/uuid"
)

type podcastRow struct {
	Id          string `db:"id"`
	Slug        string `db:"slug"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Host        string `db:"host"`
	CoverURL    string `db:"cover_url"`
	AudioKey    string `db:"audio_key"`
	DurationSec int    `db:"duration_sec"`
	PublishedAt string `db:"published_at"`
	CreatedAt   string `db:"created_at"`
}

func (r podcastRow) toModel() content.Podcast {
	return content.Podcast{
		Id:          r.Id,
		Slug:        r.Slug,
		Title:       r.Title,
		Description: r.Description,
		Host:        r.Host,
		CoverURL:    r.CoverURL,
		AudioKey:    r.AudioKey,
		DurationSec: r.DurationSec,
		PublishedAt: parseTime(r.PublishedAt),
		CreatedAt:   parseTime(r.CreatedAt),
	}
}

const podcastColumns = `id, slug, title, description, host, cover_url, audio_key, duration_sec, published_at, created_at`

func (s *Store) CreatePodcast(ctx context.Context, params *content.CreatePodcastParams) (content.Podcast, error) {
	row := podcastRow{
		Id:          uuid.NewString(),
		Slug:        params.Slug,
		Title:       params.Title,
		Description: params.Description,
		Host:        params.Host,
		CoverURL:    params.CoverURL,
		AudioKey:    params.AudioKey,
		DurationSec: params.DurationSec,
		PublishedAt: formatTime(params.PublishedAt),
		CreatedAt:   s.now(),
	}

	query := s.db.Rebind(`INSERT INTO podcasts (` + podcastColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query,
		row.Id, row.Slug, row.Title, row.Description, row.Host, row.CoverURL,
		row.AudioKey, row.DurationSec, row.PublishedAt, row.CreatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return content.Podcast{}, content.ErrPodcastAlreadyExists
		}
		return content.Podcast{}, fmt.Errorf("failed to insert podcast: %w", err)
	}

	return row.toModel(), nil
}

// UpsertPodcast creates the podcast or updates the one with the same slug.
func (s *Store) UpsertPodcast(ctx context.Context, params *content.CreatePodcastParams) error {
	query := s.db.Rebind(`INSERT INTO podcasts (` + podcastColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (slug) DO UPDATE SET
            title = excluded.title,
            description = excluded.description,
            host = excluded.host,
            cover_url = excluded.cover_url,
            audio_key = excluded.audio_key,
            duration_sec = excluded.duration_sec,
            published_at = excluded.published_at`)

	if _, err := s.db.ExecContext(ctx, query,
		uuid.NewString(), params.Slug, params.Title, params.Description, params.Host, params.CoverURL,
		params.AudioKey, params.DurationSec, formatTime(params.PublishedAt), s.now(),
	); err != nil {
		return fmt.Errorf("failed to upsert podcast: %w", err)
	}

	return nil
}

func (s *Store) ListPodcasts(ctx context.Context, params *content.ListPodcastsParams) ([]content.Podcast, error) {
	var rows []podcastRow
	query := s.db.Rebind(`SELECT ` + podcastColumns + ` FROM podcasts ORDER BY published_at DESC, id LIMIT ? OFFSET ?`)
	if err := s.db.SelectContext(ctx, &rows, query, params.Limit, params.Offset); err != nil {
		return nil, fmt.Errorf("failed to list podcasts: %w", err)
	}

	podcasts := make([]content.Podcast, 0, len(rows))
	for _, row := range rows {
		podcasts = append(podcasts, row.toModel())
	}

	return podcasts, nil
}

func (s *Store) CountPodcasts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM podcasts`); err != nil {
		return 0, fmt.Errorf("failed to count podcasts: %w", err)
	}

	return count, nil
}

func (s *Store) GetPodcastBySlug(ctx context.Context, slug string) (content.Podcast, error) {
	return s.getPodcast(ctx, "slug", slug)
}

func (s *Store) GetPodcastById(ctx context.Context, id string) (content.Podcast, error) {
	return s.getPodcast(ctx, "id", id)
}

func (s *Store) getPodcast(ctx context.Context, column, value string) (content.Podcast, error) {
	var row podcastRow
	query := s.db.Rebind(`SELECT ` + podcastColumns + ` FROM podcasts WHERE ` + column + ` = ?`)
	if err := s.db.GetContext(ctx, &row, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return content.Podcast{}, content.ErrPodcastNotFound
		}
		return content.Podcast{}, fmt.Errorf("failed to get podcast: %w", err)
	}

	return row.toModel(), nil
}

func (s *Store) DeletePodcast(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM podcasts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete podcast: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return content.ErrPodcastNotFound
	}

	return nil
}

func (s *Store) GetPodcastAudioKeys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.SelectContext(ctx, &keys, `SELECT audio_key FROM podcasts`); err != nil {
		return nil, fmt.Errorf("failed to get audio keys: %w", err)
	}

	return keys, nil
}

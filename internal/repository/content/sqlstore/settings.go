package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/campusradio/server/internal/repository/content"
)

const settingsRowId = 1

type settingsRow struct {
	Title         string `db:"title"`
	Subtitle      string `db:"subtitle"`
	CoverImageURL string `db:"cover_image_url"`
	OnAir         bool   `db:"on_air"`
	StreamURL     string `db:"stream_url"`
	UpdatedAt     string `db:"updated_at"`
}

func (s *Store) GetSettings(ctx context.Context) (content.Settings, error) {
	var row settingsRow
	query := s.db.Rebind(`SELECT title, subtitle, cover_image_url, on_air, stream_url, updated_at FROM station_settings WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, settingsRowId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return content.Settings{}, content.ErrSettingsNotFound
		}
		return content.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}

	return content.Settings{
		Title:         row.Title,
		Subtitle:      row.Subtitle,
		CoverImageURL: row.CoverImageURL,
		OnAir:         row.OnAir,
		StreamURL:     row.StreamURL,
		UpdatedAt:     parseTime(row.UpdatedAt),
	}, nil
}

func (s *Store) SetSettings(ctx context.Context, params *content.SetSettingsParams) error {
	query := s.db.Rebind(`INSERT INTO station_settings (id, title, subtitle, cover_image_url, on_air, stream_url, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET
            title = excluded.title,
            subtitle = excluded.subtitle,
            cover_image_url = excluded.cover_image_url,
            on_air = excluded.on_air,
            stream_url = excluded.stream_url,
            updated_at = excluded.updated_at`)

	if _, err := s.db.ExecContext(ctx, query,
		settingsRowId, params.Title, params.Subtitle, params.CoverImageURL, params.OnAir, params.StreamURL, s.now(),
	); err != nil {
		return fmt.Errorf("failed to set settings: %w", err)
	}

	return nil
}

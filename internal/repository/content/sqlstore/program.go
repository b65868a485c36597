package sqlstore

import (
	"context"
	"fmt"

	"github.com/campusradio/server/internal/repository/content"
	"github.com/google/uuid"
)

type programRow struct {
	Id          string `db:"id"`
	Name        string `db:"name"`
	Host        string `db:"host"`
	Description string `db:"description"`
	DayOfWeek   int    `db:"day_of_week"`
	StartTime   string `db:"start_time"`
	EndTime     string `db:"end_time"`
}

// UpsertProgram stores a program, replacing the one with the same id. An empty id creates a new program.
func (s *Store) UpsertProgram(ctx context.Context, params *content.CreateProgramParams) (content.Program, error) {
	id := params.Id
	if id == "" {
		id = uuid.NewString()
	}

	query := s.db.Rebind(`INSERT INTO programs (id, name, host, description, day_of_week, start_time, end_time)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET
            name = excluded.name,
            host = excluded.host,
            description = excluded.description,
            day_of_week = excluded.day_of_week,
            start_time = excluded.start_time,
            end_time = excluded.end_time`)

	if _, err := s.db.ExecContext(ctx, query,
		id, params.Name, params.Host, params.Description, params.DayOfWeek, params.StartTime, params.EndTime,
	); err != nil {
		return content.Program{}, fmt.Errorf("failed to upsert program: %w", err)
	}

	return content.Program{
		Id:          id,
		Name:        params.Name,
		Host:        params.Host,
		Description: params.Description,
		DayOfWeek:   params.DayOfWeek,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
	}, nil
}

func (s *Store) ListPrograms(ctx context.Context) ([]content.Program, error) {
	var rows []programRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT id, name, host, description, day_of_week, start_time, end_time FROM programs ORDER BY day_of_week, start_time, name`,
	); err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}

	programs := make([]content.Program, 0, len(rows))
	for _, row := range rows {
		programs = append(programs, content.Program(row))
	}

	return programs, nil
}

func (s *Store) DeleteProgram(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM programs WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete program: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return content.ErrProgramNotFound
	}

	return nil
}

package station

import (
	"context"
	"errors"
	"fmt"

	"github.com/campusradio/server/internal/repository/content"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func (s service) ListPrograms(ctx context.Context) ([]Program, error) {
	programs, err := s.store.ListPrograms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}

	res := make([]Program, 0, len(programs))
	for _, p := range programs {
		res = append(res, Program(p))
	}

	return res, nil
}

type SaveProgramParams struct {
	Id          string
	Name        string
	Host        string
	Description string
	DayOfWeek   int
	StartTime   string
	EndTime     string
}

// SaveProgram creates a program, or replaces the one with params.Id.
func (s service) SaveProgram(ctx context.Context, params *SaveProgramParams) (Program, error) {
	if err := validation.ValidateStruct(params,
		validation.Field(&params.Name, validation.Required, validation.Length(1, 128)),
		validation.Field(&params.DayOfWeek, validation.Min(0), validation.Max(6)),
		validation.Field(&params.StartTime, ClockRule...),
		validation.Field(&params.EndTime, ClockRule...),
	); err != nil {
		return Program{}, err
	}

	p, err := s.store.UpsertProgram(ctx, &content.CreateProgramParams{
		Id:          params.Id,
		Name:        params.Name,
		Host:        params.Host,
		Description: params.Description,
		DayOfWeek:   params.DayOfWeek,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
	})
	if err != nil {
		return Program{}, fmt.Errorf("failed to save program: %w", err)
	}

	return Program(p), nil
}

func (s service) DeleteProgram(ctx context.Context, id string) error {
	if err := s.store.DeleteProgram(ctx, id); err != nil {
		if errors.Is(err, content.ErrProgramNotFound) {
			return ErrProgramNotFound
		}

		return fmt.Errorf("failed to delete program: %w", err)
	}

	return nil
}

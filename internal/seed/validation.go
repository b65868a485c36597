package seed

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var (
	slugRule  = validation.Match(regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`))
	clockRule = validation.Match(regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`))
)

func (s Seed) Validate() error {
	if s.Settings != nil {
		if err := validation.ValidateStruct(s.Settings,
			validation.Field(&s.Settings.StreamURL, is.URL),
			validation.Field(&s.Settings.CoverImageURL, is.URL),
		); err != nil {
			return fmt.Errorf("settings: %w", err)
		}
	}

	for i := range s.Programs {
		p := &s.Programs[i]
		if err := validation.ValidateStruct(p,
			validation.Field(&p.Id, validation.Required),
			validation.Field(&p.Name, validation.Required),
			validation.Field(&p.DayOfWeek, validation.Min(0), validation.Max(6)),
			validation.Field(&p.StartTime, validation.Required, clockRule),
			validation.Field(&p.EndTime, validation.Required, clockRule),
		); err != nil {
			return fmt.Errorf("programs[%d]: %w", i, err)
		}
	}

	for i := range s.Podcasts {
		p := &s.Podcasts[i]
		if err := validation.ValidateStruct(p,
			validation.Field(&p.Slug, validation.Required, slugRule),
			validation.Field(&p.Title, validation.Required),
			validation.Field(&p.AudioKey, validation.Required),
			validation.Field(&p.DurationSec, validation.Min(0)),
		); err != nil {
			return fmt.Errorf("podcasts[%d]: %w", i, err)
		}
	}

	for i := range s.Users {
		u := &s.Users[i]
		if err := validation.ValidateStruct(u,
			validation.Field(&u.Username, validation.Required, validation.Length(1, 64)),
			validation.Field(&u.Password, validation.When(u.PasswordHash == "", validation.Required)),
			validation.Field(&u.Role, validation.Required, validation.In("admin", "editor")),
		); err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
	}

	return nil
}

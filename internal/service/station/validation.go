package station

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var SlugRule = []validation.Rule{
	validation.Required,
	validation.Length(1, 128),
	validation.Match(regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)),
}

var ClockRule = []validation.Rule{
	validation.Required,
	validation.Match(regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)),
}

var OptionalURLRule = []validation.Rule{
	is.URL,
}

var LimitRule = []validation.Rule{
	validation.Min(1),
	validation.Max(100),
}

var RoleRule = []validation.Rule{
	validation.Required,
	validation.In(RoleAdmin, RoleEditor),
}

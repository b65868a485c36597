package playback

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var SessionIdRule = []validation.Rule{
	validation.Required,
	validation.Length(1, 64),
	validation.Match(regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)),
}

var RoleRule = []validation.Rule{
	validation.Required,
	validation.In(Roles...),
}

var VolumeRule = []validation.Rule{
	validation.Min(0.0),
	validation.Max(1.0),
}

var SkipDeltaRule = []validation.Rule{
	validation.Min(-3600.0),
	validation.Max(3600.0),
}

var PositionRule = []validation.Rule{
	validation.Min(0.0),
}

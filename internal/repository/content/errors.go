package content

import "errors"

var (
	ErrPodcastNotFound      = errors.New("podcast not found")
	ErrPodcastAlreadyExists = errors.New("podcast already exists")
	ErrProgramNotFound      = errors.New("program not found")
	ErrSettingsNotFound     = errors.New("station settings not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrUnsupportedDriver    = errors.New("unsupported database driver")
)

package audio

import (
	"errors"
	"path"
	"strings"
	"time"
)

var ErrStorageNotConfigured = errors.New("audio storage not configured")

// Object is an audio file stored in the bucket.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

var audioExtensions = map[string]struct{}{
	".mp3": {}, ".m4a": {}, ".aac": {}, ".ogg": {}, ".oga": {}, ".opus": {}, ".wav": {}, ".flac": {},
}

// IsAudioKey reports whether key names an audio file by its extension.
func IsAudioKey(key string) bool {
	_, ok := audioExtensions[strings.ToLower(path.Ext(key))]
	return ok
}

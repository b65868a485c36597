package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	now := time.UnixMilli(1767225600000)
	r := NewStreamResolver("https://stream.example.edu/default", 0, 0, func() time.Time { return now })

	u, err := r.Resolve("https://stream.example.edu/live?format=mp3", 3)
	require.NoError(t, err)
	assert.Equal(t, "https://stream.example.edu/live?format=mp3&t=1767225600000-3", u)

	u, err = r.Resolve("", 1)
	require.NoError(t, err)
	assert.Equal(t, "https://stream.example.edu/default?t=1767225600000-1", u)

	_, err = NewStreamResolver("", 0, 0, nil).Resolve("", 1)
	require.ErrorIs(t, err, ErrStreamNotConfigured)

	_, err = r.Resolve("://broken", 1)
	require.Error(t, err)
}

func TestRetryAfter(t *testing.T) {
	r := NewStreamResolver("", time.Second, 30*time.Second, nil)

	assert.Equal(t, time.Duration(0), r.RetryAfter(0))
	assert.Equal(t, time.Second, r.RetryAfter(1))
	assert.Equal(t, 2*time.Second, r.RetryAfter(2))
	assert.Equal(t, 16*time.Second, r.RetryAfter(5))
	assert.Equal(t, 30*time.Second, r.RetryAfter(6))
	assert.Equal(t, 30*time.Second, r.RetryAfter(100))
}

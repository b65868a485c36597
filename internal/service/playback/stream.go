package playback

import (
	"fmt"
	"net/url"
	"time"
)

// StreamResolver hands out a fresh stream URL per play attempt and computes the retry hint after failures.
type StreamResolver struct {
	defaultURL string
	base       time.Duration
	max        time.Duration
	now        func() time.Time
}

func NewStreamResolver(defaultURL string, base, max time.Duration, now func() time.Time) StreamResolver {
	if base <= 0 {
		base = time.Second
	}
	if max <= 0 {
		max = 30 * time.Second
	}
	if now == nil {
		now = time.Now
	}

	return StreamResolver{
		defaultURL: defaultURL,
		base:       base,
		max:        max,
		now:        now,
	}
}

// Resolve appends a cache busting parameter to base so that the browser opens a new connection
// instead of replaying a buffered response. An empty base falls back to the default URL.
func (r StreamResolver) Resolve(base string, attempt int) (string, error) {
	if base == "" {
		base = r.defaultURL
	}
	if base == "" {
		return "", ErrStreamNotConfigured
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse stream url: %w", err)
	}

	q := u.Query()
	q.Set("t", fmt.Sprintf("%d-%d", r.now().UnixMilli(), attempt))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// RetryAfter returns min(base*2^(failures-1), max), or zero when nothing failed.
func (r StreamResolver) RetryAfter(failures int) time.Duration {
	if failures <= 0 {
		return 0
	}

	d := r.base
	for i := 1; i < failures; i++ {
		d *= 2
		if d >= r.max {
			return r.max
		}
	}

	if d > r.max {
		return r.max
	}

	return d
}

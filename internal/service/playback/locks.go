package playback

import (
	"sync"
	"time"
)

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// sessionLocks serializes transitions per session. Entries are dropped once nobody holds or waits on them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (l *sessionLocks) lock(sessionId string) (unlock func()) {
	l.mu.Lock()
	sl, ok := l.locks[sessionId]
	if !ok {
		sl = &sessionLock{}
		l.locks[sessionId] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()

	return func() {
		sl.mu.Unlock()

		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, sessionId)
		}
		l.mu.Unlock()
	}
}

type pendingTimer struct {
	timer   *time.Timer
	attempt int
}

// failsafe holds at most one pending loading timer per session, tagged with the play attempt it guards.
type failsafe struct {
	mu     sync.Mutex
	timers map[string]pendingTimer
}

func newFailsafe() *failsafe {
	return &failsafe{timers: make(map[string]pendingTimer)}
}

func (f *failsafe) start(sessionId string, attempt int, d time.Duration, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.timers[sessionId]; ok {
		p.timer.Stop()
	}

	f.timers[sessionId] = pendingTimer{
		timer:   time.AfterFunc(d, fn),
		attempt: attempt,
	}
}

func (f *failsafe) stop(sessionId string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.timers[sessionId]; ok {
		p.timer.Stop()
		delete(f.timers, sessionId)
	}
}

// done forgets the timer of attempt after it fired. A timer of a newer attempt is kept.
func (f *failsafe) done(sessionId string, attempt int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.timers[sessionId]; ok && p.attempt == attempt {
		delete(f.timers, sessionId)
	}
}

func (f *failsafe) pending(sessionId string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.timers[sessionId]
	return ok
}

func (f *failsafe) stopAll() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, p := range f.timers {
		p.timer.Stop()
		delete(f.timers, id)
	}
}

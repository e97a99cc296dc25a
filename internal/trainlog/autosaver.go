package trainlog

import (
	"context"
	"sync"
	"time"

	"github.com/2beens/gymplan/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

const DefaultDebounceWindow = 1200 * time.Millisecond

type logAppender interface {
	Append(ctx context.Context, entries ...Entry) error
}

// AutoSaver debounces the auto-saves the workout screen fires on every weight
// or checkbox change. Within the window, repeated saves for the same user and
// day are dropped, each would otherwise be a commit in the store.
type AutoSaver struct {
	logs    logAppender
	window  time.Duration
	metrics *metrics.Manager // optional

	// injectable clock
	Now func() time.Time

	mu       sync.Mutex
	lastSave map[string]time.Time
}

func NewAutoSaver(logs logAppender, window time.Duration, metricsManager *metrics.Manager) *AutoSaver {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &AutoSaver{
		logs:     logs,
		window:   window,
		metrics:  metricsManager,
		Now:      time.Now,
		lastSave: make(map[string]time.Time),
	}
}

// AutoSave appends the entry unless a previous auto-save for the same user
// and day went through within the debounce window. Returns whether the entry
// was persisted.
func (s *AutoSaver) AutoSave(ctx context.Context, entry Entry) (bool, error) {
	if err := entry.validate(); err != nil {
		return false, err
	}

	key := entry.User + "||" + string(entry.Day)
	now := s.Now()

	s.mu.Lock()
	if last, ok := s.lastSave[key]; ok && now.Sub(last) < s.window {
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.CounterAutoSavesSuppressed.Inc()
		}
		log.Tracef("auto save suppressed for [%s]", key)
		return false, nil
	}
	s.lastSave[key] = now
	s.mu.Unlock()

	if err := s.logs.Append(ctx, entry); err != nil {
		// let the next attempt through instead of debouncing a failure
		s.mu.Lock()
		delete(s.lastSave, key)
		s.mu.Unlock()
		return false, err
	}

	if s.metrics != nil {
		s.metrics.CounterLogEntries.Inc()
	}
	return true, nil
}

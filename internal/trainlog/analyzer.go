package trainlog

import (
	"context"
	"sort"
	"strings"

	"github.com/2beens/gymplan/internal/plan"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 300
)

type logSource interface {
	All(ctx context.Context) ([]Entry, error)
}

// Analyzer answers the questions the workout screens ask of the log: what
// weight was used last time, which exercise variant was picked, what happened
// recently.
type Analyzer struct {
	logs logSource
}

func NewAnalyzer(logs logSource) *Analyzer {
	return &Analyzer{
		logs: logs,
	}
}

// LastWeight returns the weight of the most recent log entry for the given
// user, day and exercise, 0 when there is none. The exercise name matches
// ignoring case and surrounding whitespace.
func (a *Analyzer) LastWeight(ctx context.Context, user string, day plan.Weekday, exercise string) (float64, error) {
	entries, err := a.logs.All(ctx)
	if err != nil {
		return 0, err
	}
	sortByTimestamp(entries)

	lastWeight := float64(0)
	for _, e := range entries {
		if e.User == user && e.Day == day && exerciseEqual(e.Exercise, exercise) {
			lastWeight = e.WeightKg
		}
	}
	return lastWeight, nil
}

// LastVariantChoice returns the candidate exercise the user logged most
// recently on the given day. With no matching log entry the first candidate
// is the default.
func (a *Analyzer) LastVariantChoice(ctx context.Context, user string, day plan.Weekday, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", nil
	}

	entries, err := a.logs.All(ctx)
	if err != nil {
		return "", err
	}
	sortByTimestamp(entries)

	choice := candidates[0]
	for _, e := range entries {
		if e.User != user || e.Day != day {
			continue
		}
		for _, candidate := range candidates {
			if exerciseEqual(e.Exercise, candidate) {
				choice = candidate
			}
		}
	}
	return choice, nil
}

type HistoryQuery struct {
	User     string
	Day      plan.Weekday // optional
	Exercise string       // optional
	Limit    int          // default 50, capped at 300
}

// History returns the user's log entries, newest first.
func (a *Analyzer) History(ctx context.Context, query HistoryQuery) ([]Entry, error) {
	entries, err := a.logs.All(ctx)
	if err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	matched := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.User != query.User {
			continue
		}
		if query.Day != "" && e.Day != query.Day {
			continue
		}
		if query.Exercise != "" && !exerciseEqual(e.Exercise, query.Exercise) {
			continue
		}
		matched = append(matched, e)
	}

	// newest first
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp > matched[j].Timestamp
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func sortByTimestamp(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp < entries[j].Timestamp
	})
}

func exerciseEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

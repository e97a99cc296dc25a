package trainlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/2beens/gymplan/internal/plan"
	"github.com/2beens/gymplan/internal/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appenderFake struct {
	appended []Entry
	err      error
}

func (af *appenderFake) Append(_ context.Context, entries ...Entry) error {
	if af.err != nil {
		return af.err
	}
	af.appended = append(af.appended, entries...)
	return nil
}

func testEntry(user string, day plan.Weekday) Entry {
	return Entry{
		Timestamp: "2024-05-08T10:00:00Z",
		User:      user,
		Day:       day,
		Exercise:  "Supino reto",
		WeightKg:  42.5,
		Done:      true,
	}
}

func newTestAutoSaver(appender logAppender) (*AutoSaver, *metrics.Manager, *time.Time) {
	m := metrics.NewTestManager()
	saver := NewAutoSaver(appender, 1200*time.Millisecond, m)

	now := time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)
	saver.Now = func() time.Time { return now }
	return saver, m, &now
}

func TestAutoSaver_DebounceWindow(t *testing.T) {
	appender := &appenderFake{}
	saver, m, now := newTestAutoSaver(appender)
	ctx := context.Background()

	saved, err := saver.AutoSave(ctx, testEntry("Amor", plan.Segunda))
	require.NoError(t, err)
	assert.True(t, saved)

	// 0.5s later: suppressed
	*now = now.Add(500 * time.Millisecond)
	saved, err = saver.AutoSave(ctx, testEntry("Amor", plan.Segunda))
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Len(t, appender.appended, 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterAutoSavesSuppressed))

	// 2s after the first save: goes through
	*now = now.Add(1500 * time.Millisecond)
	saved, err = saver.AutoSave(ctx, testEntry("Amor", plan.Segunda))
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Len(t, appender.appended, 2)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CounterLogEntries))
}

func TestAutoSaver_SeparateUserDayKeys(t *testing.T) {
	appender := &appenderFake{}
	saver, _, _ := newTestAutoSaver(appender)
	ctx := context.Background()

	saved, err := saver.AutoSave(ctx, testEntry("Amor", plan.Segunda))
	require.NoError(t, err)
	assert.True(t, saved)

	// same instant, different user and different day: not suppressed
	saved, err = saver.AutoSave(ctx, testEntry("Benfica", plan.Segunda))
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = saver.AutoSave(ctx, testEntry("Amor", plan.Quarta))
	require.NoError(t, err)
	assert.True(t, saved)

	assert.Len(t, appender.appended, 3)
}

func TestAutoSaver_AppendFailureDoesNotDebounce(t *testing.T) {
	appender := &appenderFake{err: errors.New("store down")}
	saver, m, _ := newTestAutoSaver(appender)
	ctx := context.Background()

	saved, err := saver.AutoSave(ctx, testEntry("Amor", plan.Segunda))
	require.Error(t, err)
	assert.False(t, saved)

	// store recovers, the immediate retry is let through
	appender.err = nil
	saved, err = saver.AutoSave(ctx, testEntry("Amor", plan.Segunda))
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.CounterAutoSavesSuppressed))
}

func TestAutoSaver_NoMetricsManager(t *testing.T) {
	appender := &appenderFake{}
	saver := NewAutoSaver(appender, 1200*time.Millisecond, nil)

	now := time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)
	saver.Now = func() time.Time { return now }
	ctx := context.Background()

	saved, err := saver.AutoSave(ctx, testEntry("Amor", plan.Segunda))
	require.NoError(t, err)
	assert.True(t, saved)

	// suppression path must not panic without a manager either
	saved, err = saver.AutoSave(ctx, testEntry("Amor", plan.Segunda))
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Len(t, appender.appended, 1)
}

func TestAutoSaver_InvalidEntry(t *testing.T) {
	appender := &appenderFake{}
	saver, _, _ := newTestAutoSaver(appender)

	_, err := saver.AutoSave(context.Background(), Entry{User: "Amor", Day: plan.Segunda})
	assert.ErrorIs(t, err, ErrEmptyExercise)
	assert.Empty(t, appender.appended)
}

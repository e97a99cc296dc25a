package trainlog

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/2beens/gymplan/internal/plan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// in-memory stand-in for the remote file store
type memStore struct {
	mu       sync.Mutex
	files    map[string]string
	writes   int
	messages []string
}

func newMemStore() *memStore {
	return &memStore{files: map[string]string{}}
}

func (m *memStore) Read(_ context.Context, path string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[path], "sha-test", nil
}

func (m *memStore) Write(_ context.Context, path, content, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
	m.writes++
	m.messages = append(m.messages, message)
	return nil
}

const testLogPath = "Data/treino_log.csv"

const testLogContent = "timestamp,user,dia,grupo,exercicio,series_reps,peso_kg,feito\n" +
	"2024-05-01T10:00:00Z,Amor,Segunda,Peito,Supino reto,4x10,40.0,1\n" +
	"2024-05-08T10:05:00Z,Amor,Segunda,Peito,Supino reto,4x10,42.5,1\n" +
	"2024-05-08T10:20:00Z,Benfica,Segunda,Costas,Remada curvada,4x8,50.0,0\n"

func newTestRepo(t *testing.T) (*Repo, *memStore) {
	t.Helper()
	store := newMemStore()
	store.files[testLogPath] = testLogContent
	return NewRepo(store, testLogPath), store
}

func TestRepo_All(t *testing.T) {
	repo, _ := newTestRepo(t)

	entries, err := repo.All(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{
		Timestamp:   "2024-05-08T10:05:00Z",
		User:        "Amor",
		Day:         plan.Segunda,
		MuscleGroup: "Peito",
		Exercise:    "Supino reto",
		SetsReps:    "4x10",
		WeightKg:    42.5,
		Done:        true,
	}, entries[1])
	assert.False(t, entries[2].Done)
}

func TestRepo_Append_AppendOnly(t *testing.T) {
	repo, store := newTestRepo(t)
	ctx := context.Background()

	err := repo.Append(ctx, Entry{
		Timestamp: "2024-05-15T10:00:00Z",
		User:      "Amor",
		Day:       plan.Segunda,
		Exercise:  "Supino reto",
		WeightKg:  45,
		Done:      true,
	})
	require.NoError(t, err)

	// the new file is the old content plus the new row, prior rows untouched
	written := store.files[testLogPath]
	assert.True(t, strings.HasPrefix(written, testLogContent))
	assert.Contains(t, written, "2024-05-15T10:00:00Z,Amor,Segunda,,Supino reto,,45.0,1")

	require.Len(t, store.messages, 1)
	assert.True(t, strings.HasPrefix(store.messages[0], "append treino log "))

	entries, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestRepo_Append_FirstEntry(t *testing.T) {
	store := newMemStore()
	repo := NewRepo(store, testLogPath)

	err := repo.Append(context.Background(), Entry{
		Timestamp: "2024-05-15T10:00:00Z",
		User:      "Benfica",
		Day:       plan.Sexta,
		Exercise:  "Agachamento",
		WeightKg:  60,
		Done:      true,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(store.files[testLogPath], "timestamp,user,dia,"))
}

func TestRepo_Append_CanonicalizesWeekday(t *testing.T) {
	repo, store := newTestRepo(t)
	ctx := context.Background()

	err := repo.Append(ctx, Entry{
		Timestamp: "2024-05-15T10:00:00Z",
		User:      "Benfica",
		Day:       "sexta",
		Exercise:  "Agachamento",
		WeightKg:  60,
		Done:      true,
	})
	require.NoError(t, err)

	// written in the canonical form, visible to the exact day filters
	assert.Contains(t, store.files[testLogPath], "2024-05-15T10:00:00Z,Benfica,Sexta,")

	entries, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, plan.Sexta, entries[len(entries)-1].Day)
}

func TestRepo_Append_Invalid(t *testing.T) {
	repo, store := newTestRepo(t)
	ctx := context.Background()

	err := repo.Append(ctx, Entry{User: "", Day: plan.Segunda, Exercise: "Supino"})
	assert.ErrorIs(t, err, ErrEmptyUser)

	err = repo.Append(ctx, Entry{User: "Amor", Day: plan.Segunda, Exercise: ""})
	assert.ErrorIs(t, err, ErrEmptyExercise)

	err = repo.Append(ctx, Entry{User: "Amor", Day: "Domingo", Exercise: "Supino"})
	assert.ErrorIs(t, err, plan.ErrUnknownWeekday)

	assert.Equal(t, 0, store.writes)

	// appending nothing is a no-op
	require.NoError(t, repo.Append(ctx))
	assert.Equal(t, 0, store.writes)
}

package trainlog

import (
	"context"
	"fmt"

	"github.com/2beens/gymplan/internal/ghstore"
)

type fileStore interface {
	Read(ctx context.Context, path string) (content string, sha string, err error)
	Write(ctx context.Context, path, content, message string) error
}

// Repo persists the log as one CSV file in the remote store. The log is
// append-only: every write is the previous content plus the new rows, prior
// rows are never touched.
type Repo struct {
	store fileStore
	path  string
}

func NewRepo(store fileStore, path string) *Repo {
	return &Repo{
		store: store,
		path:  path,
	}
}

func (r *Repo) All(ctx context.Context) ([]Entry, error) {
	content, _, err := r.store.Read(ctx, r.path)
	if err != nil {
		return nil, fmt.Errorf("read train log: %w", err)
	}
	return entriesFromCSV(content), nil
}

func (r *Repo) Append(ctx context.Context, newEntries ...Entry) error {
	if len(newEntries) == 0 {
		return nil
	}
	// validate in place, it canonicalizes the weekday too
	for i := range newEntries {
		if err := newEntries[i].validate(); err != nil {
			return err
		}
	}

	entries, err := r.All(ctx)
	if err != nil {
		return err
	}
	entries = append(entries, newEntries...)

	content := entriesToCSV(entries)
	message := ghstore.CommitMessage("append treino log")
	if err := r.store.Write(ctx, r.path, content, message); err != nil {
		return fmt.Errorf("write train log: %w", err)
	}
	return nil
}

package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/2beens/gymplan/internal/ghstore"
)

type fileStore interface {
	Read(ctx context.Context, path string) (content string, sha string, err error)
	Write(ctx context.Context, path, content, message string) error
}

// Repo persists the catalog as a single CSV file in the remote store. Every
// change rewrites the whole file, the store handles versioning.
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
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return entriesFromCSV(content), nil
}

func (r *Repo) Get(ctx context.Context, name string) (Entry, error) {
	entries, err := r.All(ctx)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// Insert adds a new exercise. Names must be unique ignoring case, the pick
// lists would otherwise show confusing near-duplicates.
func (r *Repo) Insert(ctx context.Context, entry Entry) error {
	entry.Name = strings.TrimSpace(entry.Name)
	if entry.Name == "" {
		return ErrEmptyName
	}

	entries, err := r.All(ctx)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if strings.EqualFold(e.Name, entry.Name) {
			return ErrNameTaken
		}
	}

	return r.save(ctx, append(entries, entry))
}

// Update replaces the exercise stored under oldName. Renames are allowed as
// long as the new name does not collide with another entry.
func (r *Repo) Update(ctx context.Context, oldName string, entry Entry) error {
	entry.Name = strings.TrimSpace(entry.Name)
	if entry.Name == "" {
		return ErrEmptyName
	}

	entries, err := r.All(ctx)
	if err != nil {
		return err
	}

	kept := make([]Entry, 0, len(entries))
	found := false
	for _, e := range entries {
		if e.Name == oldName {
			found = true
			continue
		}
		if strings.EqualFold(e.Name, entry.Name) {
			return ErrNameTaken
		}
		kept = append(kept, e)
	}
	if !found {
		return ErrNotFound
	}

	return r.save(ctx, append(kept, entry))
}

func (r *Repo) Delete(ctx context.Context, name string) error {
	entries, err := r.All(ctx)
	if err != nil {
		return err
	}

	kept := make([]Entry, 0, len(entries))
	found := false
	for _, e := range entries {
		if e.Name == name {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return ErrNotFound
	}

	return r.save(ctx, kept)
}

func (r *Repo) save(ctx context.Context, entries []Entry) error {
	content := entriesToCSV(entries)
	message := ghstore.CommitMessage("update exercicios")
	if err := r.store.Write(ctx, r.path, content, message); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

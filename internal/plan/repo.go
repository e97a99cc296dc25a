package plan

import (
	"context"
	"fmt"
	"strings"

	"github.com/2beens/gymplan/internal/ghstore"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type fileStore interface {
	Read(ctx context.Context, path string) (content string, sha string, err error)
	Write(ctx context.Context, path, content, message string) error
}

// Repo persists the whole weekly plan, all users, as one CSV file in the
// remote store. Mutations rewrite the full file.
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

// All returns every plan row. Loading a legacy table without ids assigns
// them and writes the table back once, so the ids stay stable afterwards.
func (r *Repo) All(ctx context.Context) ([]Row, error) {
	content, _, err := r.store.Read(ctx, r.path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}

	rows, idsAssigned := rowsFromCSV(content)
	if idsAssigned {
		log.Warnf("plan: assigned ids to legacy rows in %s, writing back", r.path)
		if err := r.save(ctx, rows); err != nil {
			// ids still usable for this request, they just will not stick
			log.Errorf("plan: failed to persist assigned row ids: %s", err)
		}
	}

	return rows, nil
}

func (r *Repo) ForUser(ctx context.Context, user string) ([]Row, error) {
	rows, err := r.All(ctx)
	if err != nil {
		return nil, err
	}

	userRows := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row.User == user {
			userRows = append(userRows, row)
		}
	}
	return userRows, nil
}

// EnsureWeekdays synthesizes an empty placeholder row for every weekday the
// user has no rows for, so the week view and the day editors always have all
// five days. Persists only when something was actually added.
func (r *Repo) EnsureWeekdays(ctx context.Context, user string) ([]Row, error) {
	rows, err := r.All(ctx)
	if err != nil {
		return nil, err
	}

	hasDay := make(map[Weekday]bool, len(Weekdays))
	for _, row := range rows {
		if row.User == user {
			hasDay[row.Day] = true
		}
	}

	added := false
	for _, day := range Weekdays {
		if hasDay[day] {
			continue
		}
		rows = append(rows, Row{
			ID:    uuid.NewString(),
			User:  user,
			Day:   day,
			Order: placeholderOrder,
		})
		added = true
	}

	if added {
		if err := r.save(ctx, rows); err != nil {
			return nil, err
		}
	}

	userRows := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row.User == user {
			userRows = append(userRows, row)
		}
	}
	return userRows, nil
}

// Upsert updates the row with the given id in place, or appends a new row
// (assigning an id) when the incoming row has none.
func (r *Repo) Upsert(ctx context.Context, row Row) (Row, error) {
	if strings.TrimSpace(row.User) == "" {
		return Row{}, fmt.Errorf("plan row user is empty")
	}
	day, err := ParseWeekday(string(row.Day))
	if err != nil {
		return Row{}, err
	}
	// store the canonical form, the day filters match exactly
	row.Day = day
	if row.Order <= 0 {
		row.Order = DefaultOrder
	}

	rows, err := r.All(ctx)
	if err != nil {
		return Row{}, err
	}

	if row.ID == "" {
		row.ID = uuid.NewString()
		rows = append(rows, row)
		return row, r.save(ctx, rows)
	}

	for i := range rows {
		if rows[i].ID == row.ID {
			rows[i] = row
			return row, r.save(ctx, rows)
		}
	}
	return Row{}, ErrNotFound
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	rows, err := r.All(ctx)
	if err != nil {
		return err
	}

	kept := make([]Row, 0, len(rows))
	found := false
	for _, row := range rows {
		if row.ID == id {
			found = true
			continue
		}
		kept = append(kept, row)
	}
	if !found {
		return ErrNotFound
	}

	return r.save(ctx, kept)
}

func (r *Repo) save(ctx context.Context, rows []Row) error {
	content := rowsToCSV(rows)
	message := ghstore.CommitMessage("update treinos")
	if err := r.store.Write(ctx, r.path, content, message); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	return nil
}

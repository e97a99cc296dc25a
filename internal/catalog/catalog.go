// Package catalog holds the exercise catalog: one row per known exercise,
// carrying its muscle group, demo GIF and optional notes. The catalog backs
// the pick lists on the plan screens and the GIF resolution in day views.
package catalog

import (
	"errors"
	"sort"
	"strings"

	"github.com/2beens/gymplan/internal/csvtable"
)

var (
	ErrNotFound  = errors.New("exercise not found")
	ErrNameTaken = errors.New("exercise name already taken")
	ErrEmptyName = errors.New("exercise name is empty")
)

// columns of Data/exercicios.csv, fixed for compatibility with older
// revisions of the planner
var columns = []string{"exercicio", "grupo", "gif_key", "gif_url", "alt_group", "observacoes"}

type Entry struct {
	Name        string `json:"name"`
	MuscleGroup string `json:"muscleGroup"`
	GifKey      string `json:"gifKey,omitempty"`
	GifURL      string `json:"gifUrl,omitempty"`
	AltGroup    string `json:"altGroup,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

func entryFromRow(row []string) Entry {
	return Entry{
		Name:        row[0],
		MuscleGroup: row[1],
		GifKey:      row[2],
		GifURL:      row[3],
		AltGroup:    row[4],
		Notes:       row[5],
	}
}

func (e Entry) row() []string {
	return []string{e.Name, e.MuscleGroup, e.GifKey, e.GifURL, e.AltGroup, e.Notes}
}

func entriesFromCSV(text string) []Entry {
	rows := csvtable.Decode(text, columns)
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entryFromRow(row))
	}
	return entries
}

func entriesToCSV(entries []Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, e.row())
	}
	return csvtable.Encode(columns, rows)
}

// Index maps lowercased exercise names to their entries, for the
// case-insensitive lookups the day views do.
func Index(entries []Entry) map[string]Entry {
	index := make(map[string]Entry, len(entries))
	for _, e := range entries {
		index[strings.ToLower(strings.TrimSpace(e.Name))] = e
	}
	return index
}

// Filter narrows entries by a case-insensitive name substring and/or an exact
// muscle group, then sorts by group and name. Drives the manage screen list.
func Filter(entries []Entry, query, group string) []Entry {
	query = strings.ToLower(strings.TrimSpace(query))

	filtered := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if query != "" && !strings.Contains(strings.ToLower(e.Name), query) {
			continue
		}
		if group != "" && e.MuscleGroup != group {
			continue
		}
		filtered = append(filtered, e)
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].MuscleGroup != filtered[j].MuscleGroup {
			return filtered[i].MuscleGroup < filtered[j].MuscleGroup
		}
		return filtered[i].Name < filtered[j].Name
	})

	return filtered
}

// Package plan stores the weekly training plan: per user and weekday, an
// ordered list of exercises with sets/reps and optional overrides for the
// muscle group and GIF coming from the catalog.
package plan

import (
	"errors"
	"strconv"

	"github.com/2beens/gymplan/internal/csvtable"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("plan row not found")

const (
	// rows without a usable ordem sort last
	DefaultOrder = 9999
	// synthesized rows for missing weekdays sort first
	placeholderOrder = 1
)

// columns of Data/treinos.csv; id is newer than the rest, older files
// without it get ids assigned on first load
var columns = []string{"id", "user", "dia", "ordem", "grupo", "exercicio", "series_reps", "gif_url", "gif_key", "alt_group"}

type Row struct {
	ID          string  `json:"id"`
	User        string  `json:"user"`
	Day         Weekday `json:"day"`
	Order       int     `json:"order"`
	MuscleGroup string  `json:"muscleGroup,omitempty"`
	Exercise    string  `json:"exercise"`
	SetsReps    string  `json:"setsReps,omitempty"`
	GifURL      string  `json:"gifUrl,omitempty"`
	GifKey      string  `json:"gifKey,omitempty"`
	AltGroup    string  `json:"altGroup,omitempty"`
}

func rowFromRecord(record []string) Row {
	return Row{
		ID:          record[0],
		User:        record[1],
		Day:         Weekday(record[2]),
		Order:       csvtable.Int(record[3], DefaultOrder),
		MuscleGroup: record[4],
		Exercise:    record[5],
		SetsReps:    record[6],
		GifURL:      record[7],
		GifKey:      record[8],
		AltGroup:    record[9],
	}
}

func (row Row) record() []string {
	return []string{
		row.ID,
		row.User,
		string(row.Day),
		strconv.Itoa(row.Order),
		row.MuscleGroup,
		row.Exercise,
		row.SetsReps,
		row.GifURL,
		row.GifKey,
		row.AltGroup,
	}
}

// rowsFromCSV decodes the table and assigns ids to legacy rows that are
// missing one. The returned flag says whether any id got assigned, i.e.
// whether the table needs a writeback to make the ids stick.
func rowsFromCSV(text string) (rows []Row, idsAssigned bool) {
	records := csvtable.Decode(text, columns)
	rows = make([]Row, 0, len(records))
	for _, record := range records {
		row := rowFromRecord(record)
		if row.ID == "" {
			row.ID = uuid.NewString()
			idsAssigned = true
		}
		rows = append(rows, row)
	}
	return rows, idsAssigned
}

func rowsToCSV(rows []Row) string {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return csvtable.Encode(columns, records)
}

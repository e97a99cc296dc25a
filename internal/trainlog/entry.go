// Package trainlog keeps the training log: one row per exercise done (or
// skipped) in a session, append-only. The log feeds the last-weight prefill
// on day views and the history screens.
package trainlog

import (
	"errors"

	"github.com/2beens/gymplan/internal/csvtable"
	"github.com/2beens/gymplan/internal/plan"
)

var (
	ErrEmptyUser     = errors.New("log entry user is empty")
	ErrEmptyExercise = errors.New("log entry exercise is empty")
)

// columns of Data/treino_log.csv
var columns = []string{"timestamp", "user", "dia", "grupo", "exercicio", "series_reps", "peso_kg", "feito"}

// Entry is one logged set block. Timestamp stays a string in the ISO UTC
// "2006-01-02T15:04:05Z" form the files use: it sorts lexicographically in
// chronological order and survives malformed legacy values untouched.
type Entry struct {
	Timestamp   string       `json:"timestamp"`
	User        string       `json:"user"`
	Day         plan.Weekday `json:"day"`
	MuscleGroup string       `json:"muscleGroup,omitempty"`
	Exercise    string       `json:"exercise"`
	SetsReps    string       `json:"setsReps,omitempty"`
	WeightKg    float64      `json:"weightKg"`
	Done        bool         `json:"done"`
}

func entryFromRecord(record []string) Entry {
	return Entry{
		Timestamp:   record[0],
		User:        record[1],
		Day:         plan.Weekday(record[2]),
		MuscleGroup: record[3],
		Exercise:    record[4],
		SetsReps:    record[5],
		WeightKg:    csvtable.Float(record[6]),
		Done:        csvtable.Bool01(record[7]),
	}
}

func (e Entry) record() []string {
	return []string{
		e.Timestamp,
		e.User,
		string(e.Day),
		e.MuscleGroup,
		e.Exercise,
		e.SetsReps,
		csvtable.FormatFloat(e.WeightKg),
		csvtable.FormatBool01(e.Done),
	}
}

func entriesFromCSV(text string) []Entry {
	records := csvtable.Decode(text, columns)
	entries := make([]Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, entryFromRecord(record))
	}
	return entries
}

func entriesToCSV(entries []Entry) string {
	records := make([][]string, 0, len(entries))
	for _, e := range entries {
		records = append(records, e.record())
	}
	return csvtable.Encode(columns, records)
}

// validate checks the required fields and canonicalizes the weekday, so a
// lowercase "segunda" lands in the file the same way as "Segunda" and stays
// visible to the exact day filters in the analyzer.
func (e *Entry) validate() error {
	if e.User == "" {
		return ErrEmptyUser
	}
	if e.Exercise == "" {
		return ErrEmptyExercise
	}
	day, err := plan.ParseWeekday(string(e.Day))
	if err != nil {
		return err
	}
	e.Day = day
	return nil
}

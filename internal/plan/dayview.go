package plan

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/2beens/gymplan/internal/catalog"

	log "github.com/sirupsen/logrus"
)

// DayExercise is one ready-to-train exercise in a day view: plan row merged
// with its catalog entry, plus the last logged weight as a starting point.
type DayExercise struct {
	RowID        string  `json:"rowId"`
	MuscleGroup  string  `json:"muscleGroup"`
	Exercise     string  `json:"exercise"`
	SetsReps     string  `json:"setsReps"`
	GifURL       string  `json:"gifUrl,omitempty"`
	AltGroup     string  `json:"altGroup,omitempty"`
	LastWeightKg float64 `json:"lastWeightKg"`
}

type catalogReader interface {
	All(ctx context.Context) ([]catalog.Entry, error)
}

type weightHistory interface {
	LastWeight(ctx context.Context, user string, day Weekday, exercise string) (float64, error)
}

// Materializer builds day views out of plan rows and the catalog. The weight
// history is optional, without it last weights simply stay 0.
type Materializer struct {
	planRepo    *Repo
	catalogRepo catalogReader
	history     weightHistory
}

func NewMaterializer(planRepo *Repo, catalogRepo catalogReader, history weightHistory) *Materializer {
	return &Materializer{
		planRepo:    planRepo,
		catalogRepo: catalogRepo,
		history:     history,
	}
}

// DayView returns the user's exercises for one day, in plan order. Rows with
// an empty exercise (weekday placeholders) are dropped. Fields left empty on
// the plan row fall back to the catalog entry of the same exercise name.
func (m *Materializer) DayView(ctx context.Context, user string, day Weekday) ([]DayExercise, error) {
	rows, err := m.planRepo.ForUser(ctx, user)
	if err != nil {
		return nil, err
	}

	dayRows := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row.Day != day || strings.TrimSpace(row.Exercise) == "" {
			continue
		}
		dayRows = append(dayRows, row)
	}
	// equal ordem keeps file order
	sort.SliceStable(dayRows, func(i, j int) bool {
		return dayRows[i].Order < dayRows[j].Order
	})

	entries, err := m.catalogRepo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog for day view: %w", err)
	}
	index := catalog.Index(entries)

	exercises := make([]DayExercise, 0, len(dayRows))
	for _, row := range dayRows {
		catEntry := index[strings.ToLower(strings.TrimSpace(row.Exercise))]

		exercise := DayExercise{
			RowID:       row.ID,
			MuscleGroup: firstNonEmpty(row.MuscleGroup, catEntry.MuscleGroup),
			Exercise:    row.Exercise,
			SetsReps:    row.SetsReps,
			GifURL:      firstNonEmpty(row.GifURL, catEntry.GifURL),
			AltGroup:    firstNonEmpty(row.AltGroup, catEntry.AltGroup),
		}

		if m.history != nil {
			lastWeight, err := m.history.LastWeight(ctx, user, day, row.Exercise)
			if err != nil {
				// prefill only, the view is still usable
				log.Errorf("day view, last weight for [%s][%s][%s]: %s", user, day, row.Exercise, err)
			} else {
				exercise.LastWeightKg = lastWeight
			}
		}

		exercises = append(exercises, exercise)
	}

	return exercises, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

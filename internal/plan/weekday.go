package plan

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownWeekday = errors.New("unknown weekday")

// Weekday is a training day. The plan covers Monday to Friday only and keeps
// the Portuguese day names the CSV files always used.
type Weekday string

const (
	Segunda Weekday = "Segunda"
	Terca   Weekday = "Terça"
	Quarta  Weekday = "Quarta"
	Quinta  Weekday = "Quinta"
	Sexta   Weekday = "Sexta"
)

// Weekdays in plan order.
var Weekdays = []Weekday{Segunda, Terca, Quarta, Quinta, Sexta}

func ParseWeekday(s string) (Weekday, error) {
	s = strings.TrimSpace(s)
	for _, day := range Weekdays {
		if strings.EqualFold(string(day), s) {
			return day, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownWeekday, s)
}

// Today maps the wall clock to a plan day. Weekends have no plan of their
// own, they fall back to Segunda so the edit screens always land somewhere.
func Today(now time.Time) Weekday {
	switch now.Weekday() {
	case time.Tuesday:
		return Terca
	case time.Wednesday:
		return Quarta
	case time.Thursday:
		return Quinta
	case time.Friday:
		return Sexta
	default:
		return Segunda
	}
}

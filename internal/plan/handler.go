package plan

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate go run github.com/golang/mock/mockgen -source=handler.go -destination=handler_mocks_test.go -package=plan

type planRepo interface {
	ForUser(ctx context.Context, user string) ([]Row, error)
	EnsureWeekdays(ctx context.Context, user string) ([]Row, error)
	Upsert(ctx context.Context, row Row) (Row, error)
	Delete(ctx context.Context, id string) error
}

type dayViewer interface {
	DayView(ctx context.Context, user string, day Weekday) ([]DayExercise, error)
}

type WeekDay struct {
	Day  Weekday `json:"day"`
	Rows []Row   `json:"rows"`
}

type WeekResponse struct {
	User string    `json:"user"`
	Days []WeekDay `json:"days"`
}

type DayViewResponse struct {
	User      string        `json:"user"`
	Day       Weekday       `json:"day"`
	Exercises []DayExercise `json:"exercises"`
}

type DeleteRowResponse struct {
	DeletedID string `json:"deletedId"`
}

type Handler struct {
	repo  planRepo
	views dayViewer
}

func NewHandler(repo planRepo, views dayViewer) *Handler {
	return &Handler{
		repo:  repo,
		views: views,
	}
}

// HandleWeek returns the user's whole week, all five days, raw plan rows.
func (handler *Handler) HandleWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.week")
	defer span.End()

	user := mux.Vars(r)["user"]
	if user == "" {
		http.Error(w, "error, user empty", http.StatusBadRequest)
		return
	}

	rows, err := handler.repo.EnsureWeekdays(ctx, user)
	if err != nil {
		log.Errorf("failed to get week plan for [%s]: %s", user, err)
		http.Error(w, "failed to get plan", http.StatusInternalServerError)
		return
	}

	byDay := make(map[Weekday][]Row, len(Weekdays))
	for _, row := range rows {
		byDay[row.Day] = append(byDay[row.Day], row)
	}

	weekResp := WeekResponse{User: user}
	for _, day := range Weekdays {
		weekResp.Days = append(weekResp.Days, WeekDay{Day: day, Rows: byDay[day]})
	}

	weekJson, err := json.Marshal(weekResp)
	if err != nil {
		log.Errorf("failed to marshal week plan: %s", err)
		http.Error(w, "failed to get plan", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, weekJson, http.StatusOK)
}

// HandleDay returns the materialized view of one training day. The special
// day value "today" resolves against the wall clock, weekends to Segunda.
func (handler *Handler) HandleDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.day")
	defer span.End()

	vars := mux.Vars(r)
	user := vars["user"]
	if user == "" {
		http.Error(w, "error, user empty", http.StatusBadRequest)
		return
	}

	var day Weekday
	if vars["day"] == "today" {
		day = Today(time.Now())
	} else {
		var err error
		if day, err = ParseWeekday(vars["day"]); err != nil {
			http.Error(w, "error, unknown weekday", http.StatusBadRequest)
			return
		}
	}

	if _, err := handler.repo.EnsureWeekdays(ctx, user); err != nil {
		log.Errorf("failed to ensure weekdays for [%s]: %s", user, err)
		http.Error(w, "failed to get day plan", http.StatusInternalServerError)
		return
	}

	exercises, err := handler.views.DayView(ctx, user, day)
	if err != nil {
		log.Errorf("failed to get day view [%s][%s]: %s", user, day, err)
		http.Error(w, "failed to get day plan", http.StatusInternalServerError)
		return
	}

	dayJson, err := json.Marshal(DayViewResponse{
		User:      user,
		Day:       day,
		Exercises: exercises,
	})
	if err != nil {
		log.Errorf("failed to marshal day view: %s", err)
		http.Error(w, "failed to get day plan", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, dayJson, http.StatusOK)
}

// HandleUpsert saves a plan row: with an id it updates that row in place,
// without one it appends a new row and returns the assigned id.
func (handler *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.upsert")
	defer span.End()

	var row Row
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		log.Errorf("upsert plan row, unmarshal json params: %s", err)
		http.Error(w, "save plan row failed", http.StatusBadRequest)
		return
	}

	savedRow, err := handler.repo.Upsert(ctx, row)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "plan row not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to upsert plan row [%s][%s]: %s", row.User, row.Day, err)
		http.Error(w, "error, failed to save plan row", http.StatusBadRequest)
		return
	}

	log.Debugf("plan row saved: [%s][%s] %s", savedRow.User, savedRow.Day, savedRow.ID)

	rowJson, err := json.Marshal(savedRow)
	if err != nil {
		log.Errorf("failed to marshal saved plan row: %s", err)
		http.Error(w, "error, failed to save plan row", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, rowJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.delete")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	err := handler.repo.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "plan row not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to delete plan row %s: %s", id, err)
		http.Error(w, "plan row not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(DeleteRowResponse{DeletedID: id})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}

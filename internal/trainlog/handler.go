package trainlog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/gymplan/internal/plan"
	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/pkg"

	log "github.com/sirupsen/logrus"
)

type logRepo interface {
	All(ctx context.Context) ([]Entry, error)
	Append(ctx context.Context, entries ...Entry) error
}

type logAnalyzer interface {
	LastWeight(ctx context.Context, user string, day plan.Weekday, exercise string) (float64, error)
	LastVariantChoice(ctx context.Context, user string, day plan.Weekday, candidates []string) (string, error)
	History(ctx context.Context, query HistoryQuery) ([]Entry, error)
}

type autoSaver interface {
	AutoSave(ctx context.Context, entry Entry) (bool, error)
}

type AutoSaveResponse struct {
	Saved bool `json:"saved"`
}

type LastWeightResponse struct {
	WeightKg float64 `json:"weightKg"`
}

type LastVariantResponse struct {
	Choice string `json:"choice"`
}

type HistoryResponse struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

type Handler struct {
	repo     logRepo
	analyzer logAnalyzer
	saver    autoSaver
}

func NewHandler(repo logRepo, analyzer logAnalyzer, saver autoSaver) *Handler {
	return &Handler{
		repo:     repo,
		analyzer: analyzer,
		saver:    saver,
	}
}

// HandleAutoSave is the debounced save behind the workout screen widgets.
// The response says whether this particular call got persisted.
func (handler *Handler) HandleAutoSave(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.trainlog.autosave")
	defer span.End()

	entry, ok := decodeEntry(w, r)
	if !ok {
		return
	}

	saved, err := handler.saver.AutoSave(ctx, entry)
	if isValidationErr(err) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("failed to auto save log entry [%s][%s]: %s", entry.User, entry.Exercise, err)
		http.Error(w, "error, failed to save log entry", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(AutoSaveResponse{Saved: saved})
	if err != nil {
		log.Errorf("failed to marshal auto save response: %s", err)
		http.Error(w, "error, failed to save log entry", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

// HandleAdd is the explicit save, it never debounces.
func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.trainlog.new")
	defer span.End()

	entry, ok := decodeEntry(w, r)
	if !ok {
		return
	}

	err := handler.repo.Append(ctx, entry)
	if isValidationErr(err) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("failed to add log entry [%s][%s]: %s", entry.User, entry.Exercise, err)
		http.Error(w, "error, failed to save log entry", http.StatusInternalServerError)
		return
	}

	log.Debugf("log entry added: [%s][%s] %s", entry.User, entry.Day, entry.Exercise)

	entryJson, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("failed to marshal log entry: %s", err)
		http.Error(w, "error, failed to save log entry", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entryJson, http.StatusCreated)
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.trainlog.history")
	defer span.End()

	params := r.URL.Query()
	user := params.Get("user")
	if user == "" {
		http.Error(w, "error, user empty", http.StatusBadRequest)
		return
	}

	query := HistoryQuery{
		User:     user,
		Exercise: params.Get("exercise"),
	}
	if dayParam := params.Get("day"); dayParam != "" {
		day, err := plan.ParseWeekday(dayParam)
		if err != nil {
			http.Error(w, "error, unknown weekday", http.StatusBadRequest)
			return
		}
		query.Day = day
	}
	if limitParam := params.Get("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil {
			http.Error(w, "error, limit NaN", http.StatusBadRequest)
			return
		}
		query.Limit = limit
	}

	entries, err := handler.analyzer.History(ctx, query)
	if err != nil {
		log.Errorf("failed to get log history for [%s]: %s", user, err)
		http.Error(w, "failed to get history", http.StatusInternalServerError)
		return
	}

	historyJson, err := json.Marshal(HistoryResponse{
		Entries: entries,
		Total:   len(entries),
	})
	if err != nil {
		log.Errorf("failed to marshal log history: %s", err)
		http.Error(w, "failed to get history", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, historyJson, http.StatusOK)
}

func (handler *Handler) HandleLastWeight(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.trainlog.lastweight")
	defer span.End()

	params := r.URL.Query()
	user := params.Get("user")
	exercise := params.Get("exercise")
	day, err := plan.ParseWeekday(params.Get("day"))
	if user == "" || exercise == "" || err != nil {
		http.Error(w, "error, user, day or exercise invalid", http.StatusBadRequest)
		return
	}

	lastWeight, err := handler.analyzer.LastWeight(ctx, user, day, exercise)
	if err != nil {
		log.Errorf("failed to get last weight [%s][%s][%s]: %s", user, day, exercise, err)
		http.Error(w, "failed to get last weight", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(LastWeightResponse{WeightKg: lastWeight})
	if err != nil {
		log.Errorf("failed to marshal last weight response: %s", err)
		http.Error(w, "failed to get last weight", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleLastVariant(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.trainlog.lastvariant")
	defer span.End()

	params := r.URL.Query()
	user := params.Get("user")
	day, err := plan.ParseWeekday(params.Get("day"))
	if user == "" || err != nil {
		http.Error(w, "error, user or day invalid", http.StatusBadRequest)
		return
	}

	candidates := make([]string, 0, 2)
	for _, candidate := range strings.Split(params.Get("candidates"), ",") {
		if candidate = strings.TrimSpace(candidate); candidate != "" {
			candidates = append(candidates, candidate)
		}
	}
	if len(candidates) == 0 {
		http.Error(w, "error, candidates empty", http.StatusBadRequest)
		return
	}

	choice, err := handler.analyzer.LastVariantChoice(ctx, user, day, candidates)
	if err != nil {
		log.Errorf("failed to get last variant [%s][%s]: %s", user, day, err)
		http.Error(w, "failed to get last variant", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(LastVariantResponse{Choice: choice})
	if err != nil {
		log.Errorf("failed to marshal last variant response: %s", err)
		http.Error(w, "failed to get last variant", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

// decodeEntry reads the entry from the request body and stamps it with the
// current time when the client sent no timestamp.
func decodeEntry(w http.ResponseWriter, r *http.Request) (Entry, bool) {
	var entry Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		log.Errorf("log entry, unmarshal json params: %s", err)
		http.Error(w, "save log entry failed", http.StatusBadRequest)
		return Entry{}, false
	}
	if entry.Timestamp == "" {
		entry.Timestamp = pkg.UTCTimestamp(time.Now())
	}
	// canonicalize the day here too, the echoed entry should match what is
	// stored; an unknown day is left for validation to reject
	if day, err := plan.ParseWeekday(string(entry.Day)); err == nil {
		entry.Day = day
	}
	return entry, true
}

func isValidationErr(err error) bool {
	return errors.Is(err, ErrEmptyUser) ||
		errors.Is(err, ErrEmptyExercise) ||
		errors.Is(err, plan.ErrUnknownWeekday)
}

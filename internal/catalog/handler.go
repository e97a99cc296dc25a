package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type catalogRepo interface {
	All(ctx context.Context) ([]Entry, error)
	Get(ctx context.Context, name string) (Entry, error)
	Insert(ctx context.Context, entry Entry) error
	Update(ctx context.Context, oldName string, entry Entry) error
	Delete(ctx context.Context, name string) error
}

type UpdateEntryRequest struct {
	OldName string `json:"oldName"`
	Entry
}

type DeleteEntryResponse struct {
	Deleted string `json:"deleted"`
}

type Handler struct {
	repo catalogRepo
}

func NewHandler(repo catalogRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

// HandleList returns catalog entries, optionally narrowed by a name search
// (?q=) and a muscle group (?group=), sorted by group then name.
func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.list")
	defer span.End()

	entries, err := handler.repo.All(ctx)
	if err != nil {
		log.Errorf("failed to list catalog: %s", err)
		http.Error(w, "failed to get exercises", http.StatusInternalServerError)
		return
	}

	entries = Filter(entries, r.URL.Query().Get("q"), r.URL.Query().Get("group"))

	entriesJson, err := json.Marshal(entries)
	if err != nil {
		log.Errorf("failed to marshal catalog entries: %s", err)
		http.Error(w, "failed to get exercises", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entriesJson, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.get")
	defer span.End()

	name := mux.Vars(r)["name"]
	if name == "" {
		http.Error(w, "error, name empty", http.StatusBadRequest)
		return
	}

	entry, err := handler.repo.Get(ctx, name)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to get exercise [%s]: %s", name, err)
		http.Error(w, "failed to get exercise", http.StatusInternalServerError)
		return
	}

	entryJson, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("failed to marshal exercise: %s", err)
		http.Error(w, "failed to get exercise", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entryJson, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.new")
	defer span.End()

	var entry Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		log.Errorf("new exercise, unmarshal json params: %s", err)
		http.Error(w, "add exercise failed", http.StatusBadRequest)
		return
	}

	err := handler.repo.Insert(ctx, entry)
	switch {
	case errors.Is(err, ErrEmptyName):
		http.Error(w, "error, exercise name empty", http.StatusBadRequest)
		return
	case errors.Is(err, ErrNameTaken):
		http.Error(w, "error, exercise name already taken", http.StatusConflict)
		return
	case err != nil:
		log.Errorf("failed to add exercise [%s]: %s", entry.Name, err)
		http.Error(w, "error, failed to add exercise", http.StatusInternalServerError)
		return
	}

	log.Debugf("new catalog exercise added: [%s] [%s]", entry.MuscleGroup, entry.Name)

	entryJson, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("failed to marshal new exercise: %s", err)
		http.Error(w, "error, failed to add exercise", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entryJson, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.update")
	defer span.End()

	var updateReq UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		log.Errorf("update exercise, unmarshal json params: %s", err)
		http.Error(w, "update exercise failed", http.StatusBadRequest)
		return
	}

	oldName := updateReq.OldName
	if oldName == "" {
		// plain edit without a rename
		oldName = updateReq.Name
	}

	err := handler.repo.Update(ctx, oldName, updateReq.Entry)
	switch {
	case errors.Is(err, ErrEmptyName):
		http.Error(w, "error, exercise name empty", http.StatusBadRequest)
		return
	case errors.Is(err, ErrNotFound):
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	case errors.Is(err, ErrNameTaken):
		http.Error(w, "error, exercise name already taken", http.StatusConflict)
		return
	case err != nil:
		log.Errorf("failed to update exercise [%s]: %s", oldName, err)
		http.Error(w, "error, failed to update exercise", http.StatusInternalServerError)
		return
	}

	entryJson, err := json.Marshal(updateReq.Entry)
	if err != nil {
		log.Errorf("failed to marshal updated exercise: %s", err)
		http.Error(w, "error, failed to update exercise", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entryJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.delete")
	defer span.End()

	name := mux.Vars(r)["name"]
	if name == "" {
		http.Error(w, "error, name empty", http.StatusBadRequest)
		return
	}

	err := handler.repo.Delete(ctx, name)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to delete exercise [%s]: %s", name, err)
		http.Error(w, "exercise not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(DeleteEntryResponse{Deleted: name})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}

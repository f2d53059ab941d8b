package routines

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/gymflow/internal/gymflow/fieldmap"
	"github.com/2beens/gymflow/internal/gymflow/workouts"
	"github.com/2beens/gymflow/internal/telemetry/tracing"
	"github.com/2beens/gymflow/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=routines_mocks_test.go -package=routines_test

type routinesRepo interface {
	List(ctx context.Context) ([]WorkoutRoutine, error)
	Get(ctx context.Context, id string) (*WorkoutRoutine, error)
	Create(ctx context.Context, routine WorkoutRoutine) (*WorkoutRoutine, error)
	Update(ctx context.Context, id string, assignments []fieldmap.Assignment) (*WorkoutRoutine, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	repo routinesRepo
}

func NewHandler(repo routinesRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.list")
	defer span.End()

	list, err := handler.repo.List(ctx)
	if err != nil {
		log.Errorf("failed to list routines: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to fetch routines")
		return
	}

	pkg.WriteJSONResponseOK(w, Filter(list, r.URL.Query().Get("filter")))
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.get")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "error, id empty")
		return
	}

	routine, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRoutineNotFound) {
			pkg.WriteJSONError(w, http.StatusNotFound, "Routine not found")
			return
		}
		log.Errorf("failed to get routine %s: %s", id, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to fetch routine")
		return
	}

	pkg.WriteJSONResponseOK(w, routine)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.create")
	defer span.End()

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid content type")
		return
	}

	var routine WorkoutRoutine
	if err := json.NewDecoder(r.Body).Decode(&routine); err != nil {
		log.Tracef("create routine, unmarshal json: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid routine body")
		return
	}

	if strings.TrimSpace(routine.Name) == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "error, routine name empty")
		return
	}
	if routine.Difficulty == "" {
		routine.Difficulty = DifficultyBeginner
	}
	if !routine.Difficulty.IsValid() {
		pkg.WriteJSONError(w, http.StatusBadRequest, "error, invalid difficulty")
		return
	}
	if routine.EstimatedDuration < 0 {
		pkg.WriteJSONError(w, http.StatusBadRequest, "error, negative estimated duration")
		return
	}

	// ids are always assigned here, a client supplied one is ignored
	routine.ID = uuid.NewString()

	saved, err := handler.repo.Create(ctx, routine)
	if err != nil {
		if errors.Is(err, ErrInvalidRoutine) {
			pkg.WriteJSONError(w, http.StatusBadRequest, "Invalid routine")
			return
		}
		log.Errorf("failed to create routine [%s]: %s", routine.Name, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to create routine")
		return
	}

	log.Debugf("routine created: %s [%s]", saved.ID, saved.Name)
	pkg.WriteJSON(w, http.StatusCreated, saved)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.update")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "error, id empty")
		return
	}

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid content type")
		return
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid routine body")
		return
	}

	assignments, err := Fields.Build(body)
	if err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := handler.repo.Update(ctx, id, assignments)
	if err != nil {
		switch {
		case errors.Is(err, ErrRoutineNotFound):
			pkg.WriteJSONError(w, http.StatusNotFound, "Routine not found")
		case errors.Is(err, ErrInvalidRoutine):
			pkg.WriteJSONError(w, http.StatusBadRequest, "Invalid routine")
		default:
			log.Errorf("failed to update routine %s: %s", id, err)
			pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to update routine")
		}
		return
	}

	pkg.WriteJSONResponseOK(w, updated)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.delete")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "error, id empty")
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrRoutineNotFound) {
			pkg.WriteJSONError(w, http.StatusNotFound, "Routine not found")
			return
		}
		log.Errorf("failed to delete routine %s: %s", id, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to delete routine")
		return
	}

	pkg.WriteJSONResponseOK(w, workouts.DeleteResponse{Success: true, ID: id})
}

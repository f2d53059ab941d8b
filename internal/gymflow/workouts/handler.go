package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/gymflow/internal/gymflow/fieldmap"
	"github.com/2beens/gymflow/internal/telemetry/tracing"
	"github.com/2beens/gymflow/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	List(ctx context.Context) ([]Workout, error)
	Get(ctx context.Context, id string) (*Workout, error)
	Create(ctx context.Context, w Workout) (*Workout, error)
	Update(ctx context.Context, id string, assignments []fieldmap.Assignment) (*Workout, error)
	Delete(ctx context.Context, id string) error
}

// CreateRequest is a Workout whose completed flag may be omitted (it then defaults to true).
type CreateRequest struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Date      time.Time         `json:"date"`
	Exercises []WorkoutExercise `json:"exercises"`
	Duration  int               `json:"duration"`
	Completed *bool             `json:"completed"`
}

type Handler struct {
	repo workoutsRepo
	now  func() time.Time
}

func NewHandler(repo workoutsRepo) *Handler {
	return &Handler{
		repo: repo,
		now:  time.Now,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	list, err := handler.repo.List(ctx)
	if err != nil {
		log.Errorf("failed to list workouts: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to fetch workout history")
		return
	}

	pkg.WriteJSONResponseOK(w, list)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "error, id empty")
		return
	}

	workout, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			pkg.WriteJSONError(w, http.StatusNotFound, "Workout not found")
			return
		}
		log.Errorf("failed to get workout %s: %s", id, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to fetch workout")
		return
	}

	pkg.WriteJSONResponseOK(w, workout)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.create")
	defer span.End()

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid content type")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("create workout, unmarshal json: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid workout body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "error, workout name empty")
		return
	}
	if req.Duration < 0 {
		pkg.WriteJSONError(w, http.StatusBadRequest, "error, negative duration")
		return
	}

	workout := Workout{
		ID:        req.ID,
		Name:      req.Name,
		Date:      req.Date,
		Exercises: req.Exercises,
		Duration:  req.Duration,
		Completed: true,
	}
	if workout.ID == "" {
		workout.ID = uuid.NewString()
	}
	if workout.Date.IsZero() {
		workout.Date = handler.now()
	}
	if req.Completed != nil {
		workout.Completed = *req.Completed
	}

	saved, err := handler.repo.Create(ctx, workout)
	if err != nil {
		switch {
		case errors.Is(err, ErrWorkoutExists):
			pkg.WriteJSONError(w, http.StatusConflict, "Workout already exists")
		case errors.Is(err, ErrInvalidWorkout):
			pkg.WriteJSONError(w, http.StatusBadRequest, "Invalid workout")
		default:
			log.Errorf("failed to save workout %s: %s", workout.ID, err)
			pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to save workout")
		}
		return
	}

	log.Debugf("workout saved: %s [%s]", saved.ID, saved.Name)
	pkg.WriteJSON(w, http.StatusCreated, saved)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.update")
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
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid workout body")
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
		case errors.Is(err, ErrWorkoutNotFound):
			pkg.WriteJSONError(w, http.StatusNotFound, "Workout not found")
		case errors.Is(err, ErrInvalidWorkout):
			pkg.WriteJSONError(w, http.StatusBadRequest, "Invalid workout")
		default:
			log.Errorf("failed to update workout %s: %s", id, err)
			pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to update workout")
		}
		return
	}

	pkg.WriteJSONResponseOK(w, updated)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "error, id empty")
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			pkg.WriteJSONError(w, http.StatusNotFound, "Workout not found")
			return
		}
		log.Errorf("failed to delete workout %s: %s", id, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to delete workout")
		return
	}

	pkg.WriteJSONResponseOK(w, DeleteResponse{Success: true, ID: id})
}

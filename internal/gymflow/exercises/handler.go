package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/gymflow/internal/telemetry/tracing"
	"github.com/2beens/gymflow/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=exercises_mocks_test.go -package=exercises_test

type exercisesRepo interface {
	List(ctx context.Context, muscleGroup string) ([]Exercise, error)
	Add(ctx context.Context, exercise Exercise) (*Exercise, error)
}

type Handler struct {
	repo exercisesRepo
}

func NewHandler(repo exercisesRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	list, err := handler.repo.List(ctx, r.URL.Query().Get("group"))
	if err != nil {
		log.Errorf("failed to list exercises: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to fetch exercises")
		return
	}

	pkg.WriteJSONResponseOK(w, list)
}

func (handler *Handler) HandleGroups(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.groups")
	defer span.End()

	list, err := handler.repo.List(ctx, "")
	if err != nil {
		log.Errorf("failed to list exercises: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to fetch exercises")
		return
	}

	pkg.WriteJSONResponseOK(w, GroupByMuscle(list))
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.add")
	defer span.End()

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid content type")
		return
	}

	var exercise Exercise
	if err := json.NewDecoder(r.Body).Decode(&exercise); err != nil {
		log.Tracef("add exercise, unmarshal json: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid exercise body")
		return
	}

	if strings.TrimSpace(exercise.Name) == "" || strings.TrimSpace(exercise.MuscleGroup) == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "error, exercise name or muscle group empty")
		return
	}
	if exercise.ID == "" {
		exercise.ID = uuid.NewString()
	}

	added, err := handler.repo.Add(ctx, exercise)
	if err != nil {
		if errors.Is(err, ErrExerciseExists) {
			pkg.WriteJSONError(w, http.StatusConflict, "Exercise already exists")
			return
		}
		log.Errorf("failed to add exercise [%s] [%s]: %s", exercise.MuscleGroup, exercise.Name, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to create exercise")
		return
	}

	log.Debugf("new exercise added: %s [%s]", added.ID, added.Name)
	pkg.WriteJSON(w, http.StatusCreated, added)
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/gymflow/internal/gymflow/gateway"
	"github.com/2beens/gymflow/internal/gymflow/progress"
	"github.com/2beens/gymflow/internal/gymflow/routines"
	"github.com/2beens/gymflow/internal/gymflow/workouts"
	"github.com/2beens/gymflow/internal/telemetry/tracing"
	"github.com/2beens/gymflow/pkg"
)

type routineGetter interface {
	GetRoutine(ctx context.Context, id string) (*routines.WorkoutRoutine, error)
}

type StateResponse struct {
	Workout *workouts.Workout `json:"workout"`
	Timer   *ActiveTimer      `json:"timer"`
	// Elapsed in seconds
	Elapsed int `json:"elapsed"`
}

type TimerResponse struct {
	Timer *ActiveTimer `json:"timer"`
}

type ChartsResponse struct {
	Durations []progress.DayPoint     `json:"durations"`
	Exercises []progress.WorkoutPoint `json:"exercises"`
}

type StartWorkoutRequest struct {
	Name string `json:"name"`
}

type AddExerciseRequest struct {
	ExerciseID string `json:"exerciseId"`
	Sets       int    `json:"sets"`
}

type RestTimeRequest struct {
	RestTime *int `json:"restTime"`
}

type StartTimerRequest struct {
	ExerciseID string `json:"exerciseId"`
	SetID      string `json:"setId"`
	Seconds    int    `json:"seconds"`
}

type Handler struct {
	store     *Store
	snapshots SnapshotStore
	routines  routineGetter
}

// NewHandler creates the session API handler. snapshots may be nil, the session then
// lives in memory only.
func NewHandler(store *Store, snapshots SnapshotStore, routines routineGetter) *Handler {
	return &Handler{
		store:     store,
		snapshots: snapshots,
		routines:  routines,
	}
}

func (handler *Handler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.state")
	defer span.End()

	pkg.WriteJSONResponseOK(w, StateResponse{
		Workout: handler.store.CurrentWorkout(),
		Timer:   handler.store.ActiveTimer(),
		Elapsed: int(handler.store.Elapsed().Seconds()),
	})
}

func (handler *Handler) HandleStartWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.workout.start")
	defer span.End()

	var req StartWorkoutRequest
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	workout, err := handler.store.StartWorkout(strings.TrimSpace(req.Name))
	handler.respondMutation(ctx, w, http.StatusCreated, workout, err)
}

func (handler *Handler) HandleStartFromRoutine(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.workout.start-routine")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "error, id empty")
		return
	}

	routine, err := handler.routines.GetRoutine(ctx, id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			pkg.WriteJSONError(w, http.StatusNotFound, "Routine not found")
			return
		}
		log.Errorf("start workout from routine %s: %s", id, err)
		pkg.WriteJSONError(w, gateway.StatusCode(err), "Failed to fetch routine")
		return
	}

	workout, err := handler.store.StartWorkoutFromRoutine(*routine)
	handler.respondMutation(ctx, w, http.StatusCreated, workout, err)
}

func (handler *Handler) HandleCompleteWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.workout.complete")
	defer span.End()

	workout, err := handler.store.CompleteWorkout(ctx)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	handler.saveSnapshot(ctx)
	pkg.WriteJSONResponseOK(w, workout)
}

func (handler *Handler) HandleAddExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.exercise.add")
	defer span.End()

	var req AddExerciseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ExerciseID == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "error, exerciseId empty")
		return
	}

	workout, err := handler.store.AddExercise(req.ExerciseID, req.Sets)
	handler.respondMutation(ctx, w, http.StatusOK, workout, err)
}

func (handler *Handler) HandleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.exercise.remove")
	defer span.End()

	workout, err := handler.store.RemoveExercise(mux.Vars(r)["id"])
	handler.respondMutation(ctx, w, http.StatusOK, workout, err)
}

func (handler *Handler) HandleAddSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.set.add")
	defer span.End()

	workout, err := handler.store.AddSet(mux.Vars(r)["id"])
	handler.respondMutation(ctx, w, http.StatusOK, workout, err)
}

func (handler *Handler) HandleRemoveSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.set.remove")
	defer span.End()

	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "error, invalid set index")
		return
	}

	workout, err := handler.store.RemoveSet(vars["id"], index)
	handler.respondMutation(ctx, w, http.StatusOK, workout, err)
}

func (handler *Handler) HandleUpdateSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.set.update")
	defer span.End()

	var update SetUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	vars := mux.Vars(r)
	workout, err := handler.store.UpdateSet(vars["id"], vars["setId"], update)
	handler.respondMutation(ctx, w, http.StatusOK, workout, err)
}

func (handler *Handler) HandleCompleteSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.set.complete")
	defer span.End()

	vars := mux.Vars(r)
	workout, err := handler.store.CompleteSet(vars["id"], vars["setId"])
	handler.respondMutation(ctx, w, http.StatusOK, workout, err)
}

func (handler *Handler) HandleUndoSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.set.undo")
	defer span.End()

	vars := mux.Vars(r)
	workout, err := handler.store.UndoSet(vars["id"], vars["setId"])
	handler.respondMutation(ctx, w, http.StatusOK, workout, err)
}

func (handler *Handler) HandleUpdateRestTime(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.exercise.rest")
	defer span.End()

	var req RestTimeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RestTime == nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "error, restTime missing")
		return
	}

	workout, err := handler.store.UpdateExerciseRestTime(mux.Vars(r)["id"], *req.RestTime)
	handler.respondMutation(ctx, w, http.StatusOK, workout, err)
}

func (handler *Handler) HandleGetTimer(w http.ResponseWriter, r *http.Request) {
	pkg.WriteJSONResponseOK(w, TimerResponse{Timer: handler.store.ActiveTimer()})
}

func (handler *Handler) HandleStartTimer(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.timer.start")
	defer span.End()

	var req StartTimerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	timer, err := handler.store.StartTimer(req.ExerciseID, req.SetID, req.Seconds)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	pkg.WriteJSONResponseOK(w, TimerResponse{Timer: timer})
}

func (handler *Handler) HandleStopTimer(w http.ResponseWriter, r *http.Request) {
	handler.store.StopTimer()
	pkg.WriteJSONResponseOK(w, TimerResponse{})
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	pkg.WriteJSONResponseOK(w, handler.store.History())
}

func (handler *Handler) HandleRefreshHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.history.refresh")
	defer span.End()

	if err := handler.store.RefreshHistory(ctx); err != nil {
		log.Errorf("refresh history: %s", err)
		pkg.WriteJSONError(w, http.StatusBadGateway, "Failed to fetch workout history")
		return
	}
	pkg.WriteJSONResponseOK(w, handler.store.History())
}

func (handler *Handler) HandleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.history.delete")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "error, id empty")
		return
	}

	if _, err := handler.store.DeleteWorkout(ctx, id); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			pkg.WriteJSONError(w, http.StatusNotFound, "Workout not found")
			return
		}
		pkg.WriteJSONError(w, http.StatusBadGateway, "Failed to delete workout")
		return
	}
	pkg.WriteJSONResponseOK(w, workouts.DeleteResponse{Success: true, ID: id})
}

func (handler *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	pkg.WriteJSONResponseOK(w, handler.store.Stats(period))
}

func (handler *Handler) HandleCharts(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	pkg.WriteJSONResponseOK(w, ChartsResponse{
		Durations: handler.store.DurationSeries(period),
		Exercises: progress.ExerciseCounts(handler.store.History(), progress.DefaultExerciseCountsLimit),
	})
}

func (handler *Handler) HandlePersonalBests(w http.ResponseWriter, r *http.Request) {
	pkg.WriteJSONResponseOK(w, handler.store.PersonalBests())
}

func (handler *Handler) HandlePreviousPerformance(w http.ResponseWriter, r *http.Request) {
	exerciseID := mux.Vars(r)["exerciseId"]
	prev := handler.store.PreviousPerformance(exerciseID)
	if prev == nil {
		pkg.WriteJSONError(w, http.StatusNotFound, "No previous performance")
		return
	}
	pkg.WriteJSONResponseOK(w, prev)
}

func (handler *Handler) respondMutation(ctx context.Context, w http.ResponseWriter, status int, workout *workouts.Workout, err error) {
	if err != nil {
		writeStoreError(w, err)
		return
	}
	handler.saveSnapshot(ctx)
	pkg.WriteJSON(w, status, workout)
}

// saveSnapshot stores the current workout, or clears the snapshot when there is none.
func (handler *Handler) saveSnapshot(ctx context.Context) {
	if handler.snapshots == nil {
		return
	}
	if err := handler.snapshots.Save(ctx, handler.store.CurrentWorkout()); err != nil {
		log.Warnf("save session snapshot: %s", err)
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrWorkoutInProgress):
		pkg.WriteJSONError(w, http.StatusConflict, "A workout is already in progress")
	case errors.Is(err, ErrNoActiveWorkout):
		pkg.WriteJSONError(w, http.StatusNotFound, "No active workout")
	case errors.Is(err, ErrSetNotFound):
		pkg.WriteJSONError(w, http.StatusNotFound, "Set not found")
	case errors.Is(err, ErrInvalidValue):
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
	default:
		log.Errorf("session: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Session error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid content type")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Tracef("session request, unmarshal json: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func parsePeriod(w http.ResponseWriter, r *http.Request) (progress.Period, bool) {
	period, err := progress.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return period, true
}

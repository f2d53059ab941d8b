package session

import (
	"github.com/gorilla/mux"
)

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/session", handler.HandleGetState).Methods("GET", "OPTIONS").Name("session-state")
	r.HandleFunc("/session/workout", handler.HandleStartWorkout).Methods("POST", "OPTIONS").Name("session-start")
	r.HandleFunc("/session/workout/routine/{id}", handler.HandleStartFromRoutine).Methods("POST", "OPTIONS").Name("session-start-routine")
	r.HandleFunc("/session/workout/complete", handler.HandleCompleteWorkout).Methods("POST", "OPTIONS").Name("session-complete")

	r.HandleFunc("/session/exercises", handler.HandleAddExercise).Methods("POST", "OPTIONS").Name("session-add-exercise")
	r.HandleFunc("/session/exercises/{id}", handler.HandleRemoveExercise).Methods("DELETE", "OPTIONS").Name("session-remove-exercise")
	r.HandleFunc("/session/exercises/{id}/rest", handler.HandleUpdateRestTime).Methods("PUT", "OPTIONS").Name("session-rest-time")
	r.HandleFunc("/session/exercises/{id}/sets", handler.HandleAddSet).Methods("POST", "OPTIONS").Name("session-add-set")
	r.HandleFunc("/session/exercises/{id}/sets/{index:[0-9]+}", handler.HandleRemoveSet).Methods("DELETE", "OPTIONS").Name("session-remove-set")
	r.HandleFunc("/session/exercises/{id}/sets/{setId}", handler.HandleUpdateSet).Methods("PATCH", "OPTIONS").Name("session-update-set")
	r.HandleFunc("/session/exercises/{id}/sets/{setId}/complete", handler.HandleCompleteSet).Methods("POST", "OPTIONS").Name("session-complete-set")
	r.HandleFunc("/session/exercises/{id}/sets/{setId}/undo", handler.HandleUndoSet).Methods("POST", "OPTIONS").Name("session-undo-set")

	r.HandleFunc("/session/timer", handler.HandleGetTimer).Methods("GET", "OPTIONS").Name("session-timer")
	r.HandleFunc("/session/timer", handler.HandleStartTimer).Methods("POST", "OPTIONS").Name("session-start-timer")
	r.HandleFunc("/session/timer", handler.HandleStopTimer).Methods("DELETE", "OPTIONS").Name("session-stop-timer")

	r.HandleFunc("/session/history", handler.HandleHistory).Methods("GET", "OPTIONS").Name("session-history")
	r.HandleFunc("/session/history/refresh", handler.HandleRefreshHistory).Methods("POST", "OPTIONS").Name("session-history-refresh")
	r.HandleFunc("/session/history/{id}", handler.HandleDeleteWorkout).Methods("DELETE", "OPTIONS").Name("session-history-delete")

	r.HandleFunc("/session/stats", handler.HandleStats).Methods("GET", "OPTIONS").Name("session-stats")
	r.HandleFunc("/session/stats/charts", handler.HandleCharts).Methods("GET", "OPTIONS").Name("session-charts")
	r.HandleFunc("/session/stats/bests", handler.HandlePersonalBests).Methods("GET", "OPTIONS").Name("session-bests")
	r.HandleFunc("/session/previous/{exerciseId}", handler.HandlePreviousPerformance).Methods("GET", "OPTIONS").Name("session-previous")
}

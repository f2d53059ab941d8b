//go:build integration

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/2beens/gymflow/internal/gymflow/progress"
	"github.com/2beens/gymflow/internal/gymflow/session"
	"github.com/2beens/gymflow/internal/gymflow/workouts"
	"github.com/2beens/gymflow/pkg"
)

func (s *IntegrationTestSuite) sessionRequest(method, path string, body any, wantStatus int, dst any) {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, serverEndpoint+path, reqBody)
	s.Require().NoError(err)
	req.Header.Set("User-Agent", "integration-test")
	if body != nil {
		req.Header.Set("Content-Type", pkg.ContentType.JSON)
	}

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Require().Equal(wantStatus, resp.StatusCode, "%s %s: %s", method, path, respBytes)

	if dst != nil {
		s.Require().NoError(json.Unmarshal(respBytes, dst))
	}
}

func (s *IntegrationTestSuite) TestSessionLifecycle() {
	ctx := context.Background()
	s.deleteAllWorkouts()
	s.sessionRequest("POST", "/session/history/refresh", nil, http.StatusOK, nil)

	var workout workouts.Workout
	s.sessionRequest("POST", "/session/workout", session.StartWorkoutRequest{Name: "Leg Day"}, http.StatusCreated, &workout)
	s.Equal("Leg Day", workout.Name)
	s.sessionRequest("POST", "/session/workout", session.StartWorkoutRequest{Name: "Again"}, http.StatusConflict, nil)

	s.sessionRequest("POST", "/session/exercises", session.AddExerciseRequest{ExerciseID: "squats", Sets: 2}, http.StatusOK, &workout)
	s.Require().Len(workout.Exercises, 1)
	we := workout.Exercises[0]
	s.Require().Len(we.Sets, 2)

	s.sessionRequest("PATCH", fmt.Sprintf("/session/exercises/%s/sets/%s", we.ID, we.Sets[0].ID),
		map[string]any{"weight": 100, "reps": 5}, http.StatusOK, &workout)
	s.sessionRequest("POST", fmt.Sprintf("/session/exercises/%s/sets/%s/complete", we.ID, we.Sets[0].ID), nil, http.StatusOK, &workout)
	s.True(workout.Exercises[0].Sets[0].Completed)

	var timer session.TimerResponse
	s.sessionRequest("GET", "/session/timer", nil, http.StatusOK, &timer)
	s.Require().NotNil(timer.Timer)
	s.Equal(we.Sets[0].ID, timer.Timer.SetID)
	s.sessionRequest("DELETE", "/session/timer", nil, http.StatusOK, nil)

	var state session.StateResponse
	s.sessionRequest("GET", "/session", nil, http.StatusOK, &state)
	s.Require().NotNil(state.Workout)
	s.Equal(workout.ID, state.Workout.ID)

	var completed workouts.Workout
	s.sessionRequest("POST", "/session/workout/complete", nil, http.StatusOK, &completed)
	s.Equal(workout.ID, completed.ID)
	s.True(completed.Completed)

	s.sessionRequest("GET", "/session", nil, http.StatusOK, &state)
	s.Nil(state.Workout)

	// persisted through the gateway
	persisted, err := s.client.GetWorkout(ctx, completed.ID)
	s.Require().NoError(err)
	s.Require().Len(persisted.Exercises, 1)
	s.Equal(100.0, persisted.Exercises[0].Sets[0].Weight)

	var prev progress.Previous
	s.sessionRequest("GET", "/session/previous/squats", nil, http.StatusOK, &prev)
	s.Equal(completed.ID, prev.WorkoutID)

	var stats progress.Stats
	s.sessionRequest("GET", "/session/stats?period=all", nil, http.StatusOK, &stats)
	s.Equal(1, stats.TotalWorkouts)
	s.Equal(1, stats.CurrentStreak)

	var deleted workouts.DeleteResponse
	s.sessionRequest("DELETE", "/session/history/"+completed.ID, nil, http.StatusOK, &deleted)
	s.True(deleted.Success)
	s.sessionRequest("DELETE", "/session/history/"+completed.ID, nil, http.StatusNotFound, nil)

	var history []workouts.Workout
	s.sessionRequest("GET", "/session/history", nil, http.StatusOK, &history)
	s.Empty(history)
}

func (s *IntegrationTestSuite) TestSessionWithoutWorkout() {
	s.sessionRequest("POST", "/session/exercises", session.AddExerciseRequest{ExerciseID: "squats"}, http.StatusNotFound, nil)
	s.sessionRequest("POST", "/session/workout/complete", nil, http.StatusNotFound, nil)
	s.sessionRequest("POST", "/session/workout/routine/missing", nil, http.StatusNotFound, nil)
}

package routines_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/gymflow/internal/gymflow/fieldmap"
	"github.com/2beens/gymflow/internal/gymflow/routines"
	"github.com/2beens/gymflow/internal/gymflow/workouts"
)

func newRequest(t *testing.T, method, target, body string, vars map[string]string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, target, bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func TestHandler_HandleList_Filter(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockroutinesRepo(ctrl)
	h := routines.NewHandler(repoMock)

	list := []routines.WorkoutRoutine{
		{ID: "a", Name: gofakeit.Name(), Category: "strength"},
		{ID: "b", Name: gofakeit.Name(), Category: "cardio", IsCustom: true},
	}
	repoMock.EXPECT().List(gomock.Any()).Return(list, nil).Times(3)

	for filter, wantIDs := range map[string][]string{
		"all":      {"a", "b"},
		"custom":   {"b"},
		"strength": {"a"},
	} {
		rec := httptest.NewRecorder()
		h.HandleList(rec, newRequest(t, "GET", "/api/routines?filter="+filter, "", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var got []routines.WorkoutRoutine
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		gotIDs := make([]string, 0, len(got))
		for _, r := range got {
			gotIDs = append(gotIDs, r.ID)
		}
		assert.Equal(t, wantIDs, gotIDs, filter)
	}
}

func TestHandler_HandleCreate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockroutinesRepo(ctrl)
	h := routines.NewHandler(repoMock)

	name := gofakeit.Name() + " routine"
	body := `{
		"id": "client-id",
		"name": "` + name + `",
		"category": "strength",
		"estimatedDuration": 45,
		"targetMuscleGroups": ["legs"],
		"exercises": [{"exerciseId": "squats", "name": "Squats", "sets": 3, "reps": 10, "restTime": 90}],
		"isCustom": true
	}`

	repoMock.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, r routines.WorkoutRoutine) (*routines.WorkoutRoutine, error) {
			assert.NotEqual(t, "client-id", r.ID)
			assert.NotEmpty(t, r.ID)
			assert.Equal(t, name, r.Name)
			assert.Equal(t, routines.DifficultyBeginner, r.Difficulty)
			assert.Equal(t, []string{"legs"}, r.TargetMuscleGroups)
			require.Len(t, r.Exercises, 1)
			assert.Equal(t, 3, r.Exercises[0].Sets)
			r.CreatedAt = time.Now()
			r.UpdatedAt = r.CreatedAt
			return &r, nil
		})

	rec := httptest.NewRecorder()
	h.HandleCreate(rec, newRequest(t, "POST", "", body, nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	var saved routines.WorkoutRoutine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, name, saved.Name)
	assert.True(t, saved.IsCustom)
}

func TestHandler_HandleCreate_Invalid(t *testing.T) {
	for name, body := range map[string]string{
		"no name":            `{"difficulty": "beginner"}`,
		"bad difficulty":     `{"name": "x", "difficulty": "expert"}`,
		"negative duration":  `{"name": "x", "estimatedDuration": -5}`,
		"broken json":        `{"name": "x",`,
		"wrong nested shape": `{"name": "x", "exercises": {"sets": 3}}`,
	} {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			h := routines.NewHandler(NewMockroutinesRepo(ctrl))
			rec := httptest.NewRecorder()
			h.HandleCreate(rec, newRequest(t, "POST", "", body, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_HandleUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockroutinesRepo(ctrl)
	h := routines.NewHandler(repoMock)

	repoMock.EXPECT().
		Update(gomock.Any(), "r-1", gomock.Any()).
		DoAndReturn(func(ctx context.Context, id string, assignments []fieldmap.Assignment) (*routines.WorkoutRoutine, error) {
			columns := make([]string, 0, len(assignments))
			for _, a := range assignments {
				columns = append(columns, a.Column)
			}
			// updatedAt from the client is ignored, the repo sets it
			assert.Equal(t, []string{"estimated_duration", "is_custom", "target_muscle_groups"}, columns)
			return &routines.WorkoutRoutine{ID: id, EstimatedDuration: 60, IsCustom: true, TargetMuscleGroups: []string{"back"}}, nil
		})

	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, newRequest(t, "PUT", "",
		`{"estimatedDuration": 60, "isCustom": true, "targetMuscleGroups": ["back"], "updatedAt": "2024-01-01T00:00:00Z"}`,
		map[string]string{"id": "r-1"},
	))
	require.Equal(t, http.StatusOK, rec.Code)

	var got routines.WorkoutRoutine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 60, got.EstimatedDuration)
}

func TestHandler_HandleUpdate_RejectsUnknownFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := routines.NewHandler(NewMockroutinesRepo(ctrl))

	for _, body := range []string{
		`{"estimated_duration": 60}`,
		`{"owner": "me"}`,
		`{"difficulty": "impossible"}`,
	} {
		rec := httptest.NewRecorder()
		h.HandleUpdate(rec, newRequest(t, "PUT", "", body, map[string]string{"id": "r-1"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestHandler_HandleGetAndDelete_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockroutinesRepo(ctrl)
	h := routines.NewHandler(repoMock)

	repoMock.EXPECT().Get(gomock.Any(), "x").Return(nil, routines.ErrRoutineNotFound)
	repoMock.EXPECT().Delete(gomock.Any(), "x").Return(routines.ErrRoutineNotFound)

	rec := httptest.NewRecorder()
	h.HandleGet(rec, newRequest(t, "GET", "", "", map[string]string{"id": "x"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "Routine not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.HandleDelete(rec, newRequest(t, "DELETE", "", "", map[string]string{"id": "x"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_HandleDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockroutinesRepo(ctrl)
	h := routines.NewHandler(repoMock)

	repoMock.EXPECT().Delete(gomock.Any(), "r-9").Return(nil)

	rec := httptest.NewRecorder()
	h.HandleDelete(rec, newRequest(t, "DELETE", "", "", map[string]string{"id": "r-9"}))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp workouts.DeleteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, workouts.DeleteResponse{Success: true, ID: "r-9"}, resp)
}

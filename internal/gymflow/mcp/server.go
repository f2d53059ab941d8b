package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2beens/gymflow/internal/gymflow/progress"
)

// NewServer builds an MCP server with the gymflow progress tools. cmd/gymflow_mcp runs
// it over stdio against the HTTP API, the service mounts it at /mcp over the repos.
func NewServer(gateway Gateway, engine *progress.Engine) *mcp.Server {
	h := NewHandler(NewProgressService(gateway, engine))
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "gymflow-progress",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_progress_stats",
		Description: "Returns workout statistics for a period (week, month, all): total workouts, total and average duration in minutes, current and longest day streak.",
	}, h.GetProgressStatsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_workout_history",
		Description: "Returns the most recent completed workouts with their exercises and sets. Optional: limit (default 10).",
	}, h.GetWorkoutHistoryTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_previous_performance",
		Description: "Returns the sets of the last workout that included the exercise, and its last completed set. Arg: exercise_id (e.g. squats). Use before a session to pick weights.",
	}, h.GetPreviousPerformanceTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_personal_bests",
		Description: "Returns the heaviest completed set per exercise, with reps and date.",
	}, h.GetPersonalBestsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_routines",
		Description: "Returns workout routines (templates). Optional filter: all, custom, or a category such as strength.",
	}, h.ListRoutinesTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_exercises",
		Description: "Returns the exercise catalog. Optional filter: muscle_group (e.g. chest, legs).",
	}, h.ListExercisesTool())

	return s
}

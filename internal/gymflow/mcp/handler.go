package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2beens/gymflow/internal/gymflow/progress"
)

// Handler handles MCP tool requests: parses input, calls the service, formats the result.
type Handler struct {
	service progressService
}

func NewHandler(service progressService) *Handler {
	return &Handler{
		service: service,
	}
}

type ProgressStatsInput struct {
	Period string `json:"period,omitempty" jsonschema:"One of week, month, all (default week)"`
}

func (h *Handler) GetProgressStatsTool() func(context.Context, *mcp.CallToolRequest, ProgressStatsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ProgressStatsInput) (*mcp.CallToolResult, any, error) {
		period, err := progress.ParsePeriod(in.Period)
		if err != nil {
			return errorResult("Invalid period: " + err.Error()), nil, nil
		}
		stats, err := h.service.Stats(ctx, period)
		if err != nil {
			return errorResult("Error calculating stats: " + err.Error()), nil, nil
		}
		return jsonResult(stats), nil, nil
	}
}

type WorkoutHistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max number of workouts, newest first (default 10)"`
}

func (h *Handler) GetWorkoutHistoryTool() func(context.Context, *mcp.CallToolRequest, WorkoutHistoryInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in WorkoutHistoryInput) (*mcp.CallToolResult, any, error) {
		history, err := h.service.History(ctx, in.Limit)
		if err != nil {
			return errorResult("Error fetching workout history: " + err.Error()), nil, nil
		}
		return jsonResult(history), nil, nil
	}
}

type PreviousPerformanceInput struct {
	ExerciseID string `json:"exercise_id" jsonschema:"Catalog exercise id (e.g. bench-press)"`
}

func (h *Handler) GetPreviousPerformanceTool() func(context.Context, *mcp.CallToolRequest, PreviousPerformanceInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in PreviousPerformanceInput) (*mcp.CallToolResult, any, error) {
		if in.ExerciseID == "" {
			return errorResult("exercise_id is required"), nil, nil
		}
		prev, err := h.service.PreviousPerformance(ctx, in.ExerciseID)
		if err != nil {
			return errorResult("Error fetching previous performance: " + err.Error()), nil, nil
		}
		if prev == nil {
			return textResult("No previous performance for " + in.ExerciseID), nil, nil
		}
		return jsonResult(prev), nil, nil
	}
}

func (h *Handler) GetPersonalBestsTool() func(context.Context, *mcp.CallToolRequest, any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ any) (*mcp.CallToolResult, any, error) {
		bests, err := h.service.PersonalBests(ctx)
		if err != nil {
			return errorResult("Error fetching personal bests: " + err.Error()), nil, nil
		}
		return jsonResult(bests), nil, nil
	}
}

type RoutinesInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"all, custom or a routine category (default all)"`
}

func (h *Handler) ListRoutinesTool() func(context.Context, *mcp.CallToolRequest, RoutinesInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in RoutinesInput) (*mcp.CallToolResult, any, error) {
		list, err := h.service.Routines(ctx, in.Filter)
		if err != nil {
			return errorResult("Error listing routines: " + err.Error()), nil, nil
		}
		return jsonResult(list), nil, nil
	}
}

type ExercisesInput struct {
	MuscleGroup string `json:"muscle_group,omitempty" jsonschema:"Filter by muscle group (e.g. chest, legs)"`
}

func (h *Handler) ListExercisesTool() func(context.Context, *mcp.CallToolRequest, ExercisesInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ExercisesInput) (*mcp.CallToolResult, any, error) {
		list, err := h.service.Exercises(ctx, in.MuscleGroup)
		if err != nil {
			return errorResult("Error listing exercises: " + err.Error()), nil, nil
		}
		return jsonResult(list), nil, nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return textResult(string(raw))
}

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/gymflow/internal/gymflow/exercises"
	"github.com/2beens/gymflow/internal/gymflow/routines"
	"github.com/2beens/gymflow/internal/gymflow/workouts"
	"github.com/2beens/gymflow/internal/telemetry/tracing"
	"github.com/2beens/gymflow/pkg"
)

const (
	DefaultUserAgent = "gymflowctl/1.0"
	defaultTimeout   = 10 * time.Second

	// the catalog is reference data, it rarely changes
	exercisesCacheKey    = "exercises"
	exercisesCacheExpire = 5 * 60
	cacheSize            = 5 * 1024 * 1024
)

// Client talks to the persistence API over HTTP.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	cache      *freecache.Cache
}

type ClientParams struct {
	BaseURL   string
	UserAgent string
	// HTTPClient is optional; by default a traced client with a 10s timeout is used.
	HTTPClient *http.Client
}

func NewClient(params ClientParams) *Client {
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	userAgent := params.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		baseURL:    strings.TrimRight(params.BaseURL, "/"),
		userAgent:  userAgent,
		httpClient: httpClient,
		cache:      freecache.NewCache(cacheSize),
	}
}

var _ Gateway = (*Client)(nil)

func (c *Client) ListExercises(ctx context.Context) (_ []exercises.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gateway.client.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var list []exercises.Exercise
	if cached, err := c.cache.Get([]byte(exercisesCacheKey)); err == nil {
		if err := json.Unmarshal(cached, &list); err == nil {
			span.SetAttributes(attribute.Bool("cached", true))
			return list, nil
		}
		log.Errorf("failed to unmarshal cached exercises: %s", err)
	}

	respBytes, err := c.do(ctx, http.MethodGet, "/api/exercises", nil)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(respBytes, &list); err != nil {
		return nil, fmt.Errorf("%w: unmarshal exercises: %s", ErrPersistenceFailure, err)
	}

	if err := c.cache.Set([]byte(exercisesCacheKey), respBytes, exercisesCacheExpire); err != nil {
		log.Errorf("failed to cache exercises: %s", err)
	}
	return list, nil
}

// InvalidateCache drops the cached exercise catalog.
func (c *Client) InvalidateCache() {
	c.cache.Del([]byte(exercisesCacheKey))
}

func (c *Client) ListRoutines(ctx context.Context) (_ []routines.WorkoutRoutine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gateway.client.routines.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var list []routines.WorkoutRoutine
	if err := c.doJSON(ctx, http.MethodGet, "/api/routines", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetRoutine(ctx context.Context, id string) (_ *routines.WorkoutRoutine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gateway.client.routines.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var routine routines.WorkoutRoutine
	if err := c.doJSON(ctx, http.MethodGet, "/api/routines/"+id, nil, &routine); err != nil {
		return nil, err
	}
	return &routine, nil
}

func (c *Client) CreateRoutine(ctx context.Context, routine routines.WorkoutRoutine) (_ *routines.WorkoutRoutine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gateway.client.routines.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var created routines.WorkoutRoutine
	if err := c.doJSON(ctx, http.MethodPost, "/api/routines", routine, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateRoutine(ctx context.Context, id string, partial map[string]any) (_ *routines.WorkoutRoutine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gateway.client.routines.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var updated routines.WorkoutRoutine
	if err := c.doJSON(ctx, http.MethodPut, "/api/routines/"+id, partial, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteRoutine(ctx context.Context, id string) (_ *workouts.DeleteResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gateway.client.routines.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var resp workouts.DeleteResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/api/routines/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListWorkouts(ctx context.Context) (_ []workouts.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gateway.client.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var list []workouts.Workout
	if err := c.doJSON(ctx, http.MethodGet, "/api/workouts", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetWorkout(ctx context.Context, id string) (_ *workouts.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gateway.client.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var w workouts.Workout
	if err := c.doJSON(ctx, http.MethodGet, "/api/workouts/"+id, nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *Client) CreateWorkout(ctx context.Context, w workouts.Workout) (_ *workouts.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gateway.client.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.id", w.ID))

	var created workouts.Workout
	if err := c.doJSON(ctx, http.MethodPost, "/api/workouts", w, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateWorkout(ctx context.Context, id string, partial map[string]any) (_ *workouts.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gateway.client.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var updated workouts.Workout
	if err := c.doJSON(ctx, http.MethodPut, "/api/workouts/"+id, partial, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteWorkout(ctx context.Context, id string) (_ *workouts.DeleteResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gateway.client.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.id", id))

	var resp workouts.DeleteResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/api/workouts/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dst any) error {
	respBytes, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(respBytes, dst); err != nil {
		return fmt.Errorf("%w: unmarshal %s %s response: %s", ErrPersistenceFailure, method, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", pkg.ContentType.JSON)
	if body != nil {
		req.Header.Set("Content-Type", pkg.ContentType.JSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %s", ErrPersistenceFailure, method, path, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s response: %s", ErrPersistenceFailure, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var errResp pkg.ErrorResponse
		if json.Unmarshal(respBytes, &errResp) == nil && errResp.Error != "" {
			statusErr.Message = errResp.Error
		} else {
			statusErr.Message = strings.TrimSpace(string(respBytes))
		}
		return nil, statusErr
	}
	return respBytes, nil
}

package musclemaprenderer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/image/font"

	shared "github.com/fitglue/musclemap/pkg"
	"github.com/fitglue/musclemap/pkg/domain/activity"
	"github.com/fitglue/musclemap/pkg/domain/geometry"
	"github.com/fitglue/musclemap/pkg/domain/knowledge"
	"github.com/fitglue/musclemap/pkg/domain/render"
	"github.com/fitglue/musclemap/pkg/framework"
	httputil "github.com/fitglue/musclemap/pkg/infrastructure/http"
	"github.com/fitglue/musclemap/pkg/infrastructure/sentry"
	"github.com/fitglue/musclemap/pkg/musclemap"
)

// MaxRequestBytes bounds render request bodies; FIT uploads are base64 inline.
const MaxRequestBytes = 32 << 20

const requestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// Deps are the collaborators of an App.
type Deps struct {
	Knowledge    *knowledge.KB
	Geometry     *geometry.Geometry
	Face         font.Face
	Store        shared.BlobStore
	Pub          shared.Publisher
	AssetsBucket string
	Logger       *slog.Logger
}

// App serves the muscle map over HTTP and renders assets for Pub/Sub triggers.
type App struct {
	deps   Deps
	engine *musclemap.Engine
	logger *slog.Logger
	router chi.Router
}

// NewApp wires the engine and router.
func NewApp(deps Deps) *App {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		deps:   deps,
		logger: logger,
		engine: &musclemap.Engine{
			Knowledge: deps.Knowledge,
			Geometry:  deps.Geometry,
			Face:      deps.Face,
			Logger:    logger.With("component", "engine"),
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(a.withRequestID)
	r.Use(a.recoverer)
	r.Get("/healthz", a.handleHealth)
	r.Get("/exercises", a.handleExercises)
	r.Get("/exercises/{id}", a.handleExercise)
	r.Post("/render", a.handleRender)
	a.router = r
	return a
}

// ServeHTTP implements http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (a *App) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				id := requestID(r.Context())
				err := fmt.Errorf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				a.logger.Error("Request panicked", "error", err, "request_id", id)
				sentry.CaptureException(err, map[string]string{"request_id": id}, a.logger)
				httputil.WriteError(w, err, id)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"geometry": a.deps.Geometry != nil,
	})
}

// ExercisesResponse lists the knowledge base.
type ExercisesResponse struct {
	Count     int             `json:"count"`
	Exercises knowledge.Table `json:"exercises"`
}

func (a *App) handleExercises(w http.ResponseWriter, r *http.Request) {
	table := a.deps.Knowledge.Table()
	httputil.WriteJSON(w, http.StatusOK, ExercisesResponse{Count: len(table), Exercises: table})
}

func (a *App) handleExercise(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, ok := a.deps.Knowledge.Lookup(id)
	if !ok {
		httputil.WriteError(w, httputil.NewError(http.StatusNotFound, fmt.Sprintf("exercise %s is not known", id), nil), requestID(r.Context()))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

// RenderResponse is the JSON body of a successful render.
type RenderResponse struct {
	RequestID string               `json:"requestId"`
	HeatMap   string               `json:"heatMap"`
	Radial    render.RadialChart   `json:"radial"`
	NoData    bool                 `json:"noData"`
	Records   int                  `json:"records"`
	Palette   string               `json:"palette"`
	Stats     activity.DecodeStats `json:"stats"`
	Warnings  []string             `json:"warnings,omitempty"`
}

func (a *App) handleRender(w http.ResponseWriter, r *http.Request) {
	id := requestID(r.Context())
	logger := a.logger.With("request_id", id)

	var in musclemap.RenderInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBytes)).Decode(&in); err != nil {
		httputil.WriteError(w, httputil.NewError(http.StatusBadRequest, "Invalid request body", err), id)
		return
	}

	res, stats, err := a.render(r.Context(), in, logger)
	if err != nil {
		if errors.Is(err, musclemap.ErrInvalidInput) || errors.Is(err, knowledge.ErrInvalidMapping) {
			httputil.WriteError(w, httputil.BadRequest(err), id)
			return
		}
		logger.Error("Render failed", "error", err)
		sentry.CaptureException(err, map[string]string{"request_id": id}, logger)
		httputil.WriteError(w, err, id)
		return
	}

	if r.URL.Query().Get("format") == "png" {
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.HeatMap)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, RenderResponse{
		RequestID: id,
		HeatMap:   render.DataURI(res.HeatMap),
		Radial:    res.Radial,
		NoData:    res.NoData,
		Records:   res.Records,
		Palette:   res.Palette,
		Stats:     stats,
		Warnings:  musclemap.WarningStrings(res.Warnings),
	})
}

// render decodes in and runs the engine with the caller's answers in scope.
// Persistence warnings are reported to Sentry and returned with the result.
func (a *App) render(ctx context.Context, in musclemap.RenderInput, logger *slog.Logger) (*musclemap.Result, activity.DecodeStats, error) {
	decoded, err := in.Decode()
	if err != nil {
		return nil, activity.DecodeStats{}, err
	}
	logger.Info("Decoded render input",
		"total", decoded.Stats.Total,
		"kept", decoded.Stats.Kept,
		"bad_timestamp", decoded.Stats.BadTimestamp,
		"no_sets", decoded.Stats.NoSets,
		"answers", len(decoded.Answers),
	)

	if decoded.Answers != nil {
		ctx = knowledge.WithAnswers(ctx, decoded.Answers)
	}
	res, err := a.engine.Render(ctx, decoded.Request)
	if err != nil {
		return nil, decoded.Stats, err
	}
	for _, w := range res.Warnings {
		sentry.CaptureWarning(w, map[string]string{"request_id": requestID(ctx)}, logger)
	}
	return res, decoded.Stats, nil
}

// AssetRequest is the Pub/Sub payload of RenderMuscleMapAsset.
type AssetRequest struct {
	musclemap.RenderInput
	RequestID string `json:"requestId,omitempty"`
	// Object overrides the default heatmaps/<requestId>.png destination.
	Object string `json:"object,omitempty"`
}

// HandleAsset renders the heat map into the assets bucket alongside the
// radial chart JSON, then announces it.
func (a *App) HandleAsset(ctx context.Context, e event.Event, fwCtx *framework.FrameworkContext) (interface{}, error) {
	if a.deps.AssetsBucket == "" || a.deps.Store == nil {
		return nil, errors.New("ASSETS_BUCKET is not configured")
	}

	var req AssetRequest
	if err := json.Unmarshal(fwCtx.Payload, &req); err != nil {
		return nil, fmt.Errorf("failed to decode asset request: %w", err)
	}
	if req.RequestID == "" {
		req.RequestID = fwCtx.ExecutionID
	}
	if req.Object == "" {
		req.Object = fmt.Sprintf("heatmaps/%s.png", req.RequestID)
	}
	ctx = context.WithValue(ctx, requestIDKey{}, req.RequestID)

	res, _, err := a.render(ctx, req.RenderInput, fwCtx.Logger)
	if err != nil {
		return nil, err
	}

	if err := a.deps.Store.Write(ctx, a.deps.AssetsBucket, req.Object, res.HeatMap); err != nil {
		return nil, fmt.Errorf("failed to store heat map: %w", err)
	}
	radial, err := json.Marshal(res.Radial)
	if err != nil {
		return nil, fmt.Errorf("failed to encode radial chart: %w", err)
	}
	radialObject := radialObjectFor(req.Object)
	if err := a.deps.Store.Write(ctx, a.deps.AssetsBucket, radialObject, radial); err != nil {
		return nil, fmt.Errorf("failed to store radial chart: %w", err)
	}

	rendered := musclemap.Rendered{
		RequestID: req.RequestID,
		Bucket:    a.deps.AssetsBucket,
		Object:    req.Object,
		Records:   res.Records,
		NoData:    res.NoData,
		Palette:   res.Palette,
		Warnings:  musclemap.WarningStrings(res.Warnings),
	}
	msgID, err := musclemap.PublishRendered(ctx, a.deps.Pub, rendered)
	if err != nil {
		return nil, fmt.Errorf("failed to publish rendered event: %w", err)
	}

	return map[string]interface{}{
		"status":     "success",
		"object":     req.Object,
		"radial":     radialObject,
		"message_id": msgID,
	}, nil
}

func radialObjectFor(object string) string {
	return strings.TrimSuffix(object, ".png") + ".radial.json"
}

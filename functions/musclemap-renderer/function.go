package musclemaprenderer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/fitglue/musclemap/pkg/bootstrap"
	"github.com/fitglue/musclemap/pkg/domain/knowledge"
	"github.com/fitglue/musclemap/pkg/framework"
	httputil "github.com/fitglue/musclemap/pkg/infrastructure/http"
	"github.com/fitglue/musclemap/pkg/infrastructure/sentry"
	"github.com/fitglue/musclemap/pkg/musclemap"
)

const serviceName = "musclemap-renderer"

var (
	app     *App
	svc     *bootstrap.Service
	appOnce sync.Once
	appErr  error
)

func init() {
	functions.HTTP("RenderMuscleMap", RenderMuscleMap)
	functions.CloudEvent("RenderMuscleMapAsset", RenderMuscleMapAsset)
}

func initApp(ctx context.Context) (*App, error) {
	appOnce.Do(func() {
		baseSvc, err := bootstrap.NewService(ctx)
		if err != nil {
			slog.Error("Failed to initialize service", "error", err)
			appErr = err
			return
		}
		svc = baseSvc
		logger := bootstrap.NewLogger(serviceName)

		_ = sentry.Init(sentry.Config{
			DSN:         svc.Config.SentryDSN,
			Environment: svc.Config.Environment,
			ServerName:  serviceName,
		}, logger)

		app, appErr = newAppFromService(ctx, svc, logger)
	})
	return app, appErr
}

// newAppFromService loads the knowledge base and geometry. A knowledge base
// that fails to load is fatal so the durable table is never overwritten.
func newAppFromService(ctx context.Context, svc *bootstrap.Service, logger *slog.Logger) (*App, error) {
	kb := knowledge.New(svc.Knowledge,
		knowledge.Chain(knowledge.ContextElicitor{}, knowledge.FallbackElicitor{}),
		knowledge.WithLogger(logger.With("component", "knowledge")),
		knowledge.WithLearnedHook(musclemap.PublishLearned(svc.Pub, logger.With("component", "events"))),
	)
	if err := kb.Load(ctx); err != nil {
		return nil, err
	}

	geo, err := svc.LoadGeometry(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load geometry: %w", err)
	}
	if geo.Dropped() > 0 || len(geo.Skipped()) > 0 {
		logger.Warn("Geometry loaded with omissions", "dropped_paths", geo.Dropped(), "skipped_keys", geo.Skipped())
	}

	face, err := svc.LoadFace()
	if err != nil {
		return nil, fmt.Errorf("failed to load caption font: %w", err)
	}

	return NewApp(Deps{
		Knowledge:    kb,
		Geometry:     geo,
		Face:         face,
		Store:        svc.Store,
		Pub:          svc.Pub,
		AssetsBucket: svc.Config.AssetsBucket,
		Logger:       logger,
	}), nil
}

// RenderMuscleMap is the HTTP entry point
func RenderMuscleMap(w http.ResponseWriter, r *http.Request) {
	a, err := initApp(r.Context())
	if err != nil {
		slog.Error("Service init failed", "error", err)
		httputil.WriteError(w, err, "")
		return
	}
	a.ServeHTTP(w, r)
}

// RenderMuscleMapAsset is the Pub/Sub entry point
func RenderMuscleMapAsset(ctx context.Context, e event.Event) error {
	a, err := initApp(ctx)
	if err != nil {
		return fmt.Errorf("service init: %w", err)
	}
	return framework.WrapCloudEvent(serviceName, svc, a.HandleAsset)(ctx, e)
}

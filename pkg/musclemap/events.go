package musclemap

import (
	"context"
	"log/slog"
	"time"

	shared "github.com/fitglue/musclemap/pkg"
	"github.com/fitglue/musclemap/pkg/domain/knowledge"
	"github.com/fitglue/musclemap/pkg/domain/muscle"
	infrapubsub "github.com/fitglue/musclemap/pkg/infrastructure/pubsub"
)

// ExerciseLearned is published whenever the knowledge base learns a mapping.
type ExerciseLearned struct {
	ExerciseID string         `json:"exerciseId"`
	Primary    []muscle.Group `json:"primary"`
	Secondary  []muscle.Group `json:"secondary"`
	LearnedAt  time.Time      `json:"learnedAt"`
}

// Rendered is published after a heat map has been written to the assets bucket.
type Rendered struct {
	RequestID string   `json:"requestId"`
	Bucket    string   `json:"bucket"`
	Object    string   `json:"object"`
	Records   int      `json:"records"`
	NoData    bool     `json:"noData"`
	Palette   string   `json:"palette"`
	Warnings  []string `json:"warnings,omitempty"`
}

// PublishLearned returns a hook that announces learned exercises. Publish
// failures are logged; the mapping itself is already stored.
func PublishLearned(pub shared.Publisher, logger *slog.Logger) knowledge.LearnedHook {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, exerciseID string, m knowledge.Mapping) {
		e, err := infrapubsub.NewCloudEvent(shared.EventSource, shared.EventTypeExerciseLearned, ExerciseLearned{
			ExerciseID: exerciseID,
			Primary:    m.Primary,
			Secondary:  m.Secondary,
			LearnedAt:  time.Now().UTC(),
		})
		if err != nil {
			logger.Error("Failed to build learned event", "exercise", exerciseID, "error", err)
			return
		}
		if _, err := pub.PublishCloudEvent(ctx, shared.TopicExerciseLearned, e); err != nil {
			logger.Warn("Failed to publish learned event", "exercise", exerciseID, "error", err)
			return
		}
		logger.Info("Published learned exercise", "exercise", exerciseID, "event_id", e.ID())
	}
}

// PublishRendered announces a stored heat map.
func PublishRendered(ctx context.Context, pub shared.Publisher, r Rendered) (string, error) {
	e, err := infrapubsub.NewCloudEvent(shared.EventSource, shared.EventTypeMuscleMapRendered, r)
	if err != nil {
		return "", err
	}
	return pub.PublishCloudEvent(ctx, shared.TopicMuscleMapRendered, e)
}

// WarningStrings flattens warnings for JSON payloads.
func WarningStrings(warnings []error) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.Error()
	}
	return out
}

package framework

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/google/uuid"

	"github.com/fitglue/musclemap/pkg/bootstrap"
	"github.com/fitglue/musclemap/pkg/infrastructure/sentry"
)

// PubSubMessage is the envelope Pub/Sub triggers deliver as CloudEvent data.
type PubSubMessage struct {
	Message struct {
		Data       []byte            `json:"data"`
		Attributes map[string]string `json:"attributes"`
		ID         string            `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// FrameworkContext contains dependencies injected by the framework
type FrameworkContext struct {
	Service     *bootstrap.Service
	Logger      *slog.Logger
	ExecutionID string
	// Payload is the unwrapped message data for Pub/Sub triggers and the raw
	// event data otherwise.
	Payload []byte
}

// HandlerFunc is the signature for a cloud function handler
type HandlerFunc func(ctx context.Context, e event.Event, fwCtx *FrameworkContext) (interface{}, error)

// WrapCloudEvent wraps a handler with execution logging, panic recovery and
// Sentry capture. Handles both HTTP and Pub/Sub triggers.
func WrapCloudEvent(serviceName string, svc *bootstrap.Service, handler HandlerFunc) func(context.Context, event.Event) error {
	return func(ctx context.Context, e event.Event) (err error) {
		payload, execID := extractEventMetadata(e)

		triggerType := "pubsub"
		if e.Type() == "google.cloud.functions.http" {
			triggerType = "http"
		}

		logger := bootstrap.NewLogger(serviceName).With(
			"execution_id", execID,
			"trigger", triggerType,
			"event_type", e.Type(),
		)
		tags := map[string]string{"service": serviceName, "execution_id": execID}

		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic in %s: %v", serviceName, r)
				logger.Error("Function panicked", "error", err)
				sentry.CaptureException(err, tags, logger)
				sentry.Flush(2 * time.Second)
			}
		}()

		start := time.Now()
		logger.Info("Function started")

		fwCtx := &FrameworkContext{
			Service:     svc,
			Logger:      logger,
			ExecutionID: execID,
			Payload:     payload,
		}

		outputs, handlerErr := handler(ctx, e, fwCtx)
		if handlerErr != nil {
			logger.Error("Function failed", "error", handlerErr, "duration_ms", time.Since(start).Milliseconds())
			sentry.CaptureException(handlerErr, tags, logger)
			return handlerErr
		}

		logger.Info("Function completed successfully",
			"duration_ms", time.Since(start).Milliseconds(),
			"outputs", outputs,
		)
		return nil
	}
}

// extractEventMetadata unwraps a Pub/Sub envelope and picks the execution id:
// the execution_id attribute when present, otherwise a fresh uuid.
func extractEventMetadata(e event.Event) (payload []byte, execID string) {
	payload = e.Data()

	var msg PubSubMessage
	if err := json.Unmarshal(e.Data(), &msg); err == nil && msg.Message.Data != nil {
		payload = msg.Message.Data
		if id, ok := msg.Message.Attributes["execution_id"]; ok && id != "" {
			execID = id
		}
	}

	if execID == "" {
		if id, ok := e.Extensions()["executionid"].(string); ok && id != "" {
			execID = id
		}
	}
	if execID == "" {
		execID = uuid.NewString()
	}
	return payload, execID
}

package shared

import (
	"context"
	"errors"

	"github.com/cloudevents/sdk-go/v2/event"
)

// ErrNotFound is returned by stores when the requested object does not exist.
var ErrNotFound = errors.New("not found")

// --- Messaging Interfaces ---

type Publisher interface {
	PublishCloudEvent(ctx context.Context, topic string, e event.Event) (string, error)
}

// --- Storage Interfaces ---

// BlobStore reads and writes whole objects. Read returns an error wrapping
// ErrNotFound when the object is missing.
type BlobStore interface {
	Write(ctx context.Context, bucket, object string, data []byte) error
	Read(ctx context.Context, bucket, object string) ([]byte, error)
}

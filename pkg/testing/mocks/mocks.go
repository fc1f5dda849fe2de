package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudevents/sdk-go/v2/event"

	shared "github.com/fitglue/musclemap/pkg"
)

// --- Mock Publisher ---
type MockPublisher struct {
	PublishCloudEventFunc func(ctx context.Context, topic string, e event.Event) (string, error)

	mu        sync.Mutex
	Published []PublishedEvent
}

type PublishedEvent struct {
	Topic string
	Event event.Event
}

func (m *MockPublisher) PublishCloudEvent(ctx context.Context, topic string, e event.Event) (string, error) {
	m.mu.Lock()
	m.Published = append(m.Published, PublishedEvent{Topic: topic, Event: e})
	m.mu.Unlock()
	if m.PublishCloudEventFunc != nil {
		return m.PublishCloudEventFunc(ctx, topic, e)
	}
	return "msg-id", nil
}

// --- Mock Storage ---
type MockBlobStore struct {
	WriteFunc func(ctx context.Context, bucket, object string, data []byte) error
	ReadFunc  func(ctx context.Context, bucket, object string) ([]byte, error)
}

func (m *MockBlobStore) Write(ctx context.Context, bucket, object string, data []byte) error {
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, bucket, object, data)
	}
	return nil
}
func (m *MockBlobStore) Read(ctx context.Context, bucket, object string) ([]byte, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, bucket, object)
	}
	return nil, fmt.Errorf("gs://%s/%s: %w", bucket, object, shared.ErrNotFound)
}

// MemoryBlobStore keeps objects in a map. Useful when a test needs writes to
// be visible to later reads.
type MemoryBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{objects: make(map[string][]byte)}
}

func (m *MemoryBlobStore) Write(ctx context.Context, bucket, object string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+object] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryBlobStore) Read(ctx context.Context, bucket, object string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[bucket+"/"+object]
	if !ok {
		return nil, fmt.Errorf("gs://%s/%s: %w", bucket, object, shared.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

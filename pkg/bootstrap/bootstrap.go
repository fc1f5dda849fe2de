package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"golang.org/x/image/font"
	"google.golang.org/api/option"

	shared "github.com/fitglue/musclemap/pkg"
	"github.com/fitglue/musclemap/pkg/domain/geometry"
	"github.com/fitglue/musclemap/pkg/domain/knowledge"
	"github.com/fitglue/musclemap/pkg/domain/render"
	"github.com/fitglue/musclemap/pkg/infrastructure/database"
	infrapubsub "github.com/fitglue/musclemap/pkg/infrastructure/pubsub"
	infrastorage "github.com/fitglue/musclemap/pkg/infrastructure/storage"
)

// Knowledge store backends selectable with KNOWLEDGE_STORE.
const (
	StoreFile      = "file"
	StoreGCS       = "gcs"
	StoreFirestore = "firestore"
	StoreSQLite    = "sqlite"
)

const (
	defaultKnowledgePath   = "exercise_mappings.json"
	defaultKnowledgeObject = "exercise_mappings.json"
)

// Config holds standard configuration for all services
type Config struct {
	ProjectID       string
	EnablePublish   bool
	KnowledgeStore  string
	KnowledgePath   string
	KnowledgeBucket string
	KnowledgeObject string
	// GeometryPath is a local file or gs:// URI; empty uses the bundled geometry.
	GeometryPath    string
	AssetsBucket    string
	FontPath        string
	FontSize        float64
	SentryDSN       string
	Environment     string
	CredentialsFile string
}

// Service holds initialized dependencies
type Service struct {
	Store     shared.BlobStore
	Pub       shared.Publisher
	Knowledge knowledge.Store
	Config    *Config

	closers []func() error
}

// LoadConfig reads configuration from environment variables
func LoadConfig() *Config {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		projectID = shared.ProjectID // Fallback
	}

	return &Config{
		ProjectID:       projectID,
		EnablePublish:   os.Getenv("ENABLE_PUBLISH") == "true",
		KnowledgeStore:  strings.ToLower(envOr("KNOWLEDGE_STORE", StoreFile)),
		KnowledgePath:   envOr("KNOWLEDGE_PATH", defaultKnowledgePath),
		KnowledgeBucket: os.Getenv("KNOWLEDGE_BUCKET"),
		KnowledgeObject: envOr("KNOWLEDGE_OBJECT", defaultKnowledgeObject),
		GeometryPath:    os.Getenv("GEOMETRY_PATH"),
		AssetsBucket:    os.Getenv("ASSETS_BUCKET"),
		FontPath:        os.Getenv("FONT_PATH"),
		FontSize:        render.DefaultCaptionSize,
		SentryDSN:       os.Getenv("SENTRY_DSN"),
		Environment:     envOr("ENVIRONMENT", "development"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Validate checks the knowledge store selection against its required settings.
func (c *Config) Validate() error {
	switch c.KnowledgeStore {
	case StoreFile, StoreSQLite:
		if c.KnowledgePath == "" {
			return fmt.Errorf("KNOWLEDGE_PATH is required for the %s knowledge store", c.KnowledgeStore)
		}
	case StoreGCS:
		if c.KnowledgeBucket == "" {
			return errors.New("KNOWLEDGE_BUCKET is required for the gcs knowledge store")
		}
	case StoreFirestore:
	default:
		return fmt.Errorf("unknown KNOWLEDGE_STORE %q (want file, gcs, firestore or sqlite)", c.KnowledgeStore)
	}
	return nil
}

func (c *Config) needsStorage() bool {
	return c.KnowledgeStore == StoreGCS || c.AssetsBucket != "" || infrastorage.IsGCSURI(c.GeometryPath)
}

func (c *Config) clientOptions() []option.ClientOption {
	if c.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(c.CredentialsFile)}
}

// GetSlogHandlerOptions returns standard handler options for GCP
func GetSlogHandlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Map standard keys to Cloud Logging keys
			if a.Key == slog.MessageKey {
				return slog.Attr{Key: "message", Value: a.Value}
			}
			if a.Key == slog.LevelKey {
				return slog.Attr{Key: "severity", Value: a.Value}
			}
			return a
		},
	}
}

// ComponentHandler wraps a slog.Handler to prepend [component] to the message
type ComponentHandler struct {
	slog.Handler
	component string
}

// WithGroup implements slog.Handler
func (h *ComponentHandler) WithGroup(name string) slog.Handler {
	return &ComponentHandler{
		Handler:   h.Handler.WithGroup(name),
		component: h.component,
	}
}

// WithAttrs implements slog.Handler
func (h *ComponentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newComp := h.component
	for _, a := range attrs {
		if a.Key == "component" {
			newComp = a.Value.String()
		}
	}
	return &ComponentHandler{
		Handler:   h.Handler.WithAttrs(attrs),
		component: newComp,
	}
}

// Handle implements slog.Handler
func (h *ComponentHandler) Handle(ctx context.Context, r slog.Record) error {
	comp := h.component

	// A component attribute on the record overrides the handler's
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			comp = a.Value.String()
			return false
		}
		return true
	})

	if comp != "" {
		newRecord := slog.NewRecord(r.Time, r.Level, fmt.Sprintf("[%s] %s", comp, r.Message), r.PC)
		r.Attrs(func(a slog.Attr) bool {
			newRecord.AddAttrs(a)
			return true
		})
		r = newRecord
	}

	return h.Handler.Handle(ctx, r)
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitLogger configures structured logging with Cloud Logging compatible keys
func InitLogger() {
	opts := GetSlogHandlerOptions(ParseLevel(os.Getenv("LOG_LEVEL")))
	handler := slog.NewJSONHandler(os.Stdout, opts)
	slog.SetDefault(slog.New(&ComponentHandler{Handler: handler}))
}

// NewLogger creates a configured logger instance
func NewLogger(serviceName string) *slog.Logger {
	opts := GetSlogHandlerOptions(ParseLevel(os.Getenv("LOG_LEVEL")))
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(&ComponentHandler{Handler: handler}).With("service", serviceName)
}

// NewService initializes all standard dependencies from the environment
func NewService(ctx context.Context) (*Service, error) {
	InitLogger()
	return NewServiceWithConfig(ctx, LoadConfig())
}

// NewServiceWithConfig initializes the clients cfg calls for. Cloud clients are
// only created when a configured backend needs them.
func NewServiceWithConfig(ctx context.Context, cfg *Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("Initializing service", "project_id", cfg.ProjectID, "knowledge_store", cfg.KnowledgeStore)
	svc := &Service{Config: cfg}
	opts := cfg.clientOptions()

	// Storage
	if cfg.needsStorage() {
		gcsClient, err := storage.NewClient(ctx, opts...)
		if err != nil {
			slog.Error("Storage init failed", "error", err)
			return nil, fmt.Errorf("storage init: %w", err)
		}
		svc.Store = &infrastorage.StorageAdapter{Client: gcsClient}
		svc.closers = append(svc.closers, gcsClient.Close)
	}

	// Pub/Sub
	if cfg.EnablePublish {
		psClient, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
		if err != nil {
			svc.Close()
			slog.Error("PubSub init failed", "error", err)
			return nil, fmt.Errorf("pubsub init: %w", err)
		}
		svc.Pub = &infrapubsub.PubSubAdapter{Client: psClient}
		svc.closers = append(svc.closers, psClient.Close)
		slog.Info("Pub/Sub: REAL (ENABLE_PUBLISH=true)")
	} else {
		svc.Pub = &infrapubsub.LogPublisher{}
		slog.Info("Pub/Sub: MOCK (LogPublisher)")
	}

	// Knowledge base
	kbStore, err := svc.newKnowledgeStore(ctx, opts)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.Knowledge = kbStore

	return svc, nil
}

func (s *Service) newKnowledgeStore(ctx context.Context, opts []option.ClientOption) (knowledge.Store, error) {
	cfg := s.Config
	switch cfg.KnowledgeStore {
	case StoreGCS:
		return knowledge.BlobStore{Store: s.Store, Bucket: cfg.KnowledgeBucket, Object: cfg.KnowledgeObject}, nil
	case StoreFirestore:
		fsClient, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
		if err != nil {
			slog.Error("Firestore init failed", "error", err)
			return nil, fmt.Errorf("firestore init: %w", err)
		}
		s.closers = append(s.closers, fsClient.Close)
		return database.NewKnowledgeStore(fsClient), nil
	case StoreSQLite:
		db, err := knowledge.OpenSQLite(cfg.KnowledgePath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		return db, nil
	default:
		return knowledge.FileStore{Path: cfg.KnowledgePath}, nil
	}
}

// LoadGeometry reads the configured geometry, falling back to the bundled file.
func (s *Service) LoadGeometry(ctx context.Context) (*geometry.Geometry, error) {
	path := s.Config.GeometryPath
	switch {
	case path == "":
		return geometry.Default()
	case infrastorage.IsGCSURI(path):
		bucket, object, err := infrastorage.ParseGCSURI(path)
		if err != nil {
			return nil, err
		}
		if s.Store == nil {
			return nil, fmt.Errorf("geometry %s: storage client not initialized", path)
		}
		return geometry.LoadBlob(ctx, s.Store, bucket, object)
	default:
		return geometry.LoadFile(path)
	}
}

// LoadFace returns the configured caption font, or nil for the built-in face.
func (s *Service) LoadFace() (font.Face, error) {
	if s.Config.FontPath == "" {
		return nil, nil
	}
	return render.LoadFace(s.Config.FontPath, s.Config.FontSize)
}

// Close releases every client the service opened.
func (s *Service) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

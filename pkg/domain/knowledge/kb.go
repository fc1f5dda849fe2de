package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/fitglue/musclemap/pkg/domain/muscle"
)

// MaxElicitAttempts bounds how often an invalid answer is asked for again.
const MaxElicitAttempts = 3

// UnknownExercise is the table key used for sets that carry no identifier.
const UnknownExercise = "UNKNOWN"

// PersistError reports that the table could not be written. The mapping that
// came with it is still valid; the table stays dirty until Flush succeeds.
type PersistError struct {
	ExerciseID string
	Err        error
}

func (e *PersistError) Error() string {
	if e.ExerciseID == "" {
		return fmt.Sprintf("failed to persist knowledge base: %v", e.Err)
	}
	return fmt.Sprintf("failed to persist knowledge base after learning %s: %v", e.ExerciseID, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// LearnedHook is called once for every exercise added through elicitation.
type LearnedHook func(ctx context.Context, exerciseID string, m Mapping)

// KB is the exercise knowledge base: built-in defaults, overlaid with the
// persisted table, extended by elicitation. It is safe for concurrent use;
// elicitation and the write that follows it run as one critical section.
type KB struct {
	store     Store
	elicitor  Elicitor
	logger    *slog.Logger
	onLearned LearnedHook

	mu    sync.RWMutex
	table Table
	dirty bool
}

type Option func(*KB)

func WithLogger(logger *slog.Logger) Option {
	return func(kb *KB) { kb.logger = logger }
}

func WithLearnedHook(hook LearnedHook) Option {
	return func(kb *KB) { kb.onLearned = hook }
}

// New creates a knowledge base seeded with the defaults. A nil elicitor
// falls back to FallbackElicitor; a nil store keeps the table in memory.
func New(store Store, elicitor Elicitor, opts ...Option) *KB {
	kb := &KB{
		store:    store,
		elicitor: elicitor,
		logger:   slog.Default(),
		table:    Defaults(),
	}
	for _, opt := range opts {
		opt(kb)
	}
	if kb.elicitor == nil {
		kb.elicitor = FallbackElicitor{}
	}
	return kb
}

// Load merges the persisted table on top of the defaults. Persisted entries
// win over defaults with the same key; invalid entries are skipped.
func (kb *KB) Load(ctx context.Context) error {
	if kb.store == nil {
		return nil
	}
	persisted, err := kb.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load knowledge base: %w", err)
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()
	for id, m := range persisted {
		norm, err := Normalize(m)
		if err != nil {
			kb.logger.Warn("Skipping invalid persisted mapping", "exercise", id, "error", err)
			continue
		}
		kb.table[id] = norm
	}
	kb.logger.Debug("Knowledge base loaded", "persisted", len(persisted), "total", len(kb.table))
	return nil
}

// Lookup returns the mapping for exerciseID without eliciting.
func (kb *KB) Lookup(exerciseID string) (Mapping, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	m, ok := kb.table[normalizeID(exerciseID)]
	if !ok {
		return Mapping{}, false
	}
	return m.Clone(), true
}

// Resolve returns the mapping for exerciseID, eliciting and persisting it when
// the table does not know it yet. Each identifier is elicited at most once.
//
// A *PersistError is returned together with a valid mapping when only the
// write failed; callers may treat it as a warning.
func (kb *KB) Resolve(ctx context.Context, exerciseID string) (Mapping, error) {
	id := normalizeID(exerciseID)
	if m, ok := kb.Lookup(id); ok {
		return m, nil
	}

	kb.mu.Lock()
	// Another caller may have learned it while we waited
	if m, ok := kb.table[id]; ok {
		kb.mu.Unlock()
		return m.Clone(), nil
	}

	m, err := kb.elicit(ctx, id)
	if err != nil {
		kb.mu.Unlock()
		return Mapping{}, err
	}
	kb.table[id] = m
	kb.dirty = true
	kb.logger.Info("Learned exercise", "exercise", id, "primary", m.Primary, "secondary", m.Secondary)
	persistErr := kb.persistLocked(ctx)
	kb.mu.Unlock()

	if kb.onLearned != nil {
		kb.onLearned(ctx, id, m.Clone())
	}

	if persistErr != nil {
		return m.Clone(), &PersistError{ExerciseID: id, Err: persistErr}
	}
	return m.Clone(), nil
}

func (kb *KB) elicit(ctx context.Context, id string) (Mapping, error) {
	catalog := muscle.Catalog()
	var lastErr error
	for attempt := 1; attempt <= MaxElicitAttempts; attempt++ {
		raw, err := kb.elicitor.Elicit(ctx, id, catalog)
		if err != nil {
			if errors.Is(err, ErrNoAnswer) || ctx.Err() != nil {
				return Mapping{}, fmt.Errorf("failed to elicit %s: %w", id, err)
			}
			lastErr = err
		} else {
			m, err := Normalize(raw)
			if err == nil {
				return m, nil
			}
			lastErr = err
		}
		kb.logger.Warn("Rejected elicited mapping", "exercise", id, "attempt", attempt, "error", lastErr)
	}
	return Mapping{}, fmt.Errorf("%w: %s after %d attempts: %v", ErrInvalidMapping, id, MaxElicitAttempts, lastErr)
}

// Persist writes the complete table to the store.
func (kb *KB) Persist(ctx context.Context) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if err := kb.persistLocked(ctx); err != nil {
		return &PersistError{Err: err}
	}
	return nil
}

// Flush persists the table if an earlier write failed or was never made.
func (kb *KB) Flush(ctx context.Context) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if !kb.dirty {
		return nil
	}
	if err := kb.persistLocked(ctx); err != nil {
		return &PersistError{Err: err}
	}
	return nil
}

// Dirty reports whether learned mappings are waiting to be written.
func (kb *KB) Dirty() bool {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.dirty
}

func (kb *KB) persistLocked(ctx context.Context) error {
	if kb.store == nil {
		kb.dirty = false
		return nil
	}
	if err := kb.store.Save(ctx, kb.table.Clone()); err != nil {
		kb.dirty = true
		kb.logger.Warn("Failed to persist knowledge base", "error", err, "entries", len(kb.table))
		return err
	}
	kb.dirty = false
	return nil
}

// Table returns a snapshot of the current table.
func (kb *KB) Table() Table {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.table.Clone()
}

func normalizeID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return UnknownExercise
	}
	return id
}

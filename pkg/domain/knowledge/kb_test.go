package knowledge

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitglue/musclemap/pkg/domain/muscle"
)

// memStore is an in-memory Store that can be told to fail.
type memStore struct {
	mu       sync.Mutex
	table    Table
	saves    int
	failSave error
	failLoad error
}

func (s *memStore) Load(ctx context.Context) (Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad != nil {
		return nil, s.failLoad
	}
	if s.table == nil {
		return Table{}, nil
	}
	return s.table.Clone(), nil
}

func (s *memStore) Save(ctx context.Context, t Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave != nil {
		return s.failSave
	}
	s.saves++
	s.table = t.Clone()
	return nil
}

// countingElicitor returns fixed answers and counts calls.
type countingElicitor struct {
	calls   atomic.Int32
	answers []Mapping
}

func (e *countingElicitor) Elicit(ctx context.Context, exerciseID string, catalog []muscle.Group) (Mapping, error) {
	n := int(e.calls.Add(1)) - 1
	if n >= len(e.answers) {
		n = len(e.answers) - 1
	}
	return e.answers[n], nil
}

var deadlift = Mapping{
	Primary:   []muscle.Group{"back-lowerback-right", "back-lowerback-left"},
	Secondary: []muscle.Group{"back-glutes-right", "back-glutes-left"},
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	bench, ok := d["BENCH_PRESS"]
	require.True(t, ok)
	assert.Equal(t, []muscle.Group{"front-chest-right", "front-chest-left"}, bench.Primary)
	assert.Equal(t, []muscle.Group{"front-delts-right", "front-delts-left", "back-triceps-right", "back-triceps-left"}, bench.Secondary)
	assert.True(t, d["UNKNOWN"].Equal(Fallback()))

	for _, id := range []string{"FLYE", "SIT_UP", "LATERAL_RAISE", "ROW", "SQUAT", "CURL", "PUSH_UP", "PULL_UP"} {
		assert.Contains(t, d, id)
	}

	// Defaults hands out copies
	d["BENCH_PRESS"].Primary[0] = "mutated"
	assert.Equal(t, muscle.Group("front-chest-right"), Defaults()["BENCH_PRESS"].Primary[0])
}

func TestResolve_Known(t *testing.T) {
	e := &countingElicitor{answers: []Mapping{deadlift}}
	kb := New(&memStore{}, e)

	m, err := kb.Resolve(context.Background(), "SQUAT")
	require.NoError(t, err)
	assert.Equal(t, []muscle.Group{"front-quads-right", "front-quads-left"}, m.Primary)
	assert.Equal(t, int32(0), e.calls.Load())
}

func TestResolve_ElicitsOnce(t *testing.T) {
	store := &memStore{}
	e := &countingElicitor{answers: []Mapping{deadlift}}
	var learned []string
	kb := New(store, e, WithLearnedHook(func(ctx context.Context, id string, m Mapping) {
		learned = append(learned, id)
	}))

	first, err := kb.Resolve(context.Background(), "DEADLIFT")
	require.NoError(t, err)
	second, err := kb.Resolve(context.Background(), "DEADLIFT")
	require.NoError(t, err)

	assert.Equal(t, int32(1), e.calls.Load(), "second occurrence must not elicit")
	assert.True(t, first.Equal(second))
	assert.True(t, first.Equal(deadlift))
	assert.Equal(t, 1, store.saves, "learning must be persisted immediately")
	assert.Contains(t, store.table, "DEADLIFT")
	assert.Equal(t, []string{"DEADLIFT"}, learned)
	assert.False(t, kb.Dirty())
}

func TestResolve_EmptyIDUsesUnknown(t *testing.T) {
	e := &countingElicitor{answers: []Mapping{deadlift}}
	kb := New(nil, e)

	m, err := kb.Resolve(context.Background(), "  ")
	require.NoError(t, err)
	assert.True(t, m.Equal(Fallback()))
	assert.Equal(t, int32(0), e.calls.Load())
}

func TestResolve_InvalidAnswers(t *testing.T) {
	t.Run("Re-elicits invalid primary", func(t *testing.T) {
		e := &countingElicitor{answers: []Mapping{
			{},
			{Primary: []muscle.Group{"not-a-muscle"}},
			deadlift,
		}}
		kb := New(nil, e)

		m, err := kb.Resolve(context.Background(), "DEADLIFT")
		require.NoError(t, err)
		assert.True(t, m.Equal(deadlift))
		assert.Equal(t, int32(3), e.calls.Load())
	})

	t.Run("Gives up after max attempts", func(t *testing.T) {
		e := &countingElicitor{answers: []Mapping{{}}}
		kb := New(nil, e)

		_, err := kb.Resolve(context.Background(), "DEADLIFT")
		assert.ErrorIs(t, err, ErrInvalidMapping)
		assert.Equal(t, int32(MaxElicitAttempts), e.calls.Load())

		_, known := kb.Lookup("DEADLIFT")
		assert.False(t, known, "a failed elicitation must not be stored")
	})

	t.Run("Invalid secondary degrades to none", func(t *testing.T) {
		e := &countingElicitor{answers: []Mapping{{
			Primary:   []muscle.Group{"FrontChestRight"},
			Secondary: []muscle.Group{"wings-left"},
		}}}
		kb := New(nil, e)

		m, err := kb.Resolve(context.Background(), "DIPS")
		require.NoError(t, err)
		assert.Equal(t, []muscle.Group{"front-chest-right"}, m.Primary)
		assert.Empty(t, m.Secondary)
	})
}

func TestResolve_ElicitorError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	kb := New(nil, ElicitorFunc(func(ctx context.Context, id string, catalog []muscle.Group) (Mapping, error) {
		calls++
		return Mapping{}, boom
	}))

	_, err := kb.Resolve(context.Background(), "DEADLIFT")
	assert.ErrorIs(t, err, ErrInvalidMapping)
	assert.Equal(t, MaxElicitAttempts, calls)

	kb = New(nil, StaticElicitor{})
	_, err = kb.Resolve(context.Background(), "DEADLIFT")
	assert.ErrorIs(t, err, ErrNoAnswer)
}

func TestResolve_PersistFailure(t *testing.T) {
	store := &memStore{failSave: errors.New("disk full")}
	kb := New(store, StaticElicitor{"DEADLIFT": deadlift})

	m, err := kb.Resolve(context.Background(), "DEADLIFT")
	var perr *PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "DEADLIFT", perr.ExerciseID)
	assert.True(t, m.Equal(deadlift), "mapping must still be usable")
	assert.True(t, kb.Dirty())

	// In-memory resolution keeps working without eliciting again
	again, err := kb.Resolve(context.Background(), "DEADLIFT")
	require.NoError(t, err)
	assert.True(t, again.Equal(deadlift))

	store.failSave = nil
	require.NoError(t, kb.Flush(context.Background()))
	assert.False(t, kb.Dirty())
	assert.Contains(t, store.table, "DEADLIFT")

	// Nothing left to write
	require.NoError(t, kb.Flush(context.Background()))
	assert.Equal(t, 1, store.saves)
}

func TestResolve_Concurrent(t *testing.T) {
	store := &memStore{}
	e := &countingElicitor{answers: []Mapping{deadlift}}
	kb := New(store, e)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := kb.Resolve(context.Background(), "DEADLIFT")
			if err != nil {
				t.Errorf("Resolve failed: %v", err)
				return
			}
			if !m.Equal(deadlift) {
				t.Errorf("unexpected mapping %v", m)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), e.calls.Load())
	assert.Equal(t, 1, store.saves)
}

func TestLoad(t *testing.T) {
	store := &memStore{table: Table{
		"BENCH_PRESS": {Primary: []muscle.Group{"FrontChestRight"}, Secondary: nil},
		"DEADLIFT":    deadlift,
		"BROKEN":      {Primary: nil},
	}}
	kb := New(store, nil)
	require.NoError(t, kb.Load(context.Background()))

	bench, _ := kb.Lookup("BENCH_PRESS")
	assert.Equal(t, []muscle.Group{"front-chest-right"}, bench.Primary, "persisted entries override defaults")
	_, ok := kb.Lookup("DEADLIFT")
	assert.True(t, ok)
	_, ok = kb.Lookup("BROKEN")
	assert.False(t, ok)
	_, ok = kb.Lookup("SQUAT")
	assert.True(t, ok, "defaults survive the merge")

	store.failLoad = errors.New("unreachable")
	assert.Error(t, New(store, nil).Load(context.Background()))
}

func TestPersist_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb", "exercise_to_musclegroup.json")
	store := FileStore{Path: path}

	first := New(store, StaticElicitor{"DEADLIFT": deadlift})
	require.NoError(t, first.Load(context.Background()))
	_, err := first.Resolve(context.Background(), "DEADLIFT")
	require.NoError(t, err)
	before := first.Table()

	second := New(store, FallbackElicitor{})
	require.NoError(t, second.Load(context.Background()))
	after := second.Table()

	for id, m := range before {
		got, ok := after[id]
		if assert.True(t, ok, "missing %s after reload", id) {
			assert.True(t, m.Equal(got), "mapping for %s changed", id)
		}
	}
}

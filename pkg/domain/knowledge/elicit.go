package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fitglue/musclemap/pkg/domain/muscle"
)

// ErrNoAnswer is returned by an Elicitor that has nothing to say about an
// exercise. Chain moves on to the next elicitor when it sees it.
var ErrNoAnswer = errors.New("no answer for exercise")

// Elicitor obtains a mapping for an exercise the table does not know yet.
// It is handed the fixed catalog the answer must be drawn from.
type Elicitor interface {
	Elicit(ctx context.Context, exerciseID string, catalog []muscle.Group) (Mapping, error)
}

// ElicitorFunc adapts a function to Elicitor.
type ElicitorFunc func(ctx context.Context, exerciseID string, catalog []muscle.Group) (Mapping, error)

func (f ElicitorFunc) Elicit(ctx context.Context, exerciseID string, catalog []muscle.Group) (Mapping, error) {
	return f(ctx, exerciseID, catalog)
}

// StaticElicitor answers from pre-supplied mappings, e.g. sent along with an
// HTTP request. Unlisted exercises get ErrNoAnswer, and so do listed ones
// whose mapping does not normalize: asking again would give the same answer.
type StaticElicitor map[string]Mapping

func (s StaticElicitor) Elicit(_ context.Context, exerciseID string, _ []muscle.Group) (Mapping, error) {
	m, ok := s[exerciseID]
	if !ok {
		return Mapping{}, fmt.Errorf("%w: %s", ErrNoAnswer, exerciseID)
	}
	norm, err := Normalize(m)
	if err != nil {
		return Mapping{}, fmt.Errorf("%w: %s: %v", ErrNoAnswer, exerciseID, err)
	}
	return norm, nil
}

type answersKey struct{}

// WithAnswers attaches request-scoped answers for ContextElicitor.
func WithAnswers(ctx context.Context, answers StaticElicitor) context.Context {
	return context.WithValue(ctx, answersKey{}, answers)
}

// ContextElicitor answers from the StaticElicitor attached to the context by
// WithAnswers, so one shared knowledge base can serve per-request answers.
type ContextElicitor struct{}

func (ContextElicitor) Elicit(ctx context.Context, exerciseID string, catalog []muscle.Group) (Mapping, error) {
	answers, _ := ctx.Value(answersKey{}).(StaticElicitor)
	return answers.Elicit(ctx, exerciseID, catalog)
}

// FallbackElicitor learns the undefined mapping for every exercise. It lets
// non-interactive callers complete without losing track of the exercise.
type FallbackElicitor struct{}

func (FallbackElicitor) Elicit(context.Context, string, []muscle.Group) (Mapping, error) {
	return Fallback(), nil
}

// Chain asks each elicitor in turn until one answers.
func Chain(elicitors ...Elicitor) Elicitor {
	return ElicitorFunc(func(ctx context.Context, exerciseID string, catalog []muscle.Group) (Mapping, error) {
		for _, e := range elicitors {
			m, err := e.Elicit(ctx, exerciseID, catalog)
			if errors.Is(err, ErrNoAnswer) {
				continue
			}
			return m, err
		}
		return Mapping{}, fmt.Errorf("%w: %s", ErrNoAnswer, exerciseID)
	})
}

// ParseSelection parses a comma separated list of one-based catalog indexes
// such as "1, 2,5". Blank input yields an empty selection. Any token that is
// not a number in range fails the whole selection.
func ParseSelection(input string, catalog []muscle.Group) ([]muscle.Group, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	var out []muscle.Group
	for _, tok := range strings.Split(input, ",") {
		tok = strings.TrimSpace(tok)
		idx, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q", tok)
		}
		if idx < 1 || idx > len(catalog) {
			return nil, fmt.Errorf("selection %d out of range 1-%d", idx, len(catalog))
		}
		out = append(out, catalog[idx-1])
	}
	return out, nil
}

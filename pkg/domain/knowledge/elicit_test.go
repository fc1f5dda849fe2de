package knowledge

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/fitglue/musclemap/pkg/domain/muscle"
)

func TestParseSelection(t *testing.T) {
	catalog := muscle.Catalog()
	tests := []struct {
		input   string
		want    []muscle.Group
		wantErr bool
	}{
		{input: "1", want: []muscle.Group{catalog[0]}},
		{input: " 1, 2 ,41", want: []muscle.Group{catalog[0], catalog[1], muscle.Undefined}},
		{input: "", want: nil},
		{input: "   ", want: nil},
		{input: "0", wantErr: true},
		{input: "42", wantErr: true},
		{input: "1,,2", wantErr: true},
		{input: "chest", wantErr: true},
		{input: "1.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSelection(tt.input, catalog)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("selection %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestConsoleElicitor(t *testing.T) {
	catalog := muscle.Catalog()
	// Two bad primary answers, then a good one; bad secondary
	in := strings.NewReader("abc\n\n11,12\n99\n")
	var out bytes.Buffer

	m, err := NewConsoleElicitor(in, &out).Elicit(context.Background(), "HIP_THRUST", catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Primary) != 2 || m.Primary[0] != catalog[10] || m.Primary[1] != catalog[11] {
		t.Errorf("unexpected primary %v", m.Primary)
	}
	if len(m.Secondary) != 0 {
		t.Errorf("expected no secondary groups, got %v", m.Secondary)
	}

	text := out.String()
	if !strings.Contains(text, "New exercise detected: HIP_THRUST") {
		t.Error("expected the exercise to be announced")
	}
	if !strings.Contains(text, "41. undefined") {
		t.Error("expected the numbered catalog to be printed")
	}
	if n := strings.Count(text, "Invalid input. Please enter valid numbers"); n != 2 {
		t.Errorf("expected 2 primary re-prompts, got %d", n)
	}
	if !strings.Contains(text, "No secondary muscles will be recorded") {
		t.Error("expected the secondary fallback message")
	}
}

func TestConsoleElicitor_EOF(t *testing.T) {
	_, err := NewConsoleElicitor(strings.NewReader("bad\n"), io.Discard).
		Elicit(context.Background(), "HIP_THRUST", muscle.Catalog())
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestChain(t *testing.T) {
	static := StaticElicitor{"DEADLIFT": deadlift}
	chain := Chain(static, FallbackElicitor{})

	m, err := chain.Elicit(context.Background(), "DEADLIFT", nil)
	if err != nil || !m.Equal(deadlift) {
		t.Errorf("expected the static answer, got %v (%v)", m, err)
	}

	m, err = chain.Elicit(context.Background(), "HIP_THRUST", nil)
	if err != nil || !m.Equal(Fallback()) {
		t.Errorf("expected the fallback answer, got %v (%v)", m, err)
	}

	_, err = Chain(static).Elicit(context.Background(), "HIP_THRUST", nil)
	if !errors.Is(err, ErrNoAnswer) {
		t.Errorf("expected ErrNoAnswer, got %v", err)
	}

	boom := errors.New("boom")
	failing := ElicitorFunc(func(context.Context, string, []muscle.Group) (Mapping, error) {
		return Mapping{}, boom
	})
	if _, err := Chain(failing, FallbackElicitor{}).Elicit(context.Background(), "X", nil); !errors.Is(err, boom) {
		t.Errorf("expected a real error to stop the chain, got %v", err)
	}
}

func TestStaticElicitor_InvalidAnswer(t *testing.T) {
	static := StaticElicitor{
		"ZERCHER": {Primary: []muscle.Group{"not-a-muscle"}},
		"HOLLOW":  {Primary: nil},
		"ROLLOUT": {Primary: []muscle.Group{"FrontAbsRight"}, Secondary: []muscle.Group{"neck"}},
	}

	for _, id := range []string{"ZERCHER", "HOLLOW"} {
		if _, err := static.Elicit(context.Background(), id, nil); !errors.Is(err, ErrNoAnswer) {
			t.Errorf("%s: expected ErrNoAnswer for an unusable answer, got %v", id, err)
		}
	}

	m, err := static.Elicit(context.Background(), "ROLLOUT", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Mapping{Primary: []muscle.Group{"front-abs-right"}, Secondary: []muscle.Group{}}
	if !m.Equal(want) {
		t.Errorf("expected normalized answer %v, got %v", want, m)
	}
}

func TestResolve_InvalidStaticAnswerFallsBack(t *testing.T) {
	calls := 0
	static := StaticElicitor{"ZERCHER": {Primary: []muscle.Group{"not-a-muscle"}}}
	counted := ElicitorFunc(func(ctx context.Context, id string, catalog []muscle.Group) (Mapping, error) {
		calls++
		return static.Elicit(ctx, id, catalog)
	})
	kb := New(nil, Chain(counted, FallbackElicitor{}))

	m, err := kb.Resolve(context.Background(), "ZERCHER")
	if err != nil {
		t.Fatalf("expected fallback instead of error, got %v", err)
	}
	if !m.Equal(Fallback()) {
		t.Errorf("expected the fallback mapping, got %v", m)
	}
	if calls != 1 {
		t.Errorf("expected the fixed answer to be asked once, got %d calls", calls)
	}
	if _, ok := kb.Lookup("ZERCHER"); !ok {
		t.Error("expected ZERCHER to be learned")
	}
}

func TestNormalize(t *testing.T) {
	m, err := Normalize(Mapping{
		Primary:   []muscle.Group{"FrontChestRight", "front-chest-right", "Ab-AductorsLeft"},
		Secondary: []muscle.Group{"BackTricepsLeft", "bogus", "back-triceps-left"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantPrimary := []muscle.Group{"front-chest-right", "front-adductors-left"}
	wantSecondary := []muscle.Group{"back-triceps-left"}
	if !m.Equal(Mapping{Primary: wantPrimary, Secondary: wantSecondary}) {
		t.Errorf("unexpected mapping %v", m)
	}

	if _, err := Normalize(Mapping{}); !errors.Is(err, ErrInvalidMapping) {
		t.Errorf("expected ErrInvalidMapping for empty primary, got %v", err)
	}
	if _, err := Normalize(Mapping{Primary: []muscle.Group{"bogus"}}); !errors.Is(err, ErrInvalidMapping) {
		t.Errorf("expected ErrInvalidMapping for unknown primary, got %v", err)
	}
}

func TestContextElicitor(t *testing.T) {
	plank := Mapping{Primary: []muscle.Group{"front-abs-right", "front-abs-left"}}
	ctx := WithAnswers(context.Background(), StaticElicitor{"PLANK": plank})

	got, err := ContextElicitor{}.Elicit(ctx, "PLANK", muscle.Catalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(plank) {
		t.Errorf("got %+v, want %+v", got, plank)
	}

	if _, err := (ContextElicitor{}).Elicit(ctx, "DEADLIFT", muscle.Catalog()); !errors.Is(err, ErrNoAnswer) {
		t.Errorf("expected ErrNoAnswer for unlisted exercise, got %v", err)
	}
	if _, err := (ContextElicitor{}).Elicit(context.Background(), "PLANK", muscle.Catalog()); !errors.Is(err, ErrNoAnswer) {
		t.Errorf("expected ErrNoAnswer without answers, got %v", err)
	}
}

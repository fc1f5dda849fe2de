package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeGarminJSON(t *testing.T) {
	data := []byte(`[
		{
			"startTimeLocal": "2024-03-01 18:30:00",
			"summarizedExerciseSets": [
				{"category": "BENCH_PRESS", "reps": 30, "sets": 3},
				{"category": "CURL", "reps": "12"},
				{"reps": 5, "sets": 0}
			]
		},
		{
			"startTimeGMT": "2024-03-02 07:15:00.250",
			"summarizedExerciseSets": [{"category": "SQUAT", "reps": null, "sets": 2}]
		},
		{"startTimeLocal": "yesterday", "summarizedExerciseSets": [{"category": "ROW", "reps": 1}]},
		{"startTimeLocal": "2024-03-03 10:00:00", "summarizedExerciseSets": []},
		{"startTimeLocal": "2024-03-04 10:00:00"}
	]`)

	records, stats, err := DecodeGarminJSON(data)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, DecodeStats{Total: 5, Kept: 2, BadTimestamp: 1, NoSets: 2, DefaultedSets: 2}, stats)

	first := records[0]
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, []ExerciseSet{
		{ExerciseID: "BENCH_PRESS", Repetitions: 30, Sets: 3},
		{ExerciseID: "CURL", Repetitions: 12, Sets: 1},
		{ExerciseID: UnknownExercise, Repetitions: 5, Sets: 1},
	}, first.Sets)

	second := records[1]
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), second.Date)
	assert.Equal(t, []ExerciseSet{{ExerciseID: "SQUAT", Repetitions: 0, Sets: 2}}, second.Sets)
}

func TestDecodeGarminJSON_Invalid(t *testing.T) {
	_, _, err := DecodeGarminJSON([]byte(`{"not": "a list"}`))
	assert.Error(t, err)

	_, _, err = DecodeGarminJSON([]byte(`[{"startTimeLocal": "2024-03-01 10:00:00", "summarizedExerciseSets": [{"reps": "many"}]}]`))
	assert.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{input: "2024-01-15 18:30:00", want: time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC)},
		{input: "2024-01-15 18:30:00.5", want: time.Date(2024, 1, 15, 18, 30, 0, 500000000, time.UTC)},
		{input: "2024-01-15T18:30:00", want: time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC)},
		{input: "2024-01-15T18:30:00Z", want: time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC)},
		{input: "15/01/2024", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestExerciseSetVolume(t *testing.T) {
	if v := (ExerciseSet{Repetitions: 10, Sets: 3}).Volume(); v != 30 {
		t.Errorf("expected volume 30, got %v", v)
	}
	if v := (ExerciseSet{Repetitions: 0, Sets: 4}).Volume(); v != 0 {
		t.Errorf("expected volume 0, got %v", v)
	}
}

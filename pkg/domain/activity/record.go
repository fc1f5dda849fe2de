package activity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// UnknownExercise is the identifier used when a set carries no category.
const UnknownExercise = "UNKNOWN"

// ExerciseSet is one logged set within an activity.
type ExerciseSet struct {
	ExerciseID  string `json:"exerciseId"`
	Repetitions int    `json:"repetitions"`
	Sets        int    `json:"sets"`
}

// Volume is repetitions times sets.
func (s ExerciseSet) Volume() float64 {
	return float64(s.Repetitions) * float64(s.Sets)
}

// Record is one activity reduced to its calendar day and exercise sets.
type Record struct {
	Date time.Time     `json:"date"`
	Sets []ExerciseSet `json:"sets"`
}

// Day truncates t to its calendar day, expressed as midnight UTC so that days
// from different sources compare equal.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DecodeStats counts what DecodeGarminJSON dropped.
type DecodeStats struct {
	Total         int `json:"total"`
	Kept          int `json:"kept"`
	BadTimestamp  int `json:"badTimestamp"`
	NoSets        int `json:"noSets"`
	DefaultedSets int `json:"defaultedSets"`
}

// garminActivity is the subset of a Garmin Connect activity the engine reads.
type garminActivity struct {
	StartTimeLocal string      `json:"startTimeLocal"`
	StartTimeGMT   string      `json:"startTimeGMT"`
	Sets           []garminSet `json:"summarizedExerciseSets"`
}

type garminSet struct {
	Category string      `json:"category"`
	Reps     *flexNumber `json:"reps"`
	Sets     *flexNumber `json:"sets"`
}

// flexNumber accepts a JSON number, a numeric string or null.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", b)
	}
	*n = flexNumber(f)
	return nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseTimestamp parses the local timestamp forms Garmin exports use.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// DecodeGarminJSON normalizes a Garmin Connect activity list into Records.
//
// Records with an unparseable timestamp or no exercise sets are dropped and
// counted in the returned stats. Missing reps default to 0, missing or
// non-positive set counts to 1, and a missing category to UnknownExercise.
func DecodeGarminJSON(data []byte) ([]Record, DecodeStats, error) {
	var raw []garminActivity
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, DecodeStats{}, fmt.Errorf("failed to decode activities: %w", err)
	}

	stats := DecodeStats{Total: len(raw)}
	records := make([]Record, 0, len(raw))
	for _, a := range raw {
		ts := a.StartTimeLocal
		if ts == "" {
			ts = a.StartTimeGMT
		}
		t, err := ParseTimestamp(ts)
		if err != nil {
			stats.BadTimestamp++
			continue
		}
		if len(a.Sets) == 0 {
			stats.NoSets++
			continue
		}

		rec := Record{Date: Day(t), Sets: make([]ExerciseSet, 0, len(a.Sets))}
		for _, s := range a.Sets {
			set := ExerciseSet{ExerciseID: strings.TrimSpace(s.Category), Sets: 1}
			if set.ExerciseID == "" {
				set.ExerciseID = UnknownExercise
			}
			if s.Reps != nil && *s.Reps > 0 {
				set.Repetitions = int(*s.Reps)
			}
			if s.Sets != nil && *s.Sets >= 1 {
				set.Sets = int(*s.Sets)
			} else {
				stats.DefaultedSets++
			}
			rec.Sets = append(rec.Sets, set)
		}
		records = append(records, rec)
	}
	stats.Kept = len(records)
	return records, stats, nil
}

package musclemap

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fitglue/musclemap/pkg/domain/activity"
	"github.com/fitglue/musclemap/pkg/domain/fit_parser"
	"github.com/fitglue/musclemap/pkg/domain/knowledge"
)

// ErrInvalidInput marks request payloads that cannot be turned into a Request.
var ErrInvalidInput = errors.New("invalid render input")

// RenderInput is the wire form of a render shared by the HTTP and Pub/Sub
// surfaces. Activities is a Garmin Connect activity list; FitFilesBase64 are
// strength FIT files. Leaving both out renders the "no source" artifacts.
type RenderInput struct {
	Activities       json.RawMessage              `json:"activities,omitempty"`
	FitFilesBase64   []string                     `json:"fitFilesBase64,omitempty"`
	TimeZone         string                       `json:"timeZone,omitempty"`
	StartDate        string                       `json:"startDate,omitempty"`
	EndDate          string                       `json:"endDate,omitempty"`
	ColorBlind       bool                         `json:"colorBlind,omitempty"`
	ExerciseMappings map[string]knowledge.Mapping `json:"exerciseMappings,omitempty"`
}

// Decoded is a RenderInput converted for the engine.
type Decoded struct {
	Request Request
	// Answers are the caller's mappings for exercises the knowledge base may
	// not know yet.
	Answers knowledge.StaticElicitor
	Stats   activity.DecodeStats
}

// Decode validates in and parses its activity sources.
func (in RenderInput) Decode() (Decoded, error) {
	var out Decoded

	loc := time.UTC
	if in.TimeZone != "" {
		l, err := time.LoadLocation(in.TimeZone)
		if err != nil {
			return out, fmt.Errorf("%w: timeZone: %v", ErrInvalidInput, err)
		}
		loc = l
	}

	switch {
	case in.StartDate != "" && in.EndDate != "":
		r, err := activity.ParseDateRange(in.StartDate, in.EndDate)
		if err != nil {
			return out, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		out.Request.Range = &r
	case in.StartDate != "" || in.EndDate != "":
		return out, fmt.Errorf("%w: startDate and endDate must be given together", ErrInvalidInput)
	}

	hasActivities := len(in.Activities) > 0 && string(in.Activities) != "null"
	if hasActivities || len(in.FitFilesBase64) > 0 {
		out.Request.Records = []activity.Record{}
	}

	if hasActivities {
		records, stats, err := activity.DecodeGarminJSON(in.Activities)
		if err != nil {
			return out, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		out.Request.Records = append(out.Request.Records, records...)
		out.Stats = stats
	}

	for i, encoded := range in.FitFilesBase64 {
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return out, fmt.Errorf("%w: fitFilesBase64[%d]: %v", ErrInvalidInput, i, err)
		}
		rec, err := fit_parser.ParseStrengthSets(data, loc)
		if err != nil {
			return out, fmt.Errorf("%w: fitFilesBase64[%d]: %v", ErrInvalidInput, i, err)
		}
		out.Stats.Total++
		if len(rec.Sets) == 0 {
			out.Stats.NoSets++
			continue
		}
		out.Stats.Kept++
		out.Request.Records = append(out.Request.Records, *rec)
	}

	out.Request.ColorBlind = in.ColorBlind
	if len(in.ExerciseMappings) > 0 {
		out.Answers = make(knowledge.StaticElicitor, len(in.ExerciseMappings))
		for id, m := range in.ExerciseMappings {
			norm, err := knowledge.Normalize(m)
			if err != nil {
				return out, fmt.Errorf("%w: exerciseMappings[%s]: %v", ErrInvalidInput, id, err)
			}
			out.Answers[id] = norm
		}
	}
	return out, nil
}

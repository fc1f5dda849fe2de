package fit_parser

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"

	"github.com/fitglue/musclemap/pkg/domain/activity"
)

// repetitionsInvalid is the FIT sentinel for an unset uint16 field.
const repetitionsInvalid = 0xFFFF

// FIT message order: FileId -> DeviceInfo -> Set... -> Session -> Activity
// Session comes AFTER the sets, so the start time is resolved once everything
// has been read.

// ParseStrengthSets reads the active Set messages of a FIT file into a Record.
// Each active set counts as one set of its repetitions. The record is dated
// from the session start, falling back to the file creation time and then to
// the first set, converted to loc.
func ParseStrengthSets(data []byte, loc *time.Location) (*activity.Record, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty FIT data")
	}
	if loc == nil {
		loc = time.UTC
	}

	fitDec := decoder.New(bytes.NewReader(data))

	var sessionStart, created, firstSet time.Time
	var sets []activity.ExerciseSet

	for fitDec.Next() {
		fitData, err := fitDec.Decode()
		if err != nil {
			return nil, fmt.Errorf("failed to decode FIT file: %w", err)
		}

		for _, msg := range fitData.Messages {
			switch msg.Num {
			case typedef.MesgNumFileId:
				fileId := mesgdef.NewFileId(&msg)
				if created.IsZero() && !fileId.TimeCreated.IsZero() {
					created = fileId.TimeCreated
				}

			case typedef.MesgNumSession:
				sessionMsg := mesgdef.NewSession(&msg)
				if sessionStart.IsZero() && !sessionMsg.StartTime.IsZero() {
					sessionStart = sessionMsg.StartTime
				}

			case typedef.MesgNumSet:
				setMsg := mesgdef.NewSet(&msg)
				if setMsg.SetType != typedef.SetTypeActive {
					continue
				}
				if firstSet.IsZero() && !setMsg.StartTime.IsZero() {
					firstSet = setMsg.StartTime
				}

				set := activity.ExerciseSet{
					ExerciseID: categoryName(setMsg.Category),
					Sets:       1,
				}
				if setMsg.Repetitions != repetitionsInvalid {
					set.Repetitions = int(setMsg.Repetitions)
				}
				sets = append(sets, set)
			}
		}
	}

	start := sessionStart
	if start.IsZero() {
		start = created
	}
	if start.IsZero() {
		start = firstSet
	}
	if start.IsZero() {
		return nil, fmt.Errorf("FIT file has no start time")
	}

	return &activity.Record{
		Date: activity.Day(start.In(loc)),
		Sets: sets,
	}, nil
}

// categoryName converts the first FIT exercise category to the upper snake
// identifier Garmin Connect uses ("BENCH_PRESS").
func categoryName(categories []typedef.ExerciseCategory) string {
	if len(categories) == 0 || categories[0] == typedef.ExerciseCategoryInvalid {
		return activity.UnknownExercise
	}
	return strings.ToUpper(categories[0].String())
}

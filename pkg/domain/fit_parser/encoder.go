package fit_parser

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/muktihari/fit/encoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/proto"

	"github.com/fitglue/musclemap/pkg/domain/activity"
)

// setSpacing separates consecutive Set messages in generated files.
const setSpacing = 90 * time.Second

// EncodeRecord creates a strength-training FIT file from a Record. Every set
// of an ExerciseSet becomes its own active Set message, so parsing the result
// yields the same volume per exercise.
func EncodeRecord(rec activity.Record) ([]byte, error) {
	if rec.Date.IsZero() {
		return nil, fmt.Errorf("record has no date")
	}

	// Midday keeps the calendar day stable when read back in another zone
	startTime := activity.Day(rec.Date).Add(12 * time.Hour)

	fit := &proto.FIT{
		Messages: []proto.Message{},
	}

	// 1. FileId message
	fileId := mesgdef.NewFileId(nil).
		SetType(typedef.FileActivity).
		SetManufacturer(typedef.ManufacturerDevelopment).
		SetProduct(1).
		SetTimeCreated(startTime)
	fit.Messages = append(fit.Messages, fileId.ToMesg(nil))

	// 2. Set messages
	ts := startTime
	index := 0
	for _, s := range rec.Sets {
		category := CategoryForExercise(s.ExerciseID)
		count := s.Sets
		if count < 1 {
			count = 1
		}
		for i := 0; i < count; i++ {
			setMsg := mesgdef.NewSet(nil).
				SetTimestamp(ts).
				SetStartTime(ts).
				SetCategory([]typedef.ExerciseCategory{category}).
				SetSetType(typedef.SetTypeActive).
				SetRepetitions(uint16(s.Repetitions)).
				SetMessageIndex(typedef.MessageIndex(index))
			fit.Messages = append(fit.Messages, setMsg.ToMesg(nil))
			ts = ts.Add(setSpacing)
			index++
		}
	}

	// 3. Session message
	elapsed := ts.Sub(startTime)
	sessionMsg := mesgdef.NewSession(nil).
		SetTimestamp(ts).
		SetSport(typedef.SportTraining).
		SetSubSport(typedef.SubSportStrengthTraining).
		SetStartTime(startTime).
		SetTotalElapsedTime(uint32(elapsed.Milliseconds())).
		SetTotalTimerTime(uint32(elapsed.Milliseconds()))
	fit.Messages = append(fit.Messages, sessionMsg.ToMesg(nil))

	// 4. Activity message
	activityMsg := mesgdef.NewActivity(nil).
		SetTimestamp(ts).
		SetType(typedef.ActivityManual).
		SetNumSessions(1)
	fit.Messages = append(fit.Messages, activityMsg.ToMesg(nil))

	var buf bytes.Buffer
	enc := encoder.New(&buf)

	if err := enc.Encode(fit); err != nil {
		return nil, fmt.Errorf("failed to encode FIT file: %w", err)
	}

	return buf.Bytes(), nil
}

// maxCategory bounds the scan over defined FIT exercise categories.
const maxCategory = 128

// CategoryForExercise maps an exercise identifier to a FIT exercise category.
// Upper snake identifiers ("BENCH_PRESS") match the category of the same name;
// anything else falls back to a keyword match on the free-text name.
func CategoryForExercise(exerciseID string) typedef.ExerciseCategory {
	id := strings.ToUpper(strings.TrimSpace(exerciseID))
	if id == activity.UnknownExercise {
		return typedef.ExerciseCategoryUnknown
	}
	for c := typedef.ExerciseCategory(0); c < maxCategory; c++ {
		if strings.ToUpper(c.String()) == id {
			return c
		}
	}
	return MapExerciseToCategory(strings.ReplaceAll(exerciseID, "_", " "))
}

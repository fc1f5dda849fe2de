package fit_parser

import (
	"strings"

	"github.com/muktihari/fit/profile/typedef"
)

// categoryKeywords is checked in order; the first entry with a keyword
// contained in the name wins, so more specific phrases come first.
var categoryKeywords = []struct {
	keywords []string
	category typedef.ExerciseCategory
}{
	// Chest
	{[]string{"bench press", "chest press", "bench"}, typedef.ExerciseCategoryBenchPress},
	{[]string{"push up", "pushup"}, typedef.ExerciseCategoryPushUp},
	{[]string{"flye", "fly"}, typedef.ExerciseCategoryFlye},

	// Back
	{[]string{"deadlift"}, typedef.ExerciseCategoryDeadlift},
	{[]string{"pull up", "pullup", "chin up", "pulldown"}, typedef.ExerciseCategoryPullUp},
	{[]string{"row"}, typedef.ExerciseCategoryRow},

	// Legs
	{[]string{"leg curl", "leg extension"}, typedef.ExerciseCategoryLegCurl},
	{[]string{"squat", "leg press"}, typedef.ExerciseCategorySquat},
	{[]string{"lunge"}, typedef.ExerciseCategoryLunge},
	{[]string{"calf raise"}, typedef.ExerciseCategoryCalfRaise},

	// Shoulders
	{[]string{"shoulder press", "overhead press", "military press"}, typedef.ExerciseCategoryShoulderPress},
	{[]string{"lateral raise", "side raise", "front raise", "rear delt"}, typedef.ExerciseCategoryLateralRaise},
	{[]string{"shrug"}, typedef.ExerciseCategoryShrug},

	// Arms
	{[]string{"tricep", "dip"}, typedef.ExerciseCategoryTricepsExtension},
	{[]string{"curl"}, typedef.ExerciseCategoryCurl},

	// Core
	{[]string{"sit up", "situp"}, typedef.ExerciseCategorySitUp},
	{[]string{"crunch"}, typedef.ExerciseCategoryCrunch},
	{[]string{"plank"}, typedef.ExerciseCategoryPlank},

	// Olympic lifts
	{[]string{"clean", "snatch"}, typedef.ExerciseCategoryOlympicLift},
}

// MapExerciseToCategory maps a free-text exercise name to a FIT exercise
// category, or total body when nothing matches.
func MapExerciseToCategory(exerciseName string) typedef.ExerciseCategory {
	name := strings.ToLower(strings.TrimSpace(exerciseName))
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(name, kw) {
				return entry.category
			}
		}
	}
	return typedef.ExerciseCategoryTotalBody
}

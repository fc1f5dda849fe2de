package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitglue/musclemap/pkg/domain/knowledge"
	"github.com/fitglue/musclemap/pkg/domain/muscle"
)

func TestDocRoundTrip(t *testing.T) {
	table := knowledge.Table{
		"BENCH_PRESS": {
			Primary:   []muscle.Group{"front-chest-right", "front-chest-left"},
			Secondary: []muscle.Group{"back-triceps-right"},
		},
		"PLANK": {Primary: []muscle.Group{"front-abs-right"}},
	}

	d := toDoc(table)
	require.Len(t, d.Mappings, 2)
	assert.Equal(t, 2, d.Count)
	assert.Equal(t, []string{"front-chest-right", "front-chest-left"}, d.Mappings["BENCH_PRESS"].Primary)
	assert.Empty(t, d.Mappings["PLANK"].Secondary)

	back := fromDoc(d)
	assert.True(t, back["BENCH_PRESS"].Equal(table["BENCH_PRESS"]))
	assert.True(t, back["PLANK"].Equal(table["PLANK"]))
}

func TestFromDoc_Empty(t *testing.T) {
	back := fromDoc(tableDoc{})
	require.NotNil(t, back)
	assert.Empty(t, back)
}

func TestSortedIDs(t *testing.T) {
	ids := SortedIDs(knowledge.Table{"SQUAT": {}, "CURL": {}, "ROW": {}})
	assert.Equal(t, []string{"CURL", "ROW", "SQUAT"}, ids)
}

func TestNewKnowledgeStore(t *testing.T) {
	s := NewKnowledgeStore(nil)
	assert.Equal(t, "knowledge_base", s.Collection)
	assert.Equal(t, "exercise_mappings", s.Document)
}

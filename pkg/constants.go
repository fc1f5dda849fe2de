package shared

const (
	ProjectID = "fitglue-project" // Can be overridden by GOOGLE_CLOUD_PROJECT

	TopicExerciseLearned   = "topic-exercise-learned"
	TopicMuscleMapRender   = "topic-musclemap-render"
	TopicMuscleMapRendered = "topic-musclemap-rendered"

	CollectionKnowledgeBase = "knowledge_base"
	DocExerciseMappings     = "exercise_mappings"

	EventSource = "/fitglue/musclemap"

	EventTypeExerciseLearned   = "com.fitglue.musclemap.exercise.learned"
	EventTypeMuscleMapRendered = "com.fitglue.musclemap.rendered"
)

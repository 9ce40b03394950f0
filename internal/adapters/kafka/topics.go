package kafka

// Topic definitions for Kafka event streaming
const (
	// Analysis events
	TopicLevelsComputed = "levels.computed"
	TopicAnalysisFailed = "levels.analysis_failed"
)

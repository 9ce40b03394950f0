package events

import (
	"context"

	"strata/internal/adapters/kafka"
	"strata/internal/metrics"
	"strata/pkg/errors"
	"strata/pkg/logger"
)

// Publisher publishes analysis events to Kafka. A nil Publisher is
// valid and drops everything, so callers need no Kafka-enabled check.
type Publisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(producer *kafka.Producer, log *logger.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		log:      log,
	}
}

// PublishLevelsComputed publishes a completed level set, keyed by symbol
// so per-symbol ordering is preserved across partitions
func (p *Publisher) PublishLevelsComputed(ctx context.Context, event *LevelsComputedEvent) error {
	if p == nil {
		return nil
	}
	return p.publish(ctx, kafka.TopicLevelsComputed, event.Symbol, event)
}

// PublishAnalysisFailed publishes a failed analysis run
func (p *Publisher) PublishAnalysisFailed(ctx context.Context, event *AnalysisFailedEvent) error {
	if p == nil {
		return nil
	}
	return p.publish(ctx, kafka.TopicAnalysisFailed, event.Symbol, event)
}

func (p *Publisher) publish(ctx context.Context, topic, key string, event interface{}) error {
	err := p.producer.Publish(ctx, topic, key, event)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.KafkaMessages.WithLabelValues(topic, status).Inc()

	if err != nil {
		p.log.Error("Failed to publish event",
			"topic", topic,
			"key", key,
			"error", err,
		)
		return errors.Wrap(err, "send to kafka")
	}

	p.log.Debug("Event published",
		"topic", topic,
		"key", key,
	)
	return nil
}

package mailqueue

import (
	"fmt"

	"seatsnag/internal/metrics"
	"seatsnag/pkg/config"
	"seatsnag/pkg/kafka"
	kafka_config "seatsnag/pkg/kafka/config"
	kafka_middleware "seatsnag/pkg/kafka/middleware"
)

// Setup builds the configured backend. For kafka it also owns the producer,
// which the returned close func shuts down.
func Setup(cfg *config.Config, m *metrics.Metrics) (Enqueuer, func(), error) {
	if cfg.MailBackend != config.MailBackendKafka {
		enq, err := New(cfg, nil, m)
		return enq, func() {}, err
	}

	kcfg, err := kafka_config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("kafka configuration: %w", err)
	}
	kcfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kcfg, cfg.MailTopic, cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	if kcfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}

	enq, err := New(cfg, producer, m)
	if err != nil {
		_ = producer.Close()
		return nil, nil, err
	}
	return enq, func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close mail producer", "error", err)
		}
	}, nil
}

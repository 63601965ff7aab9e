package mailqueue

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"seatsnag/internal/metrics"
	"seatsnag/pkg/config"
	"seatsnag/pkg/kafka"
	"seatsnag/pkg/logger"
	"seatsnag/pkg/model"
)

var ErrInvalidMail = errors.New("invalid mail")

// Enqueuer hands an outbound email to the delivery pipeline. Delivery
// itself happens outside this system.
type Enqueuer interface {
	Enqueue(ctx context.Context, m model.Mail) error
}

// New picks the backend configured in cfg. producer is only used for the
// kafka backend and may be nil otherwise.
func New(cfg *config.Config, producer *kafka.Producer, m *metrics.Metrics) (Enqueuer, error) {
	var backend Enqueuer
	switch cfg.MailBackend {
	case config.MailBackendMongo:
		backend = NewMongoEnqueuer(cfg)
	case config.MailBackendKafka:
		if producer == nil {
			return nil, fmt.Errorf("mail backend %q needs a kafka producer", cfg.MailBackend)
		}
		backend = NewKafkaEnqueuer(producer, cfg.MailTopic)
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.MailBackend)
	}
	return Instrument(backend, cfg.MailBackend, m, cfg.Log), nil
}

func validate(m model.Mail) error {
	if len(m.To) == 0 {
		return fmt.Errorf("%w: no recipients", ErrInvalidMail)
	}
	for _, to := range m.To {
		if _, err := mail.ParseAddress(to); err != nil {
			return fmt.Errorf("%w: recipient %q", ErrInvalidMail, to)
		}
	}
	if strings.TrimSpace(m.Message.Subject) == "" {
		return fmt.Errorf("%w: empty subject", ErrInvalidMail)
	}
	return nil
}

type instrumented struct {
	next    Enqueuer
	backend string
	metrics *metrics.Metrics
	log     *logger.Logger
}

// Instrument validates mail before handing it to next and records the
// outcome.
func Instrument(next Enqueuer, backend string, m *metrics.Metrics, log *logger.Logger) Enqueuer {
	return &instrumented{next: next, backend: backend, metrics: m, log: log}
}

func (e *instrumented) Enqueue(ctx context.Context, m model.Mail) error {
	err := validate(m)
	if err == nil {
		err = e.next.Enqueue(ctx, m)
	}
	e.metrics.MailEnqueued(e.backend, err)

	if err != nil {
		e.log.Error("Failed to enqueue mail",
			"backend", e.backend,
			"subject", m.Message.Subject,
			"error", err,
		)
		return err
	}
	e.log.Info("Mail enqueued",
		"backend", e.backend,
		"subject", m.Message.Subject,
		"recipients", len(m.To),
	)
	return nil
}

package producer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"familycal/internal/application/common"
	"familycal/internal/application/entity"
	"familycal/pkg/broker"
	"familycal/pkg/metrics"
)

const (
	headerEventType = "event-type"
	headerAggregate = "aggregate-type"
	headerOutboxID  = "outbox-id"
)

type Producer interface {
	ProduceMessage(ctx context.Context, e entity.OutboxEvent) error
	HealthCheck(ctx context.Context) error
}

type KafkaProducer struct {
	broker      *broker.KafkaBroker
	logger      *zap.SugaredLogger
	maxAttempts int
	m           *metrics.Metrics
	backoff     func(attempt int) time.Duration
}

func NewProducer(broker *broker.KafkaBroker, logger *zap.SugaredLogger, maxAttempts int, m *metrics.Metrics) *KafkaProducer {
	return &KafkaProducer{
		broker:      broker,
		logger:      logger,
		maxAttempts: max(maxAttempts, 1),
		m:           m,
		backoff:     common.NextBackoffWithJitter,
	}
}

// HealthCheck проверяет доступность Kafka через broker
func (p *KafkaProducer) HealthCheck(ctx context.Context) error {
	if p.broker == nil {
		return errors.New("kafka broker is not initialized")
	}
	return p.broker.HealthCheck(ctx)
}

// ProduceMessage отправляет запись outbox с повторами на временных ошибках.
// Постоянные ошибки Kafka не повторяются.
func (p *KafkaProducer) ProduceMessage(ctx context.Context, e entity.OutboxEvent) error {
	topic := p.broker.ProducerTopic
	var lastErr error

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := p.send(topic, e, attempt)
		if err == nil {
			p.m.Kafka.ProducerOperationsTotal.WithLabelValues(topic, "success").Inc()
			p.m.Kafka.ProducerSuccessAttempts.WithLabelValues(topic).Observe(float64(attempt))
			return nil
		}
		lastErr = err

		var kerr sarama.KError
		if errors.As(err, &kerr) && isPermanent(kerr) {
			p.m.Kafka.ProducerOperationsTotal.WithLabelValues(topic, "permanent").Inc()
			p.logger.Errorf("[outbox %d, event: %s] permanent kafka error code=%d: %v", e.ID, e.AggregateID, int16(kerr), kerr)
			return fmt.Errorf("permanent kafka error: %w", kerr)
		}
		p.logger.Warnf("[outbox %d, event: %s] attempt %d/%d failed, reason=%s: %v",
			e.ID, e.AggregateID, attempt, p.maxAttempts, ClassifyRetry(err), err)

		if attempt < p.maxAttempts {
			if err := common.SleepCtx(ctx, p.backoff(attempt-1)); err != nil {
				p.m.Kafka.ProducerOperationsTotal.WithLabelValues(topic, "canceled").Inc()
				return err
			}
		}
	}

	p.m.Kafka.ProducerOperationsTotal.WithLabelValues(topic, "failed").Inc()
	return fmt.Errorf("produce failed after %d attempts: %w", p.maxAttempts, lastErr)
}

// send одна попытка отправки с замером задержки
func (p *KafkaProducer) send(topic string, e entity.OutboxEvent, attempt int) error {
	started := time.Now()
	part, off, err := p.broker.SyncProducer.SendMessage(newMessage(topic, e))
	elapsed := time.Since(started)

	result := "ok"
	if err != nil {
		result = "error"
	}
	p.m.Kafka.ProducerAttemptLatencySeconds.WithLabelValues(topic, result).Observe(elapsed.Seconds())

	if err == nil {
		p.logger.Infof("[outbox %d, event: %s] %s -> %s/%d@%d attempt=%d rt=%s",
			e.ID, e.AggregateID, e.EventType, topic, part, off, attempt, elapsed)
	}
	return err
}

// newMessage ключ - id события, чтобы уведомления одного события шли в одну партицию по порядку
func newMessage(topic string, e entity.OutboxEvent) *sarama.ProducerMessage {
	return &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(e.AggregateID.String()),
		Value: sarama.ByteEncoder(e.Payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte(headerEventType), Value: []byte(e.EventType)},
			{Key: []byte(headerAggregate), Value: []byte(e.AggregateType)},
			{Key: []byte(headerOutboxID), Value: []byte(strconv.Itoa(e.ID))},
		},
		Timestamp: time.Now(),
	}
}

func isPermanent(k sarama.KError) bool {
	switch k {
	case sarama.ErrTopicAuthorizationFailed,
		sarama.ErrClusterAuthorizationFailed,
		sarama.ErrInvalidRequest,
		sarama.ErrInvalidMessage,
		sarama.ErrMessageSizeTooLarge,
		sarama.ErrSASLAuthenticationFailed:
		return true
	default:
		return false
	}
}

// ClassifyRetry короткая причина повтора для логов
func ClassifyRetry(err error) string {
	var k sarama.KError
	if errors.As(err, &k) {
		switch k {
		case sarama.ErrLeaderNotAvailable:
			return "leader_not_available"
		case sarama.ErrRequestTimedOut:
			return "broker_timeout"
		case sarama.ErrNotEnoughReplicas, sarama.ErrNotEnoughReplicasAfterAppend:
			return "not_enough_replicas"
		default:
			return k.Error()
		}
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return "net_timeout"
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "client_deadline"
	}
	return "other"
}

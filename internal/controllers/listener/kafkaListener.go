package listener

import (
	"errors"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	use_cases "familycal/internal/application/use-cases"
	"familycal/pkg/metrics"
)

// KafkaBrokerConsumer читает связи родитель-ребёнок из топика сервиса пользователей
type KafkaBrokerConsumer struct {
	usecase use_cases.UseCaser
	logger  *zap.SugaredLogger
	m       *metrics.Metrics
}

func NewKafkaBrokerConsumer(usecase use_cases.UseCaser, logger *zap.SugaredLogger, m *metrics.Metrics) *KafkaBrokerConsumer {
	return &KafkaBrokerConsumer{
		logger:  logger,
		usecase: usecase,
		m:       m,
	}
}

func (k *KafkaBrokerConsumer) Setup(session sarama.ConsumerGroupSession) error {
	k.logger.Infow("kafka session setup", "member", session.MemberID(), "generation", session.GenerationID())
	k.m.Kafka.ConsumerRebalancesTotal.WithLabelValues("setup").Inc()
	return nil
}

func (k *KafkaBrokerConsumer) Cleanup(session sarama.ConsumerGroupSession) error {
	k.logger.Infow("kafka session cleanup", "member", session.MemberID())
	k.m.Kafka.ConsumerRebalancesTotal.WithLabelValues("cleanup").Inc()
	return nil
}

// ConsumeClaim битое сообщение пропускается с коммитом offset.
// При ошибке применения offset не коммитится и сессия завершается,
// сообщение придёт повторно после переподключения.
func (k *KafkaBrokerConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case <-session.Context().Done():
			return nil
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := k.handle(session, msg); err != nil {
				return err
			}
		}
	}
}

func (k *KafkaBrokerConsumer) handle(session sarama.ConsumerGroupSession, msg *sarama.ConsumerMessage) error {
	topic := msg.Topic
	k.m.Kafka.ConsumerInFlight.WithLabelValues(topic).Inc()
	defer k.m.Kafka.ConsumerInFlight.WithLabelValues(topic).Dec()

	start := time.Now()
	k.logger.Debugf("message topic:%q partition:%d offset:%d value:%s", msg.Topic, msg.Partition, msg.Offset, msg.Value)

	err := k.usecase.ConsumerMessage(session.Context(), msg.Value, msg.Timestamp)
	k.m.Kafka.ConsumerProcessDuration.WithLabelValues(topic).Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, use_cases.ErrMalformedMessage):
		k.logger.Warnf("[partition: %d, offset: %d] skip message: %v", msg.Partition, msg.Offset, err)
		k.m.Kafka.ConsumerMessagesTotal.WithLabelValues(topic, "malformed").Inc()
	case err != nil:
		k.logger.Errorf("[partition: %d, offset: %d] apply message failed: %v", msg.Partition, msg.Offset, err)
		k.m.Kafka.ConsumerMessagesTotal.WithLabelValues(topic, "error").Inc()
		return err
	default:
		k.m.Kafka.ConsumerMessagesTotal.WithLabelValues(topic, "ok").Inc()
	}

	session.MarkMessage(msg, "")
	return nil
}

package broker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"familycal/pkg/config"
)

const defaultConsumerGroup = "familycal"

// KafkaBroker consumer group для связей родитель-ребёнок и продюсер уведомлений
type KafkaBroker struct {
	ConsumerTopic string
	ProducerTopic string
	ConsumerGroup sarama.ConsumerGroup
	SyncProducer  sarama.SyncProducer
	Brokers       []string
	conf          config.Kafka
	logger        *zap.SugaredLogger
}

func NewKafkaBroker(conf config.Kafka, logger *zap.SugaredLogger) (*KafkaBroker, error) {
	brokers := splitBrokers(conf.Brokers)
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are not configured")
	}

	logger.Debugf("creating consumer group %s for brokers: %v", groupID(conf), brokers)
	consumerGroup, err := newConsumerGroup(brokers, conf)
	if err != nil {
		logger.Errorf("error creating consumer group: %v", err)
		return nil, err
	}

	logger.Debugf("creating producer for brokers: %v", brokers)
	syncProducer, err := newSyncProducer(brokers, conf)
	if err != nil {
		logger.Errorf("error creating producer: %v", err)
		_ = consumerGroup.Close()
		return nil, err
	}

	broker := &KafkaBroker{
		ConsumerTopic: conf.ReaderTopic,
		ProducerTopic: conf.WriterTopic,
		ConsumerGroup: consumerGroup,
		SyncProducer:  syncProducer,
		Brokers:       brokers,
		conf:          conf,
		logger:        logger,
	}
	logger.Infof("kafka broker created. consumer topic: %s, producer topic: %s", broker.ConsumerTopic, broker.ProducerTopic)
	return broker, nil
}

// HealthCheck проверяет, что продюсер и consumer group созданы и брокеры доступны.
// Partitions() не вызываем: для него нужны права Describe, которых у технических учёток может не быть.
func (kb *KafkaBroker) HealthCheck(ctx context.Context) error {
	if kb.SyncProducer == nil {
		return errors.New("kafka producer is not initialized")
	}
	if kb.ConsumerGroup == nil {
		return errors.New("kafka consumer group is not initialized")
	}

	cfg := sarama.NewConfig()
	cfg.Net.DialTimeout = 2 * time.Second
	cfg.Net.ReadTimeout = 2 * time.Second
	cfg.Net.WriteTimeout = 2 * time.Second
	cfg.Metadata.Timeout = 2 * time.Second
	cfg.Metadata.Retry.Max = 1
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left > 0 && left < cfg.Net.DialTimeout {
			cfg.Net.DialTimeout = left
		}
	}
	applySASLConfig(cfg, kb.conf, kb.conf.WriterUsr != "" && kb.conf.WriterUsrPwd != "")

	client, err := sarama.NewClient(kb.Brokers, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to kafka brokers: %w", err)
	}
	defer client.Close()

	if len(client.Brokers()) == 0 {
		return errors.New("no kafka brokers available")
	}
	return nil
}

func (kb *KafkaBroker) Close() error {
	return errors.Join(kb.ConsumerGroup.Close(), kb.SyncProducer.Close())
}

// applySASLConfig useWriterCreds: true - WriterUsr/WriterUsrPwd, false - ReaderUsr/ReaderUsrPwd
func applySASLConfig(cfg *sarama.Config, conf config.Kafka, useWriterCreds bool) {
	user, pwd := conf.ReaderUsr, conf.ReaderUsrPwd
	if useWriterCreds {
		user, pwd = conf.WriterUsr, conf.WriterUsrPwd
	}
	if user == "" || pwd == "" {
		return
	}
	cfg.Net.SASL.User = user
	cfg.Net.SASL.Password = pwd
	cfg.Net.SASL.Enable = true
	cfg.Net.SASL.Mechanism = sarama.SASLTypePlaintext
}

func EnableSaramaZapLogs(base *zap.SugaredLogger) {
	sarama.Logger = &zapSarama{base.Named("sarama")}
}

type zapSarama struct{ l *zap.SugaredLogger }

func (z *zapSarama) Print(v ...interface{})                 { z.l.Debug(v...) }
func (z *zapSarama) Printf(format string, v ...interface{}) { z.l.Debugf(format, v...) }
func (z *zapSarama) Println(v ...interface{})               { z.l.Debug(v...) }

func splitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func groupID(conf config.Kafka) string {
	if conf.ReaderGroupID != "" {
		return conf.ReaderGroupID
	}
	return defaultConsumerGroup
}

func consumerConfig(conf config.Kafka) *sarama.Config {
	kafkaConfig := sarama.NewConfig()
	// связи, пришедшие до первого запуска, тоже нужны
	kafkaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	kafkaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategySticky()}
	kafkaConfig.Consumer.Return.Errors = true
	applySASLConfig(kafkaConfig, conf, false)
	return kafkaConfig
}

func producerConfig(conf config.Kafka) *sarama.Config {
	kafkaConfig := sarama.NewConfig()

	kafkaConfig.Net.DialTimeout = 10 * time.Second
	kafkaConfig.Net.ReadTimeout = 15 * time.Second
	kafkaConfig.Net.WriteTimeout = 15 * time.Second
	kafkaConfig.Net.KeepAlive = 30 * time.Second

	kafkaConfig.Metadata.Timeout = 10 * time.Second
	kafkaConfig.Metadata.Retry.Max = 1
	kafkaConfig.Metadata.Retry.Backoff = 1 * time.Second
	kafkaConfig.Metadata.RefreshFrequency = 1 * time.Minute

	kafkaConfig.Producer.RequiredAcks = sarama.WaitForAll
	kafkaConfig.Producer.Return.Successes = true
	kafkaConfig.Producer.Return.Errors = true
	// повторы делает продюсер приложения с бэкоффом
	kafkaConfig.Producer.Retry.Max = 0
	kafkaConfig.Producer.Timeout = 10 * time.Second
	// ключ - id события, уведомления по одному событию идут в одну партицию
	kafkaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	applySASLConfig(kafkaConfig, conf, true)
	return kafkaConfig
}

func newConsumerGroup(brokers []string, conf config.Kafka) (sarama.ConsumerGroup, error) {
	consumer, err := sarama.NewConsumerGroup(brokers, groupID(conf), consumerConfig(conf))
	if err != nil {
		return nil, fmt.Errorf("error creating kafka consumer group: %w", err)
	}
	return consumer, nil
}

func newSyncProducer(brokers []string, conf config.Kafka) (sarama.SyncProducer, error) {
	producer, err := sarama.NewSyncProducer(brokers, producerConfig(conf))
	if err != nil {
		return nil, fmt.Errorf("error creating kafka sync producer: %w", err)
	}
	return producer, nil
}

package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"dinely/pkg/logger"
)

// Publisher is the contract the booking flow emits notification events
// through.
type Publisher interface {
	PublishRefundRequest(ctx context.Context, req *RefundRequest) error
	PublishHoldExpired(ctx context.Context, notice *HoldExpiredNotice) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka refund producer.
type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
}

func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "refund-requests",
		RetryMax:         3,
		TimeoutMs:        10000,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
	}
}

type kafkaPublisher struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	log      *logger.Logger
}

func NewKafkaPublisher(config *KafkaProducerConfig, log *logger.Logger) (Publisher, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps a restaurant's messages on one partition.
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Info("Kafka refund producer created", "topic", config.Topic)
	return &kafkaPublisher{producer: producer, config: config, log: log}, nil
}

func (p *kafkaPublisher) PublishRefundRequest(ctx context.Context, req *RefundRequest) error {
	payload, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal refund request: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.config.Topic,
		Key:   sarama.StringEncoder(req.PartitionKey()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(NotificationTypeRefundRequest)},
			{Key: []byte("reservation_id"), Value: []byte(req.ReservationID.String())},
			{Key: []byte("restaurant_id"), Value: []byte(req.RestaurantID.String())},
			{Key: []byte("requested_at"), Value: []byte(req.RequestedAt.Format(time.RFC3339))},
		},
		Timestamp: req.RequestedAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish refund request: %w", err)
	}

	p.log.Info("refund request published",
		"topic", p.config.Topic,
		"partition", partition,
		"offset", offset,
		"reservation_id", req.ReservationID,
	)
	return nil
}

func (p *kafkaPublisher) PublishHoldExpired(ctx context.Context, notice *HoldExpiredNotice) error {
	payload, err := notice.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal hold-expired notice: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.config.Topic,
		Key:   sarama.StringEncoder(notice.PartitionKey()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(NotificationTypeHoldExpired)},
			{Key: []byte("reservation_id"), Value: []byte(notice.ReservationID.String())},
			{Key: []byte("restaurant_id"), Value: []byte(notice.RestaurantID.String())},
			{Key: []byte("expired_at"), Value: []byte(notice.ExpiredAt.Format(time.RFC3339))},
		},
		Timestamp: notice.ExpiredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish hold-expired notice: %w", err)
	}

	p.log.Info("hold-expired notice published",
		"topic", p.config.Topic,
		"partition", partition,
		"offset", offset,
		"reservation_id", notice.ReservationID,
	)
	return nil
}

func (p *kafkaPublisher) Close() error {
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}

// directPublisher writes the inbox record synchronously. It is the fallback
// when Kafka is disabled; behavior matches the consumer path minus the broker
// hop.
type directPublisher struct {
	repo Repository
	log  *logger.Logger
}

func NewDirectPublisher(repo Repository, log *logger.Logger) Publisher {
	return &directPublisher{repo: repo, log: log}
}

func (p *directPublisher) PublishRefundRequest(ctx context.Context, req *RefundRequest) error {
	reservationID := req.ReservationID
	notification := &Notification{
		RestaurantID:  req.RestaurantID,
		ReservationID: &reservationID,
		Type:          NotificationTypeRefundRequest,
		Message:       req.Describe(),
		Status:        NotificationStatusDelivered,
	}
	if err := p.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to store refund notification: %w", err)
	}
	p.log.Info("refund request stored directly", "reservation_id", req.ReservationID)
	return nil
}

func (p *directPublisher) PublishHoldExpired(ctx context.Context, notice *HoldExpiredNotice) error {
	reservationID := notice.ReservationID
	notification := &Notification{
		RestaurantID:  notice.RestaurantID,
		ReservationID: &reservationID,
		Type:          NotificationTypeHoldExpired,
		Message:       notice.Describe(),
		Status:        NotificationStatusDelivered,
	}
	if err := p.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to store hold-expired notification: %w", err)
	}
	return nil
}

func (p *directPublisher) Close() error {
	return nil
}

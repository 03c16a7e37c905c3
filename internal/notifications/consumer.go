package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"dinely/pkg/logger"
)

// Consumer drains the refund-request topic and lands each message as an
// owner inbox record.
type Consumer interface {
	Start(ctx context.Context, numWorkers int) error
	Stop() error
}

type ConsumerConfig struct {
	Brokers          []string
	GroupID          string
	Topics           []string
	SessionTimeoutMs int
	HeartbeatMs      int
	MaxRetries       int
	RetryBackoff     time.Duration
	OffsetOldest     bool
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:          []string{"localhost:9092"},
		GroupID:          "dinely-refund-workers",
		Topics:           []string{"refund-requests"},
		SessionTimeoutMs: 30000,
		HeartbeatMs:      3000,
		MaxRetries:       3,
		RetryBackoff:     time.Second,
		OffsetOldest:     true,
	}
}

type kafkaConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	repo          Repository
	log           *logger.Logger
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

func NewKafkaConsumer(config *ConsumerConfig, repo Repository, log *logger.Logger) (Consumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	// Refund requests must not be lost on a cold start.
	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &kafkaConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		repo:          repo,
		log:           log,
	}, nil
}

func (c *kafkaConsumer) Start(ctx context.Context, numWorkers int) error {
	ctx, c.cancel = context.WithCancel(ctx)

	go c.handleErrors()

	for i := 0; i < numWorkers; i++ {
		c.wg.Add(1)
		go func(workerID int) {
			defer c.wg.Done()
			c.runWorker(ctx, workerID)
		}(i)
	}

	c.log.Info("refund consumer workers started", "workers", numWorkers, "topics", c.config.Topics)
	return nil
}

func (c *kafkaConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &consumerGroupHandler{
		config:   c.config,
		repo:     c.repo,
		log:      c.log,
		workerID: workerID,
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := c.consumerGroup.Consume(ctx, c.config.Topics, handler); err != nil {
				c.log.Error("consumer worker error", "worker", workerID, "error", err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (c *kafkaConsumer) handleErrors() {
	for err := range c.consumerGroup.Errors() {
		c.log.Error("consumer group error", "error", err)
	}
}

func (c *kafkaConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	if err := c.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	c.log.Info("refund consumer stopped")
	return nil
}

type consumerGroupHandler struct {
	config   *ConsumerConfig
	repo     Repository
	log      *logger.Logger
	workerID int
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			if err := h.processWithRetry(session.Context(), message); err != nil {
				h.log.Error("failed to process refund message",
					"worker", h.workerID,
					"offset", message.Offset,
					"error", err,
				)
				// Mark anyway so a poison message does not wedge the partition.
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *consumerGroupHandler) processWithRetry(ctx context.Context, message *sarama.ConsumerMessage) error {
	var lastErr error
	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := h.config.RetryBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if lastErr = h.processMessage(ctx, message); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (h *consumerGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	notification, err := buildNotification(message)
	if err != nil {
		return err
	}
	if err := h.repo.Create(ctx, notification); err != nil {
		return err
	}

	h.log.Info("notification stored",
		"worker", h.workerID,
		"type", notification.Type,
		"restaurant_id", notification.RestaurantID,
	)
	return nil
}

// buildNotification turns a topic message into an inbox row. The message
// type rides in a record header; messages without one are refund requests.
func buildNotification(message *sarama.ConsumerMessage) (*Notification, error) {
	msgType := NotificationTypeRefundRequest
	for _, header := range message.Headers {
		if string(header.Key) == "type" {
			msgType = NotificationType(header.Value)
			break
		}
	}

	switch msgType {
	case NotificationTypeHoldExpired:
		var notice HoldExpiredNotice
		if err := json.Unmarshal(message.Value, &notice); err != nil {
			return nil, fmt.Errorf("failed to unmarshal hold-expired notice: %w", err)
		}
		reservationID := notice.ReservationID
		return &Notification{
			RestaurantID:  notice.RestaurantID,
			ReservationID: &reservationID,
			Type:          NotificationTypeHoldExpired,
			Message:       notice.Describe(),
			Status:        NotificationStatusDelivered,
		}, nil
	default:
		var req RefundRequest
		if err := json.Unmarshal(message.Value, &req); err != nil {
			return nil, fmt.Errorf("failed to unmarshal refund request: %w", err)
		}
		reservationID := req.ReservationID
		return &Notification{
			RestaurantID:  req.RestaurantID,
			ReservationID: &reservationID,
			Type:          NotificationTypeRefundRequest,
			Message:       req.Describe(),
			Status:        NotificationStatusDelivered,
		}, nil
	}
}

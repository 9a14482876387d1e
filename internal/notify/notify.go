// Package notify publishes domain events about users.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/IBM/sarama"

	"taskhub/internal/model"
)

// Notifier announces that a user finished registering.
type Notifier interface {
	UserRegistered(ctx context.Context, user *model.User) error
	Close() error
}

// UserRegisteredEvent is the payload written to the user.registered topic.
type UserRegisteredEvent struct {
	Event        string     `json:"event"`
	UserID       uint       `json:"user_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         model.Role `json:"role"`
	RegisteredAt time.Time  `json:"registered_at"`
}

// KafkaNotifier sends events through a synchronous sarama producer.
type KafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
}

// KafkaOptions controls how the producer connects.
type KafkaOptions struct {
	Brokers    []string
	Topic      string
	Attempts   int
	RetryDelay time.Duration
}

// NewKafkaNotifier dials the brokers, retrying while Kafka comes up.
func NewKafkaNotifier(opts KafkaOptions) (*KafkaNotifier, error) {
	if opts.Attempts <= 0 {
		opts.Attempts = 10
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 5 * time.Second
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll

	var (
		producer sarama.SyncProducer
		err      error
	)
	for i := 1; i <= opts.Attempts; i++ {
		producer, err = sarama.NewSyncProducer(opts.Brokers, config)
		if err == nil {
			slog.Info("kafka producer initialized", "brokers", opts.Brokers, "topic", opts.Topic)
			return NewKafkaNotifierWithProducer(producer, opts.Topic), nil
		}
		slog.Warn("waiting for kafka", "attempt", i, "of", opts.Attempts, "error", err)
		if i < opts.Attempts {
			time.Sleep(opts.RetryDelay)
		}
	}
	return nil, fmt.Errorf("start kafka producer: %w", err)
}

// NewKafkaNotifierWithProducer wraps an existing producer.
func NewKafkaNotifierWithProducer(producer sarama.SyncProducer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

// UserRegistered publishes one event keyed by the user id.
func (k *KafkaNotifier) UserRegistered(ctx context.Context, user *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(UserRegisteredEvent{
		Event:        "user.registered",
		UserID:       user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		RegisteredAt: user.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal user.registered: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(uint64(user.ID), 10)),
		Value: sarama.ByteEncoder(data),
	}
	partition, offset, err := k.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send user.registered: %w", err)
	}

	slog.Debug("published user.registered", "user_id", user.ID, "partition", partition, "offset", offset)
	return nil
}

// Close flushes and closes the producer.
func (k *KafkaNotifier) Close() error {
	return k.producer.Close()
}

// LogNotifier only logs events. It is used when no brokers are configured.
type LogNotifier struct{}

// UserRegistered implements Notifier.
func (LogNotifier) UserRegistered(_ context.Context, user *model.User) error {
	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return nil
}

// Close implements Notifier.
func (LogNotifier) Close() error { return nil }

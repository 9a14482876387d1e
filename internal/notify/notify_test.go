package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/model"
)

func TestKafkaNotifier_UserRegistered(t *testing.T) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, config)

	user := &model.User{ID: 3, Name: "Jane", Email: "jane@example.com", Role: model.RoleUser, CreatedAt: time.Unix(1700000000, 0).UTC()}

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event UserRegisteredEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.Event != "user.registered" || event.UserID != 3 || event.Email != "jane@example.com" {
			return errors.New("unexpected payload")
		}
		return nil
	})

	notifier := NewKafkaNotifierWithProducer(producer, "user.registered")
	require.NoError(t, notifier.UserRegistered(context.Background(), user))
	require.NoError(t, notifier.Close())
}

func TestKafkaNotifier_SendFailure(t *testing.T) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, config)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	notifier := NewKafkaNotifierWithProducer(producer, "user.registered")
	err := notifier.UserRegistered(context.Background(), &model.User{ID: 1})

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, notifier.Close())
}

func TestNewKafkaNotifier_NoBrokers(t *testing.T) {
	_, err := NewKafkaNotifier(KafkaOptions{Brokers: []string{"127.0.0.1:1"}, Topic: "t", Attempts: 1, RetryDelay: time.Millisecond})
	assert.Error(t, err)
}

func TestLogNotifier(t *testing.T) {
	var n Notifier = LogNotifier{}
	assert.NoError(t, n.UserRegistered(context.Background(), &model.User{ID: 1}))
	assert.NoError(t, n.Close())
}

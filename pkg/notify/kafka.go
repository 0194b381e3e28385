package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/segmentio/kafka-go"
)

const DefaultKafkaTopic = "voice-channel.uploads"

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaNotifier struct {
	writer messageWriter
	topic  string
}

func NewKafkaNotifier(config KafkaConfig) *KafkaNotifier {
	topic := config.Topic
	if topic == "" {
		topic = DefaultKafkaTopic
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(config.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           10 * time.Second,
		ReadTimeout:            10 * time.Second,
		AllowAutoTopicCreation: true,
	}
	return &KafkaNotifier{writer: writer, topic: topic}
}

// Notify publishes the event keyed by channel so that events of one channel
// stay ordered.
func (n *KafkaNotifier) Notify(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("cannot marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.Channel),
		Value: value,
		Time:  event.FinishedAt,
		Headers: []kafka.Header{
			{Key: "stage", Value: []byte(event.Stage)},
			{Key: "source", Value: []byte("voice-channel")},
		},
	}
	if err = n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("cannot write to kafka: %w", err)
	}
	log.Debugf("event published | topic: %v, session: %v", n.topic, event.SessionID)
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

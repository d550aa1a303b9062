package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "order-notifications"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Message is the payload published for downstream senders (SMS, WhatsApp API, ...).
type Message struct {
	Destination string    `json:"destination"`
	Text        string    `json:"text"`
	Link        string    `json:"link"`
	CreatedAt   time.Time `json:"created_at"`
}

// KafkaNotifier queues notifications on a topic. Writes are asynchronous; delivery
// results only reach the log and the optional result callback.
type KafkaNotifier struct {
	writer messageWriter
	logger *slog.Logger
	result func(error)
}

func NewKafkaNotifier(logger *slog.Logger, result func(error), topic string, brokers ...string) *KafkaNotifier {
	n := &KafkaNotifier{logger: logger, result: result}
	n.writer = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("failed to publish notification", "count", len(messages), "error", err)
			}
			n.report(err)
		},
	}
	return n
}

func newKafkaNotifier(writer messageWriter, logger *slog.Logger, result func(error)) *KafkaNotifier {
	return &KafkaNotifier{writer: writer, logger: logger, result: result}
}

func (n *KafkaNotifier) Send(ctx context.Context, destination, text string) {
	payload, err := json.Marshal(Message{
		Destination: destination,
		Text:        text,
		Link:        WhatsAppLink(destination, text),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		n.logger.ErrorContext(ctx, "failed to marshal notification", "error", err)
		n.report(err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(destination),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("OrderPlaced")},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		n.logger.ErrorContext(ctx, "failed to queue notification", "destination", destination, "error", err)
		n.report(err)
	}
}

func (n *KafkaNotifier) report(err error) {
	if n.result != nil {
		n.result(err)
	}
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

package recorder

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"ms-boxoffice/internal/models"
)

// Kafka publishes issued-ticket payloads to a topic, keyed by ticket id, for
// downstream consumers that track the guest list.
type Kafka struct {
	Writer *kafka.Writer
}

func NewKafka(brokers []string, topic string) *Kafka {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Kafka{Writer: writer}
}

func (k *Kafka) Record(ctx context.Context, payload models.RecordingPayload) error {
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return k.Writer.WriteMessages(ctx,
		kafka.Message{
			Key:   []byte(payload.TicketID),
			Value: msgBytes,
		},
	)
}

func (k *Kafka) Close() error {
	return k.Writer.Close()
}

// EnsureTopicExists creates the recording topic if it is missing. Failure is
// logged by the caller and tolerated; publishing will retry topic creation
// implicitly on brokers with auto-create enabled.
func EnsureTopicExists(brokers []string, topic string) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerConn, err := kafka.Dial("tcp", controller.Host)
	if err != nil {
		return err
	}
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		if err.Error() == "kafka server: topic already exists" {
			log.Printf("Topic %s already exists", topic)
			return nil
		}
		return err
	}

	// Give the cluster a moment to settle the new topic.
	time.Sleep(1 * time.Second)
	return nil
}

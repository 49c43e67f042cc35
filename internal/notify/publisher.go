package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"github.com/alexanderjulianmartinez/data-guard/pkg/types"
)

// Publisher emits one JSON message per run so downstream consumers (alerts,
// dashboards) see the verdict without scraping console output.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 5 * time.Second,
	}}
}

func (p *Publisher) PublishVerdict(ctx context.Context, run types.RunSummary) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run summary: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(run.StartedAt.UTC().Format(time.RFC3339)),
		Value: payload,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

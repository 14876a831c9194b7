package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"
)

// KafkaPublisher fans each alert out to one topic per audience so downstream
// teams consume only their own queue. Topic name is <prefix>.<audience>.
type KafkaPublisher struct {
	client *kgo.Client
	prefix string
	logger *slog.Logger
}

// NewKafkaPublisher wires a franz-go client for alert delivery.
func NewKafkaPublisher(brokers []string, prefix string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, prefix: prefix, logger: logger}, nil
}

// Publish produces one record per audience, keyed by placement ID so a
// placement's alerts stay ordered within a partition. Delivery to all
// audiences is attempted even if one produce fails.
func (p *KafkaPublisher) Publish(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, audience := range alert.Audiences {
		record := &kgo.Record{
			Topic: fmt.Sprintf("%s.%s", p.prefix, audience),
			Key:   []byte(alert.PlacementID.String()),
			Value: payload,
		}
		g.Go(func() error {
			if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
				p.logger.ErrorContext(ctx, "alert produce failed",
					"kind", string(alert.Kind),
					"topic", record.Topic,
					"error", err.Error(),
				)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// Close flushes and releases the underlying client.
func (p *KafkaPublisher) Close() {
	p.client.Close()
}

package export

import (
	"context"
	"encoding/json"
	"fmt"

	gpubsub "cloud.google.com/go/pubsub/v2"
)

type messagePublisher interface {
	Publish(ctx context.Context, msg *gpubsub.Message) *gpubsub.PublishResult
}

// PubSubSink delivers ledger rows to the ticket export topic.
type PubSubSink struct {
	publisher messagePublisher
}

// NewPubSubSink wraps a topic publisher.
func NewPubSubSink(publisher *gpubsub.Publisher) (*PubSubSink, error) {
	if publisher == nil {
		return nil, fmt.Errorf("pubsub publisher required")
	}
	return &PubSubSink{publisher: publisher}, nil
}

// Publish serializes the row and waits for broker acknowledgement.
func (s *PubSubSink) Publish(ctx context.Context, row Row) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshaling export row: %w", err)
	}

	result := s.publisher.Publish(ctx, &gpubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"ticket_id": row.TicketID,
			"status":    row.Status.String(),
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing export row: %w", err)
	}
	return nil
}

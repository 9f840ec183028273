package publishers

import (
	"context"
	"fmt"
)

// queueSender is the provider-specific half of the queue publisher.
type queueSender interface {
	Send(ctx context.Context, evt Event) error
}

// queuePublisher forwards article events to a cloud queue or topic.
type queuePublisher struct {
	id       string
	typ      string
	provider string
	sender   queueSender
}

// newQueuePublisher builds the sender selected by queue.provider.
func newQueuePublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.Queue == nil {
		return nil, fmt.Errorf("publisher %q missing queue configuration", cfg.ID)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	sender, err := buildQueueSender(ctx, cfg.Queue, log)
	if err != nil {
		return nil, fmt.Errorf("publisher %q: %w", cfg.ID, err)
	}

	return &queuePublisher{
		id:       cfg.ID,
		typ:      cfg.Type,
		provider: cfg.Queue.Provider,
		sender:   sender,
	}, nil
}

func buildQueueSender(ctx context.Context, cfg *QueuePublisherConfig, log Logger) (queueSender, error) {
	switch cfg.Provider {
	case QueueProviderAWSSQS:
		return newAWSSQSSender(ctx, cfg.AWS, log)
	case QueueProviderAWSSNS:
		return newAWSSNSSender(ctx, cfg.SNS, log)
	case QueueProviderGCP:
		return newGCPPubSubSender(ctx, cfg.GCP, log)
	case QueueProviderAzure:
		return nil, fmt.Errorf("queue provider %q not implemented", cfg.Provider)
	default:
		return nil, fmt.Errorf("queue provider %q is not supported", cfg.Provider)
	}
}

func (p *queuePublisher) ID() string   { return p.id }
func (p *queuePublisher) Type() string { return p.typ }

// Publish hands the event to the underlying sender.
func (p *queuePublisher) Publish(ctx context.Context, evt Event) error {
	if err := p.sender.Send(ctx, evt); err != nil {
		return fmt.Errorf("queue provider %s send failed: %w", p.provider, err)
	}
	return nil
}

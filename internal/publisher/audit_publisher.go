package publisher

import (
	"context"

	"github.com/google/uuid"
	"github.com/swnshop/checkout-pipeline/internal/messaging"
)

const AuditQueue = "checkout.audit"

// AuditPublisher forwards matched checkout events to the audit queue on
// RabbitMQ for external analytics consumers. It satisfies router.Destination,
// so it can be registered as a routing rule target next to delivery queues.
type AuditPublisher struct {
	mq *messaging.RabbitMQ
}

func NewAuditPublisher(mq *messaging.RabbitMQ) (*AuditPublisher, error) {
	// Declare the queue
	if err := mq.DeclareQueue(AuditQueue); err != nil {
		return nil, err
	}

	return &AuditPublisher{mq: mq}, nil
}

func (p *AuditPublisher) Name() string { return AuditQueue }

// Enqueue publishes the serialized event. Audit delivery is fire-and-forget
// on the consumer side; the returned ID identifies the AMQP message.
func (p *AuditPublisher) Enqueue(_ context.Context, body []byte) (string, error) {
	id := uuid.NewString()

	if err := p.mq.Publish(AuditQueue, id, body); err != nil {
		return "", err
	}

	return id, nil
}

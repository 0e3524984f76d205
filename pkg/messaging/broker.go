package messaging

import "context"

// Broker is the publish side used by the outbox processor. Channel
// names are outbox event types (RECORD_CREATED, PATIENT_REGISTERED, ...).
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

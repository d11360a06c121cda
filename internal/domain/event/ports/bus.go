package ports

import "context"

// Bus carries outward notifications (phase, wave, membership changes).
type Bus interface {
	Publish(ctx context.Context, topic string, event any) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}

type Subscription interface {
	C() <-chan any
	Close() error
}

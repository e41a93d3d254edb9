package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	ActivityCart     = "cart"
	ActivityWishlist = "wishlist"
	ActivityCheckout = "checkout"
	ActivitySession  = "session"
)

// Activity is one storefront event published to the activity topic.
type Activity struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Type       string    `json:"type"`
	VisitorID  string    `json:"visitor_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

func NewActivity(kind, eventType, visitorID string, payload any) Activity {
	return Activity{
		ID:         uuid.NewString(),
		Kind:       kind,
		Type:       eventType,
		VisitorID:  visitorID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// ActivityPublisher records storefront activity. Publish never blocks on the
// network.
type ActivityPublisher interface {
	Publish(a Activity)
}

type NopPublisher struct{}

func (NopPublisher) Publish(Activity) {}

type publisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}

// AsyncPublisher queues activities and writes them from a single worker. When
// the queue is full new activities are dropped.
type AsyncPublisher struct {
	producer publisher
	queue    chan Activity
	log      zerolog.Logger

	mu      sync.Mutex
	dropped int
}

func NewAsyncPublisher(producer publisher, buffer int, log zerolog.Logger) *AsyncPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &AsyncPublisher{
		producer: producer,
		queue:    make(chan Activity, buffer),
		log:      log.With().Str("component", "activity").Logger(),
	}
}

func (p *AsyncPublisher) Publish(a Activity) {
	select {
	case p.queue <- a:
	default:
		p.mu.Lock()
		p.dropped++
		p.mu.Unlock()
		p.log.Warn().Str("type", a.Type).Str("visitor", a.VisitorID).Msg("activity queue full, dropping event")
	}
}

// Dropped is the number of activities discarded because the queue was full.
func (p *AsyncPublisher) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Run writes queued activities until ctx ends, then drains what is left with
// a short grace period and closes the producer.
func (p *AsyncPublisher) Run(ctx context.Context) error {
	for {
		select {
		case a := <-p.queue:
			p.write(ctx, a)
		case <-ctx.Done():
			p.drain()
			return p.producer.Close()
		}
	}
}

func (p *AsyncPublisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		select {
		case a := <-p.queue:
			p.write(ctx, a)
		default:
			return
		}
	}
}

func (p *AsyncPublisher) write(ctx context.Context, a Activity) {
	if err := p.producer.Publish(ctx, a.VisitorID, a); err != nil {
		p.log.Error().Err(err).Str("type", a.Type).Msg("failed to publish activity")
	}
}

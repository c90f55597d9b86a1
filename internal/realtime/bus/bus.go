package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/churnboard/internal/platform/logger"
	"github.com/yungbote/churnboard/internal/realtime"
)

// Bus carries lifecycle updates from the replica that ran a request to the
// replicas holding the browser's SSE connection.
type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}

type localBus struct {
	mu    sync.RWMutex
	onMsg func(m realtime.Message)
}

// NewLocalBus delivers messages in-process, synchronously.
func NewLocalBus() Bus { return &localBus{} }

func (b *localBus) Publish(_ context.Context, msg realtime.Message) error {
	b.mu.RLock()
	fn := b.onMsg
	b.mu.RUnlock()
	if fn != nil {
		fn(msg)
	}
	return nil
}

func (b *localBus) StartForwarder(_ context.Context, onMsg func(m realtime.Message)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	b.onMsg = onMsg
	b.mu.Unlock()
	return nil
}

func (b *localBus) Close() error { return nil }

// Publisher decouples lifecycle observers from bus I/O: Enqueue never blocks
// and Run publishes in enqueue order.
type Publisher struct {
	bus   Bus
	log   *logger.Logger
	queue chan realtime.Message

	// OnDrop, when set, is called for every update discarded by Enqueue.
	OnDrop func()
}

func NewPublisher(b Bus, log *logger.Logger, size int) *Publisher {
	if size <= 0 {
		size = 256
	}
	return &Publisher{bus: b, log: log.With("component", "RealtimePublisher"), queue: make(chan realtime.Message, size)}
}

func (p *Publisher) Enqueue(msg realtime.Message) {
	select {
	case p.queue <- msg:
	default:
		p.log.Warn("realtime queue full; dropping update", "event", msg.Event, "session_id", msg.Channel)
		if p.OnDrop != nil {
			p.OnDrop()
		}
	}
}

func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-p.queue:
			if err := p.bus.Publish(ctx, msg); err != nil {
				p.log.Warn("realtime publish failed", "event", msg.Event, "error", err)
			}
		}
	}
}
